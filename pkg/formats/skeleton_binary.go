package formats

import (
	"bytes"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/Faultbox/skelbridge/pkg/rig"
)

// Binary skeleton header: "SKB" followed by a version byte, then a CBOR
// encoded SkeletonDocument.
const (
	skeletonMagic      = "SKB"
	skeletonVersion    = 1
	skeletonHeaderSize = 4
)

// ParseSkeletonBinary parses a binary skeleton and resolves it against atlas.
func ParseSkeletonBinary(data []byte, atlas *rig.Atlas) (*rig.SkeletonData, error) {
	doc, err := DecodeSkeletonBinary(data)
	if err != nil {
		return nil, err
	}
	return BuildSkeleton(doc, atlas)
}

// DecodeSkeletonBinary checks the header and decodes the payload.
func DecodeSkeletonBinary(data []byte) (*SkeletonDocument, error) {
	if len(data) < skeletonHeaderSize {
		return nil, ErrTruncatedSkeletonData
	}
	if !bytes.Equal(data[:3], []byte(skeletonMagic)) {
		return nil, ErrInvalidSkeletonMagic
	}
	if data[3] != skeletonVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedSkeletonVersion, data[3])
	}

	var doc SkeletonDocument
	if err := cbor.Unmarshal(data[skeletonHeaderSize:], &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSkeleton, err)
	}
	return &doc, nil
}

// EncodeSkeletonBinary writes doc in the binary form.
func EncodeSkeletonBinary(doc *SkeletonDocument) ([]byte, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	payload, err := em.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode skeleton: %w", err)
	}

	out := make([]byte, 0, skeletonHeaderSize+len(payload))
	out = append(out, skeletonMagic...)
	out = append(out, skeletonVersion)
	return append(out, payload...), nil
}
