package formats

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skelbridge/pkg/rig"
)

// ParseSkeletonText parses a YAML skeleton and resolves it against atlas.
func ParseSkeletonText(data []byte, atlas *rig.Atlas) (*rig.SkeletonData, error) {
	doc, err := DecodeSkeletonText(data)
	if err != nil {
		return nil, err
	}
	return BuildSkeleton(doc, atlas)
}

// DecodeSkeletonText decodes the YAML document without resolving it.
func DecodeSkeletonText(data []byte) (*SkeletonDocument, error) {
	var doc SkeletonDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSkeleton, err)
	}
	return &doc, nil
}
