// Package formats parses skeleton and atlas documents into runtime data.
//
// A skeleton comes in two encodings of the same document: YAML text
// (ParseSkeletonText) and a CBOR payload behind a small binary header
// (ParseSkeletonBinary). Both converge on BuildSkeleton.
package formats

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/Faultbox/skelbridge/pkg/rig"
)

// Parse errors.
var (
	ErrInvalidSkeleton            = errors.New("invalid skeleton data")
	ErrInvalidSkeletonMagic       = errors.New("invalid binary skeleton magic: expected 'SKB'")
	ErrUnsupportedSkeletonVersion = errors.New("unsupported binary skeleton version")
	ErrTruncatedSkeletonData      = errors.New("truncated binary skeleton data")
	ErrInvalidAtlas               = errors.New("invalid atlas data")
	ErrRegionNotFound             = errors.New("atlas region not found")
)

// parseColor decodes "rrggbb" or "rrggbbaa" hex. Empty means white.
func parseColor(s string) (rig.Color, error) {
	if s == "" {
		return rig.White, nil
	}
	if len(s) != 6 && len(s) != 8 {
		return rig.Color{}, fmt.Errorf("%w: color %q", ErrInvalidSkeleton, s)
	}
	if len(s) == 6 {
		s += "ff"
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rig.Color{}, fmt.Errorf("%w: color %q", ErrInvalidSkeleton, s)
	}
	return rig.Color{
		R: float32(v>>24&0xff) / 255,
		G: float32(v>>16&0xff) / 255,
		B: float32(v>>8&0xff) / 255,
		A: float32(v&0xff) / 255,
	}, nil
}
