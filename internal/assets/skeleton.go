package assets

import (
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/Faultbox/skelbridge/pkg/formats"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// SourceKind tells which skeleton encoding a source holds.
type SourceKind uint8

const (
	SourceText SourceKind = iota
	SourceBinary
)

func (k SourceKind) String() string {
	if k == SourceBinary {
		return "binary"
	}
	return "text"
}

// KindFromPath maps ".skb" to binary and everything else to text.
func KindFromPath(name string) SourceKind {
	if strings.EqualFold(path.Ext(name), ".skb") {
		return SourceBinary
	}
	return SourceText
}

// AtlasAsset is a parsed atlas whose pages are registered as textures.
type AtlasAsset struct {
	Path  string
	Atlas *rig.Atlas
}

// SourceAsset is the raw bytes of a skeleton file.
type SourceAsset struct {
	Path  string
	Kind  SourceKind
	Bytes []byte
}

// SkeletonAsset pairs a skeleton source with the atlas it resolves against.
// The parsed data is cached on first success and shared by every user.
type SkeletonAsset struct {
	Atlas  Handle[AtlasAsset]
	Source Handle[SourceAsset]

	mu   sync.Mutex
	data *rig.SkeletonData
}

// NewSkeletonAsset creates an unparsed skeleton asset.
func NewSkeletonAsset(atlas Handle[AtlasAsset], source Handle[SourceAsset]) *SkeletonAsset {
	return &SkeletonAsset{Atlas: atlas, Source: source}
}

// Cached returns the parsed data, or nil before the first successful parse.
func (a *SkeletonAsset) Cached() *rig.SkeletonData {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.data
}

// Parse returns the cached data, parsing src against atlas the first time.
// Failures are not cached.
func (a *SkeletonAsset) Parse(atlas *AtlasAsset, src *SourceAsset) (*rig.SkeletonData, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.data != nil {
		return a.data, nil
	}

	var (
		data *rig.SkeletonData
		err  error
	)
	switch src.Kind {
	case SourceBinary:
		data, err = formats.ParseSkeletonBinary(src.Bytes, atlas.Atlas)
	default:
		data, err = formats.ParseSkeletonText(src.Bytes, atlas.Atlas)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s skeleton %s: %w", src.Kind, src.Path, err)
	}

	a.data = data
	return data, nil
}
