package skeletal

import (
	"fmt"

	"github.com/yohamta/donburi"

	"github.com/Faultbox/skelbridge/internal/assets"
	"github.com/Faultbox/skelbridge/internal/engine/material"
	"github.com/Faultbox/skelbridge/internal/engine/mesh"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// LoadState tracks controller construction for an entity.
type LoadState uint8

const (
	Loading LoadState = iota
	Ready
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("LoadState(%d)", uint8(s))
	}
}

// LoaderData is the per-entity load state machine. Err holds the last parse
// error; Attempts counts failed parses.
type LoaderData struct {
	State    LoadState
	Err      error
	Attempts int
}

// SkeletonRefData points at the skeleton asset to instantiate.
type SkeletonRefData struct {
	Handle assets.Handle[assets.SkeletonAsset]
}

type crossfade struct {
	from, to string
	duration float32
}

// CrossfadesData holds per-entity mix overrides. They are applied once when
// the controller is built.
type CrossfadesData struct {
	mixes []crossfade
}

// Add sets the mix duration from one animation to another.
func (c *CrossfadesData) Add(from, to string, duration float32) {
	c.mixes = append(c.mixes, crossfade{from: from, to: to, duration: duration})
}

// Len returns the number of overrides.
func (c *CrossfadesData) Len() int { return len(c.mixes) }

func (c *CrossfadesData) apply(sd *rig.StateData) error {
	for _, m := range c.mixes {
		if err := sd.SetMix(m.from, m.to, m.duration); err != nil {
			return err
		}
	}
	return nil
}

// ControllerData is attached once the entity is Ready. Slots lists the mesh
// slot children in skeleton slot order.
type ControllerData struct {
	Controller *rig.Controller
	Slots      []donburi.Entity
	RootBone   donburi.Entity

	listening bool
}

// BoneProxyData links a proxy entity to a bone. Owner is the controller
// entity; it is not kept alive by the proxy.
type BoneProxyData struct {
	Owner donburi.Entity
	Bone  rig.BoneHandle
}

// MeshSlotData is the geometry target of one skeleton slot.
type MeshSlotData struct {
	Index int
	Mesh  assets.Handle[mesh.Mesh]
}

// MaterialSlotData is the material attached to a mesh slot.
type MaterialSlotData struct {
	Variant  material.Variant
	Material assets.Handle[material.Material]
}

// Components.
var (
	Loader       = donburi.NewComponentType[LoaderData]()
	SkeletonRef  = donburi.NewComponentType[SkeletonRefData]()
	Crossfades   = donburi.NewComponentType[CrossfadesData]()
	Controller   = donburi.NewComponentType[ControllerData]()
	BoneProxy    = donburi.NewComponentType[BoneProxyData]()
	MeshSlot     = donburi.NewComponentType[MeshSlotData]()
	MaterialSlot = donburi.NewComponentType[MaterialSlotData]()

	// ExternallyDriven marks a bone proxy whose transform is set by host code.
	// The transform is written into the bone each tick and the bone ignores
	// animation until the tag is removed.
	ExternallyDriven = donburi.NewTag()
)
