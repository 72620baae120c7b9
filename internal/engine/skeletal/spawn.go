package skeletal

import (
	"errors"
	"fmt"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"

	"github.com/Faultbox/skelbridge/internal/assets"
	"github.com/Faultbox/skelbridge/internal/engine/scene"
	"github.com/Faultbox/skelbridge/pkg/math"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// ErrNotReady is returned by runtime helpers on entities without a controller.
var ErrNotReady = errors.New("skeleton not ready")

// Bundle is everything needed to spawn an animated entity.
type Bundle struct {
	Skeleton   assets.Handle[assets.SkeletonAsset]
	Crossfades *CrossfadesData
	Transform  math.Transform
}

// NewBundle returns a bundle with an identity transform.
func NewBundle(skeleton assets.Handle[assets.SkeletonAsset]) Bundle {
	return Bundle{Skeleton: skeleton, Transform: math.IdentityTransform()}
}

// Spawn creates a Loading entity from b. It must not be called while a query
// is iterating.
func (p *Plugin) Spawn(b Bundle) donburi.Entity {
	extra := []component.IComponentType{Loader, SkeletonRef}
	if b.Crossfades != nil {
		extra = append(extra, Crossfades)
	}
	entry := scene.Spawn(p.world, b.Transform, extra...)
	Loader.SetValue(entry, LoaderData{State: Loading})
	SkeletonRef.SetValue(entry, SkeletonRefData{Handle: b.Skeleton})
	if b.Crossfades != nil {
		Crossfades.SetValue(entry, *b.Crossfades)
	}
	return entry.Entity()
}

// Despawn removes e with its mesh slots and bone proxies. A Ready entity's
// animation state is disposed; the resulting events are published by the next
// Update.
func (p *Plugin) Despawn(e donburi.Entity) {
	if !p.world.Valid(e) {
		return
	}
	entry := p.world.Entry(e)
	if entry.HasComponent(Controller) {
		cd := Controller.Get(entry)
		if !cd.listening {
			cd.Controller.AnimationState.SetListener(p.listen(e))
			cd.listening = true
		}
		cd.Controller.Dispose()
		for _, s := range cd.Slots {
			if !p.world.Valid(s) {
				continue
			}
			se := p.world.Entry(s)
			if se.HasComponent(MeshSlot) {
				p.meshes.Remove(MeshSlot.Get(se).Mesh)
			}
			if se.HasComponent(MaterialSlot) {
				p.materials.Remove(MaterialSlot.Get(se).Material)
			}
		}
	}
	scene.Despawn(p.world, e)
}

// State returns the load state of e.
func (p *Plugin) State(e donburi.Entity) (LoadState, error) {
	if !p.world.Valid(e) {
		return Failed, fmt.Errorf("entity %d: invalid", e)
	}
	entry := p.world.Entry(e)
	if !entry.HasComponent(Loader) {
		return Failed, fmt.Errorf("entity %d: no loader", e)
	}
	ld := Loader.Get(entry)
	return ld.State, ld.Err
}

// Controller returns the runtime controller of a Ready entity.
func (p *Plugin) Controller(e donburi.Entity) (*rig.Controller, bool) {
	cd, ok := p.controllerData(e)
	if !ok {
		return nil, false
	}
	return cd.Controller, true
}

func (p *Plugin) controllerData(e donburi.Entity) (*ControllerData, bool) {
	if !p.world.Valid(e) {
		return nil, false
	}
	entry := p.world.Entry(e)
	if !entry.HasComponent(Controller) {
		return nil, false
	}
	return Controller.Get(entry), true
}

// MeshSlots returns the mesh slot children of e in skeleton slot order.
func (p *Plugin) MeshSlots(e donburi.Entity) []donburi.Entity {
	cd, ok := p.controllerData(e)
	if !ok {
		return nil
	}
	return append([]donburi.Entity(nil), cd.Slots...)
}

// FindBoneProxy returns the proxy entity of the named bone of e.
func (p *Plugin) FindBoneProxy(e donburi.Entity, bone string) (donburi.Entity, bool) {
	cd, ok := p.controllerData(e)
	if !ok || cd.RootBone == donburi.Null {
		return donburi.Null, false
	}
	b := cd.Controller.Skeleton.FindBone(bone)
	if b == nil {
		return donburi.Null, false
	}
	return p.findProxy(cd.RootBone, b.Handle())
}

func (p *Plugin) findProxy(e donburi.Entity, h rig.BoneHandle) (donburi.Entity, bool) {
	if !p.world.Valid(e) {
		return donburi.Null, false
	}
	entry := p.world.Entry(e)
	if entry.HasComponent(BoneProxy) && BoneProxy.Get(entry).Bone == h {
		return e, true
	}
	for _, c := range scene.ChildrenOf(p.world, e) {
		if found, ok := p.findProxy(c, h); ok {
			return found, true
		}
	}
	return donburi.Null, false
}

// SetAnimation replaces the current animation of a track on e.
func (p *Plugin) SetAnimation(e donburi.Entity, track int, name string, loop bool) (*rig.TrackEntry, error) {
	ctrl, ok := p.Controller(e)
	if !ok {
		return nil, ErrNotReady
	}
	return ctrl.AnimationState.SetAnimation(track, name, loop)
}

// AddAnimation queues an animation after the current one of a track on e.
func (p *Plugin) AddAnimation(e donburi.Entity, track int, name string, loop bool, delay float32) (*rig.TrackEntry, error) {
	ctrl, ok := p.Controller(e)
	if !ok {
		return nil, ErrNotReady
	}
	return ctrl.AnimationState.AddAnimation(track, name, loop, delay)
}

// ClearTrack stops a track on e.
func (p *Plugin) ClearTrack(e donburi.Entity, track int) error {
	ctrl, ok := p.Controller(e)
	if !ok {
		return ErrNotReady
	}
	ctrl.AnimationState.ClearTrack(track)
	return nil
}

// SetTimeScale changes the playback speed of every track on e.
func (p *Plugin) SetTimeScale(e donburi.Entity, scale float32) error {
	ctrl, ok := p.Controller(e)
	if !ok {
		return ErrNotReady
	}
	ctrl.AnimationState.TimeScale = scale
	return nil
}
