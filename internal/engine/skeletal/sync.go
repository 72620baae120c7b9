package skeletal

import (
	"context"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"

	"github.com/Faultbox/skelbridge/internal/engine/scene"
	"github.com/Faultbox/skelbridge/pkg/math"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

var (
	animatedProxies = donburi.NewQuery(filter.And(
		filter.Contains(BoneProxy, scene.Transform),
		filter.Not(filter.Contains(ExternallyDriven)),
	))
	drivenProxies = donburi.NewQuery(filter.Contains(BoneProxy, scene.Transform, ExternallyDriven))
)

// bone resolves a proxy's bone through its owner's controller.
func (p *Plugin) bone(proxy *BoneProxyData) (*rig.Skeleton, *rig.Bone, bool) {
	if !p.world.Valid(proxy.Owner) {
		return nil, nil, false
	}
	owner := p.world.Entry(proxy.Owner)
	if !owner.HasComponent(Controller) {
		return nil, nil, false
	}
	sk := Controller.Get(owner).Controller.Skeleton
	b, ok := sk.Bone(proxy.Bone)
	if !ok {
		return nil, nil, false
	}
	return sk, b, true
}

// SyncEntities copies every animated bone's local transform onto its proxy.
// The proxy's z is preserved. Externally driven proxies are left alone.
func (p *Plugin) SyncEntities(_ context.Context, _ float32) error {
	animatedProxies.Each(p.world, func(entry *donburi.Entry) {
		_, b, ok := p.bone(BoneProxy.Get(entry))
		if !ok {
			return
		}
		t := scene.Transform.Get(entry)
		*t = boneTransform(b, t.Translation.Z)
	})
	return nil
}

// SyncBones propagates global transforms through every controller subtree.
func (p *Plugin) SyncBones(_ context.Context, _ float32) error {
	var roots []donburi.Entity
	controllers.Each(p.world, func(entry *donburi.Entry) {
		roots = append(roots, entry.Entity())
	})
	for _, e := range roots {
		scene.PropagateFrom(p.world, e)
	}
	return nil
}

// SyncEntitiesApplied writes externally driven proxy transforms into their
// bones, pinning them against animation, and unpins bones whose proxy is no
// longer driven. Affected skeletons get their world transforms recomputed.
func (p *Plugin) SyncEntitiesApplied(_ context.Context, _ float32) error {
	dirty := make(map[*rig.Skeleton]struct{})

	drivenProxies.Each(p.world, func(entry *donburi.Entry) {
		sk, b, ok := p.bone(BoneProxy.Get(entry))
		if !ok {
			return
		}
		t := scene.Transform.Get(entry)
		b.X = t.Translation.X
		b.Y = t.Translation.Y
		b.Rotation = t.Rotation.AngleZ()
		b.ScaleX = t.Scale.X
		b.ScaleY = t.Scale.Y
		b.SetPinned(true)
		dirty[sk] = struct{}{}
	})

	animatedProxies.Each(p.world, func(entry *donburi.Entry) {
		sk, b, ok := p.bone(BoneProxy.Get(entry))
		if !ok || !b.Pinned() {
			return
		}
		b.SetPinned(false)
		dirty[sk] = struct{}{}
	})

	for sk := range dirty {
		sk.UpdateWorldTransform()
	}
	return nil
}

// DriveBone marks proxy as externally driven and sets its local transform.
// It must not be called while a query is iterating.
func DriveBone(w donburi.World, proxy donburi.Entity, local math.Transform) {
	entry := w.Entry(proxy)
	if !entry.HasComponent(ExternallyDriven) {
		entry.AddComponent(ExternallyDriven)
		entry = w.Entry(proxy)
	}
	scene.Transform.SetValue(entry, local)
}

// ReleaseBone hands proxy back to animation. The bone is unpinned during the
// next SyncEntitiesApplied.
func ReleaseBone(w donburi.World, proxy donburi.Entity) {
	entry := w.Entry(proxy)
	if entry.HasComponent(ExternallyDriven) {
		entry.RemoveComponent(ExternallyDriven)
	}
}
