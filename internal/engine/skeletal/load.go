package skeletal

import (
	"context"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/filter"
	"go.uber.org/zap"

	"github.com/Faultbox/skelbridge/internal/engine/mesh"
	"github.com/Faultbox/skelbridge/internal/engine/scene"
	"github.com/Faultbox/skelbridge/pkg/math"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

// boneProxyDepth is the z offset of every bone proxy relative to its parent.
const boneProxyDepth = 1

var loading = donburi.NewQuery(filter.Contains(Loader, SkeletonRef))

// Load publishes last tick's ready notifications, then tries to build a
// controller for every Loading entity. Missing assets are retried next tick.
// Deferred texture loads are triggered on every call.
func (p *Plugin) Load(_ context.Context, _ float32) error {
	p.ready.Reset()
	for _, e := range p.pendingReady {
		if p.world.Valid(e) {
			p.ready.Send(ReadyEvent{Entity: e})
		}
	}
	p.pendingReady = p.pendingReady[:0]

	loading.Each(p.world, func(entry *donburi.Entry) {
		ld := Loader.Get(entry)
		if ld.State != Loading {
			return
		}
		p.tryLoad(entry, ld)
	})
	p.cmds.Apply(p.world)

	if n := p.assets.UpdateTextures(); n > 0 {
		p.log.Debug("textures loaded", zap.Int("count", n))
	}
	return nil
}

func (p *Plugin) tryLoad(entry *donburi.Entry, ld *LoaderData) {
	e := entry.Entity()
	skel, ok := p.assets.Skeleton(SkeletonRef.Get(entry).Handle)
	if !ok {
		return
	}
	atlas, ok := p.assets.Atlas(skel.Atlas)
	if !ok {
		return
	}
	src, ok := p.assets.Source(skel.Source)
	if !ok {
		return
	}

	data, err := skel.Parse(atlas, src)
	if err != nil {
		ld.Attempts++
		ld.Err = err
		if ld.Attempts >= p.opts.MaxParseAttempts {
			ld.State = Failed
			p.log.Warn("skeleton load failed",
				entityField(e),
				zap.String("source", src.Path),
				zap.Int("attempts", ld.Attempts),
				zap.Error(err))
			return
		}
		p.log.Debug("skeleton parse failed, retrying",
			entityField(e),
			zap.Int("attempt", ld.Attempts),
			zap.Error(err))
		return
	}

	stateData := rig.NewStateData(data)
	stateData.DefaultMix = p.opts.DefaultMix
	if entry.HasComponent(Crossfades) {
		if err := Crossfades.Get(entry).apply(stateData); err != nil {
			p.log.Warn("ignoring crossfade override", entityField(e), zap.Error(err))
		}
	}

	ctrl := rig.NewController(data, stateData, rig.Settings{
		CullDirection:      rig.CullCounterClockwise,
		PremultipliedAlpha: atlas.Atlas.PremultipliedAlpha(),
	})
	ctrl.AnimationState.TimeScale = p.opts.TimeScale

	ld.State = Ready
	ld.Err = nil
	p.cmds.Push(func(w donburi.World) {
		p.instantiate(w, e, ctrl)
	})
	p.pendingReady = append(p.pendingReady, e)

	p.log.Debug("skeleton ready",
		entityField(e),
		zap.String("skeleton", data.Name),
		zap.Int("bones", len(data.Bones)),
		zap.Int("slots", len(data.Slots)))
}

// instantiate spawns the mesh slots and the bone proxy tree of e and attaches
// the controller.
func (p *Plugin) instantiate(w donburi.World, e donburi.Entity, ctrl *rig.Controller) {
	if !w.Valid(e) {
		return
	}

	sk := ctrl.Skeleton
	cd := ControllerData{Controller: ctrl, Slots: make([]donburi.Entity, len(sk.Slots))}

	z := float32(0)
	for i := range sk.Slots {
		child := scene.Spawn(w, math.FromXYZ(0, 0, z), MeshSlot)
		MeshSlot.SetValue(child, MeshSlotData{Index: i, Mesh: p.meshes.Add(mesh.New())})
		scene.AddChild(w, e, child.Entity())
		cd.Slots[i] = child.Entity()
		z += p.opts.SlotDepthStep
	}

	if root := sk.BoneRoot(); root != nil {
		cd.RootBone = p.spawnBone(w, e, e, root)
	}

	entry := w.Entry(e)
	if !entry.HasComponent(Controller) {
		entry.AddComponent(Controller)
	}
	Controller.SetValue(entry, cd)
}

func (p *Plugin) spawnBone(w donburi.World, owner, parent donburi.Entity, bone *rig.Bone) donburi.Entity {
	proxy := scene.Spawn(w, boneTransform(bone, boneProxyDepth), BoneProxy)
	BoneProxy.SetValue(proxy, BoneProxyData{Owner: owner, Bone: bone.Handle()})
	id := proxy.Entity()
	scene.AddChild(w, parent, id)
	for _, c := range bone.Children() {
		p.spawnBone(w, owner, id, c)
	}
	return id
}

func boneTransform(b *rig.Bone, z float32) math.Transform {
	return math.Transform{
		Translation: math.Vec3{X: b.X, Y: b.Y, Z: z},
		Rotation:    math.QuatFromRotationZ(b.Rotation),
		Scale:       math.Vec3{X: b.ScaleX, Y: b.ScaleY, Z: 1},
	}
}
