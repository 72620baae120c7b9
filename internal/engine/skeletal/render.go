package skeletal

import (
	"context"
	"fmt"

	"github.com/yohamta/donburi"
	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/skelbridge/internal/engine/material"
	"github.com/Faultbox/skelbridge/internal/engine/mesh"
	"github.com/Faultbox/skelbridge/pkg/rig"
)

type slotTarget struct {
	entity   donburi.Entity
	mesh     *mesh.Mesh // nil when the slot entity cannot be rendered
	material MaterialSlotData
	attached bool
}

type renderJob struct {
	owner donburi.Entity
	ctrl  *rig.Controller
	slots []slotTarget
}

// Render rebuilds the mesh and material of every mesh slot from its
// controller's renderables. Controllers are processed in parallel; component
// changes are applied once every worker has finished.
func (p *Plugin) Render(ctx context.Context, _ float32) error {
	jobs := p.renderJobs()

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i := range jobs {
		job := &jobs[i]
		g.Go(func() error {
			return p.renderController(job)
		})
	}
	err := g.Wait()
	p.cmds.Apply(p.world)
	return err
}

// renderJobs snapshots everything the workers touch so they never access the
// world concurrently.
func (p *Plugin) renderJobs() []renderJob {
	var jobs []renderJob
	controllers.Each(p.world, func(entry *donburi.Entry) {
		cd := Controller.Get(entry)
		job := renderJob{
			owner: entry.Entity(),
			ctrl:  cd.Controller,
			slots: make([]slotTarget, 0, len(cd.Slots)),
		}
		for _, e := range cd.Slots {
			// Slots stay positional: an unusable child keeps its index with a
			// nil mesh.
			if !p.world.Valid(e) {
				job.slots = append(job.slots, slotTarget{entity: e})
				continue
			}
			se := p.world.Entry(e)
			if !se.HasComponent(MeshSlot) {
				job.slots = append(job.slots, slotTarget{entity: e})
				continue
			}
			m, _ := p.meshes.Get(MeshSlot.Get(se).Mesh)
			t := slotTarget{entity: e, mesh: m}
			if se.HasComponent(MaterialSlot) {
				t.material = *MaterialSlot.Get(se)
				t.attached = true
			}
			job.slots = append(job.slots, t)
		}
		jobs = append(jobs, job)
	})
	return jobs
}

func (p *Plugin) renderController(job *renderJob) error {
	renderables := job.ctrl.Renderables()
	for i := range job.slots {
		slot := &job.slots[i]
		if slot.mesh == nil {
			continue
		}
		if i >= len(renderables) {
			slot.mesh.SetEmpty()
			continue
		}
		r := &renderables[i]
		slot.mesh.Replace(r.Vertices, r.UVs, r.Indices, 0)

		if r.Texture == 0 {
			p.detachMaterial(slot)
			continue
		}
		tex, ok := p.assets.Textures().Lookup(r.Texture)
		if !ok {
			return fmt.Errorf("slot %d texture %d: %w", r.SlotIndex, r.Texture, ErrDanglingTexture)
		}

		variant := material.VariantFor(r.BlendMode, r.PremultipliedAlpha)
		if slot.attached && slot.material.Variant == variant {
			if m, ok := p.materials.Get(slot.material.Material); ok {
				m.Update(tex, r.Color, r.DarkColor)
				continue
			}
		}

		p.detachMaterial(slot)
		data := MaterialSlotData{
			Variant:  variant,
			Material: p.materials.Add(material.New(variant, tex, r.Color, r.DarkColor)),
		}
		e := slot.entity
		p.cmds.Push(func(w donburi.World) {
			if !w.Valid(e) {
				p.materials.Remove(data.Material)
				return
			}
			entry := w.Entry(e)
			if !entry.HasComponent(MaterialSlot) {
				entry.AddComponent(MaterialSlot)
				entry = w.Entry(e)
			}
			MaterialSlot.SetValue(entry, data)
		})
		slot.material = data
		slot.attached = true
	}
	return nil
}

func (p *Plugin) detachMaterial(slot *slotTarget) {
	if !slot.attached {
		return
	}
	p.materials.Remove(slot.material.Material)
	e := slot.entity
	p.cmds.Push(func(w donburi.World) {
		if !w.Valid(e) {
			return
		}
		if entry := w.Entry(e); entry.HasComponent(MaterialSlot) {
			entry.RemoveComponent(MaterialSlot)
		}
	})
	slot.attached = false
	slot.material = MaterialSlotData{}
}
