package scene

import (
	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/component"
	"github.com/yohamta/donburi/filter"

	"github.com/Faultbox/skelbridge/pkg/math"
)

// ParentData points at the owning entity.
type ParentData struct {
	Entity donburi.Entity
}

// ChildrenData lists child entities in insertion order.
type ChildrenData struct {
	Entities []donburi.Entity
}

// Components of the transform hierarchy.
var (
	Transform       = donburi.NewComponentType[math.Transform]()
	GlobalTransform = donburi.NewComponentType[math.Mat4]()
	Parent          = donburi.NewComponentType[ParentData]()
	Children        = donburi.NewComponentType[ChildrenData]()
)

var roots = donburi.NewQuery(filter.And(
	filter.Contains(Transform, GlobalTransform),
	filter.Not(filter.Contains(Parent)),
))

// Spawn creates an entity with a local and global transform plus any extra
// components, and returns its entry.
func Spawn(w donburi.World, local math.Transform, extra ...component.IComponentType) *donburi.Entry {
	comps := append([]component.IComponentType{Transform, GlobalTransform}, extra...)
	entry := w.Entry(w.Create(comps...))
	Transform.SetValue(entry, local)
	GlobalTransform.SetValue(entry, local.Matrix())
	return entry
}

// AddChild attaches child under parent. A child already attached elsewhere is
// moved.
func AddChild(w donburi.World, parent, child donburi.Entity) {
	ce := w.Entry(child)
	if ce.HasComponent(Parent) {
		detach(w, ce)
	} else {
		ce.AddComponent(Parent)
	}
	Parent.SetValue(ce, ParentData{Entity: parent})

	pe := w.Entry(parent)
	if !pe.HasComponent(Children) {
		pe.AddComponent(Children)
	}
	kids := Children.Get(pe)
	kids.Entities = append(kids.Entities, child)
}

// ChildrenOf returns the children of e, or nil.
func ChildrenOf(w donburi.World, e donburi.Entity) []donburi.Entity {
	if !w.Valid(e) {
		return nil
	}
	entry := w.Entry(e)
	if !entry.HasComponent(Children) {
		return nil
	}
	return Children.Get(entry).Entities
}

// ParentOf returns the parent of e.
func ParentOf(w donburi.World, e donburi.Entity) (donburi.Entity, bool) {
	if !w.Valid(e) {
		return donburi.Null, false
	}
	entry := w.Entry(e)
	if !entry.HasComponent(Parent) {
		return donburi.Null, false
	}
	return Parent.Get(entry).Entity, true
}

func detach(w donburi.World, child *donburi.Entry) {
	p := Parent.Get(child).Entity
	if !w.Valid(p) {
		return
	}
	pe := w.Entry(p)
	if !pe.HasComponent(Children) {
		return
	}
	kids := Children.Get(pe)
	for i, e := range kids.Entities {
		if e == child.Entity() {
			kids.Entities = append(kids.Entities[:i], kids.Entities[i+1:]...)
			return
		}
	}
}

// Despawn removes e and its whole subtree.
func Despawn(w donburi.World, e donburi.Entity) {
	if !w.Valid(e) {
		return
	}
	entry := w.Entry(e)
	if entry.HasComponent(Parent) {
		detach(w, entry)
	}
	despawnTree(w, e)
}

func despawnTree(w donburi.World, e donburi.Entity) {
	for _, c := range append([]donburi.Entity(nil), ChildrenOf(w, e)...) {
		if w.Valid(c) {
			despawnTree(w, c)
		}
	}
	w.Remove(e)
}

// Propagate recomputes GlobalTransform for every hierarchy in the world.
func Propagate(w donburi.World) {
	var top []donburi.Entity
	roots.Each(w, func(entry *donburi.Entry) {
		top = append(top, entry.Entity())
	})
	for _, e := range top {
		propagate(w, e, math.Identity())
	}
}

// PropagateFrom recomputes GlobalTransform for the subtree rooted at e,
// starting from its parent's current global transform.
func PropagateFrom(w donburi.World, e donburi.Entity) {
	if !w.Valid(e) {
		return
	}
	base := math.Identity()
	if p, ok := ParentOf(w, e); ok && w.Valid(p) {
		if pe := w.Entry(p); pe.HasComponent(GlobalTransform) {
			base = *GlobalTransform.Get(pe)
		}
	}
	propagate(w, e, base)
}

func propagate(w donburi.World, e donburi.Entity, parent math.Mat4) {
	entry := w.Entry(e)
	if !entry.HasComponent(Transform) || !entry.HasComponent(GlobalTransform) {
		return
	}
	global := parent.Mul(Transform.Get(entry).Matrix())
	GlobalTransform.SetValue(entry, global)
	for _, c := range ChildrenOf(w, e) {
		if w.Valid(c) {
			propagate(w, c, global)
		}
	}
}
