package scene

import (
	"testing"

	"github.com/yohamta/donburi"

	"github.com/Faultbox/skelbridge/pkg/math"
)

func TestPropagate(t *testing.T) {
	w := donburi.NewWorld()
	root := Spawn(w, math.FromXYZ(10, 0, 0))
	child := Spawn(w, math.FromXYZ(0, 5, 0))
	grand := Spawn(w, math.FromXYZ(1, 1, 1))
	AddChild(w, root.Entity(), child.Entity())
	AddChild(w, child.Entity(), grand.Entity())

	Propagate(w)

	got := GlobalTransform.Get(w.Entry(grand.Entity())).Translation()
	want := math.Vec3{X: 11, Y: 6, Z: 1}
	if !got.ApproxEqual(want, 1e-5) {
		t.Errorf("grandchild global = %v, want %v", got, want)
	}
}

func TestPropagateRotation(t *testing.T) {
	w := donburi.NewWorld()
	local := math.IdentityTransform()
	local.Rotation = math.QuatFromRotationZ(90)
	root := Spawn(w, local)
	child := Spawn(w, math.FromXYZ(1, 0, 0))
	AddChild(w, root.Entity(), child.Entity())

	Propagate(w)

	got := GlobalTransform.Get(w.Entry(child.Entity())).Translation()
	if !got.ApproxEqual(math.Vec3{X: 0, Y: 1, Z: 0}, 1e-5) {
		t.Errorf("rotated child global = %v, want (0,1,0)", got)
	}
}

func TestPropagateFrom(t *testing.T) {
	w := donburi.NewWorld()
	root := Spawn(w, math.FromXYZ(3, 0, 0))
	child := Spawn(w, math.FromXYZ(1, 0, 0))
	AddChild(w, root.Entity(), child.Entity())
	Propagate(w)

	Transform.Get(w.Entry(child.Entity())).Translation.X = 2
	PropagateFrom(w, child.Entity())

	if got := GlobalTransform.Get(w.Entry(child.Entity())).Translation().X; got != 5 {
		t.Errorf("child global x = %v, want 5", got)
	}
}

func TestAddChildMoves(t *testing.T) {
	w := donburi.NewWorld()
	a := Spawn(w, math.IdentityTransform())
	b := Spawn(w, math.IdentityTransform())
	c := Spawn(w, math.IdentityTransform())

	AddChild(w, a.Entity(), c.Entity())
	AddChild(w, b.Entity(), c.Entity())

	if n := len(ChildrenOf(w, a.Entity())); n != 0 {
		t.Errorf("old parent keeps %d children", n)
	}
	if kids := ChildrenOf(w, b.Entity()); len(kids) != 1 || kids[0] != c.Entity() {
		t.Errorf("new parent children = %v", kids)
	}
	if p, ok := ParentOf(w, c.Entity()); !ok || p != b.Entity() {
		t.Error("child parent not updated")
	}
}

func TestDespawnSubtree(t *testing.T) {
	w := donburi.NewWorld()
	keep := Spawn(w, math.IdentityTransform())
	root := Spawn(w, math.IdentityTransform())
	child := Spawn(w, math.IdentityTransform())
	grand := Spawn(w, math.IdentityTransform())
	AddChild(w, keep.Entity(), root.Entity())
	AddChild(w, root.Entity(), child.Entity())
	AddChild(w, child.Entity(), grand.Entity())

	rootE, childE, grandE := root.Entity(), child.Entity(), grand.Entity()
	Despawn(w, rootE)

	for _, e := range []donburi.Entity{rootE, childE, grandE} {
		if w.Valid(e) {
			t.Errorf("entity %v still alive", e)
		}
	}
	if !w.Valid(keep.Entity()) {
		t.Error("parent removed")
	}
	if n := len(ChildrenOf(w, keep.Entity())); n != 0 {
		t.Errorf("parent still lists %d children", n)
	}
}

func TestCommands(t *testing.T) {
	w := donburi.NewWorld()
	var cmds Commands
	var order []int

	cmds.Push(func(w donburi.World) {
		order = append(order, 1)
		cmds.Push(func(donburi.World) { order = append(order, 3) })
	})
	cmds.Push(func(donburi.World) { order = append(order, 2) })

	if cmds.Len() != 2 {
		t.Errorf("Len() = %d, want 2", cmds.Len())
	}
	cmds.Apply(w)

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("order = %v, want [1 2 3]", order)
	}
	if cmds.Len() != 0 {
		t.Error("queue not drained")
	}
}
