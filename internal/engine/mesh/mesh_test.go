package mesh

import "testing"

func TestReplace(t *testing.T) {
	m := New()
	m.Replace(
		[][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}},
		[][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}},
		[]uint16{2, 1, 0, 0, 3, 2},
		0.5,
	)

	if m.VertexCount() != 4 || len(m.Normals) != 4 || len(m.UVs) != 4 || len(m.Indices) != 6 {
		t.Fatalf("unexpected sizes: %d pos, %d normals, %d uvs, %d indices",
			len(m.Positions), len(m.Normals), len(m.UVs), len(m.Indices))
	}
	if m.Positions[2] != [3]float32{1, 1, 0.5} {
		t.Errorf("Positions[2] = %v", m.Positions[2])
	}
	for i, n := range m.Normals {
		if n != [3]float32{} {
			t.Errorf("Normals[%d] = %v, want zero", i, n)
		}
	}
	if m.Bounds.Min != [3]float32{-1, -1, 0.5} || m.Bounds.Max != [3]float32{1, 1, 0.5} {
		t.Errorf("Bounds = %+v", m.Bounds)
	}
	if m.Revision != 1 {
		t.Errorf("Revision = %d, want 1", m.Revision)
	}
}

func TestReplaceLeavesPreviousFrameIntact(t *testing.T) {
	m := New()
	m.Replace([][2]float32{{1, 2}, {3, 4}, {5, 6}}, [][2]float32{{0, 0}, {1, 0}, {1, 1}}, []uint16{0, 1, 2}, 0)
	positions, uvs, indices := m.Positions, m.UVs, m.Indices

	m.Replace([][2]float32{{7, 8}, {9, 10}, {11, 12}}, [][2]float32{{1, 1}, {0, 1}, {0, 0}}, []uint16{2, 1, 0}, 1)

	if positions[0] != [3]float32{1, 2, 0} || uvs[0] != [2]float32{0, 0} || indices[0] != 0 {
		t.Errorf("previous frame overwritten: %v %v %v", positions, uvs, indices)
	}
	if m.Positions[0] != [3]float32{7, 8, 1} || m.Indices[0] != 2 {
		t.Errorf("current frame = %v %v", m.Positions, m.Indices)
	}

	m.SetEmpty()
	if positions[2] != [3]float32{5, 6, 0} {
		t.Errorf("SetEmpty touched an earlier frame: %v", positions)
	}
}

func TestSetEmpty(t *testing.T) {
	m := New()
	m.SetEmpty()
	if m.Revision != 0 {
		t.Error("emptying an empty mesh should not bump the revision")
	}

	m.Replace([][2]float32{{0, 0}, {1, 0}, {0, 1}}, [][2]float32{{0, 0}, {1, 0}, {0, 1}}, []uint16{0, 1, 2}, 0)
	m.SetEmpty()
	if !m.Empty() || m.VertexCount() != 0 || len(m.UVs) != 0 || len(m.Normals) != 0 {
		t.Error("expected all attributes cleared")
	}
	if m.Revision != 2 {
		t.Errorf("Revision = %d, want 2", m.Revision)
	}
}
