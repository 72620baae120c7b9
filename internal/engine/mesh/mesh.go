// Package mesh holds CPU-side triangle geometry for a rasterizer.
package mesh

// Mesh is an indexed triangle list. All attribute slices have one entry per
// vertex; Indices references them in triples.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint16
	Bounds    Bounds

	// Revision increments on every write so an uploader can skip unchanged meshes.
	Revision uint64
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// New returns an empty mesh.
func New() *Mesh {
	return &Mesh{}
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) }

// Empty reports whether the mesh has no triangles.
func (m *Mesh) Empty() bool { return len(m.Indices) == 0 }

// Replace swaps every attribute for freshly allocated buffers built from 2D
// vertices at depth z. Slices handed out for an earlier frame are never
// written again. Normals are zero.
func (m *Mesh) Replace(vertices, uvs [][2]float32, indices []uint16, z float32) {
	n := len(vertices)
	m.Positions = make([][3]float32, n)
	m.Normals = make([][3]float32, n)
	m.UVs = append([][2]float32(nil), uvs...)
	m.Indices = append([]uint16(nil), indices...)

	for i, v := range vertices {
		m.Positions[i] = [3]float32{v[0], v[1], z}
	}
	m.computeBounds()
	m.Revision++
}

// SetEmpty drops the geometry.
func (m *Mesh) SetEmpty() {
	if len(m.Positions) == 0 && len(m.Indices) == 0 {
		return
	}
	m.Positions = nil
	m.Normals = nil
	m.UVs = nil
	m.Indices = nil
	m.Bounds = Bounds{}
	m.Revision++
}

func (m *Mesh) computeBounds() {
	if len(m.Positions) == 0 {
		m.Bounds = Bounds{}
		return
	}
	b := Bounds{Min: m.Positions[0], Max: m.Positions[0]}
	for _, p := range m.Positions[1:] {
		for k := 0; k < 3; k++ {
			b.Min[k] = min(b.Min[k], p[k])
			b.Max[k] = max(b.Max[k], p[k])
		}
	}
	m.Bounds = b
}
