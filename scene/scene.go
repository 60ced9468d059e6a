// Package scene holds the input surface of the outline pipeline: the
// meshes that should be outlined, their world transforms, and the
// camera rendering them. Resolve flattens this into the per-draw data
// the renderer uploads to the GPU.
package scene

import (
	"honnef.co/go/jumpflood/jmath"
)

// Mesh is a triangle mesh. If Indices is empty, Positions is
// interpreted as a flat triangle list.
type Mesh struct {
	Positions [][3]float32
	Indices   []uint32
}

// Triangles returns the mesh's vertex positions as a flat triangle
// list, with indices expanded. The result is laid out x, y, z per
// vertex, ready for upload into a storage buffer.
func (m *Mesh) Triangles() []float32 {
	if len(m.Indices) == 0 {
		out := make([]float32, 0, len(m.Positions)*3)
		for _, p := range m.Positions {
			out = append(out, p[0], p[1], p[2])
		}
		return out
	}
	out := make([]float32, 0, len(m.Indices)*3)
	for _, ix := range m.Indices {
		p := m.Positions[ix]
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

// Instance places a mesh in the world. Only enabled instances
// contribute to the outline.
type Instance struct {
	Mesh      *Mesh
	Transform jmath.Mat4
	Enabled   bool
}

type Camera struct {
	ViewProjection jmath.Mat4
}

// Draw is one resolved mask draw.
type Draw struct {
	// Clip-space-from-model-space transform.
	Clip jmath.Mat4
	// The instance's origin projected to screen space, mapped to
	// [0, 1]. Used as a coarse per-object identity signal to keep the
	// flood from bleeding between adjacent objects. This is a
	// heuristic, not a true object ID: instances whose projected
	// origins coincide can still bleed into each other.
	Origin [2]float32
	// Flat triangle list, see Mesh.Triangles.
	Vertices []float32
}

// Resolve computes the draw list for one frame. Disabled instances and
// empty meshes are skipped; an empty result is valid and produces an
// all-background mask.
func Resolve(instances []Instance, camera Camera) []Draw {
	var out []Draw
	for _, inst := range instances {
		if !inst.Enabled || inst.Mesh == nil {
			continue
		}
		verts := inst.Mesh.Triangles()
		if len(verts) == 0 {
			continue
		}
		clip := camera.ViewProjection.Mul(inst.Transform)
		out = append(out, Draw{
			Clip:     clip,
			Origin:   projectOrigin(clip),
			Vertices: verts,
		})
	}
	return out
}

func projectOrigin(clip jmath.Mat4) [2]float32 {
	o := clip.MulVec4([4]float32{0, 0, 0, 1})
	if o[3] == 0 {
		return [2]float32{0.5, 0.5}
	}
	x := o[0]/o[3]*0.5 + 0.5
	y := o[1]/o[3]*0.5 + 0.5
	return [2]float32{
		jmath.Clamp(x, 0, 1),
		jmath.Clamp(y, 0, 1),
	}
}
