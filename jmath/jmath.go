package jmath

import (
	"structs"

	"github.com/chewxy/math32"
	"golang.org/x/exp/constraints"
)

func Clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}

func AlignUp(len int, alignment int) int {
	return (len + alignment - 1) & -alignment
}

type Vec2 struct {
	X, Y float32
}

func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v.X - o.X, v.Y - o.Y}
}

func (v Vec2) Mul(o Vec2) Vec2 {
	return Vec2{v.X * o.X, v.Y * o.Y}
}

func (v Vec2) Dot(o Vec2) float32 {
	return v.X*o.X + v.Y*o.Y
}

func (v Vec2) Length() float32 {
	return math32.Hypot(v.X, v.Y)
}

func (v Vec2) LengthSquared() float32 {
	return v.Dot(v)
}

func (v Vec2) Distance(o Vec2) float32 {
	return v.Sub(o).Length()
}

// Mat4 is a column-major 4x4 matrix, matching the memory layout of a
// WGSL mat4x4<f32>.
type Mat4 struct {
	_ structs.HostLayout

	Cols [16]float32
}

var Identity = Mat4{
	Cols: [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	},
}

func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m.Cols[k*4+r] * other.Cols[c*4+k]
			}
			out.Cols[c*4+r] = sum
		}
	}
	return out
}

func (m Mat4) MulVec4(v [4]float32) [4]float32 {
	var out [4]float32
	for r := 0; r < 4; r++ {
		out[r] = m.Cols[r]*v[0] + m.Cols[4+r]*v[1] + m.Cols[8+r]*v[2] + m.Cols[12+r]*v[3]
	}
	return out
}

// Translate returns a translation matrix. It mostly exists so that
// tests don't have to spell out all 16 coefficients.
func Translate(x, y, z float32) Mat4 {
	m := Identity
	m.Cols[12] = x
	m.Cols[13] = y
	m.Cols[14] = z
	return m
}
