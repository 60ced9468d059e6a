// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package cpu

import (
	"github.com/chewxy/math32"

	"honnef.co/go/jumpflood/jmath"
	"honnef.co/go/jumpflood/renderer"
)

// Mask replicates shaders/wgsl/mask.wgsl: rasterizes one instance's
// triangles into the mask image, sampling at pixel centers with no
// multisampling and no face culling. Triangles with a vertex behind
// the camera are skipped rather than clipped; good enough for a debug
// rasterizer.
func Mask(dims *renderer.DimensionsUniform, instance *renderer.InstanceUniform, vertices []float32, mask *MaskImage) {
	texel := [4]float32{1, instance.Origin[0], instance.Origin[1], 1}

	for base := 0; base+9 <= len(vertices); base += 9 {
		var screen [3]jmath.Vec2
		behind := false
		for i := 0; i < 3; i++ {
			clip := instance.Clip.MulVec4([4]float32{
				vertices[base+i*3],
				vertices[base+i*3+1],
				vertices[base+i*3+2],
				1,
			})
			if clip[3] <= 0 {
				behind = true
				break
			}
			// NDC to framebuffer coordinates, y pointing down.
			ndcX := clip[0] / clip[3]
			ndcY := clip[1] / clip[3]
			screen[i] = jmath.Vec2{
				X: (ndcX*0.5 + 0.5) * dims.Width,
				Y: (1 - (ndcY*0.5 + 0.5)) * dims.Height,
			}
		}
		if behind {
			continue
		}
		fillTriangle(screen, texel, mask)
	}
}

func fillTriangle(tri [3]jmath.Vec2, texel [4]float32, mask *MaskImage) {
	a, b, c := tri[0], tri[1], tri[2]
	area := edge(a, b, c)
	if area == 0 {
		return
	}

	minX := int(math32.Floor(min(a.X, b.X, c.X)))
	maxX := int(math32.Ceil(max(a.X, b.X, c.X)))
	minY := int(math32.Floor(min(a.Y, b.Y, c.Y)))
	maxY := int(math32.Ceil(max(a.Y, b.Y, c.Y)))
	minX = jmath.Clamp(minX, 0, mask.Width-1)
	maxX = jmath.Clamp(maxX, 0, mask.Width-1)
	minY = jmath.Clamp(minY, 0, mask.Height-1)
	maxY = jmath.Clamp(maxY, 0, mask.Height-1)

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			p := jmath.Vec2{X: float32(x) + 0.5, Y: float32(y) + 0.5}
			w0 := edge(b, c, p)
			w1 := edge(c, a, p)
			w2 := edge(a, b, p)
			inside := (w0 >= 0 && w1 >= 0 && w2 >= 0) ||
				(w0 <= 0 && w1 <= 0 && w2 <= 0)
			if inside {
				mask.Pix[y*mask.Width+x] = texel
			}
		}
	}
}

func edge(a, b, p jmath.Vec2) float32 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}
