// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package cpu

import (
	"honnef.co/go/jumpflood/renderer"
)

// JfaInit replicates shaders/wgsl/jfa_init.wgsl: every pixel within
// one texel of a mask transition stores its own normalized coordinate,
// every other pixel stores the sentinel.
func JfaInit(dims *renderer.DimensionsUniform, mask *MaskImage, seeds *SeedImage) {
	pairDiffers := func(x, y, dx, dy int) bool {
		return mask.signal(x+dx, y+dy) != mask.signal(x-dx, y-dy)
	}
	for y := 0; y < int(dims.Height); y++ {
		for x := 0; x < int(dims.Width); x++ {
			edge := pairDiffers(x, y, 1, 0) ||
				pairDiffers(x, y, 0, 1) ||
				pairDiffers(x, y, 1, 1) ||
				pairDiffers(x, y, 1, -1)

			seed := Sentinel
			if edge {
				seed = [2]float32{
					(float32(x) + 0.5) * dims.InvWidth,
					(float32(y) + 0.5) * dims.InvHeight,
				}
			}
			seeds.set(x, y, seed)
		}
	}
}

// Jfa replicates shaders/wgsl/jfa.wgsl: one flood step at the given
// jump distance, reading src and writing dst.
func Jfa(dims *renderer.DimensionsUniform, jump *renderer.JumpUniform, src, dst *SeedImage) {
	width := int(dims.Width)
	height := int(dims.Height)
	step := int(jump.Step)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := [2]float32{
				(float32(x) + 0.5) * dims.InvWidth,
				(float32(y) + 0.5) * dims.InvHeight,
			}

			best := Sentinel
			var bestDist float32
			if center := src.At(x, y); !isSentinel(center) {
				best = center
				bestDist = seedDistSq(dims, p, center)
			}

			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx := x + dx*step
					ny := y + dy*step
					if nx < 0 || ny < 0 || nx >= width || ny >= height {
						continue
					}
					candidate := src.At(nx, ny)
					if isSentinel(candidate) {
						continue
					}
					dist := seedDistSq(dims, p, candidate)
					if isSentinel(best) || dist < bestDist {
						best = candidate
						bestDist = dist
					}
				}
			}
			dst.set(x, y, best)
		}
	}
}

// seedDistSq is the squared pixel-space distance between a pixel's
// normalized center coordinate and a seed coordinate.
func seedDistSq(dims *renderer.DimensionsUniform, p, seed [2]float32) float32 {
	dx := (seed[0] - p[0]) * dims.Width
	dy := (seed[1] - p[1]) * dims.Height
	return dx*dx + dy*dy
}
