// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package cpu

import (
	"github.com/chewxy/math32"

	"honnef.co/go/jumpflood/jmath"
	"honnef.co/go/jumpflood/renderer"
)

// Outline replicates shaders/wgsl/outline.wgsl: distance to the
// nearest seed becomes the outline alpha, with different fade laws
// inside and outside the silhouette.
func Outline(
	dims *renderer.DimensionsUniform,
	params *renderer.ParamsUniform,
	seeds *SeedImage,
	mask *MaskImage,
	out *RGBAImage,
) {
	for y := 0; y < int(dims.Height); y++ {
		for x := 0; x < int(dims.Width); x++ {
			seed := seeds.At(x, y)
			if isSentinel(seed) {
				out.Pix[y*out.Width+x] = [4]float32{}
				continue
			}

			p := [2]float32{
				(float32(x) + 0.5) * dims.InvWidth,
				(float32(y) + 0.5) * dims.InvHeight,
			}
			mag := math32.Hypot(
				(seed[0]-p[0])*dims.Width,
				(seed[1]-p[1])*dims.Height,
			)

			var alpha float32
			if mask.Covered(x, y) {
				alpha = jmath.Clamp(params.Weight-mag*2.5, 0.1, 0.75)
			} else {
				alpha = jmath.Clamp(params.Weight*4.0-mag, 0.0, 1.0)
			}
			out.Pix[y*out.Width+x] = [4]float32{
				params.Color[0],
				params.Color[1],
				params.Color[2],
				alpha,
			}
		}
	}
}
