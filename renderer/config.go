// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"math/bits"
	"structs"

	"honnef.co/go/jumpflood/gfx"
	"honnef.co/go/jumpflood/jmath"
)

// Compute shaders run in 16x16 workgroups, one invocation per pixel.
const workgroupDim = 16

// DimensionsUniform describes the render target.
//
// This data structure must be kept in sync with the Dimensions struct
// in the WGSL sources.
type DimensionsUniform struct {
	_ structs.HostLayout

	Width     float32
	Height    float32
	InvWidth  float32
	InvHeight float32
}

func NewDimensionsUniform(width, height uint32) DimensionsUniform {
	return DimensionsUniform{
		Width:     float32(width),
		Height:    float32(height),
		InvWidth:  1 / float32(width),
		InvHeight: 1 / float32(height),
	}
}

// JumpUniform carries the step distance of one flood pass, in pixels.
// Padded to the uniform buffer alignment of the GPU API.
type JumpUniform struct {
	_ structs.HostLayout

	Step float32
	pad  [3]float32
}

func NewJumpUniform(step uint32) JumpUniform {
	return JumpUniform{Step: float32(step)}
}

// ParamsUniform is the outline compositing parameter block.
type ParamsUniform struct {
	_ structs.HostLayout

	Color      [4]float32
	InnerColor [4]float32
	Weight     float32
	pad        [3]float32
}

func NewParamsUniform(style gfx.Style) ParamsUniform {
	return ParamsUniform{
		Color:      style.Color.Values(),
		InnerColor: style.InnerColor.Values(),
		Weight:     style.Weight,
	}
}

// InstanceUniform is the per-draw parameter block of the mask pass.
type InstanceUniform struct {
	_ structs.HostLayout

	Clip   jmath.Mat4
	Origin [2]float32
	pad    [2]float32
}

// JumpSteps derives the flood step sequence for a render target:
// powers of two from 2^(n-1) down to 1, where n = ceil(log2(max(w, h))).
// The sequence is strictly decreasing and empty for targets no larger
// than a single pixel. With this sequence every pixel's stored seed is
// within a small bounded error of its true nearest seed after the
// final pass; substituting a different sequence voids that bound.
func JumpSteps(width, height uint32) []uint32 {
	m := max(width, height)
	if m <= 1 {
		return nil
	}
	n := bits.Len32(m - 1)
	steps := make([]uint32, n)
	for i := range steps {
		steps[i] = 1 << (n - 1 - i)
	}
	return steps
}

func workgroupCount(width, height uint32) [3]uint32 {
	return [3]uint32{
		(width + workgroupDim - 1) / workgroupDim,
		(height + workgroupDim - 1) / workgroupDim,
		1,
	}
}
