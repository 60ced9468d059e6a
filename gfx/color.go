// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package gfx

import (
	"honnef.co/go/color"
)

// Color is a linear sRGB color with straight (non-premultiplied) alpha.
// All GPU-side math happens in this space.
type Color struct {
	R, G, B, A float32
}

// FromManaged converts a managed color to linear sRGB.
func FromManaged(c *color.Color) Color {
	cc := c.Convert(color.LinearSRGB)
	return Color{
		R: float32(cc.Values[0]),
		G: float32(cc.Values[1]),
		B: float32(cc.Values[2]),
		A: float32(cc.Values[3]),
	}
}

func (c Color) Values() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

func (c Color) Premul() [4]float32 {
	return [4]float32{c.R * c.A, c.G * c.A, c.B * c.A, c.A}
}
