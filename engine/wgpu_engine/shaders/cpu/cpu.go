// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

// Package cpu provides CPU implementations of the outline pipeline's
// shaders.
//
// These shaders intentionally replicate the GPU kernels pixel for
// pixel instead of using more CPU-friendly alternatives. They're a
// debug tool, not a viable fallback.
package cpu

// Sentinel marks a pixel that no seed coordinate has reached.
var Sentinel = [2]float32{-1, -1}

// MaskImage mirrors the rgba8unorm mask texture. r encodes coverage,
// gb the per-object identity signal.
type MaskImage struct {
	Width  int
	Height int
	Pix    [][4]float32
}

func NewMaskImage(width, height int) *MaskImage {
	return &MaskImage{
		Width:  width,
		Height: height,
		Pix:    make([][4]float32, width*height),
	}
}

// signal returns the rgb channels, treating out-of-bounds samples as
// background. The mask does not wrap.
func (img *MaskImage) signal(x, y int) [3]float32 {
	if x < 0 || y < 0 || x >= img.Width || y >= img.Height {
		return [3]float32{}
	}
	px := img.Pix[y*img.Width+x]
	return [3]float32{px[0], px[1], px[2]}
}

func (img *MaskImage) Covered(x, y int) bool {
	return img.Pix[y*img.Width+x][0] > 0.5
}

// SeedImage mirrors the rg channels of the rgba16float seed textures.
type SeedImage struct {
	Width  int
	Height int
	Pix    [][2]float32
}

func NewSeedImage(width, height int) *SeedImage {
	img := &SeedImage{
		Width:  width,
		Height: height,
		Pix:    make([][2]float32, width*height),
	}
	for i := range img.Pix {
		img.Pix[i] = Sentinel
	}
	return img
}

func (img *SeedImage) At(x, y int) [2]float32 {
	return img.Pix[y*img.Width+x]
}

func (img *SeedImage) set(x, y int, seed [2]float32) {
	img.Pix[y*img.Width+x] = seed
}

// RGBAImage mirrors the rgba8unorm output texture, without the
// quantization to 8 bits.
type RGBAImage struct {
	Width  int
	Height int
	Pix    [][4]float32
}

func NewRGBAImage(width, height int) *RGBAImage {
	return &RGBAImage{
		Width:  width,
		Height: height,
		Pix:    make([][4]float32, width*height),
	}
}

func (img *RGBAImage) At(x, y int) [4]float32 {
	return img.Pix[y*img.Width+x]
}

func isSentinel(seed [2]float32) bool {
	return seed[0] < 0
}
