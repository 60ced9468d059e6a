// Copyright 2024 Dominik Honnef and contributors
// SPDX-License-Identifier: Apache-2.0 OR MIT

package renderer

import (
	"honnef.co/go/jumpflood/gfx"
	"honnef.co/go/jumpflood/scene"
	"honnef.co/go/safeish"
)

type RenderParams struct {
	Width  uint32
	Height uint32
	Style  gfx.Style
}

type FullShaders struct {
	Mask    ShaderID
	JfaInit ShaderID
	Jfa     ShaderID
	Outline ShaderID
}

// Render holds the cross-stage state of a single frame.
type Render struct {
	outImage ImageProxy
}

type Renderer struct{}

func New() *Renderer {
	return &Renderer{}
}

// RenderOutline records the full outline pipeline for one frame:
//
//  1. Clear the mask and rasterize every draw into it.
//  2. Detect silhouette boundaries in the mask and seed the first
//     jump-flood buffer.
//  3. One flood dispatch per jump step, ping-ponging between the two
//     seed buffers. Each dispatch reads the buffer the previous one
//     wrote; the buffers are never read and written within one pass.
//  4. Composite the outline into a fresh output image.
//
// The recording frees every frame-local resource except the output
// image. Dimensions bake into every pass's uniforms, so a resize means
// recording a new frame from scratch; recordings are never reused
// across dimension changes.
func (rd *Renderer) RenderOutline(
	r *Render,
	draws []scene.Draw,
	shaders *FullShaders,
	params *RenderParams,
) Recording {
	var recording Recording

	width, height := params.Width, params.Height
	dims := NewDimensionsUniform(width, height)
	dimsBuf := recording.UploadUniform("dimensions", safeish.AsBytes(&dims))

	maskImage := NewImageProxy(width, height, Rgba8)
	recording.ClearImage(maskImage, [4]float32{0, 0, 0, 0})
	for i := range draws {
		draw := &draws[i]
		instance := InstanceUniform{Clip: draw.Clip, Origin: draw.Origin}
		instanceBuf := recording.UploadUniform("instance", safeish.AsBytes(&instance))
		vertexBuf := recording.Upload("vertices", safeish.SliceCast[[]byte](draw.Vertices))
		recording.Draw(
			shaders.Mask,
			maskImage,
			uint32(len(draw.Vertices)/3),
			[]ResourceProxy{instanceBuf.Resource(), vertexBuf.Resource()},
		)
		recording.FreeBuffer(instanceBuf)
		recording.FreeBuffer(vertexBuf)
	}

	wgCount := workgroupCount(width, height)
	seedA := NewImageProxy(width, height, Rgba16Float)
	seedB := NewImageProxy(width, height, Rgba16Float)
	recording.Dispatch(
		shaders.JfaInit,
		wgCount,
		[]ResourceProxy{dimsBuf.Resource(), maskImage.Resource(), seedA.Resource()},
	)

	src, dst := seedA, seedB
	for _, step := range JumpSteps(width, height) {
		jump := NewJumpUniform(step)
		jumpBuf := recording.UploadUniform("jump", safeish.AsBytes(&jump))
		recording.Dispatch(
			shaders.Jfa,
			wgCount,
			[]ResourceProxy{
				dimsBuf.Resource(),
				jumpBuf.Resource(),
				src.Resource(),
				dst.Resource(),
			},
		)
		recording.FreeBuffer(jumpBuf)
		src, dst = dst, src
	}
	// src now holds the final seeds; dst is stale.
	recording.FreeImage(dst)

	outlineParams := NewParamsUniform(params.Style)
	paramsBuf := recording.UploadUniform("outline params", safeish.AsBytes(&outlineParams))
	outImage := NewImageProxy(width, height, Rgba8)
	recording.Dispatch(
		shaders.Outline,
		wgCount,
		[]ResourceProxy{
			dimsBuf.Resource(),
			paramsBuf.Resource(),
			src.Resource(),
			maskImage.Resource(),
			outImage.Resource(),
		},
	)

	recording.FreeBuffer(paramsBuf)
	recording.FreeImage(src)
	recording.FreeImage(maskImage)
	recording.FreeBuffer(dimsBuf)

	r.outImage = outImage
	return recording
}

func (r *Render) OutImage() ImageProxy {
	return r.outImage
}

// RenderFull resolves a scene and records its outline frame, returning
// the recording and the output image proxy.
func (rd *Renderer) RenderFull(
	instances []scene.Instance,
	camera scene.Camera,
	shaders *FullShaders,
	params *RenderParams,
) (Recording, ResourceProxy) {
	var render Render
	draws := scene.Resolve(instances, camera)
	recording := rd.RenderOutline(&render, draws, shaders, params)
	return recording, render.OutImage().Resource()
}
