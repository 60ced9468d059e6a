package wgpu_engine

import (
	"fmt"
	"reflect"

	"honnef.co/go/jumpflood/engine/wgpu_engine/shaders"
	"honnef.co/go/jumpflood/renderer"
	"honnef.co/go/jumpflood/scene"
	"honnef.co/go/wgpu"
)

type RendererOptions struct {
	SurfaceFormat wgpu.TextureFormat
}

func New(dev *wgpu.Device, options *RendererOptions) *Engine {
	eng := &Engine{
		Device: dev,
		pool: resourcePool{
			bufs: make(map[bufferProperties][]*wgpu.Buffer),
		},
		downloads: make(map[renderer.ResourceID]*wgpu.Buffer),

		renderer: renderer.New(),
	}
	eng.fullShaders = eng.newFullShaders()
	// XXX support surfaceless engine use
	eng.blit = newBlitPipeline(eng.Device, options.SurfaceFormat)
	return eng
}

func bindTypeMapping(b shaders.Binding) renderer.BindType {
	var format renderer.ImageFormat
	switch b.Format {
	case shaders.Rgba8:
		format = renderer.Rgba8
	case shaders.Rgba16Float:
		format = renderer.Rgba16Float
	default:
		panic(fmt.Sprintf("unhandled format %d", b.Format))
	}
	switch b.Type {
	case shaders.Buffer:
		return renderer.BindType{Type: renderer.BindTypeBuffer}
	case shaders.BufReadOnly:
		return renderer.BindType{Type: renderer.BindTypeBufReadOnly}
	case shaders.Uniform:
		return renderer.BindType{Type: renderer.BindTypeUniform}
	case shaders.Image:
		return renderer.BindType{Type: renderer.BindTypeImage, ImageFormat: format}
	case shaders.ImageRead:
		return renderer.BindType{Type: renderer.BindTypeImageRead, ImageFormat: format}
	default:
		panic(fmt.Sprintf("unhandled bind type %d", b.Type))
	}
}

func targetFormatMapping(f shaders.ImageFormat) renderer.ImageFormat {
	switch f {
	case shaders.Rgba8:
		return renderer.Rgba8
	case shaders.Rgba16Float:
		return renderer.Rgba16Float
	default:
		panic(fmt.Sprintf("unhandled format %d", f))
	}
}

func (eng *Engine) newFullShaders() *renderer.FullShaders {
	var out renderer.FullShaders
	outV := reflect.ValueOf(&out).Elem()
	v := reflect.ValueOf(&shaders.Collection).Elem()
	for i := range v.NumField() {
		fieldName := v.Type().Field(i).Name
		outField := outV.FieldByName(fieldName)
		if !outField.IsValid() {
			continue
		}
		var id renderer.ShaderID
		switch shader := v.Field(i).Addr().Interface().(type) {
		case *shaders.ComputeShader:
			if len(shader.WGSL) == 0 {
				panic(fmt.Sprintf("shader %q has no code", shader.Name))
			}
			bindings := make([]renderer.BindType, len(shader.Bindings))
			for i, b := range shader.Bindings {
				bindings[i] = bindTypeMapping(b)
			}
			id = eng.addShader(shader.Name, shader.WGSL, bindings)
		case *shaders.RenderShader:
			if len(shader.WGSL) == 0 {
				panic(fmt.Sprintf("shader %q has no code", shader.Name))
			}
			bindings := make([]renderer.BindType, len(shader.Bindings))
			for i, b := range shader.Bindings {
				bindings[i] = bindTypeMapping(b)
			}
			id = eng.addRenderShader(
				shader.Name,
				shader.WGSL,
				bindings,
				shader.VertexEntry,
				shader.FragmentEntry,
				targetFormatMapping(shader.TargetFormat),
			)
		default:
			panic(fmt.Sprintf("unhandled type %T", shader))
		}
		outField.Set(reflect.ValueOf(id))
	}
	return &out
}

type blitPipeline struct {
	BindLayout *wgpu.BindGroupLayout
	Pipeline   *wgpu.RenderPipeline
}

func newBlitPipeline(dev *wgpu.Device, format wgpu.TextureFormat) *blitPipeline {
	const src = `
			@vertex
			fn vs_main(@builtin(vertex_index) ix: u32) -> @builtin(position) vec4<f32> {
				// Generate a full screen quad in normalized device coordinates
				var vertex = vec2(-1.0, 1.0);
				switch ix {
					case 1u: {
						vertex = vec2(-1.0, -1.0);
					}
					case 2u, 4u: {
						vertex = vec2(1.0, -1.0);
					}
					case 5u: {
						vertex = vec2(1.0, 1.0);
					}
					default: {}
				}
				return vec4(vertex, 0.0, 1.0);
			}

			@group(0) @binding(0)
			var outline_output: texture_2d<f32>;

			@fragment
			fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
				let rgba_sep = textureLoad(outline_output, vec2<i32>(pos.xy), 0);
				return vec4(rgba_sep.rgb * rgba_sep.a, rgba_sep.a);
			}`

	shader := dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  "blit shaders",
		Source: wgpu.ShaderSourceWGSL(src),
	})
	bindLayout := dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Visibility: wgpu.ShaderStageFragment,
				Binding:    0,
				Texture: &wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
		},
	})
	pipelineLayout := dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "blit pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindLayout},
	})
	pipeline := dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "blit pipeline",
		Layout: pipelineLayout,
		Vertex: &wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format:    format,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: ^wgpu.IndexFormat(0),
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeBack,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
	return &blitPipeline{
		BindLayout: bindLayout,
		Pipeline:   pipeline,
	}
}

type targetTexture struct {
	View   *wgpu.TextureView
	Width  uint32
	Height uint32
}

func newTargetTexture(dev *wgpu.Device, width, height uint32) *targetTexture {
	tex := dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: "target texture",
		Size: wgpu.Extent3D{
			Width:              width,
			Height:             height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding,
		Format:        wgpu.TextureFormatRGBA8Unorm,
	})
	defer tex.Release()
	view := tex.CreateView(nil)
	return &targetTexture{
		View:   view,
		Width:  width,
		Height: height,
	}
}

func imageFormatToWGPU(f renderer.ImageFormat) wgpu.TextureFormat {
	switch f {
	case renderer.Rgba8:
		return wgpu.TextureFormatRGBA8Unorm
	case renderer.Rgba16Float:
		return wgpu.TextureFormatRGBA16Float
	default:
		panic(fmt.Sprintf("unhandled value %d", f))
	}
}

// RenderToTexture renders the outline of the given instances into
// texture, which must be a storage-capable rgba8unorm view of at least
// params.Width by params.Height texels.
func (eng *Engine) RenderToTexture(
	queue *wgpu.Queue,
	instances []scene.Instance,
	camera scene.Camera,
	texture *wgpu.TextureView,
	params *renderer.RenderParams,
	pgroup *ProfilerGroup,
) {
	pgroup = pgroup.Nest("RenderToTexture")
	defer pgroup.End()

	recording, target := eng.renderer.RenderFull(instances, camera, eng.fullShaders, params)

	externalResources := []ExternalResource{
		ExternalImage{
			Proxy: target.ImageProxy,
			View:  texture,
		},
	}
	eng.RunRecording(queue, recording, externalResources, "render_to_texture", pgroup)
}

// RenderToSurface renders into an intermediate texture and blits the
// result onto the surface.
func (eng *Engine) RenderToSurface(
	queue *wgpu.Queue,
	instances []scene.Instance,
	camera scene.Camera,
	surface *wgpu.SurfaceTexture,
	params *renderer.RenderParams,
	pgroup *ProfilerGroup,
) {
	pgroup = pgroup.Nest("RenderToSurface")
	defer pgroup.End()

	width := params.Width
	height := params.Height
	if eng.target == nil {
		eng.target = newTargetTexture(eng.Device, width, height)
	} else if eng.target.Width != width || eng.target.Height != height {
		eng.target.View.Release()
		eng.target = newTargetTexture(eng.Device, width, height)
	}

	eng.RenderToTexture(queue, instances, camera, eng.target.View, params, pgroup)

	surfaceView := surface.Texture.CreateView(nil)
	defer surfaceView.Release()

	bindGroup := eng.Device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: eng.blit.BindLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: eng.target.View,
			},
		},
	})
	defer bindGroup.Release()

	encoder := eng.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: "blitter"})
	defer encoder.Release()
	renderPass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       surfaceView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 0},
			},
		},
		TimestampWrites: pgroup.Render("blit"),
	})
	defer renderPass.Release()

	renderPass.SetPipeline(eng.blit.Pipeline)
	renderPass.SetBindGroup(0, bindGroup, nil)
	renderPass.Draw(6, 1, 0, 0)
	renderPass.End()

	cmd := encoder.Finish(nil)
	defer cmd.Release()
	queue.Submit(cmd)
}
