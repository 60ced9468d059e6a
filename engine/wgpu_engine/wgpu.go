package wgpu_engine

// OPT reuse bind groups

import (
	"fmt"
	"math"
	"math/bits"

	"honnef.co/go/jumpflood/renderer"
	"honnef.co/go/wgpu"
)

type Engine struct {
	Device    *wgpu.Device
	shaders   []shader
	pool      resourcePool
	downloads map[renderer.ResourceID]*wgpu.Buffer

	renderer    *renderer.Renderer
	blit        *blitPipeline
	fullShaders *renderer.FullShaders
	target      *targetTexture
}

type wgpuShader struct {
	label           string
	pipeline        *wgpu.ComputePipeline
	bindGroupLayout *wgpu.BindGroupLayout
}

type wgpuRenderShader struct {
	label           string
	pipeline        *wgpu.RenderPipeline
	bindGroupLayout *wgpu.BindGroupLayout
}

type shader struct {
	Label  string
	WGPU   *wgpuShader
	Render *wgpuRenderShader
}

func (s shader) compute() *wgpuShader {
	if s.WGPU == nil {
		panic(fmt.Sprintf("%s is not a compute shader", s.Label))
	}
	return s.WGPU
}

func (s shader) render() *wgpuRenderShader {
	if s.Render == nil {
		panic(fmt.Sprintf("%s is not a render shader", s.Label))
	}
	return s.Render
}

type ExternalResource interface {
	// One of ExternalBuffer and ExternalImage
}

type ExternalBuffer struct {
	Proxy  renderer.BufferProxy
	Buffer *wgpu.Buffer
}

type ExternalImage struct {
	Proxy renderer.ImageProxy
	View  *wgpu.TextureView
}

type materializedBuffer interface {
	// One of wgpu.Buffer and []byte
}

type bindMapBuffer struct {
	Buffer materializedBuffer
	Label  string
}

type bindMapImage struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

type bindMap struct {
	bufMap   map[renderer.ResourceID]*bindMapBuffer
	imageMap map[renderer.ResourceID]*bindMapImage
}

func newBindMap() bindMap {
	return bindMap{
		bufMap:   make(map[renderer.ResourceID]*bindMapBuffer),
		imageMap: make(map[renderer.ResourceID]*bindMapImage),
	}
}

type bufferProperties struct {
	size   uint64
	usages wgpu.BufferUsage
}

type resourcePool struct {
	bufs map[bufferProperties][]*wgpu.Buffer
}

type transientBufKind int

const (
	transientBufKindBytes transientBufKind = iota + 1
	transientBufKindBuffer
)

type transientBuf struct {
	kind   transientBufKind
	bytes  []byte
	buffer *wgpu.Buffer
}

type transientBindMap struct {
	bufs   map[renderer.ResourceID]transientBuf
	images map[renderer.ResourceID]*wgpu.TextureView
}

func computeLayoutEntries(layout []renderer.BindType, visibility wgpu.ShaderStage) []wgpu.BindGroupLayoutEntry {
	entries := make([]wgpu.BindGroupLayoutEntry, len(layout))
	for i, bindType := range layout {
		switch bindType.Type {
		case renderer.BindTypeBuffer, renderer.BindTypeBufReadOnly:
			var typ wgpu.BufferBindingType
			if bindType.Type == renderer.BindTypeBuffer {
				typ = wgpu.BufferBindingTypeStorage
			} else {
				typ = wgpu.BufferBindingTypeReadOnlyStorage
			}
			entries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: visibility,
				Buffer: &wgpu.BufferBindingLayout{
					Type:             typ,
					HasDynamicOffset: false,
					MinBindingSize:   0, // XXX 0 or Undefined?
				},
			}
		case renderer.BindTypeUniform:
			entries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: visibility,
				Buffer: &wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: false,
					MinBindingSize:   0, // XXX 0 or Undefined?
				},
			}

		case renderer.BindTypeImage:
			entries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: visibility,
				StorageTexture: &wgpu.StorageTextureBindingLayout{
					Access:        wgpu.StorageTextureAccessWriteOnly,
					Format:        imageFormatToWGPU(bindType.ImageFormat),
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			}

		case renderer.BindTypeImageRead:
			entries[i] = wgpu.BindGroupLayoutEntry{
				Binding:    uint32(i),
				Visibility: visibility,
				Texture: &wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			}

		default:
			panic(fmt.Sprintf("invalid bind type %d", bindType.Type))
		}
	}
	return entries
}

func (eng *Engine) addShader(
	label string,
	wgsl []byte,
	layout []renderer.BindType,
) renderer.ShaderID {
	entries := computeLayoutEntries(layout, wgpu.ShaderStageCompute)
	sh := eng.createComputePipeline(label, wgsl, entries)
	id := len(eng.shaders)
	eng.shaders = append(eng.shaders, shader{
		Label: label,
		WGPU:  &sh,
	})
	return renderer.ShaderID(id)
}

func (eng *Engine) addRenderShader(
	label string,
	wgsl []byte,
	layout []renderer.BindType,
	vertexEntry string,
	fragmentEntry string,
	target renderer.ImageFormat,
) renderer.ShaderID {
	entries := computeLayoutEntries(layout, wgpu.ShaderStageVertex|wgpu.ShaderStageFragment)
	sh := eng.createRenderPipeline(label, wgsl, entries, vertexEntry, fragmentEntry, imageFormatToWGPU(target))
	id := len(eng.shaders)
	eng.shaders = append(eng.shaders, shader{
		Label:  label,
		Render: &sh,
	})
	return renderer.ShaderID(id)
}

func (eng *Engine) RunRecording(
	queue *wgpu.Queue,
	recording renderer.Recording,
	externalResources []ExternalResource,
	label string,
	pgroup *ProfilerGroup,
) {
	pgroup = pgroup.Nest("RunRecording")
	defer pgroup.End()

	freeBufs := map[renderer.ResourceID]struct{}{}
	freeImages := map[renderer.ResourceID]struct{}{}
	transientMap := newTransientBindMap(externalResources)
	bindMap := newBindMap()

	encoder := eng.Device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})

	for _, cmd := range recording.Commands {
		switch cmd := cmd.(type) {
		case *renderer.Upload:
			bufProxy := cmd.Buffer
			bytes := cmd.Data
			transientMap.bufs[bufProxy.ID] = transientBuf{kind: transientBufKindBytes, bytes: bytes}
			usage := wgpu.BufferUsageCopySrc | wgpu.BufferUsageCopyDst | wgpu.BufferUsageStorage
			buf := eng.pool.getBuf(bufProxy.Size, bufProxy.Name, usage, eng.Device)
			queue.WriteBuffer(buf, 0, bytes)
			bindMap.insertBuf(bufProxy, buf)

		case *renderer.UploadUniform:
			bufProxy := cmd.Buffer
			bytes := cmd.Data
			transientMap.bufs[bufProxy.ID] = transientBuf{kind: transientBufKindBytes, bytes: bytes}
			usage := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
			buf := eng.pool.getBuf(bufProxy.Size, bufProxy.Name, usage, eng.Device)
			queue.WriteBuffer(buf, 0, bytes)
			bindMap.insertBuf(bufProxy, buf)

		case *renderer.Dispatch:
			shader := eng.shaders[cmd.Shader]
			s := shader.compute()
			bindGroup := transientMap.createBindGroup(
				&bindMap,
				&eng.pool,
				eng.Device,
				queue,
				s.bindGroupLayout,
				cmd.Bindings,
			)

			cpass := encoder.BeginComputePass(&wgpu.ComputePassDescriptor{
				Label:           shader.Label,
				TimestampWrites: pgroup.Compute(shader.Label),
			})

			cpass.SetPipeline(s.pipeline)
			cpass.SetBindGroup(0, bindGroup, nil)
			cpass.DispatchWorkgroups(cmd.WorkgroupSize[0], cmd.WorkgroupSize[1], cmd.WorkgroupSize[2])
			cpass.End()
			bindGroup.Release()
			cpass.Release()

		case *renderer.Draw:
			shader := eng.shaders[cmd.Shader]
			s := shader.render()
			bindGroup := transientMap.createBindGroup(
				&bindMap,
				&eng.pool,
				eng.Device,
				queue,
				s.bindGroupLayout,
				cmd.Bindings,
			)

			view := transientMap.images[cmd.Target.ID]
			if view == nil {
				_, view = bindMap.getOrCreateImage(cmd.Target, eng.Device)
			}

			rpass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
				Label: shader.Label,
				ColorAttachments: []wgpu.RenderPassColorAttachment{
					{
						View:    view,
						LoadOp:  wgpu.LoadOpLoad,
						StoreOp: wgpu.StoreOpStore,
					},
				},
				TimestampWrites: pgroup.Render(shader.Label),
			})

			rpass.SetPipeline(s.pipeline)
			rpass.SetBindGroup(0, bindGroup, nil)
			rpass.Draw(cmd.VertexCount, 1, 0, 0)
			rpass.End()
			bindGroup.Release()
			rpass.Release()

		case *renderer.ClearImage:
			view := transientMap.images[cmd.Image.ID]
			if view == nil {
				_, view = bindMap.getOrCreateImage(cmd.Image, eng.Device)
			}
			// An empty render pass with a clear load op; there is no
			// dedicated texture clear in the WebGPU API.
			rpass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
				Label: "clear",
				ColorAttachments: []wgpu.RenderPassColorAttachment{
					{
						View:    view,
						LoadOp:  wgpu.LoadOpClear,
						StoreOp: wgpu.StoreOpStore,
						ClearValue: wgpu.Color{
							R: float64(cmd.Color[0]),
							G: float64(cmd.Color[1]),
							B: float64(cmd.Color[2]),
							A: float64(cmd.Color[3]),
						},
					},
				},
			})
			rpass.End()
			rpass.Release()

		case *renderer.Download:
			proxy := cmd.Buffer
			srcBuf, ok := bindMap.getGPUBuf(proxy.ID)
			if !ok {
				panic("tried using unavailable buffer for download")
			}
			usage := wgpu.BufferUsageMapRead | wgpu.BufferUsageCopyDst
			buf := eng.pool.getBuf(proxy.Size, "download", usage, eng.Device)
			encoder.CopyBufferToBuffer(srcBuf, 0, buf, 0, proxy.Size)
			eng.downloads[proxy.ID] = buf

		case *renderer.FreeBuffer:
			freeBufs[cmd.Buffer.ID] = struct{}{}

		case *renderer.FreeImage:
			freeImages[cmd.Image.ID] = struct{}{}

		default:
			panic(fmt.Sprintf("unhandled command %T", cmd))
		}
	}

	cmd := encoder.Finish(nil)
	encoder.Release()
	queue.Submit(cmd)
	cmd.Release()

	for id := range freeBufs {
		buf, ok := bindMap.bufMap[id]
		if ok {
			delete(bindMap.bufMap, id)
			if gpuBuf, ok := buf.Buffer.(*wgpu.Buffer); ok {
				props := bufferProperties{
					size:   gpuBuf.Size(),
					usages: gpuBuf.Usage(),
				}
				eng.pool.bufs[props] = append(eng.pool.bufs[props], gpuBuf)
			}
		}
	}
	for id := range freeImages {
		tex, ok := bindMap.imageMap[id]
		if ok {
			delete(bindMap.imageMap, id)
			// TODO: have a pool to avoid needless re-allocation
			tex.texture.Release()
			tex.view.Release()
		}
	}
}

// GetDownload returns the staging buffer produced by a Download
// command in a previously run recording. The buffer is ready for
// mapping once the queue's work has completed.
func (eng *Engine) GetDownload(buf renderer.BufferProxy) (*wgpu.Buffer, bool) {
	got, ok := eng.downloads[buf.ID]
	return got, ok
}

func (eng *Engine) FreeDownload(buf renderer.BufferProxy) {
	delete(eng.downloads, buf.ID)
}

func (eng *Engine) createComputePipeline(
	label string,
	wgsl []byte,
	entries []wgpu.BindGroupLayoutEntry,
) wgpuShader {
	shaderModule := eng.Device.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  label,
		Source: wgpu.ShaderSourceWGSL(wgsl),
	})
	bindGroupLayout := eng.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: entries,
	})
	pipelineLayout := eng.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	pipeline := eng.Device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
		Label:  label,
		Layout: pipelineLayout,
		Compute: wgpu.ProgrammableStageDescriptor{
			Module:     shaderModule,
			EntryPoint: "main",
		},
	})
	pipelineLayout.Release()

	return wgpuShader{
		label:           label,
		pipeline:        pipeline,
		bindGroupLayout: bindGroupLayout,
	}
}

func (eng *Engine) createRenderPipeline(
	label string,
	wgsl []byte,
	entries []wgpu.BindGroupLayoutEntry,
	vertexEntry string,
	fragmentEntry string,
	target wgpu.TextureFormat,
) wgpuRenderShader {
	shaderModule := eng.Device.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  label,
		Source: wgpu.ShaderSourceWGSL(wgsl),
	})
	bindGroupLayout := eng.Device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: entries,
	})
	pipelineLayout := eng.Device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		BindGroupLayouts: []*wgpu.BindGroupLayout{bindGroupLayout},
	})
	pipeline := eng.Device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  label,
		Layout: pipelineLayout,
		Vertex: &wgpu.VertexState{
			Module:     shaderModule,
			EntryPoint: vertexEntry,
		},
		Fragment: &wgpu.FragmentState{
			Module:     shaderModule,
			EntryPoint: fragmentEntry,
			Targets: []wgpu.ColorTargetState{
				{
					Format:    target,
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: ^wgpu.IndexFormat(0),
			FrontFace:        wgpu.FrontFaceCCW,
			// Both windings contribute to the silhouette.
			CullMode: wgpu.CullModeNone,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
	pipelineLayout.Release()

	return wgpuRenderShader{
		label:           label,
		pipeline:        pipeline,
		bindGroupLayout: bindGroupLayout,
	}
}

func (m *bindMap) insertBuf(proxy renderer.BufferProxy, buffer *wgpu.Buffer) {
	m.bufMap[proxy.ID] = &bindMapBuffer{
		Buffer: buffer,
		Label:  proxy.Name,
	}
}

func (m *bindMap) getGPUBuf(id renderer.ResourceID) (*wgpu.Buffer, bool) {
	mbuf, ok := m.bufMap[id]
	if !ok {
		return nil, false
	}
	buf, ok := mbuf.Buffer.(*wgpu.Buffer)
	return buf, ok
}

func (m *bindMap) getOrCreateImage(
	proxy renderer.ImageProxy,
	dev *wgpu.Device,
) (*wgpu.Texture, *wgpu.TextureView) {
	if entry, ok := m.imageMap[proxy.ID]; ok {
		return entry.texture, entry.view
	}

	format := imageFormatToWGPU(proxy.Format)
	texture := dev.CreateTexture(&wgpu.TextureDescriptor{
		Size: wgpu.Extent3D{
			Width:              proxy.Width,
			Height:             proxy.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		// Every image may be a storage write target in one pass and a
		// sampled or raster target in another, so all usages are set.
		Usage: wgpu.TextureUsageTextureBinding |
			wgpu.TextureUsageStorageBinding |
			wgpu.TextureUsageRenderAttachment |
			wgpu.TextureUsageCopyDst,
		Format: format,
	})
	textureView := texture.CreateView(&wgpu.TextureViewDescriptor{
		Dimension:       wgpu.TextureViewDimension2D,
		Aspect:          wgpu.TextureAspectAll,
		MipLevelCount:   ^uint32(0),
		BaseMipLevel:    0,
		BaseArrayLayer:  0,
		ArrayLayerCount: ^uint32(0),
		Format:          format,
	})
	m.imageMap[proxy.ID] = &bindMapImage{texture, textureView}

	return texture, textureView
}

func (pool *resourcePool) getBuf(
	size uint64,
	name string,
	usage wgpu.BufferUsage,
	dev *wgpu.Device,
) *wgpu.Buffer {
	const sizeClassBits = 1

	roundedSize := poolSizeClass(size, sizeClassBits)
	props := bufferProperties{
		size:   roundedSize,
		usages: usage,
	}
	if bufVec, ok := pool.bufs[props]; ok {
		if len(bufVec) > 0 {
			buf := bufVec[len(bufVec)-1]
			bufVec = bufVec[:len(bufVec)-1]
			pool.bufs[props] = bufVec
			return buf
		}
	}
	return dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  roundedSize,
		Usage: usage,
	})
}

func poolSizeClass(x uint64, numBits uint32) uint64 {
	if x > 1<<numBits {
		a := bits.LeadingZeros64(x - 1)
		b := (x - 1) | (((math.MaxUint64 / 2) >> numBits) >> a)
		return b + 1
	} else {
		return 1 << numBits
	}
}

func (b *bindMapBuffer) uploadIfNeeded(
	proxy renderer.BufferProxy,
	dev *wgpu.Device,
	queue *wgpu.Queue,
	pool *resourcePool,
) {
	cpuBuf, ok := b.Buffer.([]byte)
	if !ok {
		return
	}
	usage := wgpu.BufferUsageCopySrc |
		wgpu.BufferUsageCopyDst |
		wgpu.BufferUsageStorage
	buf := pool.getBuf(proxy.Size, proxy.Name, usage, dev)
	queue.WriteBuffer(buf, 0, cpuBuf)
	b.Buffer = buf
}

func newTransientBindMap(externalResources []ExternalResource) transientBindMap {
	bufs := map[renderer.ResourceID]transientBuf{}
	images := map[renderer.ResourceID]*wgpu.TextureView{}
	for _, res := range externalResources {
		switch res := res.(type) {
		case ExternalBuffer:
			bufs[res.Proxy.ID] = transientBuf{kind: transientBufKindBuffer, buffer: res.Buffer}
		case ExternalImage:
			images[res.Proxy.ID] = res.View
		}
	}
	return transientBindMap{
		bufs:   bufs,
		images: images,
	}
}

func (m *transientBindMap) createBindGroup(
	bindMap *bindMap,
	pool *resourcePool,
	dev *wgpu.Device,
	queue *wgpu.Queue,
	layout *wgpu.BindGroupLayout,
	bindings []renderer.ResourceProxy,
) *wgpu.BindGroup {
	for _, proxy := range bindings {
		switch proxy.Kind {
		case renderer.ResourceProxyKindBuffer:
			if _, ok := m.bufs[proxy.BufferProxy.ID]; ok {
				continue
			}
			if o, ok := bindMap.bufMap[proxy.BufferProxy.ID]; ok {
				o.uploadIfNeeded(proxy.BufferProxy, dev, queue, pool)
			} else {
				usage := wgpu.BufferUsageCopySrc |
					wgpu.BufferUsageCopyDst |
					wgpu.BufferUsageStorage
				buf := pool.getBuf(proxy.Size, proxy.Name, usage, dev)
				bindMap.bufMap[proxy.BufferProxy.ID] = &bindMapBuffer{
					Buffer: buf,
					Label:  proxy.Name,
				}
			}
		case renderer.ResourceProxyKindImage:
			if _, ok := m.images[proxy.ImageProxy.ID]; ok {
				continue
			}
			bindMap.getOrCreateImage(proxy.ImageProxy, dev)
		default:
			panic(fmt.Sprintf("unhandled type %d", proxy.Kind))
		}
	}

	entries := make([]wgpu.BindGroupEntry, len(bindings))
	for i, proxy := range bindings {
		switch proxy.Kind {
		case renderer.ResourceProxyKindBuffer:
			var buf *wgpu.Buffer
			b := m.bufs[proxy.BufferProxy.ID]
			switch b.kind {
			case transientBufKindBuffer:
				buf = b.buffer
			default:
				var ok bool
				buf, ok = bindMap.getGPUBuf(proxy.BufferProxy.ID)
				if !ok {
					panic("unexpected ok == false")
				}
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding: uint32(i),
				Buffer:  buf,
				Size:    ^uint64(0),
			}
		case renderer.ResourceProxyKindImage:
			view, ok := m.images[proxy.ImageProxy.ID]
			if !ok {
				img, ok := bindMap.imageMap[proxy.ImageProxy.ID]
				if !ok {
					panic("unexpected ok == false")
				}
				view = img.view
			}
			entries[i] = wgpu.BindGroupEntry{
				Binding:     uint32(i),
				TextureView: view,
				Size:        ^uint64(0),
			}
		default:
			panic(fmt.Sprintf("unhandled type %T", proxy))
		}
	}

	return dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout:  layout,
		Entries: entries,
	})
}
