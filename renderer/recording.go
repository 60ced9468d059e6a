package renderer

import (
	"fmt"
	"sync/atomic"
)

var resourceID atomic.Uint64

func nextResourceID() ResourceID {
	return ResourceID(resourceID.Add(1))
}

type ResourceID uint64

type ResourceProxyKind int

const (
	ResourceProxyKindBuffer ResourceProxyKind = iota + 1
	ResourceProxyKindImage
)

type ResourceProxy struct {
	Kind ResourceProxyKind
	BufferProxy
	ImageProxy
}

// Recording is an ordered list of commands making up one frame.
// Commands execute in recording order on a single queue; a pass never
// starts reading a resource before the preceding writer has finished.
type Recording struct {
	Commands []Command
}

func (rec *Recording) push(cmd Command) {
	rec.Commands = append(rec.Commands, cmd)
}

func (rec *Recording) Upload(name string, data []byte) BufferProxy {
	buf := NewBufferProxy(uint64(len(data)), name)
	rec.push(&Upload{buf, data})
	return buf
}

func (rec *Recording) UploadUniform(name string, data []byte) BufferProxy {
	buf := NewBufferProxy(uint64(len(data)), name)
	rec.push(&UploadUniform{buf, data})
	return buf
}

func (rec *Recording) Dispatch(shader ShaderID, wgSize [3]uint32, resources []ResourceProxy) {
	rec.push(&Dispatch{shader, wgSize, resources})
}

// Draw rasterizes vertexCount vertices with a render shader into
// target, loading the target's previous contents.
func (rec *Recording) Draw(shader ShaderID, target ImageProxy, vertexCount uint32, resources []ResourceProxy) {
	rec.push(&Draw{shader, target, vertexCount, resources})
}

// ClearImage fills an image with a constant color.
func (rec *Recording) ClearImage(image ImageProxy, color [4]float32) {
	rec.push(&ClearImage{image, color})
}

func (rec *Recording) Download(buf BufferProxy) {
	rec.push(&Download{buf})
}

func (rec *Recording) FreeBuffer(buf BufferProxy) {
	rec.push(&FreeBuffer{buf})
}

func (rec *Recording) FreeImage(image ImageProxy) {
	rec.push(&FreeImage{image})
}

func (rec *Recording) FreeResource(resource ResourceProxy) {
	switch resource.Kind {
	case ResourceProxyKindBuffer:
		rec.FreeBuffer(resource.BufferProxy)
	case ResourceProxyKindImage:
		rec.FreeImage(resource.ImageProxy)
	default:
		panic(fmt.Sprintf("unhandled type %T", resource))
	}
}

func NewBufferProxy(size uint64, name string) BufferProxy {
	id := nextResourceID()
	return BufferProxy{size, id, name}
}

func NewImageProxy(width, height uint32, format ImageFormat) ImageProxy {
	id := nextResourceID()
	return ImageProxy{
		Width:  width,
		Height: height,
		Format: format,
		ID:     id,
	}
}

type BufferProxy struct {
	Size uint64
	ID   ResourceID
	Name string
}

func (p BufferProxy) Resource() ResourceProxy {
	return ResourceProxy{
		Kind:        ResourceProxyKindBuffer,
		BufferProxy: p,
	}
}

type ImageFormat int

const (
	Rgba8 ImageFormat = iota
	Rgba16Float
)

type ImageProxy struct {
	Width  uint32
	Height uint32
	Format ImageFormat
	ID     ResourceID
}

func (p ImageProxy) Resource() ResourceProxy {
	return ResourceProxy{
		Kind:       ResourceProxyKindImage,
		ImageProxy: p,
	}
}

type ShaderID int

type Command interface {
	isCommand()
}

func (*Upload) isCommand()        {}
func (*UploadUniform) isCommand() {}
func (*Dispatch) isCommand()      {}
func (*Draw) isCommand()          {}
func (*ClearImage) isCommand()    {}
func (*Download) isCommand()      {}
func (*FreeBuffer) isCommand()    {}
func (*FreeImage) isCommand()     {}

type BindTypeType int

const (
	BindTypeBuffer BindTypeType = iota + 1
	BindTypeBufReadOnly
	BindTypeUniform
	BindTypeImage
	BindTypeImageRead
)

type BindType struct {
	Type        BindTypeType
	ImageFormat ImageFormat
}

type Upload struct {
	Buffer BufferProxy
	Data   []byte
}

type UploadUniform struct {
	Buffer BufferProxy
	Data   []byte
}

type Dispatch struct {
	Shader        ShaderID
	WorkgroupSize [3]uint32
	Bindings      []ResourceProxy
}

type Draw struct {
	Shader      ShaderID
	Target      ImageProxy
	VertexCount uint32
	Bindings    []ResourceProxy
}

type ClearImage struct {
	Image ImageProxy
	Color [4]float32
}

type Download struct {
	Buffer BufferProxy
}

type FreeBuffer struct {
	Buffer BufferProxy
}

type FreeImage struct {
	Image ImageProxy
}
