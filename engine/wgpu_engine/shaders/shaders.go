package shaders

type BindType int

const (
	Buffer BindType = iota + 1
	BufReadOnly
	Uniform
	Image
	ImageRead
)

func (typ BindType) IsMutable() bool {
	return typ == Buffer || typ == Image
}

type ImageFormat int

const (
	Rgba8 ImageFormat = iota
	Rgba16Float
)

// Binding describes one entry in a shader's bind group, in binding
// order. Format is only meaningful for image bindings.
type Binding struct {
	Type   BindType
	Format ImageFormat
}

type ComputeShader struct {
	Name          string
	WorkgroupSize [3]uint32
	Bindings      []Binding
	WGSL          []byte
}

// RenderShader is a raster pipeline with a single color target and no
// vertex buffers; vertex data is pulled from storage bindings.
type RenderShader struct {
	Name          string
	Bindings      []Binding
	VertexEntry   string
	FragmentEntry string
	TargetFormat  ImageFormat
	WGSL          []byte
}
