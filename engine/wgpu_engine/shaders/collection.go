package shaders

import (
	_ "embed"
)

//go:embed wgsl/mask.wgsl
var maskWGSL []byte

//go:embed wgsl/jfa_init.wgsl
var jfaInitWGSL []byte

//go:embed wgsl/jfa.wgsl
var jfaWGSL []byte

//go:embed wgsl/outline.wgsl
var outlineWGSL []byte

// Collection lists every shader of the outline pipeline together with
// its binding layout. The layouts must be kept in sync with the WGSL
// sources.
var Collection = struct {
	Mask    RenderShader
	JfaInit ComputeShader
	Jfa     ComputeShader
	Outline ComputeShader
}{
	Mask: RenderShader{
		Name: "mask",
		Bindings: []Binding{
			{Type: Uniform},
			{Type: BufReadOnly},
		},
		VertexEntry:   "vs_main",
		FragmentEntry: "fs_main",
		TargetFormat:  Rgba8,
		WGSL:          maskWGSL,
	},
	JfaInit: ComputeShader{
		Name:          "jfa_init",
		WorkgroupSize: [3]uint32{16, 16, 1},
		Bindings: []Binding{
			{Type: Uniform},
			{Type: ImageRead, Format: Rgba8},
			{Type: Image, Format: Rgba16Float},
		},
		WGSL: jfaInitWGSL,
	},
	Jfa: ComputeShader{
		Name:          "jfa",
		WorkgroupSize: [3]uint32{16, 16, 1},
		Bindings: []Binding{
			{Type: Uniform},
			{Type: Uniform},
			{Type: ImageRead, Format: Rgba16Float},
			{Type: Image, Format: Rgba16Float},
		},
		WGSL: jfaWGSL,
	},
	Outline: ComputeShader{
		Name:          "outline",
		WorkgroupSize: [3]uint32{16, 16, 1},
		Bindings: []Binding{
			{Type: Uniform},
			{Type: Uniform},
			{Type: ImageRead, Format: Rgba16Float},
			{Type: ImageRead, Format: Rgba8},
			{Type: Image, Format: Rgba8},
		},
		WGSL: outlineWGSL,
	},
}
