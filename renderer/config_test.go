package renderer

import (
	"math"
	"testing"
	"unsafe"

	"github.com/google/go-cmp/cmp"

	"honnef.co/go/jumpflood/gfx"
)

func TestJumpSteps(t *testing.T) {
	tests := []struct {
		name          string
		width, height uint32
		want          []uint32
	}{
		{"single pixel", 1, 1, nil},
		{"2x2", 2, 2, []uint32{1}},
		{"3x2", 3, 2, []uint32{2, 1}},
		{"64x64", 64, 64, []uint32{32, 16, 8, 4, 2, 1}},
		{"100x80", 100, 80, []uint32{64, 32, 16, 8, 4, 2, 1}},
		{"tall target", 1, 256, []uint32{128, 64, 32, 16, 8, 4, 2, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JumpSteps(tt.width, tt.height)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("JumpSteps(%d, %d) mismatch (-want +got):\n%s", tt.width, tt.height, diff)
			}
		})
	}
}

func TestJumpStepsProperties(t *testing.T) {
	for _, m := range []uint32{2, 3, 7, 16, 100, 1000, 4096} {
		steps := JumpSteps(m, 1)

		wantLen := int(math.Ceil(math.Log2(float64(m))))
		if len(steps) != wantLen {
			t.Errorf("JumpSteps(%d, 1) has %d passes, want %d", m, len(steps), wantLen)
		}
		for i, s := range steps {
			if i > 0 && steps[i-1] != s*2 {
				t.Errorf("JumpSteps(%d, 1): step %d is %d, want %d", m, i, s, steps[i-1]/2)
			}
		}
		if len(steps) > 0 && steps[len(steps)-1] != 1 {
			t.Errorf("JumpSteps(%d, 1): final step is %d, want 1", m, steps[len(steps)-1])
		}

		// The same dimensions always yield the same sequence.
		if diff := cmp.Diff(steps, JumpSteps(m, 1)); diff != "" {
			t.Errorf("JumpSteps(%d, 1) is not deterministic:\n%s", m, diff)
		}
	}
}

// The uniform structs are uploaded byte for byte, so their sizes must
// match the WGSL struct sizes exactly.
func TestUniformSizes(t *testing.T) {
	tests := []struct {
		name string
		size uintptr
		want uintptr
	}{
		{"DimensionsUniform", unsafe.Sizeof(DimensionsUniform{}), 16},
		{"JumpUniform", unsafe.Sizeof(JumpUniform{}), 16},
		{"ParamsUniform", unsafe.Sizeof(ParamsUniform{}), 48},
		{"InstanceUniform", unsafe.Sizeof(InstanceUniform{}), 80},
	}
	for _, tt := range tests {
		if tt.size != tt.want {
			t.Errorf("%s is %d bytes, want %d", tt.name, tt.size, tt.want)
		}
	}
}

func TestNewDimensionsUniform(t *testing.T) {
	d := NewDimensionsUniform(640, 480)
	if d.Width != 640 || d.Height != 480 {
		t.Errorf("dimensions are %vx%v, want 640x480", d.Width, d.Height)
	}
	if d.InvWidth != 1.0/640 || d.InvHeight != 1.0/480 {
		t.Errorf("inverse dimensions are %v, %v", d.InvWidth, d.InvHeight)
	}
}

func TestNewParamsUniform(t *testing.T) {
	style := gfx.Style{
		Color:      gfx.Color{R: 1, G: 0.5, B: 0.25, A: 1},
		InnerColor: gfx.Color{R: 0, G: 0, B: 0, A: 0.5},
		Weight:     4,
	}
	p := NewParamsUniform(style)
	if p.Color != [4]float32{1, 0.5, 0.25, 1} {
		t.Errorf("Color = %v", p.Color)
	}
	if p.InnerColor != [4]float32{0, 0, 0, 0.5} {
		t.Errorf("InnerColor = %v", p.InnerColor)
	}
	if p.Weight != 4 {
		t.Errorf("Weight = %v, want 4", p.Weight)
	}
}

func TestWorkgroupCount(t *testing.T) {
	tests := []struct {
		width, height uint32
		want          [3]uint32
	}{
		{16, 16, [3]uint32{1, 1, 1}},
		{17, 16, [3]uint32{2, 1, 1}},
		{64, 48, [3]uint32{4, 3, 1}},
		{1, 1, [3]uint32{1, 1, 1}},
	}
	for _, tt := range tests {
		if got := workgroupCount(tt.width, tt.height); got != tt.want {
			t.Errorf("workgroupCount(%d, %d) = %v, want %v", tt.width, tt.height, got, tt.want)
		}
	}
}
