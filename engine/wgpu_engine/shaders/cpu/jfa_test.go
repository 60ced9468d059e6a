package cpu

import (
	"testing"

	"github.com/chewxy/math32"

	"honnef.co/go/jumpflood/renderer"
)

func squareMask(width, height, x0, y0, size int) *MaskImage {
	mask := NewMaskImage(width, height)
	for y := y0; y < y0+size; y++ {
		for x := x0; x < x0+size; x++ {
			mask.Pix[y*width+x] = [4]float32{1, 0.5, 0.5, 1}
		}
	}
	return mask
}

// flood runs the full jump flood sequence for the given seeds and
// returns the final seed image.
func flood(dims *renderer.DimensionsUniform, seeds *SeedImage) *SeedImage {
	src := seeds
	dst := NewSeedImage(src.Width, src.Height)
	for _, step := range renderer.JumpSteps(uint32(src.Width), uint32(src.Height)) {
		jump := renderer.NewJumpUniform(step)
		Jfa(dims, &jump, src, dst)
		src, dst = dst, src
	}
	return src
}

// seedDist returns the pixel-space distance between the pixel (x, y)
// and the seed stored there, or +Inf for the sentinel.
func seedDist(dims *renderer.DimensionsUniform, seeds *SeedImage, x, y int) float32 {
	seed := seeds.At(x, y)
	if isSentinel(seed) {
		return math32.Inf(1)
	}
	dx := (seed[0]-(float32(x)+0.5)*dims.InvWidth)*dims.Width
	dy := (seed[1]-(float32(y)+0.5)*dims.InvHeight)*dims.Height
	return math32.Hypot(dx, dy)
}

func TestJfaInitEmptyMask(t *testing.T) {
	dims := renderer.NewDimensionsUniform(32, 32)
	mask := NewMaskImage(32, 32)
	seeds := NewSeedImage(32, 32)
	JfaInit(&dims, mask, seeds)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			if !isSentinel(seeds.At(x, y)) {
				t.Fatalf("pixel (%d, %d) seeded in an empty mask", x, y)
			}
		}
	}
}

func TestJfaInitUniformMask(t *testing.T) {
	// Samples beyond the image edge read as background, so a mask
	// covering the whole target has a silhouette boundary along the
	// image border: exactly the border pixels are seeded.
	dims := renderer.NewDimensionsUniform(16, 16)
	mask := squareMask(16, 16, 0, 0, 16)
	seeds := NewSeedImage(16, 16)
	JfaInit(&dims, mask, seeds)

	count := 0
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			border := x == 0 || y == 0 || x == 15 || y == 15
			seeded := !isSentinel(seeds.At(x, y))
			if seeded != border {
				t.Errorf("pixel (%d, %d): seeded = %v, on border = %v", x, y, seeded, border)
			}
			if seeded {
				count++
			}
		}
	}
	if want := 60; count != want {
		t.Errorf("got %d seeds, want %d", count, want)
	}
	// Border pixels seed themselves.
	if got := seedDist(&dims, seeds, 0, 7); got != 0 {
		t.Errorf("border seed distance = %v, want 0", got)
	}
}

func TestJfaInitSeedsBoundary(t *testing.T) {
	dims := renderer.NewDimensionsUniform(32, 32)
	mask := squareMask(32, 32, 12, 12, 8)
	seeds := NewSeedImage(32, 32)
	JfaInit(&dims, mask, seeds)

	// The covered boundary pixel at (12, 16) sees an empty pixel on one
	// side and a covered one on the other.
	if isSentinel(seeds.At(12, 16)) {
		t.Error("boundary pixel (12, 16) not seeded")
	}
	// Its seed is its own coordinate.
	if got := seedDist(&dims, seeds, 12, 16); got != 0 {
		t.Errorf("boundary seed distance = %v, want 0", got)
	}
	// The empty pixel right outside is seeded too.
	if isSentinel(seeds.At(11, 16)) {
		t.Error("pixel (11, 16) adjacent to the boundary not seeded")
	}
	// Deep interior and far background are not.
	if !isSentinel(seeds.At(16, 16)) {
		t.Error("interior pixel (16, 16) seeded")
	}
	if !isSentinel(seeds.At(2, 2)) {
		t.Error("background pixel (2, 2) seeded")
	}
}

// A centered square mask must produce a seed pattern with the same
// symmetries as the mask.
func TestJfaInitSymmetry(t *testing.T) {
	const n = 32
	dims := renderer.NewDimensionsUniform(n, n)
	mask := squareMask(n, n, 12, 12, 8)
	seeds := NewSeedImage(n, n)
	JfaInit(&dims, mask, seeds)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			s := isSentinel(seeds.At(x, y))
			if got := isSentinel(seeds.At(n-1-x, y)); got != s {
				t.Fatalf("seed pattern not symmetric: (%d, %d) vs (%d, %d)", x, y, n-1-x, y)
			}
			if got := isSentinel(seeds.At(x, n-1-y)); got != s {
				t.Fatalf("seed pattern not symmetric: (%d, %d) vs (%d, %d)", x, y, x, n-1-y)
			}
			if got := isSentinel(seeds.At(y, x)); got != s {
				t.Fatalf("seed pattern not symmetric: (%d, %d) vs (%d, %d)", x, y, y, x)
			}
		}
	}
}

// Flooding an all-sentinel image leaves every pixel at the sentinel,
// regardless of the number of passes.
func TestJfaSentinelPropagation(t *testing.T) {
	dims := renderer.NewDimensionsUniform(16, 16)
	seeds := flood(&dims, NewSeedImage(16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			if !isSentinel(seeds.At(x, y)) {
				t.Fatalf("pixel (%d, %d) gained a seed from nothing", x, y)
			}
		}
	}
}

// A pass never replaces a pixel's stored seed with a farther one.
func TestJfaMonotonicity(t *testing.T) {
	const n = 64
	dims := renderer.NewDimensionsUniform(n, n)
	mask := squareMask(n, n, 27, 27, 10)
	src := NewSeedImage(n, n)
	JfaInit(&dims, mask, src)
	dst := NewSeedImage(n, n)

	for _, step := range renderer.JumpSteps(n, n) {
		jump := renderer.NewJumpUniform(step)
		Jfa(&dims, &jump, src, dst)
		for y := 0; y < n; y++ {
			for x := 0; x < n; x++ {
				before := seedDist(&dims, src, x, y)
				after := seedDist(&dims, dst, x, y)
				if after > before {
					t.Fatalf("step %d: pixel (%d, %d) seed distance grew from %v to %v",
						step, x, y, before, after)
				}
			}
		}
		src, dst = dst, src
	}
}

// After the full sequence every pixel holds a seed on the mask
// boundary, and the stored seed is close to the true nearest one.
func TestJfaConverges(t *testing.T) {
	const n = 64
	dims := renderer.NewDimensionsUniform(n, n)
	mask := squareMask(n, n, 27, 27, 10)
	init := NewSeedImage(n, n)
	JfaInit(&dims, mask, init)

	var seedPixels [][2]int
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			if !isSentinel(init.At(x, y)) {
				seedPixels = append(seedPixels, [2]int{x, y})
			}
		}
	}

	final := flood(&dims, init)
	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			got := seedDist(&dims, final, x, y)
			if math32.IsInf(got, 1) {
				t.Fatalf("pixel (%d, %d) still at sentinel after flooding", x, y)
			}
			best := math32.Inf(1)
			for _, s := range seedPixels {
				d := math32.Hypot(float32(s[0]-x), float32(s[1]-y))
				if d < best {
					best = d
				}
			}
			// 1+JFA-style sequences are exact in most configurations
			// and off by a small constant in the rest; anything beyond
			// two pixels of error means a broken pass.
			if got > best+2 {
				t.Errorf("pixel (%d, %d): stored seed %v pixels away, true nearest %v", x, y, got, best)
			}
		}
	}
}

func TestOutlineSentinel(t *testing.T) {
	dims := renderer.NewDimensionsUniform(8, 8)
	params := renderer.ParamsUniform{Color: [4]float32{1, 0, 0, 1}, Weight: 4}
	seeds := NewSeedImage(8, 8)
	mask := NewMaskImage(8, 8)
	out := NewRGBAImage(8, 8)
	Outline(&dims, &params, seeds, mask, out)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if out.At(x, y) != ([4]float32{}) {
				t.Fatalf("pixel (%d, %d) = %v without any seeds", x, y, out.At(x, y))
			}
		}
	}
}

func TestOutlineAlphaAtBoundary(t *testing.T) {
	tests := []struct {
		name    string
		weight  float32
		covered bool
		want    float32
	}{
		// Interior alpha at zero distance is clamp(weight, 0.1, 0.75).
		{"covered weight 4", 4, true, 0.75},
		{"covered weight 0.5", 0.5, true, 0.5},
		{"covered weight 0", 0, true, 0.1},
		// Exterior alpha at zero distance is clamp(weight*4, 0, 1).
		{"uncovered weight 4", 4, false, 1},
		{"uncovered weight 0.1", 0.1, false, 0.4},
		{"uncovered weight 0", 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := renderer.NewDimensionsUniform(4, 4)
			params := renderer.ParamsUniform{Color: [4]float32{0, 1, 0, 1}, Weight: tt.weight}
			seeds := NewSeedImage(4, 4)
			// Pixel (1, 1) is its own seed, so its distance is zero.
			seeds.set(1, 1, [2]float32{1.5 / 4, 1.5 / 4})
			mask := NewMaskImage(4, 4)
			if tt.covered {
				mask.Pix[1*4+1] = [4]float32{1, 0.5, 0.5, 1}
			}
			out := NewRGBAImage(4, 4)
			Outline(&dims, &params, seeds, mask, out)

			got := out.At(1, 1)
			if !approxEq(got[3], tt.want) {
				t.Errorf("alpha = %v, want %v", got[3], tt.want)
			}
			if got[0] != 0 || got[1] != 1 || got[2] != 0 {
				t.Errorf("rgb = %v, want outline color", got[:3])
			}
		})
	}
}

func approxEq(a, b float32) bool {
	return math32.Abs(a-b) < 1e-6
}

// End to end on the CPU replicas: a 10x10 square in a 64x64 target
// with outline weight 4.
func TestPipelineSquare(t *testing.T) {
	const n = 64
	dims := renderer.NewDimensionsUniform(n, n)
	params := renderer.ParamsUniform{Color: [4]float32{1, 1, 1, 1}, Weight: 4}
	mask := squareMask(n, n, 27, 27, 10)

	seeds := NewSeedImage(n, n)
	JfaInit(&dims, mask, seeds)
	final := flood(&dims, seeds)

	out := NewRGBAImage(n, n)
	Outline(&dims, &params, final, mask, out)

	// The empty pixel right at the silhouette is fully opaque.
	if got := out.At(26, 31); !approxEq(got[3], 1) {
		t.Errorf("alpha just outside the silhouette = %v, want 1", got[3])
	}
	// The covered boundary pixel sits at the interior clamp maximum.
	if got := out.At(27, 31); !approxEq(got[3], 0.75) {
		t.Errorf("alpha on the silhouette = %v, want 0.75", got[3])
	}
	// The square's center is four pixels from the boundary, deep past
	// the interior fade, so it rests at the interior minimum.
	if got := out.At(31, 31); !approxEq(got[3], 0.1) {
		t.Errorf("alpha at the square center = %v, want 0.1", got[3])
	}
	// Background far beyond the outline width is fully transparent.
	if got := out.At(0, 0); got[3] != 0 {
		t.Errorf("alpha in the far background = %v, want 0", got[3])
	}
	// The outline fades with distance outside the silhouette.
	near := out.At(24, 31)[3]
	farther := out.At(8, 31)[3]
	if near < farther {
		t.Errorf("outline alpha increases with distance: %v at 3px, %v at 19px", near, farther)
	}
}
