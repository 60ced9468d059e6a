package gfx

// Style describes the visual appearance of an outline.
type Style struct {
	// Color of the outline.
	Color Color
	// Inner outline color. Reserved for an alternate compositing mode;
	// the default mode uses a single color law.
	InnerColor Color
	// Outline weight in pixels. Out-of-range values aren't rejected,
	// the compositing math saturates them.
	Weight float32
}
