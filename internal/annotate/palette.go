package annotate

// Palette is the cycle of highlight colors, as CSS hex values.
type Palette []string

// DefaultPalette is the fixed eight-color pastel cycle.
var DefaultPalette = Palette{
	"#ffadad",
	"#ffd6a5",
	"#fdffb6",
	"#caffbf",
	"#9bf6ff",
	"#a0c4ff",
	"#bdb2ff",
	"#ffc6ff",
}

// Color returns the color for the i-th match (0-based).
func (p Palette) Color(i int) string {
	if len(p) == 0 {
		return ""
	}
	if i < 0 {
		i = -i
	}
	return p[i%len(p)]
}
