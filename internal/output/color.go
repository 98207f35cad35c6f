package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/sys/unix"

	"github.com/dl/rxmark/internal/annotate"
)

// Styles holds the lipgloss styles for terminal output.
type Styles struct {
	Enabled bool
	Header  lipgloss.Style
	Error   lipgloss.Style
	// Matches holds one style per palette color, cycled by match index.
	Matches []lipgloss.Style
}

// NewStyles creates styles that paint matches with the palette colors as
// background. The renderer is pinned to true color so the output does not
// depend on the terminal lipgloss happens to detect.
func NewStyles(palette annotate.Palette) Styles {
	if len(palette) == 0 {
		palette = annotate.DefaultPalette
	}
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(termenv.TrueColor)

	matches := make([]lipgloss.Style, len(palette))
	for i, c := range palette {
		matches[i] = r.NewStyle().
			Background(lipgloss.Color(c)).
			Foreground(lipgloss.Color("#000000")).
			TabWidth(lipgloss.NoTabConversion)
	}
	return Styles{
		Enabled: true,
		Header:  r.NewStyle().Foreground(lipgloss.Color("6")).Bold(true), // cyan
		Error:   r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true), // bold red
		Matches: matches,
	}
}

// NoStyles returns styles with no coloring.
func NoStyles() Styles {
	return Styles{}
}

// IsTerminal checks if the given file descriptor is a terminal using ioctl.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), unix.TCGETS)
	return err == nil
}

// StdoutIsTerminal returns true if stdout is a terminal.
func StdoutIsTerminal() bool {
	return IsTerminal(os.Stdout.Fd())
}
