// Package termstyle colors CLI summaries when writing to a terminal.
package termstyle

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette, in 256-color codes.
var (
	colorTitle   = lipgloss.Color("39")
	colorSuccess = lipgloss.Color("34")
	colorWarning = lipgloss.Color("214")
	colorError   = lipgloss.Color("196")
	colorMuted   = lipgloss.Color("245")
)

// Styler renders labels for one output stream. A disabled Styler returns
// its input unchanged.
type Styler struct {
	enabled bool
	title   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// New returns a Styler for w. Styling is enabled only when w is a terminal
// and NO_COLOR is unset.
func New(w io.Writer) *Styler {
	if !Enabled(w) {
		return Plain()
	}
	r := lipgloss.NewRenderer(w)
	return &Styler{
		enabled: true,
		title:   r.NewStyle().Bold(true).Foreground(colorTitle),
		success: r.NewStyle().Foreground(colorSuccess),
		warning: r.NewStyle().Foreground(colorWarning),
		failure: r.NewStyle().Bold(true).Foreground(colorError),
		muted:   r.NewStyle().Foreground(colorMuted),
	}
}

// Plain returns a Styler that never adds escape codes.
func Plain() *Styler {
	return &Styler{}
}

// Enabled reports whether output to w should be styled.
func Enabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: file descriptors fit in int
}

// IsEnabled reports whether s adds styling.
func (s *Styler) IsEnabled() bool { return s.enabled }

func (s *Styler) Title(str string) string   { return s.render(s.title, str) }
func (s *Styler) Success(str string) string { return s.render(s.success, str) }
func (s *Styler) Warning(str string) string { return s.render(s.warning, str) }
func (s *Styler) Error(str string) string   { return s.render(s.failure, str) }
func (s *Styler) Muted(str string) string   { return s.render(s.muted, str) }

// Count styles n as a warning when it is non-zero, and muted otherwise.
func (s *Styler) Count(n int, str string) string {
	if n == 0 {
		return s.Muted(str)
	}
	return s.Warning(str)
}

func (s *Styler) render(style lipgloss.Style, str string) string {
	if !s.enabled {
		return str
	}
	return style.Render(str)
}
