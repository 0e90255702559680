package report

import "github.com/charmbracelet/lipgloss"

var (
	successColor = lipgloss.AdaptiveColor{Light: "#28A745", Dark: "#4CDD76"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#DC3545", Dark: "#FF6B7D"}
	warningColor = lipgloss.AdaptiveColor{Light: "#B8860B", Dark: "#FFD54F"}
	infoColor    = lipgloss.AdaptiveColor{Light: "#17A2B8", Dark: "#4DD0E1"}
	headingColor = lipgloss.AdaptiveColor{Light: "#212529", Dark: "#F8F9FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#6C757D", Dark: "#ADB5BD"}
)

// level is the kind of a status line.
type level int

const (
	levelSuccess level = iota
	levelInfo
	levelWarn
	levelError
)

var markers = map[level]string{
	levelSuccess: "[√]",
	levelInfo:    "[i]",
	levelWarn:    "[WARN]",
	levelError:   "[ERR]",
}

// styles holds the lipgloss styles of one renderer. A plain set leaves
// text unchanged.
type styles struct {
	plain   bool
	levels  map[level]lipgloss.Style
	heading lipgloss.Style
	muted   lipgloss.Style
	path    lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		levels: map[level]lipgloss.Style{
			levelSuccess: r.NewStyle().Foreground(successColor),
			levelInfo:    r.NewStyle().Foreground(infoColor),
			levelWarn:    r.NewStyle().Foreground(warningColor).Bold(true),
			levelError:   r.NewStyle().Foreground(errorColor).Bold(true),
		},
		heading: r.NewStyle().Foreground(headingColor).Bold(true),
		muted:   r.NewStyle().Foreground(mutedColor),
		path:    r.NewStyle().Foreground(mutedColor).Italic(true),
	}
}

func (s styles) render(st lipgloss.Style, text string) string {
	if s.plain {
		return text
	}
	return st.Render(text)
}
