package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
var (
	PortalGreen = lipgloss.Color("#97CE4C")
	SlateDark   = lipgloss.Color("#1F2937")
	SlateLight  = lipgloss.Color("#374151")
	DimGray     = lipgloss.Color("#6B7280")
	LightGray   = lipgloss.Color("#9CA3AF")
	White       = lipgloss.Color("#F9FAFB")
	Green       = lipgloss.Color("#10B981")
	Red         = lipgloss.Color("#EF4444")
)

// Borders
var (
	ActiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PortalGreen)

	InactiveBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)
)

// Raw life status characters (unstyled)
const (
	AliveChar   = "●"
	DeadChar    = "✗"
	UnknownChar = "?"
)

// Life status indicator styles
var (
	AliveStyle   = lipgloss.NewStyle().Foreground(Green)
	DeadStyle    = lipgloss.NewStyle().Foreground(Red)
	UnknownStyle = lipgloss.NewStyle().Foreground(DimGray)
)

// Modal styles
var (
	ModalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(PortalGreen).
			Padding(1, 2).
			Background(SlateDark)

	ModalTitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true).
			MarginBottom(1)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(PortalGreen)
)

// Filter styles
var (
	FilterPromptStyle = lipgloss.NewStyle().
				Foreground(PortalGreen).
				Bold(true)
)

// Match highlight styles for filter results
var (
	MatchHighlightStyle = lipgloss.NewStyle().
				Foreground(PortalGreen).
				Bold(true)

	MatchHighlightSelectedStyle = lipgloss.NewStyle().
					Foreground(PortalGreen).
					Background(SlateLight).
					Bold(true)
)

// Helper functions

// StatusIndicator renders the life status marker for a character
func StatusIndicator(status string) string {
	switch strings.ToLower(status) {
	case "alive":
		return AliveStyle.Render(AliveChar)
	case "dead":
		return DeadStyle.Render(DeadChar)
	default:
		return UnknownStyle.Render(UnknownChar)
	}
}

// Truncate truncates a string to the given width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}

// RenderListRow renders a complete list row with uniform background when selected.
// Each part is styled separately to avoid ANSI reset code issues.
func RenderListRow(parts []RowPart, selected bool, width int) string {
	var b strings.Builder
	visibleLen := 0

	for _, part := range parts {
		b.WriteString(part.Style(selected).Render(part.Text))
		visibleLen += lipgloss.Width(part.Text)
	}

	// Pad to width (2 reserved for margins)
	padStyle := lipgloss.NewStyle()
	if selected {
		padStyle = padStyle.Background(SlateLight)
	}
	if pad := width - visibleLen - 2; pad > 0 {
		b.WriteString(padStyle.Render(strings.Repeat(" ", pad)))
	}
	margin := padStyle.Render(" ")

	return margin + b.String() + margin
}

// RowPart is a run of row text, optionally a filter match
type RowPart struct {
	Text  string
	Match bool
}

// Style returns the style for the part given the row's selection state
func (p RowPart) Style(selected bool) lipgloss.Style {
	switch {
	case p.Match && selected:
		return MatchHighlightSelectedStyle
	case p.Match:
		return MatchHighlightStyle
	case selected:
		return lipgloss.NewStyle().Foreground(White).Background(SlateLight)
	default:
		return lipgloss.NewStyle().Foreground(LightGray)
	}
}
