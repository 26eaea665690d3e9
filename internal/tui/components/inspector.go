package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/tui/styles"
)

// Layout constants for inspector
const (
	InspectorBorderHeight     = 2
	InspectorScrollIndicators = 2
)

// inspectorContent holds the three-zone layout content
type inspectorContent struct {
	header string // fixed top
	body   string // scrollable middle
	footer string // fixed bottom
}

// Inspector displays the selected character and, once loaded, its episode description
type Inspector struct {
	record     *domain.CharacterRecord
	width      int
	height     int
	offset     int // scroll offset
	maxVisible int // max visible lines

	// Description for record, fetched on demand
	describing  bool
	description string
	descErr     error
	spinnerView string
}

// NewInspector creates a new inspector component
func NewInspector() Inspector {
	return Inspector{}
}

// SetRecord sets the record to display. Changing records drops any description.
func (i *Inspector) SetRecord(rec *domain.CharacterRecord) {
	if rec != nil && i.record != nil && rec.ID == i.record.ID {
		i.record = rec
		return
	}
	i.record = rec
	i.offset = 0
	i.describing = false
	i.description = ""
	i.descErr = nil
}

// RecordID returns the displayed record ID, or "" when empty
func (i Inspector) RecordID() string {
	if i.record == nil {
		return ""
	}
	return i.record.ID
}

// SetDescribing marks the description as loading
func (i *Inspector) SetDescribing() {
	i.describing = true
	i.description = ""
	i.descErr = nil
}

// SetDescription shows a loaded description (or the error that prevented it)
func (i *Inspector) SetDescription(text string, err error) {
	i.describing = false
	i.description = text
	i.descErr = err
	i.offset = 0
}

// IsDescribing reports whether a description fetch is outstanding
func (i Inspector) IsDescribing() bool {
	return i.describing
}

// Description returns the loaded description text
func (i Inspector) Description() string {
	return i.description
}

// SetSpinnerView sets the rendered spinner frame
func (i *Inspector) SetSpinnerView(view string) {
	i.spinnerView = view
}

// ScrollBy moves the body scroll offset by delta lines
func (i *Inspector) ScrollBy(delta int) {
	i.offset += delta
	if i.offset < 0 {
		i.offset = 0
	}
}

// SetSize updates the component dimensions
func (i *Inspector) SetSize(width, height int) {
	i.width = width
	i.height = height
	// Reserve space for border, scroll indicators, title and the blank line after it
	i.maxVisible = height - InspectorBorderHeight - InspectorScrollIndicators - 2
	if i.maxVisible < 1 {
		i.maxVisible = 1
	}
}

// View renders the component
func (i Inspector) View() string {
	style := styles.InactiveBorder

	// Border takes 2 chars (1 each side), leave 1 char safety margin
	contentWidth := max(i.width-3, 10)
	content := i.renderInspector(contentWidth)

	titleLine := styles.AccentStyle.Render(styles.Truncate("Info", contentWidth))

	headerLines := splitLines(content.header)
	footerLines := splitLines(content.footer)
	bodyLines := splitLines(content.body)

	availableForBody := max(i.maxVisible-len(headerLines)-len(footerLines), 1)

	// Clamp body scroll offset
	maxOffset := max(len(bodyLines)-availableForBody, 0)
	offset := min(i.offset, maxOffset)
	end := min(offset+availableForBody, len(bodyLines))
	visibleBody := bodyLines[offset:end]

	up := " "
	if offset > 0 {
		up = styles.DimStyle.Render("↑ more")
	}
	down := " "
	if end < len(bodyLines) {
		down = styles.DimStyle.Render("↓ more")
	}

	parts := []string{titleLine, ""}
	if content.header != "" {
		parts = append(parts, headerLines...)
	}
	parts = append(parts, up)
	parts = append(parts, visibleBody...)
	for j := len(visibleBody); j < availableForBody; j++ {
		parts = append(parts, "")
	}
	parts = append(parts, down)
	if content.footer != "" {
		parts = append(parts, footerLines...)
	}

	// Subtract frame size so total rendered size equals i.width x i.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(i.width-frameW, 0)).
		Height(max(i.height-frameH, 0)).
		Render(strings.Join(parts, "\n"))
}

// renderInspector renders the inspector panel content as three zones
func (i Inspector) renderInspector(width int) inspectorContent {
	if i.record == nil {
		return inspectorContent{body: styles.DimStyle.Render("No character selected")}
	}
	rec := *i.record

	var header strings.Builder
	header.WriteString(styles.TitleStyle.Render(styles.Truncate(rec.GetTitle(), width)))
	if rec.DisplayName != rec.Name && rec.Name != "" {
		header.WriteString("\n" + styles.DimStyle.Render(styles.Truncate("aka "+rec.Name, width)))
	}
	header.WriteString("\n" + styles.StatusIndicator(rec.Status) + " " +
		styles.SubtitleStyle.Render(styles.Truncate(rec.GetDescription(), width-2)))

	var body string
	switch {
	case i.describing:
		body = i.spinnerView + styles.DimStyle.Render(" Loading episodes...")
	case i.descErr != nil:
		body = styles.ErrorStyle.Render(wrap("Failed to load episodes: "+i.descErr.Error(), width))
	case i.description != "":
		body = wrap(i.description, width)
	default:
		body = renderFacts(rec, width) + "\n\n" + styles.DimStyle.Render("enter: load episodes")
	}

	footer := styles.DimStyle.Render(styles.Truncate(rec.ImageURL, width))

	return inspectorContent{header: header.String(), body: body, footer: footer}
}

func renderFacts(rec domain.CharacterRecord, width int) string {
	rows := []struct{ label, value string }{
		{"Gender", rec.Gender},
		{"Origin", rec.Origin},
		{"Location", rec.Location},
		{"Episodes", fmt.Sprintf("%d", len(rec.Episodes))},
	}
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		label := styles.DimStyle.Render(r.label + ": ")
		lines = append(lines, label+styles.Truncate(r.value, width-len(r.label)-2))
	}
	return strings.Join(lines, "\n")
}

func wrap(s string, width int) string {
	return lipgloss.NewStyle().Width(width).Render(strings.TrimRight(s, "\n"))
}

func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
