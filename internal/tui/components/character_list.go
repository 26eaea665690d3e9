package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/search"
	"github.com/mmcdole/rickdex/internal/tui/styles"
)

// Layout constants for the list
const (
	// Border adds 1 char on each side (left+right for width, top+bottom for height)
	BorderWidth  = 2
	BorderHeight = 2

	// Title line plus "↑ more" and "↓ more" lines
	ListChromeLines = 3
)

// CharacterList is a scrollable, filterable list of character records.
type CharacterList struct {
	records []domain.CharacterRecord

	// Selection
	cursor     int
	offset     int
	maxVisible int

	// Dimensions
	width   int
	height  int
	focused bool

	// Footer while the next page is being fetched
	loadingMore bool
	spinnerView string
	exhausted   bool

	// Filter state
	filterActive bool
	filterInput  textinput.Model
	matches      []search.FuzzyMatch // nil when no query
}

// NewCharacterList creates an empty list
func NewCharacterList() *CharacterList {
	ti := textinput.New()
	ti.Placeholder = "type to filter..."
	ti.Prompt = "/ "
	ti.PromptStyle = styles.FilterPromptStyle
	ti.TextStyle = lipgloss.NewStyle().Foreground(styles.PortalGreen)

	return &CharacterList{
		filterInput: ti,
		focused:     true,
	}
}

// Update handles navigation and filter keys. Returns true when the key was consumed.
func (c *CharacterList) Update(msg tea.Msg) (tea.Cmd, bool) {
	keyMsg, isKey := msg.(tea.KeyMsg)

	// Typing mode: everything goes to the filter input
	if c.filterActive && c.filterInput.Focused() {
		if isKey {
			switch {
			case key.Matches(keyMsg, ListKeys.Escape):
				c.ClearFilter()
				return nil, true
			case key.Matches(keyMsg, ListKeys.Enter):
				// Accept filter, blur input to allow navigation
				c.filterInput.Blur()
				return nil, true
			case key.Matches(keyMsg, ListKeys.Backspace):
				if c.filterInput.Value() == "" {
					c.ClearFilter()
					return nil, true
				}
			}
		}
		var cmd tea.Cmd
		c.filterInput, cmd = c.filterInput.Update(msg)
		c.applyFilter()
		return cmd, true
	}

	if !isKey {
		return nil, false
	}

	if c.filterActive && key.Matches(keyMsg, ListKeys.Escape) {
		c.ClearFilter()
		return nil, true
	}

	if key.Matches(keyMsg, ListKeys.Filter) {
		c.filterActive = true
		c.recalcMaxVisible()
		return c.filterInput.Focus(), true
	}

	count := c.ItemCount()
	if count == 0 {
		return nil, false
	}

	switch {
	case key.Matches(keyMsg, ListKeys.Down):
		if c.cursor < count-1 {
			c.cursor++
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListKeys.Up):
		if c.cursor > 0 {
			c.cursor--
			c.ensureVisible()
		}
	case key.Matches(keyMsg, ListKeys.Home):
		c.cursor = 0
		c.offset = 0
	case key.Matches(keyMsg, ListKeys.End):
		c.cursor = count - 1
		c.ensureVisible()
	case key.Matches(keyMsg, ListKeys.HalfDown):
		c.cursor += max(c.maxVisible/2, 1)
		if c.cursor >= count {
			c.cursor = count - 1
		}
		c.ensureVisible()
	case key.Matches(keyMsg, ListKeys.HalfUp):
		c.cursor -= max(c.maxVisible/2, 1)
		if c.cursor < 0 {
			c.cursor = 0
		}
		c.ensureVisible()
	default:
		return nil, false
	}
	return nil, true
}

// SetRecords replaces the list contents, keeping the selected record if it survives.
func (c *CharacterList) SetRecords(records []domain.CharacterRecord) {
	selectedID := ""
	if sel := c.Selected(); sel != nil {
		selectedID = sel.ID
	}
	prevCursor := c.cursor

	c.records = records
	if c.filterActive {
		c.applyFilter()
	}

	c.cursor = prevCursor
	if selectedID != "" {
		for i := 0; i < c.ItemCount(); i++ {
			if c.records[c.mapIndex(i)].ID == selectedID {
				c.cursor = i
				break
			}
		}
	}
	c.clampCursor()
}

// Records returns the unfiltered records
func (c *CharacterList) Records() []domain.CharacterRecord {
	return c.records
}

// Selected returns the record under the cursor, or nil when empty
func (c *CharacterList) Selected() *domain.CharacterRecord {
	count := c.ItemCount()
	if count == 0 || c.cursor >= count {
		return nil
	}
	rec := c.records[c.mapIndex(c.cursor)]
	return &rec
}

// SelectedIndex returns the cursor position among visible rows
func (c *CharacterList) SelectedIndex() int {
	return c.cursor
}

// SetSelectedIndex moves the cursor, clamped to the visible rows
func (c *CharacterList) SetSelectedIndex(idx int) {
	c.cursor = idx
	c.clampCursor()
}

// ItemCount returns the number of visible rows
func (c *CharacterList) ItemCount() int {
	if c.matches != nil {
		return len(c.matches)
	}
	return len(c.records)
}

// IsFiltered reports whether a filter query narrows the rows
func (c *CharacterList) IsFiltered() bool {
	return c.matches != nil
}

// IsFiltering reports whether the filter input has focus
func (c *CharacterList) IsFiltering() bool {
	return c.filterActive && c.filterInput.Focused()
}

// FilterQuery returns the current filter text
func (c *CharacterList) FilterQuery() string {
	return c.filterInput.Value()
}

// SetLoadingMore toggles the "loading more" footer
func (c *CharacterList) SetLoadingMore(loading bool) {
	c.loadingMore = loading
}

// SetSpinnerView sets the rendered spinner frame for the footer
func (c *CharacterList) SetSpinnerView(view string) {
	c.spinnerView = view
}

// SetExhausted toggles the "end of list" footer
func (c *CharacterList) SetExhausted(exhausted bool) {
	c.exhausted = exhausted
}

func (c *CharacterList) SetFocused(focused bool) {
	c.focused = focused
}

func (c *CharacterList) SetSize(width, height int) {
	c.width = width
	c.height = height
	c.recalcMaxVisible()
	c.ensureVisible()
}

// ClearFilter drops the filter and shows every record
func (c *CharacterList) ClearFilter() {
	selectedID := ""
	if sel := c.Selected(); sel != nil {
		selectedID = sel.ID
	}

	c.filterActive = false
	c.matches = nil
	c.filterInput.SetValue("")
	c.filterInput.Blur()
	c.recalcMaxVisible()

	c.cursor = 0
	for i, r := range c.records {
		if r.ID == selectedID {
			c.cursor = i
			break
		}
	}
	c.offset = 0
	c.ensureVisible()
}

func (c *CharacterList) View() string {
	style := styles.InactiveBorder
	if c.focused {
		style = styles.ActiveBorder
	}

	// Subtract frame size so total rendered size equals c.width x c.height
	frameW, frameH := style.GetFrameSize()

	return style.
		Width(max(c.width-frameW, 0)).
		Height(max(c.height-frameH, 0)).
		Render(c.renderContent())
}

// --- Private helpers ---

func (c *CharacterList) applyFilter() {
	query := c.filterInput.Value()
	if strings.TrimSpace(query) == "" {
		c.matches = nil
	} else {
		c.matches = search.Filter(query, c.records)
		if c.matches == nil {
			c.matches = []search.FuzzyMatch{}
		}
	}
	// Reset cursor to first match
	c.cursor = 0
	c.offset = 0
}

func (c *CharacterList) mapIndex(i int) int {
	if c.matches != nil && i < len(c.matches) {
		return c.matches[i].Index
	}
	return i
}

func (c *CharacterList) clampCursor() {
	count := c.ItemCount()
	if c.cursor >= count {
		c.cursor = count - 1
	}
	if c.cursor < 0 {
		c.cursor = 0
	}
	c.ensureVisible()
}

func (c *CharacterList) recalcMaxVisible() {
	c.maxVisible = c.height - BorderHeight - ListChromeLines
	if c.filterActive {
		c.maxVisible--
	}
	if c.maxVisible < 1 {
		c.maxVisible = 1
	}
}

func (c *CharacterList) ensureVisible() {
	if c.maxVisible <= 0 {
		return
	}
	if c.cursor < c.offset {
		c.offset = c.cursor
	}
	if c.cursor >= c.offset+c.maxVisible {
		c.offset = c.cursor - c.maxVisible + 1
	}
}

// Rendering

func (c *CharacterList) renderContent() string {
	itemWidth := c.width - BorderWidth
	if itemWidth < 10 {
		itemWidth = 10
	}

	title := fmt.Sprintf("Characters (%d)", len(c.records))
	if c.matches != nil {
		title = fmt.Sprintf("Characters (%d/%d)", len(c.matches), len(c.records))
	}
	titleLine := styles.AccentStyle.Render(styles.Truncate(title, itemWidth))

	count := c.ItemCount()
	if count == 0 {
		emptyMsg := "No characters"
		switch {
		case c.matches != nil:
			emptyMsg = "No matches"
		case c.loadingMore:
			emptyMsg = c.spinnerView + " Loading..."
		}
		content := titleLine + "\n \n" + styles.DimStyle.Render(emptyMsg) + "\n "
		if c.filterActive {
			content += "\n" + c.filterInput.View()
		}
		return content
	}

	end := min(c.offset+c.maxVisible, count)
	lines := make([]string, 0, end-c.offset)
	for i := c.offset; i < end; i++ {
		lines = append(lines, c.renderItem(i, i == c.cursor, itemWidth))
	}

	// Always reserve the header and footer lines to prevent layout shifts
	header := " "
	if c.offset > 0 {
		header = styles.DimStyle.Render("↑ more")
	}
	footer := " "
	switch {
	case end < count:
		footer = styles.DimStyle.Render("↓ more")
	case c.loadingMore:
		footer = c.spinnerView + styles.DimStyle.Render(" Loading more...")
	case c.exhausted && c.matches == nil:
		footer = styles.DimStyle.Render("· end of list ·")
	}

	content := titleLine + "\n" + header + "\n" + strings.Join(lines, "\n") + "\n" + footer
	if c.filterActive {
		content += "\n" + c.filterInput.View()
	}
	return content
}

func (c *CharacterList) renderItem(i int, selected bool, width int) string {
	rec := c.records[c.mapIndex(i)]

	// Available space: width - indicator(1) - space(1) - margins(2)
	available := max(width-4, 5)
	title := styles.Truncate(rec.GetTitle(), available)

	parts := []styles.RowPart{
		{Text: styles.StatusIndicator(rec.Status)},
		{Text: " "},
	}
	if c.matches != nil && i < len(c.matches) {
		parts = append(parts, highlightParts(title, c.matches[i].MatchedIndexes)...)
	} else {
		parts = append(parts, styles.RowPart{Text: title})
	}
	return styles.RenderListRow(parts, selected, width)
}

// highlightParts splits title into runs, marking matched byte offsets
func highlightParts(title string, matched []int) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}

	hit := make(map[int]bool, len(matched))
	for _, idx := range matched {
		hit[idx] = true
	}

	var (
		parts []styles.RowPart
		run   strings.Builder
		inHit bool
	)
	flush := func() {
		if run.Len() == 0 {
			return
		}
		parts = append(parts, styles.RowPart{Text: run.String(), Match: inHit})
		run.Reset()
	}

	// sahilm/fuzzy reports byte offsets
	for i, r := range title {
		if hit[i] != inHit {
			flush()
			inHit = hit[i]
		}
		run.WriteRune(r)
	}
	flush()
	return parts
}
