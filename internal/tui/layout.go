package tui

// updateLayout updates component sizes based on window size
func (m *Model) updateLayout() {
	if m.Width == 0 || m.Height == 0 {
		return
	}

	contentHeight := m.Height - ChromeHeight
	listWidth, inspectorWidth := m.columnWidths()

	m.List.SetSize(listWidth, contentHeight)
	m.Inspector.SetSize(inspectorWidth, contentHeight)
}

// columnWidths splits the window between the list and the inspector
func (m Model) columnWidths() (list, inspector int) {
	list = max(m.Width*ListColumnPercent/100, MinColumnWidth)
	if list > m.Width {
		list = m.Width
	}
	return list, m.Width - list
}
