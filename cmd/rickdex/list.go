package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/mmcdole/rickdex/internal/domain"
	"github.com/mmcdole/rickdex/internal/tui/styles"
)

func newListCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached characters",
		Long:  "Display every cached character in fetch order. Never touches the network.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, opts)
		},
	}
}

func runList(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(opts.configFile, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.queries.Characters()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(out, "No characters cached. Run 'rickdex sync' to fetch the first page.")
		return nil
	}

	fmt.Fprintf(out, "\nCharacters (%d)\n\n", len(records))
	fmt.Fprintln(out, renderTable(records))

	cursor, ok, err := a.queries.Cursor()
	if err != nil {
		return err
	}
	if ok && cursor.HasMore() {
		fmt.Fprintln(out, "\nMore pages available. Run 'rickdex sync' to fetch the next one.")
	}
	return nil
}

// renderTable lays records out as a static table
func renderTable(records []domain.CharacterRecord) string {
	columns := []table.Column{
		{Title: "ID", Width: 36},
		{Title: "Name", Width: 32},
		{Title: "Species", Width: 14},
		{Title: "Status", Width: 8},
		{Title: "Episodes", Width: 8},
	}

	rows := make([]table.Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, table.Row{
			rec.ID,
			styles.Truncate(rec.GetTitle(), 30),
			styles.Truncate(rec.Species, 14),
			rec.Status,
			fmt.Sprintf("%d", len(rec.Episodes)),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(styles.DimGray).
		BorderBottom(true).
		Bold(true)
	// Nothing is selectable in a printed table
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)
	// Header line plus its bottom border
	t.SetHeight(len(rows) + 2)

	return strings.TrimRight(t.View(), "\n")
}
