package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/mmcdole/rickdex/internal/search"
	"github.com/mmcdole/rickdex/internal/tui/styles"
)

func newSearchCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Search cached characters by name",
		Long:  "Rank cached characters whose display or remote name contains the query letters in order.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configFile, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.queries.Characters()
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			results := search.Characters(query, records)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintln(out, "No results found.")
				return nil
			}

			var (
				headerStyle = lipgloss.NewStyle().Foreground(styles.PortalGreen).Bold(true).Align(lipgloss.Center)
				cellStyle   = lipgloss.NewStyle().Padding(0, 1)
			)

			t := table.New().
				Border(lipgloss.HiddenBorder()).
				StyleFunc(func(row, col int) lipgloss.Style {
					if row == table.HeaderRow {
						return headerStyle
					}
					return cellStyle
				}).
				Headers("#", "Name", "ID")

			for i, r := range results {
				t.Row(fmt.Sprintf("%d", i+1), styles.Truncate(r.Record.GetTitle(), 40), r.Record.ID)
			}

			fmt.Fprintln(out, t)
			return nil
		},
	}
}
