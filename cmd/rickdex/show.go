package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmcdole/rickdex/internal/tui/styles"
)

func newShowCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a character with its episodes",
		Long:  "Print a cached character and resolve its episode list from the API.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.configFile, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			rec, err := a.queries.Character(args[0])
			if err != nil {
				return err
			}

			ctx, cancel := signalContext()
			defer cancel()

			text, err := a.enricher.Describe(ctx, rec)
			if err != nil {
				return fmt.Errorf("failed to load episodes: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, styles.TitleStyle.Render(rec.GetTitle()))
			if rec.DisplayName != rec.Name {
				fmt.Fprintln(out, styles.DimStyle.Render("aka "+rec.Name))
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, text)
			return nil
		},
	}
}
