package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type syncOptions struct {
	pages int
	all   bool
}

func newSyncCmd(opts *rootOptions) *cobra.Command {
	so := &syncOptions{}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Fetch character pages into the local cache",
		Long: "Fetch the next page of the character listing (or the first page on an empty cache). " +
			"Use --pages or --all to fetch more.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if so.pages < 1 && !so.all {
				return fmt.Errorf("--pages must be at least 1, got %d", so.pages)
			}
			maxPages := so.pages
			if so.all {
				maxPages = 0
			}

			a, err := newApp(opts.configFile, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := signalContext()
			defer cancel()

			out := cmd.OutOrStdout()
			result, err := a.ctrl.Sync(ctx, maxPages, func(pages, records int) {
				fmt.Fprintf(out, "\rFetched %d page(s), %d characters", pages, records)
			})
			if result.Pages > 0 {
				fmt.Fprintln(out)
			}
			if err != nil {
				return err
			}

			switch {
			case result.Pages == 0:
				fmt.Fprintf(out, "Already up to date: %d characters, no more pages.\n", result.Count)
			case result.Exhausted:
				fmt.Fprintf(out, "Cached %d characters. Reached the end of the listing.\n", result.Count)
			default:
				fmt.Fprintf(out, "Cached %d characters. More pages available.\n", result.Count)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&so.pages, "pages", "p", 1, "number of pages to fetch")
	cmd.Flags().BoolVar(&so.all, "all", false, "fetch every remaining page")
	return cmd
}
