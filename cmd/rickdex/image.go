package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newImageCmd(opts *rootOptions) *cobra.Command {
	var (
		output string
		open   bool
	)

	cmd := &cobra.Command{
		Use:   "image <id>",
		Short: "Download a character's avatar",
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
			if rec.ImageURL == "" {
				return fmt.Errorf("%s has no image", rec.GetTitle())
			}

			ctx, cancel := signalContext()
			defer cancel()

			data, err := a.client.FetchImage(ctx, rec.ImageURL)
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = rec.ID + ".jpeg"
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("failed to write image: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", path, len(data))

			if open {
				return a.viewer.Open(path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default <id>.jpeg)")
	cmd.Flags().BoolVar(&open, "open", false, "open the saved image in the configured viewer")
	return cmd
}
