package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mmcdole/rickdex/internal/tui"
)

// rootOptions holds flags shared by every command
type rootOptions struct {
	configFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "rickdex",
		Short: "Browse Rick and Morty characters from your terminal",
		Long: "Page through the Rick and Morty character listing, cache it locally, " +
			"and rename or prune entries. Runs the interactive browser by default.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Piped output gets the plain listing instead of the TUI
			if !term.IsTerminal(int(os.Stdout.Fd())) {
				return runList(cmd, opts)
			}
			return runTUI(opts)
		},
	}
	cmd.SetVersionTemplate("rickdex {{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "config file (default ~/.config/rickdex/config.yaml)")

	cmd.AddCommand(
		newSyncCmd(opts),
		newListCmd(opts),
		newShowCmd(opts),
		newSearchCmd(opts),
		newRenameCmd(opts),
		newDeleteCmd(opts),
		newResetCmd(opts),
		newImageCmd(opts),
	)
	return cmd
}

func runTUI(opts *rootOptions) error {
	snapshots := tui.NewSnapshotChannel()
	a, err := newApp(opts.configFile, tui.NewChannelObserver(snapshots))
	if err != nil {
		return err
	}
	defer a.Close()

	model := tui.NewModel(a.ctrl, a.enricher, a.viewer, snapshots)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// signalContext is cancelled on interrupt so long fetches stop cleanly
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}
