package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/output"
	"github.com/marcus/colsync/internal/sessiongate"
	"github.com/marcus/colsync/internal/stream"
	"github.com/marcus/colsync/pkg/dashboard"
)

var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"dash"},
	Short:   "Live TUI for collection relations and sync control",
	Long: `Launch the interactive dashboard showing parent/child collection
relations for the shop, with live-streamed sync progress.

Key bindings:
  s      Sync collections (asks for confirmation)
  r      Reset all relationships (asks for confirmation)
  f      Refresh the relation list
  ?      Toggle help
  q      Quit`,
	GroupID: "actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}
		shop, err := resolveShop(cmd, cfg)
		if err != nil {
			output.Error("%v", err)
			return err
		}

		client := newClient(cfg)

		// A failed check is not a denial: proceed and let the backend calls
		// surface any real authorization problem.
		gate := sessiongate.New(client)
		res := gate.Check(cmd.Context(), shop)
		switch {
		case res.Err != nil:
			output.Warning("auth check failed: %v", res.Err)
		case res.Status == sessiongate.StatusRedirected:
			if res.Navigated {
				output.Info("Opened %s to install the app. Re-run once installed.", res.InstallURL)
			} else {
				output.Info("Shop is not authorized. Install the app at %s", res.InstallURL)
			}
			return nil
		}

		model := dashboard.New(client, stream.NewSubscriber(cfg.BackendURL), shop, cfg.AppURL)

		p := tea.NewProgram(model, tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("error running dashboard: %w", err)
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(dashboardCmd)
}
