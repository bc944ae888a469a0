package cmd

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/backend"
	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/confirm"
	"github.com/marcus/colsync/internal/output"
	"github.com/marcus/colsync/internal/stream"
)

// Styles for the progress lines
var (
	progressArrow = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Render("→")
	timeStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

const triggerTimeout = 30 * time.Second

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Trigger a collection sync and follow its progress",
	Long: `Trigger a server-side collection sync for the shop and follow the
progress stream until completion.

The sync runs on the server; interrupting this command does not stop it.

Examples:
  colsync sync --shop example.myshopify.com
  colsync sync --yes       # skip the confirmation prompt
  colsync sync --no-follow # trigger only, do not wait`,
	GroupID: "actions",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		noFollow, _ := cmd.Flags().GetBool("no-follow")

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

		if !yes {
			ok, err := confirm.Ask("Are you sure? This will create collections in your Shopify store.")
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("Cancelled.")
				return nil
			}
		}

		client := newClient(cfg)
		streams := stream.NewSubscriber(cfg.BackendURL)

		// Open the stream before the trigger so no early samples are missed.
		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		sub := streams.Open(ctx, shop)
		defer sub.Close()

		trigCtx, trigCancel := context.WithTimeout(ctx, triggerTimeout)
		defer trigCancel()
		if err := client.TriggerSync(trigCtx, shop); err != nil {
			output.Error("start sync: %v", err)
			return err
		}

		if noFollow {
			output.Success("Sync started. Progress: colsync sync --shop %s (or the dashboard)", shop)
			return nil
		}

		output.Info("Sync started. Following progress (Ctrl+C detaches, the sync keeps running).")
		return followSync(ctx, client, sub, shop)
	},
}

// followSync prints progress lines until the stream ends, then refreshes the
// relation data and summarizes.
func followSync(ctx context.Context, client *backend.Client, sub *stream.Subscription, shop string) error {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			fmt.Println() // clean line after ^C
			output.Info("Detached. The sync continues on the server.")
			return nil

		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if ev.Err != nil {
				output.Warning("Sync connection lost. Please check if sync completed.")
				// Best effort: the job may have finished anyway.
				refreshSummary(ctx, client, shop)
				return ev.Err
			}

			printProgress(ev.Progress)

			if ev.Terminal {
				output.Success("Sync completed successfully.")
				refreshSummary(ctx, client, shop)
				return nil
			}
		}
	}
}

func printProgress(p float64) {
	ts := timeStyle.Render(time.Now().Format("15:04:05"))
	fmt.Printf("%s %s syncing %3d%%\n", ts, progressArrow, int(math.Round(p)))
}

// refreshSummary fetches the admin view and reports the relation count.
// Failures are reported but never override the sync outcome.
func refreshSummary(ctx context.Context, client *backend.Client, shop string) {
	fetchCtx, cancel := context.WithTimeout(ctx, triggerTimeout)
	defer cancel()

	view, err := client.FetchRelations(fetchCtx, shop)
	if err != nil {
		output.Warning("refresh relations: %v", err)
		return
	}
	fmt.Printf("%d parent collection(s) with children.\n", len(view.Relations))
}

func init() {
	syncCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	syncCmd.Flags().Bool("no-follow", false, "Trigger the sync without following progress")
	rootCmd.AddCommand(syncCmd)
}
