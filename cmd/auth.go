package cmd

import (
	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/output"
	"github.com/marcus/colsync/internal/sessiongate"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Check the shop's authorization with the backend",
	Long: `Check whether the app is installed and authorized for the shop.

When the shop is not authorized, the install URL is printed; pass --open to
launch it in the browser.`,
	GroupID: "system",
	RunE: func(cmd *cobra.Command, args []string) error {
		open, _ := cmd.Flags().GetBool("open")

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
		gate := sessiongate.New(client)
		// Navigation only on request; reporting status must stay side-effect
		// free by default.
		gate.Interactive = open

		res := gate.Check(cmd.Context(), shop)
		switch {
		case res.Err != nil:
			output.Warning("auth check failed: %v", res.Err)
			return res.Err
		case res.Status == sessiongate.StatusAuthorized:
			output.Success("%s is authorized.", shop)
		default:
			output.Warning("%s is not authorized.", shop)
			if res.Navigated {
				output.Info("Opened %s", res.InstallURL)
			} else {
				output.Info("Install the app at %s", res.InstallURL)
			}
		}
		return nil
	},
}

func init() {
	authCmd.Flags().Bool("open", false, "Open the install URL in the browser when unauthorized")
	rootCmd.AddCommand(authCmd)
}
