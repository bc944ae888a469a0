package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/colsync/internal/config"
	"github.com/marcus/colsync/internal/output"
)

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Manage colsync configuration",
	GroupID: "system",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Resolve(getBaseDir())
		if err != nil {
			output.Error("%v", err)
			return err
		}

		fmt.Printf("backend url: %s\n", cfg.BackendURL)
		if cfg.AppURL != "" {
			fmt.Printf("app url:     %s\n", cfg.AppURL)
		}
		if cfg.Shop != "" {
			fmt.Printf("shop:        %s\n", cfg.Shop)
		} else {
			fmt.Println("shop:        (not set)")
		}
		return nil
	},
}

var configSetShopCmd = &cobra.Command{
	Use:   "set-shop <shop-domain>",
	Short: "Set the default shop domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetShop(getBaseDir(), args[0]); err != nil {
			output.Error("save config: %v", err)
			return err
		}
		output.Success("Default shop set to %s", args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetShopCmd)
	rootCmd.AddCommand(configCmd)
}
