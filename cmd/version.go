package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:     "version",
	Short:   "Show version",
	GroupID: "system",
	Run: func(cmd *cobra.Command, args []string) {
		short, _ := cmd.Flags().GetBool("short")
		if short {
			fmt.Println(version)
			return
		}
		fmt.Printf("colsync version %s\n", version)
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "Print only the version string")
	rootCmd.AddCommand(versionCmd)
}
