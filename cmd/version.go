package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the specrunner version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("specrunner", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
