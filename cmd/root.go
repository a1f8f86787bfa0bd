package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// cfgFile is the path to the configuration file.
	cfgFile string
	// verbose enables debug logging.
	verbose bool
	// version is the application version.
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "specrunner",
	Short: "specrunner drives spec-first feature development with LLM agents",
	Long: `specrunner is an interactive workflow tool for specification-driven
development. It routes /spec.* commands (constitution, specify, clarify,
plan, tasks, implement, analyze, checklist) to capability-matched LLM
agents and tracks each feature's progress in a per-feature state file.`,
	Run: func(cmd *cobra.Command, args []string) {
		// with no subcommand, drop into the interactive session
		runSession(cmd, args)
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(InitConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is ./.specrunner.yaml or $HOME/.specrunner.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}
