package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specrunner/specrunner/internal/agent"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "Inspect the loaded agent definitions",
}

var agentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all agent definitions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		for _, d := range catalog.List(true) {
			fmt.Printf("%-20s %-12s p%-3d %s\n", d.Name, d.Role, d.Priority, strings.Join(d.Capabilities, ","))
		}
		return nil
	},
}

var agentsShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show one agent definition, prompt included",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := loadCatalog()
		if err != nil {
			return err
		}
		d, ok := catalog.ByName(args[0])
		if !ok {
			return fmt.Errorf("unknown agent: %s", args[0])
		}
		fmt.Printf("name:           %s\n", d.Name)
		fmt.Printf("role:           %s\n", d.Role)
		fmt.Printf("specialization: %s\n", d.Specialization)
		fmt.Printf("capabilities:   %s\n", strings.Join(d.Capabilities, ", "))
		fmt.Printf("priority:       %d\n", d.Priority)
		fmt.Printf("source:         %s\n\n", d.Path)
		fmt.Println(d.Prompt)
		return nil
	},
}

// loadCatalog loads the agent catalog without requiring a configured LLM
// provider, so inspection works before credentials are set up.
func loadCatalog() (*agent.Catalog, error) {
	logger := newLogger()
	dir := viper.GetString("agents.dir")
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(workspaceRoot(), dir)
	}
	return agent.Load(dir, logger)
}

func init() {
	agentsCmd.AddCommand(agentsListCmd)
	agentsCmd.AddCommand(agentsShowCmd)
	rootCmd.AddCommand(agentsCmd)
}
