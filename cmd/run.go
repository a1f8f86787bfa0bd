package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/specrunner/specrunner/internal/models"
	"github.com/specrunner/specrunner/internal/workflow"
	"github.com/specrunner/specrunner/internal/workspace"
)

var runAgents []string

// runCmd executes a single workflow command non-interactively, for
// scripting and CI.
var runCmd = &cobra.Command{
	Use:   "run <command> [input...]",
	Short: "Run one workflow command and exit",
	Long: `Run executes a single workflow command (constitution, specify, clarify,
plan, tasks, implement, analyze, checklist) against the current feature and
prints the generated artifact to stdout.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ct, err := models.ParseCommandType(args[0])
		if err != nil {
			return err
		}
		userInput := strings.Join(args[1:], " ")

		a, err := newApp()
		if err != nil {
			return err
		}

		feature, ok := a.detector.Detect()
		if !ok {
			if ct == models.CommandSpecify && userInput != "" {
				feature, err = a.detector.GetOrCreate(a.detector.NextID(), workspace.Slugify(userInput))
				if err != nil {
					return err
				}
			} else if ct == models.CommandConstitution {
				feature, err = a.detector.GetOrCreate("000", "project")
				if err != nil {
					return err
				}
			} else {
				return fmt.Errorf("no feature detected; check out a NNN-name branch first")
			}
		}

		resp, err := a.dispatcher.Dispatch(cmd.Context(), &workflow.Request{
			Command:   ct,
			Feature:   feature,
			UserInput: userInput,
			Agents:    runAgents,
			SessionID: uuid.NewString(),
		})
		if err != nil {
			return err
		}

		fmt.Println(resp.Content)
		fmt.Fprintf(os.Stderr, "wrote %s (agent: %s)\n", resp.ArtifactPath, resp.Agent)
		return nil
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&runAgents, "agents", nil, "comma-separated agent names to use instead of automatic selection")
	rootCmd.AddCommand(runCmd)
}
