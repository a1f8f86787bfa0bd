package cmd

import (
	"log/slog"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/specrunner/specrunner/internal/agent"
	"github.com/specrunner/specrunner/internal/executor"
	"github.com/specrunner/specrunner/internal/git"
	"github.com/specrunner/specrunner/internal/llm"
	"github.com/specrunner/specrunner/internal/workflow"
	"github.com/specrunner/specrunner/internal/workspace"
)

// app wires the components together for one process.
type app struct {
	fs         afero.Fs
	logger     *slog.Logger
	root       string
	catalog    *agent.Catalog
	provider   llm.Provider
	exec       *executor.Executor
	dispatcher *workflow.Dispatcher
	detector   *workspace.Detector
}

// newApp assembles the application from the loaded configuration. A missing
// or invalid provider configuration is fatal here, before any prompt runs.
func newApp() (*app, error) {
	logger := newLogger()
	slog.SetDefault(logger)

	root := workspaceRoot()
	fs := afero.NewOsFs()

	agentsDir := viper.GetString("agents.dir")
	if !filepath.IsAbs(agentsDir) {
		agentsDir = filepath.Join(root, agentsDir)
	}
	catalog, err := agent.Load(agentsDir, logger)
	if err != nil {
		return nil, err
	}

	llmCfg, err := LoadLLMConfig()
	if err != nil {
		return nil, err
	}
	provider, err := llm.NewProvider(llmCfg)
	if err != nil {
		return nil, err
	}

	exec := executor.New(provider, catalog, executor.DefaultRetryPolicy, logger)
	dispatcher := workflow.New(fs, catalog, exec, provider, root, llmOptions(), logger)
	detector := workspace.NewDetector(fs, git.NewClient(root), root)

	return &app{
		fs:         fs,
		logger:     logger,
		root:       root,
		catalog:    catalog,
		provider:   provider,
		exec:       exec,
		dispatcher: dispatcher,
		detector:   detector,
	}, nil
}
