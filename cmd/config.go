package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/specrunner/specrunner/internal/errs"
	"github.com/specrunner/specrunner/internal/llm"
	"github.com/specrunner/specrunner/internal/models"
)

const (
	configName = ".specrunner"
	envPrefix  = "SPECRUNNER"
)

// InitConfig reads in the config file and environment variables.
func InitConfig() {
	// Load .env first if present; a missing .env is fine.
	_ = godotenv.Load()

	viper.SetEnvPrefix(envPrefix) // e.g. SPECRUNNER_VERBOSE
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfgFileFlag := viper.GetString("config")
	if cfgFileFlag != "" {
		viper.SetConfigFile(cfgFileFlag)
	} else {
		viper.SetConfigName(configName)
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	} else {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintln(os.Stderr, "Error reading config file:", viper.ConfigFileUsed(), "-", err)
		} else if cfgFileFlag != "" {
			fmt.Fprintln(os.Stderr, "Error: specified config file not found:", cfgFileFlag)
		}
	}

	viper.SetDefault("llm.provider", string(models.ProviderAnthropic))
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.maxTokens", 4096)
	viper.SetDefault("agents.dir", "agents")
	viper.SetDefault("workspace.root", ".")
}

// newLogger builds the process-wide slog logger; --verbose lowers the level
// to debug.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// LoadLLMConfig resolves provider, model and API key with the precedence
// explicit config > environment > defaults.
func LoadLLMConfig() (llm.Config, error) {
	provider, err := models.ParseProviderType(viper.GetString("llm.provider"))
	if err != nil {
		return llm.Config{}, &errs.ConfigError{Message: err.Error()}
	}

	apiKey := resolveAPIKey(provider)
	if apiKey == "" {
		return llm.Config{}, &errs.ConfigError{
			Message: fmt.Sprintf("no API key for provider %s; set %s or llm.apiKeys.%s in config", provider, providerEnvKey(provider), provider),
		}
	}

	return llm.Config{
		Provider: provider,
		Model:    viper.GetString("llm.model"),
		APIKey:   apiKey,
	}, nil
}

// resolveAPIKey checks the per-provider config key first, then the
// provider-specific environment variable.
func resolveAPIKey(provider models.ProviderType) string {
	if key := strings.TrimSpace(viper.GetString("llm.apiKeys." + string(provider))); key != "" {
		return key
	}
	return strings.TrimSpace(os.Getenv(providerEnvKey(provider)))
}

func providerEnvKey(provider models.ProviderType) string {
	switch provider {
	case models.ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	case models.ProviderOpenAI:
		return "OPENAI_API_KEY"
	default:
		return ""
	}
}

// llmOptions builds the sampling options shared by every generation call.
func llmOptions() llm.Options {
	return llm.Options{
		Temperature: float32(viper.GetFloat64("llm.temperature")),
		MaxTokens:   viper.GetInt("llm.maxTokens"),
	}
}

// workspaceRoot resolves the configured workspace root to an absolute path.
func workspaceRoot() string {
	root := viper.GetString("workspace.root")
	if root == "" || root == "." {
		wd, err := os.Getwd()
		cobra.CheckErr(err)
		return wd
	}
	return root
}
