package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"heritage/internal/agent"
	"heritage/internal/config"
	"heritage/internal/credential"
	"heritage/internal/logger"
	"heritage/internal/tool"
	"heritage/internal/tool/builtin"

	"github.com/spf13/cobra"
)

// loadConfig resolves the config file and applies flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadWithDefaults()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("provider") {
		cfg.Provider = provider
		if !flags.Changed("model") {
			cfg.Model = ""
		}
	}
	if flags.Changed("model") {
		cfg.Model = model
	}
	if apiBaseURL != "" {
		cfg.BaseURL = apiBaseURL
	}
	if flags.Changed("temperature") {
		cfg.Temperature = temperature
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

// newLogger writes to stderr so stdout stays free for results and MCP frames.
func newLogger(cfg *config.Config) *logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" {
		level = logger.LevelWarn
	}
	if verbose {
		level = logger.LevelDebug
	}
	log := logger.NewLogger(os.Stderr, level)
	if noColor {
		log.SetColorMode(false)
	}
	return log
}

func newRegistry(cfg *config.Config) (*tool.Registry, error) {
	return tool.NewRegistry(
		builtin.NewRecordArchive(cfg.Tools.TextRecordLatency),
		builtin.NewTimelineBuilder(cfg.Tools.VisualizationLatency),
	)
}

// newAgent resolves the credential and wires the agent. A credential problem
// is reported before any work starts.
func newAgent(ctx context.Context, cfg *config.Config, log *logger.Logger) (*agent.BaseAgent, error) {
	client, err := credential.NewProvider(cfg, credential.OptionsFromConfig(cfg)).Client(ctx)
	if err != nil {
		var cfgErr *credential.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("configuration problem: %w", err)
		}
		return nil, err
	}
	log.Info("using %s model %s", client.Provider(), client.Model())

	registry, err := newRegistry(cfg)
	if err != nil {
		return nil, err
	}
	mode, err := tool.ParseExecutionMode(cfg.Tools.ExecutionMode)
	if err != nil {
		return nil, err
	}

	a := agent.NewBaseAgent(client, registry, &agent.Config{
		SystemPrompt:      cfg.SystemPrompt,
		Temperature:       cfg.Temperature,
		MaxTokens:         cfg.MaxTokens,
		ToolExecutionMode: mode,
	})
	a.SetLogger(log)
	return a, nil
}
