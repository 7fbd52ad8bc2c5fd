// Package cmd contains the Cobra commands for asksql.
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/AskSQL/internal/assistant"
	"github.com/JonMunkholm/AskSQL/internal/config"
	"github.com/JonMunkholm/AskSQL/internal/executor"
	"github.com/JonMunkholm/AskSQL/internal/llm"
	"github.com/JonMunkholm/AskSQL/internal/logging"
	"github.com/JonMunkholm/AskSQL/internal/schema"
)

var (
	configPath string
	cliFlags   config.CLIFlags
)

var rootCmd = &cobra.Command{
	Use:   "asksql",
	Short: "Ask questions about a database in plain English",
	Long: `asksql turns a natural-language question into SQL with a language model,
runs it against the configured database, repairs it when the database
rejects it, and summarizes the result.

Settings come from a YAML file (--config), the environment (a .env file
in the working directory is loaded first), and the flags below.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadEnvFiles(".env"); err != nil {
			return err
		}
		level := cliFlags.LogLevel
		if level == "" {
			level = os.Getenv("ASKSQL_LOG_LEVEL")
		}
		lvl, err := logging.ParseLevel(level)
		if err != nil {
			return err
		}
		logging.SetLevel(lvl)
		return nil
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "path to YAML config file")
	pf.StringVar(&cliFlags.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&cliFlags.Driver, "driver", "", "database driver: "+strings.Join(executor.SupportedDrivers, ", "))
	pf.StringVar(&cliFlags.Server, "server", "", "database server (file path for sqlite)")
	pf.StringVar(&cliFlags.Database, "database", "", "database name")
	pf.StringVar(&cliFlags.DSN, "dsn", "", "full data source name, overrides --server and --database")
	pf.StringVar(&cliFlags.Provider, "provider", "", "LLM provider: gemini, openai, anthropic, ollama")
	pf.StringVar(&cliFlags.Model, "model", "", "LLM model name")
	pf.IntVar(&cliFlags.MaxCorrections, "max-corrections", 0, "repair rounds after the first failed statement")
}

// app is everything a command needs to answer questions.
type app struct {
	cfg       *config.Config
	provider  llm.Provider
	exec      *executor.Executor
	catalog   *schema.Catalog
	assistant *assistant.Assistant
}

func loadApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath, cliFlags)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	lvl, _ := logging.ParseLevel(cfg.Log.Level)
	logging.SetLevel(lvl)

	dsn, err := cfg.Database.DataSourceName()
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("init LLM provider: %w", err)
	}
	provider = llm.WithLogging(provider)

	exec := executor.New(executor.Options{
		Driver:       cfg.Database.Driver,
		DSN:          dsn,
		QueryTimeout: cfg.Database.QueryTimeout,
	})

	catalog := schema.Northwind()
	if cfg.Database.Name != "" {
		catalog.Database = cfg.Database.Name
	}

	logging.Info("configured",
		"driver", cfg.Database.Driver,
		"provider", provider.Name(),
		"max_corrections", cfg.Assistant.MaxCorrections,
	)

	a := assistant.New(provider, exec, catalog, assistant.Options{
		MaxCorrections: cfg.Assistant.MaxCorrections,
		MaxTokens:      cfg.LLM.MaxTokens,
	})

	return &app{
		cfg:       cfg,
		provider:  provider,
		exec:      exec,
		catalog:   catalog,
		assistant: a,
	}, nil
}
