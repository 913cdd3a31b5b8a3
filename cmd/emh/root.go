package main

import (
	"fmt"
	"os"

	"github.com/emso-eric/metadata-harmonizer/internal/ioconfig"
	pkgconfig "github.com/emso-eric/metadata-harmonizer/pkg/config"
	"github.com/emso-eric/metadata-harmonizer/pkg/logger"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	cfg     *pkgconfig.Config
)

func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "emh",
		Short: "emh harmonizes ocean-observatory metadata and datasets",
		Long: `emh merges partial metadata descriptors into one resolved document,
assembles tabular sensor data into a time-indexed dataset, checks the
result against the EMSO metadata specifications and generates ERDDAP
serving-layer configuration.

The tool provides three main commands:
  - dataset: merge descriptors, resolve vocabulary terms, assemble data
  - report:  evaluate compliance and write a report table
  - erddap:  generate a datasets.xml fragment and merge it into a store

Configuration precedence (highest to lowest):
  1. CLI flags
  2. Environment variables (EMH_*)
  3. Config file (emh.yaml)
  4. Built-in defaults

Environment Variables:
  All configuration can be set via EMH_* environment variables.
  Nested fields use underscores (vocabulary.timeout_sec →
  EMH_VOCABULARY_TIMEOUT_SEC).

  Examples:
    EMH_VOCABULARY_AUTHORITY_URL    vocabulary mirror base URL
    EMH_VOCABULARY_TIMEOUT_SEC      fetch timeout per attempt
    EMH_DATASET_TIME_COLUMN         timestamp column name
    EMH_LOG_LEVEL                   log level (debug/info/warn/error)
    EMH_JOBS_NUMBER                 vocabulary fetch workers

  See 'go doc github.com/emso-eric/metadata-harmonizer/pkg/config'
  for the complete list.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-generate config file on first run if it doesn't exist
			if cfgFile == "" {
				exists, err := ioconfig.ConfigFileExists()
				if err != nil {
					return fmt.Errorf("failed to check config file: %w", err)
				}
				if !exists {
					generatedPath, err := ioconfig.GenerateDefaultConfig()
					if err != nil {
						// Only warn, don't fail - can use defaults
						fmt.Printf("Warning: could not generate config file: %v\n", err)
					} else {
						fmt.Printf("Generated default config at: %s\n", generatedPath)
					}
				}
			}

			result, err := ioconfig.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			cfg = result.Config
			if home, err := os.UserHomeDir(); err == nil {
				cfg.HomeDir = home
			}

			if err := initLogger(); err != nil {
				return fmt.Errorf("failed to set up logging: %w", err)
			}

			switch result.Source {
			case "file":
				fmt.Printf("Using config from: %s\n", result.SourcePath)
			case "defaults+env":
				fmt.Println("Using built-in defaults with environment variable overrides")
			case "defaults":
				fmt.Println("Using built-in defaults (no config file)")
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (default: ./emh.yaml or ~/.config/emh/emh.yaml)")

	// Override version flag to use -V (consistent with other projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for emh")

	rootCmd.AddCommand(getDatasetCmd())
	rootCmd.AddCommand(getReportCmd())
	rootCmd.AddCommand(getErddapCmd())
	rootCmd.AddCommand(getConfigCmd())

	return rootCmd
}

func initLogger() error {
	lc := cfg.Log
	if lc.Destination == "file" {
		if cfg.HomeDir == "" {
			lc.Destination = "stderr"
			return logger.Init("", lc)
		}
		return logger.Init(pkgconfig.LogDir(cfg.HomeDir), lc)
	}
	return logger.Init("", lc)
}

// getConfig returns the loaded configuration (for use in subcommands)
func getConfig() *pkgconfig.Config {
	return cfg
}
