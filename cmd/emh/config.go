package main

import (
	"fmt"

	"github.com/emso-eric/metadata-harmonizer/internal/ioconfig"
	"github.com/emso-eric/metadata-harmonizer/pkg/templates"
	"github.com/spf13/cobra"
)

func getConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and generate configuration files",
	}
	cmd.AddCommand(getConfigGenerateCmd())
	cmd.AddCommand(getConfigRulesCmd())
	return cmd
}

func getConfigGenerateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "generate",
		Short: "Write the default config file",
		Long: `Write the default configuration to ~/.config/emh/emh.yaml.
Fails if the file already exists, so local edits are never lost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := ioconfig.GenerateDefaultConfig()
			if err != nil {
				return err
			}
			fmt.Printf("Config file generated at: %s\n", path)
			return nil
		},
	}
}

func getConfigRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Print the embedded compliance rule set",
		Long: `Print the embedded EMSO compliance rule set as YAML. Redirect
it to a file to use as a starting point for a custom rule set:

  emh config rules > myrules.yaml
  emh report --rules myrules.yaml metadata.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(templates.RulesYAML)
			return nil
		},
	}
}
