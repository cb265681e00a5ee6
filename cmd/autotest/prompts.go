package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-autotest/prompt"
)

func newPromptsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts",
		Short: "Export or import the prompt templates",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "export",
		Short: "Print the stored prompt templates as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			set, err := a.artifacts.LoadPrompts(cmd.Context())
			if err != nil {
				return err
			}
			data, err := prompt.ExportYAML(set)
			if err != nil {
				return err
			}
			fmt.Print(string(data))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Store prompt templates from a YAML bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			set, err := prompt.ImportYAML(data)
			if err != nil {
				return err
			}

			a, err := loadApp()
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.artifacts.SavePrompts(cmd.Context(), set); err != nil {
				return err
			}
			fmt.Printf("Imported %d prompt templates\n", len(set))
			return nil
		},
	})

	return cmd
}

func loadApp() (*app, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return newApp(cfg)
}

func init() {
	rootCmd.AddCommand(newPromptsCmd())
}
