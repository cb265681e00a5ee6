package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-autotest/merge"
)

func newMergeCmd() *cobra.Command {
	var (
		policy      string
		location    string
		printScript bool
	)

	cmd := &cobra.Command{
		Use:   "merge <incoming.spec.js> [existing.spec.js]",
		Short: "Merge a script into an existing one",
		Long: `With --location, merges the incoming script into the script stored at that
location. Otherwise merges it into the given existing file and prints the result.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			incoming, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			if location != "" {
				cfg, err := LoadConfig(configFile)
				if err != nil {
					return fmt.Errorf("failed to load config: %w", err)
				}
				if policy != "" {
					cfg.Artifacts.MergePolicy = policy
				}
				a, err := newApp(cfg)
				if err != nil {
					return err
				}
				defer a.Close()

				art, err := a.artifacts.SaveScript(cmd.Context(), location, string(incoming))
				if err != nil {
					return err
				}
				if printScript {
					text, err := a.artifacts.LoadScript(cmd.Context(), art.StoragePath)
					if err != nil {
						return err
					}
					fmt.Print(text)
					return nil
				}
				if flagJSON {
					printJSON(art)
					return nil
				}
				fmt.Printf("Saved %s (%d tests: %s)\n", art.StoragePath, len(art.CaseIDs), strings.Join(art.CaseIDs, ", "))
				return nil
			}

			if len(args) < 2 {
				return fmt.Errorf("an existing script or --location is required")
			}
			existing, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[1], err)
			}
			p, err := merge.ParsePolicy(policy)
			if err != nil {
				return err
			}
			res, err := merge.Merge(string(existing), string(incoming), p)
			if err != nil {
				return err
			}
			fmt.Print(res.Text)
			return nil
		},
	}

	cmd.Flags().StringVar(&policy, "policy", "", "collision policy: keep-existing or prefer-incoming")
	cmd.Flags().StringVar(&location, "location", "", "merge into the script stored at this location")
	cmd.Flags().BoolVar(&printScript, "print", false, "with --location, print the stored script after saving")
	return cmd
}

func init() {
	rootCmd.AddCommand(newMergeCmd())
}
