package main

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded runs",
	}

	cmd.AddCommand(newRunsListCmd())
	cmd.AddCommand(newRunsGetCmd())
	return cmd
}

func openHistory() (*app, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Database.Enabled {
		return nil, fmt.Errorf("run history is disabled (set database.enabled)")
	}
	return newApp(cfg)
}

func newRunsListCmd() *cobra.Command {
	var screen string
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openHistory()
			if err != nil {
				return err
			}
			defer a.Close()

			runs, err := a.runs.List(cmd.Context(), screen, limit, offset)
			if err != nil {
				return err
			}
			if flagJSON {
				printJSON(runs)
				return nil
			}

			headers := []string{"ID", "PROVIDER", "SCREEN", "STATUS", "PASSED", "FAILED", "CREATED AT"}
			var rows [][]string
			for _, r := range runs {
				rows = append(rows, []string{
					r.ID.String(),
					r.Provider,
					r.ScreenName,
					string(r.Status),
					strconv.Itoa(r.Passed),
					strconv.Itoa(r.Failed),
					r.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			printTable(headers, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&screen, "screen", "", "only runs for this screen")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs")
	cmd.Flags().IntVar(&offset, "offset", 0, "number of runs to skip")
	return cmd
}

func newRunsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <run-id>",
		Short: "Show a run and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id: %w", err)
			}

			a, err := openHistory()
			if err != nil {
				return err
			}
			defer a.Close()

			run, err := a.runs.GetByID(cmd.Context(), id)
			if err != nil {
				return err
			}
			assets, err := a.assets.ListByTestRun(cmd.Context(), id)
			if err != nil {
				return err
			}

			if flagJSON {
				printJSON(map[string]interface{}{"run": run, "assets": assets})
				return nil
			}

			fmt.Printf("Run:      %s\n", run.ID)
			fmt.Printf("Provider: %s (%s)\n", run.Provider, run.Model)
			fmt.Printf("Target:   %s\n", run.TargetURL)
			fmt.Printf("Status:   %s (%d passed, %d failed of %d)\n", run.Status, run.Passed, run.Failed, run.Total)
			if run.Notes != "" {
				fmt.Printf("Notes:    %s\n", run.Notes)
			}

			headers := []string{"TYPE", "TEST CASE", "PATH"}
			var rows [][]string
			for _, asset := range assets {
				rows = append(rows, []string{string(asset.AssetType), asset.TestCaseID, asset.AssetPath})
			}
			printTable(headers, rows)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(newRunsCmd())
}
