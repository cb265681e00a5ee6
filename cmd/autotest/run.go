package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hairizuanbinnoorazman/ui-autotest/artifact"
	"github.com/hairizuanbinnoorazman/ui-autotest/executor"
	"github.com/hairizuanbinnoorazman/ui-autotest/pipeline"
	"github.com/hairizuanbinnoorazman/ui-autotest/provider"
	"github.com/hairizuanbinnoorazman/ui-autotest/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
)

// runSummary is printed at the end of a run.
type runSummary struct {
	RunID     string                   `json:"runId"`
	Pipeline  *pipeline.RunResult      `json:"pipeline"`
	Script    *artifact.ScriptArtifact `json:"script,omitempty"`
	Execution *testrun.ExecutionResult `json:"execution,omitempty"`
	Report    string                   `json:"reportPath,omitempty"`
}

func newRunCmd() *cobra.Command {
	var (
		runCfg   testcase.RunConfig
		vendor   string
		model    string
		location string
		execute  bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Analyze a screen, generate test cases and a script, optionally execute them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if vendor != "" {
				cfg.Provider = provider.Config{
					VendorID:  provider.VendorID(strings.ToLower(vendor)),
					MaxTokens: cfg.Provider.MaxTokens,
					Timeout:   cfg.Provider.Timeout,
				}
				applyVendorEnv(&cfg.Provider)
			}
			if model != "" {
				cfg.Provider.ModelName = model
			}
			if runCfg.Password == "" {
				runCfg.Password = os.Getenv(scriptgen.PasswordEnvVar)
			}
			if location == "" {
				location = runCfg.ScreenName
			}
			if location == "" {
				location = "default"
			}

			a, err := newApp(cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := a.run(cmd.Context(), runCfg, location, execute)
			if summary != nil {
				printRunSummary(summary)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&runCfg.TargetURL, "url", "", "URL of the login page")
	cmd.Flags().StringVar(&runCfg.Username, "username", "", "login user name")
	cmd.Flags().StringVar(&runCfg.Password, "password", "", "login password (env: "+scriptgen.PasswordEnvVar+")")
	cmd.Flags().StringVar(&runCfg.ScreenName, "screen", "", "name of the screen link to open after login")
	cmd.Flags().StringVar(&runCfg.TestData, "test-data", "", "free-form test data passed to the prompts")
	cmd.Flags().StringVar(&runCfg.Login.SubmitText, "submit-text", "", "find the login button by its visible text")
	cmd.Flags().StringVar(&vendor, "provider", "", "vendor id overriding provider.vendor")
	cmd.Flags().StringVar(&model, "model", "", "model name overriding provider.model")
	cmd.Flags().StringVar(&location, "location", "", "script location (defaults to the screen name)")
	cmd.Flags().BoolVar(&execute, "execute", false, "execute the generated test cases in a browser")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

func (a *app) run(ctx context.Context, runCfg testcase.RunConfig, location string, execute bool) (*runSummary, error) {
	selector := provider.NewSelector()
	if err := selector.Select(a.cfg.Provider, provider.WithLogger(a.logger)); err != nil {
		return nil, err
	}
	p, err := selector.Current()
	if err != nil {
		return nil, err
	}

	prompts, err := a.artifacts.LoadPrompts(ctx)
	if err != nil {
		return nil, err
	}

	run, err := a.startRun(ctx, p, runCfg)
	if err != nil {
		return nil, err
	}
	summary := &runSummary{RunID: run.ID.String()}
	log := a.logger.WithField("run_id", summary.RunID)

	orchestrator := pipeline.NewOrchestrator(p, log)
	result := orchestrator.Run(ctx, runCfg, prompts)
	summary.Pipeline = result
	if !result.Succeeded() {
		a.finishRun(ctx, run, nil, result.Error)
		return summary, fmt.Errorf("pipeline %s", result.Error)
	}

	bundle := artifact.Bundle{Location: location, Report: result.Report, RunAt: result.Timestamp}
	var cases []testcase.TestCase
	if result.TestCases != nil && !result.TestCases.Degraded {
		cases = result.TestCases.TestCases
	}

	if len(cases) > 0 {
		script, err := a.artifacts.GenerateScript(ctx, location, runCfg, cases)
		if err != nil {
			a.finishRun(ctx, run, nil, err.Error())
			return summary, err
		}
		summary.Script = script
	} else {
		log.Warn(ctx, "no usable test cases generated", map[string]interface{}{
			"degraded": result.TestCases != nil && result.TestCases.Degraded,
		})
	}

	var execution *testrun.ExecutionResult
	if execute && len(cases) > 0 {
		engine := executor.NewEngine(executor.NewRodDriver(a.cfg.Browser), a.storage, log, executor.Config{
			ScreenshotsDir: a.cfg.Artifacts.ScreenshotsDir,
		})
		var execErr error
		execution, execErr = engine.ExecuteRun(ctx, run.ID, runCfg, cases)
		if execErr != nil {
			log.Error(ctx, "execution session failed", map[string]interface{}{"error": execErr.Error()})
		}
		summary.Execution = execution
		bundle.Screenshots = execution.Screenshots

		report, err := orchestrator.ReportExecution(ctx, execution, prompts)
		if err != nil {
			log.Warn(ctx, "execution report failed", map[string]interface{}{"error": err.Error()})
		} else {
			bundle.Report = report
		}
	}

	saved, err := a.artifacts.SaveAll(ctx, bundle)
	if err != nil {
		a.finishRun(ctx, run, nil, err.Error())
		return summary, err
	}
	summary.Report = saved.ReportPath

	a.recordArtifacts(ctx, run, summary.Script, saved)
	a.finishRun(ctx, run, execution, "")
	return summary, nil
}

// startRun creates the history entry when history is enabled. Without a
// database the returned run only carries a fresh id.
func (a *app) startRun(ctx context.Context, p provider.Provider, runCfg testcase.RunConfig) (*testrun.TestRun, error) {
	run := &testrun.TestRun{
		Provider:   string(p.Vendor()),
		Model:      p.Model(),
		TargetURL:  runCfg.TargetURL,
		ScreenName: runCfg.ScreenName,
	}
	if !a.historyEnabled() {
		run.ID = uuid.New()
		return run, nil
	}
	if err := a.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to record run: %w", err)
	}
	if err := a.runs.Start(ctx, run.ID); err != nil {
		return nil, fmt.Errorf("failed to start run: %w", err)
	}
	return run, nil
}

func (a *app) finishRun(ctx context.Context, run *testrun.TestRun, execution *testrun.ExecutionResult, notes string) {
	if !a.historyEnabled() {
		return
	}
	var err error
	if execution == nil && notes == "" {
		err = a.runs.Update(ctx, run.ID, testrun.SetStatus(testrun.StatusGenerated), testrun.SetNotes("not executed"))
	} else {
		err = a.runs.Complete(ctx, run.ID, execution, notes)
	}
	if err != nil {
		a.logger.Warn(ctx, "failed to complete run", map[string]interface{}{
			"run_id": run.ID.String(),
			"error":  err.Error(),
		})
	}
}

func (a *app) recordArtifacts(ctx context.Context, run *testrun.TestRun, script *artifact.ScriptArtifact, saved *artifact.BundleResult) {
	if !a.historyEnabled() {
		return
	}

	var setters []testrun.UpdateSetter
	assets := make([]*testrun.TestRunAsset, 0, len(saved.Screenshots)+2)
	if script != nil {
		setters = append(setters, testrun.SetScriptPath(script.StoragePath))
		assets = append(assets, &testrun.TestRunAsset{TestRunID: run.ID, AssetType: testrun.AssetTypeScript, AssetPath: script.StoragePath})
	}
	if saved.ReportPath != "" {
		setters = append(setters, testrun.SetReportPath(saved.ReportPath))
		assets = append(assets, &testrun.TestRunAsset{TestRunID: run.ID, AssetType: testrun.AssetTypeReport, AssetPath: saved.ReportPath})
	}
	for _, shot := range saved.Screenshots {
		assets = append(assets, &testrun.TestRunAsset{
			TestRunID:  run.ID,
			AssetType:  testrun.AssetTypeScreenshot,
			AssetPath:  shot.Path,
			TestCaseID: shot.TestCaseID,
		})
	}

	if len(setters) > 0 {
		if err := a.runs.Update(ctx, run.ID, setters...); err != nil {
			a.logger.Warn(ctx, "failed to update run paths", map[string]interface{}{"run_id": run.ID.String(), "error": err.Error()})
		}
	}
	for _, asset := range assets {
		if err := a.assets.Create(ctx, asset); err != nil {
			a.logger.Warn(ctx, "failed to record run asset", map[string]interface{}{
				"run_id": run.ID.String(),
				"path":   asset.AssetPath,
				"error":  err.Error(),
			})
		}
	}
}

func printRunSummary(s *runSummary) {
	if flagJSON {
		printJSON(s)
		return
	}

	fmt.Printf("Run %s: %s (%s)\n", s.RunID, s.Pipeline.State, strings.Join(s.Pipeline.CompletedSteps, ", "))
	if s.Pipeline.Error != "" {
		fmt.Printf("Error: %s\n", s.Pipeline.Error)
	}
	if s.Pipeline.TestCases != nil {
		fmt.Printf("Test cases: %d\n", len(s.Pipeline.TestCases.TestCases))
	}
	if s.Script != nil {
		fmt.Printf("Script: %s (%d tests, merged=%t)\n", s.Script.StoragePath, len(s.Script.CaseIDs), s.Script.Merged)
	}
	if s.Execution != nil {
		fmt.Printf("Executed: %d passed, %d failed of %d\n", s.Execution.Passed, s.Execution.Failed, s.Execution.Total)
	}
	if s.Report != "" {
		fmt.Printf("Report: %s\n", s.Report)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
}
