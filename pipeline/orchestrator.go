// Package pipeline sequences analysis, test case generation and report
// generation against a single provider.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/prompt"
	"github.com/hairizuanbinnoorazman/ui-autotest/provider"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
)

// RunResult accumulates the outcome of one pipeline run. Fields are only
// ever added as steps finish; a failed run keeps what completed before it.
type RunResult struct {
	Provider       provider.VendorID `json:"provider"`
	Model          string            `json:"model"`
	Timestamp      time.Time         `json:"timestamp"`
	State          State             `json:"state"`
	CompletedSteps []string          `json:"completedSteps"`
	Analysis       any               `json:"analysis,omitempty"`
	TestCases      *testcase.Set     `json:"testCases,omitempty"`
	Report         string            `json:"report,omitempty"`
	Error          string            `json:"error,omitempty"`
}

// Succeeded reports whether every step completed.
func (r *RunResult) Succeeded() bool {
	return r.State == StateDone
}

// Orchestrator drives one provider through the pipeline. The provider is
// fixed at construction.
type Orchestrator struct {
	provider provider.Provider
	logger   logger.Logger
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator bound to p.
func NewOrchestrator(p provider.Provider, log logger.Logger) *Orchestrator {
	return &Orchestrator{
		provider: p,
		logger:   log,
		now:      time.Now,
	}
}

// Run executes analysis, test case generation and report generation in
// order. It never returns an error: the first failing step moves the result
// to StateFailed with Error set, and later steps are not attempted.
func (o *Orchestrator) Run(ctx context.Context, cfg testcase.RunConfig, prompts prompt.Set) *RunResult {
	result := &RunResult{
		Provider:       o.provider.Vendor(),
		Model:          o.provider.Model(),
		Timestamp:      o.now().UTC(),
		State:          StateIdle,
		CompletedSteps: []string{},
	}

	ctx = logger.ContextWithFields(ctx, map[string]interface{}{
		"vendor":      string(result.Provider),
		"screen_name": cfg.ScreenName,
	})
	o.logger.Info(ctx, "starting pipeline", map[string]interface{}{"target_url": cfg.TargetURL})

	result.State = StateAnalyzing
	analysis, err := o.provider.Analyze(ctx, cfg, prompts.Get(prompt.StageAnalysis))
	if err != nil {
		o.fail(ctx, result, "analysis", err)
		return result
	}
	result.Analysis = analysis
	o.complete(ctx, result, StepAnalysis)
	if provider.DecodeFailed(analysis) {
		o.logger.Warn(ctx, "analysis reply was not structured, passing raw text on", map[string]interface{}{
			"raw_length": len(provider.RawText(analysis)),
		})
	}

	result.State = StateCaseGeneration
	cases, err := o.provider.GenerateTestCases(ctx, analysis, prompts.Get(prompt.StageTestCase))
	if err != nil {
		o.fail(ctx, result, "test case generation", err)
		return result
	}
	result.TestCases = cases
	o.complete(ctx, result, StepTestCases)
	if cases.Degraded {
		o.logger.Warn(ctx, "test case reply was not structured, report will use raw text", nil)
	}

	result.State = StateReporting
	report, err := o.provider.GenerateReport(ctx, cases, prompts.Get(prompt.StageReport))
	if err != nil {
		o.fail(ctx, result, "report generation", err)
		return result
	}
	result.Report = report
	o.complete(ctx, result, StepReport)

	result.State = StateDone
	o.logger.Info(ctx, "pipeline completed", map[string]interface{}{
		"test_case_count": len(cases.TestCases),
	})
	return result
}

// ReportExecution asks the same provider for a report over execution results.
func (o *Orchestrator) ReportExecution(ctx context.Context, execution *testrun.ExecutionResult, prompts prompt.Set) (string, error) {
	tpl := prompts.Get(prompt.StageExecution)
	if tpl == "" {
		tpl = prompts.Get(prompt.StageReport)
	}

	report, err := o.provider.GenerateReport(ctx, execution, tpl)
	if err != nil {
		o.logger.Error(ctx, "execution report failed", map[string]interface{}{"error": err.Error()})
		return "", fmt.Errorf("execution report failed: %w", err)
	}
	return report, nil
}

func (o *Orchestrator) complete(ctx context.Context, result *RunResult, step string) {
	result.CompletedSteps = append(result.CompletedSteps, step)
	o.logger.Debug(ctx, "pipeline step completed", map[string]interface{}{"step": step})
}

func (o *Orchestrator) fail(ctx context.Context, result *RunResult, stage string, err error) {
	o.logger.Error(ctx, "pipeline failed", map[string]interface{}{
		"stage": stage,
		"state": string(result.State),
		"error": err.Error(),
	})
	result.State = StateFailed
	result.Error = fmt.Sprintf("%s failed: %v", stage, err)
}
