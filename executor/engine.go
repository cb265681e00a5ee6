package executor

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/storage"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
)

// ActualNotMatched is reported as the actual result when the expected text
// is absent from the page.
const ActualNotMatched = "expected result not matched"

// Config controls where screenshots are stored.
type Config struct {
	ScreenshotsDir string `mapstructure:"screenshots_dir"`
}

// Engine executes test cases one after another in a single page.
type Engine struct {
	driver  Driver
	storage storage.BlobStorage
	logger  logger.Logger
	cfg     Config
}

// NewEngine creates an Engine. A nil storage disables screenshots.
func NewEngine(driver Driver, store storage.BlobStorage, log logger.Logger, cfg Config) *Engine {
	if cfg.ScreenshotsDir == "" {
		cfg.ScreenshotsDir = "screenshots"
	}
	return &Engine{
		driver:  driver,
		storage: store,
		logger:  log,
		cfg:     cfg,
	}
}

// Execute runs cases under a fresh run id.
func (e *Engine) Execute(ctx context.Context, cfg testcase.RunConfig, cases []testcase.TestCase) (*testrun.ExecutionResult, error) {
	return e.ExecuteRun(ctx, uuid.New(), cfg, cases)
}

// ExecuteRun logs in to cfg.TargetURL and runs cases in order. A fault in
// one case is recorded against it and the batch continues. When the session
// cannot be opened or login fails, every case is recorded as failed and the
// returned error wraps ErrSession. The result is always non-nil.
func (e *Engine) ExecuteRun(ctx context.Context, runID uuid.UUID, cfg testcase.RunConfig, cases []testcase.TestCase) (*testrun.ExecutionResult, error) {
	log := e.logger.WithField("run_id", runID.String())
	result := testrun.NewExecutionResult()

	page, err := e.driver.Open(ctx)
	if err != nil {
		failAll(result, cases, err)
		log.Error(ctx, "failed to open browser session", map[string]interface{}{"error": err.Error()})
		return result, fmt.Errorf("%w: open: %v", ErrSession, err)
	}
	defer func() {
		if err := page.Close(); err != nil {
			log.Warn(ctx, "failed to close browser session", map[string]interface{}{"error": err.Error()})
		}
	}()

	if err := login(ctx, page, cfg); err != nil {
		failAll(result, cases, err)
		log.Error(ctx, "login failed", map[string]interface{}{
			"url":   cfg.TargetURL,
			"error": err.Error(),
		})
		return result, fmt.Errorf("%w: login: %v", ErrSession, err)
	}

	for _, tc := range cases {
		caseLog := log.WithField("test_case_id", tc.ID)
		if err := ctx.Err(); err != nil {
			result.Record(testrun.CaseResult{TestCaseID: tc.ID, Error: err.Error()})
			continue
		}

		start := time.Now()
		cr, err := runCase(ctx, page, tc)
		if err != nil {
			result.Record(testrun.CaseResult{TestCaseID: tc.ID, Error: err.Error()})
			caseLog.Warn(ctx, "test case faulted", map[string]interface{}{"error": err.Error()})
			continue
		}
		result.Record(cr)
		caseLog.Info(ctx, "test case finished", map[string]interface{}{
			"passed":      cr.Passed,
			"duration_ms": time.Since(start).Milliseconds(),
		})

		e.screenshot(ctx, caseLog, page, runID, tc, result)
	}

	log.Info(ctx, "execution finished", map[string]interface{}{
		"total":  result.Total,
		"passed": result.Passed,
		"failed": result.Failed,
	})
	return result, nil
}

func login(ctx context.Context, page Page, cfg testcase.RunConfig) (err error) {
	defer recoverFault(&err)
	sel := cfg.ResolvedLogin()

	if err := page.Navigate(ctx, cfg.TargetURL); err != nil {
		return fmt.Errorf("navigate to %s: %w", cfg.TargetURL, err)
	}
	if err := page.WaitReady(ctx); err != nil {
		return err
	}
	if err := page.Fill(ctx, sel.Username, cfg.Username); err != nil {
		return fmt.Errorf("fill username: %w", err)
	}
	if cfg.Password != "" {
		if err := page.Fill(ctx, sel.Password, cfg.Password); err != nil {
			return fmt.Errorf("fill password: %w", err)
		}
	}

	if sel.SubmitText != "" {
		err = page.ClickText(ctx, "button", sel.SubmitText)
	} else {
		err = page.Click(ctx, sel.Submit)
	}
	if err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	if err := page.WaitReady(ctx); err != nil {
		return err
	}

	if cfg.ScreenName != "" {
		if err := page.ClickText(ctx, "a", cfg.ScreenName); err != nil {
			return fmt.Errorf("open screen %s: %w", cfg.ScreenName, err)
		}
		if err := page.WaitReady(ctx); err != nil {
			return err
		}
	}
	return nil
}

func runCase(ctx context.Context, page Page, tc testcase.TestCase) (_ testrun.CaseResult, err error) {
	defer recoverFault(&err)
	for i, step := range tc.Steps {
		if err := applyStep(ctx, page, step); err != nil {
			return testrun.CaseResult{}, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
		if err := page.WaitReady(ctx); err != nil {
			return testrun.CaseResult{}, fmt.Errorf("step %d (%s): %w", i, step.Action, err)
		}
	}

	text, err := page.BodyText(ctx)
	if err != nil {
		return testrun.CaseResult{}, fmt.Errorf("read page text: %w", err)
	}

	cr := testrun.CaseResult{TestCaseID: tc.ID, Passed: containsText(text, tc.ExpectedResult)}
	if cr.Passed {
		cr.Actual = tc.ExpectedResult
	} else {
		cr.Actual = ActualNotMatched
	}
	return cr, nil
}

func applyStep(ctx context.Context, page Page, step testcase.Step) error {
	if err := step.Validate(); err != nil {
		return err
	}
	switch step.Action {
	case testcase.ActionClick:
		return page.Click(ctx, step.Selector)
	case testcase.ActionFill:
		return page.Fill(ctx, step.Selector, step.Value)
	default:
		return page.Navigate(ctx, step.URL)
	}
}

// screenshot stores a capture of the page. Failures are logged and do not
// change the case outcome.
func (e *Engine) screenshot(ctx context.Context, log logger.Logger, page Page, runID uuid.UUID, tc testcase.TestCase, result *testrun.ExecutionResult) {
	if e.storage == nil {
		return
	}
	data, err := capture(ctx, page)
	if err != nil {
		log.Warn(ctx, "failed to capture screenshot", map[string]interface{}{"error": err.Error()})
		return
	}

	p := path.Join(e.cfg.ScreenshotsDir, runID.String(), tc.ArtifactKey()+".png")
	if err := e.storage.Upload(ctx, p, bytes.NewReader(data)); err != nil {
		log.Warn(ctx, "failed to store screenshot", map[string]interface{}{
			"path":  p,
			"error": err.Error(),
		})
		return
	}
	result.AddScreenshot(tc.ID, p)
}

func capture(ctx context.Context, page Page) (_ []byte, err error) {
	defer recoverFault(&err)
	return page.Screenshot(ctx)
}

// recoverFault converts a panic from the page into an ErrPageFault error.
func recoverFault(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %v", ErrPageFault, r)
	}
}

func failAll(result *testrun.ExecutionResult, cases []testcase.TestCase, err error) {
	for _, tc := range cases {
		result.Record(testrun.CaseResult{TestCaseID: tc.ID, Error: err.Error()})
	}
}
