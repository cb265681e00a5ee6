package executor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
	"github.com/hairizuanbinnoorazman/ui-autotest/testutil"
)

type fakePage struct {
	body            string
	failSelectors   map[string]bool
	failText        map[string]bool
	screenshotErr   error
	panicSelectors  map[string]bool
	panicScreenshot bool

	calls  []string
	closed int
}

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.calls = append(p.calls, "navigate "+url)
	return nil
}

func (p *fakePage) Fill(ctx context.Context, selector, value string) error {
	p.calls = append(p.calls, fmt.Sprintf("fill %s=%s", selector, value))
	if p.failSelectors[selector] {
		return errors.New("element not found")
	}
	return nil
}

func (p *fakePage) Click(ctx context.Context, selector string) error {
	p.calls = append(p.calls, "click "+selector)
	if p.panicSelectors[selector] {
		panic("cdp: nil element")
	}
	if p.failSelectors[selector] {
		return errors.New("element not found")
	}
	return nil
}

func (p *fakePage) ClickText(ctx context.Context, tag, text string) error {
	p.calls = append(p.calls, fmt.Sprintf("clicktext %s:%s", tag, text))
	if p.failText[text] {
		return errors.New("element not found")
	}
	return nil
}

func (p *fakePage) WaitReady(ctx context.Context) error {
	p.calls = append(p.calls, "wait")
	return nil
}

func (p *fakePage) BodyText(ctx context.Context) (string, error) {
	return p.body, nil
}

func (p *fakePage) Screenshot(ctx context.Context) ([]byte, error) {
	if p.panicScreenshot {
		panic("screenshot target detached")
	}
	if p.screenshotErr != nil {
		return nil, p.screenshotErr
	}
	return []byte("png"), nil
}

func (p *fakePage) Close() error {
	p.closed++
	return nil
}

type fakeDriver struct {
	page    *fakePage
	openErr error
}

func (d *fakeDriver) Open(ctx context.Context) (Page, error) {
	if d.openErr != nil {
		return nil, d.openErr
	}
	return d.page, nil
}

var runConfig = testcase.RunConfig{
	TargetURL: "https://app.example.com/login",
	Username:  "admin",
	Password:  "secret",
}

func cases(n int, faulting int) []testcase.TestCase {
	var out []testcase.TestCase
	for i := 0; i < n; i++ {
		selector := fmt.Sprintf("#ok-%d", i)
		if i == faulting {
			selector = "#missing"
		}
		out = append(out, testcase.TestCase{
			ID:             fmt.Sprintf("TC%d", i),
			Name:           "case",
			Steps:          []testcase.Step{{Action: testcase.ActionClick, Selector: selector}},
			ExpectedResult: "Welcome",
		})
	}
	return out
}

func TestEngine_Execute_CaseFaultContinues(t *testing.T) {
	page := &fakePage{body: "Welcome back", failSelectors: map[string]bool{"#missing": true}}
	store := testutil.SetupTestStorage(t)
	engine := NewEngine(&fakeDriver{page: page}, store, logger.NewTestLogger(), Config{})
	runID := uuid.New()

	result, err := engine.ExecuteRun(context.Background(), runID, runConfig, cases(4, 2))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 3, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Len(t, result.Details, 4)
	assert.True(t, result.Consistent())
	assert.Equal(t, 1, page.closed)

	faulted := result.Details[2]
	assert.Equal(t, "TC2", faulted.TestCaseID)
	assert.False(t, faulted.Passed)
	assert.Contains(t, faulted.Error, "step 0 (click)")
	assert.Equal(t, "Welcome", result.Details[0].Actual)

	require.Len(t, result.Screenshots, 3)
	first := result.Screenshots[0]
	assert.Equal(t, "TC0", first.TestCaseID)
	assert.Equal(t, "screenshots/"+runID.String()+"/TC0.png", first.Path)
	assert.Equal(t, "png", testutil.ReadFile(t, store, first.Path))
}

func TestEngine_Execute_ExpectationMismatch(t *testing.T) {
	page := &fakePage{body: "Access  denied\n"}
	engine := NewEngine(&fakeDriver{page: page}, nil, logger.NewTestLogger(), Config{})

	tcs := []testcase.TestCase{
		{ID: "A", ExpectedResult: "Welcome"},
		{ID: "B", ExpectedResult: "Access denied"},
		{ID: "C"},
	}
	result, err := engine.Execute(context.Background(), runConfig, tcs)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, ActualNotMatched, result.Details[0].Actual)
	assert.Empty(t, result.Details[0].Error)
	assert.True(t, result.Details[1].Passed)
	assert.True(t, result.Details[2].Passed)
	assert.Empty(t, result.Screenshots)
}

func TestEngine_Execute_SessionFaults(t *testing.T) {
	tests := []struct {
		name      string
		driver    *fakeDriver
		cfg       testcase.RunConfig
		wantClose int
	}{
		{
			name:   "driver open fails",
			driver: &fakeDriver{openErr: errors.New("chrome not found")},
			cfg:    runConfig,
		},
		{
			name:      "login control missing",
			driver:    &fakeDriver{page: &fakePage{failSelectors: map[string]bool{`button[type="submit"]`: true}}},
			cfg:       runConfig,
			wantClose: 1,
		},
		{
			name:   "screen link missing",
			driver: &fakeDriver{page: &fakePage{failText: map[string]bool{"Orders": true}}},
			cfg: testcase.RunConfig{
				TargetURL:  runConfig.TargetURL,
				Username:   "admin",
				ScreenName: "Orders",
			},
			wantClose: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(tt.driver, nil, logger.NewTestLogger(), Config{})

			result, err := engine.Execute(context.Background(), tt.cfg, cases(3, -1))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSession))

			require.NotNil(t, result)
			assert.Equal(t, 3, result.Total)
			assert.Equal(t, 3, result.Failed)
			assert.True(t, result.Consistent())
			for _, d := range result.Details {
				assert.NotEmpty(t, d.Error)
			}
			if tt.driver.page != nil {
				assert.Equal(t, tt.wantClose, tt.driver.page.closed)
			}
		})
	}
}

func TestEngine_Execute_LoginSequence(t *testing.T) {
	page := &fakePage{body: "ok"}
	engine := NewEngine(&fakeDriver{page: page}, nil, logger.NewTestLogger(), Config{})

	cfg := testcase.RunConfig{
		TargetURL:  "https://app.example.com",
		Username:   "admin",
		ScreenName: "Orders",
		Login:      testcase.LoginSelectors{SubmitText: "Sign in"},
	}
	tcs := []testcase.TestCase{{
		ID: "A",
		Steps: []testcase.Step{
			{Action: testcase.ActionFill, Selector: "#q", Value: "x"},
			{Action: testcase.ActionNavigate, URL: "https://app.example.com/next"},
		},
	}}

	_, err := engine.Execute(context.Background(), cfg, tcs)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"navigate https://app.example.com",
		"wait",
		`fill input[type="text"]=admin`,
		"clicktext button:Sign in",
		"wait",
		"clicktext a:Orders",
		"wait",
		"fill #q=x",
		"wait",
		"navigate https://app.example.com/next",
		"wait",
	}, page.calls)
}

func TestEngine_Execute_ScreenshotFailureKeepsOutcome(t *testing.T) {
	page := &fakePage{body: "Welcome", screenshotErr: errors.New("capture failed")}
	log := logger.NewTestLogger()
	engine := NewEngine(&fakeDriver{page: page}, testutil.SetupTestStorage(t), log, Config{})

	result, err := engine.Execute(context.Background(), runConfig, cases(2, -1))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Passed)
	assert.Empty(t, result.Screenshots)
	assert.Len(t, log.EntriesWithMessage("failed to capture screenshot"), 2)
}

func TestEngine_Execute_CancelledContext(t *testing.T) {
	page := &fakePage{body: "Welcome"}
	engine := NewEngine(&fakeDriver{page: page}, nil, logger.NewTestLogger(), Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := engine.Execute(ctx, runConfig, cases(2, -1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Contains(t, result.Details[0].Error, "context canceled")
	assert.Equal(t, 1, page.closed)
}

func TestContainsText(t *testing.T) {
	assert.True(t, containsText("Hello\n  world", "Hello world"))
	assert.True(t, containsText("anything", ""))
	assert.False(t, containsText("Hello", "world"))
}

func TestEngine_Execute_PanickingCaseIsIsolated(t *testing.T) {
	page := &fakePage{body: "Welcome", panicSelectors: map[string]bool{"#boom": true}}
	engine := NewEngine(&fakeDriver{page: page}, nil, logger.NewTestLogger(), Config{})

	tcs := cases(3, -1)
	tcs[1].Steps = []testcase.Step{{Action: testcase.ActionClick, Selector: "#boom"}}

	var result *testrun.ExecutionResult
	var err error
	require.NotPanics(t, func() {
		result, err = engine.Execute(context.Background(), runConfig, tcs)
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.True(t, result.Consistent())
	assert.Equal(t, 1, page.closed)

	faulted := result.Details[1]
	assert.Equal(t, "TC1", faulted.TestCaseID)
	assert.False(t, faulted.Passed)
	assert.Contains(t, faulted.Error, "cdp: nil element")
	assert.True(t, result.Details[2].Passed, "cases after the panic still run")
	assert.Contains(t, page.calls, "click #ok-2")
}

func TestEngine_Execute_PanickingLoginIsSessionFault(t *testing.T) {
	page := &fakePage{body: "Welcome", panicSelectors: map[string]bool{`button[type="submit"]`: true}}
	engine := NewEngine(&fakeDriver{page: page}, nil, logger.NewTestLogger(), Config{})

	result, err := engine.Execute(context.Background(), runConfig, cases(2, -1))
	require.ErrorIs(t, err, ErrSession)
	require.NotNil(t, result)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 1, page.closed)
}

func TestEngine_Execute_PanickingScreenshotKeepsOutcome(t *testing.T) {
	page := &fakePage{body: "Welcome", panicScreenshot: true}
	log := logger.NewTestLogger()
	engine := NewEngine(&fakeDriver{page: page}, testutil.SetupTestStorage(t), log, Config{})

	result, err := engine.Execute(context.Background(), runConfig, cases(2, -1))
	require.NoError(t, err)
	assert.Equal(t, 2, result.Passed)
	assert.Empty(t, result.Screenshots)
	assert.Len(t, log.EntriesWithMessage("failed to capture screenshot"), 2)
}
