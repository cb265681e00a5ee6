package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
)

// Role text sent as the system message for each stage.
const (
	analysisSystemPrompt = "You are a professional QA engineer who analyzes web pages and designs test cases."
	testCaseSystemPrompt = "You are a test case design expert who covers every relevant scenario."
	reportSystemPrompt   = "You are a test reporting expert who writes clear, professional test reports."
)

// completer performs a single request against one vendor and returns the
// reply text.
type completer interface {
	complete(ctx context.Context, system, user string) (string, error)
}

type adapter struct {
	vendor    VendorID
	model     string
	completer completer
	logger    logger.Logger
}

func (a *adapter) Vendor() VendorID { return a.vendor }

func (a *adapter) Model() string { return a.model }

func (a *adapter) Analyze(ctx context.Context, cfg testcase.RunConfig, promptTemplate string) (any, error) {
	prompt := FillTemplate(promptTemplate, cfg.Vars())

	text, err := a.call(ctx, "analysis", analysisSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	result := Decode(text)
	if DecodeFailed(result) {
		a.logger.Warn(ctx, "analysis reply is not structured", map[string]interface{}{"reply_length": len(text)})
	}
	return result, nil
}

func (a *adapter) GenerateTestCases(ctx context.Context, analysis any, promptTemplate string) (*testcase.Set, error) {
	prompt := promptTemplate + "\n\nAnalysis:\n" + indentJSON(analysis)

	text, err := a.call(ctx, "testCases", testCaseSystemPrompt, prompt)
	if err != nil {
		return nil, err
	}

	set, ok := toTestCaseSet(Decode(text))
	if !ok {
		a.logger.Warn(ctx, "test case reply could not be decoded", map[string]interface{}{"reply_length": len(text)})
		return &testcase.Set{Raw: text, Degraded: true}, nil
	}

	if dropped := set.Dedupe(); len(dropped) > 0 {
		a.logger.Warn(ctx, "dropped duplicate test case ids", map[string]interface{}{"test_case_ids": dropped})
	}
	return set, nil
}

func (a *adapter) GenerateReport(ctx context.Context, subject any, promptTemplate string) (string, error) {
	prompt := promptTemplate + "\n\nResults:\n" + indentJSON(subject)
	return a.call(ctx, "report", reportSystemPrompt, prompt)
}

func (a *adapter) call(ctx context.Context, stage, system, user string) (string, error) {
	start := time.Now()
	text, err := a.completer.complete(ctx, system, user)
	fields := map[string]interface{}{
		"stage":       stage,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
		a.logger.Error(ctx, "provider request failed", fields)
		return "", err
	}
	fields["reply_length"] = len(text)
	a.logger.Debug(ctx, "provider request completed", fields)
	return text, nil
}

// toTestCaseSet accepts either {"testCases": [...]} or a bare array.
func toTestCaseSet(decoded any) (*testcase.Set, bool) {
	if DecodeFailed(decoded) {
		return nil, false
	}

	switch v := decoded.(type) {
	case map[string]any:
		if _, ok := v["testCases"]; !ok {
			return nil, false
		}
	case []any:
		decoded = map[string]any{"testCases": v}
	default:
		return nil, false
	}

	data, err := json.Marshal(decoded)
	if err != nil {
		return nil, false
	}
	var set testcase.Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, false
	}
	set.Raw = ""
	set.Degraded = false
	return &set, true
}
