package testrun

// CaseResult is the outcome of one test case. Error is set only when the
// case faulted rather than merely failing its expectation.
type CaseResult struct {
	TestCaseID string `json:"testCaseId"`
	Passed     bool   `json:"passed"`
	Actual     string `json:"actual,omitempty"`
	Error      string `json:"error,omitempty"`
}

// ScreenshotRef points at a screenshot stored for a test case.
type ScreenshotRef struct {
	TestCaseID string `json:"testCaseId"`
	Path       string `json:"path"`
}

// ExecutionResult aggregates one execution batch. Total always equals
// Passed + Failed and the number of Details when built through Record.
type ExecutionResult struct {
	Total       int             `json:"total"`
	Passed      int             `json:"passed"`
	Failed      int             `json:"failed"`
	Details     []CaseResult    `json:"details"`
	Screenshots []ScreenshotRef `json:"screenshots"`
}

// NewExecutionResult returns an empty result with non-nil slices.
func NewExecutionResult() *ExecutionResult {
	return &ExecutionResult{
		Details:     []CaseResult{},
		Screenshots: []ScreenshotRef{},
	}
}

// Record appends a case outcome and updates the counters.
func (r *ExecutionResult) Record(cr CaseResult) {
	r.Details = append(r.Details, cr)
	r.Total++
	if cr.Passed {
		r.Passed++
	} else {
		r.Failed++
	}
}

// AddScreenshot records where a case's screenshot was stored.
func (r *ExecutionResult) AddScreenshot(testCaseID, path string) {
	r.Screenshots = append(r.Screenshots, ScreenshotRef{TestCaseID: testCaseID, Path: path})
}

// Consistent reports whether the counters agree with the details.
func (r *ExecutionResult) Consistent() bool {
	if r.Total != r.Passed+r.Failed || r.Total != len(r.Details) {
		return false
	}
	passed := 0
	for _, d := range r.Details {
		if d.Passed {
			passed++
		}
	}
	return passed == r.Passed
}

// Status summarizes the result as a final run status.
func (r *ExecutionResult) Status() Status {
	if r.Total > 0 && r.Failed == 0 {
		return StatusPassed
	}
	return StatusFailed
}
