package testrun

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_IsValid(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusRunning, StatusPassed, StatusFailed, StatusErrored, StatusGenerated} {
		assert.True(t, s.IsValid(), s)
	}
	assert.False(t, Status("skipped").IsValid())
	assert.False(t, Status("").IsValid())
}

func TestStatus_IsFinal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusPending, false},
		{StatusRunning, false},
		{StatusPassed, true},
		{StatusFailed, true},
		{StatusErrored, true},
		{StatusGenerated, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.status.IsFinal())
		})
	}
}

func TestTestRun_Validate(t *testing.T) {
	tests := []struct {
		name    string
		run     TestRun
		wantErr error
	}{
		{name: "valid", run: TestRun{Provider: "claude", TargetURL: "https://x", Status: StatusPending}},
		{name: "missing provider", run: TestRun{TargetURL: "https://x", Status: StatusPending}, wantErr: ErrInvalidProvider},
		{name: "missing target", run: TestRun{Provider: "claude", Status: StatusPending}, wantErr: ErrInvalidTargetURL},
		{name: "bad status", run: TestRun{Provider: "claude", TargetURL: "https://x", Status: "done"}, wantErr: ErrInvalidStatus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTestRun_StartComplete(t *testing.T) {
	tr := &TestRun{Provider: "claude", TargetURL: "https://x", Status: StatusPending}

	assert.ErrorIs(t, tr.Complete(NewExecutionResult(), ""), ErrTestRunNotRunning)

	require.NoError(t, tr.Start())
	assert.Equal(t, StatusRunning, tr.Status)
	assert.NotNil(t, tr.StartedAt)
	assert.ErrorIs(t, tr.Start(), ErrTestRunAlreadyStarted)

	result := NewExecutionResult()
	result.Record(CaseResult{TestCaseID: "A", Passed: true})
	result.Record(CaseResult{TestCaseID: "B", Error: "timeout"})

	require.NoError(t, tr.Complete(result, "two cases"))
	assert.Equal(t, StatusFailed, tr.Status)
	assert.Equal(t, 2, tr.Total)
	assert.Equal(t, 1, tr.Passed)
	assert.Equal(t, 1, tr.Failed)
	assert.Equal(t, "two cases", tr.Notes)
	assert.NotNil(t, tr.CompletedAt)
}

func TestTestRun_CompleteWithoutResult(t *testing.T) {
	tr := &TestRun{Provider: "claude", TargetURL: "https://x"}
	require.NoError(t, tr.Start())
	require.NoError(t, tr.Complete(nil, "analysis failed"))
	assert.Equal(t, StatusErrored, tr.Status)
}
