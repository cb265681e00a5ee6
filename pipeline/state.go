package pipeline

// State is a position in the pipeline's linear state machine.
type State string

const (
	StateIdle           State = "idle"
	StateAnalyzing      State = "analyzing"
	StateCaseGeneration State = "case_generation"
	StateReporting      State = "reporting"
	StateDone           State = "done"
	StateFailed         State = "failed"
)

// IsTerminal reports whether no further transitions are possible.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// Step names recorded in RunResult.CompletedSteps.
const (
	StepAnalysis  = "analysis"
	StepTestCases = "testCases"
	StepReport    = "report"
)
