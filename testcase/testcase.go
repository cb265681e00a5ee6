package testcase

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrUnknownAction is returned when a step carries an action tag outside
	// click, fill and navigate.
	ErrUnknownAction = errors.New("unknown step action")

	// ErrInvalidStep is returned when a step lacks a field its action requires.
	ErrInvalidStep = errors.New("invalid step")

	// ErrInvalidTestCaseID is returned when a test case id is empty.
	ErrInvalidTestCaseID = errors.New("test case id is required")
)

// Action identifies the kind of browser interaction a step performs.
type Action string

const (
	ActionClick    Action = "click"
	ActionFill     Action = "fill"
	ActionNavigate Action = "navigate"
)

// Step is one browser interaction. Which fields are meaningful depends on
// Action: click uses Selector, fill uses Selector and Value, navigate uses URL.
type Step struct {
	Action   Action `json:"action" yaml:"action"`
	Selector string `json:"selector,omitempty" yaml:"selector,omitempty"`
	Value    string `json:"value,omitempty" yaml:"value,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
}

// Validate checks the action tag and the fields it requires.
func (s Step) Validate() error {
	switch s.Action {
	case ActionClick, ActionFill:
		if s.Selector == "" {
			return fmt.Errorf("%w: %s requires a selector", ErrInvalidStep, s.Action)
		}
	case ActionNavigate:
		if s.URL == "" {
			return fmt.Errorf("%w: navigate requires a url", ErrInvalidStep)
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, s.Action)
	}
	return nil
}

// TestCase is a single generated scenario. ID is its identity across runs.
type TestCase struct {
	ID             string `json:"id" yaml:"id"`
	Name           string `json:"name" yaml:"name"`
	Steps          []Step `json:"steps" yaml:"steps"`
	ExpectedResult string `json:"expectedResult" yaml:"expectedResult"`
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// ArtifactKey returns the id reduced to characters safe for file names.
func (tc TestCase) ArtifactKey() string {
	if tc.ID == "" {
		return "unnamed"
	}
	return unsafeKeyChars.ReplaceAllString(tc.ID, "_")
}

// Validate checks the id and every step, reporting the first failing step
// index.
func (tc TestCase) Validate() error {
	if tc.ID == "" {
		return ErrInvalidTestCaseID
	}
	for i, step := range tc.Steps {
		if err := step.Validate(); err != nil {
			return fmt.Errorf("test case %s step %d: %w", tc.ID, i, err)
		}
	}
	return nil
}

// Set is the result of test case generation. When the vendor reply could not
// be decoded into cases, Degraded is set and Raw holds the reply text.
type Set struct {
	TestCases []TestCase `json:"testCases"`
	Raw       string     `json:"raw,omitempty"`
	Degraded  bool       `json:"degraded,omitempty"`
}

// IDs returns the case ids in order.
func (s *Set) IDs() []string {
	if s == nil {
		return nil
	}
	ids := make([]string, 0, len(s.TestCases))
	for _, tc := range s.TestCases {
		ids = append(ids, tc.ID)
	}
	return ids
}

// Dedupe drops every case whose id already appeared earlier in the set and
// returns the dropped ids.
func (s *Set) Dedupe() []string {
	if s == nil {
		return nil
	}
	seen := make(map[string]bool, len(s.TestCases))
	kept := s.TestCases[:0]
	var dropped []string
	for _, tc := range s.TestCases {
		if seen[tc.ID] {
			dropped = append(dropped, tc.ID)
			continue
		}
		seen[tc.ID] = true
		kept = append(kept, tc)
	}
	s.TestCases = kept
	return dropped
}
