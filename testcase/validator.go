package testcase

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrTooManyTestCases is returned when a generated set exceeds the case limit.
	ErrTooManyTestCases = errors.New("too many test cases")

	// ErrTooManySteps is returned when a case exceeds the step limit.
	ErrTooManySteps = errors.New("too many steps")

	// ErrFieldTooLong is returned when a name or expected result exceeds its limit.
	ErrFieldTooLong = errors.New("field exceeds maximum length")

	// ErrSuspiciousContent is returned when generated content carries control
	// characters or instruction-override phrases.
	ErrSuspiciousContent = errors.New("content contains suspicious patterns")
)

// ValidationLimits bounds generated sets before they are synthesized or fed
// back into a report prompt.
type ValidationLimits struct {
	MaxTestCases   int
	MaxSteps       int
	MaxFieldLength int
}

// DefaultValidationLimits returns the default validation limits.
func DefaultValidationLimits() ValidationLimits {
	return ValidationLimits{
		MaxTestCases:   200,
		MaxSteps:       100,
		MaxFieldLength: 2000,
	}
}

var suspiciousPhrases = []string{
	"ignore previous instructions",
	"ignore all previous",
	"disregard previous",
	"new instructions:",
}

// ValidateSet checks every case in the set against limits. Degraded sets
// carry no cases and always pass.
func ValidateSet(set *Set, limits ValidationLimits) error {
	if set == nil {
		return nil
	}
	if len(set.TestCases) > limits.MaxTestCases {
		return fmt.Errorf("%w: %d cases (max %d)", ErrTooManyTestCases, len(set.TestCases), limits.MaxTestCases)
	}

	for _, tc := range set.TestCases {
		if err := tc.Validate(); err != nil {
			return err
		}
		if len(tc.Steps) > limits.MaxSteps {
			return fmt.Errorf("%w: test case %s has %d steps (max %d)", ErrTooManySteps, tc.ID, len(tc.Steps), limits.MaxSteps)
		}

		fields := map[string]string{
			"name":           tc.Name,
			"expectedResult": tc.ExpectedResult,
		}
		for i, step := range tc.Steps {
			fields[fmt.Sprintf("steps[%d].selector", i)] = step.Selector
			fields[fmt.Sprintf("steps[%d].value", i)] = step.Value
		}
		for field, value := range fields {
			if len(value) > limits.MaxFieldLength {
				return fmt.Errorf("%w: test case %s %s", ErrFieldTooLong, tc.ID, field)
			}
			if err := checkSuspicious(value); err != nil {
				return fmt.Errorf("test case %s %s: %w", tc.ID, field, err)
			}
		}
	}
	return nil
}

func checkSuspicious(value string) error {
	lower := strings.ToLower(value)
	for _, phrase := range suspiciousPhrases {
		if strings.Contains(lower, phrase) {
			return fmt.Errorf("%w: %q", ErrSuspiciousContent, phrase)
		}
	}
	if hasExcessiveControlCharacters(value) {
		return fmt.Errorf("%w: excessive control characters", ErrSuspiciousContent)
	}
	return nil
}

// hasExcessiveControlCharacters reports whether more than 5% of the runes
// (at least 5) are control characters other than common whitespace.
func hasExcessiveControlCharacters(s string) bool {
	if s == "" {
		return false
	}

	count := 0
	for _, r := range s {
		if unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r' {
			count++
		}
	}

	threshold := len(s) / 20
	if threshold < 5 {
		threshold = 5
	}
	return count > threshold
}
