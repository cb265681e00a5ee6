// Package scriptgen turns test cases into Playwright spec files and keeps an
// index of the case ids recorded in each persisted script.
package scriptgen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
)

// ErrSynthesis is matched by *SynthesisError.
var ErrSynthesis = errors.New("script synthesis failed")

// PasswordEnvVar is read by generated scripts for the login secret, which is
// never written into the script text.
const PasswordEnvVar = "AUTOTEST_PASSWORD"

// TitleSeparator joins a case id and name in a test title. Ids must not
// contain it, end with " -", or carry surrounding whitespace, so the id
// reads back unchanged from the title.
const TitleSeparator = " - "

// SynthesisError reports the case and step that could not be rendered.
// StepIndex is -1 when the problem is with the case itself.
type SynthesisError struct {
	CaseID    string
	StepIndex int
	Action    string
	Reason    string
}

func (e *SynthesisError) Error() string {
	if e.StepIndex < 0 {
		return fmt.Sprintf("cannot synthesize test case %q: %s", e.CaseID, e.Reason)
	}
	return fmt.Sprintf("cannot synthesize test case %q step %d (action %q): %s", e.CaseID, e.StepIndex, e.Action, e.Reason)
}

// Is reports whether target is ErrSynthesis.
func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesis
}

// Generator renders Playwright spec text. Output depends only on its inputs
// and the Now clock.
type Generator struct {
	Now    func() time.Time
	Limits testcase.ValidationLimits
}

// NewGenerator returns a Generator using the wall clock and default limits.
func NewGenerator() *Generator {
	return &Generator{
		Now:    time.Now,
		Limits: testcase.DefaultValidationLimits(),
	}
}

// Synthesize renders one spec file containing a test block per case. Any
// case that cannot be rendered fails the whole call and no text is returned.
func (g *Generator) Synthesize(cfg testcase.RunConfig, cases []testcase.TestCase) (string, error) {
	if len(cases) == 0 {
		return "", &SynthesisError{StepIndex: -1, Reason: "no test cases"}
	}

	seen := make(map[string]bool, len(cases))
	blocks := make([]string, 0, len(cases))
	for _, tc := range cases {
		if err := checkCaseID(tc.ID, seen); err != nil {
			return "", err
		}
		block, err := renderCase(tc)
		if err != nil {
			return "", err
		}
		blocks = append(blocks, block)
	}

	if err := testcase.ValidateSet(&testcase.Set{TestCases: cases}, g.Limits); err != nil {
		return "", &SynthesisError{StepIndex: -1, Reason: err.Error()}
	}

	generatedAt := g.Now().UTC().Format(time.RFC3339)
	exported, err := jsValue(cfg.Masked(), "  ")
	if err != nil {
		return "", &SynthesisError{StepIndex: -1, Reason: fmt.Sprintf("encode config: %v", err)}
	}

	var b strings.Builder
	b.WriteString("// Generated UI test script\n")
	fmt.Fprintf(&b, "// Screen: %s\n", commentText(cfg.ScreenName))
	fmt.Fprintf(&b, "// Generated at: %s\n", generatedAt)
	b.WriteString("\nconst { test, expect } = require('@playwright/test');\n\n")
	fmt.Fprintf(&b, "test.describe(%s, () => {\n", jsString(describeTitle(cfg.ScreenName)))
	b.WriteString(renderLogin(cfg))
	b.WriteString("\n")
	b.WriteString(strings.Join(blocks, "\n\n"))
	b.WriteString("\n});\n\n")
	b.WriteString("module.exports = {\n")
	fmt.Fprintf(&b, "  testConfig: %s,\n", exported)
	fmt.Fprintf(&b, "  generatedAt: %s\n", jsString(generatedAt))
	b.WriteString("};\n")

	return b.String(), nil
}

func checkCaseID(id string, seen map[string]bool) error {
	switch {
	case id == "":
		return &SynthesisError{StepIndex: -1, Reason: "empty test case id"}
	case strings.Contains(id, TitleSeparator):
		return &SynthesisError{CaseID: id, StepIndex: -1, Reason: fmt.Sprintf("id contains %q", TitleSeparator)}
	case strings.TrimSpace(id) != id:
		return &SynthesisError{CaseID: id, StepIndex: -1, Reason: "id has surrounding whitespace"}
	case strings.HasSuffix(id, " -"):
		// "A -" + TitleSeparator + name reads back as "A".
		return &SynthesisError{CaseID: id, StepIndex: -1, Reason: `id ends with " -"`}
	case seen[id]:
		return &SynthesisError{CaseID: id, StepIndex: -1, Reason: "duplicate test case id"}
	}
	seen[id] = true
	return nil
}

func describeTitle(screen string) string {
	if screen == "" {
		return "Automated UI tests"
	}
	return screen + " automated tests"
}

func renderLogin(cfg testcase.RunConfig) string {
	sel := cfg.ResolvedLogin()

	var b strings.Builder
	b.WriteString("  test.beforeEach(async ({ page }) => {\n")
	fmt.Fprintf(&b, "    await page.goto(%s);\n", jsString(cfg.TargetURL))
	fmt.Fprintf(&b, "    await page.fill(%s, %s);\n", jsString(sel.Username), jsString(cfg.Username))
	if cfg.Password != "" {
		fmt.Fprintf(&b, "    await page.fill(%s, process.env.%s || '');\n", jsString(sel.Password), PasswordEnvVar)
	}
	if sel.SubmitText != "" {
		fmt.Fprintf(&b, "    await page.click(%s);\n", jsString(hasTextSelector("button", sel.SubmitText)))
	} else {
		fmt.Fprintf(&b, "    await page.click(%s);\n", jsString(sel.Submit))
	}
	b.WriteString("    await page.waitForLoadState('networkidle');\n")
	if cfg.ScreenName != "" {
		fmt.Fprintf(&b, "    await page.click(%s);\n", jsString(hasTextSelector("a", cfg.ScreenName)))
		b.WriteString("    await page.waitForLoadState('networkidle');\n")
	}
	b.WriteString("  });\n")
	return b.String()
}

func renderCase(tc testcase.TestCase) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "  test(%s, async ({ page }) => {\n", jsString(tc.ID+TitleSeparator+tc.Name))

	for i, step := range tc.Steps {
		line, err := renderStep(step)
		if err != nil {
			return "", &SynthesisError{CaseID: tc.ID, StepIndex: i, Action: string(step.Action), Reason: err.Error()}
		}
		b.WriteString("    " + line + "\n")
	}

	if tc.ExpectedResult != "" {
		if len(tc.Steps) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "    await expect(page.locator('body')).toContainText(%s);\n", jsString(tc.ExpectedResult))
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "    await page.screenshot({ path: %s, fullPage: true });\n", jsString("screenshots/"+tc.ArtifactKey()+".png"))
	b.WriteString("  });")
	return b.String(), nil
}

func renderStep(step testcase.Step) (string, error) {
	if err := step.Validate(); err != nil {
		return "", err
	}
	switch step.Action {
	case testcase.ActionClick:
		return fmt.Sprintf("await page.click(%s);", jsString(step.Selector)), nil
	case testcase.ActionFill:
		return fmt.Sprintf("await page.fill(%s, %s);", jsString(step.Selector), jsString(step.Value)), nil
	default:
		return fmt.Sprintf("await page.goto(%s);", jsString(step.URL)), nil
	}
}
