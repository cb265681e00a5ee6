package testcase

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep_Validate(t *testing.T) {
	tests := []struct {
		name    string
		step    Step
		wantErr error
	}{
		{name: "click", step: Step{Action: ActionClick, Selector: "#save"}},
		{name: "fill with empty value", step: Step{Action: ActionFill, Selector: "#name"}},
		{name: "navigate", step: Step{Action: ActionNavigate, URL: "https://example.com"}},
		{name: "click without selector", step: Step{Action: ActionClick}, wantErr: ErrInvalidStep},
		{name: "navigate without url", step: Step{Action: ActionNavigate}, wantErr: ErrInvalidStep},
		{name: "unknown action", step: Step{Action: "hover", Selector: "#x"}, wantErr: ErrUnknownAction},
		{name: "empty action", step: Step{}, wantErr: ErrUnknownAction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.step.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestTestCase_UnmarshalVendorShape(t *testing.T) {
	raw := `{"testCases":[{"id":"TC001","name":"Login works","steps":[
		{"action":"fill","selector":"#user","value":"admin"},
		{"action":"click","selector":"#login"}],
		"expectedResult":"Welcome"}]}`

	var set Set
	require.NoError(t, json.Unmarshal([]byte(raw), &set))
	require.Len(t, set.TestCases, 1)

	tc := set.TestCases[0]
	assert.Equal(t, "TC001", tc.ID)
	assert.Equal(t, "Welcome", tc.ExpectedResult)
	assert.Equal(t, ActionFill, tc.Steps[0].Action)
	assert.NoError(t, tc.Validate())
}

func TestTestCase_Validate(t *testing.T) {
	assert.ErrorIs(t, TestCase{Name: "x"}.Validate(), ErrInvalidTestCaseID)

	tc := TestCase{ID: "TC002", Steps: []Step{{Action: ActionClick, Selector: "a"}, {Action: "drag"}}}
	err := tc.Validate()
	assert.ErrorIs(t, err, ErrUnknownAction)
	assert.Contains(t, err.Error(), "step 1")
}

func TestTestCase_ArtifactKey(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{id: "TC001", want: "TC001"},
		{id: "login/01 a", want: "login_01_a"},
		{id: "../etc", want: "___etc"},
		{id: "", want: "unnamed"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.want, TestCase{ID: tt.id}.ArtifactKey())
		})
	}
}

func TestSet_Dedupe(t *testing.T) {
	set := &Set{TestCases: []TestCase{
		{ID: "A", Name: "first"},
		{ID: "B"},
		{ID: "A", Name: "second"},
	}}

	dropped := set.Dedupe()
	assert.Equal(t, []string{"A"}, dropped)
	assert.Equal(t, []string{"A", "B"}, set.IDs())
	assert.Equal(t, "first", set.TestCases[0].Name)

	var nilSet *Set
	assert.Nil(t, nilSet.IDs())
	assert.Nil(t, nilSet.Dedupe())
}

func TestRunConfig(t *testing.T) {
	cfg := RunConfig{
		TargetURL:  "https://app.example.com",
		Username:   "admin",
		Password:   "secret",
		ScreenName: "Orders",
		Login:      LoginSelectors{SubmitText: "Sign in"},
	}

	vars := cfg.Vars()
	assert.Equal(t, "Orders", vars["screenName"])
	assert.Equal(t, "Orders", vars["tabName"])
	assert.Equal(t, "https://app.example.com", vars["url"])

	sel := cfg.ResolvedLogin()
	assert.Equal(t, DefaultUsernameSelector, sel.Username)
	assert.Equal(t, DefaultPasswordSelector, sel.Password)
	assert.Equal(t, DefaultSubmitSelector, sel.Submit)
	assert.Equal(t, "Sign in", sel.SubmitText)

	assert.Equal(t, "********", cfg.Masked().Password)
	assert.Equal(t, "secret", cfg.Password)
	assert.Empty(t, RunConfig{}.Masked().Password)
}
