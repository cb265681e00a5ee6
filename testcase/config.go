package testcase

// Default login selectors used when a RunConfig does not override them.
const (
	DefaultUsernameSelector = `input[type="text"]`
	DefaultPasswordSelector = `input[type="password"]`
	DefaultSubmitSelector   = `button[type="submit"]`
)

// LoginSelectors locate the login form. When SubmitText is set the login
// control is found by its visible text instead of Submit.
type LoginSelectors struct {
	Username   string `json:"username,omitempty" yaml:"username,omitempty" mapstructure:"username"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	Submit     string `json:"submit,omitempty" yaml:"submit,omitempty" mapstructure:"submit"`
	SubmitText string `json:"submitText,omitempty" yaml:"submitText,omitempty" mapstructure:"submit_text"`
}

// RunConfig describes the system under test for one run.
type RunConfig struct {
	TargetURL  string         `json:"url" yaml:"url" mapstructure:"url"`
	Username   string         `json:"username" yaml:"username" mapstructure:"username"`
	Password   string         `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	ScreenName string         `json:"screenName" yaml:"screenName" mapstructure:"screen_name"`
	TestData   string         `json:"testData,omitempty" yaml:"testData,omitempty" mapstructure:"test_data"`
	Login      LoginSelectors `json:"login,omitempty" yaml:"login,omitempty" mapstructure:"login"`
}

// ResolvedLogin returns the configured selectors with defaults filled in.
func (c RunConfig) ResolvedLogin() LoginSelectors {
	sel := c.Login
	if sel.Username == "" {
		sel.Username = DefaultUsernameSelector
	}
	if sel.Password == "" {
		sel.Password = DefaultPasswordSelector
	}
	if sel.Submit == "" {
		sel.Submit = DefaultSubmitSelector
	}
	return sel
}

// Vars flattens the config into prompt template variables. tabName is kept
// as an alias of screenName for older templates.
func (c RunConfig) Vars() map[string]string {
	return map[string]string{
		"url":        c.TargetURL,
		"username":   c.Username,
		"password":   c.Password,
		"screenName": c.ScreenName,
		"tabName":    c.ScreenName,
		"testData":   c.TestData,
	}
}

// Masked returns a copy with the password hidden, for persisting alongside
// generated artifacts.
func (c RunConfig) Masked() RunConfig {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}
