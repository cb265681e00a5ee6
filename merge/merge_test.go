package merge

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hairizuanbinnoorazman/ui-autotest/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
)

const sampleExisting = `const { test, expect } = require('@playwright/test');

test.describe("Login automated tests", () => {
  test.beforeEach(async ({ page }) => {
    await page.goto("https://example.com");
  });

  test("A - first", async ({ page }) => {
    await page.click("#a");
  });

  test("B - second", async ({ page }) => {
    await page.click("#b-old");
  });
});

module.exports = { generatedAt: "2026-01-01T00:00:00Z" };
`

const sampleIncoming = `const { test, expect } = require('@playwright/test');

test.describe("Login automated tests", () => {
  test("B - second", async ({ page }) => {
    await page.click("#b-new");
  });

  test("C - third", async ({ page }) => {
    await page.click("#c");
  });
});
`

func TestMerge_UnionKeepsExistingBody(t *testing.T) {
	res, err := Merge(sampleExisting, sampleIncoming, KeepExisting)
	require.NoError(t, err)

	assert.True(t, res.Merged)
	assert.Equal(t, []string{"A", "B", "C"}, res.IDs())
	assert.Equal(t, []string{"C"}, res.Added)
	assert.Equal(t, []string{"B"}, res.Skipped)
	assert.Empty(t, res.Replaced)

	assert.Contains(t, res.Text, `"#b-old"`)
	assert.NotContains(t, res.Text, `"#b-new"`)
	assert.Contains(t, res.Text, `"#c"`)
	assert.True(t, strings.HasPrefix(res.Text, "const { test, expect } = require('@playwright/test');"))
	assert.Contains(t, res.Text, "test.beforeEach")
	assert.True(t, strings.HasSuffix(res.Text, "module.exports = { generatedAt: \"2026-01-01T00:00:00Z\" };\n"))
	assert.Equal(t, 1, strings.Count(res.Text, "test.describe("))
}

func TestMerge_PreferIncomingReplacesInPlace(t *testing.T) {
	res, err := Merge(sampleExisting, sampleIncoming, PreferIncoming)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.IDs())
	assert.Equal(t, []string{"B"}, res.Replaced)
	assert.Contains(t, res.Text, `"#b-new"`)
	assert.NotContains(t, res.Text, `"#b-old"`)
	assert.Less(t, strings.Index(res.Text, `"#b-new"`), strings.Index(res.Text, `"#c"`))
}

func TestMerge_EmptyExistingReturnsIncoming(t *testing.T) {
	for _, existing := range []string{"", "  \n\t"} {
		res, err := Merge(existing, sampleIncoming, KeepExisting)
		require.NoError(t, err)
		assert.False(t, res.Merged)
		assert.Equal(t, sampleIncoming, res.Text)
		assert.Equal(t, []string{"B", "C"}, res.IDs())
	}
}

func TestMerge_Errors(t *testing.T) {
	tests := []struct {
		name     string
		existing string
		incoming string
	}{
		{
			name:     "existing without declarations",
			existing: "const x = 1;\n",
			incoming: sampleIncoming,
		},
		{
			name:     "existing unbalanced",
			existing: `test("A - open", () => {`,
			incoming: sampleIncoming,
		},
		{
			name:     "incoming unbalanced",
			existing: sampleExisting,
			incoming: `test("C - open", () => { {`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Merge(tt.existing, tt.incoming, KeepExisting)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMerge))

			var mergeErr *MergeError
			assert.True(t, errors.As(err, &mergeErr))
			assert.NotEmpty(t, mergeErr.Reason)
		})
	}
}

func TestMerge_KeepsHelpersBetweenTests(t *testing.T) {
	existing := `test("A - first", () => {});

function helper() { return 1; }

test("B - second", () => {});
`
	res, err := Merge(existing, `test("C - third", () => {});`, KeepExisting)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "C"}, res.IDs())
	assert.Equal(t, 1, strings.Count(res.Text, "function helper()"))
	assert.Greater(t, strings.Index(res.Text, "function helper()"), strings.Index(res.Text, `"C - third"`))
}

func TestMerge_DropsRepeatedExistingIDs(t *testing.T) {
	existing := "test(\"A - one\", () => { a1(); });\ntest(\"A - again\", () => { a2(); });\n"

	res, err := Merge(existing, `test("B - two", () => {});`, KeepExisting)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B"}, res.IDs())
	assert.Equal(t, []string{"A"}, res.Dropped)
	assert.Contains(t, res.Text, "a1()")
	assert.NotContains(t, res.Text, "a2()")
}

func TestMerge_SynthesizedScripts(t *testing.T) {
	g := scriptgen.NewGenerator()
	g.Now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	cfg := testcase.RunConfig{TargetURL: "https://example.com", Username: "u", ScreenName: "Home"}

	first, err := g.Synthesize(cfg, []testcase.TestCase{
		{ID: "TC1", Name: "open } brace", ExpectedResult: "{"},
		{ID: "TC2", Name: "second"},
	})
	require.NoError(t, err)
	second, err := g.Synthesize(cfg, []testcase.TestCase{
		{ID: "TC2", Name: "second again"},
		{ID: "TC3", Name: "third", Steps: []testcase.Step{{Action: testcase.ActionClick, Selector: "a:has-text(\"x\")"}}},
	})
	require.NoError(t, err)

	res, err := Merge(first, second, KeepExisting)
	require.NoError(t, err)
	assert.Equal(t, []string{"TC1", "TC2", "TC3"}, res.IDs())
	assert.Contains(t, res.Text, `"TC2 - second"`)
	assert.NotContains(t, res.Text, "second again")
	assert.Equal(t, 1, strings.Count(res.Text, "module.exports"))
}

func TestMerge_SynthesizedIDsReadBackUnchanged(t *testing.T) {
	g := scriptgen.NewGenerator()
	cfg := testcase.RunConfig{TargetURL: "https://example.com", Username: "u"}
	ids := []string{"A", "A-", "-", "- B", "A\t-", "TC 1"}

	cases := make([]testcase.TestCase, 0, len(ids))
	for _, id := range ids {
		cases = append(cases, testcase.TestCase{ID: id, Name: "case"})
	}
	text, err := g.Synthesize(cfg, cases)
	require.NoError(t, err)

	records, err := Extract(text)
	require.NoError(t, err)
	got := make([]string, 0, len(records))
	for _, r := range records {
		got = append(got, r.ID)
	}
	assert.Equal(t, ids, got)

	res, err := Merge(text, text, KeepExisting)
	require.NoError(t, err)
	assert.Equal(t, ids, res.IDs())
	assert.Empty(t, res.Dropped)

	for _, bad := range []string{"A -", " B", "B "} {
		_, err := g.Synthesize(cfg, []testcase.TestCase{{ID: "A", Name: "case"}, {ID: bad, Name: "case"}})
		assert.ErrorIs(t, err, scriptgen.ErrSynthesis, "id %q", bad)
	}
}

func TestMissingIDs(t *testing.T) {
	missing, err := MissingIDs(sampleExisting, []string{"A", "X", "B", "Y"})
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y"}, missing)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "", want: KeepExisting},
		{in: "keep-existing", want: KeepExisting},
		{in: "Prefer-Incoming", want: PreferIncoming},
		{in: "newest", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
