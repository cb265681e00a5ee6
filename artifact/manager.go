// Package artifact persists scripts, reports and prompt templates to blob
// storage. Saving a script at a location merges it into the script already
// kept there.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
	"github.com/hairizuanbinnoorazman/ui-autotest/merge"
	"github.com/hairizuanbinnoorazman/ui-autotest/prompt"
	"github.com/hairizuanbinnoorazman/ui-autotest/scriptgen"
	"github.com/hairizuanbinnoorazman/ui-autotest/storage"
	"github.com/hairizuanbinnoorazman/ui-autotest/testcase"
	"github.com/hairizuanbinnoorazman/ui-autotest/testrun"
)

const (
	ScriptSuffix    = ".spec.js"
	timestampLayout = "20060102_150405"
)

var (
	ErrInvalidLocation = errors.New("invalid script location")
	ErrEmptyScript     = errors.New("script text is empty")
)

// Options configures the storage layout of a Manager.
type Options struct {
	ScriptsDir string       `mapstructure:"scripts_dir"`
	ReportsDir string       `mapstructure:"reports_dir"`
	PromptsDir string       `mapstructure:"prompts_dir"`
	Policy     merge.Policy `mapstructure:"policy"`

	Now func() time.Time `mapstructure:"-"`
}

// DefaultOptions returns the standard layout.
func DefaultOptions() Options {
	return Options{
		ScriptsDir: "scripts",
		ReportsDir: "reports",
		PromptsDir: "prompts",
		Policy:     merge.KeepExisting,
		Now:        time.Now,
	}
}

// ScriptArtifact describes a persisted script.
type ScriptArtifact struct {
	Text        string   `json:"text"`
	StoragePath string   `json:"storagePath"`
	Merged      bool     `json:"merged"`
	CaseIDs     []string `json:"caseIds"`
}

// Manager reads and writes artifacts. The script index is optional; when
// present it records the case ids of every saved script and a save is
// refused if previously recorded ids can no longer be found in the script.
type Manager struct {
	storage   storage.BlobStorage
	index     scriptgen.Store
	generator *scriptgen.Generator
	logger    logger.Logger
	opts      Options
}

// NewManager creates a Manager. Empty option fields take their defaults.
func NewManager(store storage.BlobStorage, index scriptgen.Store, log logger.Logger, opts Options) *Manager {
	defaults := DefaultOptions()
	if opts.ScriptsDir == "" {
		opts.ScriptsDir = defaults.ScriptsDir
	}
	if opts.ReportsDir == "" {
		opts.ReportsDir = defaults.ReportsDir
	}
	if opts.PromptsDir == "" {
		opts.PromptsDir = defaults.PromptsDir
	}
	if opts.Policy == "" {
		opts.Policy = defaults.Policy
	}
	if opts.Now == nil {
		opts.Now = defaults.Now
	}

	generator := scriptgen.NewGenerator()
	generator.Now = opts.Now

	return &Manager{
		storage:   store,
		index:     index,
		generator: generator,
		logger:    log,
		opts:      opts,
	}
}

// GenerateScript synthesizes a script for cases and saves it at location.
// Nothing is written when synthesis fails.
func (m *Manager) GenerateScript(ctx context.Context, location string, cfg testcase.RunConfig, cases []testcase.TestCase) (*ScriptArtifact, error) {
	text, err := m.generator.Synthesize(cfg, cases)
	if err != nil {
		m.logger.Error(ctx, "script synthesis failed", map[string]interface{}{
			"location": location,
			"error":    err.Error(),
		})
		return nil, err
	}
	return m.SaveScript(ctx, location, text)
}

// SaveScript merges text into the script kept at location and writes the
// result. With no script at location, text is written unchanged under a new
// timestamped name.
func (m *Manager) SaveScript(ctx context.Context, location, text string) (*ScriptArtifact, error) {
	location, err := cleanLocation(location)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyScript
	}

	target, err := m.latestScript(ctx, location)
	if err != nil {
		return nil, err
	}

	existing := ""
	if target != "" {
		data, err := storage.ReadAll(ctx, m.storage, target)
		if err != nil {
			return nil, fmt.Errorf("failed to read existing script: %w", err)
		}
		existing = string(data)
		if err := m.checkRecorded(ctx, target, existing); err != nil {
			return nil, err
		}
	} else {
		target = path.Join(m.scriptsDir(location), "test_"+m.opts.Now().UTC().Format(timestampLayout)+ScriptSuffix)
	}

	res, err := merge.Merge(existing, text, m.opts.Policy)
	if err != nil {
		m.logger.Error(ctx, "script merge failed", map[string]interface{}{
			"path":  target,
			"error": err.Error(),
		})
		return nil, err
	}

	if err := m.storage.Upload(ctx, target, strings.NewReader(res.Text)); err != nil {
		return nil, fmt.Errorf("failed to write script: %w", err)
	}

	ids := res.IDs()
	m.logger.Info(ctx, "script saved", map[string]interface{}{
		"location": location,
		"path":     target,
		"merged":   res.Merged,
		"tests":    len(ids),
		"added":    res.Added,
		"replaced": res.Replaced,
		"skipped":  res.Skipped,
	})
	if len(res.Dropped) > 0 {
		m.logger.Warn(ctx, "repeated test ids removed from script", map[string]interface{}{
			"path": target,
			"ids":  res.Dropped,
		})
	}

	if m.index != nil {
		if _, err := m.index.Upsert(ctx, location, target, ids); err != nil {
			return nil, fmt.Errorf("failed to index script: %w", err)
		}
	}

	return &ScriptArtifact{
		Text:        res.Text,
		StoragePath: target,
		Merged:      res.Merged,
		CaseIDs:     ids,
	}, nil
}

// checkRecorded fails when ids recorded for path are missing from text.
func (m *Manager) checkRecorded(ctx context.Context, path, text string) error {
	if m.index == nil {
		return nil
	}
	record, err := m.index.GetByPath(ctx, path)
	if errors.Is(err, scriptgen.ErrScriptNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load script index: %w", err)
	}

	missing, err := merge.MissingIDs(text, record.CaseIDs)
	if err != nil {
		return &merge.MergeError{Reason: "existing script is unreadable", Err: err}
	}
	if len(missing) > 0 {
		m.logger.Error(ctx, "recorded tests missing from script", map[string]interface{}{
			"path":    path,
			"missing": missing,
		})
		return &merge.MergeError{Reason: fmt.Sprintf("recorded tests %s are missing from %s", strings.Join(missing, ", "), path)}
	}
	return nil
}

// latestScript returns the script at location with the greatest name, or ""
// when there is none.
func (m *Manager) latestScript(ctx context.Context, location string) (string, error) {
	scripts, err := m.ListScripts(ctx, location)
	if err != nil {
		return "", err
	}
	if len(scripts) == 0 {
		return "", nil
	}
	fields := map[string]interface{}{
		"location":   location,
		"candidates": scripts,
		"chosen":     scripts[0],
	}
	if len(scripts) > 1 {
		m.logger.Info(ctx, "script candidates", fields)
	} else {
		m.logger.Debug(ctx, "script candidates", fields)
	}
	return scripts[0], nil
}

// ListScripts returns the scripts kept directly under location, newest name
// first.
func (m *Manager) ListScripts(ctx context.Context, location string) ([]string, error) {
	location, err := cleanLocation(location)
	if err != nil {
		return nil, err
	}
	dir := m.scriptsDir(location)

	paths, err := m.storage.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list scripts: %w", err)
	}

	var scripts []string
	for _, p := range paths {
		if path.Dir(p) != dir || !strings.HasSuffix(p, ScriptSuffix) {
			continue
		}
		scripts = append(scripts, p)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(scripts)))
	return scripts, nil
}

// LoadScript returns the text of the script at path.
func (m *Manager) LoadScript(ctx context.Context, path string) (string, error) {
	data, err := storage.ReadAll(ctx, m.storage, path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// SaveReport writes report under a name derived from at and returns its path.
func (m *Manager) SaveReport(ctx context.Context, report string, at time.Time) (string, error) {
	if at.IsZero() {
		at = m.opts.Now()
	}
	target := path.Join(m.opts.ReportsDir, "report_"+at.UTC().Format(timestampLayout)+".md")
	if err := m.storage.Upload(ctx, target, strings.NewReader(report)); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	m.logger.Info(ctx, "report saved", map[string]interface{}{"path": target})
	return target, nil
}

// LoadPrompts reads the prompt templates.
func (m *Manager) LoadPrompts(ctx context.Context) (prompt.Set, error) {
	return prompt.Load(ctx, m.storage, m.opts.PromptsDir)
}

// SavePrompts writes the prompt templates.
func (m *Manager) SavePrompts(ctx context.Context, set prompt.Set) error {
	return prompt.Save(ctx, m.storage, m.opts.PromptsDir, set)
}

// Bundle groups the artifacts produced by one run.
type Bundle struct {
	Location    string
	Script      string
	Report      string
	Screenshots []testrun.ScreenshotRef
	RunAt       time.Time
}

// BundleResult lists where each part of a Bundle was stored.
type BundleResult struct {
	Script      *ScriptArtifact         `json:"script,omitempty"`
	ReportPath  string                  `json:"reportPath,omitempty"`
	Screenshots []testrun.ScreenshotRef `json:"screenshots,omitempty"`
}

// SaveAll saves the script and report of b. Screenshot references are kept
// only when the referenced object exists. Empty parts are skipped.
func (m *Manager) SaveAll(ctx context.Context, b Bundle) (*BundleResult, error) {
	result := &BundleResult{}

	if strings.TrimSpace(b.Script) != "" {
		script, err := m.SaveScript(ctx, b.Location, b.Script)
		if err != nil {
			return nil, err
		}
		result.Script = script
	}

	if strings.TrimSpace(b.Report) != "" {
		reportPath, err := m.SaveReport(ctx, b.Report, b.RunAt)
		if err != nil {
			return result, err
		}
		result.ReportPath = reportPath
	}

	for _, shot := range b.Screenshots {
		ok, err := m.storage.Exists(ctx, shot.Path)
		if err != nil {
			return result, fmt.Errorf("failed to check screenshot %s: %w", shot.Path, err)
		}
		if !ok {
			m.logger.Warn(ctx, "screenshot not found", map[string]interface{}{
				"test_case_id": shot.TestCaseID,
				"path":         shot.Path,
			})
			continue
		}
		result.Screenshots = append(result.Screenshots, shot)
	}

	return result, nil
}

func (m *Manager) scriptsDir(location string) string {
	return path.Join(m.opts.ScriptsDir, location)
}

func cleanLocation(location string) (string, error) {
	location = strings.Trim(strings.TrimSpace(location), "/")
	if location == "" {
		return "", ErrInvalidLocation
	}
	for _, part := range strings.Split(location, "/") {
		if part == ".." || part == "." || part == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidLocation, location)
		}
	}
	return location, nil
}
