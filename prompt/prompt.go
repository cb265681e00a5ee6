// Package prompt manages the per-stage prompt templates.
package prompt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hairizuanbinnoorazman/ui-autotest/storage"
)

// Stage names used as keys in a Set.
const (
	StageAnalysis  = "analysis"
	StageTestCase  = "testCase"
	StageExecution = "execution"
	StageReport    = "report"
	StageScript    = "script"
)

// stageFiles maps each stage to its template file name.
var stageFiles = map[string]string{
	StageAnalysis:  "analysis.txt",
	StageTestCase:  "testcase.txt",
	StageExecution: "execution.txt",
	StageReport:    "report.txt",
	StageScript:    "script.txt",
}

// Set holds prompt templates keyed by stage name.
type Set map[string]string

// Get returns the template for stage, or "" when none is set.
func (s Set) Get(stage string) string {
	if s == nil {
		return ""
	}
	return s[stage]
}

// Stages returns every known stage name in a stable order.
func Stages() []string {
	stages := make([]string, 0, len(stageFiles))
	for stage := range stageFiles {
		stages = append(stages, stage)
	}
	sort.Strings(stages)
	return stages
}

// Load reads every stage file under dir. A missing file yields "" for its
// stage; any other read failure is returned.
func Load(ctx context.Context, store storage.BlobStorage, dir string) (Set, error) {
	set := make(Set, len(stageFiles))
	for stage, file := range stageFiles {
		data, err := storage.ReadAll(ctx, store, path.Join(dir, file))
		if err != nil {
			if errors.Is(err, storage.ErrFileNotFound) {
				set[stage] = ""
				continue
			}
			return nil, fmt.Errorf("failed to load %s prompt: %w", stage, err)
		}
		set[stage] = string(data)
	}
	return set, nil
}

// Save writes every known stage of set under dir. Unknown keys are ignored.
func Save(ctx context.Context, store storage.BlobStorage, dir string, set Set) error {
	for _, stage := range Stages() {
		text, ok := set[stage]
		if !ok {
			continue
		}
		if err := store.Upload(ctx, path.Join(dir, stageFiles[stage]), bytes.NewReader([]byte(text))); err != nil {
			return fmt.Errorf("failed to save %s prompt: %w", stage, err)
		}
	}
	return nil
}

// ExportYAML renders the set as a single YAML document keyed by stage.
func ExportYAML(set Set) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(map[string]string(set)); err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode prompts: %w", err)
	}
	return buf.Bytes(), nil
}

// ImportYAML parses a bundle written by ExportYAML. Keys that are not known
// stages are rejected.
func ImportYAML(data []byte) (Set, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode prompts: %w", err)
	}
	set := make(Set, len(raw))
	for stage, text := range raw {
		if _, ok := stageFiles[stage]; !ok {
			return nil, fmt.Errorf("unknown prompt stage %q", stage)
		}
		set[stage] = text
	}
	return set, nil
}
