// Package config defines the dialognorm configuration structure.
package config

//go:generate go run ../tools/schema-generator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LabelSet is the literal speaker cue pair for one locale. Cues are given
// without the trailing separator; the label registry compiles them into
// formatting-tolerant patterns.
type LabelSet struct {
	Learner string `yaml:"learner"`
	Bot     string `yaml:"bot"`
}

// WeekConfig holds per-week overrides for one student.
type WeekConfig struct {
	// Tasks is the expected task count for this week's document.
	Tasks int    `yaml:"tasks,omitempty"`
	Notes string `yaml:"notes,omitempty"`
}

// StudentConfig holds per-student overrides.
type StudentConfig struct {
	// LabelSet selects which locale's cues this student's documents use.
	LabelSet string             `yaml:"label_set,omitempty"`
	Weeks    map[int]WeekConfig `yaml:"weeks,omitempty"`
	Notes    string             `yaml:"notes,omitempty"`
}

// Defaults apply when no per-student or per-week override exists.
type Defaults struct {
	LabelSet     string `yaml:"label_set,omitempty"`
	TasksPerWeek int    `yaml:"tasks_per_week,omitempty"`
	// SkipKeywords mark unavailable sections; matching lines are filtered
	// out of blocks during normalization.
	SkipKeywords []string `yaml:"skip_keywords,omitempty"`
}

// SegmentationConfig tunes the segmentation heuristics.
type SegmentationConfig struct {
	// ContinuationMaxLen is the line length below which a non-uppercase-start
	// line merges into the previous block during blank-line segmentation.
	ContinuationMaxLen int `yaml:"continuation_max_len,omitempty"`
	// MinBlockLen discards shorter letterless blocks as layout noise.
	MinBlockLen int `yaml:"min_block_len,omitempty"`
}

// Config is the top-level configuration structure for dialognorm.
type Config struct {
	// RawDir holds the source documents named #<student>. Week<week>.<ext>.
	RawDir string `yaml:"raw_dir,omitempty"`
	// ExtractedDir holds the pre-extracted text and color sidecars produced
	// by the external extraction tool.
	ExtractedDir string `yaml:"extracted_dir,omitempty"`
	// ProcessedDir receives the dialogue artifacts.
	ProcessedDir string `yaml:"processed_dir,omitempty"`

	Defaults  Defaults              `yaml:"defaults,omitempty"`
	LabelSets map[string]LabelSet   `yaml:"label_sets,omitempty"`
	Students  map[int]StudentConfig `yaml:"students,omitempty"`

	// ColorRoles maps text colors to speaker roles for color-coded
	// documents. Empty enables the per-document first-color-is-learner
	// convention.
	ColorRoles map[string]string `yaml:"color_roles,omitempty"`

	// LegacySchema emits artifacts as a flat turn array without the
	// metadata envelope.
	LegacySchema bool `yaml:"legacy_schema,omitempty"`

	Segmentation SegmentationConfig `yaml:"segmentation,omitempty"`

	// Workers bounds how many documents are processed concurrently.
	Workers int `yaml:"workers,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		RawDir:       "data/raw",
		ExtractedDir: "data/extracted_text",
		ProcessedDir: "data/processed",
		Defaults: Defaults{
			LabelSet:     "en",
			TasksPerWeek: 3,
		},
		Workers: 4,
	}
}

// Load reads a YAML config file, filling unset fields from defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// ExpectedTasks resolves the expected task count for one (student, week).
func (c *Config) ExpectedTasks(student, week int) int {
	if sc, ok := c.Students[student]; ok {
		if wc, ok := sc.Weeks[week]; ok && wc.Tasks > 0 {
			return wc.Tasks
		}
	}
	if c.Defaults.TasksPerWeek > 0 {
		return c.Defaults.TasksPerWeek
	}
	return 3
}

// LocaleFor resolves the label-set locale for one student.
func (c *Config) LocaleFor(student int) string {
	if sc, ok := c.Students[student]; ok && sc.LabelSet != "" {
		return sc.LabelSet
	}
	return c.Defaults.LabelSet
}
