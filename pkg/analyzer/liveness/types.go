package liveness

import (
	"time"

	"github.com/panbanda/livewalk/pkg/paint"
)

// ConfigField is a configuration field access found in a file.
type ConfigField struct {
	Name   string `json:"name" toon:"name"`
	Line   int    `json:"line" toon:"line"`
	Column int    `json:"column" toon:"column"`
	Known  bool   `json:"known" toon:"known"`
}

// FileResult is the walk of a single file.
type FileResult struct {
	Path             string             `json:"path" toon:"path"`
	Language         string             `json:"language" toon:"language"`
	Functions        int                `json:"functions" toon:"functions"`
	ConfigFields     []ConfigField      `json:"config_fields" toon:"config_fields"`
	BrokenConditions []string           `json:"broken_conditions" toon:"broken_conditions"`
	Annotations      []paint.Annotation `json:"annotations,omitempty" toon:"annotations,omitempty"`
	Summary          FileSummary        `json:"summary" toon:"summary"`

	recorder *paint.Recorder
}

// Recorder returns the paint calls recorded during the walk.
func (r *FileResult) Recorder() *paint.Recorder {
	return r.recorder
}

// FileSummary counts a file's painted ranges and lines per role.
type FileSummary struct {
	Ranges map[string]int `json:"ranges" toon:"ranges"`
	Lines  map[string]int `json:"lines" toon:"lines"`
}

// Analysis is the result of walking a set of files.
type Analysis struct {
	Files      []FileResult `json:"files" toon:"files"`
	Summary    Summary      `json:"summary" toon:"summary"`
	AnalyzedAt time.Time    `json:"analyzed_at" toon:"analyzed_at"`
}

// Summary aggregates every file of an analysis.
type Summary struct {
	TotalFiles       int            `json:"total_files" toon:"total_files"`
	TotalFunctions   int            `json:"total_functions" toon:"total_functions"`
	Ranges           map[string]int `json:"ranges" toon:"ranges"`
	Lines            map[string]int `json:"lines" toon:"lines"`
	BrokenConditions []string       `json:"broken_conditions" toon:"broken_conditions"` // unique, sorted
	ConfigFields     []string       `json:"config_fields" toon:"config_fields"`         // unique, sorted
	UnknownFields    []string       `json:"unknown_fields,omitempty" toon:"unknown_fields,omitempty"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		Ranges:           make(map[string]int),
		Lines:            make(map[string]int),
		BrokenConditions: []string{},
		ConfigFields:     []string{},
	}
}
