package reconciler

import (
	"time"
)

// Result represents the outcome of a reconciliation run.
type Result struct {
	Layout Layout `json:"layout" yaml:"layout"`
	DryRun bool   `json:"dry_run" yaml:"dry_run"`

	// Prior state
	PersonsLoaded int `json:"persons_loaded" yaml:"persons_loaded"`
	EntriesLoaded int `json:"entries_loaded" yaml:"entries_loaded"`

	// This run
	PersonsCreated  int `json:"persons_created" yaml:"persons_created"`
	EntriesAdded    int `json:"entries_added" yaml:"entries_added"`
	EntriesSkipped  int `json:"entries_skipped" yaml:"entries_skipped"`
	EntriesReplaced int `json:"entries_replaced" yaml:"entries_replaced"`

	// Files
	FilesFound     int           `json:"files_found" yaml:"files_found"`
	FilesProcessed int           `json:"files_processed" yaml:"files_processed"`
	FilesSkipped   []SkippedFile `json:"files_skipped,omitempty" yaml:"files_skipped,omitempty"`
	Written        []string      `json:"written,omitempty" yaml:"written,omitempty"`

	// Totals after the run
	PersonsTotal int `json:"persons_total" yaml:"persons_total"`

	StartTime time.Time     `json:"start_time" yaml:"start_time"`
	Duration  time.Duration `json:"duration" yaml:"duration"`
}

// SkippedFile records a source table skipped because of a file-scoped error.
type SkippedFile struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// IsClean returns true if no source file was skipped.
func (r *Result) IsClean() bool {
	return len(r.FilesSkipped) == 0
}

// HasChanges returns true if the run accepted or replaced any fact or
// created any person.
func (r *Result) HasChanges() bool {
	return r.PersonsCreated > 0 || r.EntriesAdded > 0 || r.EntriesReplaced > 0
}
