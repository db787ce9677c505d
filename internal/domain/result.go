package domain

import "time"

// CaseStatus classifies the outcome of a single test case.
type CaseStatus string

const (
	// StatusPassed means the rendered image matched its reference.
	StatusPassed CaseStatus = "passed"
	// StatusFailedDiff means the diff score exceeded the threshold.
	StatusFailedDiff CaseStatus = "failed_diff"
	// StatusFailedProcess means the renderer exited nonzero, crashed or timed out.
	StatusFailedProcess CaseStatus = "failed_process"
	// StatusMissingReference means no reference image exists for the case.
	StatusMissingReference CaseStatus = "missing_reference"
)

// CaseResult represents the outcome of running one test case
type CaseResult struct {
	Name       string        `json:"name"`                  // Report key (relative path of the input)
	Status     CaseStatus    `json:"status"`
	DiffScore  float64       `json:"diff_score,omitempty"`  // Set for passed and failed_diff
	ExitCode   int           `json:"exit_code,omitempty"`   // Set for failed_process
	TimedOut   bool          `json:"timed_out,omitempty"`
	Stderr     string        `json:"stderr,omitempty"`      // Bounded output excerpt from the failing tool
	OutputPath string        `json:"output_path,omitempty"` // Rendered image
	DiffPath   string        `json:"diff_path,omitempty"`   // Diff visualization for failed_diff
	Duration   time.Duration `json:"-"`
	DurationMS int64         `json:"duration_ms"`
	Reviewed   bool          `json:"reviewed,omitempty"` // Track if failure is marked as reviewed
}

// Passed reports whether the case succeeded.
func (r CaseResult) Passed() bool {
	return r.Status == StatusPassed
}

// Reason returns a short human-readable description of a failure.
func (r CaseResult) Reason() string {
	switch r.Status {
	case StatusFailedDiff:
		return "image difference above threshold"
	case StatusFailedProcess:
		if r.TimedOut {
			return "renderer timed out"
		}
		return "renderer process failed"
	case StatusMissingReference:
		return "reference image missing"
	}
	return ""
}

// ReportMeta contains metadata about a test run
type ReportMeta struct {
	Suite            string  `json:"suite"`
	OutputDir        string  `json:"output_dir"`
	TotalCases       int     `json:"total_cases"`
	Passed           int     `json:"passed"`
	FailedDiff       int     `json:"failed_diff"`
	FailedProcess    int     `json:"failed_process"`
	MissingReference int     `json:"missing_reference"`
	Duration         string  `json:"duration"`
	DurationSeconds  float64 `json:"duration_seconds"`
	Workers          int     `json:"workers"`
	StartedAt        string  `json:"started_at"`
	FinishedAt       string  `json:"finished_at"`
}

// Report is the complete output structure for a test run
type Report struct {
	Meta    ReportMeta   `json:"meta"`
	Results []CaseResult `json:"results"`
}

// BuildReport assembles the final report from per-case results.
// Results keep their discovery order.
func BuildReport(suite, outputDir string, results []CaseResult, started time.Time, duration time.Duration, workers int) *Report {
	meta := ReportMeta{
		Suite:           suite,
		OutputDir:       outputDir,
		TotalCases:      len(results),
		Duration:        duration.String(),
		DurationSeconds: duration.Seconds(),
		Workers:         workers,
		StartedAt:       started.Format(time.RFC3339),
		FinishedAt:      started.Add(duration).Format(time.RFC3339),
	}
	for _, r := range results {
		switch r.Status {
		case StatusPassed:
			meta.Passed++
		case StatusFailedDiff:
			meta.FailedDiff++
		case StatusFailedProcess:
			meta.FailedProcess++
		case StatusMissingReference:
			meta.MissingReference++
		}
	}
	return &Report{Meta: meta, Results: results}
}

// OverallOK reports whether every case passed. An empty run is OK.
func (r *Report) OverallOK() bool {
	for _, res := range r.Results {
		if !res.Passed() {
			return false
		}
	}
	return true
}

// Failing returns the indexes of failing results, in report order.
func (r *Report) Failing() []int {
	var failing []int
	for i, res := range r.Results {
		if !res.Passed() {
			failing = append(failing, i)
		}
	}
	return failing
}
