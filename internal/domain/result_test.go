package domain

import (
	"testing"
	"time"
)

func TestReport_OverallOK(t *testing.T) {
	results := []CaseResult{
		{Name: "a.svg", Status: StatusPassed},
		{Name: "b.svg", Status: StatusPassed},
		{Name: "c.svg", Status: StatusPassed},
	}

	t.Run("all passed", func(t *testing.T) {
		report := BuildReport("suite", "/out", results, time.Now(), time.Second, 4)
		if !report.OverallOK() {
			t.Error("expected overall OK when every case passed")
		}
	})

	t.Run("flipping any single case flips overall", func(t *testing.T) {
		failing := []CaseStatus{StatusFailedDiff, StatusFailedProcess, StatusMissingReference}
		for i := range results {
			flipped := make([]CaseResult, len(results))
			copy(flipped, results)
			flipped[i].Status = failing[i%len(failing)]
			report := BuildReport("suite", "/out", flipped, time.Now(), time.Second, 4)
			if report.OverallOK() {
				t.Errorf("expected overall failure when case %d is %s", i, flipped[i].Status)
			}
		}
	})

	t.Run("empty run is OK", func(t *testing.T) {
		report := BuildReport("suite", "/out", nil, time.Now(), 0, 1)
		if !report.OverallOK() {
			t.Error("expected empty run to be OK")
		}
	})
}

func TestBuildReport_Counts(t *testing.T) {
	started := time.Now()
	results := []CaseResult{
		{Name: "a.svg", Status: StatusPassed},
		{Name: "b.svg", Status: StatusFailedDiff, DiffScore: 0.5},
		{Name: "c.svg", Status: StatusMissingReference},
		{Name: "d.svg", Status: StatusFailedProcess, ExitCode: 1},
	}

	report := BuildReport("io_curve_svg", "/out", results, started, 2*time.Second, 2)

	if report.Meta.TotalCases != 4 {
		t.Errorf("expected 4 total cases, got %d", report.Meta.TotalCases)
	}
	if report.Meta.Passed != 1 {
		t.Errorf("expected 1 passed, got %d", report.Meta.Passed)
	}
	if report.Meta.FailedDiff != 1 || report.Meta.FailedProcess != 1 || report.Meta.MissingReference != 1 {
		t.Errorf("unexpected failure counts: %+v", report.Meta)
	}
	if report.Meta.DurationSeconds != 2 {
		t.Errorf("expected 2s duration, got %f", report.Meta.DurationSeconds)
	}

	// Order must follow the input order, not outcome
	for i, want := range []string{"a.svg", "b.svg", "c.svg", "d.svg"} {
		if report.Results[i].Name != want {
			t.Errorf("result %d: expected %s, got %s", i, want, report.Results[i].Name)
		}
	}

	failing := report.Failing()
	if len(failing) != 3 {
		t.Fatalf("expected 3 failing indexes, got %d", len(failing))
	}
}

func TestCaseResult_Reason(t *testing.T) {
	tests := []struct {
		name   string
		result CaseResult
		want   string
	}{
		{"diff", CaseResult{Status: StatusFailedDiff}, "image difference above threshold"},
		{"timeout", CaseResult{Status: StatusFailedProcess, TimedOut: true}, "renderer timed out"},
		{"crash", CaseResult{Status: StatusFailedProcess, ExitCode: 11}, "renderer process failed"},
		{"missing ref", CaseResult{Status: StatusMissingReference}, "reference image missing"},
		{"passed", CaseResult{Status: StatusPassed}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.result.Reason(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
