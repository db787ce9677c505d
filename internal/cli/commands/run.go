package commands

import (
	"fmt"
	"os"
	"time"

	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/domain"
	"vrt/internal/execution"
	"vrt/internal/history"
	"vrt/internal/storage"
	"vrt/internal/ui"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// RunCommand handles the run command
type RunCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	executor  *execution.WorkerPool
	storage   storage.Storage
	formatter *ui.Formatter
	viewer    *ui.FailureViewer
	recorder  *history.Recorder
}

// NewRunCommand creates a new RunCommand
func NewRunCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	executor *execution.WorkerPool,
	st storage.Storage,
	formatter *ui.Formatter,
	viewer *ui.FailureViewer,
	recorder *history.Recorder,
) *RunCommand {
	return &RunCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		executor:  executor,
		storage:   st,
		formatter: formatter,
		viewer:    viewer,
		recorder:  recorder,
	}
}

// Execute runs the command
func (rc *RunCommand) Execute(cmd *cobra.Command, args []string) error {
	// Harness-fatal checks happen before any case executes
	if err := preflight(rc.config, true); err != nil {
		return err
	}

	// Discover cases
	cases, err := rc.scanner.Scan(rc.config.TestDir, rc.config.GetRefDir())
	if err != nil {
		return err
	}

	// Filter cases
	cases = rc.filter.FilterByName(cases, rc.config.Flags.NameFilter)

	if len(cases) == 0 {
		color.Yellow("No test cases to run")
		return nil
	}

	// Create and set progress bar
	progressBar := ui.NewProgressBar(len(cases))
	rc.executor.SetProgress(progressBar)

	// Render and compare
	started := time.Now()
	results, duration, err := rc.executor.Execute(cases)
	if err != nil {
		return err
	}

	report := domain.BuildReport(rc.config.GetSuite(), rc.config.OutputDir, results, started, duration, rc.config.WorkerCount())

	// Persist the report
	if err := rc.storage.Save(report); err != nil {
		return fmt.Errorf("failed to save report: %w", err)
	}

	// Record run history when configured
	if rc.recorder.Enabled() {
		if err := rc.recorder.Record(report); err != nil {
			color.Yellow("warning: run history not recorded: %v", err)
		}
	}

	// Print summary
	rc.formatter.PrintSummary(report)

	if report.OverallOK() {
		return nil
	}

	if rc.config.Flags.ViewFailures {
		if err := rc.viewer.View(report); err != nil {
			return err
		}
	}

	failed := report.Meta.TotalCases - report.Meta.Passed
	return fmt.Errorf("%d of %d case(s) failed", failed, report.Meta.TotalCases)
}

// preflight validates the run environment. Any failure here invalidates
// the entire run and is reported once, before per-case results exist.
func preflight(cfg *config.Config, needDiffTool bool) error {
	if err := checkExecutable("renderer", cfg.Renderer); err != nil {
		return err
	}
	if needDiffTool {
		if err := checkExecutable("diff tool", cfg.DiffTool); err != nil {
			return err
		}
	}
	info, err := os.Stat(cfg.TestDir)
	if err != nil {
		return fmt.Errorf("test directory does not exist: %s", cfg.TestDir)
	}
	if !info.IsDir() {
		return fmt.Errorf("test path is not a directory: %s", cfg.TestDir)
	}
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("cannot create output directory %s: %w", cfg.OutputDir, err)
	}
	return nil
}

func checkExecutable(role, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s not found: %s", role, path)
	}
	if info.IsDir() {
		return fmt.Errorf("%s path is a directory: %s", role, path)
	}
	return nil
}
