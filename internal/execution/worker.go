package execution

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"vrt/internal/compare"
	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/domain"
	"vrt/internal/render"
	"vrt/internal/ui"
)

// job carries a case together with its discovery index so results land
// in their report slot regardless of completion order
type job struct {
	index int
	c     domain.Case
}

// WorkerPool runs cases through render and compare with bounded
// parallelism. Each case owns its invocation, subprocess and result
// slot; only the progress counters are shared.
type WorkerPool struct {
	config     *config.Config
	runner     *render.Runner
	comparator *compare.Comparator
	progress   *ui.ProgressBar
}

// NewWorkerPool creates a new WorkerPool
func NewWorkerPool(cfg *config.Config, runner *render.Runner, comparator *compare.Comparator) *WorkerPool {
	return &WorkerPool{
		config:     cfg,
		runner:     runner,
		comparator: comparator,
	}
}

// SetProgress sets the progress bar for the worker pool
func (wp *WorkerPool) SetProgress(progress *ui.ProgressBar) {
	wp.progress = progress
}

// Execute runs every case and returns exactly one result per case, in
// discovery order. A failing case never prevents the remaining cases
// from running.
func (wp *WorkerPool) Execute(cases []domain.Case) ([]domain.CaseResult, time.Duration, error) {
	if len(cases) == 0 {
		return nil, 0, nil
	}

	jobs := make(chan job, len(cases))
	for i, c := range cases {
		jobs <- job{index: i, c: c}
	}
	close(jobs)

	results := make([]domain.CaseResult, len(cases))

	var mu sync.Mutex
	var completed, passed, failed int
	startTime := time.Now()
	workerCount := wp.config.WorkerCount()

	var wg sync.WaitGroup
	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				result := wp.runCase(j.c)
				results[j.index] = result

				mu.Lock()
				completed++
				if result.Passed() {
					passed++
				} else {
					failed++
				}
				if wp.progress != nil {
					wp.progress.Update(completed, passed, failed)
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if wp.progress != nil {
		wp.progress.Finish()
	}
	return results, time.Since(startTime), nil
}

// runCase renders one case and compares the result. Every outcome,
// including harness mishaps local to this case, maps to a CaseResult.
func (wp *WorkerPool) runCase(c domain.Case) domain.CaseResult {
	started := time.Now()
	result := domain.CaseResult{Name: c.RelPath}
	finish := func(r domain.CaseResult) domain.CaseResult {
		r.Duration = time.Since(started)
		r.DurationMS = r.Duration.Milliseconds()
		return r
	}

	outputPath := filepath.Join(wp.config.OutputDir, discovery.ReplaceExt(c.RelPath, ".png"))
	result.OutputPath = outputPath

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		result.Status = domain.StatusFailedProcess
		result.ExitCode = -1
		result.Stderr = fmt.Sprintf("create output dir: %v", err)
		return finish(result)
	}

	importScript := wp.config.ImportScript
	if importScript == "" {
		importScript = render.DefaultImportScript(c.Path)
	}

	inv, err := render.NewInvocation(wp.config.Renderer, c.Path, outputPath, importScript, wp.config.Engine, wp.config.Format)
	if err != nil {
		result.Status = domain.StatusFailedProcess
		result.ExitCode = -1
		result.Stderr = err.Error()
		return finish(result)
	}

	if failure := wp.runner.Run(context.Background(), inv); failure != nil {
		result.Status = domain.StatusFailedProcess
		result.ExitCode = failure.ExitCode
		result.TimedOut = failure.TimedOut
		result.Stderr = failure.Stderr
		return finish(result)
	}

	if _, err := os.Stat(outputPath); err != nil {
		result.Status = domain.StatusFailedProcess
		result.ExitCode = -1
		result.Stderr = "renderer exited cleanly but produced no output image"
		return finish(result)
	}

	diffPath := filepath.Join(wp.config.OutputDir, discovery.ReplaceExt(c.RelPath, ".diff.png"))
	outcome := wp.comparator.Compare(context.Background(), outputPath, c.RefPath, diffPath)
	result.Status = outcome.Status
	result.DiffScore = outcome.Score
	result.DiffPath = outcome.DiffPath
	result.Stderr = outcome.Output
	return finish(result)
}
