package cli

import (
	"time"

	"vrt/internal/config"
)

// Flags holds command-line flags
type Flags struct {
	Renderer      string
	TestDir       string
	DiffTool      string
	OutputDir     string
	RefDir        string
	ImportScript  string
	Suite         string
	Engine        string
	NameFilter    string
	Workers       int
	Sequential    bool
	Pixelated     bool
	ViewFailures  bool
	FailThreshold float64
	FailPercent   float64
	CaseTimeout   time.Duration
}

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Renderer:      f.Renderer,
		TestDir:       f.TestDir,
		DiffTool:      f.DiffTool,
		OutputDir:     f.OutputDir,
		RefDir:        f.RefDir,
		ImportScript:  f.ImportScript,
		Suite:         f.Suite,
		Engine:        f.Engine,
		NameFilter:    f.NameFilter,
		Workers:       f.Workers,
		Sequential:    f.Sequential,
		Pixelated:     f.Pixelated,
		ViewFailures:  f.ViewFailures,
		FailThreshold: f.FailThreshold,
		FailPercent:   f.FailPercent,
		CaseTimeout:   f.CaseTimeout,
	}
}
