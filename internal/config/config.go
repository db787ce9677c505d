package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the harness
type Config struct {
	// External tools
	Renderer string
	DiffTool string

	// Directories
	TestDir   string
	RefDir    string
	OutputDir string

	// Render settings
	Engine       string
	Format       string
	ImportScript string
	Suite        string

	// Execution settings
	Workers     int
	Sequential  bool
	CaseTimeout time.Duration

	// Comparison settings
	FailThreshold float64
	FailPercent   float64
	Pixelated     bool

	// Discovery settings
	InputExtensions []string
	SkipDirs        []string

	// Command flags
	Flags Flags
}

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

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		Engine:        DefaultEngine,
		Format:        DefaultFormat,
		Workers:       DefaultWorkers,
		CaseTimeout:   DefaultCaseTimeout,
		FailThreshold: DefaultFailThreshold,
		FailPercent:   DefaultFailPercent,
	}
	cfg.InputExtensions = make([]string, len(DefaultInputExtensions))
	copy(cfg.InputExtensions, DefaultInputExtensions)
	cfg.SkipDirs = make([]string, len(DefaultSkipDirs))
	copy(cfg.SkipDirs, DefaultSkipDirs)
	cfg.loadEnv()
	return cfg
}

// loadEnv applies overrides from an optional .env file and the environment.
func (c *Config) loadEnv() {
	// Missing .env is fine, the environment may already be set
	_ = godotenv.Load(".env")

	if v := os.Getenv("VRT_FAIL_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.FailThreshold = f
		}
	}
	if v := os.Getenv("VRT_FAIL_PERCENT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.FailPercent = f
		}
	}
}

// Apply copies parsed command flags into the config
func (c *Config) Apply(flags Flags) {
	c.Flags = flags

	c.Renderer = flags.Renderer
	c.DiffTool = flags.DiffTool
	c.TestDir = flags.TestDir
	c.OutputDir = flags.OutputDir
	c.RefDir = flags.RefDir
	c.ImportScript = flags.ImportScript
	c.Suite = flags.Suite
	c.Sequential = flags.Sequential
	c.Pixelated = flags.Pixelated

	if flags.Engine != "" {
		c.Engine = flags.Engine
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.CaseTimeout > 0 {
		c.CaseTimeout = flags.CaseTimeout
	}
	if flags.FailThreshold > 0 {
		c.FailThreshold = flags.FailThreshold
	}
	if flags.FailPercent > 0 {
		c.FailPercent = flags.FailPercent
	}
}

// GetRefDir returns the reference-image root, defaulting to the
// conventional "reference" directory inside the test directory.
func (c *Config) GetRefDir() string {
	if c.RefDir != "" {
		return c.RefDir
	}
	return filepath.Join(c.TestDir, ReferenceDirName)
}

// GetSuite returns the suite name, derived from the test directory
// when not set explicitly.
func (c *Config) GetSuite() string {
	if c.Suite != "" {
		return c.Suite
	}
	return filepath.Base(filepath.Clean(c.TestDir))
}

// GetReportPath returns the full path to the report file.
// Resolves to an absolute path so run and failures always read/write the
// same file regardless of cwd.
func (c *Config) GetReportPath() string {
	p := filepath.Join(c.OutputDir, DefaultReportFile)
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

// WorkerCount returns the effective number of workers for a run.
func (c *Config) WorkerCount() int {
	if c.Sequential {
		return 1
	}
	if c.Workers <= 0 {
		return 1
	}
	return c.Workers
}
