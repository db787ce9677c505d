package config

import "time"

const (
	// DefaultEngine is the default render compute backend
	DefaultEngine = "CYCLES"
	// DefaultFormat is the default output image format
	DefaultFormat = "PNG"
	// DefaultWorkers is the default number of parallel workers
	DefaultWorkers = 4
	// DefaultCaseTimeout bounds a single renderer invocation
	DefaultCaseTimeout = 10 * time.Minute
	// DefaultFailThreshold is the idiff per-pixel failure threshold
	DefaultFailThreshold = 0.016
	// DefaultFailPercent is the idiff allowed failing-pixel percentage
	DefaultFailPercent = 1.0
	// DefaultReportFile is the report file name under the output directory
	DefaultReportFile = "report.json"
	// ReferenceDirName is the conventional reference-image directory name
	ReferenceDirName = "reference"
)

// DefaultInputExtensions are the file extensions recognized as test cases
var DefaultInputExtensions = []string{".svg"}

// DefaultSkipDirs are directory names skipped when scanning for test cases
var DefaultSkipDirs = []string{
	ReferenceDirName,
	"util",
	"output",
}
