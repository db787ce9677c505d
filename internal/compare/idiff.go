package compare

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"strconv"

	"vrt/internal/config"
	"vrt/internal/domain"
)

// rmsPattern extracts the difference score from idiff output, e.g.
// "  RMS error = 0.000319"
var rmsPattern = regexp.MustCompile(`RMS error\s*=\s*([0-9.eE+-]+)`)

// maxToolOutputBytes bounds the diff-tool output excerpt carried into a
// result when the tool misbehaves
const maxToolOutputBytes = 2048

// Outcome is the comparison verdict for one rendered image
type Outcome struct {
	Status   domain.CaseStatus
	Score    float64
	DiffPath string // Set when a diff visualization was written
	Output   string // Diff-tool output excerpt, set when the tool malfunctioned
}

// Comparator scores a rendered image against its reference using the
// external pixel-diff tool
type Comparator struct {
	cfg *config.Config
}

// NewComparator creates a new Comparator
func NewComparator(cfg *config.Config) *Comparator {
	return &Comparator{cfg: cfg}
}

// Compare invokes the diff tool on (reference, output). A missing
// reference is a harness configuration problem and reported as its own
// status, never as a render regression. On a failing diff a
// visualization image is written to diffPath.
//
// The tool exits 1 when the images differ and reports the score on
// stdout. Any other nonzero exit, or output with no parseable score, is
// a tool malfunction: the result still fails but carries a bounded
// excerpt of the tool's output instead of a fabricated zero score.
func (c *Comparator) Compare(ctx context.Context, output, ref, diffPath string) Outcome {
	if _, err := os.Stat(ref); err != nil {
		return Outcome{Status: domain.StatusMissingReference}
	}

	args := []string{
		"-fail", formatFloat(c.cfg.FailThreshold),
		"-failpercent", formatFloat(c.cfg.FailPercent),
	}
	if c.cfg.Pixelated {
		// No anti-aliasing tolerance for inherently aliased content:
		// a single pixel over the threshold fails the comparison
		args = append(args, "-hardfail", formatFloat(c.cfg.FailThreshold))
	}
	args = append(args, ref, output)

	cmd := exec.CommandContext(ctx, c.cfg.DiffTool, args...)
	out, err := cmd.CombinedOutput()
	score, scored := parseScore(string(out))

	if err == nil {
		return Outcome{Status: domain.StatusPassed, Score: score}
	}

	if exitCode(err) == 1 && scored {
		c.writeDiffImage(ctx, output, ref, diffPath)
		return Outcome{Status: domain.StatusFailedDiff, Score: score, DiffPath: diffPath}
	}

	return Outcome{
		Status: domain.StatusFailedDiff,
		Output: truncateToolOutput("diff tool malfunction: " + err.Error() + "\n" + string(out)),
	}
}

// writeDiffImage renders an amplified difference visualization. The tool
// exits nonzero here because the images differ, so the exit status is
// ignored.
func (c *Comparator) writeDiffImage(ctx context.Context, output, ref, diffPath string) {
	cmd := exec.CommandContext(ctx, c.cfg.DiffTool,
		"-o", diffPath,
		"-abs", "-scale", "16",
		ref, output,
	)
	_ = cmd.Run()
}

// parseScore extracts the RMS score from the tool output. The second
// return value reports whether a score was actually present.
func parseScore(out string) (float64, bool) {
	m := rmsPattern.FindStringSubmatch(out)
	if len(m) < 2 {
		return 0, false
	}
	score, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func truncateToolOutput(s string) string {
	if len(s) <= maxToolOutputBytes {
		return s
	}
	return s[:maxToolOutputBytes] + "\n... (truncated)"
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
