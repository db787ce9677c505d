package execution

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"vrt/internal/compare"
	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/domain"
	"vrt/internal/render"
)

// stubRenderer writes a fixed payload to the -o output path, except for
// inputs named *boom* which crash with exit code 9.
const stubRenderer = `#!/bin/sh
out=""
in=""
while [ $# -gt 0 ]; do
  case "$1" in
    -o) out="$2"; shift 2 ;;
    *.svg) in="$1"; shift ;;
    *) shift ;;
  esac
done
case "$in" in
  *boom*) echo "render crashed" >&2; exit 9 ;;
esac
printf 'rendered' > "$out"
`

// stubDiffTool compares the last two arguments byte for byte, like the
// real idiff it exits 0 on match and 1 on mismatch, and writes a diff
// image when called with -o.
const stubDiffTool = `#!/bin/sh
if [ "$1" = "-o" ]; then
  echo diff > "$2"
  exit 1
fi
for a in "$@"; do prev="$last"; last="$a"; done
if cmp -s "$prev" "$last"; then
  echo "RMS error = 0"
  exit 0
fi
echo "RMS error = 0.5"
exit 1
`

type fixture struct {
	cfg     *config.Config
	testDir string
	refDir  string
	pool    *WorkerPool
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	tmpDir := t.TempDir()

	writeExec := func(name, body string) string {
		path := filepath.Join(tmpDir, name)
		if err := os.WriteFile(path, []byte(body), 0755); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
		return path
	}

	testDir := filepath.Join(tmpDir, "cases")
	refDir := filepath.Join(testDir, "reference")
	outDir := filepath.Join(tmpDir, "output")
	for _, dir := range []string{testDir, refDir, outDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}

	cfg := config.New()
	cfg.Renderer = writeExec("blender", stubRenderer)
	cfg.DiffTool = writeExec("idiff", stubDiffTool)
	cfg.TestDir = testDir
	cfg.OutputDir = outDir
	cfg.ImportScript = writeExec("import_svg.py", "")
	cfg.Workers = 2
	cfg.CaseTimeout = time.Minute

	runner := render.NewRunner(cfg.CaseTimeout)
	comparator := compare.NewComparator(cfg)
	return &fixture{
		cfg:     cfg,
		testDir: testDir,
		refDir:  refDir,
		pool:    NewWorkerPool(cfg, runner, comparator),
	}
}

func (f *fixture) addCase(t *testing.T, name, refContent string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(f.testDir, name+".svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatalf("failed to write case %s: %v", name, err)
	}
	if refContent != "" {
		if err := os.WriteFile(filepath.Join(f.refDir, name+".png"), []byte(refContent), 0644); err != nil {
			t.Fatalf("failed to write reference %s: %v", name, err)
		}
	}
}

func (f *fixture) discover(t *testing.T) []domain.Case {
	t.Helper()
	scanner := discovery.NewScanner(f.cfg.InputExtensions, f.cfg.SkipDirs)
	cases, err := scanner.Scan(f.testDir, f.refDir)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	return cases
}

func TestWorkerPool_Execute_Scenario(t *testing.T) {
	// a renders matching its reference, b's reference differs, c has no
	// reference at all
	f := newFixture(t)
	f.addCase(t, "a", "rendered")
	f.addCase(t, "b", "different")
	f.addCase(t, "c", "")

	cases := f.discover(t)
	if len(cases) != 3 {
		t.Fatalf("expected 3 discovered cases, got %d", len(cases))
	}

	results, duration, err := f.pool.Execute(cases)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if duration <= 0 {
		t.Error("expected a positive duration")
	}

	if len(results) != 3 {
		t.Fatalf("expected exactly one result per case, got %d", len(results))
	}

	// Results follow discovery order, not completion order
	wantOrder := []string{"a.svg", "b.svg", "c.svg"}
	for i, want := range wantOrder {
		if results[i].Name != want {
			t.Errorf("result %d: expected %s, got %s", i, want, results[i].Name)
		}
	}

	if results[0].Status != domain.StatusPassed {
		t.Errorf("case a: expected passed, got %s", results[0].Status)
	}
	if results[1].Status != domain.StatusFailedDiff {
		t.Errorf("case b: expected failed_diff, got %s", results[1].Status)
	}
	if results[1].DiffScore != 0.5 {
		t.Errorf("case b: expected score 0.5, got %f", results[1].DiffScore)
	}
	if _, err := os.Stat(results[1].DiffPath); err != nil {
		t.Errorf("case b: expected diff artifact: %v", err)
	}
	if results[2].Status != domain.StatusMissingReference {
		t.Errorf("case c: expected missing_reference, got %s", results[2].Status)
	}

	report := domain.BuildReport("scenario", f.cfg.OutputDir, results, time.Now(), duration, f.cfg.Workers)
	if report.OverallOK() {
		t.Error("expected overall failure with b and c failing")
	}
}

func TestWorkerPool_Execute_BatchIsolation(t *testing.T) {
	// A crashing case must not prevent its siblings from running
	f := newFixture(t)
	f.addCase(t, "boom", "rendered")
	f.addCase(t, "steady1", "rendered")
	f.addCase(t, "steady2", "rendered")

	results, _, err := f.pool.Execute(f.discover(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	byName := make(map[string]domain.CaseResult)
	for _, r := range results {
		byName[r.Name] = r
	}

	crash := byName["boom.svg"]
	if crash.Status != domain.StatusFailedProcess {
		t.Errorf("expected failed_process for the crash, got %s", crash.Status)
	}
	if crash.ExitCode != 9 {
		t.Errorf("expected exit code 9, got %d", crash.ExitCode)
	}
	if crash.Stderr == "" {
		t.Error("expected a stderr excerpt for the crash")
	}

	for _, name := range []string{"steady1.svg", "steady2.svg"} {
		if byName[name].Status != domain.StatusPassed {
			t.Errorf("%s: expected passed despite sibling crash, got %s", name, byName[name].Status)
		}
	}
}

func TestWorkerPool_Execute_Sequential(t *testing.T) {
	f := newFixture(t)
	f.cfg.Sequential = true
	f.addCase(t, "a", "rendered")
	f.addCase(t, "b", "rendered")

	results, _, err := f.pool.Execute(f.discover(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, r := range results {
		if r.Status != domain.StatusPassed {
			t.Errorf("%s: expected passed, got %s", r.Name, r.Status)
		}
	}
}

func TestWorkerPool_Execute_NestedCases(t *testing.T) {
	f := newFixture(t)
	nested := filepath.Join(f.testDir, "complex")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(f.refDir, "complex"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(nested, "deep.svg"), []byte("<svg/>"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(f.refDir, "complex", "deep.png"), []byte("rendered"), 0644); err != nil {
		t.Fatal(err)
	}

	results, _, err := f.pool.Execute(f.discover(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Status != domain.StatusPassed {
		t.Errorf("nested case: expected passed, got %s (stderr %q)", results[0].Status, results[0].Stderr)
	}
	// Output mirrors the case's relative path under the output dir
	want := filepath.Join(f.cfg.OutputDir, "complex", "deep.png")
	if results[0].OutputPath != want {
		t.Errorf("expected output at %s, got %s", want, results[0].OutputPath)
	}
}

func TestWorkerPool_Execute_Empty(t *testing.T) {
	f := newFixture(t)
	results, duration, err := f.pool.Execute(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results != nil || duration != 0 {
		t.Error("expected no results for an empty batch")
	}
}
