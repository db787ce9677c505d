package render

import (
	"fmt"
	"path/filepath"
	"strconv"
)

// Invocation is the fully determined command line for rendering one test
// case. Built once per case and discarded after the subprocess completes.
type Invocation struct {
	Renderer     string // Path to the renderer executable
	Input        string // Test case input file
	Output       string // Output image path
	Engine       string // Compute backend, e.g. CYCLES
	Format       string // Output image format, e.g. PNG
	ImportScript string // Script performing the format-specific import
	Frame        int    // Frame to render
}

// NewInvocation builds a validated Invocation. Engine, format and frame
// receive defaults when zero.
func NewInvocation(renderer, input, output, importScript, engine, format string) (Invocation, error) {
	if renderer == "" {
		return Invocation{}, fmt.Errorf("invocation: renderer path is required")
	}
	if input == "" {
		return Invocation{}, fmt.Errorf("invocation: input file is required")
	}
	if output == "" {
		return Invocation{}, fmt.Errorf("invocation: output path is required")
	}
	if importScript == "" {
		return Invocation{}, fmt.Errorf("invocation: import script is required")
	}
	if engine == "" {
		engine = "CYCLES"
	}
	if format == "" {
		format = "PNG"
	}
	return Invocation{
		Renderer:     renderer,
		Input:        input,
		Output:       output,
		Engine:       engine,
		Format:       format,
		ImportScript: importScript,
		Frame:        1,
	}, nil
}

// Args returns the renderer argument vector. The renderer runs headless
// with factory settings, aborts on any internal error, loads the input
// file, executes the import script and renders exactly one frame.
func (inv Invocation) Args() []string {
	return []string{
		"--background",
		"-noaudio",
		"--factory-startup",
		"--enable-autoexec",
		"--debug-memory",
		"--debug-exit-on-error",
		inv.Input,
		"-E", inv.Engine,
		"-o", inv.Output,
		"-F", inv.Format,
		"--python", inv.ImportScript,
		"-f", strconv.Itoa(inv.Frame),
	}
}

// DefaultImportScript returns the conventional import script location for
// a case file: the util directory two levels above it.
func DefaultImportScript(casePath string) string {
	basedir := filepath.Dir(filepath.Dir(casePath))
	return filepath.Join(basedir, "util", "import_svg.py")
}
