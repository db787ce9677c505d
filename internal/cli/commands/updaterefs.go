package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/domain"
	"vrt/internal/render"
	"vrt/internal/ui"
)

// UpdateRefsCommand re-renders cases and promotes the outputs to
// reference images. Meant for intended rendering changes, after which
// the new images become the ground truth.
type UpdateRefsCommand struct {
	config  *config.Config
	scanner *discovery.Scanner
	filter  *discovery.Filter
	runner  *render.Runner
}

// NewUpdateRefsCommand creates a new UpdateRefsCommand
func NewUpdateRefsCommand(cfg *config.Config, scanner *discovery.Scanner, filter *discovery.Filter, runner *render.Runner) *UpdateRefsCommand {
	return &UpdateRefsCommand{
		config:  cfg,
		scanner: scanner,
		filter:  filter,
		runner:  runner,
	}
}

// Execute runs the command
func (uc *UpdateRefsCommand) Execute(cmd *cobra.Command, args []string) error {
	if err := preflight(uc.config, false); err != nil {
		return err
	}

	cases, err := uc.scanner.Scan(uc.config.TestDir, uc.config.GetRefDir())
	if err != nil {
		return err
	}
	cases = uc.filter.FilterByName(cases, uc.config.Flags.NameFilter)

	if len(cases) == 0 {
		color.Yellow("No test cases found")
		return nil
	}

	progressBar := ui.NewProgressBar(len(cases))
	var failed []string
	for i, c := range cases {
		if err := uc.updateCase(c); err != nil {
			failed = append(failed, fmt.Sprintf("%s: %v", c.RelPath, err))
			progressBar.Update(i+1, i+1-len(failed), len(failed))
			continue
		}
		progressBar.Update(i+1, i+1-len(failed), len(failed))
	}
	progressBar.Finish()

	updated := len(cases) - len(failed)
	color.Green("✓ Updated %d reference image(s)", updated)
	if len(failed) > 0 {
		color.Red("✗ %d case(s) could not be updated:", len(failed))
		for _, f := range failed {
			color.Red("  %s", f)
		}
		return fmt.Errorf("%d of %d reference update(s) failed", len(failed), len(cases))
	}
	return nil
}

// updateCase renders one case and copies the output over its reference.
func (uc *UpdateRefsCommand) updateCase(c domain.Case) error {
	outputPath := filepath.Join(uc.config.OutputDir, discovery.ReplaceExt(c.RelPath, ".png"))
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	importScript := uc.config.ImportScript
	if importScript == "" {
		importScript = render.DefaultImportScript(c.Path)
	}

	inv, err := render.NewInvocation(uc.config.Renderer, c.Path, outputPath, importScript, uc.config.Engine, uc.config.Format)
	if err != nil {
		return err
	}

	if failure := uc.runner.Run(context.Background(), inv); failure != nil {
		if failure.TimedOut {
			return fmt.Errorf("renderer timed out")
		}
		return fmt.Errorf("renderer exited with code %d", failure.ExitCode)
	}

	if err := os.MkdirAll(filepath.Dir(c.RefPath), 0755); err != nil {
		return fmt.Errorf("create reference dir: %w", err)
	}
	return copyFile(outputPath, c.RefPath)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
