package commands

import (
	"vrt/internal/cli"
	"vrt/internal/compare"
	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/execution"
	"vrt/internal/history"
	"vrt/internal/render"
	"vrt/internal/storage"
	"vrt/internal/ui"

	"github.com/spf13/cobra"
)

// Commands holds all CLI commands
type Commands struct {
	Run        *RunCommand
	List       *ListCommand
	Failures   *FailuresCommand
	UpdateRefs *UpdateRefsCommand
}

// NewCommands creates all commands with dependencies
func NewCommands(cfg *config.Config) *Commands {
	// Initialize dependencies
	scanner := discovery.NewScanner(cfg.InputExtensions, cfg.SkipDirs)
	filter := discovery.NewFilter()
	runner := render.NewRunner(cfg.CaseTimeout)
	comparator := compare.NewComparator(cfg)
	executor := execution.NewWorkerPool(cfg, runner, comparator)
	jsonStorage := storage.NewJSONStorage(cfg)
	formatter := ui.NewFormatter(cfg)
	viewer := ui.NewFailureViewer(cfg, jsonStorage)
	recorder := history.NewRecorder()

	return &Commands{
		Run:        NewRunCommand(cfg, scanner, filter, executor, jsonStorage, formatter, viewer, recorder),
		List:       NewListCommand(cfg, scanner, filter, formatter),
		Failures:   NewFailuresCommand(cfg, jsonStorage, viewer),
		UpdateRefs: NewUpdateRefsCommand(cfg, scanner, filter, runner),
	}
}

// Register registers all commands with cobra
func (c *Commands) Register(rootCmd *cobra.Command, flags *cli.Flags, cfg *config.Config) {
	applyFlags := func(cmd *cobra.Command, args []string) error {
		// Update config with flags after parsing
		cfg.Apply(flags.ToConfigFlags())
		return nil
	}

	addToolFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVar(&flags.Renderer, "renderer", "", "Path to the external renderer executable")
		cmd.Flags().StringVar(&flags.TestDir, "test-dir", "", "Root directory containing test case input files")
		cmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Destination for rendered images and the report")
		cmd.Flags().StringVar(&flags.RefDir, "reference-dir", "", "Reference image root (default: <test-dir>/reference)")
		cmd.Flags().StringVar(&flags.ImportScript, "import-script", "", "Import script passed to the renderer (default: <test-dir's parent>/util/import_svg.py per case)")
		cmd.Flags().StringVar(&flags.Engine, "engine", "", "Render compute backend (default CYCLES)")
		cmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by name pattern (supports wildcards, e.g. '*circle*')")
		cmd.Flags().IntVarP(&flags.Workers, "workers", "p", 0, "Number of parallel workers")
		cmd.Flags().BoolVar(&flags.Sequential, "sequential", false, "Run cases one at a time")
		cmd.Flags().DurationVar(&flags.CaseTimeout, "case-timeout", 0, "Per-case renderer timeout")
		cmd.MarkFlagRequired("renderer")
		cmd.MarkFlagRequired("test-dir")
		cmd.MarkFlagRequired("output-dir")
	}

	// Run command
	runCmd := &cobra.Command{
		Use:     "run",
		Short:   "Run render test cases and compare against references",
		Long:    "Discover test cases, render each with the external renderer, compare the output images against stored references and produce a report",
		RunE:    c.Run.Execute,
		PreRunE: applyFlags,
	}
	addToolFlags(runCmd)
	runCmd.Flags().StringVar(&flags.DiffTool, "diff-tool", "", "Path to the external pixel-difference executable")
	runCmd.Flags().StringVar(&flags.Suite, "suite", "", "Suite name for the report (default: test dir name)")
	runCmd.Flags().BoolVar(&flags.Pixelated, "pixelated", false, "Compare without anti-aliasing tolerance (for inherently aliased content)")
	runCmd.Flags().Float64Var(&flags.FailThreshold, "fail-threshold", 0, "Per-pixel difference failure threshold")
	runCmd.Flags().Float64Var(&flags.FailPercent, "fail-percent", 0, "Allowed percentage of failing pixels")
	runCmd.Flags().BoolVar(&flags.ViewFailures, "view-failures", false, "Open the failures viewer when the run finishes with failures")
	runCmd.MarkFlagRequired("diff-tool")
	rootCmd.AddCommand(runCmd)

	// List command
	listCmd := &cobra.Command{
		Use:     "list",
		Short:   "List discovered test cases",
		Long:    "Scan and list all test cases without rendering them",
		RunE:    c.List.Execute,
		PreRunE: applyFlags,
	}
	listCmd.Flags().StringVar(&flags.TestDir, "test-dir", "", "Root directory containing test case input files")
	listCmd.Flags().StringVar(&flags.RefDir, "reference-dir", "", "Reference image root (default: <test-dir>/reference)")
	listCmd.Flags().StringVarP(&flags.NameFilter, "filter", "f", "", "Filter cases by name pattern (supports wildcards)")
	listCmd.MarkFlagRequired("test-dir")
	rootCmd.AddCommand(listCmd)

	// Failures command
	failuresCmd := &cobra.Command{
		Use:     "failures",
		Short:   "View failing cases interactively",
		Long:    "Display failing cases from the last run in an interactive viewer",
		RunE:    c.Failures.Execute,
		PreRunE: applyFlags,
	}
	failuresCmd.Flags().StringVar(&flags.OutputDir, "output-dir", "", "Output directory holding the report of the last run")
	failuresCmd.MarkFlagRequired("output-dir")
	rootCmd.AddCommand(failuresCmd)

	// Update references command
	updateRefsCmd := &cobra.Command{
		Use:     "update-refs",
		Short:   "Re-render cases and promote outputs to reference images",
		Long:    "Render every discovered case and copy the freshly rendered images over the stored references. Use after an intended rendering change.",
		RunE:    c.UpdateRefs.Execute,
		PreRunE: applyFlags,
	}
	addToolFlags(updateRefsCmd)
	rootCmd.AddCommand(updateRefsCmd)
}
