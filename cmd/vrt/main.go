package main

import (
	"fmt"
	"os"

	"vrt/internal/cli"
	"vrt/internal/cli/commands"
	"vrt/internal/config"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	// Create root command
	rootCmd := &cobra.Command{
		Use:     "vrt",
		Short:   "Visual regression test harness for an external renderer",
		Long:    `A visual regression test harness. Drives an external renderer over a directory of test scenes, compares each rendered image against a stored reference with a pixel-diff tool and reports pass/fail per case.`,
		Version: version,
	}

	// Create initial config with defaults
	cfg := config.New()

	// Create flags struct (will be populated by command flags)
	var flags cli.Flags

	// Create commands with dependencies
	cmds := commands.NewCommands(cfg)

	// Register all commands
	cmds.Register(rootCmd, &flags, cfg)

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
