package commands

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"vrt/internal/config"
	"vrt/internal/discovery"
	"vrt/internal/ui"
)

// ListCommand handles the list command
type ListCommand struct {
	config    *config.Config
	scanner   *discovery.Scanner
	filter    *discovery.Filter
	formatter *ui.Formatter
}

// NewListCommand creates a new ListCommand
func NewListCommand(
	cfg *config.Config,
	scanner *discovery.Scanner,
	filter *discovery.Filter,
	formatter *ui.Formatter,
) *ListCommand {
	return &ListCommand{
		config:    cfg,
		scanner:   scanner,
		filter:    filter,
		formatter: formatter,
	}
}

// Execute runs the command
func (lc *ListCommand) Execute(cmd *cobra.Command, args []string) error {
	cases, err := lc.scanner.Scan(lc.config.TestDir, lc.config.GetRefDir())
	if err != nil {
		return err
	}

	// Filter cases
	cases = lc.filter.FilterByName(cases, lc.config.Flags.NameFilter)

	if len(cases) == 0 {
		color.Yellow("No test cases found")
		return nil
	}

	lc.formatter.PrintCaseList(cases)
	return nil
}
