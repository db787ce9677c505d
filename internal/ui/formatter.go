package ui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"

	"vrt/internal/config"
	"vrt/internal/domain"
)

// Formatter formats and displays run output
type Formatter struct {
	config *config.Config
}

// NewFormatter creates a new Formatter
func NewFormatter(cfg *config.Config) *Formatter {
	return &Formatter{config: cfg}
}

// PrintSummary displays the run statistics table and, when cases failed,
// a tree of the failing cases with their reasons.
func (f *Formatter) PrintSummary(report *domain.Report) {
	meta := report.Meta

	// Print header
	fmt.Print("\n")
	color.Cyan("╔═══════════════════════════════════════════════════════════════╗")
	color.Cyan("║                 Render Test Run: %-28s ║", truncateCell(meta.Suite, 28))
	color.Cyan("╚═══════════════════════════════════════════════════════════════╝\n")

	fmt.Println("┌─────────────────────────────────┬─────────────────────────────┐")

	fmt.Printf("│ %-31s │ ", "Total Cases")
	color.White("%-27d │\n", meta.TotalCases)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Passed")
	color.Green("%-27d │\n", meta.Passed)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed (image diff)")
	color.Red("%-27d │\n", meta.FailedDiff)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Failed (renderer process)")
	color.Red("%-27d │\n", meta.FailedProcess)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Missing Reference")
	color.Yellow("%-27d │\n", meta.MissingReference)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Duration")
	durationStr := fmt.Sprintf("%.2fs", meta.DurationSeconds)
	color.White("%-27s │\n", durationStr)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Workers")
	color.White("%-27d │\n", meta.Workers)
	fmt.Println("├─────────────────────────────────┼─────────────────────────────┤")

	fmt.Printf("│ %-31s │ ", "Finished")
	color.White("%-27s │\n", truncateCell(meta.FinishedAt, 27))

	fmt.Println("└─────────────────────────────────┴─────────────────────────────┘")

	fmt.Println()
	if report.OverallOK() {
		color.Green("✓ All %d case(s) passed!", meta.TotalCases)
	} else {
		failedTotal := meta.FailedDiff + meta.FailedProcess + meta.MissingReference
		color.Red("✗ %d of %d case(s) failed", failedTotal, meta.TotalCases)
		fmt.Println()
		f.printFailedCasesTree(report)
	}
	fmt.Printf("\nReport: %s\n", f.config.GetReportPath())
}

// treeNode represents a node in the case path tree
type treeNode struct {
	name     string
	children map[string]*treeNode
	result   *domain.CaseResult
}

// printFailedCasesTree prints failing cases grouped by their relative path.
func (f *Formatter) printFailedCasesTree(report *domain.Report) {
	root := &treeNode{children: make(map[string]*treeNode)}

	for i := range report.Results {
		result := &report.Results[i]
		if result.Passed() {
			continue
		}
		parts := strings.Split(strings.TrimPrefix(result.Name, "./"), "/")
		current := root
		for j, part := range parts {
			if part == "" {
				continue
			}
			if current.children[part] == nil {
				current.children[part] = &treeNode{name: part, children: make(map[string]*treeNode)}
			}
			current = current.children[part]
			if j == len(parts)-1 {
				current.result = result
			}
		}
	}

	f.printTreeNode(root, "")
}

func (f *Formatter) printTreeNode(node *treeNode, prefix string) {
	var keys []string
	for key := range node.children {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		child := node.children[key]
		if child.result != nil {
			color.Red("%s|_ %s", prefix, child.name)
			color.Yellow("%s     %s", prefix, describeFailure(*child.result))
		} else {
			color.Cyan("%s|_ %s", prefix, child.name)
		}
		f.printTreeNode(child, prefix+"  ")
	}
}

// describeFailure renders a one-line reason for a failing case.
func describeFailure(r domain.CaseResult) string {
	switch r.Status {
	case domain.StatusFailedDiff:
		return fmt.Sprintf("%s (score %g, diff %s)", r.Reason(), r.DiffScore, r.DiffPath)
	case domain.StatusFailedProcess:
		if r.TimedOut {
			return r.Reason()
		}
		return fmt.Sprintf("%s (exit code %d)", r.Reason(), r.ExitCode)
	default:
		return r.Reason()
	}
}

// PrintCaseList lists discovered cases without executing them.
func (f *Formatter) PrintCaseList(cases []domain.Case) {
	color.Cyan("Discovered %d case(s) under %s:\n", len(cases), f.config.TestDir)
	for _, c := range cases {
		fmt.Printf("  %s\n", c.RelPath)
	}
}

func truncateCell(s string, width int) string {
	if len(s) <= width {
		return s
	}
	return s[:width-1] + "…"
}
