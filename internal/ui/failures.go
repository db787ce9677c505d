package ui

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"vrt/internal/config"
	"vrt/internal/domain"
	"vrt/internal/storage"
)

// FailureViewer displays failing cases from the last run in an
// interactive TUI
type FailureViewer struct {
	config  *config.Config
	storage storage.Storage
}

// NewFailureViewer creates a new FailureViewer
func NewFailureViewer(cfg *config.Config, st storage.Storage) *FailureViewer {
	return &FailureViewer{
		config:  cfg,
		storage: st,
	}
}

// View displays the report's failing cases in an interactive TUI
func (fv *FailureViewer) View(report *domain.Report) error {
	failing := report.Failing()
	if len(failing) == 0 {
		color.Green("✓ No failing cases in the last run!")
		return nil
	}

	saveReviewedStatus := func() error {
		return fv.storage.Save(report)
	}

	app := tview.NewApplication()

	// List of failing cases (left side)
	list := tview.NewList().
		ShowSecondaryText(false).
		SetHighlightFullLine(true)

	getListItemText := func(pos int) string {
		result := report.Results[failing[pos]]
		if result.Reviewed {
			return fmt.Sprintf("[gray]✓ [yellow]%d.[gray] %s[white]", pos+1, result.Name)
		}
		return fmt.Sprintf("[yellow]%d.[white] %s", pos+1, result.Name)
	}

	updateListItem := func(pos int) {
		if pos < 0 || pos >= list.GetItemCount() {
			return
		}
		list.SetItemText(pos, getListItemText(pos), "")
	}

	for pos := range failing {
		list.AddItem(getListItemText(pos), "", 0, nil)
	}

	list.SetMainTextColor(tview.Styles.PrimaryTextColor).
		SetSelectedTextColor(tcell.ColorWhite).
		SetSelectedBackgroundColor(tcell.ColorDarkCyan).
		SetSecondaryTextColor(tview.Styles.SecondaryTextColor)

	// Stats header (case path and reason) above the details
	statsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false).
		SetWordWrap(false)

	// Failure details (right side)
	detailsView := tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true).
		SetWordWrap(true)

	detailsContainer := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(detailsView, 0, 1, false).
		AddItem(tview.NewBox(), 2, 0, false)

	rightSide := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(statsView, 3, 0, false).
		AddItem(detailsContainer, 0, 1, false)

	flex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(list, 0, 1, true).
		AddItem(rightSide, 0, 2, false)

	countUnreviewed := func() int {
		count := 0
		for _, idx := range failing {
			if !report.Results[idx].Reviewed {
				count++
			}
		}
		return count
	}

	headerView := tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetDynamicColors(true)

	updateHeader := func() {
		headerView.SetText(fmt.Sprintf(
			" Failing Cases (%d total, %d unreviewed) | Use ↑↓ to navigate, [yellow]R[white] to mark reviewed, → to view details, ← to go back, Ctrl+C to exit ",
			len(failing), countUnreviewed()))
	}
	updateHeader()

	updateDetails := func() {
		pos := list.GetCurrentItem()
		if pos >= 0 && pos < len(failing) {
			result := report.Results[failing[pos]]
			statsView.SetText(fv.formatFailureStats(result))
			detailsView.SetText(fv.formatFailureDetails(result))
		}
	}

	list.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp, tcell.KeyDown:
			return event
		case tcell.KeyEnter, tcell.KeyRight:
			app.SetFocus(detailsView)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'r' || event.Rune() == 'R' {
				pos := list.GetCurrentItem()
				if pos >= 0 && pos < len(failing) {
					result := &report.Results[failing[pos]]
					result.Reviewed = !result.Reviewed
					updateListItem(pos)
					updateHeader()
					updateDetails()
					if err := saveReviewedStatus(); err != nil {
						_ = err
					}
				}
				return nil
			}
		}
		return event
	})

	detailsView.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyLeft, tcell.KeyEsc:
			app.SetFocus(list)
			return nil
		case tcell.KeyCtrlC:
			app.Stop()
			return nil
		}
		return event
	})

	list.SetChangedFunc(func(index int, mainText string, secondaryText string, shortcut rune) {
		updateDetails()
	})
	updateDetails()

	mainLayout := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(headerView, 1, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(flex, 0, 1, true)

	if err := app.SetRoot(mainLayout, true).SetFocus(list).Run(); err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	return nil
}

// formatFailureDetails formats a failing case for display using tview
// color tags ([red], [cyan], etc.)
func (fv *FailureViewer) formatFailureDetails(result domain.CaseResult) string {
	var builder strings.Builder

	fmt.Fprintf(&builder, "[red]✗ Case: %s[white]\n\n", result.Name)
	fmt.Fprintf(&builder, "[yellow]Reason:[white] %s\n\n", result.Reason())

	switch result.Status {
	case domain.StatusFailedDiff:
		fmt.Fprintf(&builder, "[cyan]Diff score:[white] %g\n", result.DiffScore)
		if result.DiffPath != "" {
			fmt.Fprintf(&builder, "[cyan]Diff image:[white] %s\n", result.DiffPath)
		}
	case domain.StatusFailedProcess:
		if result.TimedOut {
			fmt.Fprintf(&builder, "[cyan]Exit:[white] timed out\n")
		} else {
			fmt.Fprintf(&builder, "[cyan]Exit code:[white] %d\n", result.ExitCode)
		}
	}

	if result.OutputPath != "" {
		fmt.Fprintf(&builder, "[cyan]Rendered output:[white] %s\n", result.OutputPath)
	}

	if result.Stderr != "" {
		fmt.Fprintf(&builder, "\n[yellow]Tool output:[white]\n%s\n", result.Stderr)
	}

	return builder.String()
}

// formatFailureStats formats the stats header for a failing case
func (fv *FailureViewer) formatFailureStats(result domain.CaseResult) string {
	return fmt.Sprintf("[cyan]case:[white] [yellow]%s[white] ([red]%s[white])\n", result.Name, result.Status)
}
