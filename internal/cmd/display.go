package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/renderer"
	"github.com/olekukonko/tablewriter/tw"

	"ghprovision/pkg/github"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func newChangeTable(w io.Writer) *tablewriter.Table {
	cfg := tablewriter.Config{
		Header: tw.CellConfig{
			Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			Formatting: tw.CellFormatting{AutoFormat: tw.Off},
		},
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignLeft},
		},
		Behavior: tw.Behavior{TrimSpace: tw.Off},
	}
	return tablewriter.NewTable(w,
		tablewriter.WithConfig(cfg),
		tablewriter.WithHeader([]string{"Kind", "Name", "Action", "Number"}),
		tablewriter.WithRenderer(renderer.NewBlueprint()),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleMarkdown),
			Borders: tw.Border{
				Left:   tw.On,
				Top:    tw.Off,
				Right:  tw.On,
				Bottom: tw.Off,
			},
		}),
		tablewriter.WithRowAutoWrap(tw.WrapNone),
	)
}

// displayPlan prints every decision of a plan followed by totals. A partial
// plan from a failed run is displayed the same way.
func displayPlan(w io.Writer, plan *github.ReconciliationPlan, dryRun bool) {
	if plan == nil {
		return
	}

	repository := ""
	if plan.Repository != nil {
		repository = plan.Repository.FullName
	}

	fmt.Fprintln(w)
	if dryRun {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("🔍 Dry-run mode: Showing planned changes for %s", repository)))
	} else {
		fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("📋 Summary for %s", repository)))
	}

	changes := plan.Changes()
	if len(changes) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Nothing declared - configuration is empty"))
		return
	}

	table := newChangeTable(w)
	for _, change := range changes {
		_ = table.Append([]string{
			string(change.Kind),
			change.Key,
			actionText(change.Type, dryRun),
			numberText(change),
		})
	}
	_ = table.Render()

	created := plan.CountByType(github.ChangeTypeCreate)
	existing := plan.CountByType(github.ChangeTypeExists)

	verb := "created"
	if dryRun {
		verb = "to create"
	}
	fmt.Fprintf(w, "\nTotal: %s, %s\n",
		successStyle.Render(fmt.Sprintf("%d %s", created, verb)),
		mutedStyle.Render(fmt.Sprintf("%d already exist", existing)))
}

func actionText(changeType github.ChangeType, dryRun bool) string {
	switch changeType {
	case github.ChangeTypeCreate:
		if dryRun {
			return "+ create"
		}
		return "+ created"
	case github.ChangeTypeExists:
		return "= exists"
	default:
		return string(changeType)
	}
}

func numberText(change github.Change) string {
	if change.Number == 0 {
		return ""
	}
	if change.Kind == github.KindIssue {
		return fmt.Sprintf("#%d", change.Number)
	}
	return fmt.Sprintf("%d", change.Number)
}

// displayWarnings prints configuration warnings, if any
func displayWarnings(w io.Writer, warnings []github.ValidationWarning) {
	if len(warnings) == 0 {
		return
	}

	fmt.Fprintln(w, warningStyle.Render(fmt.Sprintf("⚠️  %d warning(s):", len(warnings))))
	for _, warning := range warnings {
		fmt.Fprintf(w, "   • %s\n", warning)
	}
}
