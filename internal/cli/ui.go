package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/peerscan/pkg/conflict"
	"github.com/matzehuels/peerscan/pkg/errors"
	"github.com/matzehuels/peerscan/pkg/graph"
	"github.com/matzehuels/peerscan/pkg/suggest"
)

// out receives all human-readable output. Tests swap it for a buffer.
var out io.Writer = os.Stdout

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
	StyleError   = lipgloss.NewStyle().Foreground(colorRed)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
	styleHeader  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleBorder  = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// headerRow is the row index lipgloss tables pass for the header.
const headerRow = -1

// =============================================================================
// Status Output
// =============================================================================

func printSuccess(format string, args ...any) {
	fmt.Fprintln(out, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Fprintln(out, styleIconError.Render(iconError)+" "+fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Fprintln(out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Fprintln(out, styleIconInfo.Render(iconInfo)+" "+fmt.Sprintf(format, args...))
}

// printDetail prints an indented, dimmed line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(out, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints a file output line.
func printFile(path string) {
	fmt.Fprintln(out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

// printKeyValue prints a labeled value.
func printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(20)
	fmt.Fprintln(out, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// printCommand prints a shell command to run next.
func printCommand(description, cmd string) {
	fmt.Fprintln(out, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Fprintln(out)
}

// =============================================================================
// Domain Output
// =============================================================================

// printStats prints graph statistics as key/value lines.
func printStats(s graph.Stats) {
	printKeyValue("Total packages", fmt.Sprint(s.TotalNodes))
	printKeyValue("Direct dependencies", fmt.Sprint(s.DirectDependencies))
	printKeyValue("Dev dependencies", fmt.Sprint(s.DevDependencies))
	printKeyValue("Max depth", fmt.Sprint(s.MaxDepth))
}

// conflictTable renders conflicts with their top-ranked solution.
func conflictTable(conflicts []conflict.Conflict) string {
	rows := make([][]string, 0, len(conflicts))
	for i, c := range conflicts {
		fix := "—"
		if len(c.Solutions) > 0 {
			fix = c.Solutions[0].Description
		}
		rows = append(rows, []string{fmt.Sprint(i + 1), string(c.Type), c.PackageName, c.Message, fix})
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styleBorder).
		Headers("#", "Type", "Package", "Problem", "Suggested fix").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return styleHeader
			case col == 1:
				return StyleDim
			case col == 4:
				return StyleSuccess
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

// printReport prints a scan report: a table of conflicts followed by the
// issues that cost solutions.
func printReport(r *conflict.Report) {
	if len(r.Conflicts) == 0 {
		printSuccess("No conflicts found")
	} else {
		printWarning("%d conflict(s): %d peer, %d singleton",
			len(r.Conflicts), r.Count(conflict.PeerDependency), r.Count(conflict.DuplicateSingleton))
		fmt.Fprintln(out, conflictTable(r.Conflicts))
	}
	printIssues(r.Issues)
}

func printIssues(issues []errors.Issue) {
	if len(issues) == 0 {
		return
	}
	printNewline()
	printWarning("%d registry lookup(s) failed; some solutions may be missing", len(issues))
	for _, is := range issues {
		printDetail("%s (%s): %s", is.Package, is.Stage, errors.UserMessage(is.Err))
	}
}

// printCompatibility prints the outcome of a suggest run.
func printCompatibility(r *suggest.CompatibilityResult) {
	if len(r.Suggestions) > 0 {
		rows := make([][]string, len(r.Suggestions))
		for i, s := range r.Suggestions {
			rows[i] = []string{s.Name, s.Version, s.Reason}
		}
		fmt.Fprintln(out, table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(styleBorder).
			Headers("Package", "Version", "Reason").
			Rows(rows...).
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == headerRow {
					return styleHeader
				}
				return lipgloss.NewStyle()
			}).
			Render())
	}
	for _, c := range r.Conflicts {
		printError("%s", c)
	}
	if r.Compatible {
		printSuccess("All packages are compatible")
	}
	if r.InstallCommand != "" {
		printCommand("Install with", r.InstallCommand)
	}
}

// printAudit prints dependencies that are a major version behind.
func printAudit(r *suggest.AuditResult) {
	if len(r.Findings) == 0 {
		printSuccess("All dependencies are on their latest major version")
	} else {
		rows := make([][]string, len(r.Findings))
		for i, f := range r.Findings {
			rows[i] = []string{f.Name, f.Current, f.Latest, f.Recommendation}
		}
		fmt.Fprintln(out, table.New().
			Border(lipgloss.RoundedBorder()).
			BorderStyle(styleBorder).
			Headers("Package", "Current", "Latest", "Recommendation").
			Rows(rows...).
			StyleFunc(func(row, col int) lipgloss.Style {
				if row == headerRow {
					return styleHeader
				}
				if col == 2 {
					return StyleNumber
				}
				return lipgloss.NewStyle()
			}).
			Render())
	}
	printIssues(r.Issues)
}

// truncate shortens s to n runes with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n-1])) + "…"
}
