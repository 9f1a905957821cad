// Package display renders run results for the terminal.
package display

import (
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"

	"github.com/grovetools/dialognorm/internal/pipeline"
)

var (
	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	skipStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// PrintRunReport prints the processed artifacts, skips, warnings, and errors
// of one batch run in a formatted table.
func PrintRunReport(report *pipeline.RunReport, w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	fmt.Fprintln(tw, "STATUS\tDIALOGUE\tTURNS\tSTRATEGY\tDETAIL")
	for _, p := range report.Processed {
		fmt.Fprintf(tw, "%s\tS%d_W%d_T%d\t%d\t%s\t%s\n",
			okStyle.Render("OK"), p.StudentID, p.Week, p.Task, p.Turns, p.Strategy, filepath.Base(p.Path))
	}
	for _, s := range report.Skipped {
		fmt.Fprintf(tw, "%s\tS%d_W%d\t\t\t%s\n",
			skipStyle.Render("SKIP"), s.StudentID, s.Week, s.Reason)
	}
	for _, e := range report.Warnings {
		fmt.Fprintf(tw, "%s\t%s\t\t\t%s\n",
			warnStyle.Render("WARN"), filepath.Base(e.Source), e.Error())
	}
	for _, e := range report.Errors {
		fmt.Fprintf(tw, "%s\t%s\t\t\t%s\n",
			errStyle.Render("ERR"), filepath.Base(e.Source), e.Error())
	}
	tw.Flush()

	fmt.Fprintf(w, "\nProcessed %d artifact(s), skipped %d, %d warning(s), %d error(s)\n",
		len(report.Processed), len(report.Skipped), len(report.Warnings), len(report.Errors))
}
