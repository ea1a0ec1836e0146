package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/ferry/internal/app"
	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/ui/output"
	"go.trai.ch/ferry/internal/ui/style"
)

func newRenderer(w io.Writer) *lipgloss.Renderer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(output.ColorProfile())
	return r
}

// printReport writes one line per environment followed by the run outcome.
func printReport(w io.Writer, report *domain.RunReport) {
	r := newRenderer(w)
	dim := r.NewStyle().Foreground(style.Slate)

	_, _ = fmt.Fprintln(w)
	for i := range report.Environments {
		env := &report.Environments[i]
		icon, color := style.ForOutcome(env.Outcome.Kind)
		line := fmt.Sprintf("%s %s %s",
			r.NewStyle().Foreground(color).Render(icon),
			env.Env.ID,
			describe(env.Outcome),
		)
		if len(env.Published) > 0 {
			line += dim.Render(" published " + strings.Join(env.Published, ", "))
		}
		line += dim.Render(" " + env.Duration.Round(time.Millisecond).String())
		_, _ = fmt.Fprintln(w, line)
	}

	icon, color := style.ForOutcome(report.Outcome.Kind)
	headline := r.NewStyle().Bold(true).Foreground(color)
	_, _ = fmt.Fprintf(w, "%s %s %s\n",
		headline.Render(icon),
		headline.Render("run "+describe(report.Outcome)),
		dim.Render(fmt.Sprintf("(exit %d)", app.ExitCode(report.Err))),
	)
}

// describe renders an outcome with the kind of its error. An outcome without
// a failing stage also carries the error message, as nothing else names the
// cause.
func describe(o domain.Outcome) string {
	text := o.String()
	if o.Err == nil {
		return text
	}
	text += " " + o.ErrorKind()
	if o.Stage == "" {
		text += ": " + strings.Join(strings.Split(o.Err.Error(), "\n"), ": ")
	}
	return text
}

// printPlan writes the environments of a dry run with their gate decision
// and the assets they would publish.
func printPlan(w io.Writer, plan *app.DryRun) {
	r := newRenderer(w)
	accent := r.NewStyle().Foreground(style.Harbor)
	dim := r.NewStyle().Foreground(style.Slate)
	warn := r.NewStyle().Foreground(style.Yellow)

	for i := range plan.Environments {
		env := &plan.Environments[i]
		_, _ = fmt.Fprintf(w, "%s %s %s\n", accent.Render(style.Dot), env.Env.ID, dim.Render(env.Env.Target))

		switch {
		case env.Gate == nil:
			_, _ = fmt.Fprintln(w, dim.Render("    deploy: not configured"))
		case !env.Gate.Open:
			_, _ = fmt.Fprintln(w, dim.Render("    deploy: skipped ("+env.Gate.Reason+")"))
		case env.Err != nil:
			_, _ = fmt.Fprintln(w, warn.Render("    deploy: "+env.Err.Error()))
		default:
			_, _ = fmt.Fprintln(w, "    deploy: open")
			for _, asset := range env.Assets {
				_, _ = fmt.Fprintf(w, "      %s %s\n", asset.Name, dim.Render("-> "+asset.Tag))
			}
		}
	}
}
