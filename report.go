package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-callgraph-eval/compare"
)

// Reporter renders suite progress to a terminal. Colours are dropped
// automatically when out is not a terminal.
type Reporter struct {
	out      io.Writer
	showDiff bool

	banner lipgloss.Style
	header lipgloss.Style
	pass   lipgloss.Style
	fail   lipgloss.Style
	muted  lipgloss.Style
}

// NewReporter returns a Reporter writing to out.
func NewReporter(out io.Writer, showDiff bool) *Reporter {
	r := lipgloss.NewRenderer(out)
	return &Reporter{
		out:      out,
		showDiff: showDiff,
		banner:   r.NewStyle().Bold(true).Underline(true),
		header:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("5")),
		pass:     r.NewStyle().Foreground(lipgloss.Color("2")),
		fail:     r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:    r.NewStyle().Faint(true),
	}
}

// Banner prints the run header.
func (r *Reporter) Banner() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.banner.Render("RUNNING REGRESSION TESTS"))
}

// Group prints the header of a suite directory.
func (r *Reporter) Group(name string) {
	fmt.Fprintln(r.out, r.header.Render(strings.Repeat("=", 5)+" "+name+" "+strings.Repeat("=", 5)))
}

// Case prints the status line of one evaluated case.
func (r *Reporter) Case(res CaseResult) {
	name := res.Case.Name
	if res.Case.Source != "" {
		name += filepath.Ext(res.Case.Source)
	}
	switch {
	case res.Err != nil:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render(name+" ❌"), r.muted.Render(res.Err.Error()))
		return
	case res.Passed:
		fmt.Fprintf(r.out, "%s %s\n", r.pass.Render(name+" ✓"), r.muted.Render(scores(res.Result)))
	default:
		fmt.Fprintf(r.out, "%s %s\n", r.fail.Render(name+" ❌"), r.muted.Render(scores(res.Result)))
	}
	if r.showDiff && !res.Passed {
		r.Diff(res.Result.Diff(true))
	}
}

// Diff prints the edges two graphs disagree on.
func (r *Reporter) Diff(d compare.Delta) {
	for _, e := range d.Missing {
		fmt.Fprintln(r.out, r.fail.Render("    - "+e.String()))
	}
	for _, e := range d.Spurious {
		fmt.Fprintln(r.out, r.pass.Render("    + "+e.String()))
	}
}

// Scores prints both score variants of a single comparison.
func (r *Reporter) Scores(res compare.Result) {
	fmt.Fprintf(r.out, "with natives:    %s\n", res.WithNatives)
	fmt.Fprintf(r.out, "without natives: %s\n", res.WithoutNatives)
	fmt.Fprintln(r.out, r.muted.Render(fmt.Sprintf("%d candidate edges (%d native), %d truth edges (%d native)",
		res.Candidate.Len(), res.Candidate.Natives(), res.Truth.Len(), res.Truth.Natives())))
}

// Summary prints the pass/fail tally and aggregate scores.
func (r *Reporter) Summary(s Summary) {
	fmt.Fprintln(r.out)
	fmt.Fprintf(r.out, "Number passed: %d\n", s.Passed)
	fmt.Fprintf(r.out, "Number failed: %d\n", s.Failed)
	fmt.Fprintln(r.out, r.muted.Render("overall with natives:    "+s.WithNatives.Score().String()))
	fmt.Fprintln(r.out, r.muted.Render("overall without natives: "+s.WithoutNatives.Score().String()))
}

func scores(res compare.Result) string {
	return fmt.Sprintf("(%.1f/%.1f, %.1f/%.1f without natives)",
		res.WithNatives.Precision, res.WithNatives.Recall,
		res.WithoutNatives.Precision, res.WithoutNatives.Recall)
}
