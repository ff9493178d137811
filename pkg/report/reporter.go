// Package report renders batch progress and status text on a terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"github.com/lshan99q/epub-converter/pkg/constants"
	"github.com/lshan99q/epub-converter/pkg/utils"
)

const barWidth = 40

// Theme holds the colors used for status lines
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Faint(true)
}

// Reporter receives pipeline callbacks and writes them to w.
// The progress bar is redrawn in place only when w is a terminal.
type Reporter struct {
	out         io.Writer
	bar         progress.Model
	theme       Theme
	interactive bool
	drawn       bool
	errors      int
}

// NewReporter creates a reporter; enabled controls whether the progress bar is drawn
func NewReporter(w io.Writer, enabled bool) *Reporter {
	return &Reporter{
		out:         w,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		theme:       defaultTheme,
		interactive: enabled && utils.IsTerminal(w),
	}
}

// OnProgress redraws the progress line
func (r *Reporter) OnProgress(fileProgress, batchProgress int) {
	if !r.interactive {
		return
	}
	fmt.Fprintf(r.out, "\r\x1b[2K%s", r.Render(fileProgress, batchProgress))
	r.drawn = true
}

// OnStatus prints a status line above the progress bar
func (r *Reporter) OnStatus(text string) {
	r.clearLine()

	style := r.theme.statusStyle()
	switch {
	case strings.HasPrefix(text, constants.StatusErrorPrefix):
		style = r.theme.errorStyle()
		r.errors++
	case strings.HasPrefix(text, constants.StatusCompletePrefix):
		style = r.theme.successStyle()
	}
	fmt.Fprintln(r.out, style.Render(text))
}

// Hint prints a dimmed secondary line
func (r *Reporter) Hint(text string) {
	r.clearLine()
	fmt.Fprintln(r.out, r.theme.hintStyle().Render(text))
}

// Finish terminates the progress line
func (r *Reporter) Finish() {
	r.clearLine()
}

// Failed reports whether an error status was seen
func (r *Reporter) Failed() bool {
	return r.errors > 0
}

// Render returns the progress line for the given percentages
func (r *Reporter) Render(fileProgress, batchProgress int) string {
	bar := r.bar.ViewAs(clampPercent(batchProgress))
	file := r.theme.hintStyle().Render(fmt.Sprintf("file %3d%%", fileProgress))
	return bar + "  " + file
}

func (r *Reporter) clearLine() {
	if r.drawn {
		fmt.Fprint(r.out, "\r\x1b[2K")
		r.drawn = false
	}
}

func clampPercent(p int) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 1
	default:
		return float64(p) / 100
	}
}
