package notify

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	barStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))
	doneStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	failStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F87")).Bold(true)
)

const barWidth = 30

// Terminal draws a progress bar on a single, rewritten line.
type Terminal struct {
	Out io.Writer
}

func (t Terminal) Update(_ context.Context, percent int) error {
	filled := barWidth * percent / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	_, err := fmt.Fprintf(t.Out, "\rTranscribing %s %3d%%", barStyle.Render(bar), percent)
	return err
}

func (t Terminal) Complete(context.Context) error {
	_, err := fmt.Fprintf(t.Out, "\n%s\n", doneStyle.Render("Done"))
	return err
}

func (t Terminal) Fail(_ context.Context, err error) error {
	_, werr := fmt.Fprintf(t.Out, "\n%s %v\n", failStyle.Render("Failed:"), err)
	return werr
}
