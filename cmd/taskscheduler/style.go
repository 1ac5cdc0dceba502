package main

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/Strob0t/TaskScheduler/internal/domain/task"
)

var statusStyles = map[task.Status]lipgloss.Style{
	task.StatusPending:   lipgloss.NewStyle().Foreground(lipgloss.Color("33")),
	task.StatusRunning:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	task.StatusCompleted: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
}

// colorEnabled reports whether out is a terminal that wants ANSI colors.
func colorEnabled(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

func renderStatus(s task.Status, color bool) string {
	style, ok := statusStyles[s]
	if !color || !ok {
		return string(s)
	}
	return style.Render(string(s))
}
