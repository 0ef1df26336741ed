package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170"))
	successStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	failStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

func Heading(w io.Writer, format string, args ...any) {
	printStyled(w, headingStyle, format, args...)
}

func Success(w io.Writer, format string, args ...any) {
	printStyled(w, successStyle, "✅ "+format, args...)
}

func Warn(w io.Writer, format string, args ...any) {
	printStyled(w, warnStyle, "⚠️ "+format, args...)
}

func Fail(w io.Writer, format string, args ...any) {
	printStyled(w, failStyle, "❌ "+format, args...)
}

func Info(w io.Writer, format string, args ...any) {
	printStyled(w, mutedStyle, format, args...)
}

// printStyled prints a blank separator line followed by the styled message.
func printStyled(w io.Writer, style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, style.Render(fmt.Sprintf(format, args...)))
}
