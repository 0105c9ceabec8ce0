// Package ui provides styled terminal output for the CLI. Styling is
// disabled when stdout is not a terminal or when NO_COLOR is set, so
// output stays clean in pipelines and logs.
package ui

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorGreen  = lipgloss.Color("#22c55e")
	colorRed    = lipgloss.Color("#ef4444")
	colorYellow = lipgloss.Color("#eab308")
	colorBlue   = lipgloss.Color("#3b82f6")
	colorDim    = lipgloss.Color("#6b7280")

	successStyle = lipgloss.NewStyle().Foreground(colorGreen)
	errorStyle   = lipgloss.NewStyle().Foreground(colorRed)
	warningStyle = lipgloss.NewStyle().Foreground(colorYellow)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBlue)
	dimStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	warnMark  = "[??]"
)

// styled reports whether output should carry ANSI styling.
var styled = func() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}()

func render(style lipgloss.Style, s string) string {
	if !styled {
		return s
	}
	return style.Render(s)
}

// Section prints a bold heading introducing a block of output.
func Section(format string, args ...any) {
	fmt.Println(render(sectionStyle, fmt.Sprintf(format, args...)))
}

// Success prints a line prefixed with a check mark.
func Success(format string, args ...any) {
	fmt.Printf("%s %s\n", render(successStyle, checkMark), fmt.Sprintf(format, args...))
}

// Warn prints a line prefixed with a warning mark.
func Warn(format string, args ...any) {
	fmt.Printf("%s %s\n", render(warningStyle, warnMark), fmt.Sprintf(format, args...))
}

// Error prints a line prefixed with a cross mark.
func Error(format string, args ...any) {
	fmt.Printf("%s %s\n", render(errorStyle, crossMark), fmt.Sprintf(format, args...))
}

// Info prints a plain line.
func Info(format string, args ...any) {
	fmt.Printf("%s\n", fmt.Sprintf(format, args...))
}

// Dim prints a de-emphasized line for secondary detail.
func Dim(format string, args ...any) {
	fmt.Println(render(dimStyle, fmt.Sprintf(format, args...)))
}
