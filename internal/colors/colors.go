// File: internal/colors/colors.go
package colors

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	cyanStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	dimStyle     = lipgloss.NewStyle().Faint(true)
	boldStyle    = lipgloss.NewStyle().Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Main colors for messages
func Error(text string) string {
	return errorStyle.Render(text)
}

func Success(text string) string {
	return successStyle.Render(text)
}

func Warning(text string) string {
	return warningStyle.Render(text)
}

func Info(text string) string {
	return infoStyle.Render(text)
}

// Additional styles for elements
func Cyan(text string) string {
	return cyanStyle.Render(text)
}

func Dim(text string) string {
	return dimStyle.Render(text)
}

func Bold(text string) string {
	return boldStyle.Render(text)
}

func Header(text string) string {
	return headerStyle.Render(text)
}

// Check if terminal supports colors
func SupportsColors() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Safe color output (disables colors if not supported)
func SafeColor(text string, colorFunc func(string) string) string {
	if SupportsColors() {
		return colorFunc(text)
	}
	return text
}
