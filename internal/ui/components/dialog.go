package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dialogStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Padding(1, 2).
			Width(44)

	dialogTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3f8fb0")).
				Bold(true)

	dialogHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8e9aaf"))

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8e9aaf"))

	fieldFocusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5f9e8f")).
			Bold(true)
)

// ConfirmDialog renders a yes/no confirmation.
func ConfirmDialog(title, message string) string {
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#dde3ea")).
		Render(message)
	hint := dialogHintStyle.Render("\ny: confirm | n: cancel")
	return dialogStyle.Render(dialogTitleStyle.Render(title) + "\n\n" + body + hint)
}

// FormField is one labelled row of a FormDialog. Value is rendered as-is so
// callers can pass a textinput view or a plain choice.
type FormField struct {
	Label   string
	Value   string
	Focused bool
}

// FormDialog renders a titled form with one row per field and a hint line.
func FormDialog(title string, fields []FormField, hint string, width int) string {
	labelWidth := 0
	for _, f := range fields {
		if w := lipgloss.Width(f.Label); w > labelWidth {
			labelWidth = w
		}
	}

	lines := make([]string, 0, len(fields)+2)
	for _, f := range fields {
		marker := "  "
		label := fieldLabelStyle.Render(padRight(SanitizeOneLine(f.Label), labelWidth))
		if f.Focused {
			marker = fieldFocusStyle.Render("> ")
			label = fieldFocusStyle.Render(padRight(SanitizeOneLine(f.Label), labelWidth))
		}
		lines = append(lines, marker+label+"  "+f.Value)
	}
	if hint != "" {
		lines = append(lines, "", dialogHintStyle.Render(hint))
	}
	return ActiveTitledBox(title, strings.Join(lines, "\n"), width)
}
