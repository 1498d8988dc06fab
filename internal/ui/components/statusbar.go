package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

var (
	hintKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#11181c")).
			Background(lipgloss.Color("#8e9aaf")).
			Bold(true).
			Padding(0, 1)
	hintDescStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8e9aaf"))
	contextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#11181c")).
			Background(lipgloss.Color("#3f8fb0")).
			Bold(true).
			Padding(0, 1)
	hintSeparator = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2b3a42")).
			Render(" │ ")
)

// StatusBar renders the context label and the enabled bindings as one or
// more centered lines no wider than width. A width of 0 means one line.
func StatusBar(context string, bindings []key.Binding, width int) string {
	segments := make([]string, 0, len(bindings)+1)
	if context = strings.TrimSpace(SanitizeOneLine(context)); context != "" {
		segments = append(segments, contextStyle.Render(context))
	}
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		segments = append(segments, Hint(b))
	}
	if len(segments) == 0 {
		return ""
	}

	rows := wrapSegments(segments, width)
	if width <= 0 {
		return rows[0]
	}
	for i, row := range rows {
		rows[i] = lipgloss.PlaceHorizontal(width, lipgloss.Center, row)
	}
	return strings.Join(rows, "\n")
}

// Hint renders one binding as "key desc".
func Hint(b key.Binding) string {
	h := b.Help()
	return hintKeyStyle.Render(h.Key) + " " + hintDescStyle.Render(h.Desc)
}

// wrapSegments joins segments with separators, starting a new row whenever
// the next segment would pass width.
func wrapSegments(segments []string, width int) []string {
	sepWidth := lipgloss.Width(hintSeparator)
	var rows []string
	var current strings.Builder
	currentWidth := 0
	for _, seg := range segments {
		segWidth := lipgloss.Width(seg)
		if currentWidth > 0 && width > 0 && currentWidth+sepWidth+segWidth > width {
			rows = append(rows, current.String())
			current.Reset()
			currentWidth = 0
		}
		if currentWidth > 0 {
			current.WriteString(hintSeparator)
			currentWidth += sepWidth
		}
		current.WriteString(seg)
		currentWidth += segWidth
	}
	if currentWidth > 0 {
		rows = append(rows, current.String())
	}
	return rows
}
