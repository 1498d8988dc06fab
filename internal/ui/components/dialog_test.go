package components

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfirmDialogIncludesTitleMessageAndHints(t *testing.T) {
	out := ConfirmDialog("Quit", "Discard the open form?")
	clean := SanitizeText(out)

	assert.Contains(t, clean, "Quit")
	assert.Contains(t, clean, "Discard the open form?")
	assert.Contains(t, clean, "y: confirm | n: cancel")
}

func TestFormDialogRendersFieldsAndFocus(t *testing.T) {
	out := FormDialog("New Entity", []FormField{
		{Label: "Name", Value: "Customer", Focused: true},
		{Label: "Plugin format", Value: "JAVASCRIPT"},
	}, "enter: create | esc: cancel", 80)
	clean := SanitizeText(out)

	assert.Contains(t, clean, "New Entity")
	assert.Contains(t, clean, "Customer")
	assert.Contains(t, clean, "JAVASCRIPT")
	assert.Contains(t, clean, "> Name")
	assert.Contains(t, clean, "enter: create | esc: cancel")
}

func TestFormDialogWithoutHint(t *testing.T) {
	out := FormDialog("Options", []FormField{{Label: "batch", Value: "100"}}, "", 80)
	assert.Contains(t, out, "batch")
	assert.NotContains(t, out, "esc")
}
