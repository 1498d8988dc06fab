package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/ui/components"
)

// --- Messages ---

type newEntitySubmittedMsg struct {
	input api.CreateEntityInput
}

type newFlowSubmittedMsg struct {
	entity *api.Entity
	kind   string
	input  api.CreateFlowInput
}

func newNameInput(placeholder string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = ""
	ti.CharLimit = 128
	ti.Width = 32
	return ti
}

func cycle(idx, delta, n int) int {
	if n == 0 {
		return 0
	}
	return ((idx+delta)%n + n) % n
}

func submitCmd(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// --- New Entity ---

const (
	entityFieldName = iota
	entityFieldPlugin
	entityFieldCount
)

// NewEntityDialog collects the name and plugin format of a new entity.
type NewEntityDialog struct {
	visible   bool
	name      textinput.Model
	pluginIdx int
	focus     int
}

func newNewEntityDialog() NewEntityDialog {
	return NewEntityDialog{name: newNameInput("Customer")}
}

func (d *NewEntityDialog) Show() tea.Cmd {
	d.visible = true
	d.focus = entityFieldName
	d.pluginIdx = 0
	d.name.Reset()
	d.name.Focus()
	return textinput.Blink
}

func (d *NewEntityDialog) Hide() {
	d.visible = false
	d.name.Blur()
}

func (d NewEntityDialog) IsVisible() bool { return d.visible }

// HasInput reports whether closing the dialog would drop typed text.
func (d NewEntityDialog) HasInput() bool {
	return d.visible && strings.TrimSpace(d.name.Value()) != ""
}

func (d NewEntityDialog) Update(msg tea.KeyMsg) (NewEntityDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		d.Hide()
		return d, nil
	case key.Matches(msg, keys.Submit):
		name := strings.TrimSpace(d.name.Value())
		if name == "" {
			return d, nil
		}
		input := api.CreateEntityInput{
			Name:         name,
			PluginFormat: api.PluginFormats[d.pluginIdx],
		}
		d.Hide()
		return d, submitCmd(newEntitySubmittedMsg{input: input})
	case key.Matches(msg, keys.NextField):
		d.setFocus(cycle(d.focus, 1, entityFieldCount))
		return d, nil
	case key.Matches(msg, keys.PrevField):
		d.setFocus(cycle(d.focus, -1, entityFieldCount))
		return d, nil
	}

	if d.focus == entityFieldPlugin {
		switch {
		case key.Matches(msg, keys.PrevChoice):
			d.pluginIdx = cycle(d.pluginIdx, -1, len(api.PluginFormats))
		case key.Matches(msg, keys.NextChoice):
			d.pluginIdx = cycle(d.pluginIdx, 1, len(api.PluginFormats))
		}
		return d, nil
	}

	var cmd tea.Cmd
	d.name, cmd = d.name.Update(msg)
	return d, cmd
}

func (d *NewEntityDialog) setFocus(field int) {
	d.focus = field
	if field == entityFieldName {
		d.name.Focus()
	} else {
		d.name.Blur()
	}
}

func (d NewEntityDialog) View(width int) string {
	fields := []components.FormField{
		{Label: "Name", Value: d.name.View(), Focused: d.focus == entityFieldName},
		{Label: "Plugin format", Value: renderChoice(api.PluginFormats, d.pluginIdx), Focused: d.focus == entityFieldPlugin},
	}
	return components.FormDialog("New Entity", fields, "enter: create | tab: next field | ←/→: change | esc: cancel", width)
}

// --- New Flow ---

const (
	flowFieldName = iota
	flowFieldPlugin
	flowFieldData
	flowFieldCount
)

// NewFlowDialog collects a new flow for one entity. The kind is fixed when
// the dialog opens.
type NewFlowDialog struct {
	visible   bool
	entity    *api.Entity
	kind      string
	name      textinput.Model
	pluginIdx int
	dataIdx   int
	focus     int
}

func newNewFlowDialog() NewFlowDialog {
	return NewFlowDialog{name: newNameInput("load-customers")}
}

func (d *NewFlowDialog) Show(entity *api.Entity, kind string) tea.Cmd {
	d.visible = true
	d.entity = entity
	d.kind = kind
	d.focus = flowFieldName
	d.pluginIdx = 0
	d.dataIdx = 0
	if entity != nil {
		// new flows default to the entity's own plugin format
		for i, f := range api.PluginFormats {
			if strings.EqualFold(f, entity.PluginFormat) {
				d.pluginIdx = i
			}
		}
	}
	d.name.Reset()
	d.name.Focus()
	return textinput.Blink
}

func (d *NewFlowDialog) Hide() {
	d.visible = false
	d.name.Blur()
}

func (d NewFlowDialog) IsVisible() bool { return d.visible }

func (d NewFlowDialog) HasInput() bool {
	return d.visible && strings.TrimSpace(d.name.Value()) != ""
}

func (d NewFlowDialog) Update(msg tea.KeyMsg) (NewFlowDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		d.Hide()
		return d, nil
	case key.Matches(msg, keys.Submit):
		name := strings.TrimSpace(d.name.Value())
		if name == "" {
			return d, nil
		}
		submitted := newFlowSubmittedMsg{
			entity: d.entity,
			kind:   d.kind,
			input: api.CreateFlowInput{
				Name:         name,
				PluginFormat: api.PluginFormats[d.pluginIdx],
				DataFormat:   api.DataFormats[d.dataIdx],
			},
		}
		d.Hide()
		return d, submitCmd(submitted)
	case key.Matches(msg, keys.NextField):
		d.setFocus(cycle(d.focus, 1, flowFieldCount))
		return d, nil
	case key.Matches(msg, keys.PrevField):
		d.setFocus(cycle(d.focus, -1, flowFieldCount))
		return d, nil
	}

	delta := 0
	switch {
	case key.Matches(msg, keys.PrevChoice):
		delta = -1
	case key.Matches(msg, keys.NextChoice):
		delta = 1
	}
	switch d.focus {
	case flowFieldPlugin:
		d.pluginIdx = cycle(d.pluginIdx, delta, len(api.PluginFormats))
		return d, nil
	case flowFieldData:
		d.dataIdx = cycle(d.dataIdx, delta, len(api.DataFormats))
		return d, nil
	}

	var cmd tea.Cmd
	d.name, cmd = d.name.Update(msg)
	return d, cmd
}

func (d *NewFlowDialog) setFocus(field int) {
	d.focus = field
	if field == flowFieldName {
		d.name.Focus()
	} else {
		d.name.Blur()
	}
}

func (d NewFlowDialog) View(width int) string {
	title := "New " + flowKindLabel(d.kind) + " Flow"
	if d.entity != nil {
		title += " · " + d.entity.Name
	}
	fields := []components.FormField{
		{Label: "Name", Value: d.name.View(), Focused: d.focus == flowFieldName},
		{Label: "Plugin format", Value: renderChoice(api.PluginFormats, d.pluginIdx), Focused: d.focus == flowFieldPlugin},
		{Label: "Data format", Value: renderChoice(api.DataFormats, d.dataIdx), Focused: d.focus == flowFieldData},
	}
	return components.FormDialog(title, fields, "enter: create | tab: next field | ←/→: change | esc: cancel", width)
}

func renderChoice(options []string, idx int) string {
	parts := make([]string, len(options))
	for i, o := range options {
		if i == idx {
			parts[i] = SelectedStyle.Render(o)
		} else {
			parts[i] = MutedStyle.Render(o)
		}
	}
	return strings.Join(parts, MutedStyle.Render(" / "))
}

func flowKindLabel(kind string) string {
	switch strings.ToUpper(kind) {
	case string(api.FlowTypeInput):
		return "Input"
	case string(api.FlowTypeHarmonize):
		return "Harmonize"
	}
	return kind
}
