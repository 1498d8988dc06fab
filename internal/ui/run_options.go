package ui

import (
	"bytes"
	"encoding/json"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/ui/components"
)

type runOptionsConfirmedMsg struct {
	entity  *api.Entity
	flow    *api.Flow
	options api.RunOptions
}

// RunOptionsDialog edits the options of an input flow run before it starts.
// It renders inline under the list row of the flow it was opened for.
// Scalar options get a text field; objects and arrays are shown read-only
// and sent back as received.
type RunOptionsDialog struct {
	visible  bool
	entity   *api.Entity
	flow     *api.Flow
	anchor   int
	original api.RunOptions
	keys     []string
	initial  []string
	fixed    []string
	inputs   []textinput.Model
	focus    int
}

// Show opens the dialog for flow with one field per editable option, sorted
// by key.
func (d *RunOptionsDialog) Show(entity *api.Entity, flow *api.Flow, options api.RunOptions, anchor int) tea.Cmd {
	d.visible = true
	d.entity = entity
	d.flow = flow
	d.anchor = anchor
	d.focus = 0
	d.original = options.Clone()
	if d.original == nil {
		d.original = api.RunOptions{}
	}

	d.keys, d.initial, d.fixed, d.inputs = nil, nil, nil, nil
	for _, k := range d.original.Keys() {
		text, ok := d.original.Text(k)
		if !ok {
			d.fixed = append(d.fixed, k)
			continue
		}
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 512
		ti.Width = 28
		ti.SetValue(text)
		d.keys = append(d.keys, k)
		d.initial = append(d.initial, text)
		d.inputs = append(d.inputs, ti)
	}
	if len(d.inputs) > 0 {
		d.inputs[0].Focus()
	}
	return textinput.Blink
}

// Cancel closes the dialog and discards any edits.
func (d *RunOptionsDialog) Cancel() {
	d.visible = false
	d.entity = nil
	d.flow = nil
	d.original = nil
	d.keys = nil
	d.initial = nil
	d.fixed = nil
	d.inputs = nil
	d.anchor = -1
}

func (d RunOptionsDialog) IsVisible() bool { return d.visible }

// Anchor is the absolute list row the dialog renders under, -1 when hidden
// or when its flow has no row.
func (d RunOptionsDialog) Anchor() int {
	if !d.visible {
		return -1
	}
	return d.anchor
}

// SetAnchor moves the dialog to row.
func (d *RunOptionsDialog) SetAnchor(row int) {
	d.anchor = row
}

// Flow returns the flow the dialog was opened for.
func (d RunOptionsDialog) Flow() *api.Flow {
	if !d.visible {
		return nil
	}
	return d.flow
}

// Options returns the options to run with. Fields left as shown keep the
// value the hub sent.
func (d RunOptionsDialog) Options() api.RunOptions {
	out := d.original.Clone()
	if out == nil {
		out = api.RunOptions{}
	}
	for i, k := range d.keys {
		if v := d.inputs[i].Value(); v != d.initial[i] {
			out.SetText(k, v)
		}
	}
	return out
}

func (d RunOptionsDialog) Update(msg tea.KeyMsg) (RunOptionsDialog, tea.Cmd) {
	if !d.visible {
		return d, nil
	}
	switch {
	case key.Matches(msg, keys.Cancel):
		d.Cancel()
		return d, nil
	case key.Matches(msg, keys.Submit):
		confirmed := runOptionsConfirmedMsg{
			entity:  d.entity,
			flow:    d.flow,
			options: d.Options(),
		}
		d.Cancel()
		return d, submitCmd(confirmed)
	case key.Matches(msg, keys.NextField):
		d.setFocus(cycle(d.focus, 1, len(d.inputs)))
		return d, nil
	case key.Matches(msg, keys.PrevField):
		d.setFocus(cycle(d.focus, -1, len(d.inputs)))
		return d, nil
	}
	if len(d.inputs) == 0 {
		return d, nil
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return d, cmd
}

func (d *RunOptionsDialog) setFocus(idx int) {
	for i := range d.inputs {
		if i == idx {
			d.inputs[i].Focus()
		} else {
			d.inputs[i].Blur()
		}
	}
	d.focus = idx
}

func (d RunOptionsDialog) View(width int) string {
	title := "Run Options"
	if d.flow != nil {
		title += " · " + d.flow.Name
	}
	if len(d.keys) == 0 && len(d.fixed) == 0 {
		body := MutedStyle.Render("This flow has no options.") + "\n\n" + MutedStyle.Render("enter: run | esc: cancel")
		return components.ActiveTitledBox(title, body, width)
	}
	fields := make([]components.FormField, 0, len(d.keys)+len(d.fixed))
	for i, k := range d.keys {
		fields = append(fields, components.FormField{
			Label:   k,
			Value:   d.inputs[i].View(),
			Focused: i == d.focus,
		})
	}
	for _, k := range d.fixed {
		fields = append(fields, components.FormField{
			Label: k,
			Value: MutedStyle.Render(compactJSON(d.original[k])),
		})
	}
	return components.FormDialog(title, fields, "enter: run | tab: next option | esc: cancel", width)
}

func compactJSON(raw []byte) string {
	var b bytes.Buffer
	if err := json.Compact(&b, raw); err != nil {
		return string(raw)
	}
	return components.ClampTextWidth(b.String(), 40)
}
