package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/prefs"
	"github.com/quickstart-labs/hubctl/internal/ui/components"
)

// --- Messages ---

type entitiesLoadedMsg struct{ items []api.Entity }
type entityCreatedMsg struct{ entity api.Entity }
type flowCreatedMsg struct {
	entity *api.Entity
	kind   string
	flow   api.Flow
}
type runOptionsLoadedMsg struct {
	entity  *api.Entity
	flow    *api.Flow
	options api.RunOptions
	anchor  int
}
type entitySubscribedMsg struct{ sub *entitySubscription }
type entityChangedMsg struct{ path string }
type entityStreamClosedMsg struct{}

// toastMsg asks the root App to show a transient notification.
type toastMsg struct {
	level string
	text  string
}

type entitySubscription struct {
	cancel context.CancelFunc
	ch     <-chan string
}

// --- Rows ---

type homeRowKind int

const (
	rowEntity homeRowKind = iota
	rowGroup
	rowFlow
)

type homeRow struct {
	kind     homeRowKind
	entity   *api.Entity
	flowType api.FlowType
	flow     *api.Flow
}

// --- Home Model ---

// HomeModel lists entities with their flows. At most one entity is expanded
// at a time; the collapsed flags live in the prefs store so they survive
// restarts.
type HomeModel struct {
	entities EntityRepository
	flows    FlowRepository
	prefs    prefs.Store
	logger   *slog.Logger

	items   []*api.Entity
	rows    []homeRow
	list    *components.List
	loading bool
	spinner spinner.Model
	width   int
	height  int

	activeEntity *api.Entity
	activeFlow   *api.Flow
	activeKind   string

	newEntity NewEntityDialog
	newFlow   NewFlowDialog
	runOpts   RunOptionsDialog

	sub *entitySubscription
}

// NewHomeModel builds the entity list. A nil store keeps collapse state in
// memory only.
func NewHomeModel(entities EntityRepository, flows FlowRepository, store prefs.Store, logger *slog.Logger) HomeModel {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if store == nil {
		store = prefs.NewMemoryStore()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AccentStyle
	return HomeModel{
		entities:  entities,
		flows:     flows,
		prefs:     store,
		logger:    logger,
		list:      components.NewList(15),
		spinner:   sp,
		loading:   entities != nil,
		newEntity: newNewEntityDialog(),
		newFlow:   newNewFlowDialog(),
		runOpts:   RunOptionsDialog{anchor: -1},
	}
}

func (m HomeModel) Init() tea.Cmd {
	if m.entities == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, m.loadEntities(), m.subscribe())
}

// Close releases the entity change subscription.
func (m HomeModel) Close() {
	if m.sub != nil {
		m.sub.cancel()
	}
}

// SetSize fits the list to the terminal.
func (m *HomeModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	// banner, hints and feedback take roughly 24 lines
	m.list.SetPageSize(max(5, height-24))
}

// Reload fetches the entity list again.
func (m *HomeModel) Reload() tea.Cmd {
	if m.entities == nil {
		return nil
	}
	m.loading = true
	return tea.Batch(m.spinner.Tick, m.loadEntities())
}

// HasInput reports whether an open dialog holds typed text.
func (m HomeModel) HasInput() bool {
	return m.newEntity.HasInput() || m.newFlow.HasInput() || m.runOpts.IsVisible()
}

// DialogOpen reports whether any dialog owns the keyboard.
func (m HomeModel) DialogOpen() bool {
	return m.FormName() != ""
}

const (
	formNewEntity  = "new entity"
	formNewFlow    = "new flow"
	formRunOptions = "run options"
)

// FormName names the dialog that owns the keyboard, or "" when the list
// does. The order matches HandleKey and View.
func (m HomeModel) FormName() string {
	switch {
	case m.newEntity.IsVisible():
		return formNewEntity
	case m.newFlow.IsVisible():
		return formNewFlow
	case m.runOpts.IsVisible():
		return formRunOptions
	}
	return ""
}

func (m HomeModel) Update(msg tea.Msg) (HomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case entitiesLoadedMsg:
		m.loading = false
		m.setItems(msg.items)
		return m, nil

	case entitySubscribedMsg:
		m.sub = msg.sub
		m.logger.Debug("subscribed to entity changes")
		return m, waitForEntityChange(m.sub.ch)

	case entityChangedMsg:
		m.logger.Debug("entity definition changed", "path", msg.path)
		cmds := []tea.Cmd{m.loadEntities()}
		if m.sub != nil {
			cmds = append(cmds, waitForEntityChange(m.sub.ch))
		}
		return m, tea.Batch(cmds...)

	case entityStreamClosedMsg:
		m.logger.Info("entity change stream closed")
		return m, nil

	case newEntitySubmittedMsg:
		return m, m.createEntity(msg.input)

	case entityCreatedMsg:
		e := msg.entity
		normalizeFlows(&e)
		m.items = append(m.items, &e)
		m.refreshRows()
		return m, nil

	case newFlowSubmittedMsg:
		return m, m.createFlow(msg.entity, msg.kind, msg.input)

	case flowCreatedMsg:
		m.appendFlow(msg.entity, msg.kind, msg.flow)
		return m, nil

	case runOptionsLoadedMsg:
		if m.newEntity.IsVisible() || m.newFlow.IsVisible() {
			// the user moved on to another form while the options loaded
			m.logger.Debug("dropping run options", "flow", flowName(msg.flow))
			return m, nil
		}
		cmd := m.runOpts.Show(msg.entity, msg.flow, msg.options, msg.anchor)
		m.anchorRunOptions()
		return m, cmd

	case runOptionsConfirmedMsg:
		if msg.flow == nil {
			return m, nil
		}
		return m, tea.Batch(
			m.runInputFlowCmd(*msg.flow, msg.options),
			notifyRunStarting(msg.entity, msg.flow),
		)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case errMsg:
		m.loading = false
		return m, nil

	case tea.KeyMsg:
		return m.HandleKey(newUIEvent(msg))
	}
	return m, nil
}

// HandleKey routes a key press. Dialogs take every key while open, in the
// same order View draws them.
func (m HomeModel) HandleKey(ev *uiEvent) (HomeModel, tea.Cmd) {
	msg := ev.Key
	var cmd tea.Cmd
	switch {
	case m.newEntity.IsVisible():
		ev.StopPropagation()
		m.newEntity, cmd = m.newEntity.Update(msg)
		return m, cmd
	case m.newFlow.IsVisible():
		ev.StopPropagation()
		m.newFlow, cmd = m.newFlow.Update(msg)
		return m, cmd
	case m.runOpts.IsVisible():
		ev.StopPropagation()
		m.runOpts, cmd = m.runOpts.Update(msg)
		return m, cmd
	}

	ev.Row = m.list.Selected()
	row, ok := m.selectedRow()

	switch {
	case key.Matches(msg, keys.Down):
		m.list.Down()
	case key.Matches(msg, keys.Up):
		m.list.Up()
	case key.Matches(msg, keys.Open):
		if !ok {
			return m, nil
		}
		switch row.kind {
		case rowEntity:
			if err := m.Toggle(row.entity); err != nil {
				return m, errCmd(err)
			}
		case rowGroup:
			return m, m.ShowNewFlow(row.entity, string(row.flowType))
		case rowFlow:
			m.SetActiveFlow(row.entity, row.flow, string(row.flowType))
		}
	case key.Matches(msg, keys.Run):
		if ok && row.kind == rowFlow {
			return m, m.RunFlow(ev, row.entity, row.flow, string(row.flowType))
		}
	case key.Matches(msg, keys.NewEntity):
		return m, m.ShowNewEntity()
	case key.Matches(msg, keys.NewInput):
		if ok {
			return m, m.ShowNewFlow(row.entity, string(api.FlowTypeInput))
		}
	case key.Matches(msg, keys.NewHarmonize):
		if ok {
			return m, m.ShowNewFlow(row.entity, string(api.FlowTypeHarmonize))
		}
	}
	return m, nil
}

// --- Collapse State ---

// IsCollapsed reads the stored flag for e. Unknown entities and unreadable
// flags count as collapsed.
func (m HomeModel) IsCollapsed(e *api.Entity) bool {
	if e == nil || m.prefs == nil {
		return true
	}
	value, ok, err := m.prefs.Get(prefs.CollapsedKey(e.Name))
	if err != nil {
		m.logger.Warn("read collapsed flag", "entity", e.Name, "error", err)
		return true
	}
	if !ok {
		return true
	}
	return value == "true"
}

// SetCollapsed stores the collapsed flag for e.
func (m HomeModel) SetCollapsed(e *api.Entity, collapsed bool) error {
	if e == nil {
		return nil
	}
	value := "false"
	if collapsed {
		value = "true"
	}
	if err := m.prefs.Set(prefs.CollapsedKey(e.Name), value); err != nil {
		return fmt.Errorf("save collapsed flag for %s: %w", e.Name, err)
	}
	return nil
}

// Toggle expands e, collapsing every other entity, or collapses it if it was
// already expanded.
func (m *HomeModel) Toggle(e *api.Entity) error {
	if e == nil {
		return nil
	}
	wasCollapsed := m.IsCollapsed(e)
	for _, item := range m.items {
		if err := m.SetCollapsed(item, true); err != nil {
			return err
		}
	}
	if err := m.SetCollapsed(e, !wasCollapsed); err != nil {
		return err
	}
	m.refreshRows()
	return nil
}

// --- Selection ---

// SetActiveFlow records the selected flow. An open run-options dialog belongs
// to the previous selection and is cancelled first.
func (m *HomeModel) SetActiveFlow(e *api.Entity, f *api.Flow, kind string) {
	if m.runOpts.IsVisible() {
		m.runOpts.Cancel()
	}
	m.activeEntity = e
	m.activeFlow = f
	m.activeKind = kind
}

// IsActive reports whether e is the entity of the active flow.
func (m HomeModel) IsActive(e *api.Entity) bool {
	return e != nil && m.activeEntity == e
}

// ActiveFlow returns the active selection.
func (m HomeModel) ActiveFlow() (*api.Entity, *api.Flow, string) {
	return m.activeEntity, m.activeFlow, m.activeKind
}

// --- Create ---

// ShowNewEntity opens the new entity dialog. Submitting it creates the entity
// and appends it to the list.
func (m *HomeModel) ShowNewEntity() tea.Cmd {
	return m.newEntity.Show()
}

// ShowNewFlow opens the new flow dialog for e. kind is passed to the backend
// as-is; only INPUT and HARMONIZE flows are appended locally.
func (m *HomeModel) ShowNewFlow(e *api.Entity, kind string) tea.Cmd {
	if e == nil {
		return nil
	}
	return m.newFlow.Show(e, kind)
}

func (m HomeModel) createEntity(input api.CreateEntityInput) tea.Cmd {
	if m.entities == nil {
		return nil
	}
	return func() tea.Msg {
		created, err := m.entities.CreateEntity(input)
		if err != nil {
			return errMsg{err}
		}
		return entityCreatedMsg{entity: *created}
	}
}

func (m HomeModel) createFlow(e *api.Entity, kind string, input api.CreateFlowInput) tea.Cmd {
	if m.flows == nil || e == nil {
		return nil
	}
	entity := *e
	return func() tea.Msg {
		created, err := m.flows.CreateFlow(entity, api.FlowType(kind), input)
		if err != nil {
			return errMsg{err}
		}
		return flowCreatedMsg{entity: e, kind: kind, flow: *created}
	}
}

func (m *HomeModel) appendFlow(e *api.Entity, kind string, flow api.Flow) {
	if e == nil {
		return
	}
	if flow.EntityName == "" {
		flow.EntityName = e.Name
	}
	switch kind {
	case string(api.FlowTypeInput):
		if flow.Type == "" {
			flow.Type = api.FlowTypeInput
		}
		e.InputFlows = append(e.InputFlows, flow)
	case string(api.FlowTypeHarmonize):
		if flow.Type == "" {
			flow.Type = api.FlowTypeHarmonize
		}
		e.HarmonizeFlows = append(e.HarmonizeFlows, flow)
	default:
		return
	}
	if m.activeEntity == e && m.activeFlow != nil {
		// the append may have moved the backing array
		_, m.activeFlow = findFlow([]*api.Entity{e}, e.Name, m.activeKind, m.activeFlow)
	}
	m.refreshRows()
}

// --- Run ---

// RunFlow dispatches on kind, ignoring case. Kinds other than input and
// harmonize do nothing.
func (m *HomeModel) RunFlow(ev *uiEvent, e *api.Entity, f *api.Flow, kind string) tea.Cmd {
	switch strings.ToLower(kind) {
	case "input":
		return m.RunInputFlow(ev, e, f)
	case "harmonize":
		return m.RunHarmonizeFlow(ev, e, f)
	}
	return nil
}

// RunInputFlow fetches the flow's run options and opens the options dialog
// under the row that triggered ev. The run starts when the dialog is
// confirmed.
func (m *HomeModel) RunInputFlow(ev *uiEvent, e *api.Entity, f *api.Flow) tea.Cmd {
	ev.StopPropagation()
	if m.flows == nil || f == nil {
		return nil
	}
	anchor := -1
	if ev != nil {
		anchor = ev.Row
	}
	flow := *f
	return func() tea.Msg {
		options, err := m.flows.GetInputFlowOptions(flow)
		if err != nil {
			return errMsg{err}
		}
		return runOptionsLoadedMsg{entity: e, flow: f, options: options, anchor: anchor}
	}
}

// RunHarmonizeFlow starts the flow straight away.
func (m *HomeModel) RunHarmonizeFlow(ev *uiEvent, e *api.Entity, f *api.Flow) tea.Cmd {
	ev.StopPropagation()
	if m.flows == nil || f == nil {
		return nil
	}
	flow := *f
	logger := m.logger
	run := func() tea.Msg {
		logger.Info("running harmonize flow", "entity", flow.EntityName, "flow", flow.Name)
		if err := m.flows.RunHarmonizeFlow(flow); err != nil {
			return errMsg{err}
		}
		return nil
	}
	return tea.Batch(run, notifyRunStarting(e, f))
}

func (m HomeModel) runInputFlowCmd(flow api.Flow, options api.RunOptions) tea.Cmd {
	if m.flows == nil {
		return nil
	}
	return func() tea.Msg {
		if err := m.flows.RunInputFlow(flow, options); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

func notifyRunStarting(e *api.Entity, f *api.Flow) tea.Cmd {
	if f == nil {
		return nil
	}
	entityName := f.EntityName
	if e != nil {
		entityName = e.Name
	}
	text := entityName + ": " + f.Name + " starting..."
	return func() tea.Msg {
		return toastMsg{level: "info", text: text}
	}
}

// --- Loading ---

func (m HomeModel) loadEntities() tea.Cmd {
	if m.entities == nil {
		return nil
	}
	return func() tea.Msg {
		items, err := m.entities.GetEntities()
		if err != nil {
			return errMsg{err}
		}
		return entitiesLoadedMsg{items}
	}
}

func (m HomeModel) subscribe() tea.Cmd {
	repo := m.entities
	logger := m.logger
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		ch, err := repo.SubscribeEntityChanges(ctx)
		if err != nil {
			cancel()
			logger.Warn("entity change subscription failed", "error", err)
			return errMsg{err}
		}
		return entitySubscribedMsg{sub: &entitySubscription{cancel: cancel, ch: ch}}
	}
}

func waitForEntityChange(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		path, ok := <-ch
		if !ok {
			return entityStreamClosedMsg{}
		}
		return entityChangedMsg{path: path}
	}
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg { return errMsg{err} }
}

// setItems replaces the list, carrying the active selection over by name.
func (m *HomeModel) setItems(items []api.Entity) {
	next := make([]*api.Entity, len(items))
	for i := range items {
		e := items[i]
		e.InputFlows = append([]api.Flow(nil), e.InputFlows...)
		e.HarmonizeFlows = append([]api.Flow(nil), e.HarmonizeFlows...)
		normalizeFlows(&e)
		next[i] = &e
	}
	m.items = next

	if m.activeEntity != nil {
		entity, flow := findFlow(next, m.activeEntity.Name, m.activeKind, m.activeFlow)
		m.activeEntity = entity
		m.activeFlow = flow
		if entity == nil {
			m.activeKind = ""
		}
	}
	m.refreshRows()
}

func findFlow(items []*api.Entity, entityName, kind string, current *api.Flow) (*api.Entity, *api.Flow) {
	for _, e := range items {
		if e.Name != entityName {
			continue
		}
		if current == nil {
			return e, nil
		}
		for _, f := range flowsOf(e, api.FlowType(strings.ToUpper(kind))) {
			if f.Name == current.Name {
				return e, f
			}
		}
		return e, nil
	}
	return nil, nil
}

func normalizeFlows(e *api.Entity) {
	for i := range e.InputFlows {
		if e.InputFlows[i].EntityName == "" {
			e.InputFlows[i].EntityName = e.Name
		}
		if e.InputFlows[i].Type == "" {
			e.InputFlows[i].Type = api.FlowTypeInput
		}
	}
	for i := range e.HarmonizeFlows {
		if e.HarmonizeFlows[i].EntityName == "" {
			e.HarmonizeFlows[i].EntityName = e.Name
		}
		if e.HarmonizeFlows[i].Type == "" {
			e.HarmonizeFlows[i].Type = api.FlowTypeHarmonize
		}
	}
}

func flowsOf(e *api.Entity, t api.FlowType) []*api.Flow {
	var src []api.Flow
	switch t {
	case api.FlowTypeInput:
		src = e.InputFlows
	case api.FlowTypeHarmonize:
		src = e.HarmonizeFlows
	}
	out := make([]*api.Flow, len(src))
	for i := range src {
		out[i] = &src[i]
	}
	return out
}

func (m *HomeModel) refreshRows() {
	rows := make([]homeRow, 0, len(m.items))
	for _, e := range m.items {
		rows = append(rows, homeRow{kind: rowEntity, entity: e})
		if m.IsCollapsed(e) {
			continue
		}
		for _, t := range []api.FlowType{api.FlowTypeInput, api.FlowTypeHarmonize} {
			rows = append(rows, homeRow{kind: rowGroup, entity: e, flowType: t})
			for _, f := range flowsOf(e, t) {
				rows = append(rows, homeRow{kind: rowFlow, entity: e, flowType: t, flow: f})
			}
		}
	}
	m.rows = rows

	labels := make([]string, len(rows))
	for i, r := range rows {
		labels[i] = m.rowText(r)
	}
	m.list.Replace(labels)

	if m.runOpts.IsVisible() {
		m.anchorRunOptions()
	}
}

// anchorRunOptions places the run-options dialog under its flow's row, or
// nowhere when that row is gone.
func (m *HomeModel) anchorRunOptions() {
	f := m.runOpts.Flow()
	row := -1
	for i, r := range m.rows {
		if f != nil && r.kind == rowFlow && r.flowType == api.FlowTypeInput &&
			r.flow.EntityName == f.EntityName && r.flow.Name == f.Name {
			row = i
			break
		}
	}
	m.runOpts.SetAnchor(row)
}

func flowName(f *api.Flow) string {
	if f == nil {
		return ""
	}
	return f.Name
}

func (m HomeModel) selectedRow() (homeRow, bool) {
	idx := m.list.Selected()
	if idx < 0 || idx >= len(m.rows) {
		return homeRow{}, false
	}
	return m.rows[idx], true
}

// --- View ---

func (m HomeModel) rowText(r homeRow) string {
	switch r.kind {
	case rowEntity:
		marker := "▸"
		if !m.IsCollapsed(r.entity) {
			marker = "▾"
		}
		counts := fmt.Sprintf("%d input · %d harmonize", len(r.entity.InputFlows), len(r.entity.HarmonizeFlows))
		return marker + " " + components.SanitizeOneLine(r.entity.Name) + "  " + counts
	case rowGroup:
		return "    " + flowKindLabel(string(r.flowType)) + " flows  +"
	case rowFlow:
		return "      " + components.SanitizeOneLine(r.flow.Name)
	}
	return ""
}

func (m HomeModel) View() string {
	if m.newEntity.IsVisible() {
		return components.Indent(m.newEntity.View(m.width), 1)
	}
	if m.newFlow.IsVisible() {
		return components.Indent(m.newFlow.View(m.width), 1)
	}
	return components.Indent(m.renderList(), 1)
}

func (m HomeModel) renderList() string {
	contentWidth := components.BoxContentWidth(m.width)
	dialog := ""
	if m.runOpts.IsVisible() {
		dialog = m.runOpts.View(contentWidth - 2)
	}

	if m.loading && len(m.items) == 0 {
		return joinDialog("  "+m.spinner.View()+MutedStyle.Render(" Loading entities..."), dialog)
	}
	if len(m.items) == 0 {
		return joinDialog(components.Box(MutedStyle.Render("No entities yet. Press n to create one."), m.width), dialog)
	}

	anchor := m.runOpts.Anchor()
	drawn := false

	var rows strings.Builder
	visible := m.list.Visible()
	for i := range visible {
		absIdx := m.list.RelToAbs(i)
		if absIdx < 0 || absIdx >= len(m.rows) {
			continue
		}
		r := m.rows[absIdx]
		label := components.ClampTextWidth(visible[i], contentWidth-2)
		style := NormalStyle
		switch {
		case m.list.IsSelected(absIdx):
			style = SelectedStyle
		case r.kind == rowGroup:
			style = MutedStyle
		case r.kind == rowEntity && m.IsActive(r.entity):
			style = AccentStyle
		}
		prefix := "  "
		if r.kind == rowFlow && r.flow == m.activeFlow {
			prefix = AccentStyle.Render("● ")
		}
		rows.WriteString(prefix + style.Render(label))
		if dialog != "" && absIdx == anchor {
			rows.WriteString("\n" + dialog)
			drawn = true
		}
		if i < len(visible)-1 {
			rows.WriteString("\n")
		}
	}

	countLine := fmt.Sprintf("%d entities", len(m.items))
	if m.loading {
		countLine += " · " + m.spinner.View() + "refreshing"
	}
	body := MutedStyle.Render(countLine) + "\n\n"
	if dialog != "" && !drawn {
		// its row is collapsed, gone or scrolled away
		body += dialog + "\n\n"
	}
	body += rows.String()
	out := components.TitledBox("Entities", body, m.width)
	if panel := m.renderActiveFlow(); panel != "" {
		out = lipgloss.JoinVertical(lipgloss.Left, out, "", panel)
	}
	return out
}

func joinDialog(base, dialog string) string {
	if dialog == "" {
		return base
	}
	return base + "\n\n" + dialog
}

func (m HomeModel) renderActiveFlow() string {
	if m.activeFlow == nil {
		return ""
	}
	rows := []components.TableRow{
		{Label: "Entity", Value: m.activeFlow.EntityName},
		{Label: "Flow", Value: m.activeFlow.Name},
		{Label: "Type", Value: flowKindLabel(m.activeKind)},
	}
	if m.activeFlow.PluginFormat != "" {
		rows = append(rows, components.TableRow{Label: "Plugin", Value: m.activeFlow.PluginFormat})
	}
	if m.activeFlow.DataFormat != "" {
		rows = append(rows, components.TableRow{Label: "Data", Value: m.activeFlow.DataFormat})
	}
	return components.Table("Active Flow", rows, m.width)
}
