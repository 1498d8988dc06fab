package ui

import (
	"context"
	"encoding/json"
	"regexp"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/quickstart-labs/hubctl/internal/api"
)

type flowCall struct {
	entity   string
	flowType api.FlowType
	input    api.CreateFlowInput
}

type inputRun struct {
	flow    api.Flow
	options api.RunOptions
}

// fakeBackend records every call and answers from its fields.
type fakeBackend struct {
	mu sync.Mutex

	entities   []api.Entity
	getErr     error
	getCalls   int
	createErr  error
	created    []api.CreateEntityInput
	flowCalls  []flowCall
	options    api.RunOptions
	optionsErr error
	optionsFor []api.Flow
	inputRuns  []inputRun
	harmonized []api.Flow
	runErr     error
	status     *api.Status
	statusErr  error

	changes chan string
	subErr  error
	subCtx  context.Context
}

func newFakeBackend(entities ...api.Entity) *fakeBackend {
	return &fakeBackend{
		entities: entities,
		options:  api.RunOptions{},
		status:   &api.Status{Status: "ok", Version: "4.1.0"},
		changes:  make(chan string),
	}
}

func (f *fakeBackend) GetEntities() ([]api.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.getErr != nil {
		return nil, f.getErr
	}
	out := make([]api.Entity, len(f.entities))
	copy(out, f.entities)
	return out, nil
}

func (f *fakeBackend) CreateEntity(input api.CreateEntityInput) (*api.Entity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, input)
	if f.createErr != nil {
		return nil, f.createErr
	}
	return &api.Entity{Name: input.Name, PluginFormat: input.PluginFormat}, nil
}

func (f *fakeBackend) SubscribeEntityChanges(ctx context.Context) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.subCtx = ctx
	return f.changes, nil
}

func (f *fakeBackend) CreateFlow(entity api.Entity, flowType api.FlowType, input api.CreateFlowInput) (*api.Flow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flowCalls = append(f.flowCalls, flowCall{entity: entity.Name, flowType: flowType, input: input})
	return &api.Flow{
		EntityName:   entity.Name,
		Name:         input.Name,
		Type:         flowType,
		PluginFormat: input.PluginFormat,
		DataFormat:   input.DataFormat,
	}, nil
}

func (f *fakeBackend) GetInputFlowOptions(flow api.Flow) (api.RunOptions, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.optionsFor = append(f.optionsFor, flow)
	if f.optionsErr != nil {
		return nil, f.optionsErr
	}
	return f.options.Clone(), nil
}

func (f *fakeBackend) RunInputFlow(flow api.Flow, options api.RunOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inputRuns = append(f.inputRuns, inputRun{flow: flow, options: options})
	return f.runErr
}

func (f *fakeBackend) RunHarmonizeFlow(flow api.Flow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.harmonized = append(f.harmonized, flow)
	return f.runErr
}

func (f *fakeBackend) Status() (*api.Status, error) {
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

// collectMsgs runs cmd and every command nested in a batch. Commands that
// would block on a timer must not reach it.
func collectMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collectMsgs(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

func msgsOfType[T any](msgs []tea.Msg) []T {
	var out []T
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			out = append(out, v)
		}
	}
	return out
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyRight = tea.KeyMsg{Type: tea.KeyRight}
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

func rawOptions(t *testing.T, payload string) api.RunOptions {
	t.Helper()
	var opts api.RunOptions
	require.NoError(t, json.Unmarshal([]byte(payload), &opts))
	return opts
}

func optionsJSON(t *testing.T, opts api.RunOptions) string {
	t.Helper()
	b, err := json.Marshal(opts)
	require.NoError(t, err)
	return string(b)
}
