package api

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"
)

// --- API Response Envelope ---

type apiResponse[T any] struct {
	Data  T       `json:"data"`
	Error *apiErr `json:"error,omitempty"`
}

type apiErr struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// --- Flow Types ---

// FlowType tags a flow as an input (raw ingestion) or harmonize
// (transformation) pipeline.
type FlowType string

const (
	FlowTypeInput     FlowType = "INPUT"
	FlowTypeHarmonize FlowType = "HARMONIZE"
)

// ParseFlowType matches s case-insensitively against the known flow types.
func ParseFlowType(s string) (FlowType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input":
		return FlowTypeInput, true
	case "harmonize":
		return FlowTypeHarmonize, true
	}
	return "", false
}

// PathSegment is the lowercase form used in REST paths.
func (t FlowType) PathSegment() string {
	return strings.ToLower(string(t))
}

// Plugin and data formats accepted by the hub when scaffolding code.
var (
	PluginFormats = []string{"JAVASCRIPT", "XQUERY"}
	DataFormats   = []string{"JSON", "XML"}
)

// --- Entity ---

// Entity is a named data domain and the flows that feed it.
type Entity struct {
	Name           string `json:"entityName"`
	PluginFormat   string `json:"pluginFormat,omitempty"`
	InputFlows     []Flow `json:"inputFlows"`
	HarmonizeFlows []Flow `json:"harmonizeFlows"`
}

// CreateEntityInput is the draft submitted by the new-entity dialog.
type CreateEntityInput struct {
	Name         string `json:"entityName"`
	PluginFormat string `json:"pluginFormat,omitempty"`
}

// --- Flow ---

// Flow is a named pipeline belonging to one entity.
type Flow struct {
	EntityName   string   `json:"entityName"`
	Name         string   `json:"flowName"`
	Type         FlowType `json:"flowType"`
	PluginFormat string   `json:"pluginFormat,omitempty"`
	DataFormat   string   `json:"dataFormat,omitempty"`
}

// CreateFlowInput is the draft submitted by the new-flow dialog.
type CreateFlowInput struct {
	Name         string `json:"flowName"`
	PluginFormat string `json:"pluginFormat,omitempty"`
	DataFormat   string `json:"dataFormat,omitempty"`
}

// RunOptions are the run-time settings for an input flow. The hub builds
// them from the flow's MLCP defaults; values stay as the JSON the hub sent
// so anything the client does not edit goes back unchanged. Only scalar
// values are editable, as text.
type RunOptions map[string]json.RawMessage

// Clone returns an independent copy.
func (o RunOptions) Clone() RunOptions {
	if o == nil {
		return nil
	}
	out := make(RunOptions, len(o))
	for k, v := range o {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}

// Text returns the editable form of the value at key: strings unquoted,
// numbers, booleans and null as written. Objects and arrays are not
// editable.
func (o RunOptions) Text(key string) (string, bool) {
	raw, ok := o[key]
	if !ok {
		return "", false
	}
	switch jsonKind(raw) {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false
		}
		return s, true
	case '{', '[':
		return "", false
	}
	return string(bytes.TrimSpace(raw)), true
}

// SetText stores text at key. Where the current value is not a string,
// text that is valid JSON is stored as is, so a number stays a number.
// Everything else becomes a JSON string.
func (o RunOptions) SetText(key, text string) {
	if raw, ok := o[key]; ok {
		if k := jsonKind(raw); k != '"' && k != 0 {
			candidate := []byte(strings.TrimSpace(text))
			if len(candidate) > 0 && json.Valid(candidate) {
				o[key] = json.RawMessage(candidate)
				return
			}
		}
	}
	b, _ := json.Marshal(text)
	o[key] = b
}

// Keys returns the option names in sorted order.
func (o RunOptions) Keys() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func jsonKind(raw []byte) byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0
	}
	return raw[0]
}

// --- Status ---

// Status is the hub health payload.
type Status struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Project string `json:"project,omitempty"`
}
