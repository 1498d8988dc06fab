package api

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateFlowPaths(t *testing.T) {
	cases := []struct {
		flowType FlowType
		path     string
	}{
		{FlowTypeInput, "/api/entities/Person/flows/input"},
		{FlowTypeHarmonize, "/api/entities/Person/flows/harmonize"},
	}
	for _, tc := range cases {
		t.Run(string(tc.flowType), func(t *testing.T) {
			_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, tc.path, r.URL.Path)

				var body CreateFlowInput
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Equal(t, "load", body.Name)
				assert.Equal(t, "JSON", body.DataFormat)

				w.Write(jsonResponse(map[string]any{
					"entityName": "Person",
					"flowName":   body.Name,
					"flowType":   string(tc.flowType),
					"dataFormat": body.DataFormat,
				}))
			})

			flow, err := client.CreateFlow(Entity{Name: "Person"}, tc.flowType, CreateFlowInput{
				Name:         "load",
				PluginFormat: "JAVASCRIPT",
				DataFormat:   "JSON",
			})
			require.NoError(t, err)
			assert.Equal(t, "load", flow.Name)
			assert.Equal(t, tc.flowType, flow.Type)
		})
	}
}

func TestFlowPathsEscapeNames(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entities/My%20Entity/flows/harmonize/a%2Fb/run", r.URL.EscapedPath())
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.RunHarmonizeFlow(Flow{EntityName: "My Entity", Name: "a/b"})
	require.NoError(t, err)
}

func TestGetInputFlowOptions(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/entities/Person/flows/input/load/run", r.URL.Path)
		w.Write(jsonResponse(map[string]string{
			"input_file_path": "/data/people",
			"input_file_type": "documents",
		}))
	})

	opts, err := client.GetInputFlowOptions(Flow{EntityName: "Person", Name: "load"})
	require.NoError(t, err)
	path, ok := opts.Text("input_file_path")
	assert.True(t, ok)
	assert.Equal(t, "/data/people", path)
	assert.JSONEq(t, `"documents"`, string(opts["input_file_type"]))
}

func TestGetInputFlowOptionsNullData(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":null}`))
	})

	opts, err := client.GetInputFlowOptions(Flow{EntityName: "Person", Name: "load"})
	require.NoError(t, err)
	assert.NotNil(t, opts)
	assert.Empty(t, opts)
}

func TestRunInputFlowSendsOptions(t *testing.T) {
	var captured []byte
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entities/Person/flows/input/load/run", r.URL.Path)
		captured, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
	})

	opts := RunOptions{"input_file_path": json.RawMessage(`"/tmp/in"`)}
	err := client.RunInputFlow(Flow{EntityName: "Person", Name: "load"}, opts)
	require.NoError(t, err)
	assert.JSONEq(t, `{"input_file_path":"/tmp/in"}`, string(captured))
}

func TestInputFlowOptionsRoundTripMixedTypes(t *testing.T) {
	const payload = `{"input_file_path":"/in","thread_count":4,"transform_param":{"k":"v"},"output_collections":["a","b"],"split":false}`
	var posted []byte
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Write([]byte(`{"data":` + payload + `}`))
		case http.MethodPost:
			posted, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusAccepted)
		}
	})

	flow := Flow{EntityName: "Person", Name: "load"}
	opts, err := client.GetInputFlowOptions(flow)
	require.NoError(t, err)
	assert.Equal(t, `4`, string(opts["thread_count"]))

	require.NoError(t, client.RunInputFlow(flow, opts))
	assert.JSONEq(t, payload, string(posted))
}

func TestRunInputFlowNilOptionsSendsEmptyObject(t *testing.T) {
	var raw string
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, client.RunInputFlow(Flow{EntityName: "Person", Name: "load"}, nil))
	assert.Equal(t, "{}", raw)
}

func TestRunHarmonizeFlow(t *testing.T) {
	var hits int
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		hits++
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/entities/Person/flows/harmonize/standardize/run", r.URL.Path)
		w.WriteHeader(http.StatusAccepted)
	})

	err := client.RunHarmonizeFlow(Flow{EntityName: "Person", Name: "standardize", Type: FlowTypeHarmonize})
	require.NoError(t, err)
	assert.Equal(t, 1, hits)
}

func TestRunHarmonizeFlowError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":{"code":"FLOW_RUNNING","message":"already running"}}`))
	})

	err := client.RunHarmonizeFlow(Flow{EntityName: "Person", Name: "standardize"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FLOW_RUNNING")
}
