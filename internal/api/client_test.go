package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func testServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewClient(srv.URL, "hub_testkey")
	return srv, client
}

func jsonResponse(data any) []byte {
	b, _ := json.Marshal(map[string]any{"data": data})
	return b
}

func TestRequestHeaders(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer hub_testkey", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, err := uuid.Parse(r.Header.Get("X-Request-ID"))
		assert.NoError(t, err)
		w.Write(jsonResponse([]map[string]any{}))
	})

	_, err := client.GetEntities()
	require.NoError(t, err)
}

func TestRequestIDsAreUnique(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("X-Request-ID")] = true
		mu.Unlock()
		w.Write(jsonResponse([]map[string]any{}))
	})

	for i := 0; i < 3; i++ {
		_, err := client.GetEntities()
		require.NoError(t, err)
	}
	assert.Len(t, seen, 3)
}

func TestNoAuthorizationWithoutKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write(jsonResponse([]map[string]any{}))
	}))
	t.Cleanup(srv.Close)

	_, err := NewClient(srv.URL, "").GetEntities()
	require.NoError(t, err)
}

func TestHTTPError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(404)
		b, _ := json.Marshal(map[string]any{
			"error": map[string]any{
				"code":    "NOT_FOUND",
				"message": "entity not found",
			},
		})
		w.Write(b)
	})

	_, err := client.GetEntities()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "NOT_FOUND: entity not found")
}

func TestHTTPErrorDetailFallback(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"detail":"bad flow name"}`))
	})

	_, err := client.CreateEntity(CreateEntityInput{Name: "x"})
	require.Error(t, err)
	assert.Equal(t, "bad flow name", err.Error())
}

func TestHTTPErrorRawBody(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream down"))
	})

	_, err := client.GetEntities()
	require.Error(t, err)
	assert.Equal(t, "HTTP 502: upstream down", err.Error())
}

func TestNewClientCustomTimeout(t *testing.T) {
	client := NewClient("http://example.com", "hub_testkey", 5*time.Second)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestNewClientTrimsTrailingSlash(t *testing.T) {
	client := NewClient("http://example.com/", "")
	assert.Equal(t, "http://example.com", client.BaseURL())
}

func TestWithTimeoutKeepsTarget(t *testing.T) {
	client := NewClient("http://example.com", "hub_testkey")
	clone := client.WithTimeout(time.Second)
	assert.Equal(t, time.Second, clone.httpClient.Timeout)
	assert.Equal(t, client.BaseURL(), clone.BaseURL())
	assert.Equal(t, "hub_testkey", clone.apiKey)
}

func TestClientConcurrentRequests(t *testing.T) {
	var count atomic.Int32
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		count.Add(1)
		w.Write(jsonResponse([]map[string]any{}))
	})

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.GetEntities()
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(workers), count.Load())
}

func TestParseFlowType(t *testing.T) {
	for _, in := range []string{"input", "INPUT", "Input", " input "} {
		ft, ok := ParseFlowType(in)
		assert.True(t, ok, in)
		assert.Equal(t, FlowTypeInput, ft)
	}
	for _, in := range []string{"harmonize", "HARMONIZE", "Harmonize"} {
		ft, ok := ParseFlowType(in)
		assert.True(t, ok, in)
		assert.Equal(t, FlowTypeHarmonize, ft)
	}
	_, ok := ParseFlowType("export")
	assert.False(t, ok)
}

func TestRunOptionsClone(t *testing.T) {
	orig := RunOptions{"input_file_path": json.RawMessage(`"/data"`)}
	clone := orig.Clone()
	clone["input_file_path"][1] = 'X'
	clone.SetText("thread_count", "4")
	assert.JSONEq(t, `"/data"`, string(orig["input_file_path"]))
	assert.NotContains(t, orig, "thread_count")
	assert.Nil(t, RunOptions(nil).Clone())
}

func TestRunOptionsText(t *testing.T) {
	var opts RunOptions
	require.NoError(t, json.Unmarshal([]byte(`{
		"path": " /in ",
		"threads": 4,
		"split": true,
		"collections": ["a", "b"],
		"params": {"k": "v"},
		"module": null
	}`), &opts))

	cases := []struct {
		key  string
		text string
		ok   bool
	}{
		{"path", " /in ", true},
		{"threads", "4", true},
		{"split", "true", true},
		{"module", "null", true},
		{"collections", "", false},
		{"params", "", false},
		{"missing", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			text, ok := opts.Text(tc.key)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.text, text)
		})
	}
	assert.Equal(t, []string{"collections", "module", "params", "path", "split", "threads"}, opts.Keys())
}

func TestRunOptionsSetTextKeepsJSONKind(t *testing.T) {
	opts := RunOptions{
		"threads": json.RawMessage(`4`),
		"split":   json.RawMessage(`true`),
		"path":    json.RawMessage(`"/in"`),
	}

	opts.SetText("threads", " 8 ")
	opts.SetText("split", "not a bool")
	opts.SetText("path", "42")
	opts.SetText("added", "7")

	assert.Equal(t, `8`, string(opts["threads"]))
	assert.Equal(t, `"not a bool"`, string(opts["split"]))
	assert.Equal(t, `"42"`, string(opts["path"]))
	assert.Equal(t, `"7"`, string(opts["added"]))
}
