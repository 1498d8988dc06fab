package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeEntityChangesStreamsPaths(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/entities/events", r.URL.Path)
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "event: change\ndata: /entities/Person/Person.entity.json\n\n")
		fmt.Fprint(w, "data:\n\n")
		fmt.Fprint(w, "data: /entities/Order\n\n")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := client.SubscribeEntityChanges(ctx)
	require.NoError(t, err)

	var got []string
	for path := range ch {
		got = append(got, path)
	}
	assert.Equal(t, []string{"/entities/Person/Person.entity.json", "/entities/Order"}, got)
}

func TestSubscribeEntityChangesCancelClosesChannel(t *testing.T) {
	release := make(chan struct{})
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: /entities/Person\n\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-release:
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := client.SubscribeEntityChanges(ctx)
	require.NoError(t, err)

	assert.Equal(t, "/entities/Person", <-ch)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}

func TestSubscribeEntityChangesHTTPError(t *testing.T) {
	_, client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	_, err := client.SubscribeEntityChanges(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 401")
}

func TestParseEventData(t *testing.T) {
	path, ok := parseEventData("data: /a")
	assert.True(t, ok)
	assert.Equal(t, "/a", path)

	_, ok = parseEventData("event: change")
	assert.False(t, ok)
	_, ok = parseEventData("data:   ")
	assert.False(t, ok)
}
