package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/quickstart-labs/hubctl/internal/config"
)

// isolateHome points config and prefs at a temp dir.
func isolateHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv(config.BaseURLEnv, "")
	return dir
}

func loggedIn(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	isolateHome(t)
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	require.NoError(t, (&config.Config{BaseURL: srv.URL, APIKey: "hub_test"}).Save())
	return srv
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func pipeStdin(t *testing.T, input string) {
	t.Helper()
	oldStdin := os.Stdin
	t.Cleanup(func() { os.Stdin = oldStdin })

	r, w, err := os.Pipe()
	require.NoError(t, err)
	_, _ = io.WriteString(w, input)
	_ = w.Close()
	os.Stdin = r
}
