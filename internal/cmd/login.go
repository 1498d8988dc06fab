package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/config"
)

// RunInteractiveLogin prompts for the hub URL and API key, checks them
// against the hub status endpoint, and persists config.
func RunInteractiveLogin(in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	// keep local settings from an earlier login
	cfg, err := config.Load()
	if err != nil {
		cfg = &config.Config{}
	}

	defaultURL := strings.TrimSpace(cfg.BaseURL)
	if defaultURL == "" {
		defaultURL = api.DefaultBaseURL
	}

	fmt.Fprintf(out, "hub url [%s]: ", defaultURL)
	baseURL := readLine(reader)
	if baseURL == "" {
		baseURL = defaultURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	fmt.Fprint(out, "api key: ")
	apiKey := readLine(reader)
	if apiKey == "" {
		return errors.New("api key is required")
	}

	fmt.Fprint(out, "username (optional): ")
	username := readLine(reader)

	client := api.NewClient(baseURL, apiKey)
	status, err := client.Status()
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	cfg.BaseURL = baseURL
	cfg.APIKey = apiKey
	cfg.Username = username
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	if status.Version != "" {
		fmt.Fprintf(out, "connected to %s (hub %s)\n", baseURL, status.Version)
	} else {
		fmt.Fprintf(out, "connected to %s\n", baseURL)
	}
	fmt.Fprintf(out, "config saved to %s\n", config.Path())
	return nil
}

func readLine(r *bufio.Reader) string {
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// LoginCmd returns the `hubctl login` command.
func LoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Connect hubctl to a data hub",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunInteractiveLogin(os.Stdin, cmd.OutOrStdout())
		},
	}
}
