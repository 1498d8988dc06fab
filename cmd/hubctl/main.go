package main

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/quickstart-labs/hubctl/internal/api"
	"github.com/quickstart-labs/hubctl/internal/cmd"
	"github.com/quickstart-labs/hubctl/internal/config"
	"github.com/quickstart-labs/hubctl/internal/logging"
	"github.com/quickstart-labs/hubctl/internal/prefs"
	"github.com/quickstart-labs/hubctl/internal/ui"
)

func main() {
	var noPersist bool
	root := &cobra.Command{
		Use:   "hubctl",
		Short: "hubctl - data hub console",
		Long:  "hubctl: browse entities, scaffold input and harmonize flows, and start flow runs.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runTUI(noPersist)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.Flags().BoolVar(&noPersist, "no-persist", false, "keep display preferences in memory only")

	root.AddCommand(cmd.LoginCmd())
	root.AddCommand(cmd.EntitiesCmd())
	root.AddCommand(cmd.RunCmd())
	root.AddCommand(cmd.PrefsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	// Force truecolor so hex colors render correctly
	// Must be set before any lipgloss style initialization
	os.Setenv("COLORTERM", "truecolor")
}

func runTUI(noPersist bool) error {
	cfg, err := config.Load()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if !isInteractiveTerminal(os.Stdin) || !isInteractiveTerminal(os.Stdout) {
				fmt.Println("not logged in. run 'hubctl login' first.")
				return err
			}
			cfg = nil
		} else {
			return err
		}
	}

	var logFile, logLevel, apiKey string
	if cfg != nil {
		logFile, logLevel, apiKey = cfg.LogFile, cfg.LogLevel, cfg.APIKey
	}
	logger, closeLog, err := logging.Open(logFile, logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	baseURL := cfg.ResolvedBaseURL()
	if baseURL == "" {
		baseURL = api.DefaultBaseURL
	}
	client := api.NewClient(baseURL, apiKey)
	client.SetLogger(logger)

	var store prefs.Store
	if noPersist {
		store = prefs.NewMemoryStore()
	} else {
		db, err := prefs.OpenSQLite(cfg.PrefsFile())
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
	}

	logger.Info("starting tui", "base_url", baseURL, "persist", !noPersist)
	app := ui.NewApp(client, store, cfg, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	final, err := p.Run()
	if a, ok := final.(ui.App); ok {
		a.Close()
	}
	if err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func isInteractiveTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
