package cmd

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quickstart-labs/hubctl/internal/config"
	"github.com/quickstart-labs/hubctl/internal/prefs"
)

// PrefsCmd returns the `hubctl prefs` command group.
func PrefsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or reset local display preferences",
	}
	cmd.AddCommand(prefsListCmd())
	cmd.AddCommand(prefsResetCmd())
	return cmd
}

// openPrefs opens the store named by config, or the default location when
// there is no usable config.
func openPrefs() (*prefs.SQLiteStore, error) {
	cfg, _ := config.Load()
	store, err := prefs.OpenSQLite(cfg.PrefsFile())
	if err != nil {
		return nil, fmt.Errorf("open prefs: %w", err)
	}
	return store, nil
}

func prefsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openPrefs()
			if err != nil {
				return err
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if err := renderPrefs(out, store); err != nil {
				return err
			}
			version, err := store.MigrationVersion()
			if err != nil {
				return fmt.Errorf("read prefs schema: %w", err)
			}
			fmt.Fprintf(out, "%s (schema version %d)\n", store.Path(), version)
			return nil
		},
	}
}

type keyLister interface {
	prefs.Store
	Keys() ([]string, error)
}

func renderPrefs(w io.Writer, store keyLister) error {
	keys, err := store.Keys()
	if err != nil {
		return fmt.Errorf("list prefs: %w", err)
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "no preferences stored")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Key", "Value"})
	for _, k := range keys {
		v, _, err := store.Get(k)
		if err != nil {
			return fmt.Errorf("read pref %s: %w", k, err)
		}
		t.AppendRow(table.Row{k, v})
	}
	t.Render()
	return nil
}

func prefsResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Forget which entities are expanded",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openPrefs()
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.DeleteSuffix(prefs.CollapsedSuffix)
			if err != nil {
				return fmt.Errorf("reset prefs: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleared %d collapsed flags\n", n)
			return nil
		},
	}
}
