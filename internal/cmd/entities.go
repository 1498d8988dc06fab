package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/quickstart-labs/hubctl/internal/api"
)

// EntitiesCmd returns the `hubctl entities` command.
func EntitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "entities",
		Short: "List entities and their flows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			entities, err := s.client.GetEntities()
			if err != nil {
				return fmt.Errorf("list entities: %w", err)
			}
			renderEntities(cmd.OutOrStdout(), entities)
			return nil
		},
	}
}

func renderEntities(w io.Writer, entities []api.Entity) {
	if len(entities) == 0 {
		fmt.Fprintln(w, "no entities found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Entity", "Plugin", "Input Flows", "Harmonize Flows"})
	for _, e := range entities {
		t.AppendRow(table.Row{e.Name, orDash(e.PluginFormat), flowNames(e.InputFlows), flowNames(e.HarmonizeFlows)})
	}
	t.Render()
}

func flowNames(flows []api.Flow) string {
	if len(flows) == 0 {
		return "-"
	}
	names := make([]string, len(flows))
	for i, f := range flows {
		names[i] = f.Name
	}
	return strings.Join(names, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
