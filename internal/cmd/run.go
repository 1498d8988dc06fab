package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/quickstart-labs/hubctl/internal/api"
)

type flowRunner interface {
	GetInputFlowOptions(flow api.Flow) (api.RunOptions, error)
	RunInputFlow(flow api.Flow, options api.RunOptions) error
	RunHarmonizeFlow(flow api.Flow) error
}

// RunCmd returns the `hubctl run` command.
func RunCmd() *cobra.Command {
	var (
		flowType string
		options  []string
	)
	cmd := &cobra.Command{
		Use:   "run <entity> <flow>",
		Short: "Start a flow run",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := api.ParseFlowType(flowType)
			if !ok {
				return fmt.Errorf("unknown flow type %q (want input or harmonize)", flowType)
			}
			overrides, err := parseOptions(options)
			if err != nil {
				return err
			}

			s, err := openSession()
			if err != nil {
				return err
			}
			defer s.close()

			flow := api.Flow{EntityName: args[0], Name: args[1], Type: kind}
			return runFlow(s.client, cmd.OutOrStdout(), flow, overrides)
		},
	}
	cmd.Flags().StringVarP(&flowType, "type", "t", "input", "flow type: input or harmonize")
	cmd.Flags().StringArrayVarP(&options, "option", "o", nil, "run option override as key=value (input flows only)")
	return cmd
}

// runFlow starts flow. Input flows run with the hub's suggested options,
// overridden by overrides. A value replacing a number or boolean keeps its
// JSON kind when it still parses as one.
func runFlow(r flowRunner, out io.Writer, flow api.Flow, overrides map[string]string) error {
	switch flow.Type {
	case api.FlowTypeInput:
		opts, err := r.GetInputFlowOptions(flow)
		if err != nil {
			return fmt.Errorf("load run options: %w", err)
		}
		if opts == nil {
			opts = api.RunOptions{}
		}
		for k, v := range overrides {
			opts.SetText(k, v)
		}
		fmt.Fprintf(out, "%s: %s starting...\n", flow.EntityName, flow.Name)
		if err := r.RunInputFlow(flow, opts); err != nil {
			return fmt.Errorf("run input flow: %w", err)
		}
	case api.FlowTypeHarmonize:
		if len(overrides) > 0 {
			return fmt.Errorf("harmonize flows take no options")
		}
		fmt.Fprintf(out, "%s: %s starting...\n", flow.EntityName, flow.Name)
		if err := r.RunHarmonizeFlow(flow); err != nil {
			return fmt.Errorf("run harmonize flow: %w", err)
		}
	default:
		return fmt.Errorf("unknown flow type %q", flow.Type)
	}
	return nil
}

func parseOptions(pairs []string) (map[string]string, error) {
	out := map[string]string{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid option %q (want key=value)", p)
		}
		out[k] = v
	}
	return out, nil
}
