package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/entrhq/tangent/pkg/bridge"
	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/types"
)

func newInvokeCmd(opts *rootOptions) *cobra.Command {
	var list bool

	cmd := &cobra.Command{
		Use:   "invoke <command> [args-json]",
		Short: "Run a single bridge command and print the response",
		Example: `  tangent-bridge invoke get_recent_files
  tangent-bridge invoke read_notebook_file '{"path":"/tmp/a.tangent"}'
  tangent-bridge invoke --list`,
		Args: func(cmd *cobra.Command, args []string) error {
			if list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.RangeArgs(1, 2)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.launch, "invoke")
			if err != nil {
				return err
			}
			defer a.Close()

			if list {
				return listCommands(cmd, a.bridge)
			}

			req := &types.Request{ID: 1, Cmd: args[0]}
			if len(args) == 2 {
				if !json.Valid([]byte(args[1])) {
					return fmt.Errorf("arguments are not valid JSON: %s", args[1])
				}
				req.Args = json.RawMessage(args[1])
			}

			ctx := logging.WithRequestID(cmd.Context(), logging.NewRequestID())
			resp := a.bridge.Invoke(ctx, req)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(resp); err != nil {
				return err
			}
			if !resp.OK {
				return fmt.Errorf("%s failed (%s)", req.Cmd, resp.Kind)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&list, "list", false, "list available commands")
	return cmd
}

// listCommands prints each command with the JSON schema of its arguments.
func listCommands(cmd *cobra.Command, b *bridge.Bridge) error {
	out := cmd.OutOrStdout()
	for _, c := range b.Commands() {
		schema, err := json.Marshal(c.Schema())
		if err != nil {
			return fmt.Errorf("failed to encode schema of %s: %w", c.Name(), err)
		}
		if _, err := fmt.Fprintf(out, "%-28s %s\n%-28s args: %s\n", c.Name(), c.Description(), "", schema); err != nil {
			return err
		}
	}
	return nil
}
