package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/entrhq/tangent/pkg/transport"
)

func newStdioCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stdio",
		Short: "Serve newline-delimited JSON requests on stdin/stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStdio(cmd, opts)
		},
	}
}

func runStdio(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(opts.launch, "stdio")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := transport.NewStdioServer(a.bridge, cmd.InOrStdin(), cmd.OutOrStdout(), a.logger)
	return server.Serve(ctx)
}
