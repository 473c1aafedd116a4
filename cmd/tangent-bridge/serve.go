package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/entrhq/tangent/pkg/recent"
	"github.com/entrhq/tangent/pkg/transport"
	"github.com/entrhq/tangent/pkg/types"
)

type serveOptions struct {
	listen         string
	allowedOrigins []string
	noWatch        bool
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	serveOpts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the bridge over WebSocket and HTTP",
		Long: `Serve the bridge commands on:

  /ws             WebSocket requests, responses and recent_files_changed events
  /invoke/{cmd}   POST with the arguments object as body
  /healthz        liveness check
  /metrics        Prometheus metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts, serveOpts)
		},
	}

	cmd.Flags().StringVarP(&serveOpts.listen, "listen", "l", "", "listen address (default 127.0.0.1:7878)")
	cmd.Flags().StringSliceVar(&serveOpts.allowedOrigins, "allowed-origin", nil, "browser origin allowed on /ws (repeatable)")
	cmd.Flags().BoolVar(&serveOpts.noWatch, "no-watch", false, "do not push recent_files_changed events")

	return cmd
}

func runServe(cmd *cobra.Command, opts *rootOptions, serveOpts *serveOptions) error {
	launch := opts.launch
	if cmd.Flags().Changed("listen") {
		launch.Listen = serveOpts.listen
	}
	if cmd.Flags().Changed("allowed-origin") {
		launch.AllowedOrigins = serveOpts.allowedOrigins
	}
	if serveOpts.noWatch {
		launch.WatchRecentFiles = false
	}
	if err := launch.Validate(); err != nil {
		return err
	}

	a, err := newApp(launch, "serve")
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := transport.NewServer(a.bridge, transport.ServerOptions{
		AllowedOrigins: launch.AllowedOrigins,
		Logger:         a.logger,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return server.ListenAndServe(gctx, launch.Listen)
	})

	if launch.WatchRecentFiles {
		g.Go(func() error {
			return watchRecentFiles(gctx, a, server)
		})
	}

	return g.Wait()
}

// watchRecentFiles pushes recent-list changes to WebSocket clients until
// ctx is done.
func watchRecentFiles(ctx context.Context, a *app, server *transport.Server) error {
	watcher, err := recent.NewWatcher(a.store, a.logger, func(files []types.RecentFile) {
		if server.Clients() == 0 {
			return
		}
		server.Broadcast(types.NewRecentFilesChangedEvent(files))
	})
	if err != nil {
		return err
	}
	defer watcher.Stop()

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	return nil
}
