package cmd

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/mcp"
	"github.com/nikbrunner/shelf/internal/render"
	"github.com/nikbrunner/shelf/internal/storage"
)

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print the tree whenever the state file changes",
		Long: `Watch the storage file and print the folder tree every time another
process writes it. Only file based storage (JSON or SQLite) can be watched.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := storage.FilePath(a.config.Storage)
			if path == "" {
				return errors.New("watch needs file based storage")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			show := func() {
				snap, err := a.manager.Snapshot(ctx)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "reload: %v\n", err)
					return
				}
				fmt.Fprintln(out, render.Tree(snap, render.TreeOptions{}))
				fmt.Fprintln(out)
			}
			show()
			return storage.Watch(ctx, path, show)
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve folders and items as MCP tools over stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return server.ServeStdio(mcp.NewServer(a.manager, Version))
		},
	}
}
