package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/backup"
)

func newBackupCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Push or pull the backup payload",
		Long: `Push the full state to the configured backup endpoint, or pull it back.

The endpoint comes from backup.endpoint in the config file and the bearer
token from the environment variable named by backup.tokenEnv
(SHELF_BACKUP_TOKEN by default).`,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "push",
		Short: "Upload the current state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.backupService().Push(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pushed %d folders, %d items (%d bytes) as %s\n",
				res.Folders, res.Items, res.Bytes, res.FileID)
			return nil
		},
	})

	var yes bool
	pull := &cobra.Command{
		Use:   "pull",
		Short: "Replace the current state with the remote backup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This replaces all local state. Continue?") {
				return nil
			}
			snap, err := a.backupService().Pull(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Restored %d folders, %d items\n", len(snap.Folders), snap.Items.Total())
			return nil
		},
	}
	pull.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	cmd.AddCommand(pull)
	return cmd
}

func (a *app) backupService() *backup.Service {
	cfg := a.config.Backup
	transport := backup.NewHTTPTransport(backup.HTTPOptions{
		Endpoint: cfg.Endpoint,
		FileName: cfg.FileName,
		Tokens:   backup.EnvToken(cfg.TokenEnv),
	})
	return backup.NewService(a.manager, transport, a.logger)
}
