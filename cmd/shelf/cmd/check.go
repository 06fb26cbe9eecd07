package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/culler"
)

func newCheckCmd(a *app) *cobra.Command {
	var prune bool
	var concurrency int
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "check [folder]",
		Short: "Find dead links",
		Long: `Check saved URLs and report the ones that answer 404 or 410. Hosts listed
in cullExcludeDomains are reported as possibly private instead of dead.
With --prune dead items are removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			var ref string
			if len(args) == 1 {
				ref = args[0]
			}
			scope, err := a.optionalFolder(snap, ref)
			if err != nil {
				return err
			}

			items := snap.ItemsFor(scope)
			errOut := cmd.ErrOrStderr()
			results := culler.CheckURLs(cmd.Context(), items, culler.Options{
				Concurrency:    concurrency,
				Timeout:        timeout,
				ExcludeDomains: a.config.CullExcludeDomains,
				OnProgress: func(completed, total int) {
					fmt.Fprintf(errOut, "\rChecked %d/%d", completed, total)
				},
			})
			if len(results) > 0 {
				fmt.Fprintln(errOut)
			}

			out := cmd.OutOrStdout()
			dead := culler.DeadResults(results)
			for _, r := range results {
				if r.Status == culler.Healthy {
					continue
				}
				detail := r.Error
				if r.StatusCode != 0 {
					detail = fmt.Sprintf("%d %s", r.StatusCode, detail)
				}
				fmt.Fprintf(out, "%-11s %s  [%s] %s\n", r.Status, r.Item.Item.URL, snap.Breadcrumb(&r.Item.FolderID), detail)
			}
			fmt.Fprintf(out, "%d checked, %d dead\n", len(results), len(dead))

			if !prune {
				return nil
			}
			for _, r := range dead {
				if err := a.manager.RemoveItem(cmd.Context(), r.Item.FolderID, r.Item.Item.URL); err != nil {
					return err
				}
			}
			fmt.Fprintf(out, "Removed %d dead items\n", len(dead))
			return nil
		},
	}
	cmd.Flags().BoolVar(&prune, "prune", false, "remove dead items")
	cmd.Flags().IntVar(&concurrency, "concurrency", 10, "parallel checks")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "per-request timeout")
	return cmd
}
