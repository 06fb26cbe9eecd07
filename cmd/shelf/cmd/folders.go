package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/render"
)

func newTreeCmd(a *app) *cobra.Command {
	var withItems, withIDs bool
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the folder hierarchy",
		Long: `Show every folder with the number of items in it and its subfolders.

Example:
  shelf tree --items`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), render.Tree(snap, render.TreeOptions{Items: withItems, IDs: withIDs}))
			return nil
		},
	}
	cmd.Flags().BoolVar(&withItems, "items", false, "list items under their folder")
	cmd.Flags().BoolVar(&withIDs, "ids", false, "show folder ids")
	return cmd
}

func newLsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ls [folder]",
		Short: "List items, newest first",
		Long: `List the items of a folder and all of its subfolders, newest first.
Without a folder every saved item is listed.

Examples:
  shelf ls
  shelf ls "Work / Frontend"`,
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
			fmt.Fprintln(cmd.OutOrStdout(), render.Items(snap, snap.ItemsFor(scope)))
			return nil
		},
	}
}

func newMkdirCmd(a *app) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "mkdir <name>",
		Short: "Create a folder",
		Long: `Create a folder. Sibling names must be unique, ignoring case.

Examples:
  shelf mkdir Work
  shelf mkdir Frontend --parent Work`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			parentID, err := a.optionalFolder(snap, parent)
			if err != nil {
				return err
			}
			id, err := a.manager.CreateFolder(cmd.Context(), args[0], parentID)
			if engine.IsSilent(err) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s (%s)\n", args[0], id)
			return nil
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "parent folder id or path")
	return cmd
}

func newRenameCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			f, err := a.folder(snap, args[0])
			if err != nil {
				return err
			}
			err = a.manager.RenameFolder(cmd.Context(), f.ID, args[1])
			if err != nil && !engine.IsSilent(err) {
				return err
			}
			return nil
		},
	}
}

func newRmdirCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "rmdir <folder>",
		Short: "Delete a folder, its subfolders and their items",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			f, err := a.folder(snap, args[0])
			if err != nil {
				return err
			}
			if !yes {
				subtree := model.CollectDescendantIDs(snap.Folders, &f.ID)
				question := fmt.Sprintf("Delete %q with %d subfolders and %d items?",
					snap.Breadcrumb(&f.ID), len(subtree)-1, snap.Count(&f.ID))
				if !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), question) {
					return nil
				}
			}
			res, err := a.manager.DeleteFolder(cmd.Context(), f.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d folders and %d items\n", len(res.RemovedIDs), res.RemovedItems)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newMvdirCmd(a *app) *cobra.Command {
	var parent string
	cmd := &cobra.Command{
		Use:   "mvdir <folder>",
		Short: "Move a folder under another folder",
		Long: `Move a folder under another folder, or to the root level when --parent
is omitted. A folder cannot move into its own subtree.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			f, err := a.folder(snap, args[0])
			if err != nil {
				return err
			}
			parentID, err := a.optionalFolder(snap, parent)
			if err != nil {
				return err
			}
			return a.manager.MoveFolder(cmd.Context(), f.ID, parentID)
		},
	}
	cmd.Flags().StringVarP(&parent, "parent", "p", "", "new parent folder id or path")
	return cmd
}
