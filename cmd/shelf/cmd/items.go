package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/model"
)

func newSaveCmd(a *app) *cobra.Command {
	var title, folder, favicon string
	cmd := &cobra.Command{
		Use:   "save <url>",
		Short: "Save a page into a folder",
		Long: `Save an http(s) URL into a folder. Without --folder a picker asks for
the target. A URL can be saved once per folder.

Examples:
  shelf save https://go.dev --title "Go" --folder Dev
  shelf save https://go.dev`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			visit := model.VisitEntry{URL: args[0], Title: title, FaviconURL: favicon, VisitTime: a.now().UnixMilli()}
			if !model.ValidURL(visit.URL) {
				return &engine.ItemError{URL: visit.URL, Err: engine.ErrInvalidURL}
			}
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			target, err := a.pickFolder(snap, folder, "Save "+visit.URL+" to", nil)
			if errors.Is(err, errCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.manager.Move(cmd.Context(), engine.NewPendingSave(visit).To(target.ID)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", snap.Breadcrumb(&target.ID))
			return nil
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "title (defaults to the URL)")
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "target folder id or path")
	cmd.Flags().StringVar(&favicon, "favicon", "", "favicon URL")
	return cmd
}

func newMvCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "mv <url>",
		Short: "Move a saved item to another folder",
		Long: `Move a saved item to another folder. --from can be left out when the
URL is saved in exactly one folder; without --to a picker asks for the target.

Example:
  shelf mv https://go.dev --from Dev --to "Reading / Later"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			source, err := a.sourceFolder(snap, from, url)
			if err != nil {
				return err
			}
			item, _ := snap.Items.Find(source.ID, url)

			target, err := a.pickFolder(snap, to, "Move "+item.Title+" to", map[string]bool{source.ID: true})
			if errors.Is(err, errCancelled) {
				return nil
			}
			if err != nil {
				return err
			}

			err = a.manager.Move(cmd.Context(), engine.NewPendingMove(source.ID, item).To(target.ID))
			if errors.Is(err, engine.ErrNoOpMove) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved to %s\n", snap.Breadcrumb(&target.ID))
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source folder id or path")
	cmd.Flags().StringVar(&to, "to", "", "target folder id or path")
	return cmd
}

// sourceFolder resolves ref, or finds the only folder holding url.
func (a *app) sourceFolder(snap model.Snapshot, ref, url string) (*model.Folder, error) {
	if ref != "" {
		f, err := a.folder(snap, ref)
		if err != nil {
			return nil, err
		}
		if !snap.Items.Has(f.ID, url) {
			return nil, &engine.ItemError{FolderID: f.ID, URL: url, Err: engine.ErrItemNotFound}
		}
		return f, nil
	}

	var found []*model.Folder
	for i := range snap.Folders {
		if snap.Items.Has(snap.Folders[i].ID, url) {
			found = append(found, &snap.Folders[i])
		}
	}
	switch len(found) {
	case 0:
		return nil, &engine.ItemError{URL: url, Err: engine.ErrItemNotFound}
	case 1:
		return found[0], nil
	default:
		return nil, fmt.Errorf("%s is saved in %d folders, pass --from", url, len(found))
	}
}

func newRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <folder> <url>",
		Short: "Remove a saved item",
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
			return a.manager.RemoveItem(cmd.Context(), f.ID, args[1])
		},
	}
}

func newRetitleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "retitle <folder> <url> <title>",
		Short: "Change the title of a saved item",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			f, err := a.folder(snap, args[0])
			if err != nil {
				return err
			}
			err = a.manager.RenameItemTitle(cmd.Context(), f.ID, args[1], args[2])
			if err != nil && !engine.IsSilent(err) {
				return err
			}
			return nil
		},
	}
}

func newReurlCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reurl <folder> <old-url> <new-url>",
		Short: "Change the URL of a saved item",
		Long: `Change the URL of a saved item. The item keeps its place in the folder;
a title that was just the old URL follows the new one.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			f, err := a.folder(snap, args[0])
			if err != nil {
				return err
			}
			return a.manager.RenameItemURL(cmd.Context(), f.ID, args[1], args[2])
		},
	}
}
