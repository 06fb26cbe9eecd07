package cmd

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/picker"
	"github.com/nikbrunner/shelf/internal/search"
)

// defaultMaxVisits caps the visit history when the stored state sets no
// maxItems.
const defaultMaxVisits = 100

func newFindCmd(a *app) *cobra.Command {
	var folder string
	var copyURL bool
	cmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search saved items",
		Long: `Fuzzy search saved items by title and URL, best match first.

Examples:
  shelf find tanrou
  shelf find github --folder Dev --copy`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			scope, err := a.optionalFolder(snap, folder)
			if err != nil {
				return err
			}

			results := search.FuzzySearchItems(snap, scope, query)
			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No items found for '%s'\n", query)
				return nil
			}
			for _, r := range results {
				fmt.Fprintf(out, "%s\n  %s  %s\n", r.Item.Item.Title, r.Path, r.Item.Item.URL)
			}
			if copyURL {
				if err := clipboard.WriteAll(results[0].Item.Item.URL); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				fmt.Fprintf(out, "Copied %s\n", results[0].Item.Item.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&folder, "folder", "f", "", "limit to this folder and its subfolders")
	cmd.Flags().BoolVarP(&copyURL, "copy", "c", false, "copy the best match's URL to the clipboard")
	return cmd
}

func newOpenCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "open <query>",
		Short: "Search, pick and open an item in the browser",
		Long: `Search saved items and open the selected one in the default browser.
A single match opens directly; several matches show a picker. The visit is
recorded in the history that save draws from.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}

			results := search.FuzzySearchItems(snap, nil, query)
			if len(results) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No items found for '%s'\n", query)
				return nil
			}

			selected := results[0].Item.Item
			if len(results) > 1 {
				opt, ok, err := a.pick(picker.FromSearchResults(results, query))
				if err != nil {
					return fmt.Errorf("picker: %w", err)
				}
				if !ok {
					return nil
				}
				for _, r := range results {
					if r.Item.Item.URL == opt.Value {
						selected = r.Item.Item
						break
					}
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Opening: %s\n", selected.Title)
			if err := a.recordVisit(cmd, selected); err != nil {
				a.logger.Printf("record visit: %v", err)
			}
			return a.openURL(selected.URL)
		},
	}
}

// recordVisit prepends item to the visit history, dropping older entries
// for the same URL. The history keeps at most extras.MaxItems entries.
func (a *app) recordVisit(cmd *cobra.Command, item model.FolderItem) error {
	store := a.manager.Store()
	extras, err := store.LoadExtras(cmd.Context())
	if err != nil {
		return err
	}
	limit := extras.MaxItems
	if limit <= 0 {
		limit = defaultMaxVisits
	}
	visits := []model.VisitEntry{{
		URL:        item.URL,
		Title:      item.Title,
		FaviconURL: item.FaviconURL,
		VisitTime:  a.now().UnixMilli(),
	}}
	for _, v := range extras.Visits {
		if v.URL != item.URL && len(visits) < limit {
			visits = append(visits, v)
		}
	}
	extras.Visits = visits
	return store.SaveExtras(cmd.Context(), extras)
}

