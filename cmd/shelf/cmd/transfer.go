package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/exporter"
	"github.com/nikbrunner/shelf/internal/importer"
)

func newExportCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export folders and items to a file",
		Long: `Export folders and items. json writes the flat export file that import
reads back; html writes a Netscape bookmark file; yaml writes a nested tree.
The default path is ~/Downloads/shelf-export-YYYY-MM-DD.<format>.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := a.snapshot(cmd)
			if err != nil {
				return err
			}
			now := a.now()

			var data []byte
			switch format {
			case "json":
				data, err = exporter.ExportJSON(snap, now)
			case "html":
				data = []byte(exporter.ExportHTML(snap))
			case "yaml", "yml":
				format = "yaml"
				data, err = exporter.ExportYAML(snap)
			default:
				return fmt.Errorf("unknown export format %q (want json, html or yaml)", format)
			}
			if err != nil {
				return err
			}

			outputPath := ""
			if len(args) == 1 {
				outputPath = args[0]
			} else if outputPath, err = exporter.DefaultExportPath(format, now); err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, data, 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d items, %d folders to %s\n",
				snap.Items.Total(), len(snap.Folders), outputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "json", "json, html or yaml")
	return cmd
}

func newImportCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace all folders and items with an export file",
		Long: `Read a file written by "shelf export --format json" and replace the
current folders and items with it. Malformed records are dropped and
counted; a file without a folder list is rejected and nothing changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			result, err := importer.ParseExport(data)
			if err != nil {
				return err
			}
			if !yes && !confirm(cmd.InOrStdin(), cmd.OutOrStdout(), "This replaces all folders and items. Continue?") {
				return nil
			}
			if _, err := a.manager.Replace(cmd.Context(), "import", result.Snapshot); err != nil {
				return err
			}

			r := result.Report
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d folders, %d items", r.Folders, r.Items)
			if dropped := r.DroppedFolders + r.DroppedItems + r.SkippedLists; dropped > 0 {
				fmt.Fprintf(out, " (dropped %d folders, %d items, %d lists)", r.DroppedFolders, r.DroppedItems, r.SkippedLists)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation")
	return cmd
}

func newImportTreeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import-tree <file>",
		Short: "Add a browser bookmark tree under a new folder",
		Long: `Import a native bookmark tree into a new root folder named after today's
date. Existing folders and items are kept.

Formats:
  html      Netscape bookmark file exported by any browser
  chromium  Chrome, Edge or Brave "Bookmarks" JSON file
  safari    Safari Bookmarks.plist

The format is guessed from the file extension when --format is omitted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := importer.DetectFormat(args[0])
			if format != "" {
				var err error
				if f, err = importer.ParseFormat(format); err != nil {
					return err
				}
			}

			report, err := a.manager.ImportTree(cmd.Context(), importer.FileSource{Path: args[0], Format: f}, a.now())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d items, %d folders", report.ItemsImported, report.FoldersCreated)
			if report.Duplicates > 0 {
				fmt.Fprintf(out, " (%d duplicates skipped)", report.Duplicates)
			}
			if report.Skipped > 0 {
				fmt.Fprintf(out, " (%d unsupported links skipped)", report.Skipped)
			}
			fmt.Fprintln(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "html, chromium or safari")
	return cmd
}
