// Package cmd implements the shelf command line.
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/nikbrunner/shelf/internal/engine"
	"github.com/nikbrunner/shelf/internal/model"
	"github.com/nikbrunner/shelf/internal/picker"
	"github.com/nikbrunner/shelf/internal/state"
	"github.com/nikbrunner/shelf/internal/storage"
)

// Version is set at build time.
var Version = "dev"

// app carries what every subcommand needs once the root has initialized.
type app struct {
	configPath string
	storageDSN string
	verbose    bool

	config  *storage.Config
	manager *state.Manager
	logger  state.Logger

	now         func() time.Time
	openURL     func(string) error
	openBackend func(dsn string) (storage.Backend, error)
	// pick shows an interactive picker; replaced in tests.
	pick func(p picker.Picker) (picker.Option, bool, error)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "shelf",
		Short: "Folders of saved pages, from the terminal",
		Long: `shelf manages a hierarchy of folders holding saved pages.

It keeps the same state a new-tab page would: folders, the items saved in
them, and a backup payload that can be pushed to and pulled from a remote
store.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip initialization for help commands
			if cmd.Name() == "help" || cmd.Name() == "completion" {
				return nil
			}
			return a.init(cmd)
		},
	}
	if a.pick == nil {
		a.pick = func(p picker.Picker) (picker.Option, bool, error) {
			return picker.Run(p, rootCmd.InOrStdin(), rootCmd.ErrOrStderr())
		}
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default ~/.config/shelf/config.yaml)")
	flags.StringVar(&a.storageDSN, "storage", "", "storage DSN, overrides config and "+storage.EnvStorage)
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log storage activity to stderr")

	rootCmd.AddCommand(
		newTreeCmd(a),
		newLsCmd(a),
		newMkdirCmd(a),
		newRenameCmd(a),
		newRmdirCmd(a),
		newMvdirCmd(a),
		newSaveCmd(a),
		newMvCmd(a),
		newRmCmd(a),
		newRetitleCmd(a),
		newReurlCmd(a),
		newFindCmd(a),
		newOpenCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newImportTreeCmd(a),
		newBackupCmd(a),
		newCheckCmd(a),
		newWatchCmd(a),
		newServeCmd(a),
	)
	return rootCmd
}

// Execute runs the root command
func Execute() {
	a := &app{now: time.Now, openURL: openInBrowser, openBackend: storage.OpenDSN}
	if err := execute(a, newRootCmd(a)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs root and then closes the storage backend, whether or not
// the command failed.
func execute(a *app, root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) close() error {
	if a.manager == nil {
		return nil
	}
	err := a.manager.Store().Close()
	a.manager = nil
	return err
}

func (a *app) init(cmd *cobra.Command) error {
	if a.verbose {
		a.logger = log.New(cmd.ErrOrStderr(), "shelf: ", log.LstdFlags)
	} else {
		a.logger = state.DiscardLogger
	}

	path := a.configPath
	if path == "" {
		var err error
		if path, err = storage.DefaultConfigFilePath(); err != nil {
			return fmt.Errorf("config path: %w", err)
		}
	}
	config, err := storage.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("load config %s: %w", path, err)
	}
	if a.storageDSN != "" {
		config.Storage = a.storageDSN
	}
	a.config = config

	if a.openBackend == nil {
		a.openBackend = storage.OpenDSN
	}
	backend, err := a.openBackend(config.Storage)
	if err != nil {
		return err
	}
	a.logger.Printf("using %T at %s", backend, config.Storage)
	a.manager = state.NewManager(storage.NewStore(backend), state.Options{
		Logger:  a.logger,
		Retries: config.WriteRetries,
	})
	return nil
}

func (a *app) snapshot(cmd *cobra.Command) (model.Snapshot, error) {
	return a.manager.Snapshot(cmd.Context())
}

// folder resolves an id or path such as "Work / Frontend".
func (a *app) folder(snap model.Snapshot, ref string) (*model.Folder, error) {
	f := model.ResolveFolderRef(snap.Folders, ref)
	if f == nil {
		return nil, fmt.Errorf("%w: %s", engine.ErrFolderNotFound, ref)
	}
	return f, nil
}

// optionalFolder resolves ref, returning nil for an empty ref.
func (a *app) optionalFolder(snap model.Snapshot, ref string) (*string, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, nil
	}
	f, err := a.folder(snap, ref)
	if err != nil {
		return nil, err
	}
	id := f.ID
	return &id, nil
}

// pickFolder resolves ref, or asks interactively when ref is empty.
func (a *app) pickFolder(snap model.Snapshot, ref, title string, exclude map[string]bool) (*model.Folder, error) {
	if strings.TrimSpace(ref) != "" {
		return a.folder(snap, ref)
	}
	opt, ok, err := a.pick(picker.FromFolders(title, snap, exclude))
	if err != nil {
		return nil, fmt.Errorf("picker: %w", err)
	}
	if !ok {
		return nil, errCancelled
	}
	return a.folder(snap, opt.Value)
}

var errCancelled = errors.New("cancelled")

// confirm asks a yes/no question on stdin.
func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	line, _ := bufio.NewReader(in).ReadString('\n')
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// openInBrowser opens a URL in the default browser.
func openInBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "linux":
		cmd = exec.Command("xdg-open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		return fmt.Errorf("don't know how to open URLs on %s", runtime.GOOS)
	}
	return cmd.Start()
}
