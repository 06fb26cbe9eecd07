package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/shelf/internal/picker"
	"github.com/nikbrunner/shelf/internal/storage"
)

type harness struct {
	t        *testing.T
	dir      string
	opened   []string
	backends int
	closed   int
	picks   []string // option labels to choose, in order
	pickErr error
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("SHELF_STORAGE", "")
	return &harness{t: t, dir: t.TempDir()}
}

func (h *harness) run(stdin string, args ...string) (string, error) {
	h.t.Helper()
	a := &app{
		now: func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		openURL: func(url string) error {
			h.opened = append(h.opened, url)
			return nil
		},
		openBackend: func(dsn string) (storage.Backend, error) {
			b, err := storage.OpenDSN(dsn)
			if err != nil {
				return nil, err
			}
			h.backends++
			return &closeRecorder{Backend: b, closed: &h.closed}, nil
		},
		pick: func(p picker.Picker) (picker.Option, bool, error) {
			if len(h.picks) == 0 {
				return picker.Option{}, false, h.pickErr
			}
			want := h.picks[0]
			h.picks = h.picks[1:]
			for _, opt := range p.Options() {
				if strings.TrimSpace(opt.Label) == want {
					return opt, true, nil
				}
			}
			h.t.Fatalf("picker has no option %q", want)
			return picker.Option{}, false, nil
		},
	}
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{
		"--config", filepath.Join(h.dir, "config.yaml"),
		"--storage", filepath.Join(h.dir, "state.json"),
	}, args...))
	err := execute(a, root)
	return out.String(), err
}

type closeRecorder struct {
	storage.Backend
	closed *int
}

func (r *closeRecorder) Close() error {
	*r.closed++
	return r.Backend.Close()
}

func (h *harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run("", args...)
	assert.NilError(h.t, err, out)
	return out
}

func TestCLI_FoldersAndItems(t *testing.T) {
	h := newHarness(t)

	h.mustRun("mkdir", "Work")
	h.mustRun("mkdir", "Frontend", "--parent", "Work")
	h.mustRun("mkdir", "Reading")

	_, err := h.run("", "mkdir", "work")
	assert.ErrorContains(t, err, "already exists")

	out := h.mustRun("save", "https://go.dev", "--title", "Go", "--folder", "Work / Frontend")
	assert.Assert(t, is.Contains(out, "Saved to Work / Frontend"))

	_, err = h.run("", "save", "javascript:alert(1)", "--folder", "Work")
	assert.ErrorContains(t, err, "invalid URL")

	out = h.mustRun("tree")
	assert.Assert(t, is.Contains(out, "Work (1)"))
	assert.Assert(t, is.Contains(out, "Frontend (1)"))

	h.mustRun("mv", "https://go.dev", "--to", "Reading")
	out = h.mustRun("ls", "Reading")
	assert.Assert(t, is.Contains(out, "https://go.dev"))

	h.mustRun("retitle", "Reading", "https://go.dev", "The Go site")
	h.mustRun("reurl", "Reading", "https://go.dev", "https://go.dev/doc")
	out = h.mustRun("ls")
	assert.Assert(t, is.Contains(out, "The Go site"))
	assert.Assert(t, is.Contains(out, "https://go.dev/doc"))

	h.mustRun("mvdir", "Reading", "--parent", "Work")
	_, err = h.run("", "mvdir", "Work", "--parent", "Work / Reading")
	assert.ErrorContains(t, err, "own subtree")

	out, err = h.run("n\n", "rmdir", "Work")
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(out, `Delete "Work" with 2 subfolders and 1 items?`))
	assert.Assert(t, is.Contains(h.mustRun("tree"), "Work (1)"), "declined delete keeps the folder")

	out = h.mustRun("rmdir", "Work", "--yes")
	assert.Assert(t, is.Contains(out, "Deleted 3 folders and 1 items"))
	assert.Assert(t, is.Contains(h.mustRun("tree"), "(no folders)"))
}

func TestCLI_SaveWithPicker(t *testing.T) {
	h := newHarness(t)
	h.mustRun("mkdir", "Dev")
	h.mustRun("mkdir", "News")

	h.picks = []string{"News"}
	out := h.mustRun("save", "https://news.ycombinator.com")
	assert.Assert(t, is.Contains(out, "Saved to News"))

	out = h.mustRun("save", "https://example.com")
	assert.Equal(t, out, "", "cancelled picker saves nothing")
}

func TestCLI_FindAndOpen(t *testing.T) {
	h := newHarness(t)
	h.mustRun("mkdir", "Dev")
	h.mustRun("save", "https://github.com", "--title", "GitHub", "--folder", "Dev")
	h.mustRun("save", "https://tanstack.com/router", "--title", "TanStack Router", "--folder", "Dev")

	out := h.mustRun("find", "tanrou")
	assert.Assert(t, is.Contains(out, "TanStack Router"))

	out = h.mustRun("find", "nothing-like-this")
	assert.Assert(t, is.Contains(out, "No items found"))

	h.mustRun("open", "github")
	assert.DeepEqual(t, h.opened, []string{"https://github.com"})
}

func TestCLI_ExportImport(t *testing.T) {
	h := newHarness(t)
	h.mustRun("mkdir", "Dev")
	h.mustRun("save", "https://go.dev", "--title", "Go", "--folder", "Dev")

	jsonPath := filepath.Join(h.dir, "out", "export.json")
	out := h.mustRun("export", jsonPath)
	assert.Assert(t, is.Contains(out, "Exported 1 items, 1 folders"))

	htmlPath := filepath.Join(h.dir, "export.html")
	h.mustRun("export", "--format", "html", htmlPath)
	yamlPath := filepath.Join(h.dir, "export.yaml")
	h.mustRun("export", "--format", "yaml", yamlPath)
	data, err := os.ReadFile(yamlPath)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), "https://go.dev"))

	h.mustRun("rmdir", "Dev", "--yes")

	out = h.mustRun("import", jsonPath, "--yes")
	assert.Assert(t, is.Contains(out, "Imported 1 folders, 1 items"))

	out = h.mustRun("import-tree", htmlPath)
	assert.Assert(t, is.Contains(out, "Imported 1 items, 1 folders"))
	assert.Assert(t, is.Contains(h.mustRun("tree"), "Imported bookmarks (Jan 2, 2026)"))

	bad := filepath.Join(h.dir, "bad.json")
	assert.NilError(t, os.WriteFile(bad, []byte(`{"folderItems":{}}`), 0o644))
	_, err = h.run("", "import", bad, "--yes")
	assert.ErrorContains(t, err, "malformed import file")
}

func TestCLI_ClosesStorageOnFailure(t *testing.T) {
	h := newHarness(t)
	h.mustRun("mkdir", "Dev")

	_, err := h.run("", "rename", "Missing", "Other")
	assert.ErrorContains(t, err, "not found")
	_, err = h.run("", "save", "not a url", "--folder", "Dev")
	assert.Assert(t, err != nil)

	assert.Equal(t, h.backends, 3)
	assert.Equal(t, h.closed, 3)
}

func TestCLI_OpenKeepsMaxItemsVisits(t *testing.T) {
	h := newHarness(t)
	h.mustRun("mkdir", "Dev")
	h.mustRun("save", "https://alpha.dev", "--title", "Alpha", "--folder", "Dev")
	h.mustRun("save", "https://bravo.dev", "--title", "Bravo", "--folder", "Dev")
	h.mustRun("save", "https://charlie.dev", "--title", "Charlie", "--folder", "Dev")

	ctx := context.Background()
	store := storage.NewStore(storage.NewJSONFileBackend(filepath.Join(h.dir, "state.json")))
	extras, err := store.LoadExtras(ctx)
	assert.NilError(t, err)
	extras.MaxItems = 2
	assert.NilError(t, store.SaveExtras(ctx, extras))

	h.mustRun("open", "alpha")
	h.mustRun("open", "bravo")
	h.mustRun("open", "charlie")

	extras, err = store.LoadExtras(ctx)
	assert.NilError(t, err)
	assert.Assert(t, is.Len(extras.Visits, 2))
	assert.Equal(t, extras.Visits[0].URL, "https://charlie.dev")
	assert.Equal(t, extras.Visits[1].URL, "https://bravo.dev")
}
