package exporter

import (
	"gopkg.in/yaml.v3"

	"github.com/nikbrunner/shelf/internal/model"
)

// YAMLFolder is one folder in the nested YAML export.
type YAMLFolder struct {
	Name    string       `yaml:"name"`
	Items   []YAMLItem   `yaml:"items,omitempty"`
	Folders []YAMLFolder `yaml:"folders,omitempty"`
}

// YAMLItem is a saved page in the YAML export.
type YAMLItem struct {
	Title   string `yaml:"title"`
	URL     string `yaml:"url"`
	SavedAt string `yaml:"saved_at,omitempty"`
}

// ExportYAML renders the hierarchy as nested folders.
func ExportYAML(snap model.Snapshot) ([]byte, error) {
	doc := struct {
		Folders []YAMLFolder `yaml:"folders"`
	}{Folders: yamlFolders(snap, nil)}
	return yaml.Marshal(doc)
}

func yamlFolders(snap model.Snapshot, parentID *string) []YAMLFolder {
	children := snap.Children(parentID)
	out := make([]YAMLFolder, 0, len(children))
	for _, f := range children {
		id := f.ID
		entry := YAMLFolder{Name: f.Name, Folders: yamlFolders(snap, &id)}
		for _, item := range snap.Items[f.ID] {
			y := YAMLItem{Title: item.Title, URL: item.URL}
			if item.SavedAt > 0 {
				y.SavedAt = item.SavedTime().UTC().Format("2006-01-02")
			}
			entry.Items = append(entry.Items, y)
		}
		out = append(out, entry)
	}
	return out
}
