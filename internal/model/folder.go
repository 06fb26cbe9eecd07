package model

// UntitledFolder is the name given to folders whose source had no usable name.
const UntitledFolder = "Untitled folder"

// Folder is a named node in the hierarchy that can hold items and child folders.
type Folder struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"` // nil = root level
}

// NewFolderParams holds parameters for creating a new Folder.
type NewFolderParams struct {
	Name     string
	ParentID *string
}

// NewFolder creates a Folder with generated UUID.
func NewFolder(params NewFolderParams) Folder {
	return Folder{
		ID:       GenerateUUID(),
		Name:     params.Name,
		ParentID: copyPtr(params.ParentID),
	}
}

// IsRoot reports whether the folder sits at the top level.
func (f Folder) IsRoot() bool {
	return f.ParentID == nil
}

// StringPtr returns a pointer to s. Empty strings map to nil (root).
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ptrEqual compares two string pointers for equality.
func ptrEqual(a, b *string) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

func copyPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// CloneFolders copies folders including their parent pointers.
func CloneFolders(folders []Folder) []Folder {
	out := make([]Folder, len(folders))
	for i, f := range folders {
		out[i] = Folder{ID: f.ID, Name: f.Name, ParentID: copyPtr(f.ParentID)}
	}
	return out
}
