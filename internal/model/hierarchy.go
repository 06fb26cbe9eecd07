package model

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// BreadcrumbSeparator joins folder names in a breadcrumb.
const BreadcrumbSeparator = " / "

// NormalizeHierarchy returns a copy of folders with every broken parent link
// reset to root: dangling references, self references, and the link that
// closes any ancestor cycle. Applying it twice yields the same result.
func NormalizeHierarchy(folders []Folder) []Folder {
	out := CloneFolders(folders)
	byID := make(map[string]int, len(out))
	for i, f := range out {
		if _, seen := byID[f.ID]; !seen {
			byID[f.ID] = i
		}
	}

	for i := range out {
		p := out[i].ParentID
		if p == nil {
			continue
		}
		if _, ok := byID[*p]; !ok || *p == out[i].ID {
			out[i].ParentID = nil
		}
	}

	// Walk each ancestor chain; the first parent that was already visited
	// closes a cycle and is cut.
	for i := range out {
		visited := map[string]bool{out[i].ID: true}
		cur := i
		for out[cur].ParentID != nil {
			pid := *out[cur].ParentID
			if visited[pid] {
				out[cur].ParentID = nil
				break
			}
			visited[pid] = true
			cur = byID[pid]
		}
	}

	return out
}

// GetChildren returns the folders directly under parentID (nil = root),
// ordered by case-insensitive collation of their names. Equal names keep
// their original relative order.
func GetChildren(folders []Folder, parentID *string) []Folder {
	var children []Folder
	for _, f := range folders {
		if ptrEqual(f.ParentID, parentID) {
			children = append(children, f)
		}
	}
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(children, func(a, b Folder) int {
		return c.CompareString(a.Name, b.Name)
	})
	return children
}

// CollectDescendantIDs returns rootID plus every folder nested beneath it.
// A visited set keeps corrupted cyclic data from looping. Nil yields an empty set.
func CollectDescendantIDs(folders []Folder, rootID *string) map[string]bool {
	ids := make(map[string]bool)
	if rootID == nil {
		return ids
	}

	childrenOf := make(map[string][]string)
	for _, f := range folders {
		if f.ParentID != nil {
			childrenOf[*f.ParentID] = append(childrenOf[*f.ParentID], f.ID)
		}
	}

	queue := []string{*rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if ids[id] {
			continue
		}
		ids[id] = true
		queue = append(queue, childrenOf[id]...)
	}
	return ids
}

// BuildBreadcrumb joins folder names from the root down to folderID.
// On a cyclic chain it stops and returns the path collected so far.
func BuildBreadcrumb(folders []Folder, folderID *string) string {
	return strings.Join(PathNames(folders, folderID), BreadcrumbSeparator)
}

// PathNames returns the folder names from the root down to folderID.
func PathNames(folders []Folder, folderID *string) []string {
	if folderID == nil {
		return nil
	}
	byID := make(map[string]Folder, len(folders))
	for _, f := range folders {
		if _, seen := byID[f.ID]; !seen {
			byID[f.ID] = f
		}
	}

	var names []string
	guard := make(map[string]bool)
	id := *folderID
	for !guard[id] {
		guard[id] = true
		f, ok := byID[id]
		if !ok {
			break
		}
		names = append(names, f.Name)
		if f.ParentID == nil {
			break
		}
		id = *f.ParentID
	}
	slices.Reverse(names)
	return names
}

// FindFolder returns the folder with the given ID, or nil.
func FindFolder(folders []Folder, id string) *Folder {
	for i := range folders {
		if folders[i].ID == id {
			return &folders[i]
		}
	}
	return nil
}

// SameName compares folder names the way sibling uniqueness does:
// trimmed and case-folded.
func SameName(a, b string) bool {
	fold := cases.Fold()
	return fold.String(strings.TrimSpace(a)) == fold.String(strings.TrimSpace(b))
}

// SiblingWithName returns the folder under parentID named name, ignoring
// the folder with exceptID. Returns nil if there is none.
func SiblingWithName(folders []Folder, parentID *string, name, exceptID string) *Folder {
	for i := range folders {
		f := &folders[i]
		if f.ID == exceptID || !ptrEqual(f.ParentID, parentID) {
			continue
		}
		if SameName(f.Name, name) {
			return f
		}
	}
	return nil
}

// UniqueName returns name, or name with a " (n)" suffix, so that it does
// not clash with any sibling under parentID.
func UniqueName(folders []Folder, parentID *string, name string) string {
	candidate := name
	for n := 2; SiblingWithName(folders, parentID, candidate, "") != nil; n++ {
		candidate = name + " (" + strconv.Itoa(n) + ")"
	}
	return candidate
}

// ResolveFolderRef finds a folder by ID or by a breadcrumb path such as
// "Work / Frontend" (also "Work/Frontend"). Path segments match case-insensitively.
func ResolveFolderRef(folders []Folder, ref string) *Folder {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	if f := FindFolder(folders, ref); f != nil {
		return f
	}

	var parentID *string
	var found *Folder
	for _, segment := range strings.Split(ref, "/") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		found = SiblingWithName(folders, parentID, segment, "")
		if found == nil {
			return nil
		}
		id := found.ID
		parentID = &id
	}
	return found
}

// Depth returns how many ancestors folderID has; root folders have depth 0.
func Depth(folders []Folder, folderID string) int {
	return max(len(PathNames(folders, &folderID))-1, 0)
}
