package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for rejected commands. None of them leave partial changes.
var (
	ErrDuplicateName  = errors.New("a folder with this name already exists here")
	ErrDuplicateItem  = errors.New("item already saved in this folder")
	ErrInvalidURL     = errors.New("invalid URL")
	ErrEmptyTitle     = errors.New("empty title")
	ErrEmptyName      = errors.New("empty name")
	ErrNoOpMove       = errors.New("item is already in this folder")
	ErrFolderNotFound = errors.New("folder not found")
	ErrItemNotFound   = errors.New("item not found")
	ErrCycle          = errors.New("cannot move a folder into its own subtree")
)

// NameError reports a folder name clash with a sibling.
type NameError struct {
	Name     string
	ParentID *string
}

func (e *NameError) Error() string {
	parent := "root"
	if e.ParentID != nil {
		parent = *e.ParentID
	}
	return fmt.Sprintf("folder %q already exists under %s", e.Name, parent)
}

func (e *NameError) Is(target error) bool {
	return target == ErrDuplicateName
}

// ItemError reports an item-level failure inside one folder.
type ItemError struct {
	FolderID string
	URL      string
	Err      error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("%s in folder %s: %v", e.URL, e.FolderID, e.Err)
}

func (e *ItemError) Is(target error) bool {
	return target == e.Err
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// IsSilent reports whether err stands for blank input that callers should
// ignore rather than report.
func IsSilent(err error) bool {
	return errors.Is(err, ErrEmptyName) || errors.Is(err, ErrEmptyTitle)
}
