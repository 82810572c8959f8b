// Package seed loads a bookmark tree from YAML and writes it through a TreeStore.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

//go:embed default.yaml
var defaultSeed []byte

// File is the top level of a seed document
type File struct {
	Folders []Folder `yaml:"folders"`
}

// Folder is a seeded folder with its children in display order
type Folder struct {
	Name      string     `yaml:"name"`
	Open      bool       `yaml:"open"`
	Folders   []Folder   `yaml:"folders"`
	Bookmarks []Bookmark `yaml:"bookmarks"`
}

// Bookmark is a seeded bookmark
type Bookmark struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Result counts the items created by Apply
type Result struct {
	Folders   int
	Bookmarks int
}

// Default returns the built-in sample tree
func Default() (*File, error) {
	return Parse(defaultSeed)
}

// LoadFile reads and parses a seed document from disk
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a seed document
func Parse(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seed YAML: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	var errs []error
	for _, folder := range f.Folders {
		errs = append(errs, folder.validate(nil)...)
	}
	return errors.Join(errs...)
}

func (f Folder) validate(path []string) []error {
	path = append(path, f.Name)
	where := strings.Join(path, "/")

	var errs []error
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, fmt.Errorf("folder %q: name is required", where))
	}
	for _, b := range f.Bookmarks {
		if b.URL == "" {
			errs = append(errs, fmt.Errorf("bookmark %q in %q: url is required", b.Name, where))
		}
	}
	for _, child := range f.Folders {
		errs = append(errs, child.validate(path)...)
	}
	return errs
}

// Apply creates the seeded tree under root, appending after existing items.
// Folders are created before their bookmarks, depth first, so sibling order
// matches the document.
func Apply(ctx context.Context, store services.TreeStore, file *File) (*Result, error) {
	result := &Result{}
	for _, folder := range file.Folders {
		if err := applyFolder(ctx, store, folder, nil, result); err != nil {
			return result, err
		}
	}
	return result, nil
}

func applyFolder(ctx context.Context, store services.TreeStore, folder Folder, parentID *int64, result *Result) error {
	created, err := store.CreateFolder(ctx, &services.CreateFolderRequest{Name: folder.Name, ParentID: parentID})
	if err != nil {
		return fmt.Errorf("create folder %q: %w", folder.Name, err)
	}
	result.Folders++

	if folder.Open {
		if err := store.SetFolderOpen(ctx, created.ID, true); err != nil {
			return fmt.Errorf("open folder %q: %w", folder.Name, err)
		}
	}

	for _, child := range folder.Folders {
		if err := applyFolder(ctx, store, child, &created.ID, result); err != nil {
			return err
		}
	}

	for _, b := range folder.Bookmarks {
		_, err := store.CreateBookmark(ctx, &services.CreateBookmarkRequest{Name: b.Name, URL: b.URL, FolderID: created.ID})
		if err != nil {
			return fmt.Errorf("create bookmark %q: %w", b.URL, err)
		}
		result.Bookmarks++
	}
	return nil
}

// Clear deletes every root folder. Bookmarks always live in a folder, so this
// empties the store.
func Clear(ctx context.Context, store services.TreeStore) (int, error) {
	tree, err := store.FetchTree(ctx)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, folder := range tree.Folders {
		if folder.ParentID != nil {
			continue
		}
		if err := store.DeleteItem(ctx, models.ItemTypeFolder, folder.ID); err != nil {
			return deleted, fmt.Errorf("delete folder %d: %w", folder.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
