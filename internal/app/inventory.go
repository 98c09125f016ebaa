package app

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	appErrors "adbpull/internal/errors"
)

// Inventory maps '/'-separated paths relative to a destination root to their local mtime.
type Inventory map[string]time.Time

func (i Inventory) Has(relativePath string) bool {
	_, ok := i[relativePath]
	return ok
}

// TakeInventory walks destRoot and records every regular file. A missing
// destination is an empty inventory; an inaccessible one is fatal.
func TakeInventory(fsys FileSystem, destRoot string) (Inventory, error) {
	inv := Inventory{}

	info, err := fsys.Stat(destRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return inv, nil
		}
		return nil, appErrors.Wrap(appErrors.IOFailure, "stat", destRoot, err)
	}
	if !info.IsDir() {
		return nil, appErrors.Wrap(appErrors.IOFailure, "stat", destRoot, fmt.Errorf("not a directory"))
	}

	err = fsys.WalkDir(destRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, relErr := filepath.Rel(destRoot, path)
		if relErr != nil {
			return relErr
		}
		var modTime time.Time
		if fi, infoErr := d.Info(); infoErr == nil && fi != nil {
			modTime = fi.ModTime()
		}
		inv[filepath.ToSlash(rel)] = modTime
		return nil
	})
	if err != nil {
		return nil, appErrors.Wrap(appErrors.IOFailure, "walk", destRoot, err)
	}
	return inv, nil
}
