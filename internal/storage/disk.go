// Package storage writes uploaded files to local disk under generated
// names. Client-supplied filenames are never used as paths.
package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores files under a root directory and addresses them by a public
// relative path (e.g. /uploads/<name>).
type Disk struct {
	root   string
	prefix string
}

// NewDisk creates a store rooted at root; stored paths are exposed as
// prefix + "/" + name.
func NewDisk(root, prefix string) *Disk {
	return &Disk{root: root, prefix: strings.TrimSuffix(prefix, "/")}
}

// Save writes data under the given generated name and returns the public
// relative path recorded in the database.
func (d *Disk) Save(name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.root, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if name != filepath.Base(name) {
		return "", fmt.Errorf("invalid stored name %q", name)
	}
	if err := os.WriteFile(filepath.Join(d.root, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return d.prefix + "/" + name, nil
}

// Remove deletes the backing file for a stored relative path. A missing
// file is not an error; the row is the source of truth being cleaned up.
func (d *Disk) Remove(relPath string) error {
	abs, err := d.abs(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// abs maps a public relative path back to a location under root,
// rejecting anything outside the prefix or containing traversal.
func (d *Disk) abs(relPath string) (string, error) {
	if !strings.HasPrefix(relPath, d.prefix+"/") {
		return "", fmt.Errorf("path %q outside upload prefix", relPath)
	}
	name := strings.TrimPrefix(relPath, d.prefix+"/")
	if name == "" || name != filepath.Base(name) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid stored path %q", relPath)
	}
	return filepath.Join(d.root, name), nil
}
