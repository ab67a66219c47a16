package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Box is the private working directory of one execution. Nothing in it is
// shared with other executions.
type Box struct {
	path string
}

// New creates the directory root/id. The directory is world-writable so the
// enforcer's unprivileged user can create files in it.
func New(root string, id string) (*Box, error) {
	if id == "" || id == "." || id == ".." || id != filepath.Base(id) {
		return nil, fmt.Errorf("invalid box id %q", id)
	}
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work root %s: %w", root, err)
	}

	path := filepath.Join(root, id)
	if err := os.Mkdir(path, 0777); err != nil {
		return nil, fmt.Errorf("failed to create box %s: %w", path, err)
	}
	if err := os.Chmod(path, 0777); err != nil {
		_ = os.RemoveAll(path)
		return nil, fmt.Errorf("failed to chmod box %s: %w", path, err)
	}

	return &Box{path: path}, nil
}

func (box *Box) Path() string {
	return box.path
}

// AddFile writes content to name inside the box and returns the full path.
func (box *Box) AddFile(name string, content []byte) (string, error) {
	if name != filepath.Base(name) {
		return "", fmt.Errorf("file name %q must not contain a directory", name)
	}
	path := filepath.Join(box.path, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return "", err
	}
	return path, nil
}

func (box *Box) Close() error {
	return os.RemoveAll(box.path)
}
