package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type fileFormat struct {
	Data [][]int `json:"data"`
}

// JSONFile stores the history as {"data": [[...], ...]} in a single file.
type JSONFile struct {
	path string
}

func NewJSONFile(path string) JSONFile {
	return JSONFile{path: path}
}

func (f JSONFile) Path() string {
	return f.path
}

func (f JSONFile) Read(ctx context.Context) ([][]int, bool, error) {
	contents, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var parsed fileFormat
	err = json.Unmarshal(contents, &parsed)
	if err != nil {
		return nil, false, fmt.Errorf("parse %s: %w", f.path, err)
	}
	if parsed.Data == nil {
		parsed.Data = [][]int{}
	}
	return parsed.Data, true, nil
}

// Write replaces the file atomically by renaming a temporary file over it.
func (f JSONFile) Write(ctx context.Context, entries [][]int) error {
	contents, err := json.Marshal(fileFormat{Data: entries})
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	err = os.MkdirAll(dir, 0o755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(contents)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

func (f JSONFile) Close() error {
	return nil
}
