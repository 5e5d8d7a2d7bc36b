package journal

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteJSON writes entries as indented JSON, the shape consumed by the
// external review surface.
func WriteJSON(entries []Entry, w io.Writer) error {
	if entries == nil {
		entries = []Entry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	if err := enc.Encode(entries); err != nil {
		return fmt.Errorf("encode journal entries: %w", err)
	}
	return nil
}

// SaveJSON writes entries to path, creating parent directories as needed.
func SaveJSON(entries []Entry, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal export directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create journal export %s: %w", path, err)
	}

	if err := WriteJSON(entries, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// LoadJSON reads a journal entries export back in.
func LoadJSON(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read journal entries %s: %w", path, err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse journal entries %s: %w", path, err)
	}
	return entries, nil
}
