package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// fileKV persists the draft as a small JSON map under the user's home
// directory. One file, loaded and rewritten whole on every operation.
type fileKV struct {
	path string
}

func newFileKV() (*fileKV, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("cannot resolve home directory: %w", err)
	}
	dir := filepath.Join(home, ".etala")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("cannot create %s: %w", dir, err)
	}
	return &fileKV{path: filepath.Join(dir, "draft.json")}, nil
}

func (f *fileKV) read() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func (f *fileKV) write(m map[string]string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f *fileKV) Get(ctx context.Context, key string) (string, bool, error) {
	m, err := f.read()
	if err != nil {
		return "", false, err
	}
	v, ok := m[key]
	return v, ok, nil
}

func (f *fileKV) Set(ctx context.Context, key, value string) error {
	m, err := f.read()
	if err != nil {
		m = map[string]string{}
	}
	m[key] = value
	return f.write(m)
}

func (f *fileKV) Delete(ctx context.Context, key string) error {
	m, err := f.read()
	if err != nil {
		return nil
	}
	delete(m, key)
	return f.write(m)
}
