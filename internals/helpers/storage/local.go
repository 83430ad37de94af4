package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LocalStore menulis file ke disk; URL publik = PublicBase + key.
type LocalStore struct {
	Dir        string
	PublicBase string
}

func NewLocalStore(dir, publicBase string) (*LocalStore, error) {
	if strings.TrimSpace(dir) == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", dir, err)
	}
	return &LocalStore{Dir: dir, PublicBase: strings.TrimRight(publicBase, "/")}, nil
}

func (s *LocalStore) Put(_ context.Context, dir string, obj Object) (string, error) {
	key := buildObjectKey("", dir, obj.Filename)
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(full, obj.Data, 0o644); err != nil {
		return "", err
	}
	return s.PublicBase + "/" + key, nil
}

func (s *LocalStore) Delete(_ context.Context, ref string) error {
	key := strings.TrimPrefix(ref, s.PublicBase+"/")
	if key == ref && s.PublicBase != "" {
		return fmt.Errorf("ref %q bukan milik store ini", ref)
	}
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if !strings.HasPrefix(filepath.Clean(full), filepath.Clean(s.Dir)) {
		return fmt.Errorf("ref %q di luar direktori upload", ref)
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
