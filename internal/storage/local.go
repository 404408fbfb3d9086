package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"path/filepath"

	"go-employee-api/internal/model"
)

// LocalRefPrefix is the ref prefix of objects kept on local disk.
const LocalRefPrefix = "uploads"

// Local stores objects as flat files under one root directory.
type Local struct {
	validator *PathValidator
}

func NewLocal(root string) (*Local, error) {
	validator, err := NewPathValidator(root)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(validator.RootAbs(), 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}

	return &Local{validator: validator}, nil
}

func (l *Local) RootAbs() string {
	return l.validator.RootAbs()
}

func (l *Local) resolve(ref string) (string, error) {
	name, err := ObjectName(ref)
	if err != nil {
		return "", err
	}
	return l.validator.ResolvePath(name)
}

func (l *Local) Save(_ context.Context, name string, r io.Reader, _ string) (string, error) {
	resolved, err := l.resolve(name)
	if err != nil {
		return "", err
	}

	file, err := os.OpenFile(resolved, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %q: %w", name, err)
	}

	if _, err := io.Copy(file, r); err != nil {
		_ = file.Close()
		_ = os.Remove(resolved)
		return "", fmt.Errorf("write %q: %w", name, err)
	}

	if err := file.Close(); err != nil {
		_ = os.Remove(resolved)
		return "", fmt.Errorf("close %q: %w", name, err)
	}

	return path.Join(LocalRefPrefix, filepath.Base(resolved)), nil
}

func (l *Local) Open(_ context.Context, ref string) (*Object, error) {
	resolved, err := l.resolve(ref)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(resolved)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.ErrFileNotFound
	}
	if err != nil {
		return nil, err
	}

	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = file.Close()
		return nil, model.ErrFileNotFound
	}

	return &Object{
		Body:        file,
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		ContentType: mime.TypeByExtension(filepath.Ext(resolved)),
	}, nil
}

// Remove deletes the object. A missing object is not an error.
func (l *Local) Remove(_ context.Context, ref string) error {
	resolved, err := l.resolve(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(resolved); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove %q: %w", ref, err)
	}
	return nil
}
