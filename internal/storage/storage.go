package storage

import (
	"context"
	"io"
	"path"
	"strings"
	"time"

	"go-employee-api/internal/model"
)

// Store keeps uploaded objects. A ref is what Save returns; Open and Remove
// also accept the bare object name.
type Store interface {
	Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error)
	Open(ctx context.Context, ref string) (*Object, error)
	Remove(ctx context.Context, ref string) error
}

// Presigner is implemented by stores whose objects can be fetched directly
// by clients through a time-limited URL.
type Presigner interface {
	PresignGet(ctx context.Context, ref string) (string, error)
}

type Object struct {
	Body        io.ReadCloser
	Size        int64
	ModTime     time.Time
	ContentType string
}

// ObjectName extracts the object name of a ref, rejecting anything that
// does not name a single object.
func ObjectName(ref string) (string, error) {
	normalized := strings.ReplaceAll(strings.TrimSpace(ref), `\`, "/")
	name := path.Base(normalized)
	if name == "" || name == "." || name == "/" || name == ".." {
		return "", model.ErrFileNotFound
	}
	return name, nil
}

var (
	_ Store     = (*Local)(nil)
	_ Store     = (*S3)(nil)
	_ Presigner = (*S3)(nil)
	_ Store     = (*MockStore)(nil)
)
