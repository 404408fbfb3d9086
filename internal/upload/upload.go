// Package upload accepts at most one image per request and stores it until
// the request either commits or releases it.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"go-employee-api/internal/model"
	"go-employee-api/internal/storage"
	"go-employee-api/internal/util"
)

const (
	FieldName = "profile_picture"

	// maxFieldBytes bounds a single non-file form value.
	maxFieldBytes = 64 << 10
	// formOverhead is the body allowance on top of the file size limit for
	// boundaries, headers and plain fields.
	formOverhead = 1 << 20
)

// File is an accepted upload. Unless Commit is called, Release deletes it.
type File struct {
	store       storage.Store
	Ref         string
	Filename    string
	ContentType string
	Size        int64
	committed   bool
}

// Reference returns the stored ref, or "" for a nil file.
func (f *File) Reference() string {
	if f == nil {
		return ""
	}
	return f.Ref
}

// Commit marks the file as owned by a persisted record.
func (f *File) Commit() {
	if f != nil {
		f.committed = true
	}
}

// Release deletes the stored file unless it was committed. It is safe on a
// nil file and safe to call more than once.
func (f *File) Release(ctx context.Context) {
	if f == nil || f.committed || f.Ref == "" {
		return
	}

	if err := f.store.Remove(ctx, f.Ref); err != nil {
		slog.Warn("failed to discard upload", "ref", f.Ref, "error", err)
		return
	}
	f.Ref = ""
}

// Form is a parsed multipart body.
type Form struct {
	Fields map[string]string
	File   *File
}

type Handler struct {
	store   storage.Store
	maxSize int64
}

func NewHandler(store storage.Store, maxSize int64) *Handler {
	return &Handler{store: store, maxSize: maxSize}
}

func (h *Handler) MaxSize() int64 {
	return h.maxSize
}

// ReadMultipart streams a multipart body. Plain parts become fields; a
// single file part named profile_picture is stored. On error nothing stays
// stored.
func (h *Handler) ReadMultipart(w http.ResponseWriter, r *http.Request) (form Form, err error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+formOverhead)

	reader, err := r.MultipartReader()
	if err != nil {
		return Form{}, fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}

	form = Form{Fields: map[string]string{}}
	defer func() {
		if err != nil {
			form.File.Release(r.Context())
			form = Form{}
		}
	}()

	for {
		part, nextErr := reader.NextPart()
		if errors.Is(nextErr, io.EOF) {
			return form, nil
		}
		if nextErr != nil {
			if errors.Is(classifyReadError(nextErr), model.ErrFileTooLarge) {
				return form, model.ErrFileTooLarge
			}
			return form, fmt.Errorf("%w: %v", model.ErrInvalidInput, nextErr)
		}

		// A file input left empty arrives without a filename and is kept as
		// an ordinary field.
		if part.FileName() == "" {
			value, readErr := io.ReadAll(io.LimitReader(part, maxFieldBytes))
			_ = part.Close()
			if readErr != nil {
				return form, classifyReadError(readErr)
			}
			if _, seen := form.Fields[part.FormName()]; !seen {
				form.Fields[part.FormName()] = string(value)
			}
			continue
		}

		if part.FormName() != FieldName || form.File != nil {
			_ = part.Close()
			return form, model.ErrUnexpectedFile
		}

		file, acceptErr := h.Accept(r.Context(), part.FileName(), part.Header.Get("Content-Type"), part)
		_ = part.Close()
		if acceptErr != nil {
			return form, acceptErr
		}
		form.File = file
	}
}

// Accept stores one image. The declared content type must be image/* and
// the content must not exceed the size limit.
func (h *Handler) Accept(ctx context.Context, filename string, contentType string, r io.Reader) (*File, error) {
	if !util.IsImageMIME(contentType) {
		return nil, model.ErrInvalidFileType
	}

	name := FieldName + "-" + uuid.NewString() + util.ImageExtension(filename, contentType)
	counter := &countingReader{r: io.LimitReader(r, h.maxSize+1)}

	ref, err := h.store.Save(ctx, name, counter, contentType)
	if err != nil {
		return nil, classifyReadError(err)
	}

	file := &File{store: h.store, Ref: ref, Filename: filename, ContentType: contentType, Size: counter.n}
	if counter.n > h.maxSize {
		file.Release(ctx)
		return nil, model.ErrFileTooLarge
	}

	return file, nil
}

// classifyReadError maps failures while reading the request body. Store
// failures pass through unchanged.
func classifyReadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return model.ErrFileTooLarge
	case errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, io.EOF):
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	default:
		return err
	}
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
