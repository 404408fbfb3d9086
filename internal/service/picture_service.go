package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"image"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"go-employee-api/internal/storage"
	"go-employee-api/internal/util"
	"go-employee-api/pkg/apierror"
)

const (
	DefaultThumbnailSize = 128
	MinThumbnailSize     = 32
	MaxThumbnailSize     = 1024
)

// Picture is a stored profile picture ready to be served. Exactly one of
// Object and RedirectURL is set.
type Picture struct {
	Name        string
	Object      *storage.Object
	RedirectURL string
}

type PictureService struct {
	store         storage.Store
	thumbnailRoot string
}

func NewPictureService(store storage.Store, thumbnailRoot string) (*PictureService, error) {
	if err := os.MkdirAll(thumbnailRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create thumbnail root: %w", err)
	}
	return &PictureService{store: store, thumbnailRoot: thumbnailRoot}, nil
}

// Open locates a picture by its public name. Stores that can presign hand
// out a redirect instead of the bytes.
func (s *PictureService) Open(ctx context.Context, name string) (Picture, error) {
	name, err := storage.ObjectName(name)
	if err != nil {
		return Picture{}, err
	}

	if presigner, ok := s.store.(storage.Presigner); ok {
		url, err := presigner.PresignGet(ctx, name)
		if err != nil {
			return Picture{}, err
		}
		return Picture{Name: name, RedirectURL: url}, nil
	}

	obj, err := s.store.Open(ctx, name)
	if err != nil {
		return Picture{}, err
	}
	return Picture{Name: name, Object: obj}, nil
}

// ClampThumbnailSize maps a requested edge length into the supported range.
func ClampThumbnailSize(size int) int {
	switch {
	case size <= 0:
		return DefaultThumbnailSize
	case size < MinThumbnailSize:
		return MinThumbnailSize
	case size > MaxThumbnailSize:
		return MaxThumbnailSize
	default:
		return size
	}
}

// Thumbnail returns a JPEG no larger than size on either edge, cached on
// disk until the source changes.
func (s *PictureService) Thumbnail(ctx context.Context, name string, size int) (*os.File, os.FileInfo, error) {
	name, err := storage.ObjectName(name)
	if err != nil {
		return nil, nil, err
	}
	size = ClampThumbnailSize(size)

	if ext := filepath.Ext(name); ext != "" && !util.IsThumbnailExtension(ext) {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "thumbnails are not available for this image type", ext, http.StatusUnsupportedMediaType)
	}

	obj, err := s.store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	defer obj.Body.Close()

	thumbPath := s.thumbnailPath(name, size)
	if thumbInfo, err := os.Stat(thumbPath); err == nil && !thumbInfo.ModTime().Before(obj.ModTime) {
		if thumbFile, openErr := os.Open(thumbPath); openErr == nil {
			return thumbFile, thumbInfo, nil
		}
	}

	src, _, err := image.Decode(obj.Body)
	if err != nil {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "cannot decode image", err.Error(), http.StatusUnsupportedMediaType)
	}

	bounds := src.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, nil, apierror.New("UNSUPPORTED_TYPE", "invalid image dimensions", name, http.StatusUnsupportedMediaType)
	}

	if err := s.writeThumbnail(src, thumbPath, size, obj.ModTime); err != nil {
		return nil, nil, err
	}

	thumbFile, err := os.Open(thumbPath)
	if err != nil {
		return nil, nil, err
	}
	thumbInfo, err := thumbFile.Stat()
	if err != nil {
		_ = thumbFile.Close()
		return nil, nil, err
	}
	return thumbFile, thumbInfo, nil
}

// Remove deletes a stored picture and every cached thumbnail of it.
func (s *PictureService) Remove(ctx context.Context, ref string) error {
	name, err := storage.ObjectName(ref)
	if err != nil {
		return err
	}

	removeErr := s.store.Remove(ctx, ref)

	matches, err := filepath.Glob(filepath.Join(s.thumbnailRoot, thumbnailPrefix(name)+"-*.jpg"))
	if err != nil {
		return errors.Join(removeErr, err)
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !errors.Is(err, os.ErrNotExist) {
			removeErr = errors.Join(removeErr, err)
		}
	}
	return removeErr
}

func (s *PictureService) writeThumbnail(src image.Image, thumbPath string, size int, sourceModTime time.Time) error {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	scale := float64(size) / float64(max(width, height))
	if scale > 1 {
		scale = 1
	}

	targetWidth := max(int(math.Round(float64(width)*scale)), 1)
	targetHeight := max(int(math.Round(float64(height)*scale)), 1)

	dst := image.NewRGBA(image.Rect(0, 0, targetWidth, targetHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	tmp, err := os.CreateTemp(s.thumbnailRoot, "thumb-*.tmp")
	if err != nil {
		return err
	}

	encodeErr := jpeg.Encode(tmp, dst, &jpeg.Options{Quality: 90})
	closeErr := tmp.Close()
	if err := errors.Join(encodeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	if err := os.Rename(tmp.Name(), thumbPath); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}

	modTime := sourceModTime
	if modTime.IsZero() {
		modTime = time.Now().UTC()
	}
	_ = os.Chtimes(thumbPath, time.Now().UTC(), modTime)
	return nil
}

func (s *PictureService) thumbnailPath(name string, size int) string {
	return filepath.Join(s.thumbnailRoot, thumbnailPrefix(name)+"-"+strconv.Itoa(size)+".jpg")
}

func thumbnailPrefix(name string) string {
	hash := sha256.Sum256([]byte(name))
	return hex.EncodeToString(hash[:16])
}
