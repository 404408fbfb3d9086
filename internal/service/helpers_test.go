package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"go-employee-api/internal/database"
	"go-employee-api/internal/model"
	"go-employee-api/internal/repository"
	"go-employee-api/internal/storage"
	"go-employee-api/internal/upload"
)

type testEnv struct {
	users     *repository.GormUserRepository
	employees *repository.GormEmployeeRepository
	store     *storage.Local
	pictures  *PictureService
	uploads   *upload.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	db, err := database.OpenSQLite(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(db.Close)

	store, err := storage.NewLocal(filepath.Join(dir, "uploads"))
	require.NoError(t, err)

	pictures, err := NewPictureService(store, filepath.Join(dir, "thumbnails"))
	require.NoError(t, err)

	return &testEnv{
		users:     repository.NewGormUserRepository(db.Gorm),
		employees: repository.NewGormEmployeeRepository(db.Gorm),
		store:     store,
		pictures:  pictures,
		uploads:   upload.NewHandler(store, 5<<20),
	}
}

func pngBytes(t *testing.T, width int, height int) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}

	buf := &bytes.Buffer{}
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func (e *testEnv) acceptPNG(t *testing.T) *upload.File {
	t.Helper()

	file, err := e.uploads.Accept(context.Background(), "me.png", "image/png", bytes.NewReader(pngBytes(t, 64, 32)))
	require.NoError(t, err)
	return file
}

func sampleEmployee(email string) model.Employee {
	return model.Employee{
		FirstName:     "Grace",
		LastName:      "Hopper",
		Email:         email,
		Position:      "Rear Admiral",
		Department:    "Navy",
		Salary:        decimal.RequireFromString("120000"),
		DateOfJoining: time.Date(1943, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}
