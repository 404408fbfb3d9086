package storage

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	args := m.Called(ctx, name, r, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStore) Open(ctx context.Context, ref string) (*Object, error) {
	args := m.Called(ctx, ref)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Object), args.Error(1)
}

func (m *MockStore) Remove(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}
