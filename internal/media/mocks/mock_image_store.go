package mocks

import (
	"context"

	"github.com/agritech/agrimarket/internal/media"
	"github.com/stretchr/testify/mock"
)

type MockImageStore struct {
	mock.Mock
}

var _ media.ImageStore = (*MockImageStore)(nil)

func (m *MockImageStore) Store(ctx context.Context, up media.Upload) (string, error) {
	args := m.Called(ctx, up)
	return args.String(0), args.Error(1)
}

func (m *MockImageStore) Delete(ctx context.Context, relPath string) {
	m.Called(ctx, relPath)
}

func (m *MockImageStore) List(ctx context.Context) ([]media.StoredFile, error) {
	args := m.Called(ctx)
	if res := args.Get(0); res != nil {
		return res.([]media.StoredFile), args.Error(1)
	}
	return nil, args.Error(1)
}
