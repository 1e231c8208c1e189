package mocks

import (
	"context"

	"gaia/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockArchiveService struct {
	mock.Mock
}

func (m *MockArchiveService) Archive(ctx context.Context, sceneID string) (*model.Scene, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}

func (m *MockArchiveService) Restore(ctx context.Context, sceneID string) (*model.Scene, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}
