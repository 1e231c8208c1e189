package mocks

import (
	"context"
	"io"
	"time"

	"gaia/internal/model"
	"gaia/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockArtifactService struct {
	mock.Mock
}

func (m *MockArtifactService) Register(ctx context.Context, r io.Reader, in service.RegisterInput) (*model.Artifact, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) Get(ctx context.Context, id string) (*model.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactService) ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockArtifactService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}
