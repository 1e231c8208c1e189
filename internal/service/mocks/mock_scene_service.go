package mocks

import (
	"context"
	"io"
	"time"

	"gaia/internal/model"
	"gaia/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockSceneService struct {
	mock.Mock
}

func (m *MockSceneService) Ingest(ctx context.Context, r io.Reader, in service.IngestInput) (*model.Scene, error) {
	args := m.Called(ctx, r, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}

func (m *MockSceneService) Verify(ctx context.Context, id string) (*service.VerificationResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.VerificationResult), args.Error(1)
}

func (m *MockSceneService) Get(ctx context.Context, id string) (*model.Scene, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}

func (m *MockSceneService) GetProvenance(ctx context.Context, id string) (*model.Provenance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Provenance), args.Error(1)
}

func (m *MockSceneService) List(ctx context.Context, limit, offset int) (*service.SceneListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SceneListResult), args.Error(1)
}

func (m *MockSceneService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSceneService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}
