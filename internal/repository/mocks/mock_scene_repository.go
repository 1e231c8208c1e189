package mocks

import (
	"context"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockSceneRepository struct {
	mock.Mock
}

func (m *MockSceneRepository) Create(ctx context.Context, scene *model.Scene, prov *model.Provenance) (*model.Scene, error) {
	args := m.Called(ctx, scene, prov)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}

func (m *MockSceneRepository) FindByID(ctx context.Context, id string) (*model.Scene, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Scene), args.Error(1)
}

func (m *MockSceneRepository) FindProvenance(ctx context.Context, sceneID string) (*model.Provenance, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Provenance), args.Error(1)
}

func (m *MockSceneRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Scene], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Scene]), args.Error(1)
}

func (m *MockSceneRepository) ListByWindow(ctx context.Context, start, end time.Time) ([]model.Scene, error) {
	args := m.Called(ctx, start, end)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Scene), args.Error(1)
}

func (m *MockSceneRepository) ListByWindowAndBBox(ctx context.Context, start, end time.Time, box model.BBox, tol float64) ([]model.Scene, error) {
	args := m.Called(ctx, start, end, box, tol)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Scene), args.Error(1)
}

func (m *MockSceneRepository) SetArchivePath(ctx context.Context, id, archivePath string) error {
	args := m.Called(ctx, id, archivePath)
	return args.Error(0)
}

func (m *MockSceneRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
