package mocks

import (
	"context"

	"gaia/internal/model"
	"github.com/stretchr/testify/mock"
)

type MockArtifactRepository struct {
	mock.Mock
}

func (m *MockArtifactRepository) Create(ctx context.Context, a *model.Artifact) (*model.Artifact, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) FindByID(ctx context.Context, id string) (*model.Artifact, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) ListByScene(ctx context.Context, sceneID string) ([]model.Artifact, error) {
	args := m.Called(ctx, sceneID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

func (m *MockArtifactRepository) ListByJob(ctx context.Context, jobID string) ([]model.Artifact, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Artifact), args.Error(1)
}

type MockPackRepository struct {
	mock.Mock
}

func (m *MockPackRepository) Create(ctx context.Context, p *model.EvidencePack) (*model.EvidencePack, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}

func (m *MockPackRepository) FindByID(ctx context.Context, id string) (*model.EvidencePack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}

func (m *MockPackRepository) FindByJob(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}
