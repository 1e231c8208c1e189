package mocks

import (
	"context"
	"time"

	"gaia/internal/model"
	"gaia/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockPackService struct {
	mock.Mock
}

func (m *MockPackService) Assemble(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}

func (m *MockPackService) Get(ctx context.Context, id string) (*model.EvidencePack, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}

func (m *MockPackService) GetByJob(ctx context.Context, jobID string) (*model.EvidencePack, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvidencePack), args.Error(1)
}

func (m *MockPackService) PresignDownload(ctx context.Context, id string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, id, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockPackService) Verify(ctx context.Context, id string) (*service.PackVerification, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PackVerification), args.Error(1)
}
