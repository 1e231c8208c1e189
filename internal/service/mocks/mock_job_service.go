package mocks

import (
	"context"
	"time"

	"gaia/internal/model"
	"gaia/internal/service"
	"github.com/stretchr/testify/mock"
)

type MockJobService struct {
	mock.Mock
}

func (m *MockJobService) Create(ctx context.Context, in service.CreateJobInput) (*model.Job, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobService) Get(ctx context.Context, id string) (*model.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobService) List(ctx context.Context, limit, offset int) (*service.JobListResult, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.JobListResult), args.Error(1)
}

func (m *MockJobService) Transition(ctx context.Context, id string, next model.JobStatus, errText string) (*model.Job, error) {
	args := m.Called(ctx, id, next, errText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobService) SpawnDailyRun(ctx context.Context, parent *model.Job, now time.Time) (*model.Job, error) {
	args := m.Called(ctx, parent, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}
