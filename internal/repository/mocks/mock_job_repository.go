package mocks

import (
	"context"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockJobRepository struct {
	mock.Mock
}

func (m *MockJobRepository) Create(ctx context.Context, job *model.Job) (*model.Job, error) {
	args := m.Called(ctx, job)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobRepository) FindByID(ctx context.Context, id string) (*model.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Job), args.Error(1)
}

func (m *MockJobRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Job], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Job]), args.Error(1)
}

func (m *MockJobRepository) ListRecurring(ctx context.Context, recurrence string) ([]model.Job, error) {
	args := m.Called(ctx, recurrence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Job), args.Error(1)
}

func (m *MockJobRepository) UpdateStatus(ctx context.Context, id string, status model.JobStatus, errText string) error {
	args := m.Called(ctx, id, status, errText)
	return args.Error(0)
}

func (m *MockJobRepository) SetLastRun(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}
