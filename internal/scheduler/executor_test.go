package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"

	"gaia/internal/integrity"
	"gaia/internal/model"
	"gaia/internal/service"
	svcMocks "gaia/internal/service/mocks"
)

func TestExecutor_CompletesHealthyJob(t *testing.T) {
	jobs := new(svcMocks.MockJobService)
	packs := new(svcMocks.MockPackService)
	ex := NewExecutor(context.Background(), jobs, packs, 1)

	job := &model.Job{ID: "job-1", Status: model.JobPending}
	jobs.On("Transition", mock.Anything, "job-1", model.JobRunning, "").Return(job, nil)
	packs.On("Assemble", mock.Anything, "job-1").Return(&model.EvidencePack{ID: "pack-1"}, nil)
	packs.On("Verify", mock.Anything, "pack-1").Return(&service.PackVerification{Intact: true, Members: 3}, nil)
	jobs.On("Transition", mock.Anything, "job-1", model.JobCompleted, "").Return(job, nil)

	ex.Submit(job)
	ex.Wait()

	jobs.AssertExpectations(t)
	packs.AssertExpectations(t)
}

func TestExecutor_FailsJobOnAssemblyError(t *testing.T) {
	jobs := new(svcMocks.MockJobService)
	packs := new(svcMocks.MockPackService)
	ex := NewExecutor(context.Background(), jobs, packs, 1)

	job := &model.Job{ID: "job-1", Status: model.JobPending}
	jobs.On("Transition", mock.Anything, "job-1", model.JobRunning, "").Return(job, nil)
	packs.On("Assemble", mock.Anything, "job-1").Return(nil, errors.New("no scenes in window"))
	jobs.On("Transition", mock.Anything, "job-1", model.JobFailed, mock.MatchedBy(func(errText string) bool {
		return errText != ""
	})).Return(job, nil)

	ex.Submit(job)
	ex.Wait()

	jobs.AssertExpectations(t)
	jobs.AssertNotCalled(t, "Transition", mock.Anything, "job-1", model.JobCompleted, "")
}

func TestExecutor_FailsJobOnTamperedPack(t *testing.T) {
	jobs := new(svcMocks.MockJobService)
	packs := new(svcMocks.MockPackService)
	ex := NewExecutor(context.Background(), jobs, packs, 1)

	job := &model.Job{ID: "job-1", Status: model.JobPending}
	jobs.On("Transition", mock.Anything, "job-1", model.JobRunning, "").Return(job, nil)
	packs.On("Assemble", mock.Anything, "job-1").Return(&model.EvidencePack{ID: "pack-1"}, nil)
	packs.On("Verify", mock.Anything, "pack-1").Return(&service.PackVerification{
		Intact:     false,
		Mismatches: []integrity.Mismatch{{Path: "raw/20240101_S2A_T33UVP.tif", Absent: true}},
	}, nil)
	jobs.On("Transition", mock.Anything, "job-1", model.JobFailed, mock.Anything).Return(job, nil)

	ex.Submit(job)
	ex.Wait()

	jobs.AssertExpectations(t)
}

func TestExecutor_SkipsJobThatCannotStart(t *testing.T) {
	jobs := new(svcMocks.MockJobService)
	packs := new(svcMocks.MockPackService)
	ex := NewExecutor(context.Background(), jobs, packs, 1)

	job := &model.Job{ID: "job-1", Status: model.JobCompleted}
	jobs.On("Transition", mock.Anything, "job-1", model.JobRunning, "").
		Return(nil, service.ErrBadTransition)

	ex.Submit(job)
	ex.Wait()

	packs.AssertNotCalled(t, "Assemble", mock.Anything, mock.Anything)
}
