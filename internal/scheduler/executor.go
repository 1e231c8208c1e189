package scheduler

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"gaia/internal/model"
	"gaia/internal/service"
)

// Executor runs spawned daily jobs with bounded concurrency: assemble the
// evidence pack for the job window, re-verify its seal, and move the job to
// its terminal state. Failures land in the job's error column, never in a
// swallowed log line alone.
type Executor struct {
	jobs  service.JobService
	packs service.PackService

	group *errgroup.Group
	ctx   context.Context
}

// NewExecutor constructs an Executor running at most maxConcurrent jobs.
func NewExecutor(ctx context.Context, jobs service.JobService, packs service.PackService, maxConcurrent int) *Executor {
	g, gctx := errgroup.WithContext(ctx)
	if maxConcurrent > 0 {
		g.SetLimit(maxConcurrent)
	}
	return &Executor{jobs: jobs, packs: packs, group: g, ctx: gctx}
}

// Submit schedules a job run. It never blocks the caller beyond the
// concurrency limit.
func (e *Executor) Submit(job *model.Job) {
	e.group.Go(func() error {
		e.execute(e.ctx, job)
		return nil
	})
}

// Wait blocks until all submitted jobs finish.
func (e *Executor) Wait() {
	_ = e.group.Wait()
}

func (e *Executor) execute(ctx context.Context, job *model.Job) {
	if _, err := e.jobs.Transition(ctx, job.ID, model.JobRunning, ""); err != nil {
		log.Printf(`{"level":"error","msg":"job start failed","job_id":"%s","error":"%v"}`, job.ID, err)
		return
	}

	if err := e.run(ctx, job); err != nil {
		log.Printf(`{"level":"error","msg":"job failed","job_id":"%s","error":"%v"}`, job.ID, err)
		if _, terr := e.jobs.Transition(ctx, job.ID, model.JobFailed, err.Error()); terr != nil {
			log.Printf(`{"level":"error","msg":"job fail transition failed","job_id":"%s","error":"%v"}`, job.ID, terr)
		}
		return
	}

	if _, err := e.jobs.Transition(ctx, job.ID, model.JobCompleted, ""); err != nil {
		log.Printf(`{"level":"error","msg":"job complete transition failed","job_id":"%s","error":"%v"}`, job.ID, err)
		return
	}
	log.Printf(`{"level":"info","msg":"job completed","job_id":"%s"}`, job.ID)
}

func (e *Executor) run(ctx context.Context, job *model.Job) error {
	pack, err := e.packs.Assemble(ctx, job.ID)
	if err != nil {
		return fmt.Errorf("assemble evidence pack: %w", err)
	}

	// Seal check: every member the pack claims must still hash clean.
	res, err := e.packs.Verify(ctx, pack.ID)
	if err != nil {
		return fmt.Errorf("verify evidence pack %s: %w", pack.ID, err)
	}
	if !res.Intact {
		return fmt.Errorf("evidence pack %s has %d tampered or missing members", pack.ID, len(res.Mismatches))
	}

	log.Printf(`{"level":"info","msg":"evidence pack sealed","job_id":"%s","pack_id":"%s","members":%d}`, job.ID, pack.ID, res.Members)
	return nil
}
