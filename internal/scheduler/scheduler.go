// Package scheduler drives the standing daily missions: it keeps a DAILY
// parent job per watch-list mission, spawns a child run when a mission is
// due, and hands children to the executor.
package scheduler

import (
	"context"
	"log"
	"time"

	"gaia/internal/model"
	"gaia/internal/repository"
	"gaia/internal/service"
)

// dueAfter is how stale a DAILY mission's last_run must be before the
// scheduler spawns the next child run.
const dueAfter = 24 * time.Hour

// Scheduler periodically reconciles the mission watch list against the jobs
// table and spawns due daily runs.
type Scheduler struct {
	watchList *WatchList
	jobs      service.JobService
	jobRepo   repository.JobRepository
	executor  *Executor
	interval  time.Duration
	now       func() time.Time
}

// New constructs a Scheduler.
func New(wl *WatchList, jobs service.JobService, jobRepo repository.JobRepository, ex *Executor, interval time.Duration) *Scheduler {
	return &Scheduler{
		watchList: wl,
		jobs:      jobs,
		jobRepo:   jobRepo,
		executor:  ex,
		interval:  interval,
		now:       time.Now,
	}
}

// Run ticks until ctx is cancelled. One tick runs immediately at start.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

// tick ensures a DAILY parent exists per mission, then spawns and executes a
// child run for every parent whose last run is stale.
func (s *Scheduler) tick(ctx context.Context) {
	parents, err := s.jobRepo.ListRecurring(ctx, model.RecurrenceDaily)
	if err != nil {
		log.Printf(`{"level":"error","msg":"scheduler tick failed","error":"%v"}`, err)
		return
	}

	missions := s.watchList.Missions()
	for _, m := range missions {
		if findParent(parents, m) != nil {
			continue
		}
		now := s.now().UTC()
		parent, err := s.jobs.Create(ctx, service.CreateJobInput{
			Sensor:      m.Sensor,
			WindowStart: now.Add(-dueAfter),
			WindowEnd:   now,
			BBox:        m.BBox,
			Recurrence:  model.RecurrenceDaily,
		})
		if err != nil {
			log.Printf(`{"level":"error","msg":"mission job create failed","mission":"%s","error":"%v"}`, m.Name, err)
			continue
		}
		parents = append(parents, *parent)
		log.Printf(`{"level":"info","msg":"mission registered","mission":"%s","job_id":"%s"}`, m.Name, parent.ID)
	}

	now := s.now().UTC()
	for i := range parents {
		parent := &parents[i]
		if !s.due(parent, now) {
			continue
		}
		child, err := s.jobs.SpawnDailyRun(ctx, parent, now)
		if err != nil {
			log.Printf(`{"level":"error","msg":"daily run spawn failed","parent_job_id":"%s","error":"%v"}`, parent.ID, err)
			continue
		}
		log.Printf(`{"level":"info","msg":"daily run spawned","parent_job_id":"%s","job_id":"%s"}`, parent.ID, child.ID)
		s.executor.Submit(child)
	}
}

func (s *Scheduler) due(parent *model.Job, now time.Time) bool {
	return parent.LastRun == nil || now.Sub(*parent.LastRun) >= dueAfter
}

// findParent matches a mission to its standing job by sensor and footprint.
func findParent(parents []model.Job, m Mission) *model.Job {
	for i := range parents {
		p := &parents[i]
		if p.Sensor == m.Sensor && p.BBox == m.BBox {
			return p
		}
	}
	return nil
}
