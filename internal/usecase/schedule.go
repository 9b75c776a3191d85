package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/cache"
	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
	"github.com/rosterd/rosterd/internal/scheduler"
)

// JobQueue hands accepted jobs to the dispatch worker. Implemented by
// *scheduler.Dispatcher.
type JobQueue interface {
	Submit(ctx context.Context, msg scheduler.DispatchMessage) error
}

// ScheduleResult is the completed output of a schedule job.
type ScheduleResult struct {
	ScheduleID   uuid.UUID                `json:"schedule_id"`
	StaffGroupID uuid.UUID                `json:"staff_group_id"`
	PeriodBegin  time.Time                `json:"period_begin_date"`
	Assignments  []domain.ShiftAssignment `json:"assignments"`
}

type ScheduleUsecase struct {
	jobs        repository.JobRepository
	assignments repository.AssignmentRepository
	queue       JobQueue
	cache       MemberCache
	logger      *slog.Logger
}

func NewScheduleUsecase(
	jobs repository.JobRepository,
	assignments repository.AssignmentRepository,
	queue JobQueue,
	memberCache MemberCache,
	logger *slog.Logger,
) *ScheduleUsecase {
	return &ScheduleUsecase{
		jobs:        jobs,
		assignments: assignments,
		queue:       queue,
		cache:       memberCache,
		logger:      logger.With("component", "schedule_usecase"),
	}
}

// Submit validates the request, persists a PENDING job, then enqueues it.
// If the queue is full or closed the PENDING row stays behind as a record
// of the accepted-but-never-started request.
func (u *ScheduleUsecase) Submit(ctx context.Context, groupID uuid.UUID, periodBegin time.Time) (*domain.ScheduleJob, error) {
	periodBegin = domain.DateOnly(periodBegin)
	if !domain.IsMonday(periodBegin) {
		return nil, domain.ErrNotMonday
	}

	job, err := u.jobs.Create(ctx, &domain.ScheduleJob{
		ID:           uuid.New(),
		StaffGroupID: groupID,
		PeriodBegin:  periodBegin,
		Status:       domain.JobPending,
	})
	if err != nil {
		return nil, err
	}

	msg := scheduler.DispatchMessage{
		JobID:       job.ID,
		GroupID:     groupID,
		PeriodBegin: periodBegin,
		CreatedAt:   job.CreatedAt,
	}
	if err := u.queue.Submit(ctx, msg); err != nil {
		u.logger.Error("enqueue failed after job persisted", "job_id", job.ID, "error", err)
		return nil, fmt.Errorf("enqueue schedule job: %w", err)
	}

	u.logger.Info("schedule job accepted",
		"job_id", job.ID,
		"staff_group_id", groupID,
		"period_begin_date", domain.FormatDate(periodBegin),
	)
	return job, nil
}

func (u *ScheduleUsecase) Status(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error) {
	return u.jobs.GetByID(ctx, id)
}

// Result returns the generated schedule for a COMPLETED job, read-through
// cached. Any other status yields JobNotCompletedError so callers can
// distinguish "not yet" from "does not exist".
func (u *ScheduleUsecase) Result(ctx context.Context, id uuid.UUID) (*ScheduleResult, error) {
	job, err := u.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != domain.JobCompleted {
		return nil, &domain.JobNotCompletedError{Status: job.Status}
	}

	key := cache.ScheduleResultKey(id)
	var cached ScheduleResult
	if u.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	assignments, err := u.assignments.ListByJob(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &ScheduleResult{
		ScheduleID:   job.ID,
		StaffGroupID: job.StaffGroupID,
		PeriodBegin:  job.PeriodBegin,
		Assignments:  assignments,
	}
	u.cache.Set(ctx, key, result, cache.ScheduleResultTTL)
	return result, nil
}
