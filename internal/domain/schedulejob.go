package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrJobNotFound       = errors.New("schedule job not found")
	ErrIllegalTransition = errors.New("illegal job status transition")
	ErrNotMonday         = errors.New("period_begin_date must be a Monday")
	ErrNoStaff           = errors.New("at least one staff member is required")
	ErrNoActiveStaff     = errors.New("no active staff members found in the group")
)

type JobStatus string

const (
	JobPending    JobStatus = "PENDING"
	JobProcessing JobStatus = "PROCESSING"
	JobCompleted  JobStatus = "COMPLETED"
	JobFailed     JobStatus = "FAILED"
)

// ScheduleJob is one asynchronous request to produce a 28-day roster for a
// group. Legal transitions: PENDING -> PROCESSING -> (COMPLETED | FAILED).
type ScheduleJob struct {
	ID           uuid.UUID
	StaffGroupID uuid.UUID
	PeriodBegin  time.Time // civil date, midnight UTC, always a Monday
	Status       JobStatus
	ErrorMessage *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  *time.Time
}

// JobNotCompletedError is returned when a schedule result is requested before
// the job has reached COMPLETED.
type JobNotCompletedError struct {
	Status JobStatus
}

func (e *JobNotCompletedError) Error() string {
	return fmt.Sprintf("schedule is not completed yet: current status is %s", e.Status)
}
