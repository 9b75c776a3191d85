package domain

import (
	"time"

	"github.com/google/uuid"
)

type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
	ShiftDayOff  Shift = "DAY_OFF"
)

// ShiftAssignment is one (staff, date) cell of a generated roster.
type ShiftAssignment struct {
	ID            uuid.UUID `json:"id"`
	ScheduleJobID uuid.UUID `json:"schedule_job_id"`
	StaffID       uuid.UUID `json:"staff_id"`
	Date          time.Time `json:"date"` // civil date, midnight UTC
	Shift         Shift     `json:"shift"`
	CreatedAt     time.Time `json:"created_at"`
}
