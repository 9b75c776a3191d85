package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrStaffNotFound  = errors.New("staff not found")
	ErrDuplicateEmail = errors.New("staff with this email already exists")
)

type StaffStatus string

const (
	StaffActive   StaffStatus = "ACTIVE"
	StaffInactive StaffStatus = "INACTIVE"
)

type Staff struct {
	ID        uuid.UUID   `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Position  string      `json:"position"`
	Status    StaffStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
