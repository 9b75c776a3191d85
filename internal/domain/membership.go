package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrMembershipNotFound = errors.New("membership not found")

// Membership is a (staff, group) edge. The pair is unique; re-adding an
// existing pair returns the original row.
type Membership struct {
	ID        uuid.UUID `json:"id"`
	StaffID   uuid.UUID `json:"staff_id"`
	GroupID   uuid.UUID `json:"group_id"`
	CreatedAt time.Time `json:"created_at"`
}
