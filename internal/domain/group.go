package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound      = errors.New("group not found")
	ErrDuplicateGroupName = errors.New("group with this name already exists")
	ErrGroupHasChildren   = errors.New("group is still referenced as a parent by other groups")
	ErrGroupCycle         = errors.New("group parent change would introduce a cycle")
	ErrParentConflict     = errors.New("cannot set and unset parent in the same update")
)

// Group is a node in the parent/child forest of staff groupings.
// ParentID nil means the group is a root.
type Group struct {
	ID        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	ParentID  *uuid.UUID `json:"parent_id,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// GroupWithMembers pairs a group with its direct active members.
// Produced by the resolved-membership query, never persisted.
type GroupWithMembers struct {
	Group   Group   `json:"group"`
	Members []Staff `json:"members"`
}
