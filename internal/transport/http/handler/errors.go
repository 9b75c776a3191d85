package handler

const (
	errInternalServer   = "Internal server error"
	errGroupNotFound    = "Group not found"
	errStaffNotFound    = "Staff not found"
	errMemberNotFound   = "Membership not found"
	errScheduleNotFound = "Schedule not found"
	errDuplicateName    = "Group with this name already exists"
	errDuplicateEmail   = "Staff with this email already exists"
	errGroupHasChildren = "Group still has child groups"
	errGroupCycle       = "Parent change would introduce a cycle"
	errParentConflict   = "Cannot set and unset parent in the same update"
	errInvalidID        = "Invalid UUID"
	errInvalidDate      = "Invalid date, expected YYYY-MM-DD"
	errPeriodNotMonday  = "period_begin_date must be a Monday"
	errQueueUnavailable = "Scheduling queue is unavailable, try again later"
)
