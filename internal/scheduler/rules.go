package scheduler

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
)

// AssignmentContext is the state a rule sees when judging one candidate
// assignment: everything assigned so far plus the candidate itself.
// Dates are midnight-UTC, so they are safe map keys.
type AssignmentContext struct {
	Assignments map[uuid.UUID]map[time.Time]domain.Shift
	StaffID     uuid.UUID
	Date        time.Time
	Shift       domain.Shift
}

func (c *AssignmentContext) shiftOn(date time.Time) (domain.Shift, bool) {
	shift, ok := c.Assignments[c.StaffID][date]
	return shift, ok
}

// daysOffInWeek counts DAY_OFF assignments for the candidate's staff in the
// Monday-start week containing the candidate date, the candidate included
// when it is a DAY_OFF.
func (c *AssignmentContext) daysOffInWeek() int {
	weekStart := domain.WeekStart(c.Date)
	count := 0
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)
		if shift, ok := c.shiftOn(day); ok && shift == domain.ShiftDayOff {
			count++
		}
	}
	if c.Shift == domain.ShiftDayOff {
		count++
	}
	return count
}

// Rule vetoes candidate assignments. A nil return accepts the candidate;
// an error names the violated constraint.
type Rule interface {
	Name() string
	Check(ctx *AssignmentContext) error
}

// NoMorningAfterEvening forbids a MORNING shift on the day after an
// EVENING shift, in both directions of insertion order.
type NoMorningAfterEvening struct{}

func (NoMorningAfterEvening) Name() string { return "no_morning_after_evening" }

func (NoMorningAfterEvening) Check(ctx *AssignmentContext) error {
	if ctx.Shift == domain.ShiftMorning {
		if prev, ok := ctx.shiftOn(ctx.Date.AddDate(0, 0, -1)); ok && prev == domain.ShiftEvening {
			return fmt.Errorf("morning shift follows evening shift on %s", domain.FormatDate(ctx.Date.AddDate(0, 0, -1)))
		}
	}
	if ctx.Shift == domain.ShiftEvening {
		if next, ok := ctx.shiftOn(ctx.Date.AddDate(0, 0, 1)); ok && next == domain.ShiftMorning {
			return fmt.Errorf("evening shift precedes morning shift on %s", domain.FormatDate(ctx.Date.AddDate(0, 0, 1)))
		}
	}
	return nil
}

// MinDaysOffPerWeek rejects a work shift when the week can no longer reach
// the minimum: days off so far plus the days still open after the candidate
// date fall short of Min.
type MinDaysOffPerWeek struct {
	Min int
}

func (MinDaysOffPerWeek) Name() string { return "min_days_off_per_week" }

func (r MinDaysOffPerWeek) Check(ctx *AssignmentContext) error {
	if ctx.Shift == domain.ShiftDayOff {
		return nil
	}
	weekEnd := domain.WeekStart(ctx.Date).AddDate(0, 0, 6)
	remaining := int(weekEnd.Sub(ctx.Date).Hours() / 24)
	if ctx.daysOffInWeek()+remaining < r.Min {
		return fmt.Errorf("week cannot reach %d days off", r.Min)
	}
	return nil
}

// MaxDaysOffPerWeek caps DAY_OFF assignments per Monday-start week.
type MaxDaysOffPerWeek struct {
	Max int
}

func (MaxDaysOffPerWeek) Name() string { return "max_days_off_per_week" }

func (r MaxDaysOffPerWeek) Check(ctx *AssignmentContext) error {
	if ctx.Shift != domain.ShiftDayOff {
		return nil
	}
	if ctx.daysOffInWeek() > r.Max {
		return fmt.Errorf("more than %d days off in week", r.Max)
	}
	return nil
}

// ShiftBalance keeps the morning and evening headcounts on the candidate
// date within MaxDiff of each other. DAY_OFF never unbalances.
type ShiftBalance struct {
	MaxDiff int
}

func (ShiftBalance) Name() string { return "shift_balance" }

func (r ShiftBalance) Check(ctx *AssignmentContext) error {
	if ctx.Shift == domain.ShiftDayOff {
		return nil
	}
	mornings, evenings := 0, 0
	for _, byDate := range ctx.Assignments {
		shift, ok := byDate[ctx.Date]
		if !ok {
			continue
		}
		switch shift {
		case domain.ShiftMorning:
			mornings++
		case domain.ShiftEvening:
			evenings++
		}
	}
	switch ctx.Shift {
	case domain.ShiftMorning:
		mornings++
	case domain.ShiftEvening:
		evenings++
	}
	diff := mornings - evenings
	if diff < 0 {
		diff = -diff
	}
	if diff > r.MaxDiff {
		return fmt.Errorf("morning/evening imbalance exceeds %d", r.MaxDiff)
	}
	return nil
}

// DefaultRules is the rule set applied to every generated schedule.
func DefaultRules(minDaysOff, maxDaysOff, maxShiftDiff int) []Rule {
	return []Rule{
		NoMorningAfterEvening{},
		MinDaysOffPerWeek{Min: minDaysOff},
		MaxDaysOffPerWeek{Max: maxDaysOff},
		ShiftBalance{MaxDiff: maxShiftDiff},
	}
}
