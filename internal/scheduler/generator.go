package scheduler

import (
	"bytes"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/metrics"
)

// horizonDays is the fixed schedule length: four Monday-start weeks.
const horizonDays = 28

// Generator produces a 28-day shift schedule for a set of staff,
// greedily day by day under a rule set.
type Generator struct {
	rules  []Rule
	logger *slog.Logger
}

func NewGenerator(rules []Rule, logger *slog.Logger) *Generator {
	return &Generator{
		rules:  rules,
		logger: logger.With("component", "generator"),
	}
}

// Generate assigns exactly one shift per staff member per day over the
// 28-day horizon starting at startDate, which must be a Monday. Every
// staff/day pair gets an assignment even when no shift satisfies the
// rules; the fallback records a DAY_OFF regardless.
func (g *Generator) Generate(staffIDs []uuid.UUID, startDate time.Time, jobID uuid.UUID) ([]domain.ShiftAssignment, error) {
	startDate = domain.DateOnly(startDate)
	if !domain.IsMonday(startDate) {
		return nil, domain.ErrNotMonday
	}
	if len(staffIDs) == 0 {
		return nil, domain.ErrNoStaff
	}

	assignments := make(map[uuid.UUID]map[time.Time]domain.Shift, len(staffIDs))
	for _, id := range staffIDs {
		assignments[id] = make(map[time.Time]domain.Shift, horizonDays)
	}

	for day := 0; day < horizonDays; day++ {
		g.assignDay(assignments, staffIDs, startDate.AddDate(0, 0, day))
	}

	return flatten(assignments, jobID), nil
}

// assignDay fills one date for everyone: mornings first up to the morning
// target, then evenings up to the evening target, then days off with a
// fallback chain for whoever is left.
func (g *Generator) assignDay(assignments map[uuid.UUID]map[time.Time]domain.Shift, staffIDs []uuid.UUID, date time.Time) {
	unassigned := make([]uuid.UUID, len(staffIDs))
	copy(unassigned, staffIDs)

	n := len(unassigned)
	targetMorning := n / 3
	targetEvening := (n - targetMorning) / 2

	unassigned = g.assignTarget(assignments, unassigned, date, domain.ShiftMorning, targetMorning)
	unassigned = g.assignTarget(assignments, unassigned, date, domain.ShiftEvening, targetEvening)

	for _, staffID := range unassigned {
		g.assignWithFallback(assignments, staffID, date)
	}
}

// assignTarget walks the unassigned list in order, giving shift to the
// first staff the rules accept, until target placements are made. It
// returns the staff still unassigned.
func (g *Generator) assignTarget(assignments map[uuid.UUID]map[time.Time]domain.Shift, unassigned []uuid.UUID, date time.Time, shift domain.Shift, target int) []uuid.UUID {
	placed := 0
	remaining := unassigned[:0]
	for _, staffID := range unassigned {
		if placed >= target || g.violates(assignments, staffID, date, shift) != nil {
			remaining = append(remaining, staffID)
			continue
		}
		assignments[staffID][date] = shift
		placed++
	}
	return remaining
}

// assignWithFallback tries DAY_OFF, then MORNING, then EVENING. When every
// shift is vetoed the staff member still needs a row, so a DAY_OFF is
// recorded anyway and the conflict surfaces in the logs.
func (g *Generator) assignWithFallback(assignments map[uuid.UUID]map[time.Time]domain.Shift, staffID uuid.UUID, date time.Time) {
	for _, shift := range []domain.Shift{domain.ShiftDayOff, domain.ShiftMorning, domain.ShiftEvening} {
		if g.violates(assignments, staffID, date, shift) == nil {
			assignments[staffID][date] = shift
			return
		}
	}

	g.logger.Warn("no shift satisfies rules, recording day off",
		"staff_id", staffID,
		"date", domain.FormatDate(date),
	)
	metrics.FallbackAssignmentsTotal.Inc()
	assignments[staffID][date] = domain.ShiftDayOff
}

func (g *Generator) violates(assignments map[uuid.UUID]map[time.Time]domain.Shift, staffID uuid.UUID, date time.Time, shift domain.Shift) error {
	ctx := &AssignmentContext{
		Assignments: assignments,
		StaffID:     staffID,
		Date:        date,
		Shift:       shift,
	}
	for _, rule := range g.rules {
		if err := rule.Check(ctx); err != nil {
			return err
		}
	}
	return nil
}

func flatten(assignments map[uuid.UUID]map[time.Time]domain.Shift, jobID uuid.UUID) []domain.ShiftAssignment {
	now := time.Now().UTC()
	var out []domain.ShiftAssignment
	for staffID, days := range assignments {
		for date, shift := range days {
			out = append(out, domain.ShiftAssignment{
				ID:            uuid.New(),
				ScheduleJobID: jobID,
				StaffID:       staffID,
				Date:          date,
				Shift:         shift,
				CreatedAt:     now,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return bytes.Compare(out[i].StaffID[:], out[j].StaffID[:]) < 0
	})
	return out
}
