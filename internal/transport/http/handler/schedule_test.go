package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/scheduler"
	"github.com/rosterd/rosterd/internal/transport/http/handler"
	"github.com/rosterd/rosterd/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeScheduleUsecase implements the unexported scheduleUsecaser interface
// via method matching.
type fakeScheduleUsecase struct {
	submit func(ctx context.Context, groupID uuid.UUID, periodBegin time.Time) (*domain.ScheduleJob, error)
	status func(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error)
	result func(ctx context.Context, id uuid.UUID) (*usecase.ScheduleResult, error)
}

func (f *fakeScheduleUsecase) Submit(ctx context.Context, groupID uuid.UUID, periodBegin time.Time) (*domain.ScheduleJob, error) {
	return f.submit(ctx, groupID, periodBegin)
}

func (f *fakeScheduleUsecase) Status(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error) {
	return f.status(ctx, id)
}

func (f *fakeScheduleUsecase) Result(ctx context.Context, id uuid.UUID) (*usecase.ScheduleResult, error) {
	return f.result(ctx, id)
}

func newTestEngine(uc *fakeScheduleUsecase) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewScheduleHandler(uc, logger)

	r := gin.New()
	r.POST("/api/v1/schedules", h.Create)
	r.GET("/api/v1/schedules/:id", h.Result)
	r.GET("/api/v1/schedules/:id/status", h.Status)
	return r
}

func postSchedule(uc *fakeScheduleUsecase, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/schedules", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	newTestEngine(uc).ServeHTTP(w, req)
	return w
}

var testMonday = time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC)

// ---- Create ----

func TestCreateSchedule_InvalidJSON_Returns400(t *testing.T) {
	w := postSchedule(&fakeScheduleUsecase{}, `{bad json}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateSchedule_MissingGroup_Returns400(t *testing.T) {
	w := postSchedule(&fakeScheduleUsecase{}, `{"period_begin_date":"2026-09-07"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateSchedule_MalformedDate_Returns400(t *testing.T) {
	body := fmt.Sprintf(`{"staff_group_id":%q,"period_begin_date":"07.09.2026"}`, uuid.New())
	w := postSchedule(&fakeScheduleUsecase{}, body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateSchedule_NonMonday_Returns400(t *testing.T) {
	uc := &fakeScheduleUsecase{
		submit: func(_ context.Context, _ uuid.UUID, _ time.Time) (*domain.ScheduleJob, error) {
			return nil, domain.ErrNotMonday
		},
	}
	body := fmt.Sprintf(`{"staff_group_id":%q,"period_begin_date":"2026-09-08"}`, uuid.New())
	w := postSchedule(uc, body)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestCreateSchedule_QueueClosed_Returns503(t *testing.T) {
	uc := &fakeScheduleUsecase{
		submit: func(_ context.Context, _ uuid.UUID, _ time.Time) (*domain.ScheduleJob, error) {
			return nil, fmt.Errorf("enqueue schedule job: %w", scheduler.ErrQueueClosed)
		},
	}
	body := fmt.Sprintf(`{"staff_group_id":%q,"period_begin_date":"2026-09-07"}`, uuid.New())
	w := postSchedule(uc, body)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}

func TestCreateSchedule_Accepted_Returns202(t *testing.T) {
	jobID := uuid.New()
	var gotDate time.Time
	uc := &fakeScheduleUsecase{
		submit: func(_ context.Context, _ uuid.UUID, periodBegin time.Time) (*domain.ScheduleJob, error) {
			gotDate = periodBegin
			return &domain.ScheduleJob{ID: jobID, Status: domain.JobPending}, nil
		},
	}
	body := fmt.Sprintf(`{"staff_group_id":%q,"period_begin_date":"2026-09-07"}`, uuid.New())
	w := postSchedule(uc, body)

	if w.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", w.Code)
	}
	if !gotDate.Equal(testMonday) {
		t.Errorf("usecase saw date %v, want %v", gotDate, testMonday)
	}

	var resp struct {
		ScheduleID uuid.UUID `json:"schedule_id"`
		Status     string    `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ScheduleID != jobID || resp.Status != "PENDING" {
		t.Errorf("response = %+v", resp)
	}
}

// ---- Status ----

func TestScheduleStatus_InvalidID_Returns400(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/not-a-uuid/status", nil)
	newTestEngine(&fakeScheduleUsecase{}).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestScheduleStatus_Unknown_Returns404(t *testing.T) {
	uc := &fakeScheduleUsecase{
		status: func(_ context.Context, _ uuid.UUID) (*domain.ScheduleJob, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+uuid.NewString()+"/status", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestScheduleStatus_RendersDateAndError(t *testing.T) {
	jobID := uuid.New()
	msg := "no active staff members found in the group"
	uc := &fakeScheduleUsecase{
		status: func(_ context.Context, _ uuid.UUID) (*domain.ScheduleJob, error) {
			return &domain.ScheduleJob{
				ID:           jobID,
				StaffGroupID: uuid.New(),
				PeriodBegin:  testMonday,
				Status:       domain.JobFailed,
				ErrorMessage: &msg,
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+jobID.String()+"/status", nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, `"2026-09-07"`) {
		t.Errorf("body %q does not render the civil date", body)
	}
	if !strings.Contains(body, msg) {
		t.Errorf("body %q does not carry the failure message", body)
	}
}

// ---- Result ----

func TestScheduleResult_NotCompleted_Returns400WithStatus(t *testing.T) {
	uc := &fakeScheduleUsecase{
		result: func(_ context.Context, _ uuid.UUID) (*usecase.ScheduleResult, error) {
			return nil, &domain.JobNotCompletedError{Status: domain.JobProcessing}
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+uuid.NewString(), nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if !strings.Contains(w.Body.String(), "PROCESSING") {
		t.Errorf("body %q does not name the current status", w.Body.String())
	}
}

func TestScheduleResult_Unknown_Returns404(t *testing.T) {
	uc := &fakeScheduleUsecase{
		result: func(_ context.Context, _ uuid.UUID) (*usecase.ScheduleResult, error) {
			return nil, domain.ErrJobNotFound
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+uuid.NewString(), nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestScheduleResult_Completed_RendersAssignments(t *testing.T) {
	jobID := uuid.New()
	staffID := uuid.New()
	uc := &fakeScheduleUsecase{
		result: func(_ context.Context, _ uuid.UUID) (*usecase.ScheduleResult, error) {
			return &usecase.ScheduleResult{
				ScheduleID:   jobID,
				StaffGroupID: uuid.New(),
				PeriodBegin:  testMonday,
				Assignments: []domain.ShiftAssignment{
					{StaffID: staffID, Date: testMonday, Shift: domain.ShiftMorning},
					{StaffID: staffID, Date: testMonday.AddDate(0, 0, 1), Shift: domain.ShiftDayOff},
				},
			}, nil
		},
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/schedules/"+jobID.String(), nil)
	newTestEngine(uc).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		ScheduleID  uuid.UUID `json:"schedule_id"`
		Assignments []struct {
			StaffID uuid.UUID `json:"staff_id"`
			Date    string    `json:"date"`
			Shift   string    `json:"shift"`
		} `json:"assignments"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	if resp.ScheduleID != jobID || len(resp.Assignments) != 2 {
		t.Fatalf("response = %+v", resp)
	}
	if resp.Assignments[0].Date != "2026-09-07" || resp.Assignments[0].Shift != "MORNING" {
		t.Errorf("first assignment = %+v", resp.Assignments[0])
	}
	if resp.Assignments[1].Date != "2026-09-08" || resp.Assignments[1].Shift != "DAY_OFF" {
		t.Errorf("second assignment = %+v", resp.Assignments[1])
	}
}
