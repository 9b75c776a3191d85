package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/scheduler"
	"github.com/rosterd/rosterd/internal/usecase"
)

// scheduleUsecaser is the slice of ScheduleUsecase the handler needs,
// kept as an interface so tests can fake it.
type scheduleUsecaser interface {
	Submit(ctx context.Context, groupID uuid.UUID, periodBegin time.Time) (*domain.ScheduleJob, error)
	Status(ctx context.Context, id uuid.UUID) (*domain.ScheduleJob, error)
	Result(ctx context.Context, id uuid.UUID) (*usecase.ScheduleResult, error)
}

type ScheduleHandler struct {
	scheduleUsecase scheduleUsecaser
	logger          *slog.Logger
}

func NewScheduleHandler(scheduleUsecase scheduleUsecaser, logger *slog.Logger) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleUsecase: scheduleUsecase,
		logger:          logger.With("component", "schedule_handler"),
	}
}

type createScheduleRequest struct {
	StaffGroupID    uuid.UUID `json:"staff_group_id"    binding:"required"`
	PeriodBeginDate string    `json:"period_begin_date" binding:"required"`
}

type createScheduleResponse struct {
	ScheduleID uuid.UUID        `json:"schedule_id"`
	Status     domain.JobStatus `json:"status"`
}

type scheduleStatusResponse struct {
	ScheduleID      uuid.UUID        `json:"schedule_id"`
	StaffGroupID    uuid.UUID        `json:"staff_group_id"`
	PeriodBeginDate string           `json:"period_begin_date"`
	Status          domain.JobStatus `json:"status"`
	ErrorMessage    *string          `json:"error_message,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

type assignmentResponse struct {
	StaffID uuid.UUID    `json:"staff_id"`
	Date    string       `json:"date"`
	Shift   domain.Shift `json:"shift"`
}

type scheduleResultResponse struct {
	ScheduleID      uuid.UUID            `json:"schedule_id"`
	StaffGroupID    uuid.UUID            `json:"staff_group_id"`
	PeriodBeginDate string               `json:"period_begin_date"`
	Assignments     []assignmentResponse `json:"assignments"`
}

// Create accepts a schedule request and returns 202: generation happens
// asynchronously and the caller polls the status endpoint.
func (h *ScheduleHandler) Create(ctx *gin.Context) {
	var req createScheduleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	periodBegin, err := domain.ParseDate(req.PeriodBeginDate)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidDate})
		return
	}

	job, err := h.scheduleUsecase.Submit(ctx.Request.Context(), req.StaffGroupID, periodBegin)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotMonday):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errPeriodNotMonday})
		case errors.Is(err, scheduler.ErrQueueClosed):
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": errQueueUnavailable})
		default:
			h.logger.Error("submit schedule", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusAccepted, createScheduleResponse{
		ScheduleID: job.ID,
		Status:     job.Status,
	})
}

func (h *ScheduleHandler) Status(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	job, err := h.scheduleUsecase.Status(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errScheduleNotFound})
			return
		}
		h.logger.Error("get schedule status", "schedule_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, scheduleStatusResponse{
		ScheduleID:      job.ID,
		StaffGroupID:    job.StaffGroupID,
		PeriodBeginDate: domain.FormatDate(job.PeriodBegin),
		Status:          job.Status,
		ErrorMessage:    job.ErrorMessage,
		CreatedAt:       job.CreatedAt,
		UpdatedAt:       job.UpdatedAt,
		CompletedAt:     job.CompletedAt,
	})
}

func (h *ScheduleHandler) Result(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, err := h.scheduleUsecase.Result(ctx.Request.Context(), id)
	if err != nil {
		var notCompleted *domain.JobNotCompletedError
		switch {
		case errors.Is(err, domain.ErrJobNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errScheduleNotFound})
		case errors.As(err, &notCompleted):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": notCompleted.Error()})
		default:
			h.logger.Error("get schedule result", "schedule_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	assignments := make([]assignmentResponse, 0, len(result.Assignments))
	for _, a := range result.Assignments {
		assignments = append(assignments, assignmentResponse{
			StaffID: a.StaffID,
			Date:    domain.FormatDate(a.Date),
			Shift:   a.Shift,
		})
	}
	ctx.JSON(http.StatusOK, scheduleResultResponse{
		ScheduleID:      result.ScheduleID,
		StaffGroupID:    result.StaffGroupID,
		PeriodBeginDate: domain.FormatDate(result.PeriodBegin),
		Assignments:     assignments,
	})
}
