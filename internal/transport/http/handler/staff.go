package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
	"github.com/rosterd/rosterd/internal/usecase"
)

type StaffHandler struct {
	staffUsecase *usecase.StaffUsecase
	batchUsecase *usecase.BatchUsecase
	logger       *slog.Logger
}

func NewStaffHandler(staffUsecase *usecase.StaffUsecase, batchUsecase *usecase.BatchUsecase, logger *slog.Logger) *StaffHandler {
	return &StaffHandler{
		staffUsecase: staffUsecase,
		batchUsecase: batchUsecase,
		logger:       logger.With("component", "staff_handler"),
	}
}

type createStaffRequest struct {
	Name     string `json:"name"     binding:"required,max=255"`
	Email    string `json:"email"    binding:"required,email"`
	Position string `json:"position" binding:"required,max=255"`
}

type updateStaffRequest struct {
	Name     *string             `json:"name"     binding:"omitempty,max=255"`
	Email    *string             `json:"email"    binding:"omitempty,email"`
	Position *string             `json:"position" binding:"omitempty,max=255"`
	Status   *domain.StaffStatus `json:"status"   binding:"omitempty,oneof=ACTIVE INACTIVE"`
}

type batchStaffRequest struct {
	Items []batchStaffItem `json:"items" binding:"required,min=1,max=1000,dive"`
}

type batchStaffItem struct {
	Name     string   `json:"name"     binding:"required,max=255"`
	Email    string   `json:"email"    binding:"required,email"`
	Position string   `json:"position" binding:"required,max=255"`
	Groups   []string `json:"groups"`
}

func (h *StaffHandler) Create(ctx *gin.Context) {
	var req createStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.staffUsecase.Create(ctx.Request.Context(), req.Name, req.Email, req.Position)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateEmail})
			return
		}
		h.logger.Error("create staff", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusCreated, staff)
}

func (h *StaffHandler) GetByID(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	staff, err := h.staffUsecase.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errStaffNotFound})
			return
		}
		h.logger.Error("get staff", "staff_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)

	staff, total, err := h.staffUsecase.List(ctx.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("list staff", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, listResponse[*domain.Staff]{
		Data:     staff,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *StaffHandler) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req updateStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	staff, err := h.staffUsecase.Update(ctx.Request.Context(), id, repository.UpdateStaffInput{
		Name:     req.Name,
		Email:    req.Email,
		Position: req.Position,
		Status:   req.Status,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStaffNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errStaffNotFound})
		case errors.Is(err, domain.ErrDuplicateEmail):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateEmail})
		default:
			h.logger.Error("update staff", "staff_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, staff)
}

func (h *StaffHandler) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := h.staffUsecase.Delete(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrStaffNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errStaffNotFound})
			return
		}
		h.logger.Error("delete staff", "staff_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}

// BatchImport bulk-creates staff and their group memberships. Items fail
// independently; the response reports a per-item outcome.
func (h *StaffHandler) BatchImport(ctx *gin.Context) {
	var req batchStaffRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]usecase.BatchStaffItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, usecase.BatchStaffItem{
			Name:     item.Name,
			Email:    item.Email,
			Position: item.Position,
			Groups:   item.Groups,
		})
	}

	results := h.batchUsecase.ImportStaff(ctx.Request.Context(), items)
	ctx.JSON(http.StatusOK, gin.H{"results": results})
}
