package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/usecase"
)

type MembershipHandler struct {
	membershipUsecase *usecase.MembershipUsecase
	logger            *slog.Logger
}

func NewMembershipHandler(membershipUsecase *usecase.MembershipUsecase, logger *slog.Logger) *MembershipHandler {
	return &MembershipHandler{
		membershipUsecase: membershipUsecase,
		logger:            logger.With("component", "membership_handler"),
	}
}

type addMembershipRequest struct {
	StaffID uuid.UUID `json:"staff_id" binding:"required"`
	GroupID uuid.UUID `json:"group_id" binding:"required"`
}

func (h *MembershipHandler) Add(ctx *gin.Context) {
	var req addMembershipRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	membership, err := h.membershipUsecase.Add(ctx.Request.Context(), req.StaffID, req.GroupID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrStaffNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errStaffNotFound})
		case errors.Is(err, domain.ErrGroupNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errGroupNotFound})
		default:
			h.logger.Error("add membership", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusCreated, membership)
}

func (h *MembershipHandler) Remove(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := h.membershipUsecase.Remove(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrMembershipNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errMemberNotFound})
			return
		}
		h.logger.Error("remove membership", "membership_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.Status(http.StatusNoContent)
}
