package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/rosterd/rosterd/internal/domain"
	"github.com/rosterd/rosterd/internal/repository"
	"github.com/rosterd/rosterd/internal/usecase"
)

type GroupHandler struct {
	groupUsecase      *usecase.GroupUsecase
	membershipUsecase *usecase.MembershipUsecase
	logger            *slog.Logger
}

func NewGroupHandler(groupUsecase *usecase.GroupUsecase, membershipUsecase *usecase.MembershipUsecase, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{
		groupUsecase:      groupUsecase,
		membershipUsecase: membershipUsecase,
		logger:            logger.With("component", "group_handler"),
	}
}

type createGroupRequest struct {
	Name     string     `json:"name" binding:"required,max=255"`
	ParentID *uuid.UUID `json:"parent_id"`
}

type updateGroupRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=255"`
	ParentID    *uuid.UUID `json:"parent_id"`
	UnsetParent bool       `json:"unset_parent"`
}

type listResponse[T any] struct {
	Data     []T   `json:"data"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
}

type resolvedGroupResponse struct {
	GroupID   uuid.UUID      `json:"group_id"`
	GroupName string         `json:"group_name"`
	Members   []domain.Staff `json:"members"`
}

type resolvedMembersResponse struct {
	Data  []resolvedGroupResponse `json:"data"`
	Total int                     `json:"total"`
}

func (h *GroupHandler) Create(ctx *gin.Context) {
	var req createGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupUsecase.Create(ctx.Request.Context(), req.Name, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errGroupNotFound})
		case errors.Is(err, domain.ErrDuplicateGroupName):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateName})
		default:
			h.logger.Error("create group", "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusCreated, group)
}

func (h *GroupHandler) GetByID(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	group, err := h.groupUsecase.Get(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errGroupNotFound})
			return
		}
		h.logger.Error("get group", "group_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (h *GroupHandler) List(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx)

	groups, total, err := h.groupUsecase.List(ctx.Request.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("list groups", "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, listResponse[*domain.Group]{
		Data:     groups,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	})
}

func (h *GroupHandler) Update(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	var req updateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupUsecase.Update(ctx.Request.Context(), id, repository.UpdateGroupInput{
		Name:        req.Name,
		ParentID:    req.ParentID,
		UnsetParent: req.UnsetParent,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errGroupNotFound})
		case errors.Is(err, domain.ErrParentConflict):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errParentConflict})
		case errors.Is(err, domain.ErrGroupCycle):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errGroupCycle})
		case errors.Is(err, domain.ErrDuplicateGroupName):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": errDuplicateName})
		default:
			h.logger.Error("update group", "group_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.JSON(http.StatusOK, group)
}

func (h *GroupHandler) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := h.groupUsecase.Delete(ctx.Request.Context(), id); err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": errGroupNotFound})
		case errors.Is(err, domain.ErrGroupHasChildren):
			ctx.JSON(http.StatusConflict, gin.H{"error": errGroupHasChildren})
		default:
			h.logger.Error("delete group", "group_id", id, "error", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		}
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *GroupHandler) ResolvedMembers(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	result, err := h.groupUsecase.ResolvedMembers(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errGroupNotFound})
			return
		}
		h.logger.Error("resolve members", "group_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	resp := resolvedMembersResponse{
		Data:  make([]resolvedGroupResponse, 0, len(result.Groups)),
		Total: result.UniqueStaff,
	}
	for _, g := range result.Groups {
		resp.Data = append(resp.Data, resolvedGroupResponse{
			GroupID:   g.Group.ID,
			GroupName: g.Group.Name,
			Members:   g.Members,
		})
	}
	ctx.JSON(http.StatusOK, resp)
}

// Members lists the group's direct active members without descending into
// child groups.
func (h *GroupHandler) Members(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	members, err := h.membershipUsecase.GroupMembers(ctx.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrGroupNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": errGroupNotFound})
			return
		}
		h.logger.Error("list group members", "group_id", id, "error", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": errInternalServer})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": members})
}

func parseID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": errInvalidID})
		return uuid.Nil, false
	}
	return id, true
}

func parsePagination(ctx *gin.Context) (page, pageSize int) {
	page, _ = strconv.Atoi(ctx.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(ctx.DefaultQuery("page_size", "20"))
	return page, pageSize
}
