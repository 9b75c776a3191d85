package httptransport

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	sloggin "github.com/samber/slog-gin"

	"github.com/rosterd/rosterd/internal/transport/http/handler"
	"github.com/rosterd/rosterd/internal/transport/http/middleware"
)

// NewDataServiceRouter wires the staff, group and membership API.
func NewDataServiceRouter(
	logger *slog.Logger,
	groupHandler *handler.GroupHandler,
	staffHandler *handler.StaffHandler,
	membershipHandler *handler.MembershipHandler,
) *gin.Engine {
	r := newEngine(logger)

	v1 := r.Group("/api/v1")

	groups := v1.Group("/groups")
	groups.POST("", groupHandler.Create)
	groups.GET("", groupHandler.List)
	groups.GET("/:id", groupHandler.GetByID)
	groups.PATCH("/:id", groupHandler.Update)
	groups.DELETE("/:id", groupHandler.Delete)
	groups.GET("/:id/members", groupHandler.Members)
	groups.GET("/:id/resolved-members", groupHandler.ResolvedMembers)

	staff := v1.Group("/staff")
	staff.POST("", staffHandler.Create)
	staff.GET("", staffHandler.List)
	staff.GET("/:id", staffHandler.GetByID)
	staff.PATCH("/:id", staffHandler.Update)
	staff.DELETE("/:id", staffHandler.Delete)

	memberships := v1.Group("/memberships")
	memberships.POST("", membershipHandler.Add)
	memberships.DELETE("/:id", membershipHandler.Remove)

	v1.POST("/batch/staff", staffHandler.BatchImport)

	return r
}

// NewSchedulingRouter wires the async schedule API.
func NewSchedulingRouter(logger *slog.Logger, scheduleHandler *handler.ScheduleHandler) *gin.Engine {
	r := newEngine(logger)

	v1 := r.Group("/api/v1")

	schedules := v1.Group("/schedules")
	schedules.POST("", scheduleHandler.Create)
	schedules.GET("/:id", scheduleHandler.Result)
	schedules.GET("/:id/status", scheduleHandler.Status)

	return r
}

func newEngine(logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(sloggin.New(logger))
	r.Use(middleware.Metrics())
	return r
}
