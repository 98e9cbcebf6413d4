package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/colegio-app/colegio-api/internal/middleware"
	"github.com/colegio-app/colegio-api/internal/models"
	"github.com/colegio-app/colegio-api/internal/service"
)

// Handlers groups every route handler for registration.
type Handlers struct {
	Auth          *AuthHandler
	Students      *StudentHandler
	Courses       *CourseHandler
	Curricula     *CurriculumHandler
	GradeReports  *GradeReportHandler
	Leaves        *LeaveRequestHandler
	Payments      *PaymentHandler
	Users         *UserHandler
	Notifications *NotificationHandler
	Events        *EventHandler
	Meetings      *MeetingHandler
}

// RegisterRoutes mounts the API surface under the configured prefix.
func RegisterRoutes(r *gin.Engine, prefix string, auth *service.AuthService, h Handlers) {
	api := r.Group(prefix)

	api.POST("/auth/login", h.Auth.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(auth))

	authed.GET("/auth/me", h.Auth.Me)

	admin := middleware.AdminOnly()
	anyRole := middleware.RequireRoles(models.RoleAdmin, models.RoleParent)

	students := authed.Group("/estudiantes", admin)
	{
		students.GET("", h.Students.List)
		students.POST("", h.Students.Create)
		students.POST("/import", h.Students.Import)
		students.POST("/bulk-delete", h.Students.BulkDelete)
		students.GET("/:id", h.Students.Get)
		students.PUT("/:id", h.Students.Update)
		students.DELETE("/:id", h.Students.Delete)
	}

	courses := authed.Group("/cursos")
	{
		courses.GET("", anyRole, h.Courses.List)
		courses.GET("/:id", anyRole, h.Courses.Get)
		courses.GET("/:id/estudiantes", admin, h.Courses.Roster)
		courses.GET("/:id/export", admin, h.Courses.ExportRoster)
		courses.POST("", admin, h.Courses.Create)
		courses.POST("/import", admin, h.Courses.Import)
		courses.PUT("/:id", admin, h.Courses.Update)
		courses.DELETE("/:id", admin, h.Courses.Delete)
	}

	curricula := authed.Group("/mallas", admin)
	{
		curricula.GET("", h.Curricula.List)
		curricula.POST("", h.Curricula.Create)
		curricula.GET("/:id", h.Curricula.Get)
		curricula.PUT("/:id", h.Curricula.Update)
		curricula.DELETE("/:id", h.Curricula.Delete)
	}

	reports := authed.Group("/libretas")
	{
		reports.GET("", anyRole, h.GradeReports.List)
		reports.GET("/:id", anyRole, h.GradeReports.Get)
		reports.POST("", admin, h.GradeReports.Create)
		reports.PUT("/:id", admin, h.GradeReports.Update)
		reports.POST("/:id/publicar", admin, h.GradeReports.Publish)
		reports.DELETE("/:id", admin, h.GradeReports.Delete)
	}

	leaves := authed.Group("/licencias")
	{
		leaves.GET("", anyRole, h.Leaves.List)
		leaves.GET("/:id", anyRole, h.Leaves.Get)
		leaves.POST("", middleware.RequireRoles(models.RoleParent), h.Leaves.Create)
		leaves.PUT("/:id", anyRole, h.Leaves.Update)
		leaves.DELETE("/:id", anyRole, h.Leaves.Delete)
		leaves.POST("/:id/resolver", admin, h.Leaves.Resolve)
		leaves.POST("/:id/comentar", admin, h.Leaves.Comment)
	}

	payments := authed.Group("/pagos")
	{
		payments.GET("", anyRole, h.Payments.List)
		payments.GET("/:id", anyRole, h.Payments.Get)
		payments.POST("", admin, h.Payments.Create)
		payments.PUT("/:id", admin, h.Payments.Update)
		payments.DELETE("/:id", admin, h.Payments.Delete)
		payments.POST("/:id/comprobante", middleware.RequireRoles(models.RoleParent), h.Payments.SubmitProof)
		payments.POST("/:id/resolver", admin, h.Payments.Resolve)
	}

	users := authed.Group("/users")
	{
		users.GET("/me/hijos", middleware.RequireRoles(models.RoleParent), h.Users.MyChildren)
		users.GET("", admin, h.Users.List)
		users.POST("", admin, h.Users.Create)
		users.GET("/:id", admin, h.Users.Get)
		users.PUT("/:id", admin, h.Users.Update)
		users.DELETE("/:id", admin, h.Users.Delete)
		users.PUT("/:id/hijos", admin, h.Users.SetChildren)
	}

	notifications := authed.Group("/notificaciones")
	{
		notifications.GET("", h.Notifications.List)
		notifications.GET("/unread-count", h.Notifications.UnreadCount)
		notifications.POST("/leer-todas", h.Notifications.MarkAllRead)
		notifications.POST("/:id/leer", h.Notifications.MarkRead)
	}

	events := authed.Group("/eventos")
	{
		events.GET("", anyRole, h.Events.List)
		events.GET("/:id", anyRole, h.Events.Get)
		events.POST("", admin, h.Events.Create)
		events.PUT("/:id", admin, h.Events.Update)
		events.DELETE("/:id", admin, h.Events.Delete)
	}

	meetings := authed.Group("/reuniones")
	{
		meetings.GET("", anyRole, h.Meetings.List)
		meetings.GET("/:id", anyRole, h.Meetings.Get)
		meetings.POST("", admin, h.Meetings.Create)
		meetings.PUT("/:id", admin, h.Meetings.Update)
		meetings.DELETE("/:id", admin, h.Meetings.Delete)
	}
}
