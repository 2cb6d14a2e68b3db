package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Karama2000/kara-app-sub001/internal/middleware"
	"github.com/Karama2000/kara-app-sub001/internal/models"
)

// Handlers groups every HTTP handler of the gateway.
type Handlers struct {
	Session      *SessionHandler
	Workspace    *WorkspaceHandler
	User         *UserHandler
	Class        *ClassHandler
	Curriculum   *CurriculumHandler
	Notification *NotificationHandler
	Parent       *ParentHandler
	Dashboard    *DashboardHandler
	Audit        *AuditHandler
}

// Guards are the middlewares the routes are wrapped with.
type Guards struct {
	// Session resolves the caller's session and rejects anonymous requests.
	Session gin.HandlerFunc
	// Audit journals a successful mutation.
	Audit func(action, resource string) gin.HandlerFunc
}

// RegisterRoutes mounts the API routes on r.
func RegisterRoutes(r gin.IRouter, h Handlers, g Guards) {
	audit := g.Audit
	if audit == nil {
		audit = func(string, string) gin.HandlerFunc { return func(c *gin.Context) { c.Next() } }
	}
	admin := middleware.RequireRoles(models.RoleAdmin)
	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	parent := middleware.RequireRoles(models.RoleParent)

	r.POST("/session", audit(models.AuditActionLogin, "session"), h.Session.Create)
	r.DELETE("/session", h.Session.Delete)

	authed := r.Group("")
	authed.Use(g.Session)
	{
		authed.GET("/session", h.Session.Get)
		authed.PATCH("/session/preferences", h.Session.Preferences)

		authed.GET("/cascades/:name", h.Workspace.Cascade)
		authed.PUT("/cascades/:name/levels/:level", h.Workspace.Select)

		authed.GET("/tables/:name", h.Workspace.Table)
		authed.PUT("/tables/:name/filters", h.Workspace.Filter)
		authed.POST("/tables/:name/refresh", h.Workspace.Refresh)
		authed.POST("/tables/:name/rows/:id/delete-request", h.Workspace.RequestDelete)
		authed.DELETE("/tables/:name/rows/:id", audit(models.AuditActionRowDelete, "tables"), h.Workspace.ConfirmDelete)

		users := authed.Group("/users", admin)
		users.GET("/:id", h.User.Get)
		users.POST("", audit(models.AuditActionUserCreate, "users"), h.User.Create)
		users.PUT("/:id", audit(models.AuditActionUserUpdate, "users"), h.User.Update)
		users.PUT("/:id/approve", audit(models.AuditActionUserApprove, "users"), h.User.Approve)
		users.PUT("/:id/reject", audit(models.AuditActionUserReject, "users"), h.User.Reject)

		classes := authed.Group("/classes", staff)
		classes.GET("/:id", h.Class.Get)
		classes.PUT("/:id", admin, audit(models.AuditActionClassUpdate, "classes"), h.Class.Update)
		classes.GET("/:id/students/export", h.Class.Export)
		classes.POST("/students/:id/pass", audit(models.AuditActionStudentPass, "students"), h.Class.Pass)

		lessons := authed.Group("/curriculum", staff)
		lessons.GET("/editor", h.Curriculum.Editor)
		lessons.PUT("/editor/program", h.Curriculum.SelectProgram)
		lessons.POST("/lessons", audit(models.AuditActionLessonSave, "lessons"), h.Curriculum.CreateLesson)
		lessons.PUT("/lessons/:id", audit(models.AuditActionLessonSave, "lessons"), h.Curriculum.UpdateLesson)
		lessons.DELETE("/lessons/:id", audit(models.AuditActionLessonDelete, "lessons"), h.Curriculum.DeleteLesson)
		lessons.POST("/lessons/:id/tests", audit(models.AuditActionTestSave, "tests"), h.Curriculum.CreateTest)
		lessons.PUT("/lessons/:id/tests/:testId", audit(models.AuditActionTestSave, "tests"), h.Curriculum.UpdateTest)
		lessons.DELETE("/lessons/:id/tests/:testId", audit(models.AuditActionTestDelete, "tests"), h.Curriculum.DeleteTest)

		authed.GET("/notifications", h.Notification.List)
		authed.PUT("/notifications/read-all", h.Notification.MarkAllRead)
		authed.PUT("/notifications/:id/read", h.Notification.MarkRead)
		authed.DELETE("/notifications/:id", h.Notification.Delete)
		authed.DELETE("/notifications", h.Notification.DeleteAll)

		authed.GET("/messages/unread-count", h.Notification.UnreadMessages)
		authed.GET("/messages/received", h.Notification.ReceivedMessages)

		family := authed.Group("/parent", parent)
		family.GET("/children", h.Parent.Children)
		family.GET("/progress", h.Parent.Progress)
		family.DELETE("/progress", h.Parent.ClearProgress)

		authed.GET("/dashboard", h.Dashboard.Get)
		authed.GET("/audit", admin, h.Audit.List)
	}
}
