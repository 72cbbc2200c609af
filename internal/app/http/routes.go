package routes

import (
	adminapi "fieldops-app/internal/api/admin"
	authapi "fieldops-app/internal/api/auth"
	"fieldops-app/internal/api/functions"
	havsapi "fieldops-app/internal/api/havs"
	"fieldops-app/internal/api/users"
	"fieldops-app/internal/app/http/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ✅ Sanitize JSON input on every group that accepts bodies
	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())

	public.POST("/login", authapi.Login)
	public.GET("/auth/google", authapi.GoogleStart)
	public.GET("/auth/google/callback", authapi.GoogleCallback)
	public.POST("/functions/bootstrap-admin", functions.BootstrapAdmin)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware())
	auth.GET("/me", users.GetCurrentUser)
	auth.POST("/change-password", authapi.ChangePassword)

	// Field staff: every HAVS route is scoped to the caller's employee record
	field := auth.Group("/")
	field.Use(middleware.RequireEmployee(), middleware.SanitizeAndCleanInputMiddleware())

	field.GET("/havs/week-ending", havsapi.GetWeekEnding)
	field.GET("/havs/equipment", havsapi.ListEquipment)
	field.GET("/havs/employees", havsapi.ListAvailableOperatives)

	field.GET("/havs/weeks", havsapi.ListWeeks)
	field.GET("/havs/weeks/:id", havsapi.GetWeek)
	field.GET("/havs/weeks/:id/revisions/:number", havsapi.GetRevision)
	field.GET("/havs/weeks/:id/export.csv", havsapi.ExportWeek)

	field.PUT("/havs/weeks/:id/entries", havsapi.SaveEntries)
	field.PUT("/havs/weeks/:id/notes", havsapi.UpdateNotes)
	field.POST("/havs/weeks/:id/members", havsapi.AddMember)
	field.DELETE("/havs/weeks/:id/members/:memberId", havsapi.RemoveMember)
	field.POST("/havs/weeks/:id/submit", havsapi.SubmitWeek)

	field.POST("/functions/start-havs-week", functions.StartHavsWeek)

	// Admin routes
	privileged := field.Group("/functions")
	privileged.Use(middleware.RequireRole("admin"))
	privileged.POST("/add-employee", functions.AddEmployee)
	privileged.POST("/delete-user", functions.DeleteUser)

	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.RequireRole("admin"), middleware.SanitizeAndCleanInputMiddleware())
	admin.GET("/havs/overview", adminapi.WeeklyOverview)
	admin.GET("/havs/compliance", adminapi.WeeklyCompliance)
	admin.GET("/havs/weeks/:id", adminapi.GetWeek)
	admin.GET("/havs/weeks/:id/export.csv", adminapi.ExportWeek)
	admin.GET("/employees", adminapi.ListEmployees)
	admin.PUT("/employees/:id", adminapi.UpdateEmployee)
	admin.GET("/vehicles", adminapi.ListVehicles)
	admin.POST("/vehicles", adminapi.CreateVehicle)
}
