package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/unimag/internal/app/controllers"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/middleware"
	"github.com/yigit/unimag/internal/pkg/websocket"
)

// Handlers bundles everything the router mounts
type Handlers struct {
	Auth       *controllers.AuthController
	User       *controllers.UserController
	Faculty    *controllers.FacultyController
	Submission *controllers.SubmissionController
	Export     *controllers.ExportController
	Stats      *controllers.StatsController
	Activity   *controllers.ActivityController
	Settings   *controllers.SettingsController
	Health     *controllers.HealthController
	Feed       *websocket.Handler
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupSwagger(router)

	api := router.Group("/api")

	// --- Public routes ---
	api.GET("/health", h.Health.Health)
	api.GET("/db-test", h.Health.DBTest)
	api.GET("/faculties", h.Faculty.GetAllFaculties)
	api.GET("/faculties/:id", h.Faculty.GetFacultyByID)

	auth := api.Group("/auth")
	{
		auth.POST("/register", h.Auth.Register)
		auth.POST("/login", h.Auth.Login)
	}

	// Public routes never attach a viewer, so the anonymous branch of the download policy applies.
	public := api.Group("/public")
	{
		public.GET("/academic-settings", h.Settings.AcademicSettings)
		public.GET("/submissions", h.Submission.List)
		public.GET("/submissions/:id/download", h.Submission.Download)
	}

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	users := authenticated.Group("/users")
	{
		users.GET("/me", h.User.Me)
		users.PATCH("/profile", h.User.UpdateProfile)
		users.GET("/settings/:kind", h.Settings.UserSettings)
		users.PUT("/settings/:kind", h.Settings.UpdateUserSettings)
	}

	submissions := authenticated.Group("/submissions")
	{
		submissions.POST("", h.Submission.Create)
		submissions.GET("", h.Submission.List)
		submissions.GET("/:id/download", h.Submission.Download)
	}

	setupAdminRoutes(authenticated, h, authMiddleware)
	setupManagerRoutes(authenticated, h, authMiddleware)
	setupCoordinatorRoutes(authenticated, h, authMiddleware)
}

func setupAdminRoutes(rg *gin.RouterGroup, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	admin := rg.Group("/admin")
	admin.Use(authMiddleware.RolesRequired(models.RoleAdmin))

	admin.GET("/dashboard/stats", h.Stats.AdminDashboard)
	admin.GET("/faculties/stats", h.Stats.FacultyStats)
	admin.GET("/activity/recent", h.Activity.Recent)
	admin.POST("/activity/log", h.Activity.Log)
	admin.GET("/activity/stream", h.Feed.Subscribe(websocket.ChannelAdmin))

	analytics := admin.Group("/analytics")
	{
		analytics.GET("/page-visits", h.Stats.PageVisits)
		analytics.GET("/browser-stats", h.Stats.BrowserStats)
		analytics.GET("/user-activity", h.Stats.UserActivity)
	}

	users := admin.Group("/users")
	{
		users.GET("", h.User.ListUsers)
		users.POST("", h.User.CreateUser)
		users.GET("/coordinators", h.User.ListCoordinators)
		users.PUT("/:id", h.User.UpdateUser)
		users.DELETE("/:id", h.User.DeleteUser)
	}

	submissions := admin.Group("/submissions")
	{
		submissions.GET("", h.Submission.List)
		submissions.GET("/:id", h.Submission.Get)
		submissions.GET("/:id/comments", h.Submission.Comments)
		submissions.POST("/:id/comments", h.Submission.AddComment)
		submissions.PATCH("/:id/status", h.Submission.UpdateStatus)
		submissions.GET("/:id/download", h.Submission.Download)
	}

	admin.GET("/roles", h.Faculty.GetRoles)
	admin.GET("/settings/academic", h.Settings.AcademicSettings)
	admin.PUT("/settings/academic", h.Settings.UpdateAcademicSettings)
}

func setupManagerRoutes(rg *gin.RouterGroup, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	manager := rg.Group("/manager")
	manager.Use(authMiddleware.RolesRequired(models.RoleManager))

	manager.GET("/dashboard/stats", h.Stats.ManagerDashboard)
	manager.GET("/faculty-stats", h.Stats.FacultyStats)
	manager.GET("/activity/recent", h.Activity.Recent)
	manager.POST("/activity/log", h.Activity.LogWithDetails)
	manager.GET("/activity/stream", h.Feed.Subscribe(websocket.ChannelManager))
	manager.GET("/students-by-faculty", h.Stats.StudentsByFaculty)
	manager.GET("/export-data", h.Stats.ExportData)

	submissions := manager.Group("/submissions")
	{
		submissions.GET("", h.Submission.List)
		submissions.GET("/:id/download", h.Submission.Download)
		submissions.POST("/download-zip", h.Export.DownloadZip)
		submissions.GET("/download-zip", h.Export.DownloadZip)
	}

	stats := manager.Group("/stats")
	{
		stats.GET("/overview", h.Stats.ManagerDashboard)
		stats.GET("/faculties", h.Stats.FacultyStats)
		stats.GET("/contributors", h.Stats.TopContributors)
		stats.GET("/trends", h.Stats.Trends)
		stats.GET("/document-types", h.Stats.DocumentTypes)
	}

	manager.GET("/settings/:kind", h.Settings.UserSettings)
	manager.PUT("/settings/:kind", h.Settings.UpdateUserSettings)
}

func setupCoordinatorRoutes(rg *gin.RouterGroup, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	coordinator := rg.Group("/coordinator")
	coordinator.Use(authMiddleware.RolesRequired(models.RoleCoordinator))

	coordinator.GET("/dashboard/stats", h.Stats.CoordinatorDashboard)
	coordinator.GET("/students", h.User.FacultyStudents)

	submissions := coordinator.Group("/submissions")
	{
		submissions.GET("", h.Submission.List)
		submissions.GET("/:id", h.Submission.Get)
		submissions.GET("/:id/comments", h.Submission.Comments)
		submissions.POST("/:id/comments", h.Submission.AddComment)
		submissions.PATCH("/:id/status", h.Submission.UpdateStatus)
		submissions.GET("/:id/download", h.Submission.Download)
	}
}
