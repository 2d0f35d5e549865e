package routes

import (
	"database/sql"

	"github.com/gin-gonic/gin"

	"quiz_app_backend/handlers"
	"quiz_app_backend/logger"
	"quiz_app_backend/metrics"
	"quiz_app_backend/middleware"
	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
	"quiz_app_backend/repository"
)

// Deps are the shared services the routes are built from.
type Deps struct {
	DB        *sql.DB
	JWTSecret []byte
	Registry  *quiz.Registry
	Logger    *logger.Logger
	Metrics   *metrics.Metrics
}

// SetupRoutes configures all the routes for the application
func SetupRoutes(r *gin.Engine, d Deps) {
	// Initialize handlers
	tokenService := middleware.NewTokenService(d.DB, d.JWTSecret)
	authHandler := handlers.NewAuthHandler(d.DB, tokenService, d.Registry, d.Logger)
	userHandler := handlers.NewUserHandler(d.DB, d.Registry, d.Logger)
	quizHandler := handlers.NewQuizHandler(d.Registry, d.Logger)
	progressHandler := handlers.NewProgressHandler(d.Registry, d.Logger)
	studentHandler := handlers.NewStudentHandler(repository.NewStudentRepository(d.DB), d.Logger)
	healthHandler := handlers.NewHealthHandler(d.DB, d.Registry.Bank())

	// Public routes
	r.GET("/health", healthHandler.HealthCheck)
	if d.Metrics != nil {
		r.GET("/metrics", d.Metrics.Handler())
	}
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/refresh", authHandler.RefreshToken)
	r.GET("/levels", middleware.OptionalAuth(d.JWTSecret), quizHandler.ListLevels)

	// Protected routes
	protected := r.Group("/")
	protected.Use(middleware.AuthMiddleware(d.DB, d.JWTSecret, d.Logger))
	{
		protected.POST("/logout", authHandler.Logout)
		protected.GET("/userinfo", userHandler.GetUserInfo)

		// Progress routes
		protected.GET("/progress", progressHandler.GetProgress)
		protected.GET("/progress/:level", progressHandler.GetLevelResult)
	}

	// Quiz routes
	student := protected.Group("/quiz")
	student.Use(middleware.RequireRole(models.RoleStudent))
	{
		student.GET("/levels", quizHandler.MyLevels)
		student.GET("", quizHandler.GetSession)
		student.POST("/start", quizHandler.Start)
		student.POST("/answer", quizHandler.Answer)
		student.POST("/next", quizHandler.Next)
		student.POST("/previous", quizHandler.Previous)
		student.POST("/submit", quizHandler.Submit)
		student.DELETE("", quizHandler.Reset)
	}

	// Teacher dashboard routes
	admin := protected.Group("/admin")
	admin.Use(middleware.RequireRole(models.RoleTeacher))
	{
		admin.GET("/students", studentHandler.ListStudents)
		admin.GET("/summary", studentHandler.Summary)
	}
}
