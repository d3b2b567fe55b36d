package api

import (
	"github.com/gin-gonic/gin"

	"github.com/eskil/fileforge/internal/api/handler"
	"github.com/eskil/fileforge/internal/api/middleware"
	"github.com/eskil/fileforge/internal/convert"
	"github.com/eskil/fileforge/internal/repository"
	"github.com/eskil/fileforge/internal/service"
)

// SetupRouter configures the Gin router with all routes.
func SetupRouter(
	jobService *service.JobService,
	sweeper *service.RetentionSweeper,
	registry *convert.Registry,
	users *repository.UserRepository,
	mode string,
	cors middleware.CORSConfig,
) *gin.Engine {
	switch mode {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cors))

	healthHandler := handler.NewHealthHandler()
	jobHandler := handler.NewJobHandler(jobService)
	converterHandler := handler.NewConverterHandler(registry)
	adminHandler := handler.NewAdminHandler(sweeper)
	userHandler := handler.NewUserHandler(users)

	r.GET("/health", healthHandler.Health)

	v1 := r.Group("/api/v1")
	{
		// Jobs
		v1.POST("/jobs", jobHandler.CreateJob)
		v1.GET("/jobs", jobHandler.ListJobs)
		v1.POST("/jobs/:id/convert", jobHandler.StartConversion)
		v1.GET("/jobs/:id/progress", jobHandler.Progress)

		// Users
		v1.POST("/users", userHandler.Register)
		v1.GET("/users", userHandler.Lookup)

		// Registry introspection
		v1.GET("/converters", converterHandler.ListTargets)
		v1.GET("/converters/:name/inputs", converterHandler.ListInputs)

		// Operations
		v1.POST("/admin/sweep", adminHandler.Sweep)
	}

	return r
}
