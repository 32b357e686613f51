package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-board/internal/middleware"
	"github.com/yukikurage/task-board/internal/services"
)

// Services bundles what the router serves.
type Services struct {
	Tasks       *services.TaskService
	Teams       *services.TeamService
	Users       *services.UserService
	Assignments *services.AssignmentService
}

// NewRouter wires every route of the store API.
func NewRouter(svc Services, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	taskHandler := NewTaskHandler(svc.Tasks)
	teamHandler := NewTeamHandler(svc.Teams)
	userHandler := NewUserHandler(svc.Users)
	advisorHandler := NewAdvisorHandler(svc.Assignments)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Task board store is running",
		})
	})

	api := r.Group("/api")
	{
		tasks := api.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTask(svc.Tasks), taskHandler.GetTask)
			tasks.PATCH("/:id", middleware.RequireTask(svc.Tasks), taskHandler.UpdateTask)
			tasks.PUT("/:id/status", middleware.RequireTask(svc.Tasks), taskHandler.UpdateTaskStatus)
			tasks.DELETE("/:id", middleware.RequireTask(svc.Tasks), taskHandler.DeleteTask)
		}

		teams := api.Group("/teams")
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.GET("/:id", middleware.RequireTeam(svc.Teams), teamHandler.GetTeam)
			teams.POST("/:id/members", middleware.RequireTeam(svc.Teams), teamHandler.AddMember)
			teams.PUT("/:id/members/:user_id", middleware.RequireTeam(svc.Teams), teamHandler.ChangeMemberRole)
			teams.DELETE("/:id/members/:user_id", middleware.RequireTeam(svc.Teams), teamHandler.RemoveMember)
		}

		users := api.Group("/users")
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
		}

		api.POST("/advisor/suggest", advisorHandler.Suggest)
	}

	return r
}
