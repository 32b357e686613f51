package main

import (
	"log"
	"log/slog"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/task-board/internal/config"
	"github.com/yukikurage/task-board/internal/database"
	"github.com/yukikurage/task-board/internal/handlers"
	"github.com/yukikurage/task-board/internal/repository"
	"github.com/yukikurage/task-board/internal/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	log.Println("Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Fall back to the workload heuristic when no OpenAI key is configured
	var advisor services.Advisor = services.WorkloadAdvisor{}
	if cfg.OpenAIAPIKey != "" {
		advisor = services.NewOpenAIAdvisor(cfg.OpenAIAPIKey, cfg.OpenAIModel, "")
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	r := handlers.NewRouter(handlers.Services{
		Tasks:       services.NewTaskService(taskRepo, teamRepo, userRepo),
		Teams:       services.NewTeamService(teamRepo, userRepo),
		Users:       services.NewUserService(userRepo),
		Assignments: services.NewAssignmentService(advisor, userRepo, taskRepo),
	}, logger)

	// Start server
	log.Printf("Server starting on %s", cfg.ServerAddr)
	if err := r.Run(cfg.ServerAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
