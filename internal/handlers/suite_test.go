package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-board/internal/database"
	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/repository"
	"github.com/yukikurage/task-board/internal/services"
)

// apiSuite serves the full router over an in-memory SQLite database
type apiSuite struct {
	suite.Suite
	db     *gorm.DB
	router *gin.Engine
}

// SetupTest runs before each test
func (s *apiSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	s.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	s.Require().NoError(err)
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	// Run migrations
	s.Require().NoError(database.Migrate(s.db))

	taskRepo := repository.NewTaskRepository(s.db)
	teamRepo := repository.NewTeamRepository(s.db)
	userRepo := repository.NewUserRepository(s.db)

	gin.SetMode(gin.TestMode)
	s.router = NewRouter(Services{
		Tasks:       services.NewTaskService(taskRepo, teamRepo, userRepo),
		Teams:       services.NewTeamService(teamRepo, userRepo),
		Users:       services.NewUserService(userRepo),
		Assignments: services.NewAssignmentService(services.WorkloadAdvisor{}, userRepo, taskRepo),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// TearDownTest runs after each test
func (s *apiSuite) TearDownTest() {
	sqlDB, err := s.db.DB()
	s.Require().NoError(err)
	sqlDB.Close()
}

// do sends a JSON request through the router
func (s *apiSuite) do(method, url string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			b, err := json.Marshal(body)
			s.Require().NoError(err)
			raw = string(b)
		}
		reader = bytes.NewReader([]byte(raw))
	}

	req := httptest.NewRequest(method, url, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *apiSuite) decode(w *httptest.ResponseRecorder, out any) {
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func (s *apiSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	s.decode(w, &body)
	return body.Code
}

// Helper functions to create test data
func (s *apiSuite) createUser(name string) *models.User {
	user := &models.User{Name: name, Email: name + "@example.com"}
	s.Require().NoError(s.db.Create(user).Error)
	return user
}

func (s *apiSuite) createTeam(name string, members ...models.TeamMember) *models.Team {
	team := &models.Team{Name: name}
	s.Require().NoError(s.db.Create(team).Error)
	for i := range members {
		members[i].TeamID = team.ID
		members[i].Position = i
		s.Require().NoError(s.db.Create(&members[i]).Error)
	}
	return team
}

func (s *apiSuite) createTask(title string, teamID string) *models.Task {
	task := &models.Task{
		Title:    title,
		Status:   models.TaskStatusTodo,
		WorkType: models.WorkTypeFeature,
		Priority: models.PriorityMedium,
		TeamID:   teamID,
	}
	s.Require().NoError(s.db.Create(task).Error)
	return task
}

func (s *apiSuite) assertStatus(w *httptest.ResponseRecorder, code int) {
	s.Require().Equal(code, w.Code, w.Body.String())
}

