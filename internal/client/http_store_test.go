package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/database"
	"github.com/yukikurage/task-board/internal/handlers"
	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/repository"
	"github.com/yukikurage/task-board/internal/services"
)

// newServer starts the store service over an in-memory SQLite database.
func newServer(t *testing.T) (*httptest.Server, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	taskRepo := repository.NewTaskRepository(db)
	teamRepo := repository.NewTeamRepository(db)
	userRepo := repository.NewUserRepository(db)

	gin.SetMode(gin.TestMode)
	router := handlers.NewRouter(handlers.Services{
		Tasks:       services.NewTaskService(taskRepo, teamRepo, userRepo),
		Teams:       services.NewTeamService(teamRepo, userRepo),
		Users:       services.NewUserService(userRepo),
		Assignments: services.NewAssignmentService(services.WorkloadAdvisor{}, userRepo, taskRepo),
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))

	srv := httptest.NewServer(router)
	t.Cleanup(func() {
		srv.Close()
		sqlDB.Close()
	})
	return srv, db
}

func seedTeam(t *testing.T, db *gorm.DB) *models.Team {
	t.Helper()
	team := &models.Team{Name: "Platform"}
	require.NoError(t, db.Create(team).Error)
	return team
}

func TestHTTPStore_RoundTrip(t *testing.T) {
	srv, db := newServer(t)
	team := seedTeam(t, db)
	user := &models.User{Name: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(user).Error)

	store := NewHTTPStore(srv.URL + "/")
	ctx := context.Background()
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	created, err := store.Create(ctx, models.Task{
		Title:      "Write docs",
		Status:     models.TaskStatusTodo,
		WorkType:   models.WorkTypeChore,
		Priority:   models.PriorityLow,
		DueDate:    &due,
		Tags:       models.TagSet{"docs"},
		AssigneeID: &user.ID,
		TeamID:     team.ID,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.CreatedAt.IsZero())
	assert.Equal(t, models.TagSet{"docs"}, created.Tags)

	title := "Write better docs"
	patch := models.TaskPatch{Title: &title, AssigneeID: models.Null[string]()}
	require.NoError(t, store.Update(ctx, created.ID, patch))
	require.NoError(t, store.UpdateStatus(ctx, created.ID, models.TaskStatusDone))

	tasks, err := store.FetchAll(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	got := tasks[0]
	assert.Equal(t, "Write better docs", got.Title)
	assert.Equal(t, models.TaskStatusDone, got.Status)
	assert.Nil(t, got.AssigneeID)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))

	require.NoError(t, store.Delete(ctx, created.ID))
	err = store.Delete(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	tasks, err = store.FetchAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestHTTPStore_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantMsg  string
		notFound bool
	}{
		{"envelope", http.StatusUnprocessableEntity, `{"code":"INVALID_OPERATION","message":"team not found"}`, "INVALID_OPERATION", "team not found", false},
		{"not found", http.StatusNotFound, `{"code":"NOT_FOUND","message":"task not found"}`, "NOT_FOUND", "task not found", true},
		{"plain text", http.StatusBadGateway, "upstream down\n", "", "upstream down", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			err := NewHTTPStore(srv.URL).UpdateStatus(context.Background(), "t1", models.TaskStatusDone)
			require.Error(t, err)

			var serr *StatusError
			require.ErrorAs(t, err, &serr)
			assert.Equal(t, tt.status, serr.StatusCode)
			assert.Equal(t, tt.wantCode, serr.Code)
			assert.Equal(t, tt.wantMsg, serr.Message)
			assert.Equal(t, tt.notFound, errors.Is(err, ErrNotFound))
		})
	}
}

func TestHTTPStore_EscapesIDs(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, NewHTTPStore(srv.URL).Delete(context.Background(), "a/b"))
	assert.Equal(t, "/api/tasks/a%2Fb", path)
}

func TestHTTPStore_DrivesEngine(t *testing.T) {
	srv, db := newServer(t)
	team := seedTeam(t, db)

	engine := board.NewEngine(board.NewCache(), NewHTTPStore(srv.URL), board.WithStoreTimeout(5*time.Second))
	t.Cleanup(engine.Wait)
	ctx := context.Background()
	require.NoError(t, engine.Refresh(ctx))

	intent, err := engine.Create(ctx, board.CreateInput{Title: "Design UI", TeamID: team.ID})
	require.NoError(t, err)
	require.NoError(t, intent.Wait(ctx))
	stored, ok := intent.Task()
	require.True(t, ok)

	move, err := engine.Move(ctx, stored.ID, models.TaskStatusInProgress)
	require.NoError(t, err)
	require.NoError(t, move.Wait(ctx))

	var row models.Task
	require.NoError(t, db.Where("id = ?", stored.ID).First(&row).Error)
	assert.Equal(t, models.TaskStatusInProgress, row.Status)

	// Another client removes the task; the engine's next write rolls back.
	require.NoError(t, db.Delete(&models.Task{}, "id = ?", stored.ID).Error)
	title := "Design UX"
	update, err := engine.Update(ctx, stored.ID, models.TaskPatch{Title: &title})
	require.NoError(t, err)

	err = update.Wait(ctx)
	var perr *board.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.ErrorIs(t, err, ErrNotFound)

	cached, ok := engine.Cache().Get(stored.ID)
	require.True(t, ok)
	assert.Equal(t, "Design UI", cached.Title)
}

func TestHTTPStore_SuggestAssignee(t *testing.T) {
	srv, db := newServer(t)
	team := seedTeam(t, db)
	user := &models.User{Name: "alice", Email: "alice@example.com", Expertise: "frontend"}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.TeamMember{TeamID: team.ID, UserID: user.ID, Role: models.RoleLeader}).Error)

	store := NewHTTPStore(srv.URL)
	got, err := store.SuggestAssignee(context.Background(), team.ID, "Polish the frontend")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.SuggestedAssignee)
	assert.Equal(t, user.ID, got.UserID)

	_, err = store.SuggestAssignee(context.Background(), team.ID, "")
	var serr *StatusError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, http.StatusBadRequest, serr.StatusCode)
}
