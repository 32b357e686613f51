package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestBoardStore_UpdateStatus(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewBoardStore(NewTaskRepository(db))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tasks" SET "status"=`)).
		WithArgs(string(models.TaskStatusDone), sqlmock.AnyArg(), "task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.UpdateStatus(context.Background(), "task-1", models.TaskStatusDone))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardStore_UpdateStatusMissingRow(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewBoardStore(NewTaskRepository(db))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tasks" SET "status"=`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateStatus(context.Background(), "gone", models.TaskStatusDone)
	assert.ErrorIs(t, err, ErrTaskMissing)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardStore_DeleteIsSoft(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewBoardStore(NewTaskRepository(db))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tasks" SET "deleted_at"=`)).
		WithArgs(sqlmock.AnyArg(), "task-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Delete(context.Background(), "task-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBoardStore_DriverErrorsSurface(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewBoardStore(NewTaskRepository(db))

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "tasks" SET "status"=`)).
		WillReturnError(assert.AnError)

	err := store.UpdateStatus(context.Background(), "task-1", models.TaskStatusDone)
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, ErrTaskMissing)
}

// The engine runs end to end against a real database through BoardStore.
func TestBoardStore_DrivesEngine(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Team{}, &models.TeamMember{}, &models.Task{}))

	repo := NewTaskRepository(db)
	engine := board.NewEngine(board.NewCache(), NewBoardStore(repo))
	ctx := context.Background()
	require.NoError(t, engine.Refresh(ctx))

	created, err := engine.Create(ctx, board.CreateInput{Title: "Ship", TeamID: "team-1", Tags: []string{"release"}})
	require.NoError(t, err)
	require.NoError(t, created.Wait(ctx))
	task, ok := created.Task()
	require.True(t, ok)
	assert.NotContains(t, task.ID, board.TempIDPrefix)
	assert.WithinDuration(t, time.Now(), task.CreatedAt, time.Minute)

	moved, err := engine.Move(ctx, task.ID, models.TaskStatusDone)
	require.NoError(t, err)
	require.NoError(t, moved.Wait(ctx))

	stored, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusDone, stored.Status)
	assert.Equal(t, models.TagSet{"release"}, stored.Tags)

	// The row disappears behind the engine's back; the delete fails and is undone.
	require.NoError(t, repo.Delete(ctx, task.ID))

	deleted, err := engine.Delete(ctx, task.ID)
	require.NoError(t, err)
	var persistErr *board.PersistenceError
	require.ErrorAs(t, deleted.Wait(ctx), &persistErr)
	assert.ErrorIs(t, persistErr, ErrTaskMissing)
	_, ok = engine.Cache().Get(task.ID)
	assert.True(t, ok, "failed delete restores the task")
}
