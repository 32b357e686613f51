package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/models"
)

// ErrTaskMissing is returned by BoardStore when the target row does not exist.
var ErrTaskMissing = errors.New("task does not exist in the store")

// BoardStore adapts a TaskRepository to the board engine's Store, for running
// the engine in-process against the database.
type BoardStore struct {
	tasks TaskRepository
}

var _ board.Store = (*BoardStore)(nil)

func NewBoardStore(tasks TaskRepository) *BoardStore {
	return &BoardStore{tasks: tasks}
}

func (s *BoardStore) FetchAll(ctx context.Context) ([]models.Task, error) {
	tasks, err := s.tasks.List(ctx, TaskFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %w", err)
	}
	return tasks, nil
}

func (s *BoardStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	task = task.Clone()
	task.ID = ""
	task.CreatedAt = time.Time{}
	task.UpdatedAt = time.Time{}
	if err := s.tasks.Create(ctx, &task); err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return task, nil
}

func (s *BoardStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if _, err := s.tasks.Update(ctx, id, patch); err != nil {
		return storeErr("update", err)
	}
	return nil
}

func (s *BoardStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if err := s.tasks.UpdateStatus(ctx, id, status); err != nil {
		return storeErr("update status of", err)
	}
	return nil
}

func (s *BoardStore) Delete(ctx context.Context, id string) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return storeErr("delete", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = ErrTaskMissing
	}
	return fmt.Errorf("failed to %s task: %w", op, err)
}
