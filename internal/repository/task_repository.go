package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("Assignee", "Team").Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("id = ?", id).First(&task).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks matching the filter
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	query := r.db.WithContext(ctx).Model(&models.Task{})

	// Apply filters
	if filter.TeamID != nil {
		query = query.Where("tasks.team_id = ?", *filter.TeamID)
	}
	if filter.Unassigned {
		query = query.Where("tasks.assignee_id IS NULL")
	} else if filter.AssigneeID != nil {
		query = query.Where("tasks.assignee_id = ?", *filter.AssigneeID)
	}
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	if err := query.Order("tasks.created_at ASC, tasks.id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

// Update loads the task, applies the patch and writes back only the touched columns
func (r *GormTaskRepository) Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error) {
	var task models.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&task).Error; err != nil {
			return err
		}
		if patch.IsEmpty() {
			return nil
		}

		patch.ApplyTo(&task)
		return tx.Model(&task).Select(patch.Columns()).Updates(&task).Error
	})
	if err != nil {
		return nil, err
	}

	return &task, nil
}

// UpdateStatus moves a task to another status column
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return notFound(r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Update("status", status))
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id string) error {
	return notFound(r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Task{}))
}

// CountOpenByAssignee counts tasks not yet done per assignee
func (r *GormTaskRepository) CountOpenByAssignee(ctx context.Context, userIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(userIDs))
	if len(userIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AssigneeID string
		OpenCount  int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("assignee_id, COUNT(*) AS open_count").
		Where("assignee_id IN ? AND status <> ?", userIDs, models.TaskStatusDone).
		Group("assignee_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		counts[row.AssigneeID] = row.OpenCount
	}
	return counts, nil
}
