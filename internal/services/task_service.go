package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
	"github.com/yukikurage/task-board/internal/repository"
)

var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrTitleRequired    = errors.New("title is required")
	ErrTitleEmpty       = errors.New("title cannot be empty")
	ErrTeamRequired     = errors.New("team is required")
	ErrInvalidStatus    = errors.New("invalid task status")
	ErrInvalidWorkType  = errors.New("invalid work type")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidAssignee  = errors.New("assignee does not exist")
	ErrNothingToUpdate  = errors.New("no fields to update")
	ErrInvalidDateRange = errors.New("start date is after due date")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo repository.TaskRepository
	teamRepo repository.TeamRepository
	userRepo repository.UserRepository
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, teamRepo repository.TeamRepository, userRepo repository.UserRepository) *TaskService {
	return &TaskService{
		taskRepo: taskRepo,
		teamRepo: teamRepo,
		userRepo: userRepo,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	TeamID     *string
	AssigneeID *string
	Unassigned bool
	Status     *models.TaskStatus
	DueOn      *time.Time
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title       string
	Description string
	Status      models.TaskStatus
	WorkType    models.WorkType
	Priority    models.Priority
	StartDate   *time.Time
	DueDate     *time.Time
	Tags        []string
	AssigneeID  *string
	TeamID      string
}

// ListTasks returns the tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	filter := repository.TaskFilter{
		TeamID:     input.TeamID,
		AssigneeID: input.AssigneeID,
		Unassigned: input.Unassigned,
		Status:     input.Status,
	}
	if input.DueOn != nil {
		d := *input.DueOn
		startOfDay := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, d.Location())
		endOfDay := startOfDay.AddDate(0, 0, 1)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetTask returns a task with its assignee and team
func (s *TaskService) GetTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID, "Assignee", "Team")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a new task. Empty enums take their defaults.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(input.TeamID) == "" {
		return nil, ErrTeamRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusBacklog
	}
	if input.WorkType == "" {
		input.WorkType = models.WorkTypeFeature
	}
	if input.Priority == "" {
		input.Priority = models.PriorityMedium
	}
	if input.AssigneeID != nil && *input.AssigneeID == "" {
		input.AssigneeID = nil
	}

	task := &models.Task{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		WorkType:    input.WorkType,
		Priority:    input.Priority,
		StartDate:   input.StartDate,
		DueDate:     input.DueDate,
		Tags:        models.NewTagSet(input.Tags...),
		AssigneeID:  input.AssigneeID,
		TeamID:      input.TeamID,
	}
	if err := s.checkTask(ctx, task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a field-level patch to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID string, patch models.TaskPatch) (*models.Task, error) {
	if patch.IsEmpty() {
		return nil, ErrNothingToUpdate
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, ErrTitleEmpty
	}
	if patch.TeamID != nil && strings.TrimSpace(*patch.TeamID) == "" {
		return nil, ErrTeamRequired
	}

	current, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	next := current.Clone()
	patch.ApplyTo(&next)
	if err := s.checkTask(ctx, &next); err != nil {
		return nil, err
	}

	task, err := s.taskRepo.Update(ctx, taskID, patch)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return task, nil
}

// UpdateTaskStatus moves a task to another status column
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID string, status models.TaskStatus) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	if err := s.taskRepo.UpdateStatus(ctx, taskID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to update task status: %w", err)
	}

	return nil
}

// DeleteTask deletes a task
func (s *TaskService) DeleteTask(ctx context.Context, taskID string) error {
	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// checkTask verifies enum membership and that referenced rows exist
func (s *TaskService) checkTask(ctx context.Context, task *models.Task) error {
	switch {
	case !task.Status.Valid():
		return ErrInvalidStatus
	case !task.WorkType.Valid():
		return ErrInvalidWorkType
	case !task.Priority.Valid():
		return ErrInvalidPriority
	}
	if task.StartDate != nil && task.DueDate != nil && task.StartDate.After(*task.DueDate) {
		return ErrInvalidDateRange
	}

	if _, err := s.teamRepo.FindByID(ctx, task.TeamID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		return fmt.Errorf("failed to find team: %w", err)
	}

	if task.AssigneeID != nil {
		if _, err := s.userRepo.FindByID(ctx, *task.AssigneeID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidAssignee
			}
			return fmt.Errorf("failed to find assignee: %w", err)
		}
	}

	return nil
}
