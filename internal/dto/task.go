package dto

import (
	"time"

	"github.com/yukikurage/task-board/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Expertise string `json:"expertise,omitempty"`
	Workload  int    `json:"workload"`
}

// TeamRefDTO is the short form of a team embedded in other responses
type TeamRefDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status"`
	WorkType    models.WorkType   `json:"work_type"`
	Priority    models.Priority   `json:"priority"`
	StartDate   *time.Time        `json:"start_date"`
	DueDate     *time.Time        `json:"due_date"`
	Tags        []string          `json:"tags"`
	AssigneeID  *string           `json:"assignee_id"`
	TeamID      string            `json:"team_id"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Assignee    *UserDTO          `json:"assignee,omitempty"`
	Team        *TeamRefDTO       `json:"team,omitempty"`
}

// TaskListResponse represents the full task collection
type TaskListResponse struct {
	Tasks []TaskDTO `json:"tasks"`
	Total int       `json:"total"`
}

// CreateTaskRequest is the body of POST /api/tasks
type CreateTaskRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	Status      models.TaskStatus `json:"status" binding:"omitempty,oneof=BACKLOG TODO IN_PROGRESS DONE"`
	WorkType    models.WorkType   `json:"work_type" binding:"omitempty,oneof=FEATURE BUG CHORE"`
	Priority    models.Priority   `json:"priority" binding:"omitempty,oneof=HIGH MEDIUM LOW"`
	StartDate   *time.Time        `json:"start_date"`
	DueDate     *time.Time        `json:"due_date"`
	Tags        []string          `json:"tags"`
	AssigneeID  *string           `json:"assignee_id"`
	TeamID      string            `json:"team_id" binding:"required"`
}

// UpdateTaskStatusRequest is the body of PUT /api/tasks/:id/status
type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		AvatarURL: user.AvatarURL,
		Expertise: user.Expertise,
		Workload:  user.Workload,
	}
}

// ToUserDTOs converts a list of users
func ToUserDTOs(users []models.User) []UserDTO {
	out := make([]UserDTO, len(users))
	for i, u := range users {
		out[i] = ToUserDTO(u)
	}
	return out
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		WorkType:    task.WorkType,
		Priority:    task.Priority,
		StartDate:   task.StartDate,
		DueDate:     task.DueDate,
		Tags:        []string(task.Tags),
		AssigneeID:  task.AssigneeID,
		TeamID:      task.TeamID,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if task.Assignee != nil {
		user := ToUserDTO(*task.Assignee)
		dto.Assignee = &user
	}
	if task.Team != nil {
		dto.Team = &TeamRefDTO{ID: task.Team.ID, Name: task.Team.Name}
	}
	return dto
}

// ToTaskListResponse converts a task collection
func ToTaskListResponse(tasks []models.Task) TaskListResponse {
	out := make([]TaskDTO, len(tasks))
	for i, t := range tasks {
		out[i] = ToTaskDTO(t)
	}
	return TaskListResponse{Tasks: out, Total: len(out)}
}
