package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/task-board/internal/models"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task; the id and timestamps are assigned on insert
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id string, preload ...string) (*models.Task, error)

	// List retrieves tasks matching the filter, oldest first
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update writes only the fields touched by patch and returns the stored task
	Update(ctx context.Context, id string, patch models.TaskPatch) (*models.Task, error)

	// UpdateStatus moves a task to another status column
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id string) error

	// CountOpenByAssignee counts tasks not yet done per assignee
	CountOpenByAssignee(ctx context.Context, userIDs []string) (map[string]int, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	TeamID      *string
	AssigneeID  *string
	Unassigned  bool
	Status      *models.TaskStatus
	DueDateFrom *time.Time
	DueDateTo   *time.Time
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a team together with its initial members
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a team with its members in roster order
	FindByID(ctx context.Context, id string) (*models.Team, error)

	// List lists every team ordered by name
	List(ctx context.Context) ([]models.Team, error)

	// AddMember adds a member at the end of the roster
	AddMember(ctx context.Context, member *models.TeamMember) error

	// FindMember finds a specific team member
	FindMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error)

	// ListMembers lists all members of a team in roster order
	ListMembers(ctx context.Context, teamID string) ([]models.TeamMember, error)

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(ctx context.Context, teamID, userID string, role models.TeamRole) error

	// RemoveMember removes a member from a team
	RemoveMember(ctx context.Context, teamID, userID string) error

	// Transaction runs fn against a repository bound to a single transaction
	Transaction(ctx context.Context, fn func(TeamRepository) error) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id string) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// List lists users ordered by name
	List(ctx context.Context) ([]models.User, error)

	// ListByTeam lists the users on a team in roster order
	ListByTeam(ctx context.Context, teamID string) ([]models.User, error)
}

// notFound turns a zero-row write into gorm.ErrRecordNotFound.
func notFound(result *gorm.DB) error {
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
