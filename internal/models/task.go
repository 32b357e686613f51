package models

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusBacklog    TaskStatus = "BACKLOG"
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// TaskStatuses lists every status in workflow order.
var TaskStatuses = []TaskStatus{
	TaskStatusBacklog,
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusDone,
}

// Valid reports whether s is one of the four workflow statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusBacklog, TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// Label returns the column heading shown for the status.
func (s TaskStatus) Label() string {
	switch s {
	case TaskStatusBacklog:
		return "Backlog"
	case TaskStatusTodo:
		return "To Do"
	case TaskStatusInProgress:
		return "In Progress"
	case TaskStatusDone:
		return "Done"
	default:
		return string(s)
	}
}

type WorkType string

const (
	WorkTypeFeature WorkType = "FEATURE"
	WorkTypeBug     WorkType = "BUG"
	WorkTypeChore   WorkType = "CHORE"
)

func (w WorkType) Valid() bool {
	switch w {
	case WorkTypeFeature, WorkTypeBug, WorkTypeChore:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// TagSet is a set of free-text labels that keeps first-seen order for display.
type TagSet []string

// NewTagSet trims each tag, drops empty ones and collapses duplicates.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" || slices.Contains(set, tag) {
			continue
		}
		set = append(set, tag)
	}
	return set
}

// Has reports membership regardless of position.
func (s TagSet) Has(tag string) bool {
	return slices.Contains(s, strings.TrimSpace(tag))
}

// Equal compares membership, ignoring order.
func (s TagSet) Equal(other TagSet) bool {
	a, b := NewTagSet(s...), NewTagSet(other...)
	if len(a) != len(b) {
		return false
	}
	for _, tag := range a {
		if !b.Has(tag) {
			return false
		}
	}
	return true
}

type Task struct {
	ID          string         `gorm:"type:varchar(36);primarykey" json:"id" yaml:"id"`
	Title       string         `gorm:"not null" json:"title" yaml:"title"`
	Description string         `gorm:"type:text" json:"description" yaml:"description"`
	Status      TaskStatus     `gorm:"type:varchar(20);not null;default:'BACKLOG'" json:"status" yaml:"status"`
	WorkType    WorkType       `gorm:"type:varchar(20);not null;default:'FEATURE'" json:"work_type" yaml:"work_type"`
	Priority    Priority       `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"priority" yaml:"priority"`
	StartDate   *time.Time     `json:"start_date" yaml:"start_date"`
	DueDate     *time.Time     `json:"due_date" yaml:"due_date"`
	Tags        TagSet         `gorm:"type:text;serializer:json" json:"tags" yaml:"tags"`
	AssigneeID  *string        `gorm:"type:varchar(36)" json:"assignee_id" yaml:"assignee_id"`
	TeamID      string         `gorm:"type:varchar(36);not null" json:"team_id" yaml:"team_id"`
	CreatedAt   time.Time      `json:"created_at" yaml:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" yaml:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-" yaml:"-"`

	// Relations
	Assignee *User `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty" yaml:"-"`
	Team     *Team `gorm:"foreignKey:TeamID" json:"team,omitempty" yaml:"-"`
}

// BeforeCreate assigns the store id when the caller did not supply one.
func (t *Task) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Tags = NewTagSet(t.Tags...)
	return nil
}

// Clone returns a deep copy that shares no pointers or slices with t.
func (t Task) Clone() Task {
	c := t
	c.StartDate = cloneTime(t.StartDate)
	c.DueDate = cloneTime(t.DueDate)
	if t.AssigneeID != nil {
		id := *t.AssigneeID
		c.AssigneeID = &id
	}
	if t.Tags != nil {
		c.Tags = slices.Clone(t.Tags)
	}
	c.Assignee = nil
	c.Team = nil
	return c
}

// IsUnassigned reports whether nobody is assigned to the task.
func (t Task) IsUnassigned() bool {
	return t.AssigneeID == nil || *t.AssigneeID == ""
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
