// Package drag turns a pointer-drag gesture over the board columns into a
// single move intent.
package drag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/yukikurage/task-board/internal/board"
	"github.com/yukikurage/task-board/internal/models"
)

var (
	ErrDragInProgress = errors.New("a drag is already in progress")
	ErrNotDragging    = errors.New("no drag in progress")
	ErrUnknownTask    = errors.New("dragged task is not on the board")
	ErrInvalidColumn  = errors.New("invalid column status")
)

type State int

const (
	Idle State = iota
	Dragging
	Hovering
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Hovering:
		return "hovering"
	default:
		return "idle"
	}
}

// Mover issues the move intent at the end of a drag. *board.Engine satisfies it.
type Mover interface {
	Move(ctx context.Context, id string, status models.TaskStatus) (*board.Intent, error)
}

// Lookup resolves the dragged task. *board.Cache satisfies it.
type Lookup interface {
	Get(id string) (models.Task, bool)
}

// Confirmation is reported once a drag produced a move.
type Confirmation struct {
	TaskID string            `json:"task_id" yaml:"task_id"`
	Title  string            `json:"title" yaml:"title"`
	Status models.TaskStatus `json:"status" yaml:"status"`
	Label  string            `json:"label" yaml:"label"`
	Intent *board.Intent     `json:"-" yaml:"-"`
}

func (c Confirmation) Message() string {
	return fmt.Sprintf("Moved %q to %s", c.Title, c.Label)
}

// Controller is the drag state machine. Idle -> Dragging on Start,
// Dragging/Hovering -> Hovering on Hover, back to Idle on End or Cancel.
type Controller struct {
	mover   Mover
	tasks   Lookup
	logger  *slog.Logger
	confirm func(Confirmation)

	mu        sync.Mutex
	state     State
	taskID    string
	candidate models.TaskStatus
}

type Option func(*Controller)

// OnConfirm registers a callback invoked after each committed drag.
func OnConfirm(fn func(Confirmation)) Option {
	return func(c *Controller) { c.confirm = fn }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

func NewController(mover Mover, tasks Lookup, opts ...Option) *Controller {
	c := &Controller{mover: mover, tasks: tasks, logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state, the active task and the hovered column.
func (c *Controller) State() (State, string, models.TaskStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state, c.taskID, c.candidate
}

// Start lifts a task. It is rejected while another drag is active.
func (c *Controller) Start(taskID string) error {
	if _, ok := c.tasks.Get(taskID); !ok {
		return ErrUnknownTask
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Idle {
		c.logger.Debug("drag start ignored", "task_id", taskID, "active", c.taskID)
		return ErrDragInProgress
	}
	c.state = Dragging
	c.taskID = taskID
	c.candidate = ""
	return nil
}

// Hover marks the column under the pointer. Purely visual.
func (c *Controller) Hover(status models.TaskStatus) error {
	if !status.Valid() {
		return ErrInvalidColumn
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Idle {
		return ErrNotDragging
	}
	c.state = Hovering
	c.candidate = status
	return nil
}

// Leave clears the candidate column when the pointer exits every column.
func (c *Controller) Leave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Hovering {
		c.state = Dragging
		c.candidate = ""
	}
}

// Cancel drops the gesture without a mutation.
func (c *Controller) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

// End finishes the gesture. It returns nil, nil when the gesture resolves
// without a move: no column under the pointer, or the same column the task
// is already in.
func (c *Controller) End(ctx context.Context) (*Confirmation, error) {
	c.mu.Lock()
	state, taskID, candidate := c.state, c.taskID, c.candidate
	c.reset()
	c.mu.Unlock()

	switch state {
	case Idle:
		return nil, ErrNotDragging
	case Dragging:
		return nil, nil
	}

	task, ok := c.tasks.Get(taskID)
	if !ok {
		return nil, ErrUnknownTask
	}
	if task.Status == candidate {
		return nil, nil
	}

	intent, err := c.mover.Move(ctx, taskID, candidate)
	if err != nil {
		return nil, err
	}

	conf := Confirmation{
		TaskID: taskID,
		Title:  task.Title,
		Status: candidate,
		Label:  candidate.Label(),
		Intent: intent,
	}
	c.logger.Info("task moved", "task_id", taskID, "status", candidate)
	if c.confirm != nil {
		c.confirm(conf)
	}
	return &conf, nil
}

func (c *Controller) reset() {
	c.state = Idle
	c.taskID = ""
	c.candidate = ""
}
