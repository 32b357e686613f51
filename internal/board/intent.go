package board

import (
	"context"
	"sync"

	"github.com/yukikurage/task-board/internal/models"
)

type IntentKind string

const (
	KindMove   IntentKind = "move"
	KindUpdate IntentKind = "update"
	KindCreate IntentKind = "create"
	KindDelete IntentKind = "delete"
)

type IntentState int

const (
	StatePending IntentState = iota
	StateCommitted
	StateRolledBack
)

func (s IntentState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateCommitted:
		return "committed"
	case StateRolledBack:
		return "rolled_back"
	default:
		return "unknown"
	}
}

// Intent tracks one optimistic change from apply to commit or rollback.
// Before is the record as the intent found it, after any earlier intents on the
// same task had been applied; Patch is what the intent changed. Both are nil /
// empty for create.
type Intent struct {
	ID     uint64
	Kind   IntentKind
	TaskID string
	Patch  models.TaskPatch
	Before *models.Task

	mu     sync.Mutex
	state  IntentState
	err    error
	result models.Task
	done   chan struct{}
}

func newIntent(id uint64, kind IntentKind, taskID string) *Intent {
	return &Intent{
		ID:     id,
		Kind:   kind,
		TaskID: taskID,
		done:   make(chan struct{}),
	}
}

// Fields lists the task fields this intent touched.
func (i *Intent) Fields() []models.TaskField {
	return i.Patch.Fields()
}

// Done is closed once the intent is committed or rolled back.
func (i *Intent) Done() <-chan struct{} {
	return i.done
}

// Wait blocks until the intent resolves and returns its error, if any.
func (i *Intent) Wait(ctx context.Context) error {
	select {
	case <-i.done:
		return i.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (i *Intent) State() IntentState {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// Err returns the *PersistenceError of a rolled-back intent.
func (i *Intent) Err() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.err
}

// Task returns the stored record of a committed create.
func (i *Intent) Task() (models.Task, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Kind != KindCreate || i.state != StateCommitted {
		return models.Task{}, false
	}
	return i.result.Clone(), true
}

func (i *Intent) finish(state IntentState, err error) {
	i.mu.Lock()
	if i.state != StatePending {
		i.mu.Unlock()
		return
	}
	i.state = state
	i.err = err
	i.mu.Unlock()
	close(i.done)
}
