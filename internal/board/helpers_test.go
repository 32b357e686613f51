package board

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/task-board/internal/models"
)

var errStoreNotFound = errors.New("record not found")

// memStore is an in-process Store that succeeds unless failWith is set.
type memStore struct {
	mu       sync.Mutex
	tasks    map[string]models.Task
	calls    int
	failWith error
}

func newMemStore(tasks ...models.Task) *memStore {
	s := &memStore{tasks: make(map[string]models.Task)}
	for _, t := range tasks {
		s.tasks[t.ID] = t.Clone()
	}
	return s
}

func (s *memStore) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *memStore) FetchAll(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return models.Task{}, s.failWith
	}
	task = task.Clone()
	task.ID = uuid.NewString()
	task.CreatedAt = time.Now().UTC().Truncate(time.Second)
	s.tasks[task.ID] = task
	return task.Clone(), nil
}

func (s *memStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return s.failWith
	}
	task, ok := s.tasks[id]
	if !ok {
		return errStoreNotFound
	}
	patch.ApplyTo(&task)
	s.tasks[id] = task
	return nil
}

func (s *memStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	return s.Update(ctx, id, models.TaskPatch{Status: &status})
}

func (s *memStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.failWith != nil {
		return s.failWith
	}
	if _, ok := s.tasks[id]; !ok {
		return errStoreNotFound
	}
	delete(s.tasks, id)
	return nil
}

// storeCall is one blocked call on a gatedStore, released by Succeed or Fail.
type storeCall struct {
	Op     string
	ID     string
	Patch  models.TaskPatch
	Status models.TaskStatus
	Task   models.Task
	reply  chan error
}

func (c *storeCall) Succeed() { c.reply <- nil }

func (c *storeCall) Fail(err error) { c.reply <- err }

// gatedStore holds every write until the test releases it, then forwards
// successful calls to an inner memStore.
type gatedStore struct {
	inner   *memStore
	calls   chan *storeCall
	waiting []*storeCall
}

func newGatedStore(tasks ...models.Task) *gatedStore {
	return &gatedStore{
		inner: newMemStore(tasks...),
		calls: make(chan *storeCall, 64),
	}
}

func (s *gatedStore) FetchAll(ctx context.Context) ([]models.Task, error) {
	return s.inner.FetchAll(ctx)
}

func (s *gatedStore) gate(ctx context.Context, c *storeCall) error {
	c.reply = make(chan error, 1)
	s.calls <- c
	select {
	case err := <-c.reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *gatedStore) Create(ctx context.Context, task models.Task) (models.Task, error) {
	if err := s.gate(ctx, &storeCall{Op: "create", Task: task}); err != nil {
		return models.Task{}, err
	}
	return s.inner.Create(ctx, task)
}

func (s *gatedStore) Update(ctx context.Context, id string, patch models.TaskPatch) error {
	if err := s.gate(ctx, &storeCall{Op: "update", ID: id, Patch: patch}); err != nil {
		return err
	}
	return s.inner.Update(ctx, id, patch)
}

func (s *gatedStore) UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error {
	if err := s.gate(ctx, &storeCall{Op: "status", ID: id, Status: status}); err != nil {
		return err
	}
	return s.inner.UpdateStatus(ctx, id, status)
}

func (s *gatedStore) Delete(ctx context.Context, id string) error {
	if err := s.gate(ctx, &storeCall{Op: "delete", ID: id}); err != nil {
		return err
	}
	return s.inner.Delete(ctx, id)
}

type fataler interface {
	Helper()
	Fatal(args ...any)
}

// take returns the first blocked call matching match, in any arrival order.
func (s *gatedStore) take(t fataler, match func(*storeCall) bool) *storeCall {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		for i, c := range s.waiting {
			if match(c) {
				s.waiting = append(s.waiting[:i], s.waiting[i+1:]...)
				return c
			}
		}
		select {
		case c := <-s.calls:
			s.waiting = append(s.waiting, c)
		case <-deadline:
			t.Fatal("timed out waiting for store call")
			return nil
		}
	}
}

func titled(title string) func(*storeCall) bool {
	return func(c *storeCall) bool {
		return c.Patch.Title != nil && *c.Patch.Title == title
	}
}

func anyCall(*storeCall) bool { return true }

func ptr[T any](v T) *T { return &v }

func seedTask(id, title string, status models.TaskStatus) models.Task {
	return models.Task{
		ID:          id,
		Title:       title,
		Description: "seeded",
		Status:      status,
		WorkType:    models.WorkTypeFeature,
		Priority:    models.PriorityMedium,
		Tags:        models.TagSet{"seed"},
		TeamID:      "team-1",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

// newLoadedEngine returns an engine whose cache mirrors store.
func newLoadedEngine(t *testing.T, store Store) *Engine {
	t.Helper()
	engine := NewEngine(NewCache(), store)
	require.NoError(t, engine.Refresh(context.Background()))
	t.Cleanup(engine.Wait)
	return engine
}

func waitIntent(t *testing.T, intent *Intent) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := intent.Wait(ctx)
	require.NotErrorIs(t, err, context.DeadlineExceeded, "intent never resolved")
	return err
}
