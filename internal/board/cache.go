package board

import (
	"sort"
	"sync"

	"github.com/yukikurage/task-board/internal/models"
)

// Cache is the in-memory mirror of every task loaded for the session and the
// single source of truth for all views. Reads are exported; writes are only
// reachable from the Engine.
//
// Records are stored as immutable values: a write builds a new record and swaps
// it in under the lock, so a reader never sees half of a patch.
type Cache struct {
	mu      sync.RWMutex
	tasks   map[string]models.Task
	version uint64
}

func NewCache() *Cache {
	return &Cache{tasks: make(map[string]models.Task)}
}

// Get returns a copy of the task with the given id.
func (c *Cache) Get(id string) (models.Task, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	task, ok := c.tasks[id]
	if !ok {
		return models.Task{}, false
	}
	return task.Clone(), true
}

// Snapshot returns a consistent copy of every cached task, ordered by id.
func (c *Cache) Snapshot() []models.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]models.Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		out = append(out, task.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}

// Version increases on every write.
func (c *Cache) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// load replaces the whole collection. No merge with prior state.
func (c *Cache) load(tasks []models.Task) {
	next := make(map[string]models.Task, len(tasks))
	for _, task := range tasks {
		next[task.ID] = task.Clone()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.tasks = next
	c.version++
}

// applyLocal mutates one record. fn receives a private copy; the result is
// published in a single swap. Returns false when id is not cached.
func (c *Cache) applyLocal(id string, fn func(*models.Task)) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	task, ok := c.tasks[id]
	if !ok {
		return false
	}
	next := task.Clone()
	fn(&next)
	next.ID = id
	c.tasks[id] = next
	c.version++
	return true
}

func (c *Cache) replace(id string, task models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	task = task.Clone()
	task.ID = id
	c.tasks[id] = task
	c.version++
}

func (c *Cache) remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.tasks[id]; !ok {
		return false
	}
	delete(c.tasks, id)
	c.version++
	return true
}

// swap replaces oldID with task in one step, so no reader sees both or neither.
func (c *Cache) swap(oldID string, task models.Task) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.tasks, oldID)
	c.tasks[task.ID] = task.Clone()
	c.version++
}
