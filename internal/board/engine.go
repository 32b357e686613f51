package board

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sourcegraph/conc"

	"github.com/yukikurage/task-board/internal/models"
)

// TempIDPrefix marks ids assigned locally to tasks whose create is in flight.
const TempIDPrefix = "tmp-"

type EventType int

const (
	EventApplied EventType = iota
	EventCommitted
	EventRolledBack
	EventRefreshed
)

// Event tells subscribers the cache changed. Intent is nil for EventRefreshed;
// Err is set for EventRolledBack.
type Event struct {
	Type    EventType
	Intent  *Intent
	Err     error
	Version uint64
}

type Option func(*Engine)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithStoreTimeout bounds every store call. Zero leaves calls unbounded.
func WithStoreTimeout(d time.Duration) Option {
	return func(e *Engine) {
		e.timeout = d
	}
}

// Engine is the single path through which tasks are written. Each mutation is
// applied to the cache before the call returns; persistence runs in the
// background and is either confirmed or rolled back field by field.
type Engine struct {
	cache    *Cache
	store    Store
	logger   *slog.Logger
	timeout  time.Duration
	validate *validator.Validate

	mu             sync.Mutex
	seq            uint64
	ledger         *ledger
	pendingCreates map[string]struct{}
	// pendingDeletes holds records removed by in-flight deletes. Rollbacks of
	// earlier intents keep them current so a failed delete restores the right state.
	pendingDeletes map[string]*models.Task
	created        map[uint64]models.Task
	// refreshing counts fetches in flight; while it is non-zero every commit is
	// also appended to settled so the fetched snapshot can be brought up to date.
	refreshing     int
	settled        []settlement
	listeners      map[int]func(Event)
	nextListener   int

	wg conc.WaitGroup
}

func NewEngine(cache *Cache, store Store, opts ...Option) *Engine {
	e := &Engine{
		cache:          cache,
		store:          store,
		logger:         slog.Default(),
		validate:       newValidator(),
		ledger:         newLedger(),
		pendingCreates: make(map[string]struct{}),
		pendingDeletes: make(map[string]*models.Task),
		created:        make(map[uint64]models.Task),
		listeners:      make(map[int]func(Event)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache returns the cache the engine writes to.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Subscribe registers fn for every cache change. fn runs on the goroutine that
// made the change and must not block. The returned func unsubscribes.
func (e *Engine) Subscribe(fn func(Event)) func() {
	e.mu.Lock()
	defer e.mu.Unlock()

	id := e.nextListener
	e.nextListener++
	e.listeners[id] = fn
	return func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		delete(e.listeners, id)
	}
}

// settlement is an intent that committed while a fetch was in flight. stored is
// the record a create committed with.
type settlement struct {
	intent *Intent
	stored models.Task
}

// Refresh fetches every task and replaces the cache with it. Writes still in
// flight are re-applied on top of the fetched records, and writes that
// committed during the fetch are replayed so a stale snapshot cannot undo them.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	e.refreshing++
	mark := len(e.settled)
	e.mu.Unlock()

	tasks, err := e.store.FetchAll(ctx)

	e.mu.Lock()
	settled := append([]settlement(nil), e.settled[mark:]...)
	e.refreshing--
	if e.refreshing == 0 {
		e.settled = nil
	}
	if err != nil {
		e.mu.Unlock()
		e.logger.Error("fetch all tasks failed", "error", err)
		return &PersistenceError{Op: "refresh", Cause: err}
	}

	tasks = replay(tasks, settled)
	// A create whose response arrived but is not yet committed is already in
	// the cache under its temporary id.
	arriving := make(map[string]struct{}, len(e.created))
	for _, stored := range e.created {
		arriving[stored.ID] = struct{}{}
	}

	next := make([]models.Task, 0, len(tasks)+len(e.pendingCreates))
	for _, task := range tasks {
		if _, deleting := e.pendingDeletes[task.ID]; deleting {
			continue
		}
		if _, ok := arriving[task.ID]; ok {
			continue
		}
		task = task.Clone()
		e.ledger.rebase(&task)
		next = append(next, task)
	}
	for tmpID := range e.pendingCreates {
		if task, ok := e.cache.Get(tmpID); ok {
			next = append(next, task)
		}
	}
	e.cache.load(next)
	e.mu.Unlock()

	if len(settled) > 0 {
		e.logger.Debug("replayed writes committed during fetch", "intents", len(settled))
	}
	e.logger.Debug("board refreshed", "tasks", len(next))
	e.emit(Event{Type: EventRefreshed})
	return nil
}

// replay applies committed intents to fetched records in commit order.
func replay(tasks []models.Task, settled []settlement) []models.Task {
	if len(settled) == 0 {
		return tasks
	}
	index := make(map[string]int, len(tasks))
	for i, task := range tasks {
		index[task.ID] = i
	}
	removed := make(map[string]struct{})
	for _, s := range settled {
		switch s.intent.Kind {
		case KindMove, KindUpdate:
			if i, ok := index[s.intent.TaskID]; ok {
				s.intent.Patch.ApplyTo(&tasks[i])
			}
		case KindCreate:
			if i, ok := index[s.stored.ID]; ok {
				tasks[i] = s.stored.Clone()
				continue
			}
			index[s.stored.ID] = len(tasks)
			tasks = append(tasks, s.stored.Clone())
		case KindDelete:
			removed[s.intent.TaskID] = struct{}{}
		}
	}
	if len(removed) == 0 {
		return tasks
	}
	out := tasks[:0]
	for _, task := range tasks {
		if _, ok := removed[task.ID]; !ok {
			out = append(out, task)
		}
	}
	return out
}

// Move changes a task's status column. Moving to the current status is a
// committed no-op that never reaches the store.
func (e *Engine) Move(ctx context.Context, id string, status models.TaskStatus) (*Intent, error) {
	if !status.Valid() {
		return nil, invalid(string(KindMove), id, ErrInvalidStatus)
	}

	e.mu.Lock()
	before, err := e.target(KindMove, id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if before.Status == status {
		e.mu.Unlock()
		intent := newIntent(0, KindMove, id)
		intent.Before = &before
		intent.finish(StateCommitted, nil)
		return intent, nil
	}
	intent := e.applyPatch(KindMove, before, models.TaskPatch{Status: &status})
	e.mu.Unlock()

	e.emit(Event{Type: EventApplied, Intent: intent})
	e.dispatch(ctx, intent, func(ctx context.Context) error {
		return e.store.UpdateStatus(ctx, id, status)
	})
	return intent, nil
}

// Update applies a field-level patch.
func (e *Engine) Update(ctx context.Context, id string, patch models.TaskPatch) (*Intent, error) {
	if err := e.validatePatch(id, patch); err != nil {
		return nil, err
	}

	e.mu.Lock()
	before, err := e.target(KindUpdate, id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	if err := validateDates(id, before, patch); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	intent := e.applyPatch(KindUpdate, before, patch)
	e.mu.Unlock()

	e.emit(Event{Type: EventApplied, Intent: intent})
	e.dispatch(ctx, intent, func(ctx context.Context) error {
		return e.store.Update(ctx, id, patch)
	})
	return intent, nil
}

// Create inserts the task under a temporary id right away and swaps in the
// stored record once the store assigns the real id.
func (e *Engine) Create(ctx context.Context, input CreateInput) (*Intent, error) {
	if err := e.validateCreate(input); err != nil {
		return nil, err
	}

	task := models.Task{
		ID:          TempIDPrefix + uuid.NewString(),
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
		CreatedAt:   time.Now(),
	}
	if task.Status == "" {
		task.Status = models.TaskStatusBacklog
	}
	if task.WorkType == "" {
		task.WorkType = models.WorkTypeFeature
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.AssigneeID != nil && *task.AssigneeID == "" {
		task.AssigneeID = nil
	}

	e.mu.Lock()
	e.seq++
	intent := newIntent(e.seq, KindCreate, task.ID)
	e.pendingCreates[task.ID] = struct{}{}
	e.cache.replace(task.ID, task)
	e.mu.Unlock()

	e.emit(Event{Type: EventApplied, Intent: intent})

	payload := task.Clone()
	payload.ID = ""
	e.dispatch(ctx, intent, func(ctx context.Context) error {
		stored, err := e.store.Create(ctx, payload)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.created[intent.ID] = stored
		e.mu.Unlock()
		return nil
	})
	return intent, nil
}

// Delete removes the task from the cache right away and restores it if the
// store rejects the delete.
func (e *Engine) Delete(ctx context.Context, id string) (*Intent, error) {
	e.mu.Lock()
	before, err := e.target(KindDelete, id)
	if err != nil {
		e.mu.Unlock()
		return nil, err
	}
	e.seq++
	intent := newIntent(e.seq, KindDelete, id)
	intent.Before = &before
	record := before.Clone()
	e.pendingDeletes[id] = &record
	e.cache.remove(id)
	e.mu.Unlock()

	e.emit(Event{Type: EventApplied, Intent: intent})
	e.dispatch(ctx, intent, func(ctx context.Context) error {
		return e.store.Delete(ctx, id)
	})
	return intent, nil
}

// Wait blocks until every dispatched store call has resolved.
func (e *Engine) Wait() {
	e.wg.Wait()
}

// target resolves the record an intent operates on. Caller holds e.mu.
func (e *Engine) target(kind IntentKind, id string) (models.Task, error) {
	if _, creating := e.pendingCreates[id]; creating {
		return models.Task{}, invalid(string(kind), id, ErrPendingCreate)
	}
	task, ok := e.cache.Get(id)
	if !ok {
		return models.Task{}, &NotFoundError{TaskID: id}
	}
	return task, nil
}

// applyPatch records the patch in the ledger and publishes it to the cache.
// Caller holds e.mu.
func (e *Engine) applyPatch(kind IntentKind, before models.Task, patch models.TaskPatch) *Intent {
	e.seq++
	intent := newIntent(e.seq, kind, before.ID)
	intent.Patch = patch
	intent.Before = &before

	after := before.Clone()
	patch.ApplyTo(&after)
	e.ledger.record(before.ID, intent.ID, patch.Fields(), before, after)
	e.cache.applyLocal(before.ID, patch.ApplyTo)

	e.logger.Debug("intent applied",
		"intent", intent.ID,
		"kind", kind,
		"task", before.ID,
		"fields", patch.Columns(),
	)
	return intent
}

func (e *Engine) dispatch(ctx context.Context, intent *Intent, call func(context.Context) error) {
	e.wg.Go(func() {
		callCtx, cancel := e.storeContext(ctx)
		defer cancel()
		e.resolve(intent, call(callCtx))
	})
}

// storeContext keeps the caller's values but not its cancellation: a mutation
// already applied to the cache must run to a verdict.
func (e *Engine) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	base := context.WithoutCancel(ctx)
	if e.timeout > 0 {
		return context.WithTimeout(base, e.timeout)
	}
	return context.WithCancel(base)
}

func (e *Engine) resolve(intent *Intent, callErr error) {
	e.mu.Lock()
	if callErr == nil {
		e.commit(intent)
	} else {
		e.rollback(intent)
	}
	e.mu.Unlock()

	if callErr == nil {
		intent.finish(StateCommitted, nil)
		e.logger.Debug("intent committed", "intent", intent.ID, "kind", intent.Kind, "task", intent.TaskID)
		e.emit(Event{Type: EventCommitted, Intent: intent})
		return
	}

	perr := &PersistenceError{Op: string(intent.Kind), TaskID: intent.TaskID, Cause: callErr}
	intent.finish(StateRolledBack, perr)
	e.logger.Warn("intent rolled back",
		"intent", intent.ID,
		"kind", intent.Kind,
		"task", intent.TaskID,
		"error", callErr,
	)
	e.emit(Event{Type: EventRolledBack, Intent: intent, Err: perr})
}

// commit settles a confirmed intent. Caller holds e.mu.
func (e *Engine) commit(intent *Intent) {
	var stored models.Task
	switch intent.Kind {
	case KindMove, KindUpdate:
		e.ledger.commit(intent.TaskID, intent.ID, intent.Fields())
	case KindCreate:
		stored = e.created[intent.ID]
		delete(e.created, intent.ID)
		delete(e.pendingCreates, intent.TaskID)
		e.cache.swap(intent.TaskID, stored)
		intent.mu.Lock()
		intent.result = stored.Clone()
		intent.mu.Unlock()
	case KindDelete:
		delete(e.pendingDeletes, intent.TaskID)
		e.ledger.drop(intent.TaskID)
	}
	if e.refreshing > 0 {
		e.settled = append(e.settled, settlement{intent: intent, stored: stored})
	}
}

// rollback undoes a rejected intent. Caller holds e.mu.
func (e *Engine) rollback(intent *Intent) {
	switch intent.Kind {
	case KindMove, KindUpdate:
		restores := e.ledger.rollback(intent.TaskID, intent.ID, intent.Fields())
		if len(restores) == 0 {
			return
		}
		restore := func(t *models.Task) {
			for _, r := range restores {
				models.CopyField(t, r.from, r.field)
			}
		}
		if !e.cache.applyLocal(intent.TaskID, restore) {
			if record, ok := e.pendingDeletes[intent.TaskID]; ok {
				restore(record)
			}
		}
	case KindCreate:
		delete(e.created, intent.ID)
		delete(e.pendingCreates, intent.TaskID)
		e.cache.remove(intent.TaskID)
	case KindDelete:
		restored := *e.pendingDeletes[intent.TaskID]
		delete(e.pendingDeletes, intent.TaskID)
		e.ledger.overlay(&restored)
		e.cache.replace(intent.TaskID, restored)
	}
}

func (e *Engine) emit(ev Event) {
	ev.Version = e.cache.Version()

	e.mu.Lock()
	listeners := make([]func(Event), 0, len(e.listeners))
	for _, fn := range e.listeners {
		listeners = append(listeners, fn)
	}
	e.mu.Unlock()

	for _, fn := range listeners {
		fn(ev)
	}
}
