package board

import "github.com/yukikurage/task-board/internal/models"

// fieldWrite is one pending intent's value for a field. value carries the whole
// record as the intent left it; only the chain's field is read from it.
type fieldWrite struct {
	intent uint64
	value  models.Task
}

// fieldChain holds the last confirmed value of a field and the pending writes
// stacked on top of it, oldest first.
type fieldChain struct {
	base   models.Task
	writes []fieldWrite
}

func (c *fieldChain) index(intent uint64) int {
	for i, w := range c.writes {
		if w.intent == intent {
			return i
		}
	}
	return -1
}

func (c *fieldChain) top() models.Task {
	if len(c.writes) == 0 {
		return c.base
	}
	return c.writes[len(c.writes)-1].value
}

type restoration struct {
	field models.TaskField
	from  models.Task
}

// ledger tracks in-flight writes per task and per field so a failed intent can
// be rolled back without erasing fields written after it.
type ledger struct {
	tasks map[string]map[models.TaskField]*fieldChain
}

func newLedger() *ledger {
	return &ledger{tasks: make(map[string]map[models.TaskField]*fieldChain)}
}

func (l *ledger) record(taskID string, intent uint64, fields []models.TaskField, before, after models.Task) {
	chains, ok := l.tasks[taskID]
	if !ok {
		chains = make(map[models.TaskField]*fieldChain)
		l.tasks[taskID] = chains
	}
	for _, f := range fields {
		chain, ok := chains[f]
		if !ok {
			chain = &fieldChain{base: before.Clone()}
			chains[f] = chain
		}
		chain.writes = append(chain.writes, fieldWrite{intent: intent, value: after.Clone()})
	}
}

// commit confirms intent's writes. Older pending writes on the same fields are
// superseded and dropped.
func (l *ledger) commit(taskID string, intent uint64, fields []models.TaskField) {
	chains := l.tasks[taskID]
	for _, f := range fields {
		chain, ok := chains[f]
		if !ok {
			continue
		}
		idx := chain.index(intent)
		if idx < 0 {
			continue
		}
		chain.base = chain.writes[idx].value
		chain.writes = chain.writes[idx+1:]
		if len(chain.writes) == 0 {
			delete(chains, f)
		}
	}
	l.prune(taskID)
}

// rollback discards intent's writes and returns the fields whose visible value
// must change: only those where intent was the latest write.
func (l *ledger) rollback(taskID string, intent uint64, fields []models.TaskField) []restoration {
	chains := l.tasks[taskID]
	var out []restoration
	for _, f := range fields {
		chain, ok := chains[f]
		if !ok {
			continue
		}
		idx := chain.index(intent)
		if idx < 0 {
			continue
		}
		wasTop := idx == len(chain.writes)-1
		chain.writes = append(chain.writes[:idx], chain.writes[idx+1:]...)
		if wasTop {
			out = append(out, restoration{field: f, from: chain.top()})
		}
		if len(chain.writes) == 0 {
			delete(chains, f)
		}
	}
	l.prune(taskID)
	return out
}

// overlay writes the latest pending value of every tracked field into task.
func (l *ledger) overlay(task *models.Task) {
	for f, chain := range l.tasks[task.ID] {
		models.CopyField(task, chain.top(), f)
	}
}

// rebase makes a freshly fetched record the confirmed base of every tracked
// field, then re-applies the pending writes on top of it.
func (l *ledger) rebase(task *models.Task) {
	chains := l.tasks[task.ID]
	if len(chains) == 0 {
		return
	}
	fetched := task.Clone()
	for _, chain := range chains {
		chain.base = fetched
	}
	l.overlay(task)
}

func (l *ledger) drop(taskID string) {
	delete(l.tasks, taskID)
}

func (l *ledger) pending(taskID string) int {
	return len(l.tasks[taskID])
}

func (l *ledger) prune(taskID string) {
	if len(l.tasks[taskID]) == 0 {
		delete(l.tasks, taskID)
	}
}
