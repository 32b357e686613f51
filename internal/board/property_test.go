package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"testing"

	"pgregory.net/rapid"

	"github.com/yukikurage/task-board/internal/models"
)

// TestProperty01_MoveToCurrentStatusIsIdempotent verifies that moving a task to
// the column it is already in never reaches the store.
func TestProperty01_MoveToCurrentStatusIsIdempotent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		status := rapid.SampledFrom(models.TaskStatuses).Draw(rt, "status")
		store := newMemStore(seedTask("t1", "Task", status))
		engine := NewEngine(NewCache(), store)
		if err := engine.Refresh(context.Background()); err != nil {
			rt.Fatalf("Refresh failed: %v", err)
		}

		repeats := rapid.IntRange(1, 5).Draw(rt, "repeats")
		for i := 0; i < repeats; i++ {
			intent, err := engine.Move(context.Background(), "t1", status)
			if err != nil {
				rt.Fatalf("Move failed: %v", err)
			}
			if intent.State() != StateCommitted {
				rt.Fatalf("intent state = %s, want committed", intent.State())
			}
		}
		engine.Wait()

		if store.Calls() != 0 {
			rt.Fatalf("store calls = %d, want 0", store.Calls())
		}
	})
}

// TestProperty02_PatchesAreAtomicForReaders verifies that a reader never sees
// a record with some fields from one patch and some from another.
func TestProperty02_PatchesAreAtomicForReaders(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		cache := NewCache()
		cache.load([]models.Task{seedTask("t1", "rev-0", models.TaskStatuses[0])})

		n := rapid.IntRange(1, 200).Draw(rt, "patches")
		stop := make(chan struct{})
		var wg sync.WaitGroup
		var torn error
		var mu sync.Mutex

		for r := 0; r < 4; r++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-stop:
						return
					default:
					}
					for _, task := range cache.Snapshot() {
						if err := consistent(task); err != nil {
							mu.Lock()
							torn = err
							mu.Unlock()
							return
						}
					}
				}
			}()
		}

		for i := 1; i <= n; i++ {
			title := fmt.Sprintf("rev-%d", i)
			status := models.TaskStatuses[i%len(models.TaskStatuses)]
			cache.applyLocal("t1", models.TaskPatch{Title: &title, Status: &status}.ApplyTo)
		}
		close(stop)
		wg.Wait()

		if torn != nil {
			rt.Fatalf("reader observed torn record: %v", torn)
		}
	})
}

func consistent(task models.Task) error {
	rev, err := strconv.Atoi(strings.TrimPrefix(task.Title, "rev-"))
	if err != nil {
		return err
	}
	want := models.TaskStatuses[rev%len(models.TaskStatuses)]
	if task.Status != want {
		return fmt.Errorf("title %q with status %s, want %s", task.Title, task.Status, want)
	}
	return nil
}

// TestProperty03_FailedMoveRestoresRecord verifies that a rejected move leaves
// the cached record exactly as it was.
func TestProperty03_FailedMoveRestoresRecord(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		from := rapid.SampledFrom(models.TaskStatuses).Draw(rt, "from")
		to := rapid.SampledFrom(models.TaskStatuses).Filter(func(s models.TaskStatus) bool {
			return s != from
		}).Draw(rt, "to")

		original := seedTask("t1", rapid.StringMatching(`[A-Za-z ]{1,20}`).Draw(rt, "title"), from)
		store := newMemStore(original)
		store.failWith = errors.New("rejected")
		engine := NewEngine(NewCache(), store)
		if err := engine.Refresh(context.Background()); err != nil {
			rt.Fatalf("Refresh failed: %v", err)
		}

		intent, err := engine.Move(context.Background(), "t1", to)
		if err != nil {
			rt.Fatalf("Move failed: %v", err)
		}
		var perr *PersistenceError
		if !errors.As(intent.Wait(context.Background()), &perr) {
			rt.Fatalf("expected PersistenceError, got %v", intent.Err())
		}

		got, ok := engine.Cache().Get("t1")
		if !ok {
			rt.Fatalf("task vanished after rollback")
		}
		if got.Status != from || got.Title != original.Title || !got.Tags.Equal(original.Tags) {
			rt.Fatalf("after rollback got %+v, want %+v", got, original)
		}
		engine.Wait()
	})
}

// TestProperty04_DisjointRollbackKeepsOtherWrites verifies that when any
// subset of a sequence of single-field updates fails, each field ends at the
// value of its last successful write, whatever order the store answers in.
func TestProperty04_DisjointRollbackKeepsOtherWrites(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		store := newGatedStore(seedTask("t1", "base", models.TaskStatusTodo))
		engine := NewEngine(NewCache(), store)
		if err := engine.Refresh(context.Background()); err != nil {
			rt.Fatalf("Refresh failed: %v", err)
		}

		n := rapid.IntRange(1, 6).Draw(rt, "updates")
		intents := make([]*Intent, n)
		titles := make([]string, n)
		for i := 0; i < n; i++ {
			titles[i] = fmt.Sprintf("title-%d", i)
			intent, err := engine.Update(context.Background(), "t1", models.TaskPatch{Title: &titles[i]})
			if err != nil {
				rt.Fatalf("Update failed: %v", err)
			}
			intents[i] = intent
		}

		fails := make([]bool, n)
		order := rapid.Permutation(indexes(n)).Draw(rt, "order")
		for _, i := range order {
			fails[i] = rapid.Bool().Draw(rt, fmt.Sprintf("fail-%d", i))
			call := store.take(rt, titled(titles[i]))
			if fails[i] {
				call.Fail(errors.New("rejected"))
			} else {
				call.Succeed()
			}
			_ = intents[i].Wait(context.Background())
		}
		engine.Wait()

		want := "base"
		for i := n - 1; i >= 0; i-- {
			if !fails[i] {
				want = titles[i]
				break
			}
		}
		got, _ := engine.Cache().Get("t1")
		if got.Title != want {
			rt.Fatalf("title = %q, want %q (fails %v, resolved in order %v)", got.Title, want, fails, order)
		}
	})
}

func indexes(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
