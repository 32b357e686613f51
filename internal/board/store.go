package board

import (
	"context"

	"github.com/yukikurage/task-board/internal/models"
)

// Store is the Record Store Adapter the engine persists through. Each call
// either succeeds or fails as a whole; timeouts and retries are the adapter's
// concern.
type Store interface {
	FetchAll(ctx context.Context) ([]models.Task, error)
	// Create persists task and returns the stored record carrying the
	// store-assigned id and creation timestamp.
	Create(ctx context.Context, task models.Task) (models.Task, error)
	Update(ctx context.Context, id string, patch models.TaskPatch) error
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus) error
	Delete(ctx context.Context, id string) error
}
