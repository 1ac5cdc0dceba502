// Package taskstore defines the daily task store port (interface).
package taskstore

import (
	"context"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/domain/task"
)

// Store is the port interface for the current day's task bucket.
// Every call resolves the bucket from the store's clock at call time.
type Store interface {
	List(ctx context.Context) ([]task.Task, error)
	Get(ctx context.Context, id string) (*task.Task, error)
	Create(ctx context.Context, req *task.CreateRequest) (*task.Task, error)
	UpdateStatus(ctx context.Context, id string, status task.Status, completedDescription string) (*task.Task, error)
	Delete(ctx context.Context, id string) error

	// ListPendingDue returns pending tasks whose start time is at or before now,
	// ordered by Order.
	ListPendingDue(ctx context.Context, now time.Time) ([]task.Task, error)

	// Now returns the store clock's current time.
	Now() time.Time

	// BucketKey returns the key (YYYY-MM-DD) of the bucket the next call uses.
	BucketKey() string
}
