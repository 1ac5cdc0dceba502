// Package service implements business logic on top of ports.
package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	tsotel "github.com/Strob0t/TaskScheduler/internal/adapter/otel"
	"github.com/Strob0t/TaskScheduler/internal/adapter/ws"
	"github.com/Strob0t/TaskScheduler/internal/domain/task"
	"github.com/Strob0t/TaskScheduler/internal/port/broadcast"
	"github.com/Strob0t/TaskScheduler/internal/port/messagequeue"
	"github.com/Strob0t/TaskScheduler/internal/port/taskstore"
	"github.com/Strob0t/TaskScheduler/internal/resilience"
)

// TaskService handles task business logic and fans out change events.
// queue and hub may be nil.
type TaskService struct {
	store   taskstore.Store
	queue   messagequeue.Queue
	hub     broadcast.Broadcaster
	breaker *resilience.Breaker
	metrics *tsotel.Metrics
}

// NewTaskService creates a new TaskService.
func NewTaskService(store taskstore.Store, queue messagequeue.Queue, hub broadcast.Broadcaster) *TaskService {
	return &TaskService{store: store, queue: queue, hub: hub}
}

// SetBreaker attaches a circuit breaker to event publishing.
func (s *TaskService) SetBreaker(b *resilience.Breaker) {
	s.breaker = b
}

// SetMetrics attaches metric instruments.
func (s *TaskService) SetMetrics(m *tsotel.Metrics) {
	s.metrics = m
}

// Now returns the store clock's current time.
func (s *TaskService) Now() time.Time {
	return s.store.Now()
}

// List returns the current day's tasks ordered by Order.
func (s *TaskService) List(ctx context.Context) (tasks []task.Task, err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.list", "")
	defer func() { tsotel.EndSpan(span, err) }()

	return s.store.List(ctx)
}

// Get returns a task of the current day by ID.
func (s *TaskService) Get(ctx context.Context, id string) (t *task.Task, err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.get", id)
	defer func() { tsotel.EndSpan(span, err) }()

	return s.store.Get(ctx, id)
}

// Create stores a new pending task and announces it.
func (s *TaskService) Create(ctx context.Context, req *task.CreateRequest) (t *task.Task, err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.create", "")
	defer func() { tsotel.EndSpan(span, err) }()

	t, err = s.store.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("task.id", t.ID))

	if s.metrics != nil {
		s.metrics.TasksCreated.Add(ctx, 1)
	}
	s.announce(ctx, messagequeue.SubjectTaskCreated, ws.EventTaskCreated, t)
	return t, nil
}

// UpdateStatus parses status, applies it to the task and announces the change.
func (s *TaskService) UpdateStatus(ctx context.Context, id string, req task.UpdateStatusRequest) (t *task.Task, err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.update_status", id)
	defer func() { tsotel.EndSpan(span, err) }()

	status, err := task.ParseStatus(req.Status)
	if err != nil {
		return nil, err
	}
	t, err = s.store.UpdateStatus(ctx, id, status, req.CompletedDescription)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil && status == task.StatusCompleted {
		s.metrics.TasksCompleted.Add(ctx, 1)
	}
	s.announce(ctx, messagequeue.SubjectTaskStatus, ws.EventTaskStatus, t)
	return t, nil
}

// Delete removes a task from the current day. Unknown IDs are not an error.
func (s *TaskService) Delete(ctx context.Context, id string) (err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.delete", id)
	defer func() { tsotel.EndSpan(span, err) }()

	if err = s.store.Delete(ctx, id); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.TasksDeleted.Add(ctx, 1)
	}
	s.announce(ctx, messagequeue.SubjectTaskDeleted, ws.EventTaskDeleted, &task.Task{ID: id})
	return nil
}

// ListPending returns pending tasks due at the store clock's current time.
func (s *TaskService) ListPending(ctx context.Context) ([]task.Task, error) {
	return s.ListPendingDue(ctx, s.store.Now())
}

// ListPendingDue returns pending tasks whose start time is at or before now.
func (s *TaskService) ListPendingDue(ctx context.Context, now time.Time) (tasks []task.Task, err error) {
	ctx, span := tsotel.StartTaskSpan(ctx, "task.list_pending", "")
	defer func() { tsotel.EndSpan(span, err) }()

	tasks, err = s.store.ListPendingDue(ctx, now)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PendingPolls.Add(ctx, 1)
		s.metrics.PendingDue.Record(ctx, int64(len(tasks)), metric.WithAttributes(
			attribute.String("bucket", s.store.BucketKey()),
		))
	}
	return tasks, nil
}

// announce publishes the change to the queue and the hub. Failures are logged only.
func (s *TaskService) announce(ctx context.Context, subject, eventType string, t *task.Task) {
	bucket := s.store.BucketKey()

	if s.hub != nil {
		s.hub.BroadcastEvent(ctx, eventType, ws.TaskEvent{
			TaskID: t.ID,
			Bucket: bucket,
			Title:  t.Title,
			Status: string(t.Status),
		})
	}

	if s.queue == nil {
		return
	}

	payload := messagequeue.TaskEventPayload{
		TaskID:               t.ID,
		Bucket:               bucket,
		Title:                t.Title,
		Status:               string(t.Status),
		Order:                t.Order,
		CompletedDescription: t.CompletedDescription,
	}
	if !t.StartTime.IsZero() {
		payload.StartTime = t.StartTime.Format(time.RFC3339)
	}
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "marshal task event", "task_id", t.ID, "error", err)
		return
	}

	publish := func() error { return s.queue.Publish(ctx, subject, data) }
	if s.breaker != nil {
		err = s.breaker.Execute(publish)
	} else {
		err = publish()
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to publish task event", "subject", subject, "task_id", t.ID, "error", err)
	}
}
