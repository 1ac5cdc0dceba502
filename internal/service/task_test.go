package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/adapter/filestore"
	"github.com/Strob0t/TaskScheduler/internal/adapter/ws"
	"github.com/Strob0t/TaskScheduler/internal/domain"
	"github.com/Strob0t/TaskScheduler/internal/domain/task"
	"github.com/Strob0t/TaskScheduler/internal/port/messagequeue"
	"github.com/Strob0t/TaskScheduler/internal/resilience"
)

var testNow = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type published struct {
	subject string
	data    []byte
}

type mockQueue struct {
	mu   sync.Mutex
	msgs []published
	err  error
}

func (m *mockQueue) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.msgs = append(m.msgs, published{subject: subject, data: data})
	return nil
}

func (m *mockQueue) Subscribe(_ context.Context, _ string, _ messagequeue.Handler) (func(), error) {
	return func() {}, nil
}
func (m *mockQueue) Drain() error      { return nil }
func (m *mockQueue) Close() error      { return nil }
func (m *mockQueue) IsConnected() bool { return true }

type broadcastCall struct {
	eventType string
	payload   any
}

type mockBroadcaster struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (m *mockBroadcaster) BroadcastEvent(_ context.Context, eventType string, payload any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, broadcastCall{eventType: eventType, payload: payload})
}

func newTestService(t *testing.T, q messagequeue.Queue, b *mockBroadcaster) *TaskService {
	t.Helper()
	store := filestore.New(filestore.Options{
		BaseDir:  t.TempDir(),
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	})
	if b == nil {
		return NewTaskService(store, q, nil)
	}
	return NewTaskService(store, q, b)
}

func createReq(title, start string, order int) *task.CreateRequest {
	return &task.CreateRequest{Title: title, StartTime: start, Order: task.OrderValue(order)}
}

func TestCreatePublishesAndBroadcasts(t *testing.T) {
	q := &mockQueue{}
	b := &mockBroadcaster{}
	svc := newTestService(t, q, b)

	created, err := svc.Create(context.Background(), createReq("Write", "2026-10-15T08:00:00Z", 3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if len(q.msgs) != 1 || q.msgs[0].subject != messagequeue.SubjectTaskCreated {
		t.Fatalf("published = %+v", q.msgs)
	}
	var p messagequeue.TaskEventPayload
	if err := json.Unmarshal(q.msgs[0].data, &p); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if p.TaskID != created.ID || p.Bucket != "2026-10-15" || p.Order != 3 || p.Status != "pending" {
		t.Errorf("payload = %+v", p)
	}
	if p.StartTime != "2026-10-15T08:00:00Z" {
		t.Errorf("start_time = %q", p.StartTime)
	}

	if len(b.calls) != 1 || b.calls[0].eventType != ws.EventTaskCreated {
		t.Fatalf("broadcasts = %+v", b.calls)
	}
	ev, ok := b.calls[0].payload.(ws.TaskEvent)
	if !ok || ev.TaskID != created.ID {
		t.Errorf("broadcast payload = %+v", b.calls[0].payload)
	}
}

func TestCreateValidationSkipsEvents(t *testing.T) {
	q := &mockQueue{}
	b := &mockBroadcaster{}
	svc := newTestService(t, q, b)

	_, err := svc.Create(context.Background(), createReq("", "2026-10-15T08:00:00Z", 0))
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if len(q.msgs) != 0 || len(b.calls) != 0 {
		t.Fatalf("expected no events, got %d published, %d broadcast", len(q.msgs), len(b.calls))
	}
}

func TestPublishFailureIsNotReturned(t *testing.T) {
	q := &mockQueue{err: errors.New("nats down")}
	svc := newTestService(t, q, nil)
	svc.SetBreaker(resilience.NewBreaker("test", 1, time.Minute))

	if _, err := svc.Create(context.Background(), createReq("A", "2026-10-15T08:00:00Z", 0)); err != nil {
		t.Fatalf("Create should succeed despite queue failure: %v", err)
	}
	// The breaker is open now; the second publish is short-circuited but still not returned.
	if _, err := svc.Create(context.Background(), createReq("B", "2026-10-15T08:00:00Z", 0)); err != nil {
		t.Fatalf("Create with open breaker: %v", err)
	}

	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 stored tasks, got %d", len(list))
	}
}

func TestUpdateStatus(t *testing.T) {
	q := &mockQueue{}
	b := &mockBroadcaster{}
	svc := newTestService(t, q, b)
	ctx := context.Background()

	created, err := svc.Create(ctx, createReq("A", "2026-10-15T08:00:00Z", 0))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	tests := []struct {
		name    string
		id      string
		req     task.UpdateStatusRequest
		wantErr error
	}{
		{"unknown status", created.ID, task.UpdateStatusRequest{Status: "done"}, domain.ErrValidation},
		{"unknown id", "nope", task.UpdateStatusRequest{Status: "completed"}, domain.ErrNotFound},
		{"completed", created.ID, task.UpdateStatusRequest{Status: "completed", CompletedDescription: "ok"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.UpdateStatus(ctx, tt.id, tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateStatus: %v", err)
			}
			if got.Status != task.StatusCompleted || got.CompletedAt == nil || got.CompletedDescription != "ok" {
				t.Errorf("task = %+v", got)
			}
		})
	}

	if len(q.msgs) != 2 || q.msgs[1].subject != messagequeue.SubjectTaskStatus {
		t.Fatalf("published = %+v", q.msgs)
	}
	if b.calls[len(b.calls)-1].eventType != ws.EventTaskStatus {
		t.Errorf("last broadcast = %q", b.calls[len(b.calls)-1].eventType)
	}
}

func TestDeleteAnnounces(t *testing.T) {
	q := &mockQueue{}
	svc := newTestService(t, q, nil)

	if err := svc.Delete(context.Background(), "missing"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(q.msgs) != 1 || q.msgs[0].subject != messagequeue.SubjectTaskDeleted {
		t.Fatalf("published = %+v", q.msgs)
	}
	var p messagequeue.TaskEventPayload
	if err := json.Unmarshal(q.msgs[0].data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.TaskID != "missing" || p.StartTime != "" {
		t.Errorf("payload = %+v", p)
	}
}

func TestListPendingUsesStoreClock(t *testing.T) {
	svc := newTestService(t, nil, nil)
	ctx := context.Background()

	for _, r := range []*task.CreateRequest{
		createReq("due", "2026-10-15T08:00:00Z", 2),
		createReq("later", "2026-10-15T11:00:00Z", 1),
		createReq("now", "2026-10-15T09:00:00Z", 1),
	} {
		if _, err := svc.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	got, err := svc.ListPending(ctx)
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(got) != 2 || got[0].Title != "now" || got[1].Title != "due" {
		t.Fatalf("pending = %+v", got)
	}

	later, err := svc.ListPendingDue(ctx, testNow.Add(3*time.Hour))
	if err != nil {
		t.Fatalf("ListPendingDue: %v", err)
	}
	if len(later) != 3 {
		t.Fatalf("expected 3 due tasks at +3h, got %d", len(later))
	}
}
