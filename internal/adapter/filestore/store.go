// Package filestore implements the task store port as one JSON file per
// calendar day: <base>/<YYYY-MM-DD>/tasks.json.
package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/Strob0t/TaskScheduler/internal/domain"
	"github.com/Strob0t/TaskScheduler/internal/domain/task"
)

const (
	tasksFile = "tasks.json"
	keyLayout = "2006-01-02"
)

// Options configures a Store.
type Options struct {
	BaseDir  string
	Location *time.Location   // bucket timezone; nil means time.Local
	Now      func() time.Time // clock; nil means time.Now
}

// Store keeps each day's tasks in its own file. Operations on the same
// bucket are serialized; nothing is cached between calls.
type Store struct {
	baseDir string
	loc     *time.Location
	now     func() time.Time

	mu     sync.Mutex // guards locks and lastID
	locks  map[string]*sync.Mutex
	lastID int64
}

// New creates a Store rooted at opts.BaseDir.
func New(opts Options) *Store {
	s := &Store{
		baseDir: opts.BaseDir,
		loc:     opts.Location,
		now:     opts.Now,
		locks:   make(map[string]*sync.Mutex),
	}
	if s.loc == nil {
		s.loc = time.Local
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// BucketKeyFor returns the day bucket key (YYYY-MM-DD) for t in loc.
func BucketKeyFor(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(keyLayout)
}

// Now returns the store clock's current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// Location returns the timezone buckets are resolved in.
func (s *Store) Location() *time.Location {
	return s.loc
}

// BucketKey returns the key of the bucket the next operation will use.
func (s *Store) BucketKey() string {
	return BucketKeyFor(s.now(), s.loc)
}

func (s *Store) bucketDir(key string) string {
	return filepath.Join(s.baseDir, key)
}

func (s *Store) bucketPath(key string) string {
	return filepath.Join(s.bucketDir(key), tasksFile)
}

// lock acquires the mutex for key and returns its release function.
func (s *Store) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Load reads the bucket for key, creating its directory if needed.
// A missing file yields an empty slice.
func (s *Store) Load(key string) ([]task.Task, error) {
	if err := os.MkdirAll(s.bucketDir(key), 0o755); err != nil {
		return nil, fmt.Errorf("create bucket dir %s: %w", key, err)
	}

	path := s.bucketPath(key)
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is built from the configured base dir
	if errors.Is(err, os.ErrNotExist) {
		return []task.Task{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bucket %s: %w", key, err)
	}

	var tasks []task.Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("%w: bucket %s: %v", domain.ErrMalformedData, key, err)
	}
	if tasks == nil {
		tasks = []task.Task{}
	}
	return tasks, nil
}

// Save writes the bucket for key via a temp file and rename, so readers never
// see a partial file. Unchanged content is not rewritten.
func (s *Store) Save(key string, tasks []task.Task) error {
	dir := s.bucketDir(key)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bucket dir %s: %w", key, err)
	}

	if tasks == nil {
		tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bucket %s: %w", key, err)
	}

	path := s.bucketPath(key)
	if existing, err := os.ReadFile(path); err == nil { //nolint:gosec // G304: see Load
		if bytes.Equal(existing, data) {
			return nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read bucket %s: %w", key, err)
	}

	tmp, err := os.CreateTemp(dir, tasksFile+".tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	name := tmp.Name()
	_, err = tmp.Write(data)
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Chmod(name, 0o644) //nolint:gosec // task files are meant to be readable
	}
	if err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("write bucket %s: %w", key, err)
	}

	if err := os.Rename(name, path); err != nil {
		_ = os.Remove(name)
		return fmt.Errorf("rename bucket %s: %w", key, err)
	}
	return nil
}

// update runs load-modify-save for key under the bucket lock.
// fn returning an error aborts without writing.
func (s *Store) update(key string, fn func([]task.Task) ([]task.Task, error)) error {
	unlock := s.lock(key)
	defer unlock()

	tasks, err := s.Load(key)
	if err != nil {
		return err
	}
	tasks, err = fn(tasks)
	if err != nil {
		return err
	}
	return s.Save(key, tasks)
}

// view loads key under the bucket lock.
func (s *Store) view(key string) ([]task.Task, error) {
	unlock := s.lock(key)
	defer unlock()
	return s.Load(key)
}

// nextID returns a millisecond timestamp id that is strictly greater than any
// id this store handed out before and not present in existing.
func (s *Store) nextID(now time.Time, existing []task.Task) string {
	taken := make(map[string]struct{}, len(existing))
	for i := range existing {
		taken[existing[i].ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n := max(now.UnixMilli(), s.lastID+1)
	for {
		if _, dup := taken[strconv.FormatInt(n, 10)]; !dup {
			break
		}
		n++
	}
	s.lastID = n
	return strconv.FormatInt(n, 10)
}

// List returns the current bucket ordered by Order.
func (s *Store) List(_ context.Context) ([]task.Task, error) {
	return s.view(s.BucketKey())
}

// Get returns the task with id from the current bucket.
func (s *Store) Get(_ context.Context, id string) (*task.Task, error) {
	tasks, err := s.view(s.BucketKey())
	if err != nil {
		return nil, err
	}
	for i := range tasks {
		if tasks[i].ID == id {
			return &tasks[i], nil
		}
	}
	return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
}

// Create validates req, appends a pending task to the current bucket and
// re-sorts the whole bucket by Order.
func (s *Store) Create(_ context.Context, req *task.CreateRequest) (*task.Task, error) {
	startTime, order, err := req.Validate(s.loc)
	if err != nil {
		return nil, err
	}

	now := s.now()
	key := BucketKeyFor(now, s.loc)

	var created task.Task
	err = s.update(key, func(tasks []task.Task) ([]task.Task, error) {
		created = task.Task{
			ID:          s.nextID(now, tasks),
			Title:       req.Title,
			Description: req.Description,
			StartTime:   startTime,
			Order:       order,
			Status:      task.StatusPending,
			CreatedAt:   now,
		}
		tasks = append(tasks, created)
		task.SortByOrder(tasks)
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("task created", "bucket", key, "task_id", created.ID, "order", created.Order)
	return &created, nil
}

// UpdateStatus sets the status of id in the current bucket. Unknown ids fail
// with domain.ErrNotFound and leave the bucket untouched.
func (s *Store) UpdateStatus(_ context.Context, id string, status task.Status, completedDescription string) (*task.Task, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", domain.ErrValidation, status)
	}

	now := s.now()
	key := BucketKeyFor(now, s.loc)

	var updated task.Task
	err := s.update(key, func(tasks []task.Task) ([]task.Task, error) {
		i := slices.IndexFunc(tasks, func(t task.Task) bool { return t.ID == id })
		if i < 0 {
			return nil, fmt.Errorf("task %s: %w", id, domain.ErrNotFound)
		}
		tasks[i].ApplyStatus(status, completedDescription, now)
		updated = tasks[i]
		return tasks, nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("task status updated", "bucket", key, "task_id", id, "status", status)
	return &updated, nil
}

// Delete removes id from the current bucket. Unknown ids are not an error.
func (s *Store) Delete(_ context.Context, id string) error {
	key := s.BucketKey()
	return s.update(key, func(tasks []task.Task) ([]task.Task, error) {
		return slices.DeleteFunc(tasks, func(t task.Task) bool { return t.ID == id }), nil
	})
}

// ListPendingDue returns pending tasks of the current bucket whose start time
// is at or before now, ordered by Order.
func (s *Store) ListPendingDue(_ context.Context, now time.Time) ([]task.Task, error) {
	tasks, err := s.view(s.BucketKey())
	if err != nil {
		return nil, err
	}

	due := make([]task.Task, 0, len(tasks))
	for i := range tasks {
		if tasks[i].PendingDue(now) {
			due = append(due, tasks[i])
		}
	}
	task.SortByOrder(due)
	return due, nil
}

// Buckets lists the bucket keys present under the base directory, oldest first.
func (s *Store) Buckets() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if errors.Is(err, os.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read base dir: %w", err)
	}

	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := time.Parse(keyLayout, e.Name()); err != nil {
			continue
		}
		keys = append(keys, e.Name())
	}
	slices.Sort(keys)
	return keys, nil
}
