package client

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sourcegraph/conc"

	"github.com/taskdesk/taskdesk/internal/task"
	"github.com/taskdesk/taskdesk/pkg/panicerr"
)

// Dispatcher is the server-side operation surface the cache mutates through.
// *TaskClient is the production implementation.
type Dispatcher interface {
	CreateTask(ctx context.Context, title, description string) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, patch task.PatchRequest) (*task.Task, error)
	ChangeTaskStatus(ctx context.Context, id, status string, force bool) (*task.Task, error)
	DeleteTask(ctx context.Context, id string) (*task.Task, error)
	ListTasks(ctx context.Context, status, search string) ([]*task.Task, error)
}

var _ Dispatcher = (*TaskClient)(nil)

// tempIDPrefix marks optimistic entries whose canonical id is not known yet.
const tempIDPrefix = "tmp-"

// Cache mirrors the server-side task list for a consumer. Every mutating
// intent is applied to the local list immediately, then dispatched
// asynchronously; on failure only that intent's delta is reverted. Intents on
// different tasks are independent; intents on the same task race at the
// server and the last response wins on the local view.
type Cache struct {
	dispatcher Dispatcher

	mu    sync.Mutex
	tasks []*task.Task

	wg conc.WaitGroup

	onChange  func([]*task.Task)
	onFailure func(err error)
}

type CacheOption func(*Cache)

// WithOnChange registers a callback invoked with a snapshot of the list after
// every visible change, optimistic or reconciled.
func WithOnChange(fn func([]*task.Task)) CacheOption {
	return func(c *Cache) {
		c.onChange = fn
	}
}

// WithOnFailure registers a callback invoked when a dispatched intent fails
// after its optimistic delta has been rolled back. Confirmation or retry UX
// belongs to the caller, not the cache.
func WithOnFailure(fn func(err error)) CacheOption {
	return func(c *Cache) {
		c.onFailure = fn
	}
}

func NewCache(dispatcher Dispatcher, opts ...CacheOption) *Cache {
	c := &Cache{dispatcher: dispatcher}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresh replaces the local list with the server's view for the given
// status and search parameters.
func (c *Cache) Refresh(ctx context.Context, status, search string) error {
	tasks, err := c.dispatcher.ListTasks(ctx, status, search)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.tasks = tasks
	c.mu.Unlock()
	c.notify()
	return nil
}

// Tasks returns a snapshot of the current list, newest first.
func (c *Cache) Tasks() []*task.Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Wait blocks until all dispatched intents have resolved.
func (c *Cache) Wait() {
	c.wg.Wait()
}

// Create inserts an optimistic pending task at the head of the list and
// dispatches the creation. The returned temporary id is replaced by the
// canonical server id on success; on failure the entry disappears. The id
// substitution is invisible to OnChange consumers beyond the field change.
func (c *Cache) Create(ctx context.Context, title, description string) string {
	now := time.Now().UTC()
	optimistic := &task.Task{
		ID:          tempIDPrefix + ulid.Make().String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      task.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c.mu.Lock()
	c.tasks = append([]*task.Task{optimistic}, c.tasks...)
	c.mu.Unlock()
	c.notify()

	tempID := optimistic.ID
	c.wg.Go(func() {
		err := panicerr.Safe(func() error {
			created, err := c.dispatcher.CreateTask(ctx, title, description)
			if err != nil {
				return err
			}
			c.replaceEntry(tempID, created)
			return nil
		})()
		if err != nil {
			c.removeEntry(tempID)
			c.fail(err)
		}
	})
	return tempID
}

// Edit applies a field patch optimistically and dispatches it. On failure
// only the fields this patch touched are reverted, so a concurrent intent's
// result on the same task is left alone.
func (c *Cache) Edit(ctx context.Context, id string, patch task.PatchRequest) {
	c.mu.Lock()
	current := c.findLocked(id)
	if current == nil {
		c.mu.Unlock()
		return
	}
	snapshot := current.Clone()
	if patch.Title != nil {
		current.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		current.Status = task.Status(*patch.Status)
	}
	current.UpdatedAt = time.Now().UTC()
	c.mu.Unlock()
	c.notify()

	c.wg.Go(func() {
		err := panicerr.Safe(func() error {
			updated, err := c.dispatcher.UpdateTask(ctx, id, patch)
			if err != nil {
				return err
			}
			c.replaceEntry(id, updated)
			return nil
		})()
		if err != nil {
			c.revertPatch(id, patch, snapshot)
			c.fail(err)
		}
	})
}

// ChangeStatus applies a status transition optimistically and dispatches it.
// A value outside the closed enumeration is rejected synchronously with no
// local change.
func (c *Cache) ChangeStatus(ctx context.Context, id, status string, force bool) error {
	parsed, err := task.ParseStatus(status)
	if err != nil {
		return err
	}

	c.mu.Lock()
	current := c.findLocked(id)
	if current == nil {
		c.mu.Unlock()
		return nil
	}
	snapshot := current.Clone()
	current.Status = parsed
	current.UpdatedAt = time.Now().UTC()
	c.mu.Unlock()
	c.notify()

	c.wg.Go(func() {
		err := panicerr.Safe(func() error {
			updated, err := c.dispatcher.ChangeTaskStatus(ctx, id, status, force)
			if err != nil {
				return err
			}
			c.replaceEntry(id, updated)
			return nil
		})()
		if err != nil {
			c.revertStatus(id, snapshot)
			c.fail(err)
		}
	})
	return nil
}

// Delete removes the entry optimistically and dispatches the deletion. On
// failure the removed snapshot is reinserted.
func (c *Cache) Delete(ctx context.Context, id string) {
	c.mu.Lock()
	snapshot := c.findLocked(id)
	if snapshot == nil {
		c.mu.Unlock()
		return
	}
	snapshot = snapshot.Clone()
	c.deleteLocked(id)
	c.mu.Unlock()
	c.notify()

	c.wg.Go(func() {
		err := panicerr.Safe(func() error {
			_, err := c.dispatcher.DeleteTask(ctx, id)
			return err
		})()
		if err != nil {
			c.reinsertEntry(snapshot)
			c.fail(err)
		}
	})
}

func (c *Cache) findLocked(id string) *task.Task {
	for _, t := range c.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (c *Cache) deleteLocked(id string) {
	for i, t := range c.tasks {
		if t.ID == id {
			c.tasks = append(c.tasks[:i], c.tasks[i+1:]...)
			return
		}
	}
}

func (c *Cache) snapshotLocked() []*task.Task {
	snapshot := make([]*task.Task, len(c.tasks))
	for i, t := range c.tasks {
		snapshot[i] = t.Clone()
	}
	return snapshot
}

// replaceEntry swaps the entry with the canonical server record and restores
// newest-first order, since the server's timestamps are authoritative.
func (c *Cache) replaceEntry(id string, canonical *task.Task) {
	c.mu.Lock()
	replaced := false
	for i, t := range c.tasks {
		if t.ID == id {
			c.tasks[i] = canonical.Clone()
			replaced = true
			break
		}
	}
	if replaced {
		task.SortNewestFirst(c.tasks)
	}
	c.mu.Unlock()
	if replaced {
		c.notify()
	}
}

func (c *Cache) removeEntry(id string) {
	c.mu.Lock()
	c.deleteLocked(id)
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) reinsertEntry(snapshot *task.Task) {
	c.mu.Lock()
	if c.findLocked(snapshot.ID) == nil {
		c.tasks = append(c.tasks, snapshot)
		task.SortNewestFirst(c.tasks)
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) revertPatch(id string, patch task.PatchRequest, snapshot *task.Task) {
	c.mu.Lock()
	if current := c.findLocked(id); current != nil {
		if patch.Title != nil {
			current.Title = snapshot.Title
		}
		if patch.Description != nil {
			current.Description = snapshot.Description
		}
		if patch.Status != nil {
			current.Status = snapshot.Status
		}
		current.UpdatedAt = snapshot.UpdatedAt
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) revertStatus(id string, snapshot *task.Task) {
	c.mu.Lock()
	if current := c.findLocked(id); current != nil {
		current.Status = snapshot.Status
		current.UpdatedAt = snapshot.UpdatedAt
	}
	c.mu.Unlock()
	c.notify()
}

func (c *Cache) notify() {
	if c.onChange == nil {
		return
	}
	c.mu.Lock()
	snapshot := c.snapshotLocked()
	c.mu.Unlock()
	c.onChange(snapshot)
}

func (c *Cache) fail(err error) {
	if c.onFailure != nil {
		c.onFailure(err)
	}
}
