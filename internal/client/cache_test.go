package client

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskdesk/taskdesk/internal/task"
	"github.com/taskdesk/taskdesk/pkg/cerr"
)

// fakeDispatcher implements Dispatcher against an in-memory map. Setting fail
// makes every mutating call return failErr; release, when non-nil, holds each
// dispatch until the test closes it, so optimistic state can be observed
// mid-flight.
type fakeDispatcher struct {
	mu      sync.Mutex
	tasks   map[string]*task.Task
	fail    bool
	failErr error
	release chan struct{}
}

func newFakeDispatcher() *fakeDispatcher {
	return &fakeDispatcher{
		tasks:   make(map[string]*task.Task),
		failErr: cerr.NewKindError(cerr.Unavailable, task.KindStoreUnavailable, "store unavailable", nil),
	}
}

func (d *fakeDispatcher) wait() {
	if d.release != nil {
		<-d.release
	}
}

func (d *fakeDispatcher) CreateTask(_ context.Context, title, description string) (*task.Task, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, d.failErr
	}
	now := time.Now().UTC()
	t := &task.Task{
		ID:          ulid.Make().String(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      task.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.tasks[t.ID] = t.Clone()
	return t, nil
}

func (d *fakeDispatcher) UpdateTask(_ context.Context, id string, patch task.PatchRequest) (*task.Task, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, d.failErr
	}
	t, ok := d.tasks[id]
	if !ok {
		return nil, cerr.NewKindError(cerr.NotFound, task.KindNotFound, "task not found", nil)
	}
	if patch.Title != nil {
		t.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		t.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Status != nil {
		t.Status = task.Status(*patch.Status)
	}
	t.UpdatedAt = time.Now().UTC()
	return t.Clone(), nil
}

func (d *fakeDispatcher) ChangeTaskStatus(_ context.Context, id, status string, _ bool) (*task.Task, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, d.failErr
	}
	t, ok := d.tasks[id]
	if !ok {
		return nil, cerr.NewKindError(cerr.NotFound, task.KindNotFound, "task not found", nil)
	}
	t.Status = task.Status(status)
	t.UpdatedAt = time.Now().UTC()
	return t.Clone(), nil
}

func (d *fakeDispatcher) DeleteTask(_ context.Context, id string) (*task.Task, error) {
	d.wait()
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, d.failErr
	}
	t, ok := d.tasks[id]
	if !ok {
		return nil, cerr.NewKindError(cerr.NotFound, task.KindNotFound, "task not found", nil)
	}
	delete(d.tasks, id)
	return t, nil
}

func (d *fakeDispatcher) ListTasks(_ context.Context, status, search string) ([]*task.Task, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	filter, err := task.BuildFilter(status, search)
	if err != nil {
		return nil, err
	}
	var out []*task.Task
	for _, t := range d.tasks {
		if filter.Matches(t) {
			out = append(out, t.Clone())
		}
	}
	task.SortNewestFirst(out)
	return out, nil
}

func (d *fakeDispatcher) seed(t *testing.T, c *Cache, title, description string) *task.Task {
	t.Helper()
	created, err := d.CreateTask(context.Background(), title, description)
	require.NoError(t, err)
	require.NoError(t, c.Refresh(context.Background(), "", ""))
	return created
}

func TestCacheRefresh(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)

	_, err := d.CreateTask(context.Background(), "a", "b")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(context.Background(), "", ""))
	assert.Len(t, c.Tasks(), 1)
}

func TestCacheCreateOptimisticThenCanonical(t *testing.T) {
	d := newFakeDispatcher()
	d.release = make(chan struct{})
	c := NewCache(d)

	tempID := c.Create(context.Background(), " Buy milk ", "two liters")
	require.True(t, strings.HasPrefix(tempID, "tmp-"))

	// The entry is visible immediately, before the dispatch resolves.
	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, tempID, tasks[0].ID)
	assert.Equal(t, "Buy milk", tasks[0].Title)
	assert.Equal(t, task.StatusPending, tasks[0].Status)

	close(d.release)
	c.Wait()

	tasks = c.Tasks()
	require.Len(t, tasks, 1)
	assert.False(t, strings.HasPrefix(tasks[0].ID, "tmp-"), "temporary id should be replaced")
	assert.Equal(t, "Buy milk", tasks[0].Title)
}

func TestCacheCreateFailureRemovesEntry(t *testing.T) {
	d := newFakeDispatcher()
	d.fail = true

	var failed error
	c := NewCache(d, WithOnFailure(func(err error) { failed = err }))

	c.Create(context.Background(), "t", "d")
	c.Wait()

	assert.Empty(t, c.Tasks())
	require.Error(t, failed)
	assert.True(t, cerr.IsKind(failed, task.KindStoreUnavailable))
}

func TestCacheEditOptimisticAndRollback(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "original", "desc")

	d.release = make(chan struct{})
	d.fail = true
	title := "renamed"
	c.Edit(context.Background(), created.ID, task.PatchRequest{Title: &title})

	// Optimistically applied.
	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "renamed", tasks[0].Title)

	close(d.release)
	c.Wait()

	// Rolled back after the failure; the untouched field is intact.
	tasks = c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "original", tasks[0].Title)
	assert.Equal(t, "desc", tasks[0].Description)
}

func TestCacheEditSuccessKeepsCanonical(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "original", "desc")

	title := "renamed"
	c.Edit(context.Background(), created.ID, task.PatchRequest{Title: &title})
	c.Wait()

	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "renamed", tasks[0].Title)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestCacheChangeStatusInvalidValueIsSynchronous(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "t", "d")

	err := c.ChangeStatus(context.Background(), created.ID, "archived", false)
	require.Error(t, err)
	assert.True(t, cerr.IsKind(err, task.KindInvalidStatus))

	// No local change and nothing dispatched.
	c.Wait()
	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusPending, tasks[0].Status)
}

func TestCacheChangeStatusRollback(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "t", "d")

	d.fail = true
	require.NoError(t, c.ChangeStatus(context.Background(), created.ID, "in-progress", false))
	c.Wait()

	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, task.StatusPending, tasks[0].Status)
}

func TestCacheDeleteRollbackReinserts(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "t", "d")

	d.release = make(chan struct{})
	d.fail = true
	c.Delete(context.Background(), created.ID)

	// Optimistically removed.
	assert.Empty(t, c.Tasks())

	close(d.release)
	c.Wait()

	// Reinserted after the failure.
	tasks := c.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, created.ID, tasks[0].ID)
}

func TestCacheDeleteSuccess(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	created := d.seed(t, c, "t", "d")

	c.Delete(context.Background(), created.ID)
	c.Wait()

	assert.Empty(t, c.Tasks())
	_, err := d.DeleteTask(context.Background(), created.ID)
	assert.True(t, cerr.IsKind(err, task.KindNotFound), "server copy should be gone")
}

func TestCacheOnChangeSnapshots(t *testing.T) {
	d := newFakeDispatcher()

	var (
		mu        sync.Mutex
		snapshots [][]*task.Task
	)
	c := NewCache(d, WithOnChange(func(tasks []*task.Task) {
		mu.Lock()
		snapshots = append(snapshots, tasks)
		mu.Unlock()
	}))

	c.Create(context.Background(), "t", "d")
	c.Wait()

	mu.Lock()
	defer mu.Unlock()
	// One notification for the optimistic insert, one for the reconciliation.
	require.GreaterOrEqual(t, len(snapshots), 2)
	assert.True(t, strings.HasPrefix(snapshots[0][0].ID, "tmp-"))
	last := snapshots[len(snapshots)-1]
	require.Len(t, last, 1)
	assert.False(t, strings.HasPrefix(last[0].ID, "tmp-"))
}

func TestCacheIndependentIntents(t *testing.T) {
	d := newFakeDispatcher()
	c := NewCache(d)
	first := d.seed(t, c, "first", "d")
	second := d.seed(t, c, "second", "d")

	// The failing delete of one task must not disturb the edit of another.
	title := "renamed"
	c.Edit(context.Background(), first.ID, task.PatchRequest{Title: &title})
	c.Wait()

	d.fail = true
	c.Delete(context.Background(), second.ID)
	c.Wait()

	tasks := c.Tasks()
	require.Len(t, tasks, 2)
	byID := map[string]*task.Task{}
	for _, tk := range tasks {
		byID[tk.ID] = tk
	}
	assert.Equal(t, "renamed", byID[first.ID].Title)
	assert.NotNil(t, byID[second.ID])
}
