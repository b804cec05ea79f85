package task

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/taskdesk/taskdesk/internal/eventbus"
)

// Service orchestrates validation, lifecycle rules and persistence. It is the
// single place invariants are enforced before a task reaches the store, and
// it is stateless per call: all shared mutable state lives behind Repository.
type Service struct {
	repo Repository
	bus  *eventbus.Bus
}

func NewService(repo Repository, bus *eventbus.Bus) *Service {
	return &Service{
		repo: repo,
		bus:  bus,
	}
}

// parseID rejects identifiers that are not even structurally valid, so a
// malformed id is never reported as "exists but missing".
func parseID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return newInvalidIdentifierError(id)
	}
	return nil
}

func (s *Service) Create(ctx context.Context, raw CreateRequest) (*Task, error) {
	req, err := ValidateCreate(raw)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &Task{
		ID:          ulid.Make().String(),
		Title:       req.Title,
		Description: req.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(eventbus.TypeTaskCreated, t)
	return t, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Task, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return t, nil
}

// List returns the tasks matching the given status and search parameters,
// newest first. An empty result is a valid, non-error outcome.
func (s *Service) List(ctx context.Context, statusParam, searchParam string) ([]*Task, error) {
	filter, err := BuildFilter(statusParam, searchParam)
	if err != nil {
		return nil, err
	}
	tasks, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, translateRepoError(err)
	}
	return tasks, nil
}

// UpdatePatch merges the recognized fields of a validated patch into the
// persisted task. A status present in the patch goes through the same
// forward-only transition check as ChangeStatus.
func (s *Service) UpdatePatch(ctx context.Context, id string, raw PatchRequest) (*Task, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	patch, err := ValidatePatch(raw)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}

	if patch.Status != nil && *patch.Status != t.Status {
		// Evaluated against the current persisted status, not a client-cached
		// one, so stale transitions lose under concurrent modification.
		if !t.Status.CanTransitionTo(*patch.Status) {
			return nil, newInvalidTransitionError(t.Status, *patch.Status)
		}
		t.Status = *patch.Status
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(eventbus.TypeTaskUpdated, t)
	return t, nil
}

// ChangeStatus moves a task to requestedStatus. Without force only the
// forward transitions pending→in-progress→completed are allowed; force
// bypasses the transition table but never the enum check. The status fields
// are the only ones touched.
func (s *Service) ChangeStatus(ctx context.Context, id string, requestedStatus string, force bool) (*Task, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	status, err := ParseStatus(requestedStatus)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if !force && !t.Status.CanTransitionTo(status) {
		return nil, newInvalidTransitionError(t.Status, status)
	}

	t.Status = status
	t.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, t); err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(eventbus.TypeTaskStatusChanged, t)
	return t, nil
}

// Delete removes the task and returns the removed snapshot. After a
// successful delete the id never resolves again.
func (s *Service) Delete(ctx context.Context, id string) (*Task, error) {
	if err := parseID(id); err != nil {
		return nil, err
	}
	t, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, translateRepoError(err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return nil, translateRepoError(err)
	}

	s.publish(eventbus.TypeTaskDeleted, t)
	return t, nil
}

func (s *Service) publish(eventType eventbus.Type, t *Task) {
	if s.bus == nil {
		return
	}
	s.bus.PublishNew(eventType, t.ID, map[string]string{
		"status": string(t.Status),
	})
}
