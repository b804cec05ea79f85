package task

import "context"

// Repository is the durable store contract for tasks. Update and Delete must
// be all-or-nothing for a given id: they either mutate exactly the current
// record or report absence, never a partial write.
type Repository interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (*Task, error)
	List(ctx context.Context, filter Filter) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	Delete(ctx context.Context, id string) error
}
