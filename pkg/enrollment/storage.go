package enrollment

import "context"

// Storage persists bindings. Bindings are unique per (owner, label).
type Storage interface {
	// LoadBinding returns ErrBindingNotFound when nothing is stored for owner and label.
	LoadBinding(ctx context.Context, owner, label string) (*Binding, error)
	// SaveBinding inserts or replaces the binding stored under its owner and label.
	SaveBinding(ctx context.Context, b *Binding) error
	DeleteBinding(ctx context.Context, owner, label string) error
	ListBindings(ctx context.Context, owner string) ([]*Binding, error)
}
