package services

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
)

// ReferenceChanges is an update request that knows how to apply itself.
type ReferenceChanges[T domain.Referenced] interface {
	ApplyTo(entity T)
}

// ReferenceSvc is the CRUD surface shared by every reference kind.
type ReferenceSvc[T domain.Referenced] interface {
	Create(ctx context.Context, entity T, userID string) (T, error)
	Get(ctx context.Context, id string) (T, error)
	List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error)
	Update(ctx context.Context, id string, changes ReferenceChanges[T], userID string) (T, error)

	// Deactivate soft-deletes every id or none.
	Deactivate(ctx context.Context, ids []string, userID string) error
}
