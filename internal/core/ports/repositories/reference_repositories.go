package repositories

import (
	"context"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
)

// ReferenceReader defines read operations shared by every reference kind
type ReferenceReader[T domain.Referenced] interface {
	FindByID(ctx context.Context, id string) (T, error)

	// List returns a page of entities and the total match count.
	List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error)

	// ActiveNameExists reports whether another active row of the kind has the name.
	ActiveNameExists(ctx context.Context, name string, excludeID string) (bool, error)
}

// ReferenceWriter defines write operations shared by every reference kind
type ReferenceWriter[T domain.Referenced] interface {
	Save(ctx context.Context, entity T) error

	// Update writes the entity. Moving it from active to inactive runs the usage guard first.
	Update(ctx context.Context, entity T) error

	// Deactivate marks every id inactive in one transaction. Each id passes the usage
	// guard; an unknown id fails the whole call with ErrNotFound.
	Deactivate(ctx context.Context, ids []string, userID string, now time.Time) error
}

type ReferenceRepository[T domain.Referenced] interface {
	ReferenceReader[T]
	ReferenceWriter[T]
}
