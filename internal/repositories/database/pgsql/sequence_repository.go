package pgsql

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxSequenceRepository struct {
	BaseRepository
}

func newPgxSequenceRepository(pool *pgxpool.Pool) portsrepo.SequenceRepository {
	return &PgxSequenceRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SequenceRepository = (*PgxSequenceRepository)(nil)

// NextValue bumps the counter row, creating it at 1 for a new period. The row
// lock is held until the caller's transaction ends, so a rolled back posting
// releases its number.
func (r *PgxSequenceRepository) NextValue(ctx context.Context, tx pgx.Tx, seq domain.SequenceType, period string) (int64, error) {
	var value int64
	err := tx.QueryRow(ctx, `
		INSERT INTO sequence_counters (sequence_type, period, last_value)
		VALUES ($1, $2, 1)
		ON CONFLICT (sequence_type, period)
		DO UPDATE SET last_value = sequence_counters.last_value + 1
		RETURNING last_value`,
		seq, period,
	).Scan(&value)
	if err != nil {
		return 0, mapPgError(err, "failed to issue next value for "+string(seq))
	}
	return value, nil
}
