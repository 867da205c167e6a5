package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

type PgxCounterpartyRepository struct {
	BaseRepository
}

func newPgxCounterpartyRepository(pool *pgxpool.Pool) portsrepo.CounterpartyRepository {
	return &PgxCounterpartyRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.CounterpartyRepository = (*PgxCounterpartyRepository)(nil)

// referenceTables maps each kind to its table and key column.
var referenceTables = map[domain.ReferenceKind]struct{ table, key string }{
	domain.KindCategory:    {"categories", "category_id"},
	domain.KindProduct:     {"products", "product_id"},
	domain.KindGodown:      {"godowns", "godown_id"},
	domain.KindSilo:        {"silos", "silo_id"},
	domain.KindDesignation: {"designations", "designation_id"},
	domain.KindParty:       {"parties", "party_id"},
	domain.KindAccountHead: {"account_heads", "head_id"},
	domain.KindEmployee:    {"employees", "employee_id"},
}

var balanceTables = map[domain.CounterpartyType]struct{ table, key string }{
	domain.CounterpartyParty:    referenceTables[domain.KindParty],
	domain.CounterpartyEmployee: referenceTables[domain.KindEmployee],
}

// EnsureActive takes a share lock on every referenced row so it cannot be
// deactivated before the posting commits.
func (r *PgxCounterpartyRepository) EnsureActive(ctx context.Context, tx pgx.Tx, kind domain.ReferenceKind, ids []string) error {
	ids = uniqueIDs(ids)
	if len(ids) == 0 {
		return nil
	}
	t, ok := referenceTables[kind]
	if !ok {
		return apperrors.NewAppError(500, "unknown reference kind "+string(kind), nil)
	}
	sort.Strings(ids)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = ANY($1) AND status = $2 ORDER BY %s FOR SHARE`, t.key, t.table, t.key, t.key)
	rows, err := tx.Query(ctx, query, ids, domain.LifecycleActive)
	if err != nil {
		return mapPgError(err, "failed to check "+string(kind))
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return mapPgError(err, "failed to scan "+string(kind))
		}
		found[id] = true
	}
	if err := rows.Err(); err != nil {
		return mapPgError(err, "failed to iterate "+string(kind))
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return apperrors.NewValidationError("%s %s does not exist or is inactive", kind, strings.Join(missing, ", "))
	}
	return nil
}

func (r *PgxCounterpartyRepository) LockParty(ctx context.Context, tx pgx.Tx, partyID string) (*domain.Party, error) {
	var p domain.Party
	err := tx.QueryRow(ctx, `
		SELECT party_id, name, description, status, party_type, phone, address, balance,
			created_at, created_by, last_updated_at, last_updated_by
		FROM parties WHERE party_id = $1 FOR UPDATE`, partyID,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Status, &p.PartyType, &p.Phone, &p.Address, &p.Balance,
		&p.CreatedAt, &p.CreatedBy, &p.LastUpdatedAt, &p.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewValidationError("party %s does not exist", partyID)
		}
		return nil, mapPgError(err, "failed to lock party "+partyID)
	}
	return &p, nil
}

func (r *PgxCounterpartyRepository) LockEmployees(ctx context.Context, tx pgx.Tx, employeeIDs []string) (map[string]domain.Employee, error) {
	ids := uniqueIDs(employeeIDs)
	sort.Strings(ids)
	employees := make(map[string]domain.Employee, len(ids))
	if len(ids) == 0 {
		return employees, nil
	}

	rows, err := tx.Query(ctx, `
		SELECT employee_id, name, description, status, designation_id, phone, daily_wage, join_date, balance,
			created_at, created_by, last_updated_at, last_updated_by
		FROM employees WHERE employee_id = ANY($1)
		ORDER BY employee_id
		FOR UPDATE`, ids)
	if err != nil {
		return nil, mapPgError(err, "failed to lock employees")
	}
	defer rows.Close()

	for rows.Next() {
		var e domain.Employee
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Description, &e.Status, &e.DesignationID, &e.Phone, &e.DailyWage, &e.JoinDate, &e.Balance,
			&e.CreatedAt, &e.CreatedBy, &e.LastUpdatedAt, &e.LastUpdatedBy,
		); err != nil {
			return nil, mapPgError(err, "failed to scan employee")
		}
		employees[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to iterate employees")
	}
	return employees, nil
}

// ApplyBalanceDeltas writes one ledger row per delta and moves the balance.
// The ledger's (document, counterparty, revision) key makes a replayed
// revision a no-op.
func (r *PgxCounterpartyRepository) ApplyBalanceDeltas(ctx context.Context, tx pgx.Tx, meta portsrepo.LedgerEntryMeta, deltas []domain.BalanceDelta) error {
	for _, d := range deltas {
		t, ok := balanceTables[d.CounterpartyType]
		if !ok {
			return apperrors.NewAppError(500, "no balance table for "+string(d.CounterpartyType), nil)
		}

		var balance decimal.Decimal
		lockQuery := fmt.Sprintf(`SELECT balance FROM %s WHERE %s = $1 FOR UPDATE`, t.table, t.key)
		if err := tx.QueryRow(ctx, lockQuery, d.CounterpartyID).Scan(&balance); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewValidationError("%s %s does not exist", strings.ToLower(string(d.CounterpartyType)), d.CounterpartyID)
			}
			return mapPgError(err, "failed to lock counterparty balance")
		}
		after := balance.Add(d.Amount)

		var entryID string
		err := tx.QueryRow(ctx, `
			INSERT INTO counterparty_ledger (
				entry_id, document_id, counterparty_type, counterparty_id, revision,
				amount, balance_after, entry_date, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (document_id, counterparty_type, counterparty_id, revision) DO NOTHING
			RETURNING entry_id`,
			uuid.NewString(), meta.DocumentID, d.CounterpartyType, d.CounterpartyID, meta.Revision,
			d.Amount, after, meta.EntryDate, meta.CreatedAt, meta.UserID,
		).Scan(&entryID)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return mapPgError(err, "failed to record ledger entry")
		}

		updateQuery := fmt.Sprintf(`UPDATE %s SET balance = $2, last_updated_at = $3, last_updated_by = $4 WHERE %s = $1`, t.table, t.key)
		if _, err := tx.Exec(ctx, updateQuery, d.CounterpartyID, after, meta.CreatedAt, meta.UserID); err != nil {
			return mapPgError(err, "failed to update counterparty balance")
		}
	}
	return nil
}
