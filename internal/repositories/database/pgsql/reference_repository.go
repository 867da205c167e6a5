package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// referenceTable describes how one reference kind maps onto its table. The
// shared columns (key, name, description, status, audit) are handled by the
// generic repository; columns and readOnly list the kind's own fields.
type referenceTable[T domain.Referenced] struct {
	kind  domain.ReferenceKind
	table string
	key   string
	// columns are written on insert and update.
	columns []string
	// readOnly columns are only ever scanned; balances move through the ledger.
	readOnly []string
	// typeColumn is matched against ReferenceFilter.TypeCode when set.
	typeColumn string

	newEntity func() T
	// targets returns scan targets for columns followed by readOnly.
	targets func(T) []any
	// values returns the values of columns.
	values func(T) []any
}

// referenceUsage is one place a reference kind can be pointed at from.
type referenceUsage struct {
	table  string
	column string
	where  string
}

// referenceUsages drives the shared soft-delete guard.
var referenceUsages = map[domain.ReferenceKind][]referenceUsage{
	domain.KindCategory: {
		{table: "document_items", column: "category_id"},
		{table: "products", column: "category_id", where: "status = 'active'"},
	},
	domain.KindProduct: {
		{table: "document_items", column: "product_id"},
		{table: "stock_movements", column: "product_id"},
	},
	domain.KindGodown: {
		{table: "document_items", column: "godown_id"},
		{table: "stock_movements", column: "godown_id"},
		{table: "silos", column: "godown_id", where: "status = 'active'"},
	},
	domain.KindSilo: {
		{table: "document_items", column: "silo_id"},
		{table: "stock_movements", column: "silo_id"},
	},
	domain.KindDesignation: {
		{table: "employees", column: "designation_id", where: "status = 'active'"},
	},
	domain.KindParty: {
		{table: "documents", column: "party_id"},
	},
	domain.KindAccountHead: {
		{table: "account_transactions", column: "head_id"},
	},
	domain.KindEmployee: {
		{table: "document_items", column: "employee_id"},
		{table: "attendance", column: "employee_id"},
		{table: "counterparty_ledger", column: "counterparty_id", where: "counterparty_type = 'EMPLOYEE'"},
	},
}

// ensureUnreferenced fails with ErrReferenced when any usage of the kind points at id.
func ensureUnreferenced(ctx context.Context, q querier, kind domain.ReferenceKind, id string) error {
	for _, u := range referenceUsages[kind] {
		query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1`, u.table, u.column)
		if u.where != "" {
			query += " AND " + u.where
		}
		query += ")"

		var used bool
		if err := q.QueryRow(ctx, query, id).Scan(&used); err != nil {
			return mapPgError(err, "failed to check usages of "+string(kind))
		}
		if used {
			return fmt.Errorf("%w: %s %s is used by %s", apperrors.ErrReferenced, kind, id, u.table)
		}
	}
	return nil
}

// PgxReferenceRepository implements the CRUD shared by every reference kind.
type PgxReferenceRepository[T domain.Referenced] struct {
	BaseRepository
	def referenceTable[T]
}

func newPgxReferenceRepository[T domain.Referenced](pool *pgxpool.Pool, def referenceTable[T]) *PgxReferenceRepository[T] {
	return &PgxReferenceRepository[T]{BaseRepository: BaseRepository{Pool: pool}, def: def}
}

func (r *PgxReferenceRepository[T]) selectColumns() string {
	cols := []string{r.def.key, "name", "description", "status"}
	cols = append(cols, r.def.columns...)
	cols = append(cols, r.def.readOnly...)
	cols = append(cols, "created_at", "created_by", "last_updated_at", "last_updated_by")
	return strings.Join(cols, ", ")
}

func (r *PgxReferenceRepository[T]) scanTargets(entity T) []any {
	b := entity.Ref()
	targets := []any{&b.ID, &b.Name, &b.Description, &b.Status}
	targets = append(targets, r.def.targets(entity)...)
	return append(targets, &b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy)
}

func (r *PgxReferenceRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	entity := r.def.newEntity()
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, r.selectColumns(), r.def.table, r.def.key)
	if err := r.Pool.QueryRow(ctx, query, id).Scan(r.scanTargets(entity)...); err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, apperrors.NewNotFoundError(fmt.Sprintf("%s %s", r.def.kind, id))
		}
		return zero, mapPgError(err, fmt.Sprintf("failed to find %s %s", r.def.kind, id))
	}
	return entity, nil
}

func (r *PgxReferenceRepository[T]) List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error) {
	var conds []string
	var args []any
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}
	if filter.Status != nil {
		args = append(args, *filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.TypeCode != "" && r.def.typeColumn != "" {
		args = append(args, filter.TypeCode)
		conds = append(conds, fmt.Sprintf("%s = $%d", r.def.typeColumn, len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, limitArg(filter.Limit), filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM %s
		%s
		ORDER BY name, %s
		LIMIT $%d OFFSET $%d`,
		r.selectColumns(), r.def.table, where, r.def.key, len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err, "failed to list "+string(r.def.kind))
	}
	defer rows.Close()

	entities := []T{}
	total := 0
	for rows.Next() {
		entity := r.def.newEntity()
		if err := rows.Scan(append(r.scanTargets(entity), &total)...); err != nil {
			return nil, 0, mapPgError(err, "failed to scan "+string(r.def.kind))
		}
		entities = append(entities, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapPgError(err, "failed to iterate "+string(r.def.kind))
	}
	return entities, total, nil
}

func (r *PgxReferenceRepository[T]) ActiveNameExists(ctx context.Context, name string, excludeID string) (bool, error) {
	query := fmt.Sprintf(`
		SELECT EXISTS (
			SELECT 1 FROM %s
			WHERE lower(name) = lower($1) AND status = $2 AND %s <> $3
		)`, r.def.table, r.def.key)
	var exists bool
	if err := r.Pool.QueryRow(ctx, query, strings.TrimSpace(name), domain.LifecycleActive, excludeID).Scan(&exists); err != nil {
		return false, mapPgError(err, "failed to check "+string(r.def.kind)+" name")
	}
	return exists, nil
}

func (r *PgxReferenceRepository[T]) Save(ctx context.Context, entity T) error {
	b := entity.Ref()
	cols := append([]string{r.def.key, "name", "description", "status"}, r.def.columns...)
	cols = append(cols, "created_at", "created_by", "last_updated_at", "last_updated_by")

	args := []any{b.ID, b.Name, b.Description, b.Status}
	args = append(args, r.def.values(entity)...)
	args = append(args, b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy)

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`, r.def.table, strings.Join(cols, ", "), placeholders(1, len(args)))
	if _, err := r.Pool.Exec(ctx, query, args...); err != nil {
		return mapPgError(err, fmt.Sprintf("failed to save %s %s", r.def.kind, b.Name))
	}
	return nil
}

// Update writes the entity inside a transaction so the usage guard and the
// status change see the same row state.
func (r *PgxReferenceRepository[T]) Update(ctx context.Context, entity T) error {
	b := entity.Ref()
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	current, err := r.lockStatus(ctx, tx, b.ID)
	if err != nil {
		return err
	}
	if current == domain.LifecycleActive && b.Status == domain.LifecycleInactive {
		if err := ensureUnreferenced(ctx, tx, r.def.kind, b.ID); err != nil {
			return err
		}
	}

	sets := []string{"name = $2", "description = $3", "status = $4"}
	args := []any{b.ID, b.Name, b.Description, b.Status}
	for i, col := range r.def.columns {
		sets = append(sets, fmt.Sprintf("%s = $%d", col, i+5))
	}
	args = append(args, r.def.values(entity)...)
	args = append(args, b.LastUpdatedAt, b.LastUpdatedBy)
	sets = append(sets, fmt.Sprintf("last_updated_at = $%d", len(args)-1), fmt.Sprintf("last_updated_by = $%d", len(args)))

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE %s = $1`, r.def.table, strings.Join(sets, ", "), r.def.key)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return mapPgError(err, fmt.Sprintf("failed to update %s %s", r.def.kind, b.ID))
	}
	return r.Commit(ctx, tx)
}

// Deactivate soft deletes every id or none of them.
func (r *PgxReferenceRepository[T]) Deactivate(ctx context.Context, ids []string, userID string, now time.Time) error {
	ids = uniqueIDs(ids)
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	for _, id := range ids {
		current, err := r.lockStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if current == domain.LifecycleInactive {
			continue
		}
		if err := ensureUnreferenced(ctx, tx, r.def.kind, id); err != nil {
			return err
		}
	}

	query := fmt.Sprintf(`
		UPDATE %s SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE %s = ANY($1) AND status <> $2`, r.def.table, r.def.key)
	if _, err := tx.Exec(ctx, query, ids, domain.LifecycleInactive, now, userID); err != nil {
		return mapPgError(err, "failed to deactivate "+string(r.def.kind))
	}
	return r.Commit(ctx, tx)
}

func (r *PgxReferenceRepository[T]) lockStatus(ctx context.Context, tx pgx.Tx, id string) (domain.Lifecycle, error) {
	var status domain.Lifecycle
	query := fmt.Sprintf(`SELECT status FROM %s WHERE %s = $1 FOR UPDATE`, r.def.table, r.def.key)
	if err := tx.QueryRow(ctx, query, id).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFoundError(fmt.Sprintf("%s %s", r.def.kind, id))
		}
		return "", mapPgError(err, fmt.Sprintf("failed to lock %s %s", r.def.kind, id))
	}
	return status, nil
}

// placeholders renders "$from, …, $to".
func placeholders(from, to int) string {
	ps := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		ps = append(ps, fmt.Sprintf("$%d", i))
	}
	return strings.Join(ps, ", ")
}

func newCategoryRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Category] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Category]{
		kind:      domain.KindCategory,
		table:     "categories",
		key:       "category_id",
		newEntity: func() *domain.Category { return &domain.Category{} },
		targets:   func(*domain.Category) []any { return nil },
		values:    func(*domain.Category) []any { return nil },
	})
}

func newProductRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Product] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Product]{
		kind:       domain.KindProduct,
		table:      "products",
		key:        "product_id",
		columns:    []string{"category_id", "unit", "price_basis"},
		typeColumn: "category_id",
		newEntity:  func() *domain.Product { return &domain.Product{} },
		targets:    func(p *domain.Product) []any { return []any{&p.CategoryID, &p.Unit, &p.PriceBasis} },
		values:     func(p *domain.Product) []any { return []any{p.CategoryID, p.Unit, p.PriceBasis} },
	})
}

func newGodownRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Godown] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Godown]{
		kind:      domain.KindGodown,
		table:     "godowns",
		key:       "godown_id",
		columns:   []string{"location", "capacity"},
		newEntity: func() *domain.Godown { return &domain.Godown{} },
		targets:   func(g *domain.Godown) []any { return []any{&g.Location, &g.Capacity} },
		values:    func(g *domain.Godown) []any { return []any{g.Location, g.Capacity} },
	})
}

func newSiloRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Silo] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Silo]{
		kind:       domain.KindSilo,
		table:      "silos",
		key:        "silo_id",
		columns:    []string{"godown_id", "capacity"},
		typeColumn: "godown_id",
		newEntity:  func() *domain.Silo { return &domain.Silo{} },
		targets:    func(s *domain.Silo) []any { return []any{&s.GodownID, &s.Capacity} },
		values:     func(s *domain.Silo) []any { return []any{s.GodownID, s.Capacity} },
	})
}

func newDesignationRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Designation] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Designation]{
		kind:      domain.KindDesignation,
		table:     "designations",
		key:       "designation_id",
		newEntity: func() *domain.Designation { return &domain.Designation{} },
		targets:   func(*domain.Designation) []any { return nil },
		values:    func(*domain.Designation) []any { return nil },
	})
}

func newPartyRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Party] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Party]{
		kind:       domain.KindParty,
		table:      "parties",
		key:        "party_id",
		columns:    []string{"party_type", "phone", "address"},
		readOnly:   []string{"balance"},
		typeColumn: "party_type",
		newEntity:  func() *domain.Party { return &domain.Party{} },
		targets: func(p *domain.Party) []any {
			return []any{&p.PartyType, &p.Phone, &p.Address, &p.Balance}
		},
		values: func(p *domain.Party) []any { return []any{p.PartyType, p.Phone, p.Address} },
	})
}

func newAccountHeadRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.AccountHead] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.AccountHead]{
		kind:       domain.KindAccountHead,
		table:      "account_heads",
		key:        "head_id",
		columns:    []string{"head_type"},
		typeColumn: "head_type",
		newEntity:  func() *domain.AccountHead { return &domain.AccountHead{} },
		targets:    func(h *domain.AccountHead) []any { return []any{&h.HeadType} },
		values:     func(h *domain.AccountHead) []any { return []any{h.HeadType} },
	})
}

func newEmployeeRepository(pool *pgxpool.Pool) portsrepo.ReferenceRepository[*domain.Employee] {
	return newPgxReferenceRepository(pool, referenceTable[*domain.Employee]{
		kind:       domain.KindEmployee,
		table:      "employees",
		key:        "employee_id",
		columns:    []string{"designation_id", "phone", "daily_wage", "join_date"},
		readOnly:   []string{"balance"},
		typeColumn: "designation_id",
		newEntity:  func() *domain.Employee { return &domain.Employee{} },
		targets: func(e *domain.Employee) []any {
			return []any{&e.DesignationID, &e.Phone, &e.DailyWage, &e.JoinDate, &e.Balance}
		},
		values: func(e *domain.Employee) []any { return []any{e.DesignationID, e.Phone, e.DailyWage, e.JoinDate} },
	})
}
