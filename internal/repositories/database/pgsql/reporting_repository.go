package pgsql

import (
	"context"
	"fmt"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// conditions accumulates WHERE clauses with positional arguments.
type conditions struct {
	clauses []string
	args    []any
}

func (c *conditions) add(clause string, arg any) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(clause, len(c.args)))
}

func (c *conditions) addRange(column string, r domain.DateRange) {
	if r.From != nil {
		c.add(column+" >= $%d", *r.From)
	}
	if r.To != nil {
		c.add(column+" <= $%d", *r.To)
	}
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.clauses, " AND ")
}

// SummarizeDocuments aggregates document headers per type
func (r *reportingRepository) SummarizeDocuments(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) ([]domain.DocumentSummary, error) {
	var c conditions
	c.addRange("document_date", dateRange)
	if !includeCancelled {
		c.add("status <> $%d", domain.StatusCancelled)
	}

	query := `
		SELECT document_type, COUNT(*), COALESCE(SUM(total_amount), 0), COALESCE(SUM(paid_amount), 0)
		FROM documents
		` + c.where() + `
		GROUP BY document_type
		ORDER BY document_type`

	rows, err := r.Pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying document summary: %w", err)
	}
	defer rows.Close()

	result := []domain.DocumentSummary{}
	for rows.Next() {
		var s domain.DocumentSummary
		if err := rows.Scan(&s.DocumentType, &s.Count, &s.TotalAmount, &s.PaidAmount); err != nil {
			return nil, fmt.Errorf("error scanning document summary row: %w", err)
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating document summary rows: %w", err)
	}
	return result, nil
}

// SummarizeAccountHeads totals account transactions per head
func (r *reportingRepository) SummarizeAccountHeads(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) ([]domain.HeadAmount, error) {
	var c conditions
	c.addRange("t.transaction_date", dateRange)
	if !includeCancelled {
		c.add("t.status <> $%d", domain.TransactionCancelled)
	}

	query := `
		SELECT h.head_id, h.name, h.head_type, COALESCE(SUM(t.amount), 0)
		FROM account_transactions t
		JOIN account_heads h ON h.head_id = t.head_id
		` + c.where() + `
		GROUP BY h.head_id, h.name, h.head_type
		ORDER BY h.head_type, h.name`

	rows, err := r.Pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying account head totals: %w", err)
	}
	defer rows.Close()

	result := []domain.HeadAmount{}
	for rows.Next() {
		var h domain.HeadAmount
		if err := rows.Scan(&h.HeadID, &h.HeadName, &h.HeadType, &h.Amount); err != nil {
			return nil, fmt.Errorf("error scanning account head row: %w", err)
		}
		result = append(result, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account head rows: %w", err)
	}
	return result, nil
}

// GetStockRegister sums movements per product and location. Movements before
// the range start form the opening figures.
func (r *reportingRepository) GetStockRegister(ctx context.Context, filter domain.StockRegisterFilter) ([]domain.StockRegisterRow, error) {
	c := conditions{args: []any{filter.Range.From}}
	if filter.Range.To != nil {
		c.add("m.movement_date <= $%d", *filter.Range.To)
	}
	if filter.ProductID != nil {
		c.add("m.product_id = $%d", *filter.ProductID)
	}
	if filter.GodownID != nil {
		c.add("m.godown_id = $%d", *filter.GodownID)
	}
	if filter.SiloID != nil {
		c.add("m.silo_id = $%d", *filter.SiloID)
	}
	if !filter.IncludeCancelled {
		c.add("d.status <> $%d", domain.StatusCancelled)
	}

	query := `
		SELECT
			m.product_id,
			p.name,
			m.godown_id,
			m.silo_id,
			COALESCE(g.name, s.name, '') AS location_name,
			COALESCE(SUM(CASE WHEN $1::date IS NOT NULL AND m.movement_date < $1::date
				THEN CASE WHEN m.direction = 'IN' THEN m.quantity ELSE -m.quantity END ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN $1::date IS NOT NULL AND m.movement_date < $1::date
				THEN CASE WHEN m.direction = 'IN' THEN m.net_weight ELSE -m.net_weight END ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ($1::date IS NULL OR m.movement_date >= $1::date) AND m.direction = 'IN'
				THEN m.quantity ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ($1::date IS NULL OR m.movement_date >= $1::date) AND m.direction = 'IN'
				THEN m.net_weight ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ($1::date IS NULL OR m.movement_date >= $1::date) AND m.direction = 'OUT'
				THEN m.quantity ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN ($1::date IS NULL OR m.movement_date >= $1::date) AND m.direction = 'OUT'
				THEN m.net_weight ELSE 0 END), 0)
		FROM stock_movements m
		JOIN documents d ON d.document_id = m.document_id
		JOIN products p ON p.product_id = m.product_id
		LEFT JOIN godowns g ON g.godown_id = m.godown_id
		LEFT JOIN silos s ON s.silo_id = m.silo_id
		` + c.where() + `
		GROUP BY m.product_id, p.name, m.godown_id, m.silo_id, g.name, s.name
		ORDER BY p.name, location_name`

	rows, err := r.Pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying stock register: %w", err)
	}
	defer rows.Close()

	result := []domain.StockRegisterRow{}
	for rows.Next() {
		var row domain.StockRegisterRow
		if err := rows.Scan(
			&row.ProductID, &row.ProductName, &row.GodownID, &row.SiloID, &row.LocationName,
			&row.OpeningQty, &row.OpeningWeight, &row.InQty, &row.InWeight, &row.OutQty, &row.OutWeight,
		); err != nil {
			return nil, fmt.Errorf("error scanning stock register row: %w", err)
		}
		row.Close()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stock register rows: %w", err)
	}
	return result, nil
}

// ListLedgerEntries returns a counterparty's applied balance changes in posting order
func (r *reportingRepository) ListLedgerEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	var c conditions
	c.add("l.counterparty_type = $%d", filter.CounterpartyType)
	c.add("l.counterparty_id = $%d", filter.CounterpartyID)
	c.addRange("l.entry_date", filter.Range)

	query := `
		SELECT l.entry_id, l.document_id, d.reference_number, d.document_type,
			l.counterparty_type, l.counterparty_id, l.revision, l.amount, l.balance_after,
			l.entry_date, l.created_at, l.created_by
		FROM counterparty_ledger l
		JOIN documents d ON d.document_id = l.document_id
		` + c.where() + `
		ORDER BY l.created_at, l.document_id, l.revision`

	rows, err := r.Pool.Query(ctx, query, c.args...)
	if err != nil {
		return nil, fmt.Errorf("error querying counterparty ledger: %w", err)
	}
	defer rows.Close()

	result := []domain.LedgerEntry{}
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(
			&e.EntryID, &e.DocumentID, &e.ReferenceNumber, &e.DocumentType,
			&e.CounterpartyType, &e.CounterpartyID, &e.Revision, &e.Amount, &e.BalanceAfter,
			&e.EntryDate, &e.CreatedAt, &e.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("error scanning ledger row: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ledger rows: %w", err)
	}
	return result, nil
}

func (r *reportingRepository) SaveExportLog(ctx context.Context, log domain.ExportLog) error {
	_, err := r.Pool.Exec(ctx, `
		INSERT INTO export_logs (export_id, report_name, parameters, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		log.ExportID, log.ReportName, log.Parameters, log.UserID, log.CreatedAt,
	)
	return mapPgError(err, "failed to save export log")
}
