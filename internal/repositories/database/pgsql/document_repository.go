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

type PgxDocumentRepository struct {
	BaseRepository
}

// newPgxDocumentRepository creates a repository for document headers, items and stock movements.
func newPgxDocumentRepository(pool *pgxpool.Pool) portsrepo.DocumentRepositoryWithTx {
	return &PgxDocumentRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DocumentRepositoryWithTx = (*PgxDocumentRepository)(nil)

const documentColumns = `
	document_id, reference_number, document_type, document_date, counterparty_type,
	party_id, salary_month, notes, transport_info,
	total_quantity, total_net_weight, invoice_amount, discount, total_amount,
	previous_balance, net_payable, paid_amount, current_balance,
	status, balance_revision, created_at, created_by, last_updated_at, last_updated_by`

const documentItemColumns = `
	item_id, document_id, line_no, category_id, product_id, godown_id, silo_id, employee_id,
	quantity, net_weight, rate, price_basis, total_price, paid_amount, consumed`

const stockMovementColumns = `
	movement_id, document_id, document_item_id, product_id, godown_id, silo_id,
	direction, quantity, net_weight, movement_date, created_at, created_by`

func documentScanTargets(d *domain.Document) []any {
	return []any{
		&d.DocumentID, &d.ReferenceNumber, &d.DocumentType, &d.DocumentDate, &d.CounterpartyType,
		&d.PartyID, &d.SalaryMonth, &d.Notes, &d.TransportInfo,
		&d.TotalQuantity, &d.TotalNetWeight, &d.InvoiceAmount, &d.Discount, &d.TotalAmount,
		&d.PreviousBalance, &d.NetPayable, &d.PaidAmount, &d.CurrentBalance,
		&d.Status, &d.BalanceRevision, &d.CreatedAt, &d.CreatedBy, &d.LastUpdatedAt, &d.LastUpdatedBy,
	}
}

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	if err := row.Scan(documentScanTargets(&d)...); err != nil {
		return nil, err
	}
	return &d, nil
}

func scanDocumentItems(rows pgx.Rows) ([]domain.DocumentItem, error) {
	defer rows.Close()
	items := []domain.DocumentItem{}
	for rows.Next() {
		var it domain.DocumentItem
		if err := rows.Scan(
			&it.ItemID, &it.DocumentID, &it.LineNo, &it.CategoryID, &it.ProductID, &it.GodownID, &it.SiloID, &it.EmployeeID,
			&it.Quantity, &it.NetWeight, &it.Rate, &it.PriceBasis, &it.TotalPrice, &it.PaidAmount, &it.Consumed,
		); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (r *PgxDocumentRepository) findItems(ctx context.Context, q querier, documentID string) ([]domain.DocumentItem, error) {
	rows, err := q.Query(ctx, `SELECT `+documentItemColumns+` FROM document_items WHERE document_id = $1 ORDER BY line_no`, documentID)
	if err != nil {
		return nil, mapPgError(err, "failed to query document items")
	}
	items, err := scanDocumentItems(rows)
	if err != nil {
		return nil, mapPgError(err, "failed to scan document items")
	}
	return items, nil
}

// FindDocumentByID retrieves a header and its items.
func (r *PgxDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := scanDocument(r.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = $1`, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("document " + documentID)
		}
		return nil, mapPgError(err, "failed to find document "+documentID)
	}
	if doc.Items, err = r.findItems(ctx, r.Pool, documentID); err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments retrieves headers without items, newest first.
func (r *PgxDocumentRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	conds := []string{"document_type = $1"}
	args := []any{filter.DocumentType}
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Range.From != nil {
		add("document_date >= $%d", *filter.Range.From)
	}
	if filter.Range.To != nil {
		add("document_date <= $%d", *filter.Range.To)
	}
	if filter.PartyID != nil {
		add("party_id = $%d", *filter.PartyID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(reference_number ILIKE $%d OR notes ILIKE $%d OR transport_info ILIKE $%d)", n, n, n))
	}
	args = append(args, limitArg(filter.Limit), filter.Offset)

	query := fmt.Sprintf(`
		SELECT %s, COUNT(*) OVER() AS total_count
		FROM documents
		WHERE %s
		ORDER BY document_date DESC, created_at DESC
		LIMIT $%d OFFSET $%d`,
		documentColumns, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err, "failed to list documents")
	}
	defer rows.Close()

	docs := []domain.Document{}
	total := 0
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(append(documentScanTargets(&d), &total)...); err != nil {
			return nil, 0, mapPgError(err, "failed to scan document")
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapPgError(err, "failed to iterate documents")
	}
	return docs, total, nil
}

// LockDocument loads a header FOR UPDATE together with its items.
func (r *PgxDocumentRepository) LockDocument(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error) {
	doc, err := scanDocument(tx.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE document_id = $1 FOR UPDATE`, documentID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("document " + documentID)
		}
		return nil, mapPgError(err, "failed to lock document "+documentID)
	}
	if doc.Items, err = r.findItems(ctx, tx, documentID); err != nil {
		return nil, err
	}
	return doc, nil
}

// LockDocuments locks headers in id order so concurrent bulk calls cannot deadlock.
func (r *PgxDocumentRepository) LockDocuments(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, documentIDs []string) ([]domain.Document, error) {
	ids := uniqueIDs(documentIDs)
	rows, err := tx.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE document_id = ANY($1) AND document_type = $2
		ORDER BY document_id
		FOR UPDATE`, ids, docType)
	if err != nil {
		return nil, mapPgError(err, "failed to lock documents")
	}
	defer rows.Close()

	docs := make([]domain.Document, 0, len(ids))
	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(documentScanTargets(&d)...); err != nil {
			return nil, mapPgError(err, "failed to scan document")
		}
		found[d.DocumentID] = true
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to iterate documents")
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, apperrors.NewNotFoundError("documents " + strings.Join(missing, ", "))
	}
	return docs, nil
}

func (r *PgxDocumentRepository) ReferenceNumberExists(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, referenceNumber string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE document_type = $1 AND reference_number = $2)`,
		docType, referenceNumber,
	).Scan(&exists)
	if err != nil {
		return false, mapPgError(err, "failed to check reference number")
	}
	return exists, nil
}

func (r *PgxDocumentRepository) ActiveSalaryRunExists(ctx context.Context, tx pgx.Tx, month string) (bool, error) {
	var exists bool
	err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM documents WHERE document_type = $1 AND salary_month = $2 AND status <> $3)`,
		domain.SalaryRun, month, domain.StatusCancelled,
	).Scan(&exists)
	if err != nil {
		return false, mapPgError(err, "failed to check salary run")
	}
	return exists, nil
}

func (r *PgxDocumentRepository) InsertDocument(ctx context.Context, tx pgx.Tx, d domain.Document) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
		d.DocumentID, d.ReferenceNumber, d.DocumentType, d.DocumentDate, d.CounterpartyType,
		d.PartyID, d.SalaryMonth, d.Notes, d.TransportInfo,
		d.TotalQuantity, d.TotalNetWeight, d.InvoiceAmount, d.Discount, d.TotalAmount,
		d.PreviousBalance, d.NetPayable, d.PaidAmount, d.CurrentBalance,
		d.Status, d.BalanceRevision, d.CreatedAt, d.CreatedBy, d.LastUpdatedAt, d.LastUpdatedBy,
	)
	return mapPgError(err, "failed to insert document "+d.ReferenceNumber)
}

func (r *PgxDocumentRepository) UpdateDocumentHeader(ctx context.Context, tx pgx.Tx, d domain.Document) error {
	tag, err := tx.Exec(ctx, `
		UPDATE documents SET
			notes = $2, transport_info = $3,
			total_quantity = $4, total_net_weight = $5, invoice_amount = $6, discount = $7, total_amount = $8,
			previous_balance = $9, net_payable = $10, paid_amount = $11, current_balance = $12,
			status = $13, balance_revision = $14, last_updated_at = $15, last_updated_by = $16
		WHERE document_id = $1`,
		d.DocumentID, d.Notes, d.TransportInfo,
		d.TotalQuantity, d.TotalNetWeight, d.InvoiceAmount, d.Discount, d.TotalAmount,
		d.PreviousBalance, d.NetPayable, d.PaidAmount, d.CurrentBalance,
		d.Status, d.BalanceRevision, d.LastUpdatedAt, d.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update document "+d.DocumentID)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("document " + d.DocumentID)
	}
	return nil
}

func (r *PgxDocumentRepository) UpdateDocumentStatuses(ctx context.Context, tx pgx.Tx, documentIDs []string, status domain.DocumentStatus, userID string, now time.Time) error {
	if len(documentIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE documents SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE document_id = ANY($1)`,
		documentIDs, status, now, userID,
	)
	return mapPgError(err, "failed to update document status")
}

func (r *PgxDocumentRepository) InsertDocumentItems(ctx context.Context, tx pgx.Tx, items []domain.DocumentItem) error {
	batch := &pgx.Batch{}
	query := `INSERT INTO document_items (` + documentItemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`
	for _, it := range items {
		batch.Queue(query,
			it.ItemID, it.DocumentID, it.LineNo, it.CategoryID, it.ProductID, it.GodownID, it.SiloID, it.EmployeeID,
			it.Quantity, it.NetWeight, it.Rate, it.PriceBasis, it.TotalPrice, it.PaidAmount, it.Consumed,
		)
	}
	return sendBatch(ctx, tx, batch, "failed to insert document items")
}

func (r *PgxDocumentRepository) DeleteDocumentItems(ctx context.Context, tx pgx.Tx, documentID string) error {
	_, err := tx.Exec(ctx, `DELETE FROM document_items WHERE document_id = $1`, documentID)
	return mapPgError(err, "failed to delete document items")
}

// InsertStockMovements appends movements. Rows are never updated afterwards.
func (r *PgxDocumentRepository) InsertStockMovements(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	batch := &pgx.Batch{}
	query := `INSERT INTO stock_movements (` + stockMovementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	for _, m := range movements {
		batch.Queue(query,
			m.MovementID, m.DocumentID, m.DocumentItemID, m.ProductID, m.GodownID, m.SiloID,
			m.Direction, m.Quantity, m.NetWeight, m.MovementDate, m.CreatedAt, m.CreatedBy,
		)
	}
	return sendBatch(ctx, tx, batch, "failed to insert stock movements")
}

func (r *PgxDocumentRepository) FindMovementsByItemIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) ([]domain.StockMovement, error) {
	if len(itemIDs) == 0 {
		return []domain.StockMovement{}, nil
	}
	rows, err := tx.Query(ctx, `
		SELECT `+stockMovementColumns+`
		FROM stock_movements
		WHERE document_item_id = ANY($1)
		ORDER BY created_at, movement_id`, itemIDs)
	if err != nil {
		return nil, mapPgError(err, "failed to query stock movements")
	}
	defer rows.Close()

	movements := []domain.StockMovement{}
	for rows.Next() {
		var m domain.StockMovement
		if err := rows.Scan(
			&m.MovementID, &m.DocumentID, &m.DocumentItemID, &m.ProductID, &m.GodownID, &m.SiloID,
			&m.Direction, &m.Quantity, &m.NetWeight, &m.MovementDate, &m.CreatedAt, &m.CreatedBy,
		); err != nil {
			return nil, mapPgError(err, "failed to scan stock movement")
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to iterate stock movements")
	}
	return movements, nil
}
