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

type PgxAccountTransactionRepository struct {
	BaseRepository
}

func newPgxAccountTransactionRepository(pool *pgxpool.Pool) portsrepo.AccountTransactionRepositoryWithTx {
	return &PgxAccountTransactionRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountTransactionRepositoryWithTx = (*PgxAccountTransactionRepository)(nil)

const accountTransactionSelect = `
	SELECT t.transaction_id, t.voucher_number, t.transaction_date, t.head_id, h.name, t.transaction_type,
		t.amount, t.description, t.status, t.created_at, t.created_by, t.last_updated_at, t.last_updated_by
	FROM account_transactions t
	JOIN account_heads h ON h.head_id = t.head_id`

func accountTransactionTargets(t *domain.AccountTransaction) []any {
	return []any{
		&t.TransactionID, &t.VoucherNumber, &t.TransactionDate, &t.HeadID, &t.HeadName, &t.Type,
		&t.Amount, &t.Description, &t.Status, &t.CreatedAt, &t.CreatedBy, &t.LastUpdatedAt, &t.LastUpdatedBy,
	}
}

func (r *PgxAccountTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.AccountTransaction, error) {
	var t domain.AccountTransaction
	err := r.Pool.QueryRow(ctx, accountTransactionSelect+` WHERE t.transaction_id = $1`, transactionID).
		Scan(accountTransactionTargets(&t)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account transaction " + transactionID)
		}
		return nil, mapPgError(err, "failed to find account transaction "+transactionID)
	}
	return &t, nil
}

func (r *PgxAccountTransactionRepository) ListTransactions(ctx context.Context, filter domain.AccountTransactionFilter) ([]domain.AccountTransaction, int, error) {
	conds := []string{"TRUE"}
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if filter.Range.From != nil {
		add("t.transaction_date >= $%d", *filter.Range.From)
	}
	if filter.Range.To != nil {
		add("t.transaction_date <= $%d", *filter.Range.To)
	}
	if filter.HeadID != nil {
		add("t.head_id = $%d", *filter.HeadID)
	}
	if filter.Type != nil {
		add("t.transaction_type = $%d", *filter.Type)
	}
	args = append(args, limitArg(filter.Limit), filter.Offset)

	query := fmt.Sprintf(`
		SELECT q.*, COUNT(*) OVER() FROM (%s WHERE %s) q
		ORDER BY q.transaction_date DESC, q.created_at DESC
		LIMIT $%d OFFSET $%d`,
		accountTransactionSelect, strings.Join(conds, " AND "), len(args)-1, len(args))

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapPgError(err, "failed to list account transactions")
	}
	defer rows.Close()

	txns := []domain.AccountTransaction{}
	total := 0
	for rows.Next() {
		var t domain.AccountTransaction
		if err := rows.Scan(append(accountTransactionTargets(&t), &total)...); err != nil {
			return nil, 0, mapPgError(err, "failed to scan account transaction")
		}
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapPgError(err, "failed to iterate account transactions")
	}
	return txns, total, nil
}

func (r *PgxAccountTransactionRepository) InsertTransaction(ctx context.Context, tx pgx.Tx, t domain.AccountTransaction) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO account_transactions (
			transaction_id, voucher_number, transaction_date, head_id, transaction_type,
			amount, description, status, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.TransactionID, t.VoucherNumber, t.TransactionDate, t.HeadID, t.Type,
		t.Amount, t.Description, t.Status, t.CreatedAt, t.CreatedBy, t.LastUpdatedAt, t.LastUpdatedBy,
	)
	return mapPgError(err, "failed to insert account transaction "+t.VoucherNumber)
}

func (r *PgxAccountTransactionRepository) LockTransactions(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.AccountTransaction, error) {
	ids := uniqueIDs(transactionIDs)
	rows, err := tx.Query(ctx, accountTransactionSelect+`
		WHERE t.transaction_id = ANY($1)
		ORDER BY t.transaction_id
		FOR UPDATE OF t`, ids)
	if err != nil {
		return nil, mapPgError(err, "failed to lock account transactions")
	}
	defer rows.Close()

	txns := make([]domain.AccountTransaction, 0, len(ids))
	found := make(map[string]bool, len(ids))
	for rows.Next() {
		var t domain.AccountTransaction
		if err := rows.Scan(accountTransactionTargets(&t)...); err != nil {
			return nil, mapPgError(err, "failed to scan account transaction")
		}
		found[t.TransactionID] = true
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapPgError(err, "failed to iterate account transactions")
	}
	if missing := missingIDs(ids, found); len(missing) > 0 {
		return nil, apperrors.NewNotFoundError("account transactions " + strings.Join(missing, ", "))
	}
	return txns, nil
}

func (r *PgxAccountTransactionRepository) UpdateTransactionStatuses(ctx context.Context, tx pgx.Tx, transactionIDs []string, status domain.TransactionStatus, userID string, now time.Time) error {
	if len(transactionIDs) == 0 {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE account_transactions SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE transaction_id = ANY($1)`,
		transactionIDs, status, now, userID,
	)
	return mapPgError(err, "failed to update account transaction status")
}
