package repositories

import (
	"context"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// AccountTransactionReader defines read operations for income and expense vouchers
type AccountTransactionReader interface {
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.AccountTransaction, error)
	ListTransactions(ctx context.Context, filter domain.AccountTransactionFilter) ([]domain.AccountTransaction, int, error)
}

// AccountTransactionWriter defines write operations for income and expense vouchers
type AccountTransactionWriter interface {
	InsertTransaction(ctx context.Context, tx pgx.Tx, txn domain.AccountTransaction) error

	// LockTransactions locks every voucher. A missing id fails with ErrNotFound.
	LockTransactions(ctx context.Context, tx pgx.Tx, transactionIDs []string) ([]domain.AccountTransaction, error)

	UpdateTransactionStatuses(ctx context.Context, tx pgx.Tx, transactionIDs []string, status domain.TransactionStatus, userID string, now time.Time) error
}

type AccountTransactionRepositoryWithTx interface {
	AccountTransactionReader
	AccountTransactionWriter
	TransactionManager
}
