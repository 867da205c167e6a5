package services

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// AccountTransactionSvc manages income and expense vouchers
type AccountTransactionSvc interface {
	CreateTransaction(ctx context.Context, req dto.CreateAccountTransactionRequest, userID string) (*domain.AccountTransaction, error)
	GetTransaction(ctx context.Context, transactionID string) (*domain.AccountTransaction, error)
	ListTransactions(ctx context.Context, filter domain.AccountTransactionFilter) ([]domain.AccountTransaction, int, error)
	CancelTransaction(ctx context.Context, transactionID string, userID string) (*domain.AccountTransaction, error)
	BulkCancelTransactions(ctx context.Context, transactionIDs []string, userID string) (int, error)
}
