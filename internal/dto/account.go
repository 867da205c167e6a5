package dto

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountTransactionRequest defines an income or expense voucher.
type CreateAccountTransactionRequest struct {
	TransactionDate Date            `json:"transactionDate" binding:"required"`
	HeadID          string          `json:"headId" binding:"required"`
	Type            domain.HeadType `json:"type" binding:"required,oneof=INCOME EXPENSE"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
}

// ListAccountTransactionsQuery holds the query string of a voucher listing.
type ListAccountTransactionsQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	HeadID   string `form:"headId"`
	Type     string `form:"type" binding:"omitempty,oneof=INCOME EXPENSE"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}
