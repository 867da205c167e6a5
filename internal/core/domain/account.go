package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle of an account transaction.
type TransactionStatus string

const (
	TransactionActive    TransactionStatus = "active"
	TransactionCancelled TransactionStatus = "cancelled"
)

// AccountTransaction is a single income or expense voucher against an account head.
type AccountTransaction struct {
	TransactionID   string            `json:"transactionID"`
	VoucherNumber   string            `json:"voucherNumber"`
	TransactionDate time.Time         `json:"transactionDate"`
	HeadID          string            `json:"headID"`
	HeadName        string            `json:"headName,omitempty"`
	Type            HeadType          `json:"type"`
	Amount          decimal.Decimal   `json:"amount"`
	Description     string            `json:"description"`
	Status          TransactionStatus `json:"status"`
	AuditFields
}

type AccountTransactionFilter struct {
	Range  DateRange
	HeadID *string
	Type   *HeadType
	Limit  int
	Offset int
}
