package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType identifies which posting workflow a document follows.
type DocumentType string

const (
	PaddyPurchase DocumentType = "PADDY_PURCHASE"
	RicePurchase  DocumentType = "RICE_PURCHASE"
	Sale          DocumentType = "SALE"
	Production    DocumentType = "PRODUCTION"
	SalaryRun     DocumentType = "SALARY"
)

func (t DocumentType) IsValid() bool {
	switch t {
	case PaddyPurchase, RicePurchase, Sale, Production, SalaryRun:
		return true
	}
	return false
}

func (t DocumentType) IsPurchase() bool {
	return t == PaddyPurchase || t == RicePurchase
}

// CounterpartyType returns whose running balance a document of this type moves.
func (t DocumentType) CounterpartyType() CounterpartyType {
	switch t {
	case PaddyPurchase, RicePurchase, Sale:
		return CounterpartyParty
	case SalaryRun:
		return CounterpartyEmployee
	}
	return CounterpartyNone
}

// PreviousBalanceFrom converts a party's signed running balance into the
// previous balance carried onto a new document. Purchases carry what the mill
// already owes the supplier, sales carry what the customer already owes.
func (t DocumentType) PreviousBalanceFrom(partyBalance decimal.Decimal) decimal.Decimal {
	switch {
	case t.IsPurchase():
		return partyBalance.Neg()
	case t == Sale:
		return partyBalance
	}
	return decimal.Zero
}

// DocumentStatus is the lifecycle of a posted document.
type DocumentStatus string

const (
	StatusActive    DocumentStatus = "active"
	StatusCompleted DocumentStatus = "completed"
	StatusCancelled DocumentStatus = "cancelled"
)

func (s DocumentStatus) IsValid() bool {
	return s == StatusActive || s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether moving from s to next is allowed.
// Staying in the same status is always allowed; cancelled is terminal.
func (s DocumentStatus) CanTransitionTo(next DocumentStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case StatusActive:
		return next == StatusCompleted || next == StatusCancelled
	case StatusCompleted:
		return next == StatusCancelled
	}
	return false
}

// CounterpartyType names the table holding a counterparty's running balance.
type CounterpartyType string

const (
	CounterpartyParty    CounterpartyType = "PARTY"
	CounterpartyEmployee CounterpartyType = "EMPLOYEE"
	CounterpartyNone     CounterpartyType = "NONE"
)

// PriceBasis decides whether an item's rate applies to its quantity or its net weight.
type PriceBasis string

const (
	PriceByQuantity PriceBasis = "QUANTITY"
	PriceByWeight   PriceBasis = "WEIGHT"
)

func (p PriceBasis) IsValid() bool {
	return p == PriceByQuantity || p == PriceByWeight
}

// DocumentTotals are the derived amounts stored on every document header.
type DocumentTotals struct {
	TotalQuantity   decimal.Decimal `json:"totalQuantity"`
	TotalNetWeight  decimal.Decimal `json:"totalNetWeight"`
	InvoiceAmount   decimal.Decimal `json:"invoiceAmount"`
	Discount        decimal.Decimal `json:"discount"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	NetPayable      decimal.Decimal `json:"netPayable"`
	PaidAmount      decimal.Decimal `json:"paidAmount"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
}

// Document is the header of a purchase, sale, production order or salary run.
type Document struct {
	DocumentID       string           `json:"documentID"`
	ReferenceNumber  string           `json:"referenceNumber"`
	DocumentType     DocumentType     `json:"documentType"`
	DocumentDate     time.Time        `json:"documentDate"`
	CounterpartyType CounterpartyType `json:"counterpartyType"`
	PartyID          *string          `json:"partyID,omitempty"`
	SalaryMonth      *string          `json:"salaryMonth,omitempty"`
	Notes            string           `json:"notes"`
	TransportInfo    string           `json:"transportInfo"`
	DocumentTotals
	Status          DocumentStatus `json:"status"`
	BalanceRevision int            `json:"balanceRevision"`
	Items           []DocumentItem `json:"items,omitempty"`
	AuditFields
}

// DocumentItem is one line of a document.
type DocumentItem struct {
	ItemID     string          `json:"itemID"`
	DocumentID string          `json:"documentID"`
	LineNo     int             `json:"lineNo"`
	CategoryID *string         `json:"categoryID,omitempty"`
	ProductID  *string         `json:"productID,omitempty"`
	GodownID   *string         `json:"godownID,omitempty"`
	SiloID     *string         `json:"siloID,omitempty"`
	EmployeeID *string         `json:"employeeID,omitempty"`
	Quantity   decimal.Decimal `json:"quantity"`
	NetWeight  decimal.Decimal `json:"netWeight"`
	Rate       decimal.Decimal `json:"rate"`
	PriceBasis PriceBasis      `json:"priceBasis"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	PaidAmount decimal.Decimal `json:"paidAmount"`
	Consumed   bool            `json:"consumed"`
}

// DocumentPatch lists the header fields an update may change. Nil means unchanged.
type DocumentPatch struct {
	Discount      *decimal.Decimal
	PaidAmount    *decimal.Decimal
	Status        *DocumentStatus
	Notes         *string
	TransportInfo *string
	UpdatedBy     string
	UpdatedAt     time.Time
}

// DocumentFilter narrows a document listing.
type DocumentFilter struct {
	DocumentType DocumentType
	Range        DateRange
	PartyID      *string
	Status       *DocumentStatus
	Search       string
	Limit        int
	Offset       int
}

// MovementDirection is the inventory effect of a stock movement.
type MovementDirection string

const (
	MovementIn  MovementDirection = "IN"
	MovementOut MovementDirection = "OUT"
)

func (d MovementDirection) Opposite() MovementDirection {
	if d == MovementIn {
		return MovementOut
	}
	return MovementIn
}

// StockMovement is an append-only inventory ledger row.
type StockMovement struct {
	MovementID     string            `json:"movementID"`
	DocumentID     string            `json:"documentID"`
	DocumentItemID *string           `json:"documentItemID,omitempty"`
	ProductID      string            `json:"productID"`
	GodownID       *string           `json:"godownID,omitempty"`
	SiloID         *string           `json:"siloID,omitempty"`
	Direction      MovementDirection `json:"direction"`
	Quantity       decimal.Decimal   `json:"quantity"`
	NetWeight      decimal.Decimal   `json:"netWeight"`
	MovementDate   time.Time         `json:"movementDate"`
	CreatedAt      time.Time         `json:"createdAt"`
	CreatedBy      string            `json:"createdBy"`
}

// BalanceDelta is a signed change to one counterparty's running balance.
type BalanceDelta struct {
	CounterpartyType CounterpartyType
	CounterpartyID   string
	Amount           decimal.Decimal
}
