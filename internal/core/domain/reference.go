package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReferenceKind names one of the reference-data tables.
type ReferenceKind string

const (
	KindCategory    ReferenceKind = "category"
	KindProduct     ReferenceKind = "product"
	KindGodown      ReferenceKind = "godown"
	KindSilo        ReferenceKind = "silo"
	KindDesignation ReferenceKind = "designation"
	KindParty       ReferenceKind = "party"
	KindAccountHead ReferenceKind = "account_head"
	KindEmployee    ReferenceKind = "employee"
)

// ReferenceBase holds the fields every reference entity shares.
type ReferenceBase struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Lifecycle `json:"status"`
	AuditFields
}

// Ref gives generic code access to the shared fields.
func (b *ReferenceBase) Ref() *ReferenceBase { return b }

// Referenced is satisfied by pointers to every reference entity.
type Referenced interface {
	Ref() *ReferenceBase
}

type Category struct {
	ReferenceBase
}

type Product struct {
	ReferenceBase
	CategoryID string     `json:"categoryID"`
	Unit       string     `json:"unit"`
	PriceBasis PriceBasis `json:"priceBasis"`
}

type Godown struct {
	ReferenceBase
	Location string          `json:"location"`
	Capacity decimal.Decimal `json:"capacity"`
}

type Silo struct {
	ReferenceBase
	GodownID *string         `json:"godownID,omitempty"`
	Capacity decimal.Decimal `json:"capacity"`
}

type Designation struct {
	ReferenceBase
}

// PartyType says which side of trade a party can be on.
type PartyType string

const (
	PartySupplier PartyType = "SUPPLIER"
	PartyCustomer PartyType = "CUSTOMER"
	PartyBoth     PartyType = "BOTH"
)

func (p PartyType) IsValid() bool {
	return p == PartySupplier || p == PartyCustomer || p == PartyBoth
}

// CanTrade reports whether a party of this type may appear on the document type.
func (p PartyType) CanTrade(t DocumentType) bool {
	switch {
	case t.IsPurchase():
		return p == PartySupplier || p == PartyBoth
	case t == Sale:
		return p == PartyCustomer || p == PartyBoth
	}
	return false
}

// Party is a customer or supplier with a signed running balance.
// A positive balance is owed to the mill.
type Party struct {
	ReferenceBase
	PartyType PartyType       `json:"partyType"`
	Phone     string          `json:"phone"`
	Address   string          `json:"address"`
	Balance   decimal.Decimal `json:"balance"`
}

// HeadType splits account heads into income and expense.
type HeadType string

const (
	HeadIncome  HeadType = "INCOME"
	HeadExpense HeadType = "EXPENSE"
)

func (h HeadType) IsValid() bool {
	return h == HeadIncome || h == HeadExpense
}

type AccountHead struct {
	ReferenceBase
	HeadType HeadType `json:"headType"`
}

// Employee carries a signed running balance like a party.
// A negative balance is wages the mill still owes.
type Employee struct {
	ReferenceBase
	DesignationID *string         `json:"designationID,omitempty"`
	Phone         string          `json:"phone"`
	DailyWage     decimal.Decimal `json:"dailyWage"`
	JoinDate      *time.Time      `json:"joinDate,omitempty"`
	Balance       decimal.Decimal `json:"balance"`
}

// ReferenceFilter narrows a reference listing.
type ReferenceFilter struct {
	Search   string
	Status   *Lifecycle
	TypeCode string
	Limit    int
	Offset   int
}
