package dto

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DocumentItemRequest is one line of a purchase, sale, production order or salary run.
type DocumentItemRequest struct {
	CategoryID *string           `json:"categoryId"`
	ProductID  *string           `json:"productId"`
	GodownID   *string           `json:"godownId"`
	SiloID     *string           `json:"siloId"`
	EmployeeID *string           `json:"employeeId"`
	Quantity   decimal.Decimal   `json:"quantity"`
	NetWeight  decimal.Decimal   `json:"netWeight"`
	Rate       decimal.Decimal   `json:"rate"`
	PriceBasis domain.PriceBasis `json:"priceBasis" binding:"omitempty,oneof=QUANTITY WEIGHT"`
	PaidAmount decimal.Decimal   `json:"paidAmount"`
	Consumed   bool              `json:"consumed"`
}

// CreateDocumentRequest defines the data needed to post a new document.
type CreateDocumentRequest struct {
	ReferenceNumber *string               `json:"referenceNumber"` // Optional, generated when empty
	DocumentDate    Date                  `json:"documentDate" binding:"required"`
	PartyID         *string               `json:"partyId"`
	SalaryMonth     *string               `json:"salaryMonth" binding:"omitempty,yearmonth"`
	Notes           string                `json:"notes"`
	TransportInfo   string                `json:"transportInfo"`
	Discount        decimal.Decimal       `json:"discount"`
	PaidAmount      decimal.Decimal       `json:"paidAmount"`
	Items           []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateDocumentRequest patches header fields. Nil fields are left unchanged.
type UpdateDocumentRequest struct {
	Discount      *decimal.Decimal       `json:"discount"`
	PaidAmount    *decimal.Decimal       `json:"paidAmount"`
	Status        *domain.DocumentStatus `json:"status" binding:"omitempty,oneof=active completed cancelled"`
	Notes         *string                `json:"notes"`
	TransportInfo *string                `json:"transportInfo"`
}

// ReplaceItemsRequest replaces every line of a document.
type ReplaceItemsRequest struct {
	Items []DocumentItemRequest `json:"items" binding:"required,min=1,dive"`
}

// ListDocumentsQuery holds the query string of a document listing.
type ListDocumentsQuery struct {
	From     string `form:"from"`
	To       string `form:"to"`
	PartyID  string `form:"partyId"`
	Status   string `form:"status" binding:"omitempty,oneof=active completed cancelled"`
	Search   string `form:"search"`
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

// ToDomainItems converts request lines into unsaved document items, rounded
// to the stored scales.
func ToDomainItems(items []DocumentItemRequest) []domain.DocumentItem {
	out := make([]domain.DocumentItem, len(items))
	for i, it := range items {
		basis := it.PriceBasis
		if basis == "" {
			basis = domain.PriceByQuantity
		}
		out[i] = domain.DocumentItem{
			LineNo:     i + 1,
			CategoryID: it.CategoryID,
			ProductID:  it.ProductID,
			GodownID:   it.GodownID,
			SiloID:     it.SiloID,
			EmployeeID: it.EmployeeID,
			Quantity:   it.Quantity,
			NetWeight:  it.NetWeight,
			Rate:       it.Rate,
			PriceBasis: basis,
			PaidAmount: it.PaidAmount,
			Consumed:   it.Consumed,
		}.Rounded()
	}
	return out
}
