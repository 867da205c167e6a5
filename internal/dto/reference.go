package dto

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReferenceFields are accepted by every reference-data endpoint.
type ReferenceFields struct {
	Name        string           `json:"name" binding:"required,max=150"`
	Description string           `json:"description"`
	Status      domain.Lifecycle `json:"status" binding:"omitempty,oneof=active inactive"` // Empty keeps the current status
}

func (f ReferenceFields) applyBase(b *domain.ReferenceBase) {
	b.Name = f.Name
	b.Description = f.Description
	if f.Status != "" {
		b.Status = f.Status
	}
}

// ListReferenceQuery holds the query string of a reference listing.
type ListReferenceQuery struct {
	Search   string `form:"search"`
	Status   string `form:"status" binding:"omitempty,oneof=active inactive"`
	Type     string `form:"type"` // Party type; ignored by kinds without one
	Page     int    `form:"page"`
	PageSize int    `form:"pageSize"`
}

type CategoryRequest struct {
	ReferenceFields
}

func (r CategoryRequest) ApplyTo(c *domain.Category) {
	r.applyBase(&c.ReferenceBase)
}

type ProductRequest struct {
	ReferenceFields
	CategoryID string            `json:"categoryId" binding:"required"`
	Unit       string            `json:"unit"`
	PriceBasis domain.PriceBasis `json:"priceBasis" binding:"omitempty,oneof=QUANTITY WEIGHT"`
}

func (r ProductRequest) ApplyTo(p *domain.Product) {
	r.applyBase(&p.ReferenceBase)
	p.CategoryID = r.CategoryID
	p.Unit = r.Unit
	p.PriceBasis = r.PriceBasis
	if p.PriceBasis == "" {
		p.PriceBasis = domain.PriceByQuantity
	}
}

type GodownRequest struct {
	ReferenceFields
	Location string          `json:"location"`
	Capacity decimal.Decimal `json:"capacity"`
}

func (r GodownRequest) ApplyTo(g *domain.Godown) {
	r.applyBase(&g.ReferenceBase)
	g.Location = r.Location
	g.Capacity = r.Capacity
}

type SiloRequest struct {
	ReferenceFields
	GodownID *string         `json:"godownId"`
	Capacity decimal.Decimal `json:"capacity"`
}

func (r SiloRequest) ApplyTo(s *domain.Silo) {
	r.applyBase(&s.ReferenceBase)
	s.GodownID = r.GodownID
	s.Capacity = r.Capacity
}

type DesignationRequest struct {
	ReferenceFields
}

func (r DesignationRequest) ApplyTo(d *domain.Designation) {
	r.applyBase(&d.ReferenceBase)
}

type PartyRequest struct {
	ReferenceFields
	PartyType domain.PartyType `json:"partyType" binding:"required,oneof=SUPPLIER CUSTOMER BOTH"`
	Phone     string           `json:"phone" binding:"omitempty,phone"`
	Address   string           `json:"address"`
}

// ApplyTo never touches the balance; only postings move it.
func (r PartyRequest) ApplyTo(p *domain.Party) {
	r.applyBase(&p.ReferenceBase)
	p.PartyType = r.PartyType
	p.Phone = r.Phone
	p.Address = r.Address
}

// AccountHeadRequest has no type field; the route decides income or expense.
type AccountHeadRequest struct {
	ReferenceFields
}

func (r AccountHeadRequest) ApplyTo(h *domain.AccountHead) {
	r.applyBase(&h.ReferenceBase)
}

type EmployeeRequest struct {
	ReferenceFields
	DesignationID *string         `json:"designationId"`
	Phone         string          `json:"phone" binding:"omitempty,phone"`
	DailyWage     decimal.Decimal `json:"dailyWage"`
	JoinDate      *Date           `json:"joinDate"`
}

func (r EmployeeRequest) ApplyTo(e *domain.Employee) {
	r.applyBase(&e.ReferenceBase)
	e.DesignationID = r.DesignationID
	e.Phone = r.Phone
	e.DailyWage = r.DailyWage
	e.JoinDate = nil
	if r.JoinDate != nil {
		t := r.JoinDate.Time
		e.JoinDate = &t
	}
}
