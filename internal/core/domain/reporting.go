package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentSummary aggregates the documents of one type over a date range.
type DocumentSummary struct {
	DocumentType DocumentType    `json:"documentType"`
	Count        int             `json:"count"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	PaidAmount   decimal.Decimal `json:"paidAmount"`
}

// HeadAmount is the total posted against one account head.
type HeadAmount struct {
	HeadID   string          `json:"headID"`
	HeadName string          `json:"headName"`
	HeadType HeadType        `json:"headType"`
	Amount   decimal.Decimal `json:"amount"`
}

// DailyReport is the cash position of a single day.
type DailyReport struct {
	Date        time.Time         `json:"date"`
	Documents   []DocumentSummary `json:"documents"`
	Income      []HeadAmount      `json:"income"`
	Expense     []HeadAmount      `json:"expense"`
	OpeningCash decimal.Decimal   `json:"openingCash"`
	CashIn      decimal.Decimal   `json:"cashIn"`
	CashOut     decimal.Decimal   `json:"cashOut"`
	ClosingCash decimal.Decimal   `json:"closingCash"`
}

// FinancialStatement is the profit and loss over a period.
type FinancialStatement struct {
	From         *time.Time      `json:"from,omitempty"`
	To           *time.Time      `json:"to,omitempty"`
	SalesRevenue decimal.Decimal `json:"salesRevenue"`
	PurchaseCost decimal.Decimal `json:"purchaseCost"`
	SalaryCost   decimal.Decimal `json:"salaryCost"`
	Income       []HeadAmount    `json:"income"`
	Expense      []HeadAmount    `json:"expense"`
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	GrossProfit  decimal.Decimal `json:"grossProfit"`
	NetProfit    decimal.Decimal `json:"netProfit"`
}

type StockRegisterFilter struct {
	ProductID        *string
	GodownID         *string
	SiloID           *string
	Range            DateRange
	IncludeCancelled bool
}

// StockRegisterRow is the movement summary of one product at one location.
type StockRegisterRow struct {
	ProductID     string          `json:"productID"`
	ProductName   string          `json:"productName"`
	GodownID      *string         `json:"godownID,omitempty"`
	SiloID        *string         `json:"siloID,omitempty"`
	LocationName  string          `json:"locationName"`
	OpeningQty    decimal.Decimal `json:"openingQty"`
	OpeningWeight decimal.Decimal `json:"openingWeight"`
	InQty         decimal.Decimal `json:"inQty"`
	InWeight      decimal.Decimal `json:"inWeight"`
	OutQty        decimal.Decimal `json:"outQty"`
	OutWeight     decimal.Decimal `json:"outWeight"`
	ClosingQty    decimal.Decimal `json:"closingQty"`
	ClosingWeight decimal.Decimal `json:"closingWeight"`
}

// Close fills the closing columns from the opening and period movements.
func (r *StockRegisterRow) Close() {
	r.ClosingQty = r.OpeningQty.Add(r.InQty).Sub(r.OutQty)
	r.ClosingWeight = r.OpeningWeight.Add(r.InWeight).Sub(r.OutWeight)
}

// LedgerEntry is one applied balance change of a counterparty.
type LedgerEntry struct {
	EntryID          string           `json:"entryID"`
	DocumentID       string           `json:"documentID"`
	ReferenceNumber  string           `json:"referenceNumber"`
	DocumentType     DocumentType     `json:"documentType"`
	CounterpartyType CounterpartyType `json:"counterpartyType"`
	CounterpartyID   string           `json:"counterpartyID"`
	Revision         int              `json:"revision"`
	Amount           decimal.Decimal  `json:"amount"`
	BalanceAfter     decimal.Decimal  `json:"balanceAfter"`
	EntryDate        time.Time        `json:"entryDate"`
	CreatedAt        time.Time        `json:"createdAt"`
	CreatedBy        string           `json:"createdBy"`
}

type LedgerFilter struct {
	CounterpartyType CounterpartyType
	CounterpartyID   string
	Range            DateRange
}

// ExportLog records who exported which report with which parameters.
type ExportLog struct {
	ExportID   string            `json:"exportID"`
	ReportName string            `json:"reportName"`
	Parameters map[string]string `json:"parameters"`
	UserID     string            `json:"userID"`
	CreatedAt  time.Time         `json:"createdAt"`
}

// CashFlow returns money received and money paid out for the given aggregates.
// Sales receipts and income come in; purchase and salary payments and expenses go out.
func CashFlow(docs []DocumentSummary, heads []HeadAmount) (in, out decimal.Decimal) {
	in, out = decimal.Zero, decimal.Zero
	for _, d := range docs {
		switch {
		case d.DocumentType == Sale:
			in = in.Add(d.PaidAmount)
		case d.DocumentType.IsPurchase(), d.DocumentType == SalaryRun:
			out = out.Add(d.PaidAmount)
		}
	}
	for _, h := range heads {
		switch h.HeadType {
		case HeadIncome:
			in = in.Add(h.Amount)
		case HeadExpense:
			out = out.Add(h.Amount)
		}
	}
	return in, out
}

// SplitHeads separates head totals into income and expense.
func SplitHeads(heads []HeadAmount) (income, expense []HeadAmount) {
	income, expense = []HeadAmount{}, []HeadAmount{}
	for _, h := range heads {
		if h.HeadType == HeadIncome {
			income = append(income, h)
		} else {
			expense = append(expense, h)
		}
	}
	return income, expense
}

// BuildFinancialStatement derives profit figures from the period aggregates.
//
//	gross = sales − purchases
//	net   = gross + income − expense − salary
func BuildFinancialStatement(docs []DocumentSummary, heads []HeadAmount) FinancialStatement {
	fs := FinancialStatement{
		SalesRevenue: decimal.Zero,
		PurchaseCost: decimal.Zero,
		SalaryCost:   decimal.Zero,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
	}
	for _, d := range docs {
		switch {
		case d.DocumentType == Sale:
			fs.SalesRevenue = fs.SalesRevenue.Add(d.TotalAmount)
		case d.DocumentType.IsPurchase():
			fs.PurchaseCost = fs.PurchaseCost.Add(d.TotalAmount)
		case d.DocumentType == SalaryRun:
			fs.SalaryCost = fs.SalaryCost.Add(d.TotalAmount)
		}
	}
	fs.Income, fs.Expense = SplitHeads(heads)
	for _, h := range fs.Income {
		fs.TotalIncome = fs.TotalIncome.Add(h.Amount)
	}
	for _, h := range fs.Expense {
		fs.TotalExpense = fs.TotalExpense.Add(h.Amount)
	}
	fs.GrossProfit = fs.SalesRevenue.Sub(fs.PurchaseCost)
	fs.NetProfit = fs.GrossProfit.Add(fs.TotalIncome).Sub(fs.TotalExpense).Sub(fs.SalaryCost)
	return fs
}
