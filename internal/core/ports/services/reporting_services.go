package services

import (
	"context"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
)

// ReportingService defines the read-only reports
type ReportingService interface {
	// DailyReport summarizes postings and the cash position of one day.
	DailyReport(ctx context.Context, date time.Time, includeCancelled bool) (*domain.DailyReport, error)

	// FinancialStatement computes gross and net profit over a period.
	FinancialStatement(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) (*domain.FinancialStatement, error)

	StockRegister(ctx context.Context, filter domain.StockRegisterFilter) ([]domain.StockRegisterRow, error)

	// CounterpartyLedger lists a party's or employee's balance changes.
	CounterpartyLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)
}

// ReportExportSvc renders reports as xlsx workbooks and logs each export
type ReportExportSvc interface {
	ExportDailyReport(ctx context.Context, date time.Time, includeCancelled bool, userID string) ([]byte, string, error)
	ExportStockRegister(ctx context.Context, filter domain.StockRegisterFilter, userID string) ([]byte, string, error)
}

type ReportingSvcFacade interface {
	ReportingService
	ReportExportSvc
}
