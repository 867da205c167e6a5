package repositories

import (
	"context"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
)

// ReportingRepository defines the read-only aggregates behind the reports
type ReportingRepository interface {
	// SummarizeDocuments aggregates document headers per type over the range.
	SummarizeDocuments(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) ([]domain.DocumentSummary, error)

	// SummarizeAccountHeads totals account transactions per head over the range.
	SummarizeAccountHeads(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) ([]domain.HeadAmount, error)

	// GetStockRegister returns opening, inbound, outbound and closing figures per product and location.
	GetStockRegister(ctx context.Context, filter domain.StockRegisterFilter) ([]domain.StockRegisterRow, error)

	// ListLedgerEntries returns a counterparty's ledger in posting order.
	ListLedgerEntries(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error)

	SaveExportLog(ctx context.Context, log domain.ExportLog) error
}
