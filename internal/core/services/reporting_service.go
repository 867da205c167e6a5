package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/export"
)

type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	newID         func() string
	now           func() time.Time
}

// NewReportingService creates a new reporting service.
func NewReportingService(reportingRepo portsrepo.ReportingRepository) portssvc.ReportingSvcFacade {
	return &reportingService{
		reportingRepo: reportingRepo,
		newID:         uuid.NewString,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.ReportingSvcFacade = (*reportingService)(nil)

// DailyReport summarizes one day. Opening cash is the net cash flow of every
// day before it.
func (s *reportingService) DailyReport(ctx context.Context, date time.Time, includeCancelled bool) (*domain.DailyReport, error) {
	day := domain.TruncateToDate(date)
	dayBefore := day.AddDate(0, 0, -1)

	docs, heads, err := s.aggregates(ctx, domain.DateRange{From: &day, To: &day}, includeCancelled)
	if err != nil {
		return nil, err
	}
	priorDocs, priorHeads, err := s.aggregates(ctx, domain.DateRange{To: &dayBefore}, includeCancelled)
	if err != nil {
		return nil, err
	}

	openIn, openOut := domain.CashFlow(priorDocs, priorHeads)
	cashIn, cashOut := domain.CashFlow(docs, heads)
	income, expense := domain.SplitHeads(heads)

	report := &domain.DailyReport{
		Date:        day,
		Documents:   docs,
		Income:      income,
		Expense:     expense,
		OpeningCash: openIn.Sub(openOut),
		CashIn:      cashIn,
		CashOut:     cashOut,
	}
	report.ClosingCash = report.OpeningCash.Add(cashIn).Sub(cashOut)
	return report, nil
}

func (s *reportingService) FinancialStatement(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) (*domain.FinancialStatement, error) {
	if dateRange.From != nil && dateRange.To != nil && dateRange.From.After(*dateRange.To) {
		return nil, apperrors.NewValidationError("from must not be after to")
	}
	docs, heads, err := s.aggregates(ctx, dateRange, includeCancelled)
	if err != nil {
		return nil, err
	}
	fs := domain.BuildFinancialStatement(docs, heads)
	fs.From, fs.To = dateRange.From, dateRange.To
	return &fs, nil
}

func (s *reportingService) StockRegister(ctx context.Context, filter domain.StockRegisterFilter) ([]domain.StockRegisterRow, error) {
	if filter.Range.From != nil && filter.Range.To != nil && filter.Range.From.After(*filter.Range.To) {
		return nil, apperrors.NewValidationError("from must not be after to")
	}
	rows, err := s.reportingRepo.GetStockRegister(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to build stock register")
		return nil, err
	}
	return rows, nil
}

func (s *reportingService) CounterpartyLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	if filter.CounterpartyID == "" {
		return nil, apperrors.NewValidationError("counterparty id is required")
	}
	if filter.CounterpartyType != domain.CounterpartyParty && filter.CounterpartyType != domain.CounterpartyEmployee {
		return nil, apperrors.NewValidationError("unknown counterparty type %q", filter.CounterpartyType)
	}
	return s.reportingRepo.ListLedgerEntries(ctx, filter)
}

// ExportDailyReport returns the xlsx bytes and a download file name.
func (s *reportingService) ExportDailyReport(ctx context.Context, date time.Time, includeCancelled bool, userID string) ([]byte, string, error) {
	report, err := s.DailyReport(ctx, date, includeCancelled)
	if err != nil {
		return nil, "", err
	}
	buf, err := export.DailyReportWorkbook(*report)
	if err != nil {
		s.LogError(ctx, err, "Failed to render daily report workbook")
		return nil, "", apperrors.NewAppError(http.StatusInternalServerError, "failed to render daily report", err)
	}

	fileName := fmt.Sprintf("daily-report-%s.xlsx", report.Date.Format("2006-01-02"))
	s.logExport(ctx, "daily-report", map[string]string{
		"date":             report.Date.Format("2006-01-02"),
		"includeCancelled": fmt.Sprint(includeCancelled),
	}, userID)
	return buf.Bytes(), fileName, nil
}

func (s *reportingService) ExportStockRegister(ctx context.Context, filter domain.StockRegisterFilter, userID string) ([]byte, string, error) {
	rows, err := s.StockRegister(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	buf, err := export.StockRegisterWorkbook(rows)
	if err != nil {
		s.LogError(ctx, err, "Failed to render stock register workbook")
		return nil, "", apperrors.NewAppError(http.StatusInternalServerError, "failed to render stock register", err)
	}

	params := map[string]string{"includeCancelled": fmt.Sprint(filter.IncludeCancelled)}
	putOptional(params, "productId", filter.ProductID)
	putOptional(params, "godownId", filter.GodownID)
	putOptional(params, "siloId", filter.SiloID)
	if filter.Range.From != nil {
		params["from"] = filter.Range.From.Format("2006-01-02")
	}
	if filter.Range.To != nil {
		params["to"] = filter.Range.To.Format("2006-01-02")
	}
	s.logExport(ctx, "stock-register", params, userID)

	return buf.Bytes(), fmt.Sprintf("stock-register-%s.xlsx", s.now().Format("20060102-150405")), nil
}

func (s *reportingService) aggregates(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) ([]domain.DocumentSummary, []domain.HeadAmount, error) {
	docs, err := s.reportingRepo.SummarizeDocuments(ctx, dateRange, includeCancelled)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarize documents")
		return nil, nil, err
	}
	heads, err := s.reportingRepo.SummarizeAccountHeads(ctx, dateRange, includeCancelled)
	if err != nil {
		s.LogError(ctx, err, "Failed to summarize account heads")
		return nil, nil, err
	}
	return docs, heads, nil
}

// logExport records the export. A failed write does not fail the download.
func (s *reportingService) logExport(ctx context.Context, report string, params map[string]string, userID string) {
	entry := domain.ExportLog{
		ExportID:   s.newID(),
		ReportName: report,
		Parameters: params,
		UserID:     userID,
		CreatedAt:  s.now(),
	}
	if err := s.reportingRepo.SaveExportLog(ctx, entry); err != nil {
		s.GetLogger(ctx).Warn("Failed to save export log", slog.String("report", report), slog.String("error", err.Error()))
	}
}

func putOptional(m map[string]string, key string, v *string) {
	if v != nil && *v != "" {
		m[key] = *v
	}
}
