package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/ports"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

const salaryLockTTL = 30 * time.Second

type hrService struct {
	BaseService
	attendanceRepo   portsrepo.AttendanceRepositoryWithTx
	counterpartyRepo portsrepo.CounterpartyRepository
	employeeRepo     portsrepo.ReferenceReader[*domain.Employee]
	documents        portssvc.DocumentPostingSvc
	locker           ports.Locker
	newID            func() string
	now              func() time.Time
}

// NewHRService creates the attendance and salary service. Salary runs post
// through documents so they follow the same ledger rules as any other document.
func NewHRService(
	attendanceRepo portsrepo.AttendanceRepositoryWithTx,
	counterpartyRepo portsrepo.CounterpartyRepository,
	employeeRepo portsrepo.ReferenceReader[*domain.Employee],
	documents portssvc.DocumentPostingSvc,
	locker ports.Locker,
) portssvc.HRSvc {
	return &hrService{
		attendanceRepo:   attendanceRepo,
		counterpartyRepo: counterpartyRepo,
		employeeRepo:     employeeRepo,
		documents:        documents,
		locker:           locker,
		newID:            uuid.NewString,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.HRSvc = (*hrService)(nil)

// MarkAttendance writes one mark per employee for the day. Marking the same
// employee and day again replaces the earlier mark.
func (s *hrService) MarkAttendance(ctx context.Context, req dto.MarkAttendanceRequest, userID string) ([]domain.Attendance, error) {
	if req.Date.IsZero() {
		return nil, apperrors.NewValidationError("date is required")
	}
	if len(req.Entries) == 0 {
		return nil, apperrors.NewValidationError("at least one entry is required")
	}

	day := domain.TruncateToDate(req.Date.Time)
	now := s.now()
	seen := make(map[string]bool, len(req.Entries))
	ids := make([]string, 0, len(req.Entries))
	marks := make([]domain.Attendance, 0, len(req.Entries))
	for _, e := range req.Entries {
		if strings.TrimSpace(e.EmployeeID) == "" {
			return nil, apperrors.NewValidationError("employeeId is required")
		}
		if !e.Status.IsValid() {
			return nil, apperrors.NewValidationError("unknown attendance status %q", e.Status)
		}
		if seen[e.EmployeeID] {
			return nil, apperrors.NewValidationError("employee %s is marked twice", e.EmployeeID)
		}
		seen[e.EmployeeID] = true
		ids = append(ids, e.EmployeeID)
		marks = append(marks, domain.Attendance{
			AttendanceID:   s.newID(),
			EmployeeID:     e.EmployeeID,
			AttendanceDate: day,
			Status:         e.Status,
			Notes:          strings.TrimSpace(e.Notes),
			AuditFields:    domain.NewAuditFields(userID, now),
		})
	}

	tx, err := s.attendanceRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.attendanceRepo.Rollback(ctx, tx)

	if err := s.counterpartyRepo.EnsureActive(ctx, tx, domain.KindEmployee, ids); err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.UpsertAttendance(ctx, tx, marks); err != nil {
		return nil, err
	}
	if err := s.attendanceRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Attendance marked", slog.Time("date", day), slog.Int("entries", len(marks)))
	return marks, nil
}

func (s *hrService) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	marks, err := s.attendanceRepo.ListAttendance(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list attendance")
		return nil, err
	}
	return marks, nil
}

// GenerateSalaryRun pays every active employee their daily wage for each
// payable day of the month. Concurrent runs for the same month are refused.
func (s *hrService) GenerateSalaryRun(ctx context.Context, req dto.GenerateSalaryRequest, userID string) (*domain.Document, error) {
	logger := s.GetLogger(ctx).With(slog.String("salary_month", req.Month))

	if !domain.IsSalaryMonth(req.Month) {
		return nil, apperrors.NewValidationError("month must be a YYYY-MM month")
	}
	first, last, err := domain.SalaryMonthRange(req.Month)
	if err != nil {
		return nil, apperrors.NewValidationError("month must be a YYYY-MM month")
	}

	release, err := s.locker.Obtain(ctx, "salary-run:"+req.Month, salaryLockTTL)
	if err != nil {
		if errors.Is(err, ports.ErrLockNotObtained) {
			return nil, fmt.Errorf("%w: salary run for %s is already being generated", apperrors.ErrDuplicate, req.Month)
		}
		return nil, err
	}
	defer func() {
		if err := release(context.Background()); err != nil {
			logger.Warn("Failed to release salary lock", slog.String("error", err.Error()))
		}
	}()

	active := domain.LifecycleActive
	employees, _, err := s.employeeRepo.List(ctx, domain.ReferenceFilter{Status: &active})
	if err != nil {
		return nil, err
	}
	marks, err := s.attendanceRepo.ListAttendance(ctx, domain.AttendanceFilter{
		Range: domain.DateRange{From: &first, To: &last},
	})
	if err != nil {
		return nil, err
	}

	items := SalaryItems(employees, marks)
	if len(items) == 0 {
		return nil, apperrors.NewValidationError("no payable attendance for %s", req.Month)
	}

	docDate := last
	if req.DocumentDate != nil && !req.DocumentDate.IsZero() {
		docDate = domain.TruncateToDate(req.DocumentDate.Time)
	}
	month := req.Month

	doc, err := s.documents.CreateDocument(ctx, domain.SalaryRun, dto.CreateDocumentRequest{
		DocumentDate: dto.Date{Time: docDate},
		SalaryMonth:  &month,
		Notes:        req.Notes,
		Items:        items,
	}, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Salary run generated", slog.String("document_id", doc.DocumentID), slog.Int("employees", len(items)))
	return doc, nil
}

// SalaryItems builds one salary line per employee with payable days.
// Quantity is the payable days and rate the daily wage.
func SalaryItems(employees []*domain.Employee, marks []domain.Attendance) []dto.DocumentItemRequest {
	byEmployee := make(map[string][]domain.Attendance)
	for _, m := range marks {
		byEmployee[m.EmployeeID] = append(byEmployee[m.EmployeeID], m)
	}

	var items []dto.DocumentItemRequest
	for _, e := range employees {
		days := domain.PayableDays(byEmployee[e.ID])
		if !days.IsPositive() {
			continue
		}
		id := e.ID
		items = append(items, dto.DocumentItemRequest{
			EmployeeID: &id,
			Quantity:   days,
			Rate:       e.DailyWage,
			PriceBasis: domain.PriceByQuantity,
			PaidAmount: decimal.Zero,
		})
	}
	return items
}
