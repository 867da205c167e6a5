package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// --- Mock DocumentService ---
type MockDocumentService struct {
	mock.Mock
}

var _ portssvc.DocumentSvcFacade = (*MockDocumentService)(nil)

func (m *MockDocumentService) GetDocument(ctx context.Context, docType domain.DocumentType, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentService) CreateDocument(ctx context.Context, docType domain.DocumentType, req dto.CreateDocumentRequest, userID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) UpdateDocument(ctx context.Context, docType domain.DocumentType, documentID string, req dto.UpdateDocumentRequest, userID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, documentID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ReplaceDocumentItems(ctx context.Context, docType domain.DocumentType, documentID string, items []dto.DocumentItemRequest, userID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, documentID, items, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) CancelDocument(ctx context.Context, docType domain.DocumentType, documentID string, userID string) (*domain.Document, error) {
	args := m.Called(ctx, docType, documentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) BulkCancelDocuments(ctx context.Context, docType domain.DocumentType, documentIDs []string, userID string) (int, error) {
	args := m.Called(ctx, docType, documentIDs, userID)
	return args.Int(0), args.Error(1)
}

// --- Mock AuthService ---
type MockAuthService struct {
	mock.Mock
}

var _ portssvc.AuthSvc = (*MockAuthService)(nil)

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*dto.LoginResponse, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.LoginResponse), args.Error(1)
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) error {
	return m.Called(ctx, sessionID).Error(0)
}

func (m *MockAuthService) ValidateSession(ctx context.Context, sessionID, userID string) error {
	return m.Called(ctx, sessionID, userID).Error(0)
}

func (m *MockAuthService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAuthService) EnsureBootstrapAdmin(ctx context.Context, username, password string) error {
	return m.Called(ctx, username, password).Error(0)
}

// --- Mock ReferenceService ---
type MockReferenceService[T domain.Referenced] struct {
	mock.Mock
}

var _ portssvc.ReferenceSvc[*domain.Category] = (*MockReferenceService[*domain.Category])(nil)

func (m *MockReferenceService[T]) Create(ctx context.Context, entity T, userID string) (T, error) {
	args := m.Called(ctx, entity, userID)
	return args.Get(0).(T), args.Error(1)
}

func (m *MockReferenceService[T]) Get(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		var zero T
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockReferenceService[T]) List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

func (m *MockReferenceService[T]) Update(ctx context.Context, id string, changes portssvc.ReferenceChanges[T], userID string) (T, error) {
	args := m.Called(ctx, id, changes, userID)
	if args.Get(0) == nil {
		var zero T
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockReferenceService[T]) Deactivate(ctx context.Context, ids []string, userID string) error {
	return m.Called(ctx, ids, userID).Error(0)
}

// --- Mock HRService ---
type MockHRService struct {
	mock.Mock
}

var _ portssvc.HRSvc = (*MockHRService)(nil)

func (m *MockHRService) MarkAttendance(ctx context.Context, req dto.MarkAttendanceRequest, userID string) ([]domain.Attendance, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attendance), args.Error(1)
}

func (m *MockHRService) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attendance), args.Error(1)
}

func (m *MockHRService) GenerateSalaryRun(ctx context.Context, req dto.GenerateSalaryRequest, userID string) (*domain.Document, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

var _ portssvc.ReportingSvcFacade = (*MockReportingService)(nil)

func (m *MockReportingService) DailyReport(ctx context.Context, date time.Time, includeCancelled bool) (*domain.DailyReport, error) {
	args := m.Called(ctx, date, includeCancelled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyReport), args.Error(1)
}

func (m *MockReportingService) FinancialStatement(ctx context.Context, dateRange domain.DateRange, includeCancelled bool) (*domain.FinancialStatement, error) {
	args := m.Called(ctx, dateRange, includeCancelled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FinancialStatement), args.Error(1)
}

func (m *MockReportingService) StockRegister(ctx context.Context, filter domain.StockRegisterFilter) ([]domain.StockRegisterRow, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockRegisterRow), args.Error(1)
}

func (m *MockReportingService) CounterpartyLedger(ctx context.Context, filter domain.LedgerFilter) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockReportingService) ExportDailyReport(ctx context.Context, date time.Time, includeCancelled bool, userID string) ([]byte, string, error) {
	args := m.Called(ctx, date, includeCancelled, userID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}

func (m *MockReportingService) ExportStockRegister(ctx context.Context, filter domain.StockRegisterFilter, userID string) ([]byte, string, error) {
	args := m.Called(ctx, filter, userID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.String(1), args.Error(2)
}
