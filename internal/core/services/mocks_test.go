package services_test

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/ports"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
)

// --- Transaction manager shared by every mock repository ---
type mockTxManager struct {
	mock.Mock
}

func (m *mockTxManager) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	var tx pgx.Tx
	if args.Get(0) != nil {
		tx = args.Get(0).(pgx.Tx)
	}
	return tx, args.Error(1)
}

func (m *mockTxManager) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *mockTxManager) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// --- Mock DocumentRepository ---
type MockDocumentRepository struct {
	mockTxManager
}

var _ portsrepo.DocumentRepositoryWithTx = (*MockDocumentRepository)(nil)

func (m *MockDocumentRepository) FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepository) LockDocument(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error) {
	args := m.Called(ctx, tx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) LockDocuments(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, documentIDs []string) ([]domain.Document, error) {
	args := m.Called(ctx, tx, docType, documentIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ReferenceNumberExists(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, referenceNumber string) (bool, error) {
	args := m.Called(ctx, tx, docType, referenceNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) ActiveSalaryRunExists(ctx context.Context, tx pgx.Tx, month string) (bool, error) {
	args := m.Called(ctx, tx, month)
	return args.Bool(0), args.Error(1)
}

func (m *MockDocumentRepository) InsertDocument(ctx context.Context, tx pgx.Tx, doc domain.Document) error {
	args := m.Called(ctx, tx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDocumentHeader(ctx context.Context, tx pgx.Tx, doc domain.Document) error {
	args := m.Called(ctx, tx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) UpdateDocumentStatuses(ctx context.Context, tx pgx.Tx, documentIDs []string, status domain.DocumentStatus, userID string, now time.Time) error {
	args := m.Called(ctx, tx, documentIDs, status, userID, now)
	return args.Error(0)
}

func (m *MockDocumentRepository) InsertDocumentItems(ctx context.Context, tx pgx.Tx, items []domain.DocumentItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockDocumentRepository) DeleteDocumentItems(ctx context.Context, tx pgx.Tx, documentID string) error {
	args := m.Called(ctx, tx, documentID)
	return args.Error(0)
}

func (m *MockDocumentRepository) InsertStockMovements(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error {
	args := m.Called(ctx, tx, movements)
	return args.Error(0)
}

func (m *MockDocumentRepository) FindMovementsByItemIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) ([]domain.StockMovement, error) {
	args := m.Called(ctx, tx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.StockMovement), args.Error(1)
}

// --- Mock SequenceRepository ---
type MockSequenceRepository struct {
	mock.Mock
}

func (m *MockSequenceRepository) NextValue(ctx context.Context, tx pgx.Tx, seq domain.SequenceType, period string) (int64, error) {
	args := m.Called(ctx, tx, seq, period)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock CounterpartyRepository ---
type MockCounterpartyRepository struct {
	mock.Mock
}

var _ portsrepo.CounterpartyRepository = (*MockCounterpartyRepository)(nil)

func (m *MockCounterpartyRepository) EnsureActive(ctx context.Context, tx pgx.Tx, kind domain.ReferenceKind, ids []string) error {
	args := m.Called(ctx, tx, kind, ids)
	return args.Error(0)
}

func (m *MockCounterpartyRepository) LockParty(ctx context.Context, tx pgx.Tx, partyID string) (*domain.Party, error) {
	args := m.Called(ctx, tx, partyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Party), args.Error(1)
}

func (m *MockCounterpartyRepository) LockEmployees(ctx context.Context, tx pgx.Tx, employeeIDs []string) (map[string]domain.Employee, error) {
	args := m.Called(ctx, tx, employeeIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Employee), args.Error(1)
}

func (m *MockCounterpartyRepository) ApplyBalanceDeltas(ctx context.Context, tx pgx.Tx, meta portsrepo.LedgerEntryMeta, deltas []domain.BalanceDelta) error {
	args := m.Called(ctx, tx, meta, deltas)
	return args.Error(0)
}

// --- Mock reference repository ---
type MockReferenceRepository[T domain.Referenced] struct {
	mock.Mock
}

func (m *MockReferenceRepository[T]) FindByID(ctx context.Context, id string) (T, error) {
	args := m.Called(ctx, id)
	var zero T
	if args.Get(0) == nil {
		return zero, args.Error(1)
	}
	return args.Get(0).(T), args.Error(1)
}

func (m *MockReferenceRepository[T]) List(ctx context.Context, filter domain.ReferenceFilter) ([]T, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]T), args.Int(1), args.Error(2)
}

func (m *MockReferenceRepository[T]) ActiveNameExists(ctx context.Context, name string, excludeID string) (bool, error) {
	args := m.Called(ctx, name, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockReferenceRepository[T]) Save(ctx context.Context, entity T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockReferenceRepository[T]) Update(ctx context.Context, entity T) error {
	args := m.Called(ctx, entity)
	return args.Error(0)
}

func (m *MockReferenceRepository[T]) Deactivate(ctx context.Context, ids []string, userID string, now time.Time) error {
	args := m.Called(ctx, ids, userID, now)
	return args.Error(0)
}

// --- Mock AttendanceRepository ---
type MockAttendanceRepository struct {
	mockTxManager
}

var _ portsrepo.AttendanceRepositoryWithTx = (*MockAttendanceRepository)(nil)

func (m *MockAttendanceRepository) UpsertAttendance(ctx context.Context, tx pgx.Tx, marks []domain.Attendance) error {
	args := m.Called(ctx, tx, marks)
	return args.Error(0)
}

func (m *MockAttendanceRepository) ListAttendance(ctx context.Context, filter domain.AttendanceFilter) ([]domain.Attendance, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Attendance), args.Error(1)
}

// --- Mock Locker ---
type MockLocker struct {
	mock.Mock
}

var _ ports.Locker = (*MockLocker)(nil)

func (m *MockLocker) Obtain(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	args := m.Called(ctx, key, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func(context.Context) error), args.Error(1)
}

// fixedClock returns a clock stuck at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// sequentialIDs returns a generator of predictable ids with the given prefix.
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
