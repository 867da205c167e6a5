package repositories

import (
	"context"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// DocumentReader defines read operations outside a posting transaction
type DocumentReader interface {
	// FindDocumentByID retrieves a document header with its items.
	FindDocumentByID(ctx context.Context, documentID string) (*domain.Document, error)

	// ListDocuments retrieves headers matching the filter and the total match count.
	ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error)
}

// DocumentTxWriter defines the steps of a posting transaction
type DocumentTxWriter interface {
	// LockDocument loads a header and its items with the header row locked.
	LockDocument(ctx context.Context, tx pgx.Tx, documentID string) (*domain.Document, error)

	// LockDocuments locks every header of the given type. A missing id fails with ErrNotFound.
	LockDocuments(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, documentIDs []string) ([]domain.Document, error)

	ReferenceNumberExists(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, referenceNumber string) (bool, error)

	// ActiveSalaryRunExists reports whether a non-cancelled run for the month exists.
	ActiveSalaryRunExists(ctx context.Context, tx pgx.Tx, month string) (bool, error)

	InsertDocument(ctx context.Context, tx pgx.Tx, doc domain.Document) error

	// UpdateDocumentHeader writes totals, status, notes, transport info, revision and audit fields.
	UpdateDocumentHeader(ctx context.Context, tx pgx.Tx, doc domain.Document) error

	UpdateDocumentStatuses(ctx context.Context, tx pgx.Tx, documentIDs []string, status domain.DocumentStatus, userID string, now time.Time) error

	InsertDocumentItems(ctx context.Context, tx pgx.Tx, items []domain.DocumentItem) error

	DeleteDocumentItems(ctx context.Context, tx pgx.Tx, documentID string) error
}

// StockMovementStore appends to and reads the inventory ledger
type StockMovementStore interface {
	InsertStockMovements(ctx context.Context, tx pgx.Tx, movements []domain.StockMovement) error

	// FindMovementsByItemIDs returns the movements posted for the given items.
	FindMovementsByItemIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) ([]domain.StockMovement, error)
}

// DocumentRepositoryWithTx combines document persistence with transaction control
type DocumentRepositoryWithTx interface {
	DocumentReader
	DocumentTxWriter
	StockMovementStore
	TransactionManager
}

// SequenceRepository issues reference numbers inside the caller's transaction
type SequenceRepository interface {
	// NextValue atomically increments and returns the counter for (seq, period).
	NextValue(ctx context.Context, tx pgx.Tx, seq domain.SequenceType, period string) (int64, error)
}

// LedgerEntryMeta describes the posting that produced a set of balance deltas.
type LedgerEntryMeta struct {
	DocumentID string
	Revision   int
	EntryDate  time.Time
	UserID     string
	CreatedAt  time.Time
}

// CounterpartyRepository locks counterparties and applies balance changes
type CounterpartyRepository interface {
	// EnsureActive verifies that every id of the kind exists and is active and holds a
	// share lock on those rows until the transaction ends.
	EnsureActive(ctx context.Context, tx pgx.Tx, kind domain.ReferenceKind, ids []string) error

	// LockParty locks a party row FOR UPDATE.
	LockParty(ctx context.Context, tx pgx.Tx, partyID string) (*domain.Party, error)

	// LockEmployees locks employee rows FOR UPDATE in id order.
	LockEmployees(ctx context.Context, tx pgx.Tx, employeeIDs []string) (map[string]domain.Employee, error)

	// ApplyBalanceDeltas records each delta in the counterparty ledger and moves the
	// balance. A delta already recorded for the same document and revision is skipped.
	ApplyBalanceDeltas(ctx context.Context, tx pgx.Tx, meta LedgerEntryMeta, deltas []domain.BalanceDelta) error
}
