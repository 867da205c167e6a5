package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

type accountTransactionService struct {
	BaseService
	txnRepo          portsrepo.AccountTransactionRepositoryWithTx
	sequenceRepo     portsrepo.SequenceRepository
	counterpartyRepo portsrepo.CounterpartyRepository
	headRepo         portsrepo.ReferenceReader[*domain.AccountHead]
	newID            func() string
	now              func() time.Time
}

// NewAccountTransactionService creates the voucher service.
func NewAccountTransactionService(
	txnRepo portsrepo.AccountTransactionRepositoryWithTx,
	sequenceRepo portsrepo.SequenceRepository,
	counterpartyRepo portsrepo.CounterpartyRepository,
	headRepo portsrepo.ReferenceReader[*domain.AccountHead],
) portssvc.AccountTransactionSvc {
	return &accountTransactionService{
		txnRepo:          txnRepo,
		sequenceRepo:     sequenceRepo,
		counterpartyRepo: counterpartyRepo,
		headRepo:         headRepo,
		newID:            uuid.NewString,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

var _ portssvc.AccountTransactionSvc = (*accountTransactionService)(nil)

func (s *accountTransactionService) CreateTransaction(ctx context.Context, req dto.CreateAccountTransactionRequest, userID string) (*domain.AccountTransaction, error) {
	if req.TransactionDate.IsZero() {
		return nil, apperrors.NewValidationError("transactionDate is required")
	}
	if !req.Type.IsValid() {
		return nil, apperrors.NewValidationError("unknown transaction type %q", req.Type)
	}
	req.Amount = domain.RoundAmount(req.Amount)
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("amount must be greater than zero")
	}

	head, err := s.headRepo.FindByID(ctx, req.HeadID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewValidationError("account head %s does not exist", req.HeadID)
		}
		return nil, err
	}
	if head.HeadType != req.Type {
		return nil, apperrors.NewValidationError("account head %s is an %s head", head.Name, head.HeadType)
	}

	now := s.now()
	txn := domain.AccountTransaction{
		TransactionID:   s.newID(),
		TransactionDate: domain.TruncateToDate(req.TransactionDate.Time),
		HeadID:          head.ID,
		HeadName:        head.Name,
		Type:            req.Type,
		Amount:          req.Amount,
		Description:     strings.TrimSpace(req.Description),
		Status:          domain.TransactionActive,
		AuditFields:     domain.NewAuditFields(userID, now),
	}

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txnRepo.Rollback(ctx, tx)

	// The head may have been deactivated since it was read.
	if err := s.counterpartyRepo.EnsureActive(ctx, tx, domain.KindAccountHead, []string{head.ID}); err != nil {
		return nil, err
	}

	period := domain.PeriodOf(txn.TransactionDate)
	value, err := s.sequenceRepo.NextValue(ctx, tx, domain.SequenceAccountTransaction, period)
	if err != nil {
		return nil, err
	}
	if txn.VoucherNumber, err = domain.FormatReferenceNumber(domain.SequenceAccountTransaction, period, value); err != nil {
		return nil, err
	}

	if err := s.txnRepo.InsertTransaction(ctx, tx, txn); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Account transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("voucher_number", txn.VoucherNumber),
		slog.String("type", string(txn.Type)))
	return &txn, nil
}

func (s *accountTransactionService) GetTransaction(ctx context.Context, transactionID string) (*domain.AccountTransaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

func (s *accountTransactionService) ListTransactions(ctx context.Context, filter domain.AccountTransactionFilter) ([]domain.AccountTransaction, int, error) {
	txns, total, err := s.txnRepo.ListTransactions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list account transactions")
		return nil, 0, err
	}
	return txns, total, nil
}

// CancelTransaction is idempotent; a cancelled voucher is returned unchanged.
func (s *accountTransactionService) CancelTransaction(ctx context.Context, transactionID string, userID string) (*domain.AccountTransaction, error) {
	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txns, err := s.txnRepo.LockTransactions(ctx, tx, []string{transactionID})
	if err != nil {
		return nil, err
	}
	if len(txns) == 0 {
		return nil, apperrors.NewNotFoundError("account transaction " + transactionID)
	}
	txn := txns[0]
	if txn.Status == domain.TransactionCancelled {
		return &txn, nil
	}

	now := s.now()
	if err := s.txnRepo.UpdateTransactionStatuses(ctx, tx, []string{transactionID}, domain.TransactionCancelled, userID, now); err != nil {
		return nil, err
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	txn.Status = domain.TransactionCancelled
	txn.Touch(userID, now)
	s.LogInfo(ctx, "Account transaction cancelled", slog.String("transaction_id", transactionID))
	return &txn, nil
}

func (s *accountTransactionService) BulkCancelTransactions(ctx context.Context, transactionIDs []string, userID string) (int, error) {
	if len(transactionIDs) == 0 {
		return 0, apperrors.NewValidationError("at least one id is required")
	}

	tx, err := s.txnRepo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.txnRepo.Rollback(ctx, tx)

	txns, err := s.txnRepo.LockTransactions(ctx, tx, transactionIDs)
	if err != nil {
		return 0, err
	}
	var toCancel []string
	for _, t := range txns {
		if t.Status != domain.TransactionCancelled {
			toCancel = append(toCancel, t.TransactionID)
		}
	}
	if len(toCancel) > 0 {
		if err := s.txnRepo.UpdateTransactionStatuses(ctx, tx, toCancel, domain.TransactionCancelled, userID, s.now()); err != nil {
			return 0, err
		}
	}
	if err := s.txnRepo.Commit(ctx, tx); err != nil {
		return 0, err
	}

	s.LogInfo(ctx, "Account transactions cancelled", slog.Int("requested", len(transactionIDs)), slog.Int("cancelled", len(toCancel)))
	return len(toCancel), nil
}
