package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

// documentService runs the ledger-posting workflow shared by purchases,
// sales, production orders and salary runs.
type documentService struct {
	BaseService
	docRepo          portsrepo.DocumentRepositoryWithTx
	sequenceRepo     portsrepo.SequenceRepository
	counterpartyRepo portsrepo.CounterpartyRepository
	newID            func() string
	now              func() time.Time
}

// DocumentServiceOption configures the document service
type DocumentServiceOption func(*documentService)

// WithDocumentClock replaces the clock used for audit stamps.
func WithDocumentClock(now func() time.Time) DocumentServiceOption {
	return func(s *documentService) {
		s.now = now
	}
}

// WithDocumentIDGenerator replaces the generator of document, item and movement ids.
func WithDocumentIDGenerator(newID func() string) DocumentServiceOption {
	return func(s *documentService) {
		s.newID = newID
	}
}

// NewDocumentService creates the posting service.
func NewDocumentService(
	docRepo portsrepo.DocumentRepositoryWithTx,
	sequenceRepo portsrepo.SequenceRepository,
	counterpartyRepo portsrepo.CounterpartyRepository,
	options ...DocumentServiceOption,
) portssvc.DocumentSvcFacade {
	svc := &documentService{
		docRepo:          docRepo,
		sequenceRepo:     sequenceRepo,
		counterpartyRepo: counterpartyRepo,
		newID:            uuid.NewString,
		now:              func() time.Time { return time.Now().UTC() },
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.DocumentSvcFacade = (*documentService)(nil)

func (s *documentService) GetDocument(ctx context.Context, docType domain.DocumentType, documentID string) (*domain.Document, error) {
	doc, err := s.docRepo.FindDocumentByID(ctx, documentID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find document", slog.String("document_id", documentID))
		}
		return nil, err
	}
	if doc.DocumentType != docType {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s document %s", docType, documentID))
	}
	return doc, nil
}

func (s *documentService) ListDocuments(ctx context.Context, filter domain.DocumentFilter) ([]domain.Document, int, error) {
	if !filter.DocumentType.IsValid() {
		return nil, 0, apperrors.NewValidationError("unknown document type %q", filter.DocumentType)
	}
	docs, total, err := s.docRepo.ListDocuments(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list documents", slog.String("document_type", string(filter.DocumentType)))
		return nil, 0, err
	}
	return docs, total, nil
}

// CreateDocument validates the request, then posts header, items, stock
// movements and the counterparty delta in one transaction.
func (s *documentService) CreateDocument(ctx context.Context, docType domain.DocumentType, req dto.CreateDocumentRequest, userID string) (*domain.Document, error) {
	logger := s.GetLogger(ctx).With(slog.String("document_type", string(docType)))

	if !docType.IsValid() {
		return nil, apperrors.NewValidationError("unknown document type %q", docType)
	}
	items := dto.ToDomainItems(req.Items)
	req.Discount = domain.RoundAmount(req.Discount)
	req.PaidAmount = domain.RoundAmount(req.PaidAmount)
	if err := validateHeader(docType, req, items); err != nil {
		return nil, err
	}
	if err := validateItems(docType, items); err != nil {
		return nil, err
	}

	now := s.now()
	doc := domain.Document{
		DocumentID:       s.newID(),
		DocumentType:     docType,
		DocumentDate:     domain.TruncateToDate(req.DocumentDate.Time),
		CounterpartyType: docType.CounterpartyType(),
		PartyID:          req.PartyID,
		SalaryMonth:      req.SalaryMonth,
		Notes:            strings.TrimSpace(req.Notes),
		TransportInfo:    strings.TrimSpace(req.TransportInfo),
		Status:           domain.StatusActive,
		BalanceRevision:  1,
		AuditFields:      domain.NewAuditFields(userID, now),
	}
	s.stampItems(&doc, items)
	doc.Items = items

	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	previous, err := s.lockCounterparties(ctx, tx, doc)
	if err != nil {
		return nil, err
	}
	if err := s.ensureItemReferences(ctx, tx, items); err != nil {
		return nil, err
	}

	paid := req.PaidAmount
	if docType == domain.SalaryRun {
		paid = domain.SumItemPayments(items)
	}
	doc.DocumentTotals = domain.CalculateTotals(items, req.Discount, previous, paid)

	if docType == domain.SalaryRun && doc.SalaryMonth != nil {
		exists, err := s.docRepo.ActiveSalaryRunExists(ctx, tx, *doc.SalaryMonth)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, fmt.Errorf("%w: salary run for %s already exists", apperrors.ErrDuplicate, *doc.SalaryMonth)
		}
	}

	if doc.ReferenceNumber, err = s.referenceNumber(ctx, tx, docType, doc.DocumentDate, req.ReferenceNumber); err != nil {
		return nil, err
	}

	if err := s.docRepo.InsertDocument(ctx, tx, doc); err != nil {
		return nil, err
	}
	if err := s.docRepo.InsertDocumentItems(ctx, tx, items); err != nil {
		return nil, err
	}
	movements := domain.BuildStockMovements(doc, items, s.newID, userID, now)
	if err := s.docRepo.InsertStockMovements(ctx, tx, movements); err != nil {
		return nil, err
	}

	deltas := domain.BalanceDeltas(doc)
	if err := s.counterpartyRepo.ApplyBalanceDeltas(ctx, tx, s.ledgerMeta(doc, userID, now), deltas); err != nil {
		return nil, err
	}

	if err := s.docRepo.Commit(ctx, tx); err != nil {
		logger.Error("Failed to commit document", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Document posted",
		slog.String("document_id", doc.DocumentID),
		slog.String("reference_number", doc.ReferenceNumber),
		slog.Int("items", len(items)),
		slog.Int("movements", len(movements)))
	return &doc, nil
}

// UpdateDocument patches the header and moves the counterparty by the
// difference between the document's old and new effect.
func (s *documentService) UpdateDocument(ctx context.Context, docType domain.DocumentType, documentID string, req dto.UpdateDocumentRequest, userID string) (*domain.Document, error) {
	if docType == domain.SalaryRun && (req.Discount != nil || req.PaidAmount != nil) {
		return nil, apperrors.NewValidationError("salary run amounts are changed through its items")
	}

	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	doc, err := s.lockDocument(ctx, tx, docType, documentID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	before := domain.BalanceDeltas(*doc)
	changed, err := doc.ApplyPatch(domain.DocumentPatch{
		Discount:      req.Discount,
		PaidAmount:    req.PaidAmount,
		Status:        req.Status,
		Notes:         req.Notes,
		TransportInfo: req.TransportInfo,
		UpdatedBy:     userID,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	if !changed {
		return doc, nil
	}

	if err := s.applyDifference(ctx, tx, doc, before, userID, now); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateDocumentHeader(ctx, tx, *doc); err != nil {
		return nil, err
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document updated", slog.String("document_id", doc.DocumentID), slog.Int("balance_revision", doc.BalanceRevision))
	return doc, nil
}

// ReplaceDocumentItems swaps every line of a document. The old stock effect is
// offset by new movements rather than edited.
func (s *documentService) ReplaceDocumentItems(ctx context.Context, docType domain.DocumentType, documentID string, reqItems []dto.DocumentItemRequest, userID string) (*domain.Document, error) {
	if len(reqItems) == 0 {
		return nil, apperrors.NewValidationError("at least one item is required")
	}
	items := dto.ToDomainItems(reqItems)
	if err := validateItems(docType, items); err != nil {
		return nil, err
	}

	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	doc, err := s.lockDocument(ctx, tx, docType, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Status == domain.StatusCancelled {
		return nil, apperrors.NewValidationError("document %s is cancelled and cannot be changed", doc.ReferenceNumber)
	}

	if docType == domain.SalaryRun {
		if _, err := s.lockEmployees(ctx, tx, items); err != nil {
			return nil, err
		}
	}
	if err := s.ensureItemReferences(ctx, tx, items); err != nil {
		return nil, err
	}

	now := s.now()
	before := domain.BalanceDeltas(*doc)

	oldItemIDs := make([]string, 0, len(doc.Items))
	for _, it := range doc.Items {
		oldItemIDs = append(oldItemIDs, it.ItemID)
	}
	posted, err := s.docRepo.FindMovementsByItemIDs(ctx, tx, oldItemIDs)
	if err != nil {
		return nil, err
	}
	offsets := domain.OffsettingMovements(posted, s.newID, doc.DocumentDate, userID, now)
	if err := s.docRepo.InsertStockMovements(ctx, tx, offsets); err != nil {
		return nil, err
	}
	if err := s.docRepo.DeleteDocumentItems(ctx, tx, doc.DocumentID); err != nil {
		return nil, err
	}

	s.stampItems(doc, items)
	if err := s.docRepo.InsertDocumentItems(ctx, tx, items); err != nil {
		return nil, err
	}
	if err := s.docRepo.InsertStockMovements(ctx, tx, domain.BuildStockMovements(*doc, items, s.newID, userID, now)); err != nil {
		return nil, err
	}

	paid := doc.PaidAmount
	if docType == domain.SalaryRun {
		paid = domain.SumItemPayments(items)
	}
	doc.DocumentTotals = domain.CalculateTotals(items, doc.Discount, doc.PreviousBalance, paid)
	doc.Items = items
	doc.Touch(userID, now)

	if err := s.applyDifference(ctx, tx, doc, before, userID, now); err != nil {
		return nil, err
	}
	if err := s.docRepo.UpdateDocumentHeader(ctx, tx, *doc); err != nil {
		return nil, err
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document items replaced",
		slog.String("document_id", doc.DocumentID),
		slog.Int("offset_movements", len(offsets)),
		slog.Int("items", len(items)))
	return doc, nil
}

// CancelDocument only changes the status; balances and stock stay as posted.
func (s *documentService) CancelDocument(ctx context.Context, docType domain.DocumentType, documentID string, userID string) (*domain.Document, error) {
	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	doc, err := s.lockDocument(ctx, tx, docType, documentID)
	if err != nil {
		return nil, err
	}
	if !doc.Cancel(userID, s.now()) {
		return doc, nil
	}
	if err := s.docRepo.UpdateDocumentStatuses(ctx, tx, []string{doc.DocumentID}, doc.Status, userID, doc.LastUpdatedAt); err != nil {
		return nil, err
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "Document cancelled", slog.String("document_id", doc.DocumentID))
	return doc, nil
}

func (s *documentService) BulkCancelDocuments(ctx context.Context, docType domain.DocumentType, documentIDs []string, userID string) (int, error) {
	if len(documentIDs) == 0 {
		return 0, apperrors.NewValidationError("at least one id is required")
	}

	tx, err := s.docRepo.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer s.docRepo.Rollback(ctx, tx)

	docs, err := s.docRepo.LockDocuments(ctx, tx, docType, documentIDs)
	if err != nil {
		return 0, err
	}

	now := s.now()
	var toCancel []string
	for i := range docs {
		if docs[i].Cancel(userID, now) {
			toCancel = append(toCancel, docs[i].DocumentID)
		}
	}
	if err := s.docRepo.UpdateDocumentStatuses(ctx, tx, toCancel, domain.StatusCancelled, userID, now); err != nil {
		return 0, err
	}
	if err := s.docRepo.Commit(ctx, tx); err != nil {
		return 0, err
	}

	s.LogInfo(ctx, "Documents cancelled", slog.Int("requested", len(documentIDs)), slog.Int("cancelled", len(toCancel)))
	return len(toCancel), nil
}

func (s *documentService) lockDocument(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, documentID string) (*domain.Document, error) {
	doc, err := s.docRepo.LockDocument(ctx, tx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.DocumentType != docType {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("%s document %s", docType, documentID))
	}
	return doc, nil
}

// lockCounterparties locks whoever the document moves and returns the
// previous balance carried onto it.
func (s *documentService) lockCounterparties(ctx context.Context, tx pgx.Tx, doc domain.Document) (decimal.Decimal, error) {
	switch doc.CounterpartyType {
	case domain.CounterpartyParty:
		party, err := s.counterpartyRepo.LockParty(ctx, tx, *doc.PartyID)
		if err != nil {
			return decimal.Zero, err
		}
		if party.Status != domain.LifecycleActive {
			return decimal.Zero, apperrors.NewValidationError("party %s is inactive", party.Name)
		}
		if !party.PartyType.CanTrade(doc.DocumentType) {
			return decimal.Zero, apperrors.NewValidationError("party %s is a %s and cannot be used on %s", party.Name, party.PartyType, doc.DocumentType)
		}
		return doc.DocumentType.PreviousBalanceFrom(party.Balance), nil
	case domain.CounterpartyEmployee:
		if _, err := s.lockEmployees(ctx, tx, doc.Items); err != nil {
			return decimal.Zero, err
		}
	}
	return decimal.Zero, nil
}

func (s *documentService) lockEmployees(ctx context.Context, tx pgx.Tx, items []domain.DocumentItem) (map[string]domain.Employee, error) {
	ids := collectIDs(items, func(it domain.DocumentItem) *string { return it.EmployeeID })
	employees, err := s.counterpartyRepo.LockEmployees(ctx, tx, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		e, ok := employees[id]
		if !ok {
			return nil, apperrors.NewValidationError("employee %s does not exist", id)
		}
		if e.Status != domain.LifecycleActive {
			return nil, apperrors.NewValidationError("employee %s is inactive", e.Name)
		}
	}
	return employees, nil
}

// ensureItemReferences checks that every category, product and store on the
// items exists and is active.
func (s *documentService) ensureItemReferences(ctx context.Context, tx pgx.Tx, items []domain.DocumentItem) error {
	refs := []struct {
		kind domain.ReferenceKind
		get  func(domain.DocumentItem) *string
	}{
		{domain.KindCategory, func(it domain.DocumentItem) *string { return it.CategoryID }},
		{domain.KindProduct, func(it domain.DocumentItem) *string { return it.ProductID }},
		{domain.KindGodown, func(it domain.DocumentItem) *string { return it.GodownID }},
		{domain.KindSilo, func(it domain.DocumentItem) *string { return it.SiloID }},
	}
	for _, ref := range refs {
		if err := s.counterpartyRepo.EnsureActive(ctx, tx, ref.kind, collectIDs(items, ref.get)); err != nil {
			return err
		}
	}
	return nil
}

// referenceNumber returns the explicit number after a uniqueness check, or
// draws the next one from the sequence inside tx. Generated values already
// taken by an explicit number are skipped.
func (s *documentService) referenceNumber(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, date time.Time, explicit *string) (string, error) {
	if explicit != nil && strings.TrimSpace(*explicit) != "" {
		ref := strings.TrimSpace(*explicit)
		exists, err := s.docRepo.ReferenceNumberExists(ctx, tx, docType, ref)
		if err != nil {
			return "", err
		}
		if exists {
			return "", fmt.Errorf("%w: reference number %s is already used", apperrors.ErrDuplicate, ref)
		}
		return ref, nil
	}

	seq := domain.SequenceFor(docType)
	period := domain.PeriodOf(date)
	for {
		value, err := s.sequenceRepo.NextValue(ctx, tx, seq, period)
		if err != nil {
			return "", err
		}
		ref, err := domain.FormatReferenceNumber(seq, period, value)
		if err != nil {
			return "", err
		}
		exists, err := s.docRepo.ReferenceNumberExists(ctx, tx, docType, ref)
		if err != nil {
			return "", err
		}
		if !exists {
			return ref, nil
		}
		s.LogInfo(ctx, "Skipping reference number taken explicitly", slog.String("reference_number", ref))
	}
}

// applyDifference moves counterparties from the before effect to the
// document's current one as the next ledger revision.
func (s *documentService) applyDifference(ctx context.Context, tx pgx.Tx, doc *domain.Document, before []domain.BalanceDelta, userID string, now time.Time) error {
	diff := domain.DiffBalanceDeltas(before, domain.BalanceDeltas(*doc))
	if len(diff) == 0 {
		return nil
	}
	doc.BalanceRevision++
	return s.counterpartyRepo.ApplyBalanceDeltas(ctx, tx, s.ledgerMeta(*doc, userID, now), diff)
}

func (s *documentService) ledgerMeta(doc domain.Document, userID string, now time.Time) portsrepo.LedgerEntryMeta {
	return portsrepo.LedgerEntryMeta{
		DocumentID: doc.DocumentID,
		Revision:   doc.BalanceRevision,
		EntryDate:  doc.DocumentDate,
		UserID:     userID,
		CreatedAt:  now,
	}
}

// stampItems assigns ids, the owning document and line totals.
func (s *documentService) stampItems(doc *domain.Document, items []domain.DocumentItem) {
	for i := range items {
		items[i].ItemID = s.newID()
		items[i].DocumentID = doc.DocumentID
		items[i].TotalPrice = items[i].LineTotal()
	}
}

func validateHeader(docType domain.DocumentType, req dto.CreateDocumentRequest, items []domain.DocumentItem) error {
	if len(items) == 0 {
		return apperrors.NewValidationError("at least one item is required")
	}
	if req.DocumentDate.IsZero() {
		return apperrors.NewValidationError("documentDate is required")
	}
	if req.Discount.IsNegative() {
		return apperrors.NewValidationError("discount cannot be negative")
	}
	if req.PaidAmount.IsNegative() {
		return apperrors.NewValidationError("paid amount cannot be negative")
	}

	switch docType.CounterpartyType() {
	case domain.CounterpartyParty:
		if req.PartyID == nil || *req.PartyID == "" {
			return apperrors.NewValidationError("partyId is required for %s", docType)
		}
	default:
		if req.PartyID != nil && *req.PartyID != "" {
			return apperrors.NewValidationError("%s documents do not take a party", docType)
		}
	}

	if docType == domain.SalaryRun {
		if req.SalaryMonth == nil || !domain.IsSalaryMonth(*req.SalaryMonth) {
			return apperrors.NewValidationError("salaryMonth must be a YYYY-MM month")
		}
		if !req.Discount.IsZero() {
			return apperrors.NewValidationError("salary runs do not take a discount")
		}
		if !req.PaidAmount.IsZero() && !req.PaidAmount.Equal(domain.SumItemPayments(items)) {
			return apperrors.NewValidationError("paid amount of a salary run is the sum of its item payments")
		}
	}
	return nil
}

func validateItems(docType domain.DocumentType, items []domain.DocumentItem) error {
	for _, it := range items {
		line := it.LineNo
		if !it.Quantity.IsPositive() {
			return apperrors.NewValidationError("item %d: quantity must be greater than zero", line)
		}
		if it.NetWeight.IsNegative() || it.Rate.IsNegative() || it.PaidAmount.IsNegative() {
			return apperrors.NewValidationError("item %d: weight, rate and paid amount cannot be negative", line)
		}
		if !it.PriceBasis.IsValid() {
			return apperrors.NewValidationError("item %d: unknown price basis %q", line, it.PriceBasis)
		}
		if it.Consumed && docType != domain.Production {
			return apperrors.NewValidationError("item %d: only production inputs can be consumed", line)
		}

		if docType == domain.SalaryRun {
			if isBlank(it.EmployeeID) {
				return apperrors.NewValidationError("item %d: employeeId is required", line)
			}
			if !isBlank(it.ProductID) || !isBlank(it.GodownID) || !isBlank(it.SiloID) {
				return apperrors.NewValidationError("item %d: salary items do not carry stock", line)
			}
			continue
		}

		if isBlank(it.CategoryID) || isBlank(it.ProductID) {
			return apperrors.NewValidationError("item %d: categoryId and productId are required", line)
		}
		if isBlank(it.GodownID) == isBlank(it.SiloID) {
			return apperrors.NewValidationError("item %d: exactly one of godownId or siloId is required", line)
		}
		if !isBlank(it.EmployeeID) {
			return apperrors.NewValidationError("item %d: employeeId is only allowed on salary runs", line)
		}
		if !it.PaidAmount.IsZero() {
			return apperrors.NewValidationError("item %d: item payments are only allowed on salary runs", line)
		}
	}
	return nil
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// collectIDs returns the distinct non-empty ids picked from items, sorted.
func collectIDs(items []domain.DocumentItem, pick func(domain.DocumentItem) *string) []string {
	seen := make(map[string]bool)
	var ids []string
	for _, it := range items {
		if id := pick(it); !isBlank(id) && !seen[*id] {
			seen[*id] = true
			ids = append(ids, *id)
		}
	}
	sort.Strings(ids)
	return ids
}
