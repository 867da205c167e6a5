package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portsrepo "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/repositories"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
)

type DocumentServiceTestSuite struct {
	suite.Suite
	docRepo  *MockDocumentRepository
	seqRepo  *MockSequenceRepository
	cpRepo   *MockCounterpartyRepository
	service  portssvc.DocumentSvcFacade
	ctx      context.Context
	now      time.Time
	userID   string
	supplier *domain.Party
	customer *domain.Party
}

func (suite *DocumentServiceTestSuite) SetupTest() {
	suite.docRepo = new(MockDocumentRepository)
	suite.seqRepo = new(MockSequenceRepository)
	suite.cpRepo = new(MockCounterpartyRepository)
	suite.now = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	suite.service = services.NewDocumentService(suite.docRepo, suite.seqRepo, suite.cpRepo,
		services.WithDocumentClock(fixedClock(suite.now)),
		services.WithDocumentIDGenerator(sequentialIDs("id")),
	)
	suite.ctx = context.Background()
	suite.userID = "user-1"

	suite.supplier = &domain.Party{
		ReferenceBase: domain.ReferenceBase{ID: "party-supplier", Name: "Karim Traders", Status: domain.LifecycleActive},
		PartyType:     domain.PartySupplier,
		Balance:       decimal.Zero,
	}
	suite.customer = &domain.Party{
		ReferenceBase: domain.ReferenceBase{ID: "party-customer", Name: "Rahman Stores", Status: domain.LifecycleActive},
		PartyType:     domain.PartyCustomer,
		Balance:       decimal.NewFromInt(1500),
	}

	// Every posting defers a rollback.
	suite.docRepo.On("Rollback", suite.ctx, mock.Anything).Return(nil).Maybe()
}

func TestDocumentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentServiceTestSuite))
}

func strPtr(s string) *string { return &s }

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func stockItem(qty, rate int64) dto.DocumentItemRequest {
	return dto.DocumentItemRequest{
		CategoryID: strPtr("cat-paddy"),
		ProductID:  strPtr("prod-paddy"),
		GodownID:   strPtr("godown-1"),
		Quantity:   decimal.NewFromInt(qty),
		Rate:       decimal.NewFromInt(rate),
	}
}

func (suite *DocumentServiceTestSuite) purchaseRequest() dto.CreateDocumentRequest {
	return dto.CreateDocumentRequest{
		DocumentDate: dto.Date{Time: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		PartyID:      strPtr(suite.supplier.ID),
		Discount:     decimal.NewFromInt(200),
		PaidAmount:   decimal.NewFromInt(3000),
		Items:        []dto.DocumentItemRequest{stockItem(10, 500), stockItem(5, 1000)},
	}
}

func (suite *DocumentServiceTestSuite) expectReferencesActive() {
	suite.cpRepo.On("EnsureActive", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil)
}

func (suite *DocumentServiceTestSuite) expectFreeReference(docType domain.DocumentType, ref string) {
	suite.docRepo.On("ReferenceNumberExists", suite.ctx, mock.Anything, docType, ref).Return(false, nil).Once()
}

func amountIs(want int64) func([]domain.BalanceDelta) bool {
	return func(deltas []domain.BalanceDelta) bool {
		return len(deltas) == 1 && deltas[0].Amount.Equal(decimal.NewFromInt(want))
	}
}

func (suite *DocumentServiceTestSuite) TestCreatePurchase_PostsTotalsMovementsAndDelta() {
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.supplier.ID).Return(suite.supplier, nil).Once()
	suite.expectReferencesActive()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(1), nil).Once()
	suite.expectFreeReference(domain.PaddyPurchase, "PP-2024-000001")
	suite.docRepo.On("InsertDocument", suite.ctx, mock.Anything, mock.MatchedBy(func(d domain.Document) bool {
		return d.ReferenceNumber == "PP-2024-000001" && d.BalanceRevision == 1
	})).Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.MatchedBy(func(items []domain.DocumentItem) bool {
		return len(items) == 2 && items[0].TotalPrice.Equal(decimal.NewFromInt(5000))
	})).Return(nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 2 && ms[0].Direction == domain.MovementIn && ms[1].Direction == domain.MovementIn
	})).Return(nil).Once()
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything,
		mock.MatchedBy(func(meta portsrepo.LedgerEntryMeta) bool { return meta.Revision == 1 }),
		mock.MatchedBy(amountIs(-6800)),
	).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, suite.purchaseRequest(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal("PP-2024-000001", doc.ReferenceNumber)
	suite.True(doc.InvoiceAmount.Equal(decimal.NewFromInt(10000)))
	suite.True(doc.TotalAmount.Equal(decimal.NewFromInt(9800)))
	suite.True(doc.NetPayable.Equal(decimal.NewFromInt(9800)))
	suite.True(doc.CurrentBalance.Equal(decimal.NewFromInt(6800)))
	suite.Equal(domain.StatusActive, doc.Status)
	suite.Equal(domain.CounterpartyParty, doc.CounterpartyType)
	suite.Len(doc.Items, 2)
	suite.Equal(suite.userID, doc.CreatedBy)
	suite.Equal(suite.now, doc.CreatedAt)

	suite.docRepo.AssertExpectations(suite.T())
	suite.seqRepo.AssertExpectations(suite.T())
	suite.cpRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreateSale_CarriesCustomerBalance() {
	req := suite.purchaseRequest()
	req.PartyID = strPtr(suite.customer.ID)
	req.Discount = decimal.Zero
	req.PaidAmount = decimal.NewFromInt(4000)

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.customer.ID).Return(suite.customer, nil).Once()
	suite.expectReferencesActive()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequenceSale, "2024").Return(int64(7), nil).Once()
	suite.expectFreeReference(domain.Sale, "SL-2024-000007")
	suite.docRepo.On("InsertDocument", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 2 && ms[0].Direction == domain.MovementOut
	})).Return(nil).Once()
	// own effect: 10000 - 4000 = 6000 receivable on top of the carried 1500
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything, mock.Anything, mock.MatchedBy(amountIs(6000))).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.CreateDocument(suite.ctx, domain.Sale, req, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("SL-2024-000007", doc.ReferenceNumber)
	suite.True(doc.PreviousBalance.Equal(decimal.NewFromInt(1500)))
	suite.True(doc.NetPayable.Equal(decimal.NewFromInt(11500)))
	suite.True(doc.CurrentBalance.Equal(decimal.NewFromInt(7500)))
	suite.cpRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreate_DuplicateExplicitReferenceNumber() {
	req := suite.purchaseRequest()
	req.ReferenceNumber = strPtr("PP-MANUAL-1")

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.supplier.ID).Return(suite.supplier, nil).Once()
	suite.expectReferencesActive()
	suite.docRepo.On("ReferenceNumberExists", suite.ctx, mock.Anything, domain.PaddyPurchase, "PP-MANUAL-1").Return(true, nil).Once()

	_, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.seqRepo.AssertNotCalled(suite.T(), "NextValue", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.docRepo.AssertNotCalled(suite.T(), "InsertDocument", mock.Anything, mock.Anything, mock.Anything)
	suite.docRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreate_GeneratedNumberSkipsExplicitlyTakenValues() {
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.supplier.ID).Return(suite.supplier, nil).Once()
	suite.expectReferencesActive()
	// 5 and 6 were stored as explicit numbers earlier.
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(5), nil).Once()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(6), nil).Once()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(7), nil).Once()
	suite.docRepo.On("ReferenceNumberExists", suite.ctx, mock.Anything, domain.PaddyPurchase, "PP-2024-000005").Return(true, nil).Once()
	suite.docRepo.On("ReferenceNumberExists", suite.ctx, mock.Anything, domain.PaddyPurchase, "PP-2024-000006").Return(true, nil).Once()
	suite.expectFreeReference(domain.PaddyPurchase, "PP-2024-000007")
	suite.docRepo.On("InsertDocument", suite.ctx, mock.Anything, mock.MatchedBy(func(d domain.Document) bool {
		return d.ReferenceNumber == "PP-2024-000007"
	})).Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, suite.purchaseRequest(), suite.userID)

	suite.Require().NoError(err)
	suite.Equal("PP-2024-000007", doc.ReferenceNumber)
	suite.seqRepo.AssertNumberOfCalls(suite.T(), "NextValue", 3)
	suite.docRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreate_RoundsInputsToStoredScale() {
	req := suite.purchaseRequest()
	req.Discount = decimal.RequireFromString("0.004")
	req.PaidAmount = decimal.RequireFromString("10.005")
	req.Items = []dto.DocumentItemRequest{stockItem(2, 0)}
	req.Items[0].Rate = decimal.RequireFromString("10.125")
	req.Items[0].Quantity = decimal.RequireFromString("2.0004")

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.supplier.ID).Return(suite.supplier, nil).Once()
	suite.expectReferencesActive()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(3), nil).Once()
	suite.expectFreeReference(domain.PaddyPurchase, "PP-2024-000003")
	suite.docRepo.On("InsertDocument", suite.ctx, mock.Anything, mock.MatchedBy(func(d domain.Document) bool {
		return d.InvoiceAmount.Equal(decimal.RequireFromString("20.26")) &&
			d.Discount.IsZero() &&
			d.PaidAmount.Equal(decimal.RequireFromString("10.01"))
	})).Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.MatchedBy(func(items []domain.DocumentItem) bool {
		it := items[0]
		return it.Rate.Equal(decimal.RequireFromString("10.13")) &&
			it.Quantity.Equal(decimal.NewFromInt(2)) &&
			it.TotalPrice.Equal(it.Quantity.Mul(it.Rate))
	})).Return(nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	doc, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(doc.CurrentBalance.Equal(decimal.RequireFromString("10.25")), "current %s", doc.CurrentBalance)
	suite.docRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestCreate_RejectsCustomerOnPurchase() {
	req := suite.purchaseRequest()
	req.PartyID = strPtr(suite.customer.ID)

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.customer.ID).Return(suite.customer, nil).Once()

	_, err := suite.service.CreateDocument(suite.ctx, domain.RicePurchase, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.docRepo.AssertNotCalled(suite.T(), "InsertDocument", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreate_ValidationFailsBeforeAnyWrite() {
	tests := []struct {
		name   string
		mutate func(*dto.CreateDocumentRequest)
	}{
		{"no items", func(r *dto.CreateDocumentRequest) { r.Items = nil }},
		{"negative discount", func(r *dto.CreateDocumentRequest) { r.Discount = decimal.NewFromInt(-1) }},
		{"negative paid", func(r *dto.CreateDocumentRequest) { r.PaidAmount = decimal.NewFromInt(-5) }},
		{"missing party", func(r *dto.CreateDocumentRequest) { r.PartyID = nil }},
		{"zero quantity", func(r *dto.CreateDocumentRequest) { r.Items[0].Quantity = decimal.Zero }},
		{"negative rate", func(r *dto.CreateDocumentRequest) { r.Items[1].Rate = decimal.NewFromInt(-10) }},
		{"both godown and silo", func(r *dto.CreateDocumentRequest) { r.Items[0].SiloID = strPtr("silo-1") }},
		{"no store", func(r *dto.CreateDocumentRequest) { r.Items[0].GodownID = nil }},
		{"consumed on purchase", func(r *dto.CreateDocumentRequest) { r.Items[0].Consumed = true }},
	}
	for _, tt := range tests {
		suite.Run(tt.name, func() {
			req := suite.purchaseRequest()
			tt.mutate(&req)

			_, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, req, suite.userID)

			suite.Require().Error(err)
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
	suite.docRepo.AssertNotCalled(suite.T(), "Begin", mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreate_ItemFailureRollsBack() {
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockParty", suite.ctx, mock.Anything, suite.supplier.ID).Return(suite.supplier, nil).Once()
	suite.expectReferencesActive()
	suite.seqRepo.On("NextValue", suite.ctx, mock.Anything, domain.SequencePaddyPurchase, "2024").Return(int64(2), nil).Once()
	suite.expectFreeReference(domain.PaddyPurchase, "PP-2024-000002")
	suite.docRepo.On("InsertDocument", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.Anything).
		Return(apperrors.NewValidationError("document_items_product_id_fkey")).Once()

	_, err := suite.service.CreateDocument(suite.ctx, domain.PaddyPurchase, suite.purchaseRequest(), suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.docRepo.AssertCalled(suite.T(), "Rollback", suite.ctx, mock.Anything)
	suite.docRepo.AssertNotCalled(suite.T(), "InsertStockMovements", mock.Anything, mock.Anything, mock.Anything)
	suite.docRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
	suite.cpRepo.AssertNotCalled(suite.T(), "ApplyBalanceDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCreateSalary_RejectsSecondRunForMonth() {
	req := dto.CreateDocumentRequest{
		DocumentDate: dto.Date{Time: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC)},
		SalaryMonth:  strPtr("2024-02"),
		Items: []dto.DocumentItemRequest{{
			EmployeeID: strPtr("emp-1"),
			Quantity:   decimal.NewFromInt(26),
			Rate:       decimal.NewFromInt(500),
		}},
	}
	employees := map[string]domain.Employee{
		"emp-1": {ReferenceBase: domain.ReferenceBase{ID: "emp-1", Name: "Jamal", Status: domain.LifecycleActive}},
	}

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.cpRepo.On("LockEmployees", suite.ctx, mock.Anything, []string{"emp-1"}).Return(employees, nil).Once()
	suite.expectReferencesActive()
	suite.docRepo.On("ActiveSalaryRunExists", suite.ctx, mock.Anything, "2024-02").Return(true, nil).Once()

	_, err := suite.service.CreateDocument(suite.ctx, domain.SalaryRun, req, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
	suite.docRepo.AssertNotCalled(suite.T(), "InsertDocument", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) postedPurchase() *domain.Document {
	items := []domain.DocumentItem{
		{ItemID: "item-1", DocumentID: "doc-1", LineNo: 1, CategoryID: strPtr("cat-paddy"), ProductID: strPtr("prod-paddy"),
			GodownID: strPtr("godown-1"), Quantity: decimal.NewFromInt(10), Rate: decimal.NewFromInt(500),
			PriceBasis: domain.PriceByQuantity, TotalPrice: decimal.NewFromInt(5000)},
		{ItemID: "item-2", DocumentID: "doc-1", LineNo: 2, CategoryID: strPtr("cat-paddy"), ProductID: strPtr("prod-paddy"),
			GodownID: strPtr("godown-1"), Quantity: decimal.NewFromInt(5), Rate: decimal.NewFromInt(1000),
			PriceBasis: domain.PriceByQuantity, TotalPrice: decimal.NewFromInt(5000)},
	}
	doc := &domain.Document{
		DocumentID:       "doc-1",
		ReferenceNumber:  "PP-2024-000001",
		DocumentType:     domain.PaddyPurchase,
		DocumentDate:     time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		CounterpartyType: domain.CounterpartyParty,
		PartyID:          strPtr(suite.supplier.ID),
		Status:           domain.StatusActive,
		BalanceRevision:  1,
		Items:            items,
	}
	doc.DocumentTotals = domain.CalculateTotals(items, decimal.NewFromInt(200), decimal.Zero, decimal.NewFromInt(3000))
	return doc
}

func (suite *DocumentServiceTestSuite) TestUpdate_PaidAmountAppliesDifferenceAsNextRevision() {
	doc := suite.postedPurchase()
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()
	// paying 1000 more lowers what the mill owes by 1000
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything,
		mock.MatchedBy(func(meta portsrepo.LedgerEntryMeta) bool { return meta.Revision == 2 }),
		mock.MatchedBy(amountIs(1000)),
	).Return(nil).Once()
	suite.docRepo.On("UpdateDocumentHeader", suite.ctx, mock.Anything, mock.MatchedBy(func(d domain.Document) bool {
		return d.BalanceRevision == 2 && d.CurrentBalance.Equal(decimal.NewFromInt(5800))
	})).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.UpdateDocument(suite.ctx, domain.PaddyPurchase, "doc-1",
		dto.UpdateDocumentRequest{PaidAmount: decPtr(4000)}, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.PaidAmount.Equal(decimal.NewFromInt(4000)))
	suite.Equal(suite.userID, updated.LastUpdatedBy)
	suite.docRepo.AssertExpectations(suite.T())
	suite.cpRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestUpdate_NotesOnlyLeavesBalanceAlone() {
	doc := suite.postedPurchase()
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.docRepo.On("UpdateDocumentHeader", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.UpdateDocument(suite.ctx, domain.PaddyPurchase, "doc-1",
		dto.UpdateDocumentRequest{Notes: strPtr("truck 14")}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal("truck 14", updated.Notes)
	suite.Equal(1, updated.BalanceRevision)
	suite.cpRepo.AssertNotCalled(suite.T(), "ApplyBalanceDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdate_CancelledDocumentRejected() {
	doc := suite.postedPurchase()
	doc.Status = domain.StatusCancelled
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()

	_, err := suite.service.UpdateDocument(suite.ctx, domain.PaddyPurchase, "doc-1",
		dto.UpdateDocumentRequest{Discount: decPtr(0)}, suite.userID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.docRepo.AssertNotCalled(suite.T(), "UpdateDocumentHeader", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestUpdate_WrongTypeIsNotFound() {
	doc := suite.postedPurchase()
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()

	_, err := suite.service.UpdateDocument(suite.ctx, domain.Sale, "doc-1",
		dto.UpdateDocumentRequest{Notes: strPtr("x")}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *DocumentServiceTestSuite) TestReplaceItems_OffsetsOldMovements() {
	doc := suite.postedPurchase()
	posted := []domain.StockMovement{
		{MovementID: "mv-1", DocumentID: "doc-1", DocumentItemID: strPtr("item-1"), ProductID: "prod-paddy",
			GodownID: strPtr("godown-1"), Direction: domain.MovementIn, Quantity: decimal.NewFromInt(10)},
		{MovementID: "mv-2", DocumentID: "doc-1", DocumentItemID: strPtr("item-2"), ProductID: "prod-paddy",
			GodownID: strPtr("godown-1"), Direction: domain.MovementIn, Quantity: decimal.NewFromInt(5)},
	}

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()
	suite.expectReferencesActive()
	suite.docRepo.On("FindMovementsByItemIDs", suite.ctx, mock.Anything, []string{"item-1", "item-2"}).Return(posted, nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 2 && ms[0].Direction == domain.MovementOut && ms[1].Direction == domain.MovementOut &&
			ms[0].Quantity.Equal(decimal.NewFromInt(10))
	})).Return(nil).Once()
	suite.docRepo.On("DeleteDocumentItems", suite.ctx, mock.Anything, "doc-1").Return(nil).Once()
	suite.docRepo.On("InsertDocumentItems", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("InsertStockMovements", suite.ctx, mock.Anything, mock.MatchedBy(func(ms []domain.StockMovement) bool {
		return len(ms) == 1 && ms[0].Direction == domain.MovementIn && ms[0].Quantity.Equal(decimal.NewFromInt(20))
	})).Return(nil).Once()
	// invoice drops from 10000 to 8000: the mill owes 2000 less
	suite.cpRepo.On("ApplyBalanceDeltas", suite.ctx, mock.Anything,
		mock.MatchedBy(func(meta portsrepo.LedgerEntryMeta) bool { return meta.Revision == 2 }),
		mock.MatchedBy(amountIs(2000)),
	).Return(nil).Once()
	suite.docRepo.On("UpdateDocumentHeader", suite.ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	updated, err := suite.service.ReplaceDocumentItems(suite.ctx, domain.PaddyPurchase, "doc-1",
		[]dto.DocumentItemRequest{stockItem(20, 400)}, suite.userID)

	suite.Require().NoError(err)
	suite.True(updated.InvoiceAmount.Equal(decimal.NewFromInt(8000)))
	suite.True(updated.CurrentBalance.Equal(decimal.NewFromInt(4800)))
	suite.Len(updated.Items, 1)
	suite.docRepo.AssertExpectations(suite.T())
	suite.cpRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestReplaceItems_CancelledDocumentRejected() {
	doc := suite.postedPurchase()
	doc.Status = domain.StatusCancelled
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Once()

	_, err := suite.service.ReplaceDocumentItems(suite.ctx, domain.PaddyPurchase, "doc-1",
		[]dto.DocumentItemRequest{stockItem(1, 1)}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.docRepo.AssertNotCalled(suite.T(), "DeleteDocumentItems", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestCancel_IsIdempotent() {
	doc := suite.postedPurchase()
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Twice()
	suite.docRepo.On("LockDocument", suite.ctx, mock.Anything, "doc-1").Return(doc, nil).Twice()
	suite.docRepo.On("UpdateDocumentStatuses", suite.ctx, mock.Anything, []string{"doc-1"}, domain.StatusCancelled, suite.userID, suite.now).
		Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	first, err := suite.service.CancelDocument(suite.ctx, domain.PaddyPurchase, "doc-1", suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, first.Status)

	second, err := suite.service.CancelDocument(suite.ctx, domain.PaddyPurchase, "doc-1", suite.userID)
	suite.Require().NoError(err)
	suite.Equal(domain.StatusCancelled, second.Status)

	suite.docRepo.AssertExpectations(suite.T())
	suite.cpRepo.AssertNotCalled(suite.T(), "ApplyBalanceDeltas", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestBulkCancel_UnknownIDFailsWholeCall() {
	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocuments", suite.ctx, mock.Anything, domain.Sale, []string{"doc-1", "missing"}).
		Return(nil, apperrors.NewNotFoundError("documents missing")).Once()

	count, err := suite.service.BulkCancelDocuments(suite.ctx, domain.Sale, []string{"doc-1", "missing"}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrNotFound)
	suite.Zero(count)
	suite.docRepo.AssertNotCalled(suite.T(), "UpdateDocumentStatuses", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.docRepo.AssertNotCalled(suite.T(), "Commit", mock.Anything, mock.Anything)
}

func (suite *DocumentServiceTestSuite) TestBulkCancel_SkipsAlreadyCancelled() {
	active := *suite.postedPurchase()
	cancelled := *suite.postedPurchase()
	cancelled.DocumentID = "doc-2"
	cancelled.Status = domain.StatusCancelled

	suite.docRepo.On("Begin", suite.ctx).Return(nil, nil).Once()
	suite.docRepo.On("LockDocuments", suite.ctx, mock.Anything, domain.PaddyPurchase, []string{"doc-1", "doc-2"}).
		Return([]domain.Document{active, cancelled}, nil).Once()
	suite.docRepo.On("UpdateDocumentStatuses", suite.ctx, mock.Anything, []string{"doc-1"}, domain.StatusCancelled, suite.userID, suite.now).
		Return(nil).Once()
	suite.docRepo.On("Commit", suite.ctx, mock.Anything).Return(nil).Once()

	count, err := suite.service.BulkCancelDocuments(suite.ctx, domain.PaddyPurchase, []string{"doc-1", "doc-2"}, suite.userID)

	suite.Require().NoError(err)
	suite.Equal(1, count)
	suite.docRepo.AssertExpectations(suite.T())
}

func (suite *DocumentServiceTestSuite) TestGetDocument_TypeMismatchIsNotFound() {
	suite.docRepo.On("FindDocumentByID", suite.ctx, "doc-1").Return(suite.postedPurchase(), nil).Once()

	_, err := suite.service.GetDocument(suite.ctx, domain.Production, "doc-1")

	assert.ErrorIs(suite.T(), err, apperrors.ErrNotFound)
}
