package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/handlers"
	"github.com/KabriAcid/ammamricemill-sub002/internal/platform/config"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/validation"
)

const (
	testUserID    = "user-1"
	testSessionID = "session-1"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Meta    *struct {
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
	} `json:"meta"`
}

type HandlerTestSuite struct {
	suite.Suite
	router    *gin.Engine
	jwtSecret string

	docs      *MockDocumentService
	auth      *MockAuthService
	hr        *MockHRService
	reporting *MockReportingService
	category  *MockReferenceService[*domain.Category]
	heads     *MockReferenceService[*domain.AccountHead]
}

func TestHandlers(t *testing.T) {
	suite.Run(t, new(HandlerTestSuite))
}

func (suite *HandlerTestSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	suite.Require().NoError(validation.RegisterCustomValidators("BD"))
}

func (suite *HandlerTestSuite) SetupTest() {
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.docs = new(MockDocumentService)
	suite.auth = new(MockAuthService)
	suite.hr = new(MockHRService)
	suite.reporting = new(MockReportingService)
	suite.category = new(MockReferenceService[*domain.Category])
	suite.heads = new(MockReferenceService[*domain.AccountHead])

	suite.auth.On("ValidateSession", mock.Anything, testSessionID, testUserID).Return(nil).Maybe()

	services := &portssvc.ServiceContainer{
		Documents:   suite.docs,
		Auth:        suite.auth,
		HR:          suite.hr,
		Reporting:   suite.reporting,
		Category:    suite.category,
		AccountHead: suite.heads,
	}
	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}

	suite.router = gin.New()
	handlers.RegisterRoutes(suite.router, cfg, services, nil, nil)
}

func (suite *HandlerTestSuite) generateTestToken(userID, sessionID string) string {
	token, _, err := utils.GenerateJWT(userID, sessionID, suite.jwtSecret, time.Hour, "ricemill-test", time.Now())
	suite.Require().NoError(err)
	return token
}

func (suite *HandlerTestSuite) do(method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	reader := bytes.NewReader(nil)
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, path, reader)
	suite.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID, testSessionID))

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func purchaseBody() map[string]any {
	return map[string]any{
		"documentDate": "2024-03-15",
		"partyId":      "party-1",
		"paidAmount":   "3000",
		"items": []map[string]any{
			{"productId": "prod-1", "godownId": "godown-1", "quantity": "100", "rate": "100"},
		},
	}
}

func (suite *HandlerTestSuite) TestHealth_NoAuth() {
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *HandlerTestSuite) TestAuth_MissingHeaderIs401() {
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.docs.AssertNotCalled(suite.T(), "ListDocuments", mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestAuth_BadSignatureIs403() {
	token, _, err := utils.GenerateJWT(testUserID, testSessionID, "another-secret", time.Hour, "x", time.Now())
	suite.Require().NoError(err)
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestAuth_RevokedSessionIs403() {
	suite.auth.On("ValidateSession", mock.Anything, "revoked", testUserID).Return(apperrors.ErrForbidden).Once()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales", nil)
	req.Header.Set("Authorization", "Bearer "+suite.generateTestToken(testUserID, "revoked"))
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	suite.Equal(http.StatusForbidden, w.Code)
}

func (suite *HandlerTestSuite) TestCreatePaddyPurchase_Success() {
	doc := &domain.Document{DocumentID: "doc-1", ReferenceNumber: "PP-2024-000001", DocumentType: domain.PaddyPurchase}
	suite.docs.On("CreateDocument", mock.Anything, domain.PaddyPurchase, mock.MatchedBy(func(r dto.CreateDocumentRequest) bool {
		return len(r.Items) == 1 && r.PaidAmount.Equal(decimal.NewFromInt(3000)) &&
			r.DocumentDate.Equal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	}), testUserID).Return(doc, nil).Once()

	w, env := suite.do(http.MethodPost, "/api/v1/purchase/paddy", purchaseBody())

	suite.Equal(http.StatusCreated, w.Code)
	suite.True(env.Success)
	var got domain.Document
	suite.Require().NoError(json.Unmarshal(env.Data, &got))
	suite.Equal("PP-2024-000001", got.ReferenceNumber)
	suite.docs.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateDocument_BindErrors() {
	noItems := purchaseBody()
	delete(noItems, "items")
	badMonth := purchaseBody()
	badMonth["salaryMonth"] = "2024-13"
	badDate := purchaseBody()
	badDate["documentDate"] = "15/03/2024"

	for name, body := range map[string]map[string]any{"no items": noItems, "bad month": badMonth, "bad date": badDate} {
		w, env := suite.do(http.MethodPost, "/api/v1/sales", body)
		suite.Equal(http.StatusBadRequest, w.Code, name)
		suite.False(env.Success, name)
	}
	suite.docs.AssertNotCalled(suite.T(), "CreateDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestServiceErrorsMapToStatus() {
	cases := []struct {
		err    error
		status int
	}{
		{apperrors.NewValidationError("party is not a supplier"), http.StatusBadRequest},
		{apperrors.ErrDuplicate, http.StatusBadRequest},
		{apperrors.NewNotFoundError("document x"), http.StatusNotFound},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		suite.docs.On("GetDocument", mock.Anything, domain.Sale, "x").Return(nil, tc.err).Once()
		w, env := suite.do(http.MethodGet, "/api/v1/sales/x", nil)
		suite.Equal(tc.status, w.Code, tc.err.Error())
		suite.False(env.Success)
		if tc.status == http.StatusInternalServerError {
			suite.Equal("Internal server error", env.Error)
		}
	}
}

func (suite *HandlerTestSuite) TestListDocuments_PaginationAndFilter() {
	suite.docs.On("ListDocuments", mock.Anything, mock.MatchedBy(func(f domain.DocumentFilter) bool {
		return f.DocumentType == domain.RicePurchase && f.Limit == 10 && f.Offset == 10 &&
			f.Status != nil && *f.Status == domain.StatusCancelled &&
			f.Range.From != nil && f.Range.To == nil
	})).Return([]domain.Document{{DocumentID: "d-11"}}, 11, nil).Once()

	w, env := suite.do(http.MethodGet, "/api/v1/purchase/rice?page=2&pageSize=10&status=cancelled&from=2024-01-01", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Require().NotNil(env.Meta)
	suite.Equal(11, env.Meta.Total)
	suite.Equal(2, env.Meta.Page)
	suite.docs.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestBulkCancel() {
	suite.docs.On("BulkCancelDocuments", mock.Anything, domain.Production, []string{"a", "b"}, testUserID).Return(2, nil).Once()

	w, env := suite.do(http.MethodPost, "/api/v1/production/orders/bulk-cancel", map[string]any{"ids": []string{"a", "b"}})

	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"affected":2}`, string(env.Data))
}

func (suite *HandlerTestSuite) TestGenerateSalary_RoutesToHR() {
	doc := &domain.Document{DocumentID: "sal-1", DocumentType: domain.SalaryRun}
	suite.hr.On("GenerateSalaryRun", mock.Anything, mock.MatchedBy(func(r dto.GenerateSalaryRequest) bool {
		return r.Month == "2024-03"
	}), testUserID).Return(doc, nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/v1/hr/salary/generate", map[string]any{"month": "2024-03"})

	suite.Equal(http.StatusCreated, w.Code)
	suite.hr.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCancelSalaryRun_UsesSalaryType() {
	suite.docs.On("CancelDocument", mock.Anything, domain.SalaryRun, "sal-1", testUserID).
		Return(&domain.Document{DocumentID: "sal-1", Status: domain.StatusCancelled}, nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/v1/hr/salary/sal-1/cancel", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.docs.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestCreateCategory() {
	suite.category.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Category) bool {
		return c.Name == "Paddy"
	}), testUserID).Return(&domain.Category{ReferenceBase: domain.ReferenceBase{ID: "cat-1", Name: "Paddy"}}, nil).Once()

	w, env := suite.do(http.MethodPost, "/api/v1/settings/category", map[string]any{"name": "Paddy"})

	suite.Equal(http.StatusCreated, w.Code)
	suite.Contains(string(env.Data), `"cat-1"`)
}

func (suite *HandlerTestSuite) TestAccountHead_TypeComesFromPath() {
	suite.heads.On("Create", mock.Anything, mock.MatchedBy(func(h *domain.AccountHead) bool {
		return h.HeadType == domain.HeadExpense && h.Name == "Electricity"
	}), testUserID).Return(&domain.AccountHead{ReferenceBase: domain.ReferenceBase{ID: "h-1"}, HeadType: domain.HeadExpense}, nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/v1/accounts/head-expense", map[string]any{"name": "Electricity"})
	suite.Equal(http.StatusCreated, w.Code)

	suite.heads.On("List", mock.Anything, mock.MatchedBy(func(f domain.ReferenceFilter) bool {
		return f.TypeCode == string(domain.HeadIncome)
	})).Return([]*domain.AccountHead{}, 0, nil).Once()
	w, _ = suite.do(http.MethodGet, "/api/v1/accounts/head-income", nil)
	suite.Equal(http.StatusOK, w.Code)
	suite.heads.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestAccountHead_OtherTypeIsNotFound() {
	expense := &domain.AccountHead{ReferenceBase: domain.ReferenceBase{ID: "h-1"}, HeadType: domain.HeadExpense}
	suite.heads.On("Get", mock.Anything, "h-1").Return(expense, nil)

	w, _ := suite.do(http.MethodGet, "/api/v1/accounts/head-income/h-1", nil)
	suite.Equal(http.StatusNotFound, w.Code)

	w, _ = suite.do(http.MethodDelete, "/api/v1/accounts/head-income/h-1", nil)
	suite.Equal(http.StatusNotFound, w.Code)
	suite.heads.AssertNotCalled(suite.T(), "Deactivate", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestBulkDeleteReferencedCategory() {
	suite.category.On("Deactivate", mock.Anything, []string{"cat-1"}, testUserID).
		Return(apperrors.ErrReferenced).Once()

	w, env := suite.do(http.MethodPost, "/api/v1/settings/category/bulk-delete", map[string]any{"ids": []string{"cat-1"}})

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.False(env.Success)
}

func (suite *HandlerTestSuite) TestExportDailyReport_SendsWorkbook() {
	date := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	suite.reporting.On("ExportDailyReport", mock.Anything, date, true, testUserID).
		Return([]byte("PK\x03\x04"), "daily-report-2024-03-15.xlsx", nil).Once()

	w, _ := suite.do(http.MethodGet, "/api/v1/reporting/daily-report/export?date=2024-03-15&includeCancelled=true", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.Equal("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	suite.Contains(w.Header().Get("Content-Disposition"), "daily-report-2024-03-15.xlsx")
	suite.Equal("PK\x03\x04", w.Body.String())
}

func (suite *HandlerTestSuite) TestCounterpartyLedger_RoutesByKind() {
	tests := []struct {
		path string
		kind domain.CounterpartyType
		id   string
	}{
		{"/api/v1/party/parties/party-1/ledger?from=2024-01-01", domain.CounterpartyParty, "party-1"},
		{"/api/v1/hr/employee/emp-1/ledger?from=2024-01-01", domain.CounterpartyEmployee, "emp-1"},
	}
	for _, tt := range tests {
		suite.Run(string(tt.kind), func() {
			suite.reporting.On("CounterpartyLedger", mock.Anything, mock.MatchedBy(func(f domain.LedgerFilter) bool {
				return f.CounterpartyType == tt.kind && f.CounterpartyID == tt.id && f.Range.From != nil && f.Range.To == nil
			})).Return(nil, nil).Once()

			w, env := suite.do(http.MethodGet, tt.path, nil)

			suite.Equal(http.StatusOK, w.Code)
			suite.True(env.Success)
			suite.JSONEq(`{"success":true,"data":[]}`, w.Body.String())
		})
	}
	suite.reporting.AssertExpectations(suite.T())
}

func (suite *HandlerTestSuite) TestFinancialStatement_BadDate() {
	w, _ := suite.do(http.MethodGet, "/api/v1/reporting/financial-statement?from=yesterday", nil)
	suite.Equal(http.StatusBadRequest, w.Code)
	suite.reporting.AssertNotCalled(suite.T(), "FinancialStatement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *HandlerTestSuite) TestLogin_BadCredentials() {
	suite.auth.On("Login", mock.Anything, "manager", "nope").
		Return(nil, apperrors.ErrUnauthorized).Once()

	body, _ := json.Marshal(map[string]string{"username": "manager", "password": "nope"})
	req, _ := http.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
}

func (suite *HandlerTestSuite) TestLogout_RevokesCurrentSession() {
	suite.auth.On("Logout", mock.Anything, testSessionID).Return(nil).Once()

	w, _ := suite.do(http.MethodPost, "/api/v1/auth/logout", nil)

	suite.Equal(http.StatusOK, w.Code)
	suite.auth.AssertExpectations(suite.T())
}
