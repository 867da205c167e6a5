package handlers

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// accountTransactionHandler handles income and expense vouchers.
type accountTransactionHandler struct {
	txnService portssvc.AccountTransactionSvc
}

func newAccountTransactionHandler(ts portssvc.AccountTransactionSvc) *accountTransactionHandler {
	return &accountTransactionHandler{txnService: ts}
}

// registerAccountRoutes registers account heads and vouchers.
func registerAccountRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newAccountTransactionHandler(services.AccountTxn)

	accounts := rg.Group("/accounts")
	{
		registerAccountHeadRoutes(accounts, services.AccountHead)

		txns := accounts.Group("/transactions")
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.POST("/bulk-cancel", h.bulkCancelTransactions)
		txns.GET("/:id", h.getTransaction)
		txns.POST("/:id/cancel", h.cancelTransaction)
	}
}

// createTransaction godoc
// @Summary Record an income or expense voucher
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   transaction body dto.CreateAccountTransactionRequest true "Voucher"
// @Success 201 {object} dto.Envelope{data=domain.AccountTransaction}
// @Failure 400 {object} dto.Envelope "Validation error or head type mismatch"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /accounts/transactions [post]
func (h *accountTransactionHandler) createTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateAccountTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.txnService.CreateTransaction(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, txn, "Transaction created")
}

// listTransactions godoc
// @Summary List vouchers
// @Tags accounts
// @Produce  json
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   headId query string false "Account head ID"
// @Param   type query string false "INCOME or EXPENSE"
// @Param   page query int false "Page (1-based)"
// @Param   pageSize query int false "Page size"
// @Success 200 {object} dto.Envelope{data=[]domain.AccountTransaction}
// @Failure 400 {object} dto.Envelope "Invalid query"
// @Security BearerAuth
// @Router /accounts/transactions [get]
func (h *accountTransactionHandler) listTransactions(c *gin.Context) {
	var q dto.ListAccountTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	rng, err := parseRange(q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	page := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	filter := domain.AccountTransactionFilter{
		Range:  rng,
		HeadID: optional(q.HeadID),
		Limit:  page.Limit(),
		Offset: page.Offset(),
	}
	if q.Type != "" {
		t := domain.HeadType(q.Type)
		filter.Type = &t
	}

	txns, total, err := h.txnService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if txns == nil {
		txns = []domain.AccountTransaction{}
	}
	respondList(c, txns, page.Meta(total))
}

// getTransaction godoc
// @Summary Get a voucher
// @Tags accounts
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Envelope{data=domain.AccountTransaction}
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /accounts/transactions/{id} [get]
func (h *accountTransactionHandler) getTransaction(c *gin.Context) {
	txn, err := h.txnService.GetTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, txn)
}

// cancelTransaction godoc
// @Summary Cancel a voucher
// @Tags accounts
// @Produce  json
// @Param   id path string true "Transaction ID"
// @Success 200 {object} dto.Envelope{data=domain.AccountTransaction}
// @Failure 404 {object} dto.Envelope "Transaction not found"
// @Security BearerAuth
// @Router /accounts/transactions/{id}/cancel [post]
func (h *accountTransactionHandler) cancelTransaction(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	txn, err := h.txnService.CancelTransaction(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, txn, "Transaction cancelled")
}

// bulkCancelTransactions godoc
// @Summary Cancel several vouchers
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   ids body dto.BulkIDsRequest true "Transaction IDs"
// @Success 200 {object} dto.Envelope{data=dto.BulkResult}
// @Failure 404 {object} dto.Envelope "A transaction was not found"
// @Security BearerAuth
// @Router /accounts/transactions/bulk-cancel [post]
func (h *accountTransactionHandler) bulkCancelTransactions(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	n, err := h.txnService.BulkCancelTransactions(c.Request.Context(), req.IDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, dto.BulkResult{Affected: n}, "Transactions cancelled")
}
