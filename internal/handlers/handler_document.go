package handlers

import (
	"log/slog"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/middleware"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// documentHandler serves one document type. Purchases, sales, production
// orders and salary runs share it.
type documentHandler struct {
	docType    domain.DocumentType
	docService portssvc.DocumentSvcFacade
}

func newDocumentHandler(docType domain.DocumentType, ds portssvc.DocumentSvcFacade) *documentHandler {
	return &documentHandler{docType: docType, docService: ds}
}

// registerDocumentRoutes mounts the document routes of docType on rg.
func registerDocumentRoutes(rg *gin.RouterGroup, docType domain.DocumentType, ds portssvc.DocumentSvcFacade) {
	h := newDocumentHandler(docType, ds)

	rg.POST("", h.createDocument)
	rg.GET("", h.listDocuments)
	rg.POST("/bulk-cancel", h.bulkCancelDocuments)
	rg.GET("/:id", h.getDocument)
	rg.PATCH("/:id", h.updateDocument)
	rg.PUT("/:id/items", h.replaceItems)
	rg.POST("/:id/cancel", h.cancelDocument)
}

// createDocument godoc
// @Summary Post a new document
// @Description Creates the document with its items, writes stock movements and moves the counterparty balance in one transaction
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   document body dto.CreateDocumentRequest true "Document"
// @Success 201 {object} dto.Envelope{data=domain.Document}
// @Failure 400 {object} dto.Envelope "Validation error or duplicate reference number"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Failure 500 {object} dto.Envelope "Internal server error"
// @Security BearerAuth
// @Router /purchase/paddy [post]
// @Router /purchase/rice [post]
// @Router /sales [post]
// @Router /production/orders [post]
// @Router /hr/salary [post]
func (h *documentHandler) createDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.docService.CreateDocument(c.Request.Context(), h.docType, req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Document posted",
		slog.String("document_id", doc.DocumentID), slog.String("reference", doc.ReferenceNumber))
	respondCreated(c, doc, "Document created")
}

// listDocuments godoc
// @Summary List documents
// @Description Lists document headers newest first
// @Tags documents
// @Produce  json
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   partyId query string false "Party ID"
// @Param   status query string false "active, completed or cancelled"
// @Param   search query string false "Reference number or notes"
// @Param   page query int false "Page (1-based)"
// @Param   pageSize query int false "Page size"
// @Success 200 {object} dto.Envelope{data=[]domain.Document}
// @Failure 400 {object} dto.Envelope "Invalid query"
// @Security BearerAuth
// @Router /purchase/paddy [get]
// @Router /purchase/rice [get]
// @Router /sales [get]
// @Router /production/orders [get]
// @Router /hr/salary [get]
func (h *documentHandler) listDocuments(c *gin.Context) {
	var q dto.ListDocumentsQuery
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
	filter := domain.DocumentFilter{
		DocumentType: h.docType,
		Range:        rng,
		PartyID:      optional(q.PartyID),
		Search:       q.Search,
		Limit:        page.Limit(),
		Offset:       page.Offset(),
	}
	if q.Status != "" {
		st := domain.DocumentStatus(q.Status)
		filter.Status = &st
	}

	docs, total, err := h.docService.ListDocuments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	respondList(c, docs, page.Meta(total))
}

// getDocument godoc
// @Summary Get a document
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.Envelope{data=domain.Document}
// @Failure 404 {object} dto.Envelope "Document not found"
// @Security BearerAuth
// @Router /purchase/paddy/{id} [get]
// @Router /purchase/rice/{id} [get]
// @Router /sales/{id} [get]
// @Router /production/orders/{id} [get]
// @Router /hr/salary/{id} [get]
func (h *documentHandler) getDocument(c *gin.Context) {
	doc, err := h.docService.GetDocument(c.Request.Context(), h.docType, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, doc)
}

// updateDocument godoc
// @Summary Update document header fields
// @Description Changing paid amount or discount re-applies the balance difference
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   document body dto.UpdateDocumentRequest true "Fields to change"
// @Success 200 {object} dto.Envelope{data=domain.Document}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "Document not found"
// @Security BearerAuth
// @Router /purchase/paddy/{id} [patch]
// @Router /purchase/rice/{id} [patch]
// @Router /sales/{id} [patch]
// @Router /production/orders/{id} [patch]
// @Router /hr/salary/{id} [patch]
func (h *documentHandler) updateDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.docService.UpdateDocument(c.Request.Context(), h.docType, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, doc, "Document updated")
}

// replaceItems godoc
// @Summary Replace document items
// @Description Replaces every line, offsetting the stock effect of the old lines
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   id path string true "Document ID"
// @Param   items body dto.ReplaceItemsRequest true "New items"
// @Success 200 {object} dto.Envelope{data=domain.Document}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "Document not found"
// @Security BearerAuth
// @Router /purchase/paddy/{id}/items [put]
// @Router /purchase/rice/{id}/items [put]
// @Router /sales/{id}/items [put]
// @Router /production/orders/{id}/items [put]
// @Router /hr/salary/{id}/items [put]
func (h *documentHandler) replaceItems(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.docService.ReplaceDocumentItems(c.Request.Context(), h.docType, c.Param("id"), req.Items, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, doc, "Document items replaced")
}

// cancelDocument godoc
// @Summary Cancel a document
// @Description Cancelling an already cancelled document succeeds without changes
// @Tags documents
// @Produce  json
// @Param   id path string true "Document ID"
// @Success 200 {object} dto.Envelope{data=domain.Document}
// @Failure 404 {object} dto.Envelope "Document not found"
// @Security BearerAuth
// @Router /purchase/paddy/{id}/cancel [post]
// @Router /purchase/rice/{id}/cancel [post]
// @Router /sales/{id}/cancel [post]
// @Router /production/orders/{id}/cancel [post]
// @Router /hr/salary/{id}/cancel [post]
func (h *documentHandler) cancelDocument(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	doc, err := h.docService.CancelDocument(c.Request.Context(), h.docType, c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, doc, "Document cancelled")
}

// bulkCancelDocuments godoc
// @Summary Cancel several documents
// @Description All ids are cancelled or none are
// @Tags documents
// @Accept  json
// @Produce  json
// @Param   ids body dto.BulkIDsRequest true "Document IDs"
// @Success 200 {object} dto.Envelope{data=dto.BulkResult}
// @Failure 400 {object} dto.Envelope "Validation error"
// @Failure 404 {object} dto.Envelope "A document was not found"
// @Security BearerAuth
// @Router /purchase/paddy/bulk-cancel [post]
// @Router /purchase/rice/bulk-cancel [post]
// @Router /sales/bulk-cancel [post]
// @Router /production/orders/bulk-cancel [post]
// @Router /hr/salary/bulk-cancel [post]
func (h *documentHandler) bulkCancelDocuments(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	n, err := h.docService.BulkCancelDocuments(c.Request.Context(), h.docType, req.IDs, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, dto.BulkResult{Affected: n}, "Documents cancelled")
}
