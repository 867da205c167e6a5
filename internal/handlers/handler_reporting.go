package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// reportingHandler handles HTTP requests related to reports
type reportingHandler struct {
	reportingService portssvc.ReportingSvcFacade
	now              func() time.Time
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingSvcFacade) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
		now:              func() time.Time { return time.Now().UTC() },
	}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingSvcFacade) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reporting")
	{
		reportingGroup.GET("/daily-report", h.getDailyReport)
		reportingGroup.GET("/daily-report/export", h.exportDailyReport)
		reportingGroup.GET("/financial-statement", h.getFinancialStatement)
		reportingGroup.GET("/stock-register", h.getStockRegister)
		reportingGroup.GET("/stock-register/export", h.exportStockRegister)
	}
}

// getDailyReport godoc
// @Summary Daily report
// @Description Postings, income, expense and the cash position of one day
// @Tags reports
// @Produce json
// @Param date query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param includeCancelled query bool false "Include cancelled records"
// @Success 200 {object} dto.Envelope{data=domain.DailyReport}
// @Failure 400 {object} dto.Envelope "Invalid date"
// @Security BearerAuth
// @Router /reporting/daily-report [get]
func (h *reportingHandler) getDailyReport(c *gin.Context) {
	q, date, err := h.dailyQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	report, err := h.reportingService.DailyReport(c.Request.Context(), date, q.IncludeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// exportDailyReport godoc
// @Summary Export the daily report
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param date query string false "Report date (YYYY-MM-DD)" default(current date)
// @Param includeCancelled query bool false "Include cancelled records"
// @Success 200 {file} file
// @Failure 400 {object} dto.Envelope "Invalid date"
// @Security BearerAuth
// @Router /reporting/daily-report/export [get]
func (h *reportingHandler) exportDailyReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	q, date, err := h.dailyQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, name, err := h.reportingService.ExportDailyReport(c.Request.Context(), date, q.IncludeCancelled, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, name, data)
}

// getFinancialStatement godoc
// @Summary Financial statement
// @Description Revenue, cost of goods, salaries, other income and expense, and profit over a period
// @Tags reports
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param includeCancelled query bool false "Include cancelled records"
// @Success 200 {object} dto.Envelope{data=domain.FinancialStatement}
// @Failure 400 {object} dto.Envelope "Invalid date range"
// @Security BearerAuth
// @Router /reporting/financial-statement [get]
func (h *reportingHandler) getFinancialStatement(c *gin.Context) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	rng, err := parseRange(q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	fs, err := h.reportingService.FinancialStatement(c.Request.Context(), rng, q.IncludeCancelled)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, fs)
}

// getStockRegister godoc
// @Summary Stock register
// @Description Opening, in, out and closing quantity per product and location
// @Tags reports
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param productId query string false "Product ID"
// @Param godownId query string false "Godown ID"
// @Param siloId query string false "Silo ID"
// @Param includeCancelled query bool false "Include movements of cancelled documents"
// @Success 200 {object} dto.Envelope{data=[]domain.StockRegisterRow}
// @Failure 400 {object} dto.Envelope "Invalid query"
// @Security BearerAuth
// @Router /reporting/stock-register [get]
func (h *reportingHandler) getStockRegister(c *gin.Context) {
	filter, err := stockFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	rows, err := h.reportingService.StockRegister(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if rows == nil {
		rows = []domain.StockRegisterRow{}
	}
	respondOK(c, rows)
}

// exportStockRegister godoc
// @Summary Export the stock register
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param productId query string false "Product ID"
// @Param godownId query string false "Godown ID"
// @Param siloId query string false "Silo ID"
// @Success 200 {file} file
// @Failure 400 {object} dto.Envelope "Invalid query"
// @Security BearerAuth
// @Router /reporting/stock-register/export [get]
func (h *reportingHandler) exportStockRegister(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	filter, err := stockFilter(c)
	if err != nil {
		respondError(c, err)
		return
	}
	data, name, err := h.reportingService.ExportStockRegister(c.Request.Context(), filter, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	sendWorkbook(c, name, data)
}

func (h *reportingHandler) dailyQuery(c *gin.Context) (dto.ReportQuery, time.Time, error) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return q, time.Time{}, apperrors.NewValidationError("%v", err)
	}
	if q.Date == "" {
		return q, domain.TruncateToDate(h.now()), nil
	}
	date, err := dto.ParseDate(q.Date)
	if err != nil {
		return q, time.Time{}, apperrors.NewValidationError("date: %v", err)
	}
	return q, date, nil
}

func stockFilter(c *gin.Context) (domain.StockRegisterFilter, error) {
	var q dto.ReportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return domain.StockRegisterFilter{}, apperrors.NewValidationError("%v", err)
	}
	rng, err := parseRange(q.From, q.To)
	if err != nil {
		return domain.StockRegisterFilter{}, err
	}
	return domain.StockRegisterFilter{
		ProductID:        optional(q.ProductID),
		GodownID:         optional(q.GodownID),
		SiloID:           optional(q.SiloID),
		Range:            rng,
		IncludeCancelled: q.IncludeCancelled,
	}, nil
}

func sendWorkbook(c *gin.Context, name string, data []byte) {
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Report exported", slog.String("file", name), slog.Int("bytes", len(data)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, xlsxContentType, data)
}
