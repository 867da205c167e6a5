package handlers

import (
	"log/slog"

	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/middleware"
	"github.com/gin-gonic/gin"
)

// hrHandler handles attendance and salary generation.
type hrHandler struct {
	hrService portssvc.HRSvc
}

func newHRHandler(hs portssvc.HRSvc) *hrHandler {
	return &hrHandler{hrService: hs}
}

// registerHRRoutes registers employees, designations, attendance and salary runs.
func registerHRRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newHRHandler(services.HR)

	hr := rg.Group("/hr")
	{
		employees := hr.Group("/employee")
		registerReferenceRoutes(employees, &referenceHandler[*domain.Employee, dto.EmployeeRequest]{
			label: "Employee",
			svc:   services.Employee,
			newT:  func() *domain.Employee { return &domain.Employee{} },
		})
		employees.GET("/:id/ledger", newLedgerHandler(services.Reporting).counterpartyLedger(domain.CounterpartyEmployee))
		registerReferenceRoutes(hr.Group("/designation"), &referenceHandler[*domain.Designation, dto.DesignationRequest]{
			label: "Designation",
			svc:   services.Designation,
			newT:  func() *domain.Designation { return &domain.Designation{} },
		})

		hr.POST("/attendance", h.markAttendance)
		hr.GET("/attendance", h.listAttendance)

		salary := hr.Group("/salary")
		salary.POST("/generate", h.generateSalary)
		registerDocumentRoutes(salary, domain.SalaryRun, services.Documents)
	}
}

// markAttendance godoc
// @Summary Mark attendance for a day
// @Description Creates or overwrites the marks of the listed employees on the given date
// @Tags hr
// @Accept  json
// @Produce  json
// @Param   attendance body dto.MarkAttendanceRequest true "Attendance marks"
// @Success 200 {object} dto.Envelope{data=[]domain.Attendance}
// @Failure 400 {object} dto.Envelope "Validation error or inactive employee"
// @Failure 401 {object} dto.Envelope "Unauthorized"
// @Security BearerAuth
// @Router /hr/attendance [post]
func (h *hrHandler) markAttendance(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	marks, err := h.hrService.MarkAttendance(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, marks, "Attendance saved")
}

// listAttendance godoc
// @Summary List attendance
// @Tags hr
// @Produce  json
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Param   employeeId query string false "Employee ID"
// @Success 200 {object} dto.Envelope{data=[]domain.Attendance}
// @Failure 400 {object} dto.Envelope "Invalid date"
// @Security BearerAuth
// @Router /hr/attendance [get]
func (h *hrHandler) listAttendance(c *gin.Context) {
	rng, err := parseRange(c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, err)
		return
	}
	marks, err := h.hrService.ListAttendance(c.Request.Context(), domain.AttendanceFilter{
		Range:      rng,
		EmployeeID: optional(c.Query("employeeId")),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	if marks == nil {
		marks = []domain.Attendance{}
	}
	respondOK(c, marks)
}

// generateSalary godoc
// @Summary Generate the salary run of a month
// @Description Builds one line per active employee from the month's attendance and posts it as a salary document
// @Tags hr
// @Accept  json
// @Produce  json
// @Param   request body dto.GenerateSalaryRequest true "Salary month"
// @Success 201 {object} dto.Envelope{data=domain.Document}
// @Failure 400 {object} dto.Envelope "Invalid month, nothing payable or month already generated"
// @Security BearerAuth
// @Router /hr/salary/generate [post]
func (h *hrHandler) generateSalary(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req dto.GenerateSalaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	doc, err := h.hrService.GenerateSalaryRun(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Salary run generated",
		slog.String("month", req.Month), slog.String("document_id", doc.DocumentID))
	respondCreated(c, doc, "Salary generated")
}
