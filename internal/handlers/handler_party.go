package handlers

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/gin-gonic/gin"
)

// ledgerHandler serves the balance history of parties and employees.
type ledgerHandler struct {
	reportingService portssvc.ReportingService
}

func newLedgerHandler(rs portssvc.ReportingService) *ledgerHandler {
	return &ledgerHandler{reportingService: rs}
}

func registerPartyRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newLedgerHandler(services.Reporting)

	parties := rg.Group("/party/parties")
	registerReferenceRoutes(parties, &referenceHandler[*domain.Party, dto.PartyRequest]{
		label: "Party",
		svc:   services.Party,
		newT:  func() *domain.Party { return &domain.Party{} },
	})
	parties.GET("/:id/ledger", h.counterpartyLedger(domain.CounterpartyParty))
}

// counterpartyLedger godoc
// @Summary Get a party's or employee's ledger
// @Description Lists every balance change of the counterparty, oldest first
// @Tags ledger
// @Produce  json
// @Param   id path string true "Party or employee ID"
// @Param   from query string false "From date (YYYY-MM-DD)"
// @Param   to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} dto.Envelope{data=[]domain.LedgerEntry}
// @Failure 400 {object} dto.Envelope "Invalid date"
// @Security BearerAuth
// @Router /party/parties/{id}/ledger [get]
// @Router /hr/employee/{id}/ledger [get]
func (h *ledgerHandler) counterpartyLedger(kind domain.CounterpartyType) gin.HandlerFunc {
	return func(c *gin.Context) {
		rng, err := parseRange(c.Query("from"), c.Query("to"))
		if err != nil {
			respondError(c, err)
			return
		}
		entries, err := h.reportingService.CounterpartyLedger(c.Request.Context(), domain.LedgerFilter{
			CounterpartyType: kind,
			CounterpartyID:   c.Param("id"),
			Range:            rng,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		if entries == nil {
			entries = []domain.LedgerEntry{}
		}
		respondOK(c, entries)
	}
}
