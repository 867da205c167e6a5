package handlers

import (
	"github.com/KabriAcid/ammamricemill-sub002/internal/apperrors"
	"github.com/KabriAcid/ammamricemill-sub002/internal/core/domain"
	portssvc "github.com/KabriAcid/ammamricemill-sub002/internal/core/ports/services"
	"github.com/KabriAcid/ammamricemill-sub002/internal/dto"
	"github.com/KabriAcid/ammamricemill-sub002/internal/utils/pagination"
	"github.com/gin-gonic/gin"
)

// referenceHandler serves CRUD for one reference kind. R is the request body,
// which also applies itself to an existing entity on update.
type referenceHandler[T domain.Referenced, R portssvc.ReferenceChanges[T]] struct {
	label string
	svc   portssvc.ReferenceSvc[T]
	newT  func() T

	// typeCode narrows listings, owns hides entities outside the route's scope.
	typeCode string
	owns     func(T) bool
}

func registerReferenceRoutes[T domain.Referenced, R portssvc.ReferenceChanges[T]](rg *gin.RouterGroup, h *referenceHandler[T, R]) {
	rg.POST("", h.create)
	rg.GET("", h.list)
	rg.POST("/bulk-delete", h.bulkDelete)
	rg.GET("/:id", h.get)
	rg.PUT("/:id", h.update)
	rg.DELETE("/:id", h.delete)
}

func (h *referenceHandler[T, R]) create(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	entity := h.newT()
	req.ApplyTo(entity)
	created, err := h.svc.Create(c.Request.Context(), entity, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, created, h.label+" created")
}

func (h *referenceHandler[T, R]) list(c *gin.Context) {
	var q dto.ListReferenceQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondBindError(c, err)
		return
	}
	page := pagination.Params{Page: q.Page, PageSize: q.PageSize}
	filter := domain.ReferenceFilter{
		Search:   q.Search,
		TypeCode: h.typeCode,
		Limit:    page.Limit(),
		Offset:   page.Offset(),
	}
	if filter.TypeCode == "" {
		filter.TypeCode = q.Type
	}
	if q.Status != "" {
		st := domain.Lifecycle(q.Status)
		filter.Status = &st
	}

	items, total, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	respondList(c, items, page.Meta(total))
}

func (h *referenceHandler[T, R]) get(c *gin.Context) {
	entity, err := h.load(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, entity)
}

func (h *referenceHandler[T, R]) update(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	if _, err := h.load(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, updated, h.label+" updated")
}

func (h *referenceHandler[T, R]) delete(c *gin.Context) {
	h.deactivate(c, []string{c.Param("id")})
}

func (h *referenceHandler[T, R]) bulkDelete(c *gin.Context) {
	var req dto.BulkIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	h.deactivate(c, req.IDs)
}

func (h *referenceHandler[T, R]) deactivate(c *gin.Context, ids []string) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if h.owns != nil {
		for _, id := range ids {
			if _, err := h.load(c, id); err != nil {
				respondError(c, err)
				return
			}
		}
	}
	if err := h.svc.Deactivate(c.Request.Context(), ids, userID); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, dto.BulkResult{Affected: len(ids)}, h.label+" deleted")
}

func (h *referenceHandler[T, R]) load(c *gin.Context, id string) (T, error) {
	entity, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		var zero T
		return zero, err
	}
	if h.owns != nil && !h.owns(entity) {
		var zero T
		return zero, apperrors.NewNotFoundError(h.label + " " + id)
	}
	return entity, nil
}

// registerSettingsRoutes mounts categories, godowns and silos under /settings
// and products at the top level.
func registerSettingsRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	settings := rg.Group("/settings")
	registerReferenceRoutes(settings.Group("/category"), &referenceHandler[*domain.Category, dto.CategoryRequest]{
		label: "Category",
		svc:   services.Category,
		newT:  func() *domain.Category { return &domain.Category{} },
	})
	registerReferenceRoutes(settings.Group("/godown"), &referenceHandler[*domain.Godown, dto.GodownRequest]{
		label: "Godown",
		svc:   services.Godown,
		newT:  func() *domain.Godown { return &domain.Godown{} },
	})
	registerReferenceRoutes(settings.Group("/silo"), &referenceHandler[*domain.Silo, dto.SiloRequest]{
		label: "Silo",
		svc:   services.Silo,
		newT:  func() *domain.Silo { return &domain.Silo{} },
	})
	registerReferenceRoutes(rg.Group("/products"), &referenceHandler[*domain.Product, dto.ProductRequest]{
		label: "Product",
		svc:   services.Product,
		newT:  func() *domain.Product { return &domain.Product{} },
	})
}

// registerAccountHeadRoutes mounts one group per head type. The path decides
// the type; a head of the other type is not found.
func registerAccountHeadRoutes(rg *gin.RouterGroup, svc portssvc.ReferenceSvc[*domain.AccountHead]) {
	for path, headType := range map[string]domain.HeadType{
		"/head-income":  domain.HeadIncome,
		"/head-expense": domain.HeadExpense,
	} {
		ht := headType
		registerReferenceRoutes(rg.Group(path), &referenceHandler[*domain.AccountHead, dto.AccountHeadRequest]{
			label:    "Account head",
			svc:      svc,
			newT:     func() *domain.AccountHead { return &domain.AccountHead{HeadType: ht} },
			typeCode: string(ht),
			owns:     func(h *domain.AccountHead) bool { return h.HeadType == ht },
		})
	}
}
