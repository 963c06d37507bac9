package handler

import (
	"github.com/gin-gonic/gin"
	appsales "github.com/storefront/backend/internal/application/sales"
)

// SalesHandler serves sale history
type SalesHandler struct {
	BaseHandler
	queryService *appsales.SaleQueryService
}

// NewSalesHandler creates a new sales handler
func NewSalesHandler(queryService *appsales.SaleQueryService) *SalesHandler {
	return &SalesHandler{queryService: queryService}
}

// ListMine godoc
// @ID           listMySales
// @Summary      List the caller's sales
// @Tags         sales
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        status query string false "Sale status" Enums(PENDIENTE, CONFIRMADO, ABANDONADO)
// @Success      200 {object} APIResponse[[]appsales.SaleSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales [get]
func (h *SalesHandler) ListMine(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter appsales.ListSalesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.queryService.ListMine(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// ListAll godoc
// @ID           listAllSales
// @Summary      List every sale
// @Description  Administrators only. Includes customer names.
// @Tags         admin
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        page_size query int false "Items per page" default(20) maximum(100)
// @Param        status query string false "Sale status" Enums(PENDIENTE, CONFIRMADO, ABANDONADO)
// @Success      200 {object} APIResponse[[]appsales.SaleSummary]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/sales [get]
func (h *SalesHandler) ListAll(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var filter appsales.ListSalesFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.queryService.ListAll(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           getSale
// @Summary      Get a sale with its lines
// @Description  Customers only see their own sales; other sales are reported as not found.
// @Tags         sales
// @Produce      json
// @Param        id path string true "Sale ID" format(uuid)
// @Success      200 {object} APIResponse[appsales.SaleDetail]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /sales/{id} [get]
func (h *SalesHandler) Get(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	id, ok := h.pathUUID(c, "id", "sale ID")
	if !ok {
		return
	}

	detail, err := h.queryService.Get(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, detail)
}
