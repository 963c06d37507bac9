package handler

import (
	"github.com/gin-gonic/gin"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
)

// TaxRateHandler exposes the tax rate catalog
type TaxRateHandler struct {
	BaseHandler
	taxRateService *appcatalog.TaxRateService
}

// NewTaxRateHandler creates a new tax rate handler
func NewTaxRateHandler(taxRateService *appcatalog.TaxRateService) *TaxRateHandler {
	return &TaxRateHandler{taxRateService: taxRateService}
}

// List godoc
// @ID           listTaxRates
// @Summary      List tax rates
// @Tags         catalog
// @Produce      json
// @Success      200 {object} APIResponse[[]appcatalog.TaxRateResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /tax-rates [get]
func (h *TaxRateHandler) List(c *gin.Context) {
	rates, err := h.taxRateService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rates)
}

// Get godoc
// @ID           getTaxRate
// @Summary      Get a tax rate
// @Tags         catalog
// @Produce      json
// @Param        id path string true "Tax rate ID" format(uuid)
// @Success      200 {object} APIResponse[appcatalog.TaxRateResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /tax-rates/{id} [get]
func (h *TaxRateHandler) Get(c *gin.Context) {
	id, ok := h.pathUUID(c, "id", "tax rate ID")
	if !ok {
		return
	}

	rate, err := h.taxRateService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rate)
}
