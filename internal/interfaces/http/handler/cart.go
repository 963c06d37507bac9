package handler

import (
	"github.com/gin-gonic/gin"
	appsales "github.com/storefront/backend/internal/application/sales"
)

// CartHandler handles the shopping cart and checkout
type CartHandler struct {
	BaseHandler
	cartService     *appsales.CartService
	checkoutService *appsales.CheckoutService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *appsales.CartService, checkoutService *appsales.CheckoutService) *CartHandler {
	return &CartHandler{
		cartService:     cartService,
		checkoutService: checkoutService,
	}
}

// Submit godoc
// @ID           submitCart
// @Summary      Merge the cart into the pending sale
// @Description  Opens a pending sale when none exists. Lines missing from the submission are removed.
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appsales.SubmitCartRequest true "Cart lines"
// @Success      200 {object} APIResponse[appsales.CartWriteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [post]
func (h *CartHandler) Submit(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req appsales.SubmitCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.cartService.SubmitCart(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Replace godoc
// @ID           replaceCart
// @Summary      Replace the pending sale's lines
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body appsales.SubmitCartRequest true "Cart lines"
// @Success      200 {object} APIResponse[appsales.CartWriteResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [put]
func (h *CartHandler) Replace(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	var req appsales.SubmitCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.cartService.ReplaceCart(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Current godoc
// @ID           getCurrentCart
// @Summary      Get the current cart
// @Description  Returns has_cart=false and no items when the user has no pending sale.
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[appsales.CartView]
// @Failure      401 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [get]
func (h *CartHandler) Current(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	view, err := h.cartService.GetCurrentCart(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, view)
}

// Confirm godoc
// @ID           confirmCart
// @Summary      Confirm the purchase
// @Description  Confirms the latest pending sale and decrements stock. Nothing changes when any product lacks stock.
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[appsales.ConfirmResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart/confirm [put]
func (h *CartHandler) Confirm(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.Confirm(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Abandon godoc
// @ID           abandonCart
// @Summary      Abandon every pending sale
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[appsales.AbandonResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /cart [delete]
func (h *CartHandler) Abandon(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}

	result, err := h.checkoutService.Abandon(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
