package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smeysmey1509/rest-api-node-sub000/pkg/exception"
)

var errQuantityRequired = exception.Invalid("quantity", "quantity is required")

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type deliveryRequest struct {
	DeliverySettingID string `json:"delivery_setting_id"`
}

func (h *handler) getCart(c *gin.Context) {
	v, err := h.Cart.Get(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) clearCart(c *gin.Context) {
	v, err := h.Cart.Clear(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if !bind(c, &req) {
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	v, err := h.Cart.AddItem(c.Request.Context(), ident(c), req.ProductID, req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) updateCartItem(c *gin.Context) {
	productID, ok := param(c, "productId")
	if !ok {
		return
	}
	var req quantityRequest
	if !bind(c, &req) {
		return
	}
	if req.Quantity == nil {
		fail(c, errQuantityRequired)
		return
	}
	v, err := h.Cart.UpdateItem(c.Request.Context(), ident(c), productID, *req.Quantity)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) removeCartItem(c *gin.Context) {
	productID, ok := param(c, "productId")
	if !ok {
		return
	}
	v, err := h.Cart.RemoveItem(c.Request.Context(), ident(c), productID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) applyPromo(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	v, err := h.Cart.ApplyPromo(c.Request.Context(), ident(c), req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) removePromo(c *gin.Context) {
	v, err := h.Cart.RemovePromo(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) selectDelivery(c *gin.Context) {
	var req deliveryRequest
	if !bind(c, &req) {
		return
	}
	v, err := h.Cart.SelectDelivery(c.Request.Context(), ident(c), req.DeliverySettingID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *handler) cartSummary(c *gin.Context) {
	sum, err := h.Cart.Summary(c.Request.Context(), ident(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}

// validatePromo prices the caller's cart as if code were applied.
func (h *handler) validatePromo(c *gin.Context) {
	var req codeRequest
	if !bind(c, &req) {
		return
	}
	sum, err := h.Cart.PreviewPromo(c.Request.Context(), ident(c), req.Code)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sum)
}
