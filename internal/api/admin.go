package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/delivery"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/promo"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
)

func (h *handler) listPromos(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.PromoSortFields, query.NewestFirst)
	if err != nil {
		fail(c, err)
		return
	}
	active, err := query.Bool(values, "active")
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Promo.List(c.Request.Context(), ident(c), active, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createPromo(c *gin.Context) {
	var in promo.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.Promo.Create(c.Request.Context(), ident(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *handler) getPromo(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	p, err := h.Promo.Get(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updatePromo(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in promo.Input
	if !bind(c, &in) {
		return
	}
	p, err := h.Promo.Update(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deletePromo(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Promo.Delete(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listDelivery(c *gin.Context) {
	params, err := query.Parse(c.Request.URL.Query(), query.DeliverySortFields, query.Sort{{Column: "name"}})
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Delivery.List(c.Request.Context(), ident(c), params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createDelivery(c *gin.Context) {
	var in delivery.Input
	if !bind(c, &in) {
		return
	}
	d, err := h.Delivery.Create(c.Request.Context(), ident(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

func (h *handler) getDelivery(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	d, err := h.Delivery.Get(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handler) updateDelivery(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in delivery.Input
	if !bind(c, &in) {
		return
	}
	d, err := h.Delivery.Update(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *handler) deleteDelivery(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Delivery.Delete(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listActivities(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.FeedSortFields, query.NewestFirst)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Activity.List(c.Request.Context(), ident(c), query.ParseActivityFilter(values), params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
