package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/review"
)

func (h *handler) listReviews(c *gin.Context) {
	productID, ok := param(c, "id")
	if !ok {
		return
	}
	params, err := query.Parse(c.Request.URL.Query(), query.ReviewSortFields, query.NewestFirst)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Review.ListByProduct(c.Request.Context(), ident(c), productID, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createReview(c *gin.Context) {
	productID, ok := param(c, "id")
	if !ok {
		return
	}
	var in review.Input
	if !bind(c, &in) {
		return
	}
	res, err := h.Review.Create(c.Request.Context(), ident(c), productID, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *handler) getReview(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	r, err := h.Review.Get(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, r)
}

func (h *handler) updateReview(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in review.Input
	if !bind(c, &in) {
		return
	}
	res, err := h.Review.Update(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) deleteReview(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Review.Delete(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
