package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/smeysmey1509/rest-api-node-sub000/internal/catalog"
	"github.com/smeysmey1509/rest-api-node-sub000/internal/query"
)

func (h *handler) listProducts(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.ProductSortFields, query.NewestFirst)
	if err != nil {
		fail(c, err)
		return
	}
	f, err := query.ParseProductFilter(values)
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Catalog.ListProducts(c.Request.Context(), ident(c), f, params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createProduct(c *gin.Context) {
	var in catalog.ProductInput
	if !bind(c, &in) {
		return
	}
	p, err := h.Catalog.CreateProduct(c.Request.Context(), ident(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type importRequest struct {
	Products []catalog.ProductInput `json:"products"`
}

type importResponse struct {
	Accepted int      `json:"accepted"`
	IDs      []string `json:"ids"`
}

// importProducts acknowledges with 202; rows are written by the batch writer.
func (h *handler) importProducts(c *gin.Context) {
	var req importRequest
	if !bind(c, &req) {
		return
	}
	ps, err := h.Catalog.ImportProducts(c.Request.Context(), ident(c), req.Products)
	if err != nil {
		fail(c, err)
		return
	}
	resp := importResponse{Accepted: len(ps), IDs: make([]string, 0, len(ps))}
	for _, p := range ps {
		resp.IDs = append(resp.IDs, p.ID)
	}
	c.JSON(http.StatusAccepted, resp)
}

func (h *handler) getProduct(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	p, err := h.Catalog.GetProduct(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) updateProduct(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in catalog.ProductInput
	if !bind(c, &in) {
		return
	}
	p, err := h.Catalog.UpdateProduct(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) deleteProduct(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteProduct(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

func (h *handler) adjustStock(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var req stockRequest
	if !bind(c, &req) {
		return
	}
	p, err := h.Catalog.AdjustStock(c.Request.Context(), ident(c), id, req.Delta)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *handler) listCategories(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.TaxonomySortFields, query.Sort{{Column: "name"}})
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Catalog.ListCategories(c.Request.Context(), ident(c), strings.TrimSpace(values.Get("q")), params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createCategory(c *gin.Context) {
	var in catalog.TaxonomyInput
	if !bind(c, &in) {
		return
	}
	cat, err := h.Catalog.CreateCategory(c.Request.Context(), ident(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *handler) getCategory(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	cat, err := h.Catalog.GetCategory(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handler) updateCategory(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in catalog.TaxonomyInput
	if !bind(c, &in) {
		return
	}
	cat, err := h.Catalog.UpdateCategory(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *handler) deleteCategory(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteCategory(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) listBrands(c *gin.Context) {
	values := c.Request.URL.Query()
	params, err := query.Parse(values, query.TaxonomySortFields, query.Sort{{Column: "name"}})
	if err != nil {
		fail(c, err)
		return
	}
	res, err := h.Catalog.ListBrands(c.Request.Context(), ident(c), strings.TrimSpace(values.Get("q")), params)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *handler) createBrand(c *gin.Context) {
	var in catalog.TaxonomyInput
	if !bind(c, &in) {
		return
	}
	b, err := h.Catalog.CreateBrand(c.Request.Context(), ident(c), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

func (h *handler) getBrand(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	b, err := h.Catalog.GetBrand(c.Request.Context(), ident(c), id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handler) updateBrand(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	var in catalog.TaxonomyInput
	if !bind(c, &in) {
		return
	}
	b, err := h.Catalog.UpdateBrand(c.Request.Context(), ident(c), id, in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *handler) deleteBrand(c *gin.Context) {
	id, ok := param(c, "id")
	if !ok {
		return
	}
	if err := h.Catalog.DeleteBrand(c.Request.Context(), ident(c), id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
