package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	pcdomain "github.com/retailgrid/orderdesk/internal/pricecategory/domain"
)

func (s *Server) createPriceCategory(c *gin.Context) {
	var req pcdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceCategories.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listPriceCategories(c *gin.Context) {
	var query struct {
		Name     string `form:"name"`
		IsActive *bool  `form:"is_active"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.priceCategories.List(c.Request.Context(), pcdomain.ListRequest{
		Name:     strings.TrimSpace(query.Name),
		IsActive: query.IsActive,
		SortBy:   query.SortBy,
		OrderBy:  query.OrderBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getPriceCategory(c *gin.Context) {
	resp, err := s.priceCategories.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) updatePriceCategory(c *gin.Context) {
	var req pcdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.priceCategories.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) setCategoryPrice(c *gin.Context) {
	var req pcdomain.SetPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.CategoryID = strings.TrimSpace(c.Param("id"))

	resp, err := s.priceCategories.SetPrice(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listCategoryPrices(c *gin.Context) {
	resp, err := s.priceCategories.ListPrices(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) removeCategoryPrice(c *gin.Context) {
	err := s.priceCategories.RemovePrice(
		c.Request.Context(),
		strings.TrimSpace(c.Param("id")),
		strings.TrimSpace(c.Param("product_id")),
	)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
