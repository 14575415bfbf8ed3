package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	currencydomain "github.com/retailgrid/orderdesk/internal/currency/domain"
)

func (s *Server) createCurrency(c *gin.Context) {
	var req currencydomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.currencies.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listCurrencies(c *gin.Context) {
	var query struct {
		Code     string `form:"code"`
		IsActive *bool  `form:"is_active"`
		SortBy   string `form:"sort_by"`
		OrderBy  string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.currencies.List(c.Request.Context(), currencydomain.ListRequest{
		Code:     strings.TrimSpace(query.Code),
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

func (s *Server) getCurrency(c *gin.Context) {
	resp, err := s.currencies.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) updateCurrency(c *gin.Context) {
	var req currencydomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.currencies.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) setExchangeRate(c *gin.Context) {
	var req currencydomain.SetRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.FromCurrencyID = strings.TrimSpace(c.Param("id"))

	resp, err := s.currencies.SetRate(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listExchangeRates(c *gin.Context) {
	resp, err := s.currencies.ListRates(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
