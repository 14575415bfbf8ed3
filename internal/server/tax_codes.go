package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	taxdomain "github.com/retailgrid/orderdesk/internal/taxcode/domain"
)

func (s *Server) createTaxCode(c *gin.Context) {
	var req taxdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxCodes.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) listTaxCodes(c *gin.Context) {
	var query struct {
		Code          string `form:"code"`
		IsWithholding *bool  `form:"is_withholding"`
		IsActive      *bool  `form:"is_active"`
		SortBy        string `form:"sort_by"`
		OrderBy       string `form:"order_by"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.taxCodes.List(c.Request.Context(), taxdomain.ListRequest{
		Code:          strings.TrimSpace(query.Code),
		IsWithholding: query.IsWithholding,
		IsActive:      query.IsActive,
		SortBy:        query.SortBy,
		OrderBy:       query.OrderBy,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) getTaxCode(c *gin.Context) {
	resp, err := s.taxCodes.Get(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) updateTaxCode(c *gin.Context) {
	var req taxdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.taxCodes.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) disableTaxCode(c *gin.Context) {
	resp, err := s.taxCodes.Disable(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
