package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	quotedomain "github.com/renolink/renolink/internal/quote/domain"
)

type submitQuoteRequest struct {
	ContractorID string  `json:"contractor_id"`
	Price        float64 `json:"price"`
	Description  string  `json:"description"`
	PDFURL       string  `json:"pdf_url"`
}

func (s *Server) SubmitQuote(c *gin.Context) {
	var req submitQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Submit(c.Request.Context(), quotedomain.SubmitQuoteRequest{
		ProjectID:    strings.TrimSpace(c.Param("id")),
		ContractorID: strings.TrimSpace(req.ContractorID),
		Price:        req.Price,
		Description:  strings.TrimSpace(req.Description),
		PDFURL:       strings.TrimSpace(req.PDFURL),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListQuotes(c *gin.Context) {
	resp, err := s.quoteSvc.List(c.Request.Context(), quotedomain.ListQuoteRequest{
		ProjectID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type selectQuoteRequest struct {
	QuoteID string `json:"quote_id"`
}

func (s *Server) SelectQuote(c *gin.Context) {
	var req selectQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.quoteSvc.Select(c.Request.Context(), quotedomain.SelectQuoteRequest{
		ProjectID: strings.TrimSpace(c.Param("id")),
		QuoteID:   strings.TrimSpace(req.QuoteID),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isQuoteValidationError(err error) bool {
	switch err {
	case quotedomain.ErrInvalidID,
		quotedomain.ErrInvalidProject,
		quotedomain.ErrInvalidContractor,
		quotedomain.ErrInvalidPrice,
		quotedomain.ErrQuoteMismatch:
		return true
	default:
		return false
	}
}
