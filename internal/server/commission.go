package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	commissiondomain "github.com/renolink/renolink/internal/commission/domain"
)

type createCommissionRequest struct {
	ProjectID string `json:"project_id"`
	QuoteID   string `json:"quote_id"`
	StartedAt string `json:"started_at"`
	Notes     string `json:"notes"`
}

func (s *Server) CreateCommission(c *gin.Context) {
	var req createCommissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	startedAt, err := parseOptionalTime(req.StartedAt, false)
	if err != nil || startedAt == nil {
		AbortWithError(c, newValidationError("started_at", "invalid_start_date", "invalid started_at"))
		return
	}

	resp, err := s.commissionSvc.ManualCreate(c.Request.Context(), commissiondomain.ManualCreateRequest{
		ProjectID: strings.TrimSpace(req.ProjectID),
		QuoteID:   strings.TrimSpace(req.QuoteID),
		StartedAt: *startedAt,
		Notes:     req.Notes,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListCommissions(c *gin.Context) {
	var query struct {
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.List(c.Request.Context(), commissiondomain.ListCommissionRequest{
		Status: strings.TrimSpace(query.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListEligibleProjects(c *gin.Context) {
	resp, err := s.commissionSvc.EligibleProjects(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"projects": resp}})
}

type setCommissionStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetCommissionStatus(c *gin.Context) {
	var req setCommissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.commissionSvc.SetStatus(c.Request.Context(), commissiondomain.SetStatusRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Status: strings.TrimSpace(req.Status),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isCommissionValidationError(err error) bool {
	switch err {
	case commissiondomain.ErrInvalidID,
		commissiondomain.ErrInvalidProject,
		commissiondomain.ErrInvalidQuote,
		commissiondomain.ErrInvalidStatus,
		commissiondomain.ErrInvalidStart,
		commissiondomain.ErrNoSelection:
		return true
	default:
		return false
	}
}
