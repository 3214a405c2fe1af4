package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	projectdomain "github.com/renolink/renolink/internal/project/domain"
	"github.com/renolink/renolink/pkg/db/pagination"
)

type createProjectRequest struct {
	CustomerID   string   `json:"customer_id"`
	SpaceType    string   `json:"space_type"`
	ProjectTypes []string `json:"project_types"`
	Budget       string   `json:"budget"`
	Timeline     string   `json:"timeline"`
	FullAddress  string   `json:"full_address"`
	PostalCode   string   `json:"postal_code"`
	Description  string   `json:"description"`
}

func (s *Server) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Create(c.Request.Context(), projectdomain.CreateProjectRequest{
		CustomerID:   strings.TrimSpace(req.CustomerID),
		SpaceType:    strings.TrimSpace(req.SpaceType),
		ProjectTypes: req.ProjectTypes,
		Budget:       strings.TrimSpace(req.Budget),
		Timeline:     strings.TrimSpace(req.Timeline),
		FullAddress:  strings.TrimSpace(req.FullAddress),
		PostalCode:   strings.TrimSpace(req.PostalCode),
		Description:  strings.TrimSpace(req.Description),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProjects(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status      string `form:"status"`
		CustomerID  string `form:"customer_id"`
		CreatedFrom string `form:"created_from"`
		CreatedTo   string `form:"created_to"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	createdFrom, err := parseOptionalTime(query.CreatedFrom, false)
	if err != nil {
		AbortWithError(c, newValidationError("created_from", "invalid_created_from", "invalid created_from"))
		return
	}

	createdTo, err := parseOptionalTime(query.CreatedTo, true)
	if err != nil {
		AbortWithError(c, newValidationError("created_to", "invalid_created_to", "invalid created_to"))
		return
	}

	resp, err := s.projectSvc.List(c.Request.Context(), projectdomain.ListProjectRequest{
		PageToken:   query.PageToken,
		PageSize:    query.PageSize,
		Status:      strings.TrimSpace(query.Status),
		CustomerID:  strings.TrimSpace(query.CustomerID),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProjectByID(c *gin.Context) {
	resp, err := s.projectSvc.GetByID(c.Request.Context(), projectdomain.GetProjectRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type transitionProjectRequest struct {
	Target string `json:"target"`
}

func (s *Server) TransitionProject(c *gin.Context) {
	var req transitionProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.projectSvc.Transition(c.Request.Context(), projectdomain.TransitionRequest{
		ID:     strings.TrimSpace(c.Param("id")),
		Target: strings.TrimSpace(req.Target),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteSiteVisit(c *gin.Context) {
	resp, err := s.projectSvc.CompleteSiteVisitAndOpenBidding(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelProject(c *gin.Context) {
	resp, err := s.projectSvc.Cancel(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ReactivateProject(c *gin.Context) {
	resp, err := s.projectSvc.Reactivate(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CompleteProject(c *gin.Context) {
	resp, err := s.projectSvc.Complete(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isProjectValidationError(err error) bool {
	switch {
	case errors.Is(err, projectdomain.ErrUnknownStatus),
		errors.Is(err, projectdomain.ErrInvalidCustomer),
		errors.Is(err, projectdomain.ErrInvalidSpace),
		errors.Is(err, projectdomain.ErrInvalidBudget),
		errors.Is(err, projectdomain.ErrInvalidTimeline),
		errors.Is(err, projectdomain.ErrInvalidAddress),
		errors.Is(err, projectdomain.ErrInvalidID):
		return true
	default:
		return false
	}
}
