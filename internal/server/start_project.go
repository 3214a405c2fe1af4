package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	startdomain "github.com/renolink/renolink/internal/projectstart/domain"
)

type startProjectRequest struct {
	ProjectID string `json:"projectId"`
}

type commissionPayload struct {
	Created      bool   `json:"created"`
	CommissionID string `json:"commissionId,omitempty"`
	Error        string `json:"error,omitempty"`
}

type startProjectResponse struct {
	Success       bool               `json:"success"`
	Message       string             `json:"message"`
	ProjectStatus string             `json:"projectStatus"`
	StartedAt     *time.Time         `json:"startedAt,omitempty"`
	Commission    *commissionPayload `json:"commission,omitempty"`
}

type startProjectStatusResponse struct {
	Project struct {
		ID          string             `json:"id"`
		Status      string             `json:"status"`
		IsStarted   bool               `json:"isStarted"`
		IsCompleted bool               `json:"isCompleted"`
		StartedAt   *time.Time         `json:"startedAt,omitempty"`
		CompletedAt *time.Time         `json:"completedAt,omitempty"`
		Commission  *commissionPayload `json:"commission,omitempty"`
	} `json:"project"`
}

func (s *Server) StartProject(c *gin.Context) {
	var req startProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		AbortWithError(c, newValidationError("projectId", "invalid_project_id", "projectId is required"))
		return
	}

	result, err := s.startSvc.Start(c.Request.Context(), req.ProjectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	resp := startProjectResponse{
		Success:       result.Started,
		ProjectStatus: string(result.ProjectStatus),
		StartedAt:     result.StartedAt,
		Commission:    commissionToPayload(result.Commission),
	}
	if result.Started {
		resp.Message = "project started"
	} else {
		resp.Message = "already started"
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetStartProjectStatus(c *gin.Context) {
	projectID := strings.TrimSpace(c.Query("projectId"))
	if projectID == "" {
		AbortWithError(c, newValidationError("projectId", "invalid_project_id", "projectId is required"))
		return
	}

	status, err := s.startSvc.Status(c.Request.Context(), projectID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var resp startProjectStatusResponse
	resp.Project.ID = status.ProjectID
	resp.Project.Status = string(status.ProjectStatus)
	resp.Project.IsStarted = status.Started
	resp.Project.IsCompleted = status.Completed
	resp.Project.StartedAt = status.StartedAt
	resp.Project.CompletedAt = status.CompletedAt
	resp.Project.Commission = commissionToPayload(status.Commission)

	c.JSON(http.StatusOK, resp)
}

func commissionToPayload(outcome *startdomain.CommissionOutcome) *commissionPayload {
	if outcome == nil {
		return nil
	}
	return &commissionPayload{
		Created:      outcome.Created,
		CommissionID: outcome.CommissionID,
		Error:        outcome.Error,
	}
}
