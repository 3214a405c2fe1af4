package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	contractordomain "github.com/renolink/renolink/internal/contractor/domain"
)

type createContractorRequest struct {
	UserID      string   `json:"user_id"`
	CompanyName string   `json:"company_name"`
	ContactName string   `json:"contact_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	Specialties []string `json:"specialties"`
}

func (s *Server) CreateContractor(c *gin.Context) {
	var req createContractorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractorSvc.Create(c.Request.Context(), contractordomain.CreateContractorRequest{
		UserID:      strings.TrimSpace(req.UserID),
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.TrimSpace(req.Email),
		Phone:       strings.TrimSpace(req.Phone),
		Specialties: req.Specialties,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListContractors(c *gin.Context) {
	var query struct {
		Status    string `form:"status"`
		Specialty string `form:"specialty"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.contractorSvc.List(c.Request.Context(), contractordomain.ListContractorRequest{
		Status:    strings.TrimSpace(query.Status),
		Specialty: strings.TrimSpace(query.Specialty),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetContractorByID(c *gin.Context) {
	resp, err := s.contractorSvc.GetByID(c.Request.Context(), contractordomain.GetContractorRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isContractorValidationError(err error) bool {
	switch err {
	case contractordomain.ErrInvalidID,
		contractordomain.ErrInvalidUser,
		contractordomain.ErrInvalidCompany,
		contractordomain.ErrInvalidContact,
		contractordomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}
