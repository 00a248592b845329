package handler

import (
	"github.com/gin-gonic/gin"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/interfaces/http/middleware"
)

// CompanyHandler handles company API endpoints
type CompanyHandler struct {
	BaseHandler
	service *app.CompanyService
}

// NewCompanyHandler creates a new CompanyHandler
func NewCompanyHandler(service *app.CompanyService) *CompanyHandler {
	return &CompanyHandler{service: service}
}

// CreateCompanyRequest is the payload for creating a company
type CreateCompanyRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	Abbreviation   string `json:"abbreviation" binding:"required,max=20"`
	StartingNumber int    `json:"starting_number" binding:"omitempty,gte=0"`
	Color          string `json:"color" binding:"omitempty,max=32"`
}

// UpdateCompanyRequest is a partial company update; absent fields stay
// untouched.
type UpdateCompanyRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=200"`
	Abbreviation   *string `json:"abbreviation" binding:"omitempty,max=20"`
	StartingNumber *int    `json:"starting_number" binding:"omitempty,gte=0"`
	Color          *string `json:"color" binding:"omitempty,max=32"`
}

// List returns the companies visible to the caller
func (h *CompanyHandler) List(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	companies, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, companies)
}

// Create registers a new company
func (h *CompanyHandler) Create(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	company, err := h.service.Create(c.Request.Context(), principal, app.CreateCompanyInput{
		Name:           req.Name,
		Abbreviation:   req.Abbreviation,
		StartingNumber: req.StartingNumber,
		Color:          req.Color,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// Update applies a partial update to a company
func (h *CompanyHandler) Update(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id := c.Param("id")
	if id == "" {
		h.BadRequest(c, "company id is required")
		return
	}

	var req UpdateCompanyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	company, err := h.service.Update(c.Request.Context(), principal, id, app.UpdateCompanyInput{
		Name:           req.Name,
		Abbreviation:   req.Abbreviation,
		StartingNumber: req.StartingNumber,
		Color:          req.Color,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Delete removes a company
func (h *CompanyHandler) Delete(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id := c.Param("id")
	if id == "" {
		h.BadRequest(c, "company id is required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
