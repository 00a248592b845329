package handler

import (
	"github.com/gin-gonic/gin"

	app "github.com/letterdesk/backend/internal/application/letters"
	"github.com/letterdesk/backend/internal/interfaces/http/middleware"
)

// AccessHandler handles user access entry API endpoints
type AccessHandler struct {
	BaseHandler
	service *app.AccessService
}

// NewAccessHandler creates a new AccessHandler
func NewAccessHandler(service *app.AccessService) *AccessHandler {
	return &AccessHandler{service: service}
}

// CreateAccessRequest is the payload for granting access
type CreateAccessRequest struct {
	UserPrincipalName string   `json:"user_principal_name" binding:"required,max=300"`
	Role              string   `json:"role" binding:"required,oneof=Admin Editor Viewer admin editor viewer"`
	CompanyIDs        []string `json:"company_ids" binding:"omitempty"`
}

// UpdateAccessRequest is a partial access entry update; absent fields
// stay untouched.
type UpdateAccessRequest struct {
	Role       *string   `json:"role" binding:"omitempty,oneof=Admin Editor Viewer admin editor viewer"`
	CompanyIDs *[]string `json:"company_ids" binding:"omitempty"`
}

// List returns all access entries. Non-admins see an empty list
func (h *AccessHandler) List(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	entries, err := h.service.List(c.Request.Context(), principal)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entries)
}

// Create grants access to a principal
func (h *AccessHandler) Create(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req CreateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.service.Create(c.Request.Context(), principal, app.CreateAccessInput{
		UserPrincipalName: req.UserPrincipalName,
		Role:              req.Role,
		CompanyIDs:        req.CompanyIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, entry)
}

// Update changes an access entry's role or company scope
func (h *AccessHandler) Update(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id := c.Param("id")
	if id == "" {
		h.BadRequest(c, "access entry id is required")
		return
	}

	var req UpdateAccessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.service.Update(c.Request.Context(), principal, id, app.UpdateAccessInput{
		Role:       req.Role,
		CompanyIDs: req.CompanyIDs,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Delete revokes an access entry
func (h *AccessHandler) Delete(c *gin.Context) {
	principal, err := getPrincipal(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	id := c.Param("id")
	if id == "" {
		h.BadRequest(c, "access entry id is required")
		return
	}

	if err := h.service.Delete(c.Request.Context(), principal, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
