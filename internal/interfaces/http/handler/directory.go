package handler

import (
	"github.com/gin-gonic/gin"

	app "github.com/letterdesk/backend/internal/application/letters"
)

// DirectoryHandler exposes the identity provider's user directory for
// the access-grant surface
type DirectoryHandler struct {
	BaseHandler
	directory app.UserDirectory
}

// NewDirectoryHandler creates a new DirectoryHandler
func NewDirectoryHandler(directory app.UserDirectory) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Search looks up directory users by name or principal prefix
func (h *DirectoryHandler) Search(c *gin.Context) {
	if _, err := getPrincipal(c); err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	users, err := h.directory.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		h.InternalError(c, "directory search failed")
		return
	}
	h.Success(c, users)
}
