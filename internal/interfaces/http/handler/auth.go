package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/letterdesk/backend/internal/infrastructure/auth"
	"github.com/letterdesk/backend/internal/interfaces/http/middleware"
)

// AuthHandler mints access tokens for local and development use. In
// production deployments tokens come from the external identity
// provider and this surface is not registered.
type AuthHandler struct {
	BaseHandler
	jwtService *auth.JWTService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(jwtService *auth.JWTService) *AuthHandler {
	return &AuthHandler{jwtService: jwtService}
}

// TokenRequest is the payload for minting a development token
type TokenRequest struct {
	UserPrincipalName string `json:"user_principal_name" binding:"required,max=300"`
	DisplayName       string `json:"display_name" binding:"omitempty,max=200"`
}

// TokenResponse carries a minted access token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   string `json:"expires_at"`
}

// Token mints an access token for the given principal
func (h *AuthHandler) Token(c *gin.Context) {
	var req TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(req.UserPrincipalName, req.DisplayName)
	if err != nil {
		h.BadRequest(c, "could not mint token: "+err.Error())
		return
	}

	h.Success(c, TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	})
}
