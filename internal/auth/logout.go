package auth

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// LogoutController handles user logout by blacklisting JWT tokens
type LogoutController struct {
	BlacklistStore JwtBlacklistStore
}

// NewLogoutController creates a new instance of LogoutController
func NewLogoutController(blacklistStore JwtBlacklistStore) *LogoutController {
	return &LogoutController{
		BlacklistStore: blacklistStore,
	}
}

// LogoutHandler handles user logout by blacklisting the JWT token
// @Summary Revokes the bearer token
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utilities.MessageResponse
// @Failure 401 {object} utilities.ErrorResponse "Missing or invalid token"
// @Failure 500 {object} utilities.ErrorResponse "Blacklist store error"
// @Router /auth/logout [post]
func (lc *LogoutController) LogoutHandler(c *gin.Context) {
	tokenString, err := utilities.ExtractBearerToken(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	claims, err := extractClaims(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	err = lc.BlacklistStore.AddToBlacklist(c.Request.Context(), RevocationKey(claims, tokenString), claims.ExpiresAt.Time)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{Error: "Failed to logout"})
		return
	}

	c.JSON(http.StatusOK, utilities.MessageResponse{Message: "Successfully logged out"})
}

// RevocationKey is the blacklist key of a token: its jti, or the raw token for tokens
// issued without one.
func RevocationKey(claims *jwt.RegisteredClaims, tokenString string) string {
	if claims != nil && claims.ID != "" {
		return claims.ID
	}
	return tokenString
}

func extractClaims(c *gin.Context) (*jwt.RegisteredClaims, error) {
	claims, ok := c.Get("claims")
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}

	realClaims, okCast := claims.(*jwt.RegisteredClaims)
	if !okCast {
		return nil, fmt.Errorf("invalid token claims type")
	}
	if realClaims.ExpiresAt == nil {
		return nil, fmt.Errorf("token has no expiry")
	}
	return realClaims, nil
}
