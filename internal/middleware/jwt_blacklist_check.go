package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"

	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// JwtBlacklistCheck rejects tokens revoked by logout. It runs after RequireAuth and
// looks the token up by its jti.
func JwtBlacklistCheck(bl auth.JwtBlacklistStore) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		var claims *jwt.RegisteredClaims
		if raw, ok := ctx.Get("claims"); ok {
			claims, _ = raw.(*jwt.RegisteredClaims)
		}

		isBlacklisted, err := bl.IsBlacklisted(ctx.Request.Context(), auth.RevocationKey(claims, tokenString))
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to validate token",
			})
			return
		}

		if isBlacklisted {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Token has been revoked",
			})
			return
		}
		ctx.Next()
	}
}
