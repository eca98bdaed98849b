// Package middleware contain utilities middleware code
package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/XevilA/spu-nexus-sub000/internal/auth"
	"github.com/XevilA/spu-nexus-sub000/internal/database"
	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// RequireAuth validates the Bearer token in the Authorization header and loads the
// principal it names. It stores "claims", "user" and "session" in the context.
func RequireAuth(db *database.DBinstanceStruct, issuer *auth.JwtIssuer) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		tokenString, err := utilities.ExtractBearerToken(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, utilities.ErrorResponse{
				Error: err.Error(),
			})
			return
		}

		token, err := issuer.ValidatedToken(tokenString)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "Access token expired",
				})
				return
			}

			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to validate token: %s", err.Error()),
			})
			return
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !token.Valid || !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Invalid access token",
			})
			return
		}

		if claims.Issuer != auth.TokenIssuer {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "Invalid token issuer",
			})
			return
		}
		ctx.Set("claims", claims)

		var foundUser model.Profile
		if err := db.WithContext(ctx.Request.Context()).Where("id = ?", claims.Subject).First(&foundUser).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "User not exist",
				})
				return
			}

			ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: "Failed to retrieve user data",
			})
			return
		}

		if foundUser.Role == model.RoleAdmin {
			allowed, err := database.AdminAllowed(ctx.Request.Context(), db.DB, foundUser.Email)
			if err != nil {
				ctx.AbortWithStatusJSON(http.StatusInternalServerError, utilities.ErrorResponse{
					Error: "Failed to retrieve user data",
				})
				return
			}
			if !allowed {
				ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
					Error: "Admin access revoked",
				})
				return
			}
		}

		ctx.Set("user", foundUser)
		ctx.Set("session", foundUser.Session())
		ctx.Next()
	}
}
