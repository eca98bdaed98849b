package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
	"github.com/XevilA/spu-nexus-sub000/internal/utilities"
)

// CheckRole will protect endpoint from user that is not a specific roles
func CheckRole(roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		session, err := utilities.ExtractSession(ctx)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, utilities.ErrorResponse{
				Error: "user information not provided",
			})
			return
		}

		if !session.Is(roles...) {
			ctx.AbortWithStatusJSON(http.StatusForbidden, utilities.ErrorResponse{
				Error: "User doesn't have permission to access",
			})
			return
		}
		ctx.Next()
	}
}
