package utilities

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ExtractBearerToken returns the token of an "Authorization: Bearer <token>" header.
func ExtractBearerToken(c *gin.Context) (string, error) {
	const bearerSchema = "bearer "
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))

	if len(authHeader) <= len(bearerSchema) || !strings.EqualFold(authHeader[:len(bearerSchema)], bearerSchema) {
		return "", errors.New("Invalid authorization header")
	}

	return strings.TrimSpace(authHeader[len(bearerSchema):]), nil
}
