package utilities

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/XevilA/spu-nexus-sub000/internal/model"
)

// DecodeStrict decodes the JSON request body into dst, rejecting unknown fields.
func DecodeStrict(c *gin.Context, dst any) error {
	decoder := json.NewDecoder(c.Request.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("Invalid request body: %s", err.Error())
	}
	return nil
}

// UintParam parses the named path parameter as a positive id.
func UintParam(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("Invalid %s: %q", name, raw)
	}
	return uint(id), nil
}

// RequireSession returns the caller's session, answering 401 when it is missing.
func RequireSession(c *gin.Context) (session model.Session, ok bool) {
	session, err := ExtractSession(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		return session, false
	}
	return session, true
}
