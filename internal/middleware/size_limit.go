package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead leaves room for multipart boundaries and headers.
var multipartOverhead = int64(8 * 1024)

// SizeLimit caps the request body at maxBodyBytes plus multipart overhead. Reading past
// the cap fails with *http.MaxBytesError, which handlers answer with 413.
func SizeLimit(maxBodyBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes+multipartOverhead)
		c.Next()
	}
}
