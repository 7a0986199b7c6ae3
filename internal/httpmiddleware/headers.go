// Package httpmiddleware holds the gin middleware shared by every route.
package httpmiddleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows credentialed requests from the comma-separated origins. With
// no origins configured, no CORS headers are sent and browsers keep to the
// same origin. A wildcard is rejected while credentials are on.
func CORS(origins string) (gin.HandlerFunc, error) {
	var allowed []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			allowed = append(allowed, o)
		}
	}
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }, nil
	}
	for _, o := range allowed {
		if strings.Contains(o, "*") {
			return nil, fmt.Errorf("cors: wildcard origin %q cannot be combined with credentials", o)
		}
	}
	cfg := cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("cors: %w", err)
	}
	return cors.New(cfg), nil
}

// SecurityHeaders sets conservative browser headers. HSTS only in release mode.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		c.Next()
	}
}
