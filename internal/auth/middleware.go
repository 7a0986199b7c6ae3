package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"afterschool/internal/apperr"
	"afterschool/internal/authz"
)

const (
	// CookieName carries the token for browser clients.
	CookieName = "auth_token"

	claimKey   = "claim"
	tokenIDKey = "token_id"
)

// Require accepts a bearer token or the auth cookie and stores the decoded
// claim on the context.
func Require(s *Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearer(c.GetHeader("Authorization"))
		if token == "" {
			token, _ = c.Cookie(CookieName)
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "missing token"})
			return
		}
		claim, id, err := s.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(apperr.HTTPStatus(err), gin.H{"message": apperr.MessageOf(err)})
			return
		}
		c.Set(claimKey, claim)
		c.Set(tokenIDKey, id)
		c.Next()
	}
}

func bearer(header string) string {
	if len(header) < len("bearer ") || !strings.EqualFold(header[:len("bearer ")], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("bearer "):])
}

// ClaimFrom returns the claim stored by Require.
func ClaimFrom(c *gin.Context) (authz.Claim, bool) {
	v, ok := c.Get(claimKey)
	if !ok {
		return authz.Claim{}, false
	}
	claim, ok := v.(authz.Claim)
	return claim, ok
}

// TokenIDFrom returns the id of the token stored by Require.
func TokenIDFrom(c *gin.Context) string {
	return c.GetString(tokenIDKey)
}

// SetCookie writes the token cookie.
func SetCookie(c *gin.Context, tok Token, secure bool) {
	maxAge := int(time.Until(tok.ExpiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, tok.Value, maxAge, "/", "", secure, true)
}

// ClearCookie expires the token cookie.
func ClearCookie(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", secure, true)
}
