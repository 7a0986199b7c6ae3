package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/auth"
	"afterschool/internal/authz"
)

type envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{Message: message, Data: data})
}

// fail renders err with its mapped status. Storage detail goes to the log
// only.
func (s *Server) fail(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	c.AbortWithStatusJSON(status, envelope{Message: apperr.MessageOf(err)})
}

func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return apperr.Validationf("malformed request body")
	}
	return nil
}

func pathID(c *gin.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, apperr.Validationf("invalid id %q", c.Param("id"))
	}
	return id, nil
}

func claim(c *gin.Context) authz.Claim {
	cl, _ := auth.ClaimFrom(c)
	return cl
}
