package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"afterschool/internal/auth"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	MemberID  string    `json:"member_id"`
	Role      string    `json:"role"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	tok, cl, err := s.Auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(c, err)
		return
	}
	auth.SetCookie(c, tok, s.SecureCookies)
	respond(c, http.StatusOK, "login successful", loginResponse{
		Token:     tok.Value,
		ExpiresAt: tok.ExpiresAt,
		MemberID:  cl.Subject.String(),
		Role:      cl.Role.String(),
	})
}

func (s *Server) logout(c *gin.Context) {
	cl := claim(c)
	if err := s.Auth.Logout(c.Request.Context(), auth.TokenIDFrom(c), cl.Expiry); err != nil {
		s.fail(c, err)
		return
	}
	auth.ClearCookie(c, s.SecureCookies)
	respond(c, http.StatusOK, "logged out", nil)
}

func (s *Server) me(c *gin.Context) {
	id, err := s.Roles.GetTeacher(c.Request.Context(), claim(c).Subject)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", id)
}
