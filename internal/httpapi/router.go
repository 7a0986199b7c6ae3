// Package httpapi exposes the services over a JSON REST surface.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"afterschool/internal/academic"
	"afterschool/internal/announcement"
	"afterschool/internal/attendance"
	"afterschool/internal/auth"
	"afterschool/internal/grades"
	"afterschool/internal/httpmiddleware"
	"afterschool/internal/member"
	"afterschool/internal/metrics"
	"afterschool/internal/roles"
	"afterschool/internal/store"
)

// Deps are the collaborators of the HTTP surface.
type Deps struct {
	Members       *member.Service
	Roles         *roles.Service
	Academic      *academic.Service
	Attendance    *attendance.Service
	Grades        *grades.Service
	Announcements *announcement.Service
	Auth          *auth.Service

	DB      *store.DB
	Redis   *store.Redis
	Log     *zap.Logger
	Metrics *metrics.Metrics

	LoginLimiter  *httpmiddleware.TokenBucket
	CORSOrigin    string
	SecureCookies bool
}

// Server holds the handlers.
type Server struct {
	Deps
	log *zap.Logger
}

// New creates a server.
func New(d Deps) *Server {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{Deps: d, log: log}
}

// Router builds the gin engine with every route. It fails on an unusable
// CORS origin list.
func (s *Server) Router() (*gin.Engine, error) {
	corsMW, err := httpmiddleware.CORS(s.CORSOrigin)
	if err != nil {
		return nil, err
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpmiddleware.Observe(s.log, s.Metrics, "/healthz", "/metrics"))
	// security headers go first so rejected and preflight responses carry them
	r.Use(httpmiddleware.SecurityHeaders())
	r.Use(corsMW)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", s.health)

	api := r.Group("/api")
	login := []gin.HandlerFunc{s.login}
	if s.LoginLimiter != nil {
		login = append([]gin.HandlerFunc{s.LoginLimiter.GinMiddleware()}, login...)
	}
	api.POST("/login", login...)

	authed := api.Group("", auth.Require(s.Auth))
	authed.POST("/logout", s.logout)
	authed.GET("/me", s.me)

	authed.GET("/members", s.listMembers)
	authed.GET("/members/:id", s.getMember)
	authed.POST("/members", s.createMember)
	authed.PUT("/members/:id", s.updateMember)
	authed.DELETE("/members/:id", s.deleteMember)

	authed.GET("/teachers", s.listTeachers)
	authed.GET("/teachers/:id", s.getTeacher)
	authed.POST("/teachers", s.createTeacher)
	authed.PUT("/teachers/:id", s.updateTeacher)
	authed.DELETE("/teachers/:id", s.deleteTeacher)

	authed.GET("/students", s.listStudents)
	authed.GET("/students/:id", s.getStudent)
	authed.POST("/students", s.createStudent)
	authed.PUT("/students/:id", s.updateStudent)
	authed.DELETE("/students/:id", s.deleteStudent)

	authed.GET("/student_infos", s.listStudentInfos)
	authed.POST("/student_infos/:id", s.upsertStudentInfo)
	authed.PUT("/student_infos/:id", s.upsertStudentInfo)
	authed.DELETE("/student_infos/:id", s.deleteStudentInfo)

	authed.GET("/grades", s.listGrades)
	authed.POST("/grades", s.createGrade)
	authed.PUT("/grades/:id", s.updateGrade)
	authed.DELETE("/grades/:id", s.deleteGrade)

	authed.GET("/announcements", s.listAnnouncements)
	authed.POST("/announcements", s.createAnnouncement)
	authed.PUT("/announcements/:id", s.updateAnnouncement)
	authed.DELETE("/announcements/:id", s.deleteAnnouncement)

	authed.GET("/attendance-records", s.getAttendance)
	authed.POST("/attendance-records/:date", s.createAttendance)
	authed.PUT("/attendance-records/:date", s.replaceAttendance)

	return r, nil
}

func (s *Server) health(c *gin.Context) {
	ctx := c.Request.Context()
	dbHealthy := s.DB.Healthy(ctx)
	body := gin.H{"db": dbHealthy}
	healthy := dbHealthy
	if s.Redis != nil {
		redisHealthy := s.Redis.Healthy(ctx)
		body["redis"] = redisHealthy
		healthy = healthy && redisHealthy
	}
	status := http.StatusOK
	body["status"] = "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
