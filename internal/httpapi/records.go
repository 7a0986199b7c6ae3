package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"afterschool/internal/academic"
	"afterschool/internal/announcement"
	"afterschool/internal/apperr"
	"afterschool/internal/attendance"
	"afterschool/internal/grades"
)

func (s *Server) listStudentInfos(c *gin.Context) {
	if raw := c.Query("student_id"); raw != "" {
		s.getStudentInfo(c, raw)
		return
	}
	vs, err := s.Academic.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", vs)
}

// getStudentInfo answers ?student_id=&academic_year= lookups.
func (s *Server) getStudentInfo(c *gin.Context, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		s.fail(c, apperr.Validationf("invalid student_id %q", rawID))
		return
	}
	year, err := strconv.ParseInt(c.Query("academic_year"), 10, 16)
	if err != nil {
		s.fail(c, apperr.Validationf("academic_year must be a number"))
		return
	}
	v, err := s.Academic.Get(c.Request.Context(), id, int16(year))
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", v)
}

func (s *Server) upsertStudentInfo(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req academic.UpsertRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	v, err := s.Academic.Upsert(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student info saved", v)
}

func (s *Server) deleteStudentInfo(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Academic.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student info deleted", nil)
}

func (s *Server) listGrades(c *gin.Context) {
	gs, err := s.Grades.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", gs)
}

func (s *Server) createGrade(c *gin.Context) {
	var req grades.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	g, err := s.Grades.Create(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "grade created", g)
}

func (s *Server) updateGrade(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req grades.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	g, err := s.Grades.Update(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "grade updated", g)
}

func (s *Server) deleteGrade(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Grades.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "grade deleted", nil)
}

func (s *Server) listAnnouncements(c *gin.Context) {
	as, err := s.Announcements.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", as)
}

func (s *Server) createAnnouncement(c *gin.Context) {
	var req announcement.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.Announcements.Create(c.Request.Context(), claim(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "announcement created", a)
}

func (s *Server) updateAnnouncement(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req announcement.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	a, err := s.Announcements.Update(c.Request.Context(), claim(c), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "announcement updated", a)
}

func (s *Server) deleteAnnouncement(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Announcements.Delete(c.Request.Context(), claim(c), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "announcement deleted", nil)
}

func (s *Server) getAttendance(c *gin.Context) {
	date, err := attendance.ParseDate(c.Query("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	r, err := s.Attendance.Get(c.Request.Context(), date)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", r)
}

func (s *Server) createAttendance(c *gin.Context) {
	date, err := attendance.ParseDate(c.Param("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req attendance.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	key, err := s.Attendance.Create(c.Request.Context(), date, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "attendance recorded", gin.H{"id": key})
}

func (s *Server) replaceAttendance(c *gin.Context) {
	date, err := attendance.ParseDate(c.Param("date"))
	if err != nil {
		s.fail(c, err)
		return
	}
	var req attendance.Request
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Attendance.Replace(c.Request.Context(), date, req); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "attendance updated", gin.H{"id": attendance.Key(date)})
}
