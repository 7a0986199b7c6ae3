package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"afterschool/internal/member"
	"afterschool/internal/roles"
)

func (s *Server) listMembers(c *gin.Context) {
	ms, err := s.Members.List(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", ms)
}

func (s *Server) getMember(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	m, err := s.Members.Get(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", m)
}

func (s *Server) createMember(c *gin.Context) {
	var f member.Fields
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	m, err := s.Members.Create(c.Request.Context(), f)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "member created", m)
}

func (s *Server) updateMember(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var f member.Fields
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	m, err := s.Members.Update(c.Request.Context(), id, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "member updated", m)
}

func (s *Server) deleteMember(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Members.Delete(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "member deleted", nil)
}

func (s *Server) listTeachers(c *gin.Context) {
	ids, err := s.Roles.ListTeachers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", ids)
}

func (s *Server) getTeacher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.Roles.GetTeacher(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", t)
}

func (s *Server) createTeacher(c *gin.Context) {
	var req roles.CreateTeacherRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.Roles.CreateTeacher(c.Request.Context(), claim(c), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "teacher created", t)
}

func (s *Server) updateTeacher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req roles.UpdateTeacherRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	t, err := s.Roles.UpdateTeacher(c.Request.Context(), claim(c), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "teacher updated", t)
}

func (s *Server) deleteTeacher(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Roles.DeleteTeacher(c.Request.Context(), claim(c), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "teacher deleted", nil)
}

func (s *Server) listStudents(c *gin.Context) {
	ids, err := s.Roles.ListStudents(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", ids)
}

func (s *Server) getStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.Roles.GetStudent(c.Request.Context(), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "ok", st)
}

func (s *Server) createStudent(c *gin.Context) {
	var req roles.StudentRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.Roles.CreateStudent(c.Request.Context(), req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, "student created", st)
}

func (s *Server) updateStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	var req roles.StudentRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.Roles.UpdateStudent(c.Request.Context(), id, req)
	if err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student updated", st)
}

func (s *Server) deleteStudent(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := s.Roles.DeleteStudent(c.Request.Context(), id); err != nil {
		s.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "student deleted", nil)
}
