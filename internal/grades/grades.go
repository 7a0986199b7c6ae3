// Package grades keeps the legacy per-semester grade sheet of a student.
package grades

import (
	"time"

	"github.com/google/uuid"
)

// Books lists the textbooks of the semester.
type Books struct {
	ChineseBook       *string `json:"chinese_book" validate:"omitempty,max=128"`
	EnglishBook       *string `json:"english_book" validate:"omitempty,max=128"`
	MathBook          *string `json:"math_book" validate:"omitempty,max=128"`
	ScienceBook       *string `json:"science_book" validate:"omitempty,max=128"`
	SocialStudiesBook *string `json:"social_studies_book" validate:"omitempty,max=128"`
}

// Scores are percentages per subject.
type Scores struct {
	ChineseScore       *int16 `json:"chinese_score" validate:"omitempty,gte=0,lte=100"`
	EnglishScore       *int16 `json:"english_score" validate:"omitempty,gte=0,lte=100"`
	MathScore          *int16 `json:"math_score" validate:"omitempty,gte=0,lte=100"`
	ScienceScore       *int16 `json:"science_score" validate:"omitempty,gte=0,lte=100"`
	SocialStudiesScore *int16 `json:"social_studies_score" validate:"omitempty,gte=0,lte=100"`
}

// Request creates or edits a grade. On edit, nil books, scores and comment
// keep their stored values, and the exam type is never changed.
type Request struct {
	StudentID    uuid.UUID `json:"student_id"`
	AcademicYear int16     `json:"academic_year" validate:"required,gte=1"`
	Semester     int16     `json:"semester" validate:"oneof=1 2"`
	ExamType     *int16    `json:"exam_type" validate:"omitempty,oneof=1 2"`
	Books
	Scores
	Comment *string `json:"comment"`
}

// Grade is a stored grade with the student's name.
type Grade struct {
	ID           uuid.UUID `json:"id"`
	StudentID    uuid.UUID `json:"student_id"`
	Name         string    `json:"name"`
	AcademicYear int16     `json:"academic_year"`
	Semester     int16     `json:"semester"`
	ExamType     int16     `json:"exam_type"`
	Books
	Scores
	Comment   *string   `json:"comment"`
	UpdatedAt time.Time `json:"updated_at"`
}

// merge copies the provided optional fields of req over g.
func (g *Grade) merge(req Request) {
	g.AcademicYear, g.Semester = req.AcademicYear, req.Semester
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	setScore := func(dst **int16, src *int16) {
		if src != nil {
			*dst = src
		}
	}
	set(&g.ChineseBook, req.ChineseBook)
	set(&g.EnglishBook, req.EnglishBook)
	set(&g.MathBook, req.MathBook)
	set(&g.ScienceBook, req.ScienceBook)
	set(&g.SocialStudiesBook, req.SocialStudiesBook)
	set(&g.Comment, req.Comment)
	setScore(&g.ChineseScore, req.ChineseScore)
	setScore(&g.EnglishScore, req.EnglishScore)
	setScore(&g.MathScore, req.MathScore)
	setScore(&g.ScienceScore, req.ScienceScore)
	setScore(&g.SocialStudiesScore, req.SocialStudiesScore)
}
