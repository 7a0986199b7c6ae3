// Package academic keeps per-student, per-year book information together
// with the exam scores of that year.
package academic

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/apperr"
)

// YearInfo holds the books used and the teacher's comment for one year.
type YearInfo struct {
	AcademicYear      int16   `json:"academic_year" validate:"required,gte=1"`
	ChineseBook       *string `json:"chinese_book" validate:"omitempty,max=128"`
	EnglishBook       *string `json:"english_book" validate:"omitempty,max=128"`
	MathBook          *string `json:"math_book" validate:"omitempty,max=128"`
	ScienceBook       *string `json:"science_book" validate:"omitempty,max=128"`
	SocialStudiesBook *string `json:"social_studies_book" validate:"omitempty,max=128"`
	Comment           *string `json:"comment"`
}

// Exam scores for one (semester, exam type) slot. Exam type 1 is the
// midterm, 2 the final.
type Exam struct {
	Semester           int16  `json:"semester" validate:"oneof=1 2"`
	ExamType           int16  `json:"exam_type" validate:"oneof=1 2"`
	ChineseScore       *int16 `json:"chinese_score" validate:"omitempty,gte=0,lte=100"`
	EnglishScore       *int16 `json:"english_score" validate:"omitempty,gte=0,lte=100"`
	MathScore          *int16 `json:"math_score" validate:"omitempty,gte=0,lte=100"`
	ScienceScore       *int16 `json:"science_score" validate:"omitempty,gte=0,lte=100"`
	SocialStudiesScore *int16 `json:"social_studies_score" validate:"omitempty,gte=0,lte=100"`
}

type slot struct{ semester, examType int16 }

func (e Exam) slot() slot { return slot{e.Semester, e.ExamType} }

// UpsertRequest is the year info plus the exams submitted with it.
type UpsertRequest struct {
	YearInfo
	Exams []Exam `json:"exams" validate:"max=4,dive"`
}

func (r *UpsertRequest) normalize() {
	for _, p := range []**string{&r.ChineseBook, &r.EnglishBook, &r.MathBook, &r.ScienceBook, &r.SocialStudiesBook, &r.Comment} {
		if *p != nil && strings.TrimSpace(**p) == "" {
			*p = nil
		}
	}
}

func checkSlots(exams []Exam) error {
	seen := make(map[slot]bool, len(exams))
	for _, e := range exams {
		if seen[e.slot()] {
			return apperr.Validationf("duplicate exam for semester %d exam type %d", e.Semester, e.ExamType)
		}
		seen[e.slot()] = true
	}
	return nil
}

// ExamView is a stored exam.
type ExamView struct {
	ID uuid.UUID `json:"id"`
	Exam
	UpdatedAt time.Time `json:"updated_at"`
}

// View is a stored year with its exams ordered by semester then type.
type View struct {
	ID          uuid.UUID `json:"id"`
	StudentID   uuid.UUID `json:"student_id"`
	StudentName string    `json:"name"`
	YearInfo
	Exams     []ExamView `json:"exams"`
	UpdatedAt time.Time  `json:"updated_at"`
}
