package academic

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/roles"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

// Service upserts academic years.
type Service struct {
	db   *store.DB
	repo *Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewService creates a service backed by db.
func NewService(db *store.DB, log *zap.Logger) *Service {
	return &Service{db: db, repo: &Repository{}, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// Upsert writes the year info for (studentID, req.AcademicYear) and merges
// the submitted exams into it by slot. Slots missing from req keep their
// previous scores.
func (s *Service) Upsert(ctx context.Context, studentID uuid.UUID, req UpsertRequest) (View, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return View{}, err
	}
	if err := checkSlots(req.Exams); err != nil {
		return View{}, err
	}
	var out View
	err := s.db.InTx(ctx, "academic.upsert", func(tx *sql.Tx) error {
		ok, err := roles.IsLiveStudent(ctx, tx, studentID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.NotFoundf("student not found")
		}
		now := s.now()
		cur, err := s.repo.findYear(ctx, tx, studentID, req.AcademicYear)
		if err != nil {
			return err
		}
		year := View{StudentID: studentID, YearInfo: req.YearInfo, UpdatedAt: now}
		if cur == nil {
			year.ID = uuid.New()
			err = s.repo.insertYear(ctx, tx, year)
		} else {
			year.ID = cur.ID
			err = s.repo.updateYear(ctx, tx, year)
		}
		if err != nil {
			return err
		}
		for _, e := range req.Exams {
			if err := s.repo.upsertExam(ctx, tx, year.ID, ExamView{ID: uuid.New(), Exam: e, UpdatedAt: now}); err != nil {
				return err
			}
		}
		views, err := s.repo.views(ctx, tx, "y.id = $1", year.ID)
		if err != nil {
			return err
		}
		if len(views) == 0 {
			return apperr.NotFoundf("student not found")
		}
		out = views[0]
		return nil
	})
	if err != nil {
		return View{}, store.Classify(err, "academic year already recorded for this student")
	}
	s.log.Info("academic year saved",
		zap.String("student_id", studentID.String()),
		zap.Int16("academic_year", req.AcademicYear),
		zap.Int("exams", len(req.Exams)))
	return out, nil
}

// Get returns one student's year.
func (s *Service) Get(ctx context.Context, studentID uuid.UUID, year int16) (View, error) {
	var views []View
	err := s.db.InReadTx(ctx, "academic.get", func(tx *sql.Tx) error {
		var err error
		views, err = s.repo.views(ctx, tx, "y.student_id = $1 AND y.academic_year = $2", studentID, year)
		return err
	})
	if err != nil {
		return View{}, store.Classify(err, "")
	}
	if len(views) == 0 {
		return View{}, apperr.NotFoundf("academic year not found")
	}
	return views[0], nil
}

// List returns every live year with its exams.
func (s *Service) List(ctx context.Context) ([]View, error) {
	var views []View
	err := s.db.InReadTx(ctx, "academic.list", func(tx *sql.Tx) error {
		var err error
		views, err = s.repo.views(ctx, tx, "")
		return err
	})
	if err != nil {
		return nil, store.Classify(err, "")
	}
	return views, nil
}

// Delete soft-deletes every year recorded for a student.
func (s *Service) Delete(ctx context.Context, studentID uuid.UUID) error {
	err := s.db.InTx(ctx, "academic.delete", func(tx *sql.Tx) error {
		n, err := Table.MarkDeleted(ctx, tx, s.now(), "student_id = $1", studentID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("academic records not found")
		}
		return nil
	})
	return store.Classify(err, "")
}
