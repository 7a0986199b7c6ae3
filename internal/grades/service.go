package grades

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

const slotTaken = "grade for this student, academic year and semester already exists"

// Service manages grade records.
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

func (s *Service) validate(req Request) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	if req.StudentID == uuid.Nil {
		return apperr.Validationf("student_id is required")
	}
	if req.ExamType == nil {
		return apperr.Validationf("exam_type is required")
	}
	return nil
}

func (s *Service) requireStudent(ctx context.Context, tx *sql.Tx, id uuid.UUID) error {
	ok, err := roles.IsLiveStudent(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFoundf("student not found")
	}
	return nil
}

// Create inserts a grade. A live grade for the same student, year and
// semester is a Conflict.
func (s *Service) Create(ctx context.Context, req Request) (Grade, error) {
	if err := s.validate(req); err != nil {
		return Grade{}, err
	}
	g := Grade{ID: uuid.New(), StudentID: req.StudentID, ExamType: *req.ExamType, UpdatedAt: s.now()}
	g.merge(req)
	err := s.db.InTx(ctx, "grade.create", func(tx *sql.Tx) error {
		if err := s.requireStudent(ctx, tx, req.StudentID); err != nil {
			return err
		}
		taken, err := s.repo.slotTaken(ctx, tx, g)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflictf(slotTaken)
		}
		return s.repo.insert(ctx, tx, g)
	})
	if err != nil {
		return Grade{}, store.Classify(err, slotTaken)
	}
	s.log.Info("grade created", zap.String("grade_id", g.ID.String()), zap.String("student_id", g.StudentID.String()))
	return g, nil
}

// Update edits a live grade. The student cannot change and the exam type
// is kept.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req Request) (Grade, error) {
	if err := validation.Struct(req); err != nil {
		return Grade{}, err
	}
	var out Grade
	err := s.db.InTx(ctx, "grade.update", func(tx *sql.Tx) error {
		cur, err := s.repo.find(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFoundf("grade not found")
		}
		if req.StudentID != uuid.Nil && req.StudentID != cur.StudentID {
			return apperr.Validationf("student_id cannot be changed")
		}
		cur.merge(req)
		cur.UpdatedAt = s.now()
		taken, err := s.repo.slotTaken(ctx, tx, *cur)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflictf(slotTaken)
		}
		out = *cur
		return s.repo.update(ctx, tx, out)
	})
	if err != nil {
		return Grade{}, store.Classify(err, slotTaken)
	}
	return out, nil
}

// Delete soft-deletes a grade.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.InTx(ctx, "grade.delete", func(tx *sql.Tx) error {
		n, err := Table.MarkDeleted(ctx, tx, s.now(), "id = $1", id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("grade not found")
		}
		return nil
	})
	return store.Classify(err, "")
}

// List returns live grades, newest semester first.
func (s *Service) List(ctx context.Context) ([]Grade, error) {
	gs, err := s.repo.list(ctx, s.db.Client)
	if err != nil {
		return nil, apperr.StorageErr(err)
	}
	return gs, nil
}
