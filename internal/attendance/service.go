package attendance

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

// Service coordinates roster writes.
type Service struct {
	db   *store.DB
	repo *Repository
	log  *zap.Logger
	now  func() time.Time
}

// NewService creates a service backed by db.
func NewService(db *store.DB, log *zap.Logger) *Service {
	return &Service{db: db, repo: NewRepository(), log: log, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Service) check(req Request) error {
	if err := validation.Struct(req); err != nil {
		return err
	}
	return req.checkEntries()
}

func (s *Service) requireStudents(ctx context.Context, tx *sql.Tx, entries []Entry) error {
	missing, err := s.repo.MissingStudent(ctx, tx, entries)
	if err != nil {
		return err
	}
	if missing != uuid.Nil {
		return apperr.NotFoundf("student %s not found", missing)
	}
	return nil
}

// Create stores the first roster for date and returns its key.
func (s *Service) Create(ctx context.Context, date time.Time, req Request) (string, error) {
	if err := s.check(req); err != nil {
		return "", err
	}
	key := Key(date)
	err := s.db.InTx(ctx, "attendance.create", func(tx *sql.Tx) error {
		exists, err := s.repo.Exists(ctx, tx, key)
		if err != nil {
			return err
		}
		if exists {
			return apperr.Conflictf("attendance for %s already exists", date.Format(dateLayout))
		}
		if err := s.requireStudents(ctx, tx, req.Entries); err != nil {
			return err
		}
		if err := s.repo.InsertRecord(ctx, tx, key, req.Note, s.now()); err != nil {
			return err
		}
		return s.repo.InsertEntries(ctx, tx, key, req.Entries)
	})
	if err != nil {
		return "", store.Classify(err, "attendance for "+date.Format(dateLayout)+" already exists")
	}
	s.log.Info("attendance created", zap.String("record_id", key), zap.Int("entries", len(req.Entries)))
	return key, nil
}

// Replace swaps the roster of an existing day for req.Entries. The delete and
// the inserts commit together.
func (s *Service) Replace(ctx context.Context, date time.Time, req Request) error {
	if err := s.check(req); err != nil {
		return err
	}
	key := Key(date)
	err := s.db.InTx(ctx, "attendance.replace", func(tx *sql.Tx) error {
		n, err := s.repo.TouchRecord(ctx, tx, key, req.Note, s.now())
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("attendance for %s not found", date.Format(dateLayout))
		}
		if err := s.requireStudents(ctx, tx, req.Entries); err != nil {
			return err
		}
		if err := s.repo.DeleteEntries(ctx, tx, key); err != nil {
			return err
		}
		return s.repo.InsertEntries(ctx, tx, key, req.Entries)
	})
	if err != nil {
		return store.Classify(err, "conflicting attendance entry")
	}
	s.log.Info("attendance replaced", zap.String("record_id", key), zap.Int("entries", len(req.Entries)))
	return nil
}

// Get returns the roster for date.
func (s *Service) Get(ctx context.Context, date time.Time) (Roster, error) {
	key := Key(date)
	var out Roster
	err := s.db.InReadTx(ctx, "attendance.get", func(tx *sql.Tx) error {
		rec, err := s.repo.Record(ctx, tx, key)
		if err != nil {
			return err
		}
		if rec == nil {
			return apperr.NotFoundf("attendance for %s not found", date.Format(dateLayout))
		}
		if rec.Entries, err = s.repo.Entries(ctx, tx, key); err != nil {
			return err
		}
		out = *rec
		return nil
	})
	if err != nil {
		return Roster{}, store.Classify(err, "")
	}
	return out, nil
}
