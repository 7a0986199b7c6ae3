package member

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/softdelete"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

const idNumberTaken = "id number is already registered"

// Service manages standalone members.
type Service struct {
	db         *store.DB
	repo       *Repository
	dependents []softdelete.Table
	log        *zap.Logger
	now        func() time.Time
}

// NewService creates a service. dependents are role tables keyed by
// member_id whose live rows are soft-deleted together with their member.
func NewService(db *store.DB, log *zap.Logger, dependents ...softdelete.Table) *Service {
	return &Service{
		db:         db,
		repo:       NewRepository(),
		dependents: dependents,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new member.
func (s *Service) Create(ctx context.Context, f Fields) (Member, error) {
	f.Normalize()
	if err := validation.Struct(f); err != nil {
		return Member{}, err
	}
	now := s.now()
	m := Member{ID: uuid.New(), Fields: f, CreatedAt: now, UpdatedAt: now}
	err := s.db.InTx(ctx, "member.create", func(tx *sql.Tx) error {
		taken, err := s.repo.IDNumberTaken(ctx, tx, f.IDNumber, m.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflictf(idNumberTaken)
		}
		return s.repo.Insert(ctx, tx, m)
	})
	if err != nil {
		return Member{}, store.Classify(err, idNumberTaken)
	}
	s.log.Info("member created", zap.String("member_id", m.ID.String()))
	return m, nil
}

// Update replaces every field of an existing live member.
func (s *Service) Update(ctx context.Context, id uuid.UUID, f Fields) (Member, error) {
	f.Normalize()
	if err := validation.Struct(f); err != nil {
		return Member{}, err
	}
	var out Member
	err := s.db.InTx(ctx, "member.update", func(tx *sql.Tx) error {
		cur, err := s.repo.Find(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return apperr.NotFoundf("member not found")
		}
		taken, err := s.repo.IDNumberTaken(ctx, tx, f.IDNumber, id)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflictf(idNumberTaken)
		}
		out = Member{ID: id, Fields: f, CreatedAt: cur.CreatedAt, UpdatedAt: s.now()}
		_, err = s.repo.Update(ctx, tx, out)
		return err
	})
	if err != nil {
		return Member{}, store.Classify(err, idNumberTaken)
	}
	return out, nil
}

// Delete soft-deletes a member together with its live role attachments.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	err := s.db.InTx(ctx, "member.delete", func(tx *sql.Tx) error {
		now := s.now()
		n, err := s.repo.MarkDeleted(ctx, tx, id, now)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("member not found")
		}
		for _, t := range s.dependents {
			if _, err := t.MarkDeleted(ctx, tx, now, "member_id = $1", id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return store.Classify(err, "")
	}
	s.log.Info("member deleted", zap.String("member_id", id.String()))
	return nil
}

// Get returns a live member.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (Member, error) {
	m, err := s.repo.Find(ctx, s.db.Client, id)
	if err != nil {
		return Member{}, apperr.StorageErr(err)
	}
	if m == nil {
		return Member{}, apperr.NotFoundf("member not found")
	}
	return *m, nil
}

// List returns all live members.
func (s *Service) List(ctx context.Context) ([]Member, error) {
	ms, err := s.repo.List(ctx, s.db.Client)
	if err != nil {
		return nil, apperr.StorageErr(err)
	}
	return ms, nil
}
