package roles

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/authz"
	"afterschool/internal/member"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

// Admin describes the super admin seeded into an empty deployment.
type Admin struct {
	Name     string `validate:"required,min=2"`
	Username string `validate:"required,min=4,max=32"`
	Password string `validate:"required,min=8,max=72"`
}

// EnsureSuperAdmin creates a super admin teacher when no live teacher
// exists. It reports whether one was created.
func (s *Service) EnsureSuperAdmin(ctx context.Context, a Admin) (bool, error) {
	if err := validation.Struct(a); err != nil {
		return false, err
	}
	hash, err := s.hash(a.Password)
	if err != nil {
		return false, err
	}
	created := false
	err = s.db.InTx(ctx, "teacher.bootstrap", func(tx *sql.Tx) error {
		exists, err := TeacherTable.Exists(ctx, tx, "")
		if err != nil || exists {
			return err
		}
		now := s.now()
		m := member.Member{
			ID:        uuid.New(),
			Fields:    member.Fields{Name: a.Name, JoinedAt: now.Truncate(24 * time.Hour)},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.members.Insert(ctx, tx, m); err != nil {
			return err
		}
		created = true
		return s.teachers.insert(ctx, tx, &Teacher{
			ID:             uuid.New(),
			MemberID:       m.ID,
			Username:       a.Username,
			PasswordHash:   hash,
			Role:           authz.SuperAdmin,
			EmploymentType: FullTime,
			CreatedAt:      now,
			UpdatedAt:      now,
		})
	})
	if err != nil {
		return false, store.Classify(err, "default admin username is already taken")
	}
	if created {
		s.log.Info("seeded default super admin", zap.String("username", a.Username))
	}
	return created, nil
}
