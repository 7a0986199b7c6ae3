package roles

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"afterschool/internal/apperr"
	"afterschool/internal/authz"
	"afterschool/internal/member"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

// Service coordinates member and role writes.
type Service struct {
	db       *store.DB
	members  *member.Repository
	teachers teacherRepo
	students studentRepo
	log      *zap.Logger
	now      func() time.Time
	cost     int
}

// Option customizes a Service.
type Option func(*Service)

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

// NewService creates a service backed by db.
func NewService(db *store.DB, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		db:      db,
		members: member.NewRepository(),
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		cost:    bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperr.StorageErr(fmt.Errorf("hash password: %w", err))
	}
	return string(b), nil
}

func (s *Service) detach(ctx context.Context, kind Kind, memberID uuid.UUID) error {
	err := s.db.InTx(ctx, string(kind)+".detach", func(tx *sql.Tx) error {
		t := TeacherTable
		if kind == KindStudent {
			t = StudentTable
		}
		n, err := t.MarkDeleted(ctx, tx, s.now(), "member_id = $1", memberID)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("%s not found", kind)
		}
		return nil
	})
	return store.Classify(err, "")
}

// CreateTeacherRequest attaches a teacher role, creating the member when
// MemberID is absent or unknown.
type CreateTeacherRequest struct {
	MemberID       *uuid.UUID     `json:"member_id"`
	Username       string         `json:"username" validate:"required,min=4,max=32"`
	Password       string         `json:"password" validate:"required,min=8,max=72"`
	EmploymentType EmploymentType `json:"employment_type" validate:"gte=0,lte=2"`
	Responsibility *string        `json:"responsibility"`
	Background     *string        `json:"background"`
	member.Fields
}

// UpdateTeacherRequest replaces the member fields and teacher details.
// Password is only changed when provided.
type UpdateTeacherRequest struct {
	Password       *string        `json:"password" validate:"omitempty,min=8,max=72"`
	EmploymentType EmploymentType `json:"employment_type" validate:"gte=0,lte=2"`
	Responsibility *string        `json:"responsibility"`
	Background     *string        `json:"background"`
	member.Fields
}

func (s *Service) teacherAttachment(build func(uuid.UUID, *Teacher, bool) *Teacher) attachment[*Teacher] {
	return attachment[*Teacher]{
		kind:  KindTeacher,
		repo:  s.teachers,
		build: build,
		check: func(ctx context.Context, tx *sql.Tx, t *Teacher) error {
			taken, err := s.teachers.usernameTaken(ctx, tx, t.Username, t.MemberID)
			if err != nil {
				return err
			}
			if taken {
				return apperr.Conflictf("username %q is already taken", t.Username)
			}
			return nil
		},
	}
}

// CreateTeacher is restricted to super admins. New teachers get the admin tier.
func (s *Service) CreateTeacher(ctx context.Context, c authz.Claim, req CreateTeacherRequest) (Identity, error) {
	req.Fields.Normalize()
	if err := validation.Struct(req); err != nil {
		return Identity{}, err
	}
	if err := authz.RequireRole(c, authz.SuperAdmin).Err(); err != nil {
		return Identity{}, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return Identity{}, err
	}
	var key uuid.UUID
	if req.MemberID != nil {
		key = *req.MemberID
	}
	now := s.now()
	id, err := attach(ctx, s, Create, key, req.Fields, s.teacherAttachment(func(memberID uuid.UUID, _ *Teacher, _ bool) *Teacher {
		return &Teacher{
			ID:             uuid.New(),
			MemberID:       memberID,
			Username:       req.Username,
			PasswordHash:   hash,
			Role:           authz.Admin,
			EmploymentType: req.EmploymentType,
			Responsibility: req.Responsibility,
			Background:     req.Background,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
	}))
	if err != nil {
		return Identity{}, err
	}
	s.log.Info("teacher created",
		zap.String("member_id", id.Member.ID.String()),
		zap.String("actor", c.Subject.String()))
	return id, nil
}

// UpdateTeacher lets a teacher edit themselves; super admins may edit anyone.
func (s *Service) UpdateTeacher(ctx context.Context, c authz.Claim, memberID uuid.UUID, req UpdateTeacherRequest) (Identity, error) {
	req.Fields.Normalize()
	if err := validation.Struct(req); err != nil {
		return Identity{}, err
	}
	if err := authz.Authorize(c, memberID).Err(); err != nil {
		return Identity{}, err
	}
	var hash string
	if req.Password != nil {
		var err error
		if hash, err = s.hash(*req.Password); err != nil {
			return Identity{}, err
		}
	}
	now := s.now()
	return attach(ctx, s, Update, memberID, req.Fields, s.teacherAttachment(func(_ uuid.UUID, cur *Teacher, _ bool) *Teacher {
		t := *cur
		if hash != "" {
			t.PasswordHash = hash
		}
		t.EmploymentType = req.EmploymentType
		t.Responsibility = req.Responsibility
		t.Background = req.Background
		t.UpdatedAt = now
		return &t
	}))
}

// DeleteTeacher soft-deletes the teacher role. Super admins only.
func (s *Service) DeleteTeacher(ctx context.Context, c authz.Claim, memberID uuid.UUID) error {
	if err := authz.RequireRole(c, authz.SuperAdmin).Err(); err != nil {
		return err
	}
	if err := s.detach(ctx, KindTeacher, memberID); err != nil {
		return err
	}
	s.log.Info("teacher deleted", zap.String("member_id", memberID.String()), zap.String("actor", c.Subject.String()))
	return nil
}

// StudentRequest carries member and student fields. MemberID is only
// consulted on create.
type StudentRequest struct {
	MemberID *uuid.UUID `json:"member_id"`
	member.Fields
	StudentFields
}

func (r *StudentRequest) normalize() {
	r.Fields.Normalize()
	if r.ClassJoinedAt != nil {
		t := r.ClassJoinedAt.UTC()
		r.ClassJoinedAt = &t
	}
}

func (s *Service) studentAttachment(fields StudentFields) attachment[*Student] {
	now := s.now()
	return attachment[*Student]{
		kind: KindStudent,
		repo: s.students,
		build: func(memberID uuid.UUID, cur *Student, found bool) *Student {
			if found {
				st := *cur
				st.StudentFields = fields
				st.UpdatedAt = now
				return &st
			}
			return &Student{ID: uuid.New(), MemberID: memberID, StudentFields: fields, CreatedAt: now, UpdatedAt: now}
		},
	}
}

// CreateStudent attaches a student role.
func (s *Service) CreateStudent(ctx context.Context, req StudentRequest) (Identity, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return Identity{}, err
	}
	var key uuid.UUID
	if req.MemberID != nil {
		key = *req.MemberID
	}
	id, err := attach(ctx, s, Create, key, req.Fields, s.studentAttachment(req.StudentFields))
	if err != nil {
		return Identity{}, err
	}
	s.log.Info("student created", zap.String("member_id", id.Member.ID.String()))
	return id, nil
}

// UpdateStudent replaces the member and student fields of a live student.
func (s *Service) UpdateStudent(ctx context.Context, memberID uuid.UUID, req StudentRequest) (Identity, error) {
	req.normalize()
	if err := validation.Struct(req); err != nil {
		return Identity{}, err
	}
	return attach(ctx, s, Update, memberID, req.Fields, s.studentAttachment(req.StudentFields))
}

// DeleteStudent soft-deletes the student role.
func (s *Service) DeleteStudent(ctx context.Context, memberID uuid.UUID) error {
	return s.detach(ctx, KindStudent, memberID)
}
