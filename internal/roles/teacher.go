package roles

import (
	"context"
	"database/sql/driver"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/authz"
	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// EmploymentType is stored as a smallint.
type EmploymentType int16

const (
	FullTime  EmploymentType = 0
	HalfTime  EmploymentType = 1
	Volunteer EmploymentType = 2
)

func (e EmploymentType) Value() (driver.Value, error) { return int64(e), nil }

// Teacher is a live teacher attachment. The password hash never leaves the
// package in JSON.
type Teacher struct {
	ID             uuid.UUID      `json:"-"`
	MemberID       uuid.UUID      `json:"member_id"`
	Username       string         `json:"username"`
	PasswordHash   string         `json:"-"`
	Role           authz.Role     `json:"role"`
	EmploymentType EmploymentType `json:"employment_type"`
	Responsibility *string        `json:"responsibility"`
	Background     *string        `json:"background"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func (t *Teacher) Kind() Kind           { return KindTeacher }
func (t *Teacher) MemberKey() uuid.UUID { return t.MemberID }
func (t *Teacher) sealed()              {}

func (t *Teacher) scanDest() []any {
	return []any{
		&t.ID, &t.MemberID, &t.Username, &t.PasswordHash, &t.Role, &t.EmploymentType,
		&t.Responsibility, &t.Background, &t.CreatedAt, &t.UpdatedAt,
	}
}

// TeacherTable is the soft-delete view of the teachers table.
var TeacherTable = softdelete.Table{
	Name: "teachers",
	Columns: []string{
		"id", "member_id", "username", "password_hash", "role", "employment_type",
		"responsibility", "background", "created_at", "updated_at",
	},
}

type teacherRepo struct{}

func (teacherRepo) find(ctx context.Context, q store.Queryer, memberID uuid.UUID) (*Teacher, bool, error) {
	var t Teacher
	if err := TeacherTable.FindOne(ctx, q, "member_id = $1", memberID).Scan(t.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &t, true, nil
}

func (teacherRepo) findByUsername(ctx context.Context, q store.Queryer, username string) (*Teacher, error) {
	var t Teacher
	if err := TeacherTable.FindOne(ctx, q, "username = $1", username).Scan(t.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (teacherRepo) usernameTaken(ctx context.Context, q store.Queryer, username string, except uuid.UUID) (bool, error) {
	return TeacherTable.Exists(ctx, q, "username = $1 AND member_id <> $2", username, except)
}

func (teacherRepo) insert(ctx context.Context, q store.Queryer, t *Teacher) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO teachers (id, member_id, username, password_hash, role, employment_type,
			responsibility, background, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, t.ID, t.MemberID, t.Username, t.PasswordHash, t.Role, t.EmploymentType,
		t.Responsibility, t.Background, t.CreatedAt, t.UpdatedAt)
	return err
}

func (teacherRepo) update(ctx context.Context, q store.Queryer, t *Teacher) error {
	_, err := q.ExecContext(ctx, `
		UPDATE teachers
		SET password_hash = $2, employment_type = $3, responsibility = $4, background = $5, updated_at = $6
		WHERE id = $1 AND deleted_at IS NULL
	`, t.ID, t.PasswordHash, t.EmploymentType, t.Responsibility, t.Background, t.UpdatedAt)
	return err
}
