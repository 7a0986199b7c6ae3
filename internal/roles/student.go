package roles

import (
	"context"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// StudentFields are the schooling and family attributes of a student.
type StudentFields struct {
	SchoolName    *string    `json:"school_name" validate:"omitempty,max=128"`
	Grade         *int16     `json:"grade" validate:"omitempty,gte=1,lte=12"`
	IsPG          *bool      `json:"is_pg"`
	Description   *string    `json:"description"`
	FamilyType    *string    `json:"family_type" validate:"omitempty,max=64"`
	FamilyMembers *int16     `json:"family_members" validate:"omitempty,gte=0,lte=50"`
	Breadwinner   *string    `json:"breadwinner" validate:"omitempty,max=64"`
	Occupation    *string    `json:"occupation" validate:"omitempty,max=64"`
	Subsidy       *string    `json:"subsidy" validate:"omitempty,max=128"`
	HomeOwnership *int16     `json:"home_ownership" validate:"omitempty,gte=0,lte=3"`
	ClassJoinedAt *time.Time `json:"class_joined_at"`
}

// Student is a live student attachment.
type Student struct {
	ID       uuid.UUID `json:"-"`
	MemberID uuid.UUID `json:"member_id"`
	StudentFields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Student) Kind() Kind           { return KindStudent }
func (s *Student) MemberKey() uuid.UUID { return s.MemberID }
func (s *Student) sealed()              {}

func (s *Student) scanDest() []any {
	return []any{
		&s.ID, &s.MemberID, &s.SchoolName, &s.Grade, &s.IsPG, &s.Description, &s.FamilyType,
		&s.FamilyMembers, &s.Breadwinner, &s.Occupation, &s.Subsidy, &s.HomeOwnership,
		&s.ClassJoinedAt, &s.CreatedAt, &s.UpdatedAt,
	}
}

// StudentTable is the soft-delete view of the students table.
var StudentTable = softdelete.Table{
	Name: "students",
	Columns: []string{
		"id", "member_id", "school_name", "grade", "is_pg", "description", "family_type",
		"family_members", "breadwinner", "occupation", "subsidy", "home_ownership",
		"class_joined_at", "created_at", "updated_at",
	},
}

type studentRepo struct{}

func (studentRepo) find(ctx context.Context, q store.Queryer, memberID uuid.UUID) (*Student, bool, error) {
	var s Student
	if err := StudentTable.FindOne(ctx, q, "member_id = $1", memberID).Scan(s.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return &s, true, nil
}

func (studentRepo) insert(ctx context.Context, q store.Queryer, s *Student) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO students (id, member_id, school_name, grade, is_pg, description, family_type,
			family_members, breadwinner, occupation, subsidy, home_ownership, class_joined_at,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`, s.ID, s.MemberID, s.SchoolName, s.Grade, s.IsPG, s.Description, s.FamilyType,
		s.FamilyMembers, s.Breadwinner, s.Occupation, s.Subsidy, s.HomeOwnership, s.ClassJoinedAt,
		s.CreatedAt, s.UpdatedAt)
	return err
}

func (studentRepo) update(ctx context.Context, q store.Queryer, s *Student) error {
	_, err := q.ExecContext(ctx, `
		UPDATE students
		SET school_name = $2, grade = $3, is_pg = $4, description = $5, family_type = $6,
			family_members = $7, breadwinner = $8, occupation = $9, subsidy = $10,
			home_ownership = $11, class_joined_at = $12, updated_at = $13
		WHERE id = $1 AND deleted_at IS NULL
	`, s.ID, s.SchoolName, s.Grade, s.IsPG, s.Description, s.FamilyType,
		s.FamilyMembers, s.Breadwinner, s.Occupation, s.Subsidy, s.HomeOwnership,
		s.ClassJoinedAt, s.UpdatedAt)
	return err
}

// IsLiveStudent reports whether memberID holds a live student role on a
// live member.
func IsLiveStudent(ctx context.Context, q store.Queryer, memberID uuid.UUID) (bool, error) {
	return StudentTable.Exists(ctx, q,
		"member_id = $1 AND EXISTS (SELECT 1 FROM members m WHERE m.id = students.member_id AND m.deleted_at IS NULL)",
		memberID)
}
