package roles

import (
	"context"

	"github.com/google/uuid"

	"afterschool/internal/apperr"
	"afterschool/internal/authz"
	"afterschool/internal/member"
	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// joined selects live role rows of t with their live members. The join is
// written out here rather than hidden behind an ORM relation.
func joined(t softdelete.Table, where string) string {
	q := "SELECT " + member.Table.ColumnsAs("m") + ", " + t.ColumnsAs("r") +
		" FROM " + t.Name + " r JOIN members m ON m.id = r.member_id" +
		" WHERE " + t.LiveAs("r") + " AND " + member.Table.LiveAs("m")
	if where != "" {
		q += " AND " + where
	}
	return q + " ORDER BY m.joined_at, m.name"
}

func queryIdentities[R Role](ctx context.Context, q store.Queryer, t softdelete.Table, where string, newRole func() (R, []any), args ...any) ([]Identity, error) {
	rows, err := q.QueryContext(ctx, joined(t, where), args...)
	if err != nil {
		return nil, apperr.StorageErr(err)
	}
	defer rows.Close()
	var out []Identity
	for rows.Next() {
		var m member.Member
		r, dest := newRole()
		if err := rows.Scan(append(m.ScanDest(), dest...)...); err != nil {
			return nil, apperr.StorageErr(err)
		}
		out = append(out, Identity{Member: m, Role: r})
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageErr(err)
	}
	return out, nil
}

func newTeacher() (*Teacher, []any) {
	t := &Teacher{}
	return t, t.scanDest()
}

func newStudent() (*Student, []any) {
	s := &Student{}
	return s, s.scanDest()
}

func one(ids []Identity, kind Kind) (Identity, error) {
	if len(ids) == 0 {
		return Identity{}, apperr.NotFoundf("%s not found", kind)
	}
	return ids[0], nil
}

// GetTeacher returns a live teacher by member id.
func (s *Service) GetTeacher(ctx context.Context, memberID uuid.UUID) (Identity, error) {
	ids, err := queryIdentities(ctx, s.db.Client, TeacherTable, "m.id = $1", newTeacher, memberID)
	if err != nil {
		return Identity{}, err
	}
	return one(ids, KindTeacher)
}

// ListTeachers returns every live teacher.
func (s *Service) ListTeachers(ctx context.Context) ([]Identity, error) {
	return queryIdentities(ctx, s.db.Client, TeacherTable, "", newTeacher)
}

// GetStudent returns a live student by member id.
func (s *Service) GetStudent(ctx context.Context, memberID uuid.UUID) (Identity, error) {
	ids, err := queryIdentities(ctx, s.db.Client, StudentTable, "m.id = $1", newStudent, memberID)
	if err != nil {
		return Identity{}, err
	}
	return one(ids, KindStudent)
}

// ListStudents returns every live student.
func (s *Service) ListStudents(ctx context.Context) ([]Identity, error) {
	return queryIdentities(ctx, s.db.Client, StudentTable, "", newStudent)
}

// LookupCredential returns the login material of a live teacher. Unknown
// usernames yield NotFound.
func (s *Service) LookupCredential(ctx context.Context, username string) (uuid.UUID, authz.Role, string, error) {
	ids, err := queryIdentities(ctx, s.db.Client, TeacherTable, "r.username = $1", newTeacher, username)
	if err != nil {
		return uuid.Nil, 0, "", err
	}
	id, err := one(ids, KindTeacher)
	if err != nil {
		return uuid.Nil, 0, "", err
	}
	t, _ := id.Teacher()
	return t.MemberID, t.Role, t.PasswordHash, nil
}
