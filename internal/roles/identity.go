// Package roles attaches teacher and student roles to members. Role rows
// carry a surrogate key; at most one live row per member_id is allowed, so a
// role can be attached again after a soft delete. The member and role are
// always written in the same transaction.
package roles

import (
	"encoding/json"

	"github.com/google/uuid"

	"afterschool/internal/member"
)

// Kind names a role table.
type Kind string

const (
	KindTeacher Kind = "teacher"
	KindStudent Kind = "student"
)

// Role is implemented only by *Teacher and *Student.
type Role interface {
	Kind() Kind
	MemberKey() uuid.UUID
	sealed()
}

// Identity is a member together with one of its role attachments.
type Identity struct {
	Member member.Member
	Role   Role
}

// Teacher returns the teacher attachment, if that is what the identity holds.
func (i Identity) Teacher() (*Teacher, bool) {
	t, ok := i.Role.(*Teacher)
	return t, ok
}

// Student returns the student attachment, if that is what the identity holds.
func (i Identity) Student() (*Student, bool) {
	s, ok := i.Role.(*Student)
	return s, ok
}

// MarshalJSON renders {"member": ..., "<kind>": ...}.
func (i Identity) MarshalJSON() ([]byte, error) {
	out := map[string]any{"id": i.Member.ID, "member": i.Member}
	if i.Role != nil {
		out[string(i.Role.Kind())] = i.Role
	}
	return json.Marshal(out)
}
