// Package member owns the base identity shared by teachers and students.
package member

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Fields are the mutable base attributes of a member. Updates replace all of
// them.
type Fields struct {
	Name        string     `json:"name" validate:"required,min=2,max=64"`
	IDNumber    *string    `json:"id_number" validate:"omitempty,min=10,max=20"`
	Gender      *int16     `json:"gender" validate:"omitempty,gte=0,lte=2"`
	BirthDate   *time.Time `json:"birth_date"`
	HomePhone   *string    `json:"home_phone_number" validate:"omitempty,max=32"`
	MobilePhone *string    `json:"mobile_phone_number" validate:"omitempty,max=32"`
	Address     *string    `json:"address" validate:"omitempty,max=255"`
	Title       *string    `json:"title" validate:"omitempty,max=64"`
	LineID      *string    `json:"line_id" validate:"omitempty,max=64"`
	Comment     *string    `json:"comment"`
	JoinedAt    time.Time  `json:"joined_at" validate:"required"`
}

// Normalize trims text and turns blank optional values into nulls so that
// empty strings never collide on unique indexes.
func (f *Fields) Normalize() {
	f.Name = strings.TrimSpace(f.Name)
	for _, p := range []**string{&f.IDNumber, &f.HomePhone, &f.MobilePhone, &f.Address, &f.Title, &f.LineID, &f.Comment} {
		if *p == nil {
			continue
		}
		v := strings.TrimSpace(**p)
		if v == "" {
			*p = nil
			continue
		}
		*p = &v
	}
	f.JoinedAt = f.JoinedAt.UTC()
	if f.BirthDate != nil {
		b := f.BirthDate.UTC()
		f.BirthDate = &b
	}
}

// Member is a live identity row.
type Member struct {
	ID uuid.UUID `json:"id"`
	Fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ScanDest returns scan targets in Table column order.
func (m *Member) ScanDest() []any {
	return []any{
		&m.ID, &m.Name, &m.IDNumber, &m.Gender, &m.BirthDate, &m.HomePhone, &m.MobilePhone,
		&m.Address, &m.Title, &m.LineID, &m.Comment, &m.JoinedAt, &m.CreatedAt, &m.UpdatedAt,
	}
}
