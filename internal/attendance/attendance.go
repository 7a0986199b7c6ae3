// Package attendance stores one roster per calendar day. The record key is
// derived from the date, and every update replaces the whole roster.
package attendance

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/apperr"
)

const (
	dateLayout = "2006-01-02"
	keyLayout  = "20060102"
)

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Key is the record id for a date: the date without separators.
func Key(date time.Time) string {
	return date.Format(keyLayout)
}

// Entry marks one student present or absent.
type Entry struct {
	StudentID uuid.UUID `json:"student_id"`
	Present   bool      `json:"attendance_status"`
	Note      *string   `json:"note" validate:"omitempty,max=255"`
}

// Request is the complete roster for a day.
type Request struct {
	Note    *string `json:"note" validate:"omitempty,max=1000"`
	Entries []Entry `json:"attendance_students" validate:"dive"`
}

func (r Request) checkEntries() error {
	seen := make(map[uuid.UUID]bool, len(r.Entries))
	for _, e := range r.Entries {
		if e.StudentID == uuid.Nil {
			return apperr.Validationf("student_id is required")
		}
		if seen[e.StudentID] {
			return apperr.Validationf("student %s appears more than once", e.StudentID)
		}
		seen[e.StudentID] = true
	}
	return nil
}

// EntryView is an entry with the student's name.
type EntryView struct {
	Entry
	Name string `json:"name"`
}

// Roster is a stored day.
type Roster struct {
	ID        string      `json:"id"`
	Note      *string     `json:"note"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Entries   []EntryView `json:"attendance_students"`
}
