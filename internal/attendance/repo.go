package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/roles"
	"afterschool/internal/store"
)

// Repository persists rosters. Methods run on the queryer they are given.
type Repository struct{}

// NewRepository creates a repo.
func NewRepository() *Repository {
	return &Repository{}
}

// Exists reports whether a record exists for key.
func (r *Repository) Exists(ctx context.Context, q store.Queryer, key string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM attendance_records WHERE id = $1`, key).Scan(&one)
	if store.NoRows(err) {
		return false, nil
	}
	return err == nil, err
}

// InsertRecord writes the parent row.
func (r *Repository) InsertRecord(ctx context.Context, q store.Queryer, key string, note *string, now time.Time) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO attendance_records (id, note, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
	`, key, note, now)
	return err
}

// TouchRecord updates the note and timestamp of an existing parent.
func (r *Repository) TouchRecord(ctx context.Context, q store.Queryer, key string, note *string, now time.Time) (int64, error) {
	res, err := q.ExecContext(ctx, `UPDATE attendance_records SET note = $2, updated_at = $3 WHERE id = $1`, key, note, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteEntries removes every child of key.
func (r *Repository) DeleteEntries(ctx context.Context, q store.Queryer, key string) error {
	_, err := q.ExecContext(ctx, `DELETE FROM attendance_entries WHERE record_id = $1`, key)
	return err
}

// InsertEntries writes all entries with a single statement.
func (r *Repository) InsertEntries(ctx context.Context, q store.Queryer, key string, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	args := make([]any, 0, len(entries)*4)
	for _, e := range entries {
		args = append(args, key, e.StudentID, e.Present, e.Note)
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO attendance_entries (record_id, student_id, present, note) VALUES `+store.Rows(len(entries), 4),
		args...)
	return err
}

// MissingStudent returns the first id that is not a live student, or
// uuid.Nil when all are.
func (r *Repository) MissingStudent(ctx context.Context, q store.Queryer, entries []Entry) (uuid.UUID, error) {
	for _, e := range entries {
		ok, err := roles.IsLiveStudent(ctx, q, e.StudentID)
		if err != nil {
			return uuid.Nil, err
		}
		if !ok {
			return e.StudentID, nil
		}
	}
	return uuid.Nil, nil
}

// Record loads the parent row, or nil when absent.
func (r *Repository) Record(ctx context.Context, q store.Queryer, key string) (*Roster, error) {
	var ro Roster
	err := q.QueryRowContext(ctx, `SELECT id, note, created_at, updated_at FROM attendance_records WHERE id = $1`, key).
		Scan(&ro.ID, &ro.Note, &ro.CreatedAt, &ro.UpdatedAt)
	if err != nil {
		if store.NoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &ro, nil
}

// Entries loads the children of key ordered by student name.
func (r *Repository) Entries(ctx context.Context, q store.Queryer, key string) ([]EntryView, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT e.student_id, e.present, e.note, m.name
		FROM attendance_entries e
		JOIN members m ON m.id = e.student_id
		WHERE e.record_id = $1
		ORDER BY m.name, e.student_id
	`, key)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []EntryView{}
	for rows.Next() {
		var ev EntryView
		if err := rows.Scan(&ev.StudentID, &ev.Present, &ev.Note, &ev.Name); err != nil {
			return nil, err
		}
		res = append(res, ev)
	}
	return res, rows.Err()
}
