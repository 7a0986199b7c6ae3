package member

import (
	"context"
	"time"

	"github.com/google/uuid"

	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// Table is the soft-delete view of the members table.
var Table = softdelete.Table{
	Name: "members",
	Columns: []string{
		"id", "name", "id_number", "gender", "birth_date", "home_phone_number", "mobile_phone_number",
		"address", "title", "line_id", "comment", "joined_at", "created_at", "updated_at",
	},
}

// Repository persists members. Every method takes the queryer to run on so
// callers can compose it inside their own transactions.
type Repository struct{}

// NewRepository creates a repo.
func NewRepository() *Repository {
	return &Repository{}
}

// Find returns the live member with id, or nil when there is none.
func (r *Repository) Find(ctx context.Context, q store.Queryer, id uuid.UUID) (*Member, error) {
	var m Member
	if err := Table.FindOne(ctx, q, "id = $1", id).Scan(m.ScanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// IDNumberTaken reports whether another live member already uses idNumber.
func (r *Repository) IDNumberTaken(ctx context.Context, q store.Queryer, idNumber *string, except uuid.UUID) (bool, error) {
	if idNumber == nil {
		return false, nil
	}
	return Table.Exists(ctx, q, "id_number = $1 AND id <> $2", *idNumber, except)
}

// Insert writes a new member row.
func (r *Repository) Insert(ctx context.Context, q store.Queryer, m Member) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO members (id, name, id_number, gender, birth_date, home_phone_number, mobile_phone_number,
			address, title, line_id, comment, joined_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, m.ID, m.Name, m.IDNumber, m.Gender, m.BirthDate, m.HomePhone, m.MobilePhone,
		m.Address, m.Title, m.LineID, m.Comment, m.JoinedAt, m.CreatedAt, m.UpdatedAt)
	return err
}

// Update overwrites every mutable field of a live member.
func (r *Repository) Update(ctx context.Context, q store.Queryer, m Member) (int64, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE members
		SET name = $2, id_number = $3, gender = $4, birth_date = $5, home_phone_number = $6,
			mobile_phone_number = $7, address = $8, title = $9, line_id = $10, comment = $11,
			joined_at = $12, updated_at = $13
		WHERE id = $1 AND deleted_at IS NULL
	`, m.ID, m.Name, m.IDNumber, m.Gender, m.BirthDate, m.HomePhone,
		m.MobilePhone, m.Address, m.Title, m.LineID, m.Comment, m.JoinedAt, m.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns live members ordered by join date.
func (r *Repository) List(ctx context.Context, q store.Queryer) ([]Member, error) {
	rows, err := Table.Query(ctx, q, "", "ORDER BY joined_at, name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []Member
	for rows.Next() {
		var m Member
		if err := rows.Scan(m.ScanDest()...); err != nil {
			return nil, err
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// MarkDeleted soft-deletes a live member.
func (r *Repository) MarkDeleted(ctx context.Context, q store.Queryer, id uuid.UUID, now time.Time) (int64, error) {
	return Table.MarkDeleted(ctx, q, now, "id = $1", id)
}
