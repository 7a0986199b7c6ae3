// Package announcement stores notices published by teachers. Only the
// publisher or a super admin may edit or remove one.
package announcement

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/authz"
	"afterschool/internal/softdelete"
	"afterschool/internal/store"
	"afterschool/internal/validation"
)

// Request is the editable content.
type Request struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
}

// Announcement is a live notice with its publisher's name.
type Announcement struct {
	ID          uuid.UUID `json:"id"`
	PublisherID uuid.UUID `json:"publisher_id"`
	Name        string    `json:"name"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Table is the soft-delete view of announcements.
var Table = softdelete.Table{
	Name:    "announcements",
	Columns: []string{"id", "publisher_id", "title", "content", "created_at", "updated_at"},
}

func (a *Announcement) scanDest() []any {
	return []any{&a.ID, &a.PublisherID, &a.Title, &a.Content, &a.CreatedAt, &a.UpdatedAt}
}

// Service manages announcements.
type Service struct {
	db  *store.DB
	log *zap.Logger
	now func() time.Time
}

// NewService creates a service backed by db.
func NewService(db *store.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log, now: func() time.Time { return time.Now().UTC() }}
}

func normalize(req *Request) {
	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
}

// Create publishes an announcement as the claim's subject.
func (s *Service) Create(ctx context.Context, c authz.Claim, req Request) (Announcement, error) {
	normalize(&req)
	if err := validation.Struct(req); err != nil {
		return Announcement{}, err
	}
	now := s.now()
	a := Announcement{ID: uuid.New(), PublisherID: c.Subject, Title: req.Title, Content: req.Content, CreatedAt: now, UpdatedAt: now}
	err := s.db.InTx(ctx, "announcement.create", func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, `SELECT name FROM members WHERE id = $1 AND deleted_at IS NULL`, c.Subject).Scan(&a.Name); err != nil {
			if store.NoRows(err) {
				return apperr.NotFoundf("publisher not found")
			}
			return err
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO announcements (id, publisher_id, title, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $5)
		`, a.ID, a.PublisherID, a.Title, a.Content, now)
		return err
	})
	if err != nil {
		return Announcement{}, store.Classify(err, "")
	}
	s.log.Info("announcement published", zap.String("announcement_id", a.ID.String()), zap.String("publisher", c.Subject.String()))
	return a, nil
}

// owned loads a live announcement and checks that c may change it.
func (s *Service) owned(ctx context.Context, tx *sql.Tx, c authz.Claim, id uuid.UUID) (*Announcement, error) {
	var a Announcement
	if err := Table.FindOne(ctx, tx, "id = $1", id).Scan(a.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, apperr.NotFoundf("announcement not found")
		}
		return nil, err
	}
	if err := authz.Authorize(c, a.PublisherID).Err(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Update replaces title and content.
func (s *Service) Update(ctx context.Context, c authz.Claim, id uuid.UUID, req Request) (Announcement, error) {
	normalize(&req)
	if err := validation.Struct(req); err != nil {
		return Announcement{}, err
	}
	var out Announcement
	err := s.db.InTx(ctx, "announcement.update", func(tx *sql.Tx) error {
		a, err := s.owned(ctx, tx, c, id)
		if err != nil {
			return err
		}
		a.Title, a.Content, a.UpdatedAt = req.Title, req.Content, s.now()
		if _, err := tx.ExecContext(ctx, `UPDATE announcements SET title = $2, content = $3, updated_at = $4 WHERE id = $1`,
			a.ID, a.Title, a.Content, a.UpdatedAt); err != nil {
			return err
		}
		out = *a
		return nil
	})
	if err != nil {
		return Announcement{}, store.Classify(err, "")
	}
	return out, nil
}

// Delete soft-deletes an announcement.
func (s *Service) Delete(ctx context.Context, c authz.Claim, id uuid.UUID) error {
	err := s.db.InTx(ctx, "announcement.delete", func(tx *sql.Tx) error {
		if _, err := s.owned(ctx, tx, c, id); err != nil {
			return err
		}
		_, err := Table.MarkDeleted(ctx, tx, s.now(), "id = $1", id)
		return err
	})
	if err != nil {
		return store.Classify(err, "")
	}
	s.log.Info("announcement deleted", zap.String("announcement_id", id.String()), zap.String("actor", c.Subject.String()))
	return nil
}

// List returns live announcements, newest first.
func (s *Service) List(ctx context.Context) ([]Announcement, error) {
	rows, err := s.db.Client.QueryContext(ctx, "SELECT "+Table.ColumnsAs("a")+", m.name FROM announcements a"+
		" JOIN members m ON m.id = a.publisher_id WHERE "+Table.LiveAs("a")+" ORDER BY a.updated_at DESC")
	if err != nil {
		return nil, apperr.StorageErr(err)
	}
	defer rows.Close()
	res := []Announcement{}
	for rows.Next() {
		var a Announcement
		if err := rows.Scan(append(a.scanDest(), &a.Name)...); err != nil {
			return nil, apperr.StorageErr(err)
		}
		res = append(res, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.StorageErr(err)
	}
	return res, nil
}
