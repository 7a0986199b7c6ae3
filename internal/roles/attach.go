package roles

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"afterschool/internal/apperr"
	"afterschool/internal/member"
	"afterschool/internal/store"
)

// Intent says whether the caller expects the role to be new or to exist.
type Intent int

const (
	Create Intent = iota
	Update
)

type roleRepo[R Role] interface {
	find(ctx context.Context, q store.Queryer, memberID uuid.UUID) (R, bool, error)
	insert(ctx context.Context, q store.Queryer, r R) error
	update(ctx context.Context, q store.Queryer, r R) error
}

// attachment describes one role kind to the orchestrator.
type attachment[R Role] struct {
	kind Kind
	repo roleRepo[R]
	// build returns the row to write. existing is the zero value on create.
	build func(memberID uuid.UUID, existing R, found bool) R
	// check runs role-specific uniqueness checks before the role write.
	check func(ctx context.Context, tx *sql.Tx, r R) error
}

// attach upserts the member and writes the role row in one transaction.
// A key that does not resolve to a live member yields a new member on
// Create and NotFound on Update.
func attach[R Role](ctx context.Context, s *Service, intent Intent, memberKey uuid.UUID, fields member.Fields, a attachment[R]) (Identity, error) {
	var out Identity
	op := fmt.Sprintf("%s.attach", a.kind)
	err := s.db.InTx(ctx, op, func(tx *sql.Tx) error {
		var cur *member.Member
		if memberKey != uuid.Nil {
			var err error
			if cur, err = s.members.Find(ctx, tx, memberKey); err != nil {
				return err
			}
		}

		var existing R
		var found bool
		if cur != nil {
			var err error
			if existing, found, err = a.repo.find(ctx, tx, cur.ID); err != nil {
				return err
			}
		}
		switch {
		case intent == Create && found:
			return apperr.Conflictf("member already holds the %s role", a.kind)
		case intent == Update && !found:
			return apperr.NotFoundf("%s not found", a.kind)
		}

		now := s.now()
		m := member.Member{ID: uuid.New(), Fields: fields, CreatedAt: now, UpdatedAt: now}
		if cur != nil {
			m.ID, m.CreatedAt = cur.ID, cur.CreatedAt
		}
		taken, err := s.members.IDNumberTaken(ctx, tx, fields.IDNumber, m.ID)
		if err != nil {
			return err
		}
		if taken {
			return apperr.Conflictf("id number is already registered")
		}
		if cur == nil {
			err = s.members.Insert(ctx, tx, m)
		} else {
			_, err = s.members.Update(ctx, tx, m)
		}
		if err != nil {
			return err
		}

		r := a.build(m.ID, existing, found)
		if a.check != nil {
			if err := a.check(ctx, tx, r); err != nil {
				return err
			}
		}
		if found {
			err = a.repo.update(ctx, tx, r)
		} else {
			err = a.repo.insert(ctx, tx, r)
		}
		if err != nil {
			return err
		}
		out = Identity{Member: m, Role: r}
		return nil
	})
	if err != nil {
		return Identity{}, store.Classify(err, fmt.Sprintf("conflicting %s record already exists", a.kind))
	}
	return out, nil
}
