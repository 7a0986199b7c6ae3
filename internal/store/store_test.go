package store_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"afterschool/internal/apperr"
	"afterschool/internal/metrics"
	"afterschool/internal/store"
	"afterschool/internal/store/storetest"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMigrateIsIdempotent(t *testing.T) {
	db := storetest.Open(t)
	require.NoError(t, db.Migrate(context.Background()))
	assert.True(t, db.Healthy(context.Background()))
}

func TestUniqueViolationClassifiedAsConflict(t *testing.T) {
	db := storetest.Open(t)
	now := time.Now().UTC()
	insert := `INSERT INTO members (id, name, id_number, joined_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $4, $4)`
	_, err := db.Client.Exec(insert, uuid.New(), "Amy", "A123456789", now)
	require.NoError(t, err)

	_, err = db.Client.Exec(insert, uuid.New(), "Bob", "A123456789", now)
	require.Error(t, err)
	assert.True(t, store.IsUniqueViolation(err))

	classified := store.Classify(err, "id number already registered")
	assert.True(t, apperr.Is(classified, apperr.Conflict))
	assert.Equal(t, "id number already registered", apperr.MessageOf(classified))
}

func TestSoftDeletedRowReleasesUniqueValue(t *testing.T) {
	db := storetest.Open(t)
	now := time.Now().UTC()
	id := uuid.New()
	_, err := db.Client.Exec(`INSERT INTO members (id, name, id_number, joined_at, created_at, updated_at, deleted_at) VALUES ($1, 'Amy', 'A123456789', $2, $2, $2, $2)`, id, now)
	require.NoError(t, err)
	_, err = db.Client.Exec(`INSERT INTO members (id, name, id_number, joined_at, created_at, updated_at) VALUES ($1, 'Amy', 'A123456789', $2, $2, $2)`, uuid.New(), now)
	assert.NoError(t, err)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, store.Classify(nil, "x"))

	pgErr := &pgconn.PgError{Code: "23505"}
	assert.True(t, apperr.Is(store.Classify(pgErr, "taken"), apperr.Conflict))

	nf := apperr.NotFoundf("member not found")
	assert.Same(t, nf, store.Classify(nf, "taken"))

	for _, code := range []string{"40001", "40P01"} {
		raced := store.Classify(fmt.Errorf("commit: %w", &pgconn.PgError{Code: code}), "taken")
		assert.True(t, apperr.Is(raced, apperr.Conflict), code)
		assert.Equal(t, store.RetryMessage, apperr.MessageOf(raced), code)
	}

	assert.True(t, apperr.Is(store.Classify(errors.New("boom"), "taken"), apperr.Storage))
}

func TestInTxRollsBack(t *testing.T) {
	db := storetest.Open(t)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tracked := store.WithMetrics(db, m)

	sentinel := apperr.Conflictf("already exists")
	err := tracked.InTx(context.Background(), "test.rollback", func(tx *sql.Tx) error {
		now := time.Now().UTC()
		if _, err := tx.Exec(`INSERT INTO members (id, name, joined_at, created_at, updated_at) VALUES ($1, 'Amy', $2, $2, $2)`, uuid.New(), now); err != nil {
			return err
		}
		return sentinel
	})
	assert.Same(t, sentinel, err)
	assert.Equal(t, 0, storetest.Count(t, db, "members", ""))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("test.rollback", "rollback")))

	require.NoError(t, tracked.InTx(context.Background(), "test.commit", func(tx *sql.Tx) error {
		now := time.Now().UTC()
		_, err := tx.Exec(`INSERT INTO members (id, name, joined_at, created_at, updated_at) VALUES ($1, 'Amy', $2, $2, $2)`, uuid.New(), now)
		return err
	}))
	assert.Equal(t, 1, storetest.Count(t, db, "members", ""))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Transactions.WithLabelValues("test.commit", "commit")))
}

func TestInTxRollsBackOnPanic(t *testing.T) {
	db := storetest.Open(t)
	assert.Panics(t, func() {
		_ = db.InTx(context.Background(), "test.panic", func(tx *sql.Tx) error {
			now := time.Now().UTC()
			_, _ = tx.Exec(`INSERT INTO members (id, name, joined_at, created_at, updated_at) VALUES ($1, 'Amy', $2, $2, $2)`, uuid.New(), now)
			panic("boom")
		})
	})
	assert.Equal(t, 0, storetest.Count(t, db, "members", ""))
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "$3, $4, $5", store.Placeholders(3, 3))
	assert.Equal(t, "($1, $2), ($3, $4)", store.Rows(2, 2))
	assert.Equal(t, "", store.Placeholders(1, 0))
}

func TestNewDBRejectsUnknownDriver(t *testing.T) {
	_, err := store.NewDB(context.Background(), "mysql", "", nil)
	assert.Error(t, err)
}
