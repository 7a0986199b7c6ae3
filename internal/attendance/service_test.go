package attendance_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"afterschool/internal/apperr"
	"afterschool/internal/attendance"
	"afterschool/internal/store/storetest"
)

func studentIDs(r attendance.Roster) []uuid.UUID {
	var ids []uuid.UUID
	for _, e := range r.Entries {
		ids = append(ids, e.StudentID)
	}
	return ids
}

func TestKeyAndParseDate(t *testing.T) {
	d, err := attendance.ParseDate("2024-01-05")
	require.NoError(t, err)
	assert.Equal(t, "20240105", attendance.Key(d))

	for _, bad := range []string{"", "2024-13-01", "05/01/2024", "20240105"} {
		_, err := attendance.ParseDate(bad)
		assert.True(t, apperr.Is(err, apperr.Validation), bad)
	}
}

func TestCreateThenConflict(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	ctx := context.Background()
	amy := storetest.SeedStudent(t, db, "Amy")
	date, err := attendance.ParseDate("2024-01-05")
	require.NoError(t, err)

	note := "field trip"
	key, err := svc.Create(ctx, date, attendance.Request{
		Note:    &note,
		Entries: []attendance.Entry{{StudentID: amy, Present: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, "20240105", key)

	_, err = svc.Create(ctx, date, attendance.Request{})
	assert.True(t, apperr.Is(err, apperr.Conflict))

	got, err := svc.Get(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, "20240105", got.ID)
	assert.Equal(t, "field trip", *got.Note)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "Amy", got.Entries[0].Name)
	assert.True(t, got.Entries[0].Present)
}

func TestReplaceIsWholesale(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	ctx := context.Background()
	a1 := storetest.SeedStudent(t, db, "A1")
	a2 := storetest.SeedStudent(t, db, "A2")
	b1 := storetest.SeedStudent(t, db, "B1")
	b2 := storetest.SeedStudent(t, db, "B2")
	date, _ := attendance.ParseDate("2024-03-11")

	_, err := svc.Create(ctx, date, attendance.Request{Entries: []attendance.Entry{
		{StudentID: a1, Present: true}, {StudentID: a2},
	}})
	require.NoError(t, err)

	require.NoError(t, svc.Replace(ctx, date, attendance.Request{Entries: []attendance.Entry{
		{StudentID: b2, Present: true}, {StudentID: b1, Present: true},
	}}))

	got, err := svc.Get(ctx, date)
	require.NoError(t, err)
	if diff := cmp.Diff([]uuid.UUID{b1, b2}, studentIDs(got)); diff != "" {
		t.Fatalf("roster mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 2, storetest.Count(t, db, "attendance_entries", ""))

	// an empty roster is a complete roster
	require.NoError(t, svc.Replace(ctx, date, attendance.Request{}))
	got, err = svc.Get(ctx, date)
	require.NoError(t, err)
	assert.Empty(t, got.Entries)
}

func TestReplaceFailureKeepsPreviousRoster(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	ctx := context.Background()
	a := storetest.SeedStudent(t, db, "A")
	date, _ := attendance.ParseDate("2024-03-12")
	_, err := svc.Create(ctx, date, attendance.Request{Entries: []attendance.Entry{{StudentID: a}}})
	require.NoError(t, err)

	_, err = db.Client.Exec(`CREATE TRIGGER fail_entry_insert BEFORE INSERT ON attendance_entries
		BEGIN SELECT RAISE(ABORT, 'injected failure'); END`)
	require.NoError(t, err)

	b := storetest.SeedStudent(t, db, "B")
	err = svc.Replace(ctx, date, attendance.Request{Entries: []attendance.Entry{{StudentID: b}}})
	assert.True(t, apperr.Is(err, apperr.Storage))

	got, err := svc.Get(ctx, date)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a}, studentIDs(got))
}

func TestReplaceAndGetMissing(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	date, _ := attendance.ParseDate("2024-02-29")

	assert.True(t, apperr.Is(svc.Replace(context.Background(), date, attendance.Request{}), apperr.NotFound))
	_, err := svc.Get(context.Background(), date)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestEntryValidation(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	ctx := context.Background()
	a := storetest.SeedStudent(t, db, "A")
	date, _ := attendance.ParseDate("2024-04-01")

	_, err := svc.Create(ctx, date, attendance.Request{Entries: []attendance.Entry{{StudentID: a}, {StudentID: a}}})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, date, attendance.Request{Entries: []attendance.Entry{{}}})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(ctx, date, attendance.Request{Entries: []attendance.Entry{{StudentID: uuid.New()}}})
	assert.True(t, apperr.Is(err, apperr.NotFound))

	assert.Equal(t, 0, storetest.Count(t, db, "attendance_records", ""))
}

func TestConcurrentCreateSingleWinner(t *testing.T) {
	db := storetest.Open(t)
	svc := attendance.NewService(db, zap.NewNop())
	a := storetest.SeedStudent(t, db, "A")
	date, _ := attendance.ParseDate("2024-05-20")

	var wins, conflicts atomic.Int32
	var g errgroup.Group
	for i := 0; i < 8; i++ {
		g.Go(func() error {
			_, err := svc.Create(context.Background(), date, attendance.Request{Entries: []attendance.Entry{{StudentID: a, Present: true}}})
			switch {
			case err == nil:
				wins.Add(1)
			case apperr.Is(err, apperr.Conflict):
				conflicts.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 7, conflicts.Load())
	assert.Equal(t, 1, storetest.Count(t, db, "attendance_entries", ""))
}
