package member_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/member"
	"afterschool/internal/softdelete"
	"afterschool/internal/store/storetest"
)

var students = softdelete.Table{Name: "students", Columns: []string{"id"}}

func ptr[T any](v T) *T { return &v }

func fields(name, idNumber string) member.Fields {
	f := member.Fields{Name: name, JoinedAt: time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)}
	if idNumber != "" {
		f.IDNumber = ptr(idNumber)
	}
	return f
}

func TestCreateAndGet(t *testing.T) {
	db := storetest.Open(t)
	svc := member.NewService(db, zap.NewNop())
	ctx := context.Background()

	in := fields("  Amy Chen ", "A123456789")
	in.Gender = ptr(int16(1))
	in.LineID = ptr("   ")
	m, err := svc.Create(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, "Amy Chen", m.Name)
	assert.Nil(t, m.LineID)

	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.Equal(t, "A123456789", *got.IDNumber)
	assert.Equal(t, int16(1), *got.Gender)
}

func TestCreateValidation(t *testing.T) {
	db := storetest.Open(t)
	svc := member.NewService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), fields("A", ""))
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.Create(context.Background(), fields("Amy", "short"))
	assert.True(t, apperr.Is(err, apperr.Validation))
	assert.Equal(t, 0, storetest.Count(t, db, "members", ""))
}

func TestIDNumberConflict(t *testing.T) {
	db := storetest.Open(t)
	svc := member.NewService(db, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, fields("Amy", "A123456789"))
	require.NoError(t, err)
	bob, err := svc.Create(ctx, fields("Bob", "B123456789"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, fields("Cat", "A123456789"))
	assert.True(t, apperr.Is(err, apperr.Conflict))

	_, err = svc.Update(ctx, bob.ID, fields("Bob", "A123456789"))
	assert.True(t, apperr.Is(err, apperr.Conflict))

	// keeping your own number is fine
	_, err = svc.Update(ctx, bob.ID, fields("Bobby", "B123456789"))
	assert.NoError(t, err)
}

func TestUpdateIsFullReplace(t *testing.T) {
	db := storetest.Open(t)
	svc := member.NewService(db, zap.NewNop())
	ctx := context.Background()

	in := fields("Amy", "")
	in.Address = ptr("1 Main St")
	m, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, m.ID, fields("Amy Chen", ""))
	require.NoError(t, err)
	got, err := svc.Get(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Amy Chen", got.Name)
	assert.Nil(t, got.Address)

	_, err = svc.Update(ctx, uuid.New(), fields("Ghost", ""))
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestDeleteHidesMemberAndRoles(t *testing.T) {
	db := storetest.Open(t)
	svc := member.NewService(db, zap.NewNop(), students)
	ctx := context.Background()

	id := storetest.SeedStudent(t, db, "Stu")
	other, err := svc.Create(ctx, fields("Amy", "A123456789"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, id), apperr.NotFound))
	assert.Equal(t, 0, storetest.Count(t, db, "students", "member_id = $1 AND deleted_at IS NULL", id))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, other.ID, list[0].ID)

	// deleted rows release their id number
	require.NoError(t, svc.Delete(ctx, other.ID))
	_, err = svc.Create(ctx, fields("Amy again", "A123456789"))
	assert.NoError(t, err)
}
