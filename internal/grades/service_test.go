package grades_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"afterschool/internal/apperr"
	"afterschool/internal/grades"
	"afterschool/internal/store/storetest"
)

func ptr(v int16) *int16 { return &v }

func TestDuplicateSlotConflicts(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())
	ctx := context.Background()
	stu := storetest.SeedStudent(t, db, "Stu")

	req := grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 1, ExamType: ptr(1)}
	_, err := svc.Create(ctx, req)
	require.NoError(t, err)

	req.ExamType = ptr(2)
	_, err = svc.Create(ctx, req)
	assert.True(t, apperr.Is(err, apperr.Conflict))
	assert.Equal(t, 1, storetest.Count(t, db, "grade_records", ""))

	req.Semester = 2
	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
}

func TestCreateRequiresLiveStudent(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())

	_, err := svc.Create(context.Background(), grades.Request{StudentID: uuid.New(), AcademicYear: 2024, Semester: 1, ExamType: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.NotFound))

	_, err = svc.Create(context.Background(), grades.Request{AcademicYear: 2024, Semester: 1, ExamType: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.Validation))

	stu := storetest.SeedStudent(t, db, "Stu")
	_, err = svc.Create(context.Background(), grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 1})
	assert.True(t, apperr.Is(err, apperr.Validation), "exam_type is required on create")
}

func TestUpdateNeverChangesExamType(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())
	ctx := context.Background()
	stu := storetest.SeedStudent(t, db, "Stu")

	g, err := svc.Create(ctx, grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 1, ExamType: ptr(2)})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, g.ID, grades.Request{AcademicYear: 2025, Semester: 2, ExamType: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, int16(2), updated.ExamType)
	assert.Equal(t, int16(2025), updated.AcademicYear)
	assert.Equal(t, 1, storetest.Count(t, db, "grade_records", "exam_type = $1", 2))
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())
	ctx := context.Background()
	stu := storetest.SeedStudent(t, db, "Stu")

	g, err := svc.Create(ctx, grades.Request{
		StudentID: stu, AcademicYear: 2024, Semester: 1, ExamType: ptr(1),
		Scores: grades.Scores{MathScore: ptr(70), EnglishScore: ptr(60)},
	})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, g.ID, grades.Request{
		AcademicYear: 2024, Semester: 1,
		Scores: grades.Scores{MathScore: ptr(90)},
	})
	require.NoError(t, err)
	assert.Equal(t, int16(90), *updated.MathScore)
	assert.Equal(t, int16(60), *updated.EnglishScore)
	assert.Equal(t, int16(1), updated.ExamType)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Stu", list[0].Name)
	assert.Equal(t, int16(60), *list[0].EnglishScore)

	_, err = svc.Update(ctx, g.ID, grades.Request{StudentID: uuid.New(), AcademicYear: 2024, Semester: 1, ExamType: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.Validation))
}

func TestUpdateIntoTakenSlotConflicts(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())
	ctx := context.Background()
	stu := storetest.SeedStudent(t, db, "Stu")

	_, err := svc.Create(ctx, grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 1, ExamType: ptr(1)})
	require.NoError(t, err)
	second, err := svc.Create(ctx, grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 2, ExamType: ptr(1)})
	require.NoError(t, err)

	_, err = svc.Update(ctx, second.ID, grades.Request{AcademicYear: 2024, Semester: 1, ExamType: ptr(1)})
	assert.True(t, apperr.Is(err, apperr.Conflict))
}

func TestDeleteFreesSlot(t *testing.T) {
	db := storetest.Open(t)
	svc := grades.NewService(db, zap.NewNop())
	ctx := context.Background()
	stu := storetest.SeedStudent(t, db, "Stu")
	req := grades.Request{StudentID: stu, AcademicYear: 2024, Semester: 1, ExamType: ptr(1)}

	g, err := svc.Create(ctx, req)
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, g.ID))
	assert.True(t, apperr.Is(svc.Delete(ctx, g.ID), apperr.NotFound))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = svc.Create(ctx, req)
	assert.NoError(t, err)
	_, err = svc.Update(ctx, g.ID, req)
	assert.True(t, apperr.Is(err, apperr.NotFound))
}
