package academic_test

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"afterschool/internal/academic"
	"afterschool/internal/apperr"
	"afterschool/internal/store/storetest"
)

func score(v int16) *int16 { return &v }

type slotScores struct {
	Semester, ExamType int16
	Math               int16
}

func summarize(v academic.View) []slotScores {
	var out []slotScores
	for _, e := range v.Exams {
		s := slotScores{Semester: e.Semester, ExamType: e.ExamType}
		if e.MathScore != nil {
			s.Math = *e.MathScore
		}
		out = append(out, s)
	}
	return out
}

func TestUpsertMergesExamsBySlot(t *testing.T) {
	db := storetest.Open(t)
	svc := academic.NewService(db, zap.NewNop())
	ctx := context.Background()
	student := storetest.SeedStudent(t, db, "Stu")
	book := "Math 5A"

	v, err := svc.Upsert(ctx, student, academic.UpsertRequest{
		YearInfo: academic.YearInfo{AcademicYear: 2024, MathBook: &book},
		Exams: []academic.Exam{
			{Semester: 1, ExamType: 1, MathScore: score(80)},
			{Semester: 2, ExamType: 1, MathScore: score(85)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Stu", v.StudentName)
	assert.Equal(t, "Math 5A", *v.MathBook)
	semester2 := v.Exams[1].ID

	v, err = svc.Upsert(ctx, student, academic.UpsertRequest{
		YearInfo: academic.YearInfo{AcademicYear: 2024},
		Exams:    []academic.Exam{{Semester: 1, ExamType: 1, MathScore: score(95)}},
	})
	require.NoError(t, err)
	assert.Nil(t, v.MathBook, "year fields are overwritten")

	want := []slotScores{{1, 1, 95}, {2, 1, 85}}
	if diff := cmp.Diff(want, summarize(v)); diff != "" {
		t.Fatalf("exams mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, semester2, v.Exams[1].ID, "omitted slot is left untouched")
	assert.Equal(t, 1, storetest.Count(t, db, "academic_years", ""))
	assert.Equal(t, 2, storetest.Count(t, db, "exam_records", ""))
}

func TestUpsertValidation(t *testing.T) {
	db := storetest.Open(t)
	svc := academic.NewService(db, zap.NewNop())
	student := storetest.SeedStudent(t, db, "Stu")

	tests := map[string]academic.UpsertRequest{
		"duplicate slot": {
			YearInfo: academic.YearInfo{AcademicYear: 2024},
			Exams:    []academic.Exam{{Semester: 1, ExamType: 1}, {Semester: 1, ExamType: 1}},
		},
		"bad semester": {
			YearInfo: academic.YearInfo{AcademicYear: 2024},
			Exams:    []academic.Exam{{Semester: 3, ExamType: 1}},
		},
		"score out of range": {
			YearInfo: academic.YearInfo{AcademicYear: 2024},
			Exams:    []academic.Exam{{Semester: 1, ExamType: 2, EnglishScore: score(101)}},
		},
		"too many exams": {
			YearInfo: academic.YearInfo{AcademicYear: 2024},
			Exams: []academic.Exam{
				{Semester: 1, ExamType: 1}, {Semester: 1, ExamType: 2},
				{Semester: 2, ExamType: 1}, {Semester: 2, ExamType: 2}, {Semester: 2, ExamType: 2},
			},
		},
		"missing year": {},
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Upsert(context.Background(), student, req)
			assert.True(t, apperr.Is(err, apperr.Validation), "got %v", err)
		})
	}
	assert.Equal(t, 0, storetest.Count(t, db, "academic_years", ""))
}

func TestUpsertUnknownStudent(t *testing.T) {
	db := storetest.Open(t)
	svc := academic.NewService(db, zap.NewNop())
	notStudent := storetest.SeedMember(t, db, "Teacher only")

	for _, id := range []uuid.UUID{uuid.New(), notStudent} {
		_, err := svc.Upsert(context.Background(), id, academic.UpsertRequest{YearInfo: academic.YearInfo{AcademicYear: 2024}})
		assert.True(t, apperr.Is(err, apperr.NotFound))
	}
}

func TestListGetDelete(t *testing.T) {
	db := storetest.Open(t)
	svc := academic.NewService(db, zap.NewNop())
	ctx := context.Background()
	amy := storetest.SeedStudent(t, db, "Amy")
	bob := storetest.SeedStudent(t, db, "Bob")

	for _, id := range []uuid.UUID{amy, bob} {
		_, err := svc.Upsert(ctx, id, academic.UpsertRequest{YearInfo: academic.YearInfo{AcademicYear: 2023}})
		require.NoError(t, err)
	}
	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Amy", list[0].StudentName)
	assert.Empty(t, list[0].Exams)

	require.NoError(t, svc.Delete(ctx, amy))
	_, err = svc.Get(ctx, amy, 2023)
	assert.True(t, apperr.Is(err, apperr.NotFound))
	assert.True(t, apperr.Is(svc.Delete(ctx, amy), apperr.NotFound))

	got, err := svc.Get(ctx, bob, 2023)
	require.NoError(t, err)
	assert.Equal(t, bob, got.StudentID)
}
