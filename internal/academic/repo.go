package academic

import (
	"context"

	"github.com/google/uuid"

	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// Table is the soft-delete view of academic_years.
var Table = softdelete.Table{
	Name: "academic_years",
	Columns: []string{
		"id", "student_id", "academic_year", "chinese_book", "english_book", "math_book",
		"science_book", "social_studies_book", "comment", "updated_at",
	},
}

const examColumns = "e.id, e.academic_year_id, e.semester, e.exam_type, e.chinese_score, e.english_score, e.math_score, e.science_score, e.social_studies_score, e.updated_at"

// Repository persists academic years and exams.
type Repository struct{}

func (v *View) scanDest() []any {
	return []any{
		&v.ID, &v.StudentID, &v.AcademicYear, &v.ChineseBook, &v.EnglishBook, &v.MathBook,
		&v.ScienceBook, &v.SocialStudiesBook, &v.Comment, &v.UpdatedAt,
	}
}

func (r *Repository) findYear(ctx context.Context, q store.Queryer, studentID uuid.UUID, year int16) (*View, error) {
	var v View
	if err := Table.FindOne(ctx, q, "student_id = $1 AND academic_year = $2", studentID, year).Scan(v.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *Repository) insertYear(ctx context.Context, q store.Queryer, v View) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO academic_years (id, student_id, academic_year, chinese_book, english_book, math_book,
			science_book, social_studies_book, comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, v.ID, v.StudentID, v.AcademicYear, v.ChineseBook, v.EnglishBook, v.MathBook,
		v.ScienceBook, v.SocialStudiesBook, v.Comment, v.UpdatedAt)
	return err
}

func (r *Repository) updateYear(ctx context.Context, q store.Queryer, v View) error {
	_, err := q.ExecContext(ctx, `
		UPDATE academic_years
		SET chinese_book = $2, english_book = $3, math_book = $4, science_book = $5,
			social_studies_book = $6, comment = $7, updated_at = $8
		WHERE id = $1 AND deleted_at IS NULL
	`, v.ID, v.ChineseBook, v.EnglishBook, v.MathBook, v.ScienceBook, v.SocialStudiesBook, v.Comment, v.UpdatedAt)
	return err
}

// upsertExam overwrites the scores of an existing slot or inserts it.
func (r *Repository) upsertExam(ctx context.Context, q store.Queryer, yearID uuid.UUID, e ExamView) error {
	res, err := q.ExecContext(ctx, `
		UPDATE exam_records
		SET chinese_score = $4, english_score = $5, math_score = $6, science_score = $7,
			social_studies_score = $8, updated_at = $9
		WHERE academic_year_id = $1 AND semester = $2 AND exam_type = $3
	`, yearID, e.Semester, e.ExamType, e.ChineseScore, e.EnglishScore, e.MathScore, e.ScienceScore,
		e.SocialStudiesScore, e.UpdatedAt)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO exam_records (id, academic_year_id, semester, exam_type, chinese_score, english_score,
			math_score, science_score, social_studies_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
	`, e.ID, yearID, e.Semester, e.ExamType, e.ChineseScore, e.EnglishScore, e.MathScore,
		e.ScienceScore, e.SocialStudiesScore, e.UpdatedAt)
	return err
}

// views loads live years joined with their live student's name, plus exams.
func (r *Repository) views(ctx context.Context, q store.Queryer, where string, args ...any) ([]View, error) {
	query := "SELECT " + Table.ColumnsAs("y") + ", m.name FROM academic_years y JOIN members m ON m.id = y.student_id" +
		" WHERE " + Table.LiveAs("y") + " AND m.deleted_at IS NULL"
	if where != "" {
		query += " AND " + where
	}
	rows, err := q.QueryContext(ctx, query+" ORDER BY m.name, y.academic_year", args...)
	if err != nil {
		return nil, err
	}
	var out []View
	index := map[uuid.UUID]int{}
	for rows.Next() {
		var v View
		if err := rows.Scan(append(v.scanDest(), &v.StudentName)...); err != nil {
			rows.Close()
			return nil, err
		}
		v.Exams = []ExamView{}
		index[v.ID] = len(out)
		out = append(out, v)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	ids := make([]any, 0, len(out))
	for _, v := range out {
		ids = append(ids, v.ID)
	}
	erows, err := q.QueryContext(ctx, "SELECT "+examColumns+" FROM exam_records e WHERE e.academic_year_id IN ("+
		store.Placeholders(1, len(ids))+") ORDER BY e.semester, e.exam_type", ids...)
	if err != nil {
		return nil, err
	}
	defer erows.Close()
	for erows.Next() {
		var e ExamView
		var yearID uuid.UUID
		if err := erows.Scan(&e.ID, &yearID, &e.Semester, &e.ExamType, &e.ChineseScore, &e.EnglishScore,
			&e.MathScore, &e.ScienceScore, &e.SocialStudiesScore, &e.UpdatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[yearID]; ok {
			out[i].Exams = append(out[i].Exams, e)
		}
	}
	return out, erows.Err()
}
