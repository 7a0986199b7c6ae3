package grades

import (
	"context"

	"github.com/google/uuid"

	"afterschool/internal/softdelete"
	"afterschool/internal/store"
)

// Table is the soft-delete view of grade_records.
var Table = softdelete.Table{
	Name: "grade_records",
	Columns: []string{
		"id", "student_id", "academic_year", "semester", "exam_type",
		"chinese_book", "english_book", "math_book", "science_book", "social_studies_book",
		"chinese_score", "english_score", "math_score", "science_score", "social_studies_score",
		"comment", "updated_at",
	},
}

func (g *Grade) scanDest() []any {
	return []any{
		&g.ID, &g.StudentID, &g.AcademicYear, &g.Semester, &g.ExamType,
		&g.ChineseBook, &g.EnglishBook, &g.MathBook, &g.ScienceBook, &g.SocialStudiesBook,
		&g.ChineseScore, &g.EnglishScore, &g.MathScore, &g.ScienceScore, &g.SocialStudiesScore,
		&g.Comment, &g.UpdatedAt,
	}
}

// Repository persists grades.
type Repository struct{}

func (r *Repository) slotTaken(ctx context.Context, q store.Queryer, g Grade) (bool, error) {
	return Table.Exists(ctx, q, "student_id = $1 AND academic_year = $2 AND semester = $3 AND id <> $4",
		g.StudentID, g.AcademicYear, g.Semester, g.ID)
}

func (r *Repository) find(ctx context.Context, q store.Queryer, id uuid.UUID) (*Grade, error) {
	var g Grade
	if err := Table.FindOne(ctx, q, "id = $1", id).Scan(g.scanDest()...); err != nil {
		if store.NoRows(err) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *Repository) insert(ctx context.Context, q store.Queryer, g Grade) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO grade_records (id, student_id, academic_year, semester, exam_type,
			chinese_book, english_book, math_book, science_book, social_studies_book,
			chinese_score, english_score, math_score, science_score, social_studies_score,
			comment, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $17)
	`, g.ID, g.StudentID, g.AcademicYear, g.Semester, g.ExamType,
		g.ChineseBook, g.EnglishBook, g.MathBook, g.ScienceBook, g.SocialStudiesBook,
		g.ChineseScore, g.EnglishScore, g.MathScore, g.ScienceScore, g.SocialStudiesScore,
		g.Comment, g.UpdatedAt)
	return err
}

func (r *Repository) update(ctx context.Context, q store.Queryer, g Grade) error {
	_, err := q.ExecContext(ctx, `
		UPDATE grade_records
		SET academic_year = $2, semester = $3, exam_type = $4,
			chinese_book = $5, english_book = $6, math_book = $7, science_book = $8, social_studies_book = $9,
			chinese_score = $10, english_score = $11, math_score = $12, science_score = $13,
			social_studies_score = $14, comment = $15, updated_at = $16
		WHERE id = $1 AND deleted_at IS NULL
	`, g.ID, g.AcademicYear, g.Semester, g.ExamType,
		g.ChineseBook, g.EnglishBook, g.MathBook, g.ScienceBook, g.SocialStudiesBook,
		g.ChineseScore, g.EnglishScore, g.MathScore, g.ScienceScore, g.SocialStudiesScore,
		g.Comment, g.UpdatedAt)
	return err
}

func (r *Repository) list(ctx context.Context, q store.Queryer) ([]Grade, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+Table.ColumnsAs("g")+", m.name FROM grade_records g"+
		" JOIN members m ON m.id = g.student_id WHERE "+Table.LiveAs("g")+" AND m.deleted_at IS NULL"+
		" ORDER BY g.academic_year DESC, g.semester DESC, m.name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []Grade{}
	for rows.Next() {
		var g Grade
		if err := rows.Scan(append(g.scanDest(), &g.Name)...); err != nil {
			return nil, err
		}
		res = append(res, g)
	}
	return res, rows.Err()
}
