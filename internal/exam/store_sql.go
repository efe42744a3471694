package exam

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/eduflow/eduflow-lms/internal/apperr"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) OwnsCourse(ctx context.Context, teacherID, courseID string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE id=$1 AND teacher_id=$2)`,
		courseID, teacherID).Scan(&ok)
	return ok, err
}

func (s *SQLStore) CreateTest(ctx context.Context, teacherID string, t Test) (Test, error) {
	owns, err := s.OwnsCourse(ctx, teacherID, t.CourseID)
	if err != nil {
		return Test{}, err
	}
	if !owns {
		return Test{}, apperr.Forbiddenf("course %s is not owned by caller", t.CourseID)
	}

	t.ID = uuid.NewString()
	t.TeacherID = teacherID
	t.CreatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Test{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO tests (id, course_id, teacher_id, title, description, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		t.ID, t.CourseID, t.TeacherID, t.Title, t.Description, t.CreatedAt)
	if err != nil {
		return Test{}, err
	}

	for i := range t.Questions {
		q := &t.Questions[i]
		q.ID = uuid.NewString()
		q.Order = i
		_, err = tx.ExecContext(ctx,
			`INSERT INTO test_questions (id, test_id, text, ord) VALUES ($1,$2,$3,$4)`,
			q.ID, t.ID, q.Text, q.Order)
		if err != nil {
			return Test{}, err
		}
		for j := range q.Options {
			o := &q.Options[j]
			o.ID = uuid.NewString()
			o.Order = j
			_, err = tx.ExecContext(ctx,
				`INSERT INTO test_options (id, question_id, text, is_correct, ord) VALUES ($1,$2,$3,$4,$5)`,
				o.ID, q.ID, o.Text, o.IsCorrect, o.Order)
			if err != nil {
				return Test{}, err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) GetTest(ctx context.Context, id string) (Test, error) {
	var t Test
	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, teacher_id, title, description, created_at FROM tests WHERE id=$1`, id).
		Scan(&t.ID, &t.CourseID, &t.TeacherID, &t.Title, &t.Description, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Test{}, apperr.NotFoundf("test %s", id)
	}
	if err != nil {
		return Test{}, err
	}
	if t.Questions, err = s.loadQuestions(ctx, t.ID); err != nil {
		return Test{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTestsForCourse(ctx context.Context, courseID string) ([]Test, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, teacher_id, title, description, created_at
		   FROM tests WHERE course_id=$1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Test{}
	for rows.Next() {
		var t Test
		if err := rows.Scan(&t.ID, &t.CourseID, &t.TeacherID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Questions, err = s.loadQuestions(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) loadQuestions(ctx context.Context, testID string) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, ord FROM test_questions WHERE test_id=$1 ORDER BY ord`, testID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	qs := []Question{}
	idx := map[string]int{}
	for rows.Next() {
		var q Question
		if err := rows.Scan(&q.ID, &q.Text, &q.Order); err != nil {
			return nil, err
		}
		idx[q.ID] = len(qs)
		qs = append(qs, q)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orows, err := s.db.QueryContext(ctx,
		`SELECT o.id, o.question_id, o.text, o.is_correct, o.ord
		   FROM test_options o
		   JOIN test_questions q ON q.id = o.question_id
		  WHERE q.test_id=$1 ORDER BY o.ord`, testID)
	if err != nil {
		return nil, err
	}
	defer orows.Close()

	for orows.Next() {
		var o Option
		var qid string
		if err := orows.Scan(&o.ID, &qid, &o.Text, &o.IsCorrect, &o.Order); err != nil {
			return nil, err
		}
		if i, ok := idx[qid]; ok {
			qs[i].Options = append(qs[i].Options, o)
		}
	}
	return qs, orows.Err()
}

func (s *SQLStore) DeleteTest(ctx context.Context, teacherID, testID string) error {
	// FK cascades take questions, options, results and answers with it.
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM tests WHERE id=$1 AND teacher_id=$2`, testID, teacherID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("test %s owned by caller", testID)
	}
	return nil
}

func (s *SQLStore) SubmitTest(ctx context.Context, studentID, testID string, answers []Answer) (ResultSummary, error) {
	t, err := s.GetTest(ctx, testID)
	if err != nil {
		return ResultSummary{}, err
	}

	var attempted bool
	err = s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM test_results WHERE test_id=$1 AND student_id=$2)`,
		testID, studentID).Scan(&attempted)
	if err != nil {
		return ResultSummary{}, err
	}
	if attempted {
		return ResultSummary{}, apperr.ErrAlreadyAttempted
	}

	score, recorded := scoreAnswers(t, answers)
	result := TestResult{
		ID:             uuid.NewString(),
		TestID:         testID,
		StudentID:      studentID,
		Score:          score,
		TotalQuestions: len(t.Questions),
		CompletedAt:    time.Now().Unix(),
		Answers:        recorded,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ResultSummary{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO test_results (id, test_id, student_id, score, total_questions, completed_at)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		result.ID, result.TestID, result.StudentID, result.Score, result.TotalQuestions, result.CompletedAt)
	if err != nil {
		// Two concurrent submits can both pass the pre-check; the unique
		// index on (test_id, student_id) decides, the loser gets a clean
		// conflict instead of a second result.
		if isUniqueViolation(err) {
			err = apperr.ErrAlreadyAttempted
		}
		return ResultSummary{}, err
	}
	for _, a := range result.Answers {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO student_answers (id, result_id, question_id, option_id, is_correct)
			 VALUES ($1,$2,$3,$4,$5)`,
			a.ID, result.ID, a.QuestionID, a.SelectedOptionID, a.IsCorrect)
		if err != nil {
			return ResultSummary{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return ResultSummary{}, err
	}

	name := s.studentName(ctx, studentID)
	return ResultSummary{
		ID:             result.ID,
		StudentName:    name,
		TestID:         result.TestID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage(),
		CompletedAt:    result.CompletedAt,
	}, nil
}

func (s *SQLStore) ListResults(ctx context.Context, testID string) ([]ResultSummary, error) {
	return s.listResults(ctx,
		`SELECT r.id, COALESCE(u.full_name, 'Unknown'), r.test_id, r.score, r.total_questions, r.completed_at
		   FROM test_results r
		   LEFT JOIN users u ON u.id = r.student_id
		  WHERE r.test_id=$1 ORDER BY r.completed_at`, testID)
}

func (s *SQLStore) ListCourseResults(ctx context.Context, courseID string) ([]ResultSummary, error) {
	return s.listResults(ctx,
		`SELECT r.id, COALESCE(u.full_name, 'Unknown'), r.test_id, r.score, r.total_questions, r.completed_at
		   FROM test_results r
		   JOIN tests t ON t.id = r.test_id
		   LEFT JOIN users u ON u.id = r.student_id
		  WHERE t.course_id=$1 ORDER BY r.completed_at`, courseID)
}

func (s *SQLStore) listResults(ctx context.Context, query string, arg any) ([]ResultSummary, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ResultSummary{}
	for rows.Next() {
		var r ResultSummary
		if err := rows.Scan(&r.ID, &r.StudentName, &r.TestID, &r.Score, &r.TotalQuestions, &r.CompletedAt); err != nil {
			return nil, err
		}
		r.Percentage = percentage(r.Score, r.TotalQuestions)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) studentName(ctx context.Context, studentID string) string {
	var name string
	err := s.db.QueryRowContext(ctx, `SELECT full_name FROM users WHERE id=$1`, studentID).Scan(&name)
	if err != nil || name == "" {
		return "Unknown"
	}
	return name
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite
		strings.Contains(msg, "duplicate key") // postgres
}
