package assignment

import (
	"context"
	"database/sql"
	"errors"
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

func (s *SQLStore) Create(ctx context.Context, teacherID string, a Assignment) (Assignment, error) {
	var owns bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM courses WHERE id=$1 AND teacher_id=$2)`,
		a.CourseID, teacherID).Scan(&owns)
	if err != nil {
		return Assignment{}, err
	}
	if !owns {
		return Assignment{}, apperr.Forbiddenf("course %s is not owned by caller", a.CourseID)
	}

	a.ID = uuid.NewString()
	a.TeacherID = teacherID
	if a.Status == "" {
		a.Status = StatusDraft
	}
	a.CreatedAt = time.Now().Unix()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Assignment{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO assignments (id, course_id, teacher_id, title, description, due_date, status, max_score, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		a.ID, a.CourseID, a.TeacherID, a.Title, a.Description, a.DueDate, a.Status, a.MaxScore, a.CreatedAt)
	if err != nil {
		return Assignment{}, err
	}
	for i := range a.Attachments {
		at := &a.Attachments[i]
		at.ID = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			`INSERT INTO assignment_attachments (id, assignment_id, name, url) VALUES ($1,$2,$3,$4)`,
			at.ID, a.ID, at.Name, at.URL)
		if err != nil {
			return Assignment{}, err
		}
	}
	if err = tx.Commit(); err != nil {
		return Assignment{}, err
	}
	return a, nil
}

func (s *SQLStore) Update(ctx context.Context, teacherID string, a Assignment) (Assignment, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assignments SET title=$1, description=$2, due_date=$3, max_score=$4, status=$5
		  WHERE id=$6 AND teacher_id=$7`,
		a.Title, a.Description, a.DueDate, a.MaxScore, a.Status, a.ID, teacherID)
	if err != nil {
		return Assignment{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Assignment{}, err
	}
	if n == 0 {
		return Assignment{}, apperr.NotFoundf("assignment %s owned by caller", a.ID)
	}
	return s.Get(ctx, a.ID)
}

func (s *SQLStore) Delete(ctx context.Context, teacherID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM assignments WHERE id=$1 AND teacher_id=$2`, id, teacherID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("assignment %s owned by caller", id)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Assignment, error) {
	var a Assignment
	err := s.db.QueryRowContext(ctx,
		`SELECT id, course_id, teacher_id, title, description, due_date, status, max_score, created_at
		   FROM assignments WHERE id=$1`, id).
		Scan(&a.ID, &a.CourseID, &a.TeacherID, &a.Title, &a.Description, &a.DueDate, &a.Status, &a.MaxScore, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Assignment{}, apperr.NotFoundf("assignment %s", id)
	}
	if err != nil {
		return Assignment{}, err
	}
	a.Attachments, err = s.loadAttachments(ctx, a.ID)
	return a, err
}

func (s *SQLStore) ListForTeacher(ctx context.Context, teacherID string) ([]Assignment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, course_id, teacher_id, title, description, due_date, status, max_score, created_at
		   FROM assignments WHERE teacher_id=$1 ORDER BY created_at`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Assignment{}
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.CourseID, &a.TeacherID, &a.Title, &a.Description, &a.DueDate, &a.Status, &a.MaxScore, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		if out[i].Attachments, err = s.loadAttachments(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLStore) loadAttachments(ctx context.Context, assignmentID string) ([]Attachment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, url FROM assignment_attachments WHERE assignment_id=$1`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Attachment{}
	for rows.Next() {
		var at Attachment
		if err := rows.Scan(&at.ID, &at.Name, &at.URL); err != nil {
			return nil, err
		}
		out = append(out, at)
	}
	return out, rows.Err()
}

// OwnsAssignmentCourse reports whether the teacher owns the course the
// assignment belongs to.
func (s *SQLStore) OwnsAssignmentCourse(ctx context.Context, teacherID, assignmentID string) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(
		   SELECT 1 FROM assignments a JOIN courses c ON c.id = a.course_id
		    WHERE a.id=$1 AND c.teacher_id=$2)`,
		assignmentID, teacherID).Scan(&ok)
	return ok, err
}

func (s *SQLStore) CreateSubmission(ctx context.Context, sub Submission) (Submission, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM assignments WHERE id=$1)`, sub.AssignmentID).Scan(&exists)
	if err != nil {
		return Submission{}, err
	}
	if !exists {
		return Submission{}, apperr.NotFoundf("assignment %s", sub.AssignmentID)
	}

	sub.ID = uuid.NewString()
	sub.Status = SubmissionSubmitted
	sub.SubmittedAt = time.Now().Unix()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assignment_submissions
		   (id, assignment_id, student_id, file_path, file_name, file_size, student_comment, status, submitted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		sub.ID, sub.AssignmentID, sub.StudentID, sub.FilePath, sub.FileName, sub.FileSize,
		sub.StudentComment, sub.Status, sub.SubmittedAt)
	if err != nil {
		return Submission{}, err
	}
	sub.StudentName = s.userName(ctx, sub.StudentID)
	return sub, nil
}

// Grade marks a submission checked and stamps the grading time. Score and
// teacher comment only carry meaning from that point on.
func (s *SQLStore) Grade(ctx context.Context, teacherID, submissionID string, score int, comment string) (Submission, error) {
	now := time.Now().Unix()
	res, err := s.db.ExecContext(ctx,
		`UPDATE assignment_submissions SET score=$1, teacher_comment=$2, status=$3, graded_at=$4
		  WHERE id=$5 AND assignment_id IN (
		        SELECT a.id FROM assignments a JOIN courses c ON c.id = a.course_id WHERE c.teacher_id=$6)`,
		score, comment, SubmissionChecked, now, submissionID, teacherID)
	if err != nil {
		return Submission{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Submission{}, err
	}
	if n == 0 {
		return Submission{}, apperr.NotFoundf("submission %s owned by caller", submissionID)
	}
	return s.GetSubmission(ctx, submissionID)
}

func (s *SQLStore) GetSubmission(ctx context.Context, id string) (Submission, error) {
	var sub Submission
	err := s.db.QueryRowContext(ctx,
		`SELECT s.id, s.assignment_id, s.student_id, COALESCE(u.full_name,'Unknown'),
		        s.file_path, s.file_name, s.file_size, s.student_comment, s.teacher_comment,
		        s.score, s.status, s.submitted_at, s.graded_at, c.teacher_id
		   FROM assignment_submissions s
		   JOIN assignments a ON a.id = s.assignment_id
		   JOIN courses c ON c.id = a.course_id
		   LEFT JOIN users u ON u.id = s.student_id
		  WHERE s.id=$1`, id).
		Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
			&sub.FilePath, &sub.FileName, &sub.FileSize, &sub.StudentComment, &sub.TeacherComment,
			&sub.Score, &sub.Status, &sub.SubmittedAt, &sub.GradedAt, &sub.CourseTeacherID)
	if errors.Is(err, sql.ErrNoRows) {
		return Submission{}, apperr.NotFoundf("submission %s", id)
	}
	return sub, err
}

func (s *SQLStore) ListForAssignment(ctx context.Context, assignmentID string) ([]Submission, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.assignment_id, s.student_id, COALESCE(u.full_name,'Unknown'),
		        s.file_path, s.file_name, s.file_size, s.student_comment, s.teacher_comment,
		        s.score, s.status, s.submitted_at, s.graded_at
		   FROM assignment_submissions s
		   LEFT JOIN users u ON u.id = s.student_id
		  WHERE s.assignment_id=$1 ORDER BY s.submitted_at`, assignmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Submission{}
	for rows.Next() {
		var sub Submission
		if err := rows.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
			&sub.FilePath, &sub.FileName, &sub.FileSize, &sub.StudentComment, &sub.TeacherComment,
			&sub.Score, &sub.Status, &sub.SubmittedAt, &sub.GradedAt); err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

func (s *SQLStore) userName(ctx context.Context, id string) string {
	var name string
	if err := s.db.QueryRowContext(ctx, `SELECT full_name FROM users WHERE id=$1`, id).Scan(&name); err != nil || name == "" {
		return "Unknown"
	}
	return name
}
