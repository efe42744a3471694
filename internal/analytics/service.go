package analytics

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/assignment"
	"github.com/eduflow/eduflow-lms/internal/exam"
)

// Service loads course rows and hands them to the pure builders.
type Service struct {
	db    *sql.DB
	exams exam.Store
}

func NewService(db *sql.DB, exams exam.Store) *Service {
	return &Service{db: db, exams: exams}
}

func (s *Service) Dashboard(ctx context.Context, teacherID, courseID string) (Dashboard, error) {
	title, err := s.ownedCourseTitle(ctx, teacherID, courseID)
	if err != nil {
		return Dashboard{}, err
	}
	assignments, subs, err := s.loadCourseWork(ctx, courseID)
	if err != nil {
		return Dashboard{}, err
	}
	return BuildDashboard(courseID, title, assignments, submittingStudents(subs), subs), nil
}

func (s *Service) Gradebook(ctx context.Context, teacherID, courseID string) (Gradebook, error) {
	title, err := s.ownedCourseTitle(ctx, teacherID, courseID)
	if err != nil {
		return Gradebook{}, err
	}
	assignments, subs, err := s.loadCourseWork(ctx, courseID)
	if err != nil {
		return Gradebook{}, err
	}
	return BuildGradebook(courseID, title, assignments, submittingStudents(subs), subs), nil
}

func (s *Service) Timeline(ctx context.Context, teacherID, courseID string) ([]TimelineEntry, error) {
	if _, err := s.ownedCourseTitle(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	_, subs, err := s.loadCourseWork(ctx, courseID)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(subs), nil
}

func (s *Service) TestResults(ctx context.Context, teacherID, courseID string) ([]exam.ResultSummary, error) {
	if _, err := s.ownedCourseTitle(ctx, teacherID, courseID); err != nil {
		return nil, err
	}
	return s.exams.ListCourseResults(ctx, courseID)
}

func (s *Service) ownedCourseTitle(ctx context.Context, teacherID, courseID string) (string, error) {
	var title string
	err := s.db.QueryRowContext(ctx,
		`SELECT title FROM courses WHERE id=$1 AND teacher_id=$2`, courseID, teacherID).Scan(&title)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperr.Forbiddenf("course %s is not owned by caller", courseID)
	}
	return title, err
}

func (s *Service) loadCourseWork(ctx context.Context, courseID string) ([]assignment.Assignment, []assignment.Submission, error) {
	arows, err := s.db.QueryContext(ctx,
		`SELECT id, title, max_score FROM assignments WHERE course_id=$1 ORDER BY created_at`, courseID)
	if err != nil {
		return nil, nil, err
	}
	defer arows.Close()

	assignments := []assignment.Assignment{}
	for arows.Next() {
		var a assignment.Assignment
		if err := arows.Scan(&a.ID, &a.Title, &a.MaxScore); err != nil {
			return nil, nil, err
		}
		a.CourseID = courseID
		assignments = append(assignments, a)
	}
	if err := arows.Err(); err != nil {
		return nil, nil, err
	}

	srows, err := s.db.QueryContext(ctx,
		`SELECT s.id, s.assignment_id, s.student_id, COALESCE(u.full_name,'Unknown'),
		        s.score, s.status, s.submitted_at
		   FROM assignment_submissions s
		   JOIN assignments a ON a.id = s.assignment_id
		   LEFT JOIN users u ON u.id = s.student_id
		  WHERE a.course_id=$1`, courseID)
	if err != nil {
		return nil, nil, err
	}
	defer srows.Close()

	subs := []assignment.Submission{}
	for srows.Next() {
		var sub assignment.Submission
		if err := srows.Scan(&sub.ID, &sub.AssignmentID, &sub.StudentID, &sub.StudentName,
			&sub.Score, &sub.Status, &sub.SubmittedAt); err != nil {
			return nil, nil, err
		}
		subs = append(subs, sub)
	}
	return assignments, subs, srows.Err()
}

// submittingStudents derives the course roster the way the aggregates
// define it: every distinct student with at least one submission.
func submittingStudents(subs []assignment.Submission) []StudentRef {
	seen := map[string]bool{}
	out := []StudentRef{}
	for _, s := range subs {
		if seen[s.StudentID] {
			continue
		}
		seen[s.StudentID] = true
		out = append(out, StudentRef{ID: s.StudentID, Name: s.StudentName})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
