package assignment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/db"
	"github.com/eduflow/eduflow-lms/internal/rbac"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	dbh, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	dbh.SetMaxOpenConns(1)
	if err := db.EnsureSchema(context.Background(), dbh, db.DriverSQLite); err != nil {
		t.Fatalf("ensure schema: %v", err)
	}
	t.Cleanup(func() { dbh.Close() })
	return dbh
}

func seed(t *testing.T, dbh *sql.DB) {
	t.Helper()
	_, err := dbh.Exec(
		`INSERT INTO users (id, email, password_hash, role, full_name, created_at) VALUES
		   ('t1','t1@example.com','x',$1,'Ada',0),
		   ('s1','s1@example.com','x',$2,'Linus',0)`,
		rbac.RoleTeacher, rbac.RoleStudent)
	if err != nil {
		t.Fatalf("seed users: %v", err)
	}
	if _, err := dbh.Exec(
		`INSERT INTO courses (id, title, teacher_id, created_at) VALUES ('c1','Algebra','t1',$1)`,
		time.Now().Unix()); err != nil {
		t.Fatalf("seed course: %v", err)
	}
}

func mustCreate(t *testing.T, store *SQLStore, a Assignment) Assignment {
	t.Helper()
	created, err := store.Create(context.Background(), "t1", a)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created
}

func TestSQLStore_CreateAssignment(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)

	created := mustCreate(t, store, Assignment{
		CourseID: "c1",
		Title:    "HW 1",
		MaxScore: 100,
		Attachments: []Attachment{
			{Name: "brief.pdf", URL: "https://example.com/brief.pdf"},
		},
	})
	if created.Status != StatusDraft {
		t.Errorf("status = %q, want it to default to draft", created.Status)
	}
	if created.TeacherID != "t1" || created.ID == "" {
		t.Errorf("created = %+v, want identity and teacher assigned", created)
	}

	got, err := store.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Attachments) != 1 || got.Attachments[0].Name != "brief.pdf" {
		t.Errorf("attachments = %+v, want brief.pdf", got.Attachments)
	}
}

func TestSQLStore_CreateAssignment_WrongCourse(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)

	_, err := store.Create(context.Background(), "t-other", Assignment{CourseID: "c1", Title: "HW"})
	if !errors.Is(err, apperr.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
}

func TestSQLStore_UpdateAssignment(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1", MaxScore: 100})

	created.Title = "HW 1 (revised)"
	created.Status = StatusPublished
	got, err := store.Update(context.Background(), "t1", created)
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != "HW 1 (revised)" || got.Status != StatusPublished {
		t.Errorf("updated = %+v", got)
	}

	if _, err := store.Update(context.Background(), "t-other", created); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("update by stranger = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_DeleteAssignment_Cascades(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1"})
	if _, err := store.CreateSubmission(context.Background(), Submission{
		AssignmentID: created.ID, StudentID: "s1", FilePath: "k", FileName: "essay.pdf",
	}); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	if err := store.Delete(context.Background(), "t1", created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	var n int
	if err := dbh.QueryRow(`SELECT COUNT(*) FROM assignment_submissions`).Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("%d submissions survived the assignment delete", n)
	}
}

func TestSQLStore_CreateSubmission(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1"})

	sub, err := store.CreateSubmission(context.Background(), Submission{
		AssignmentID:   created.ID,
		StudentID:      "s1",
		FilePath:       "submissions/x/essay.pdf",
		FileName:       "essay.pdf",
		FileSize:       1024,
		StudentComment: "done early",
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}
	if sub.Status != SubmissionSubmitted || sub.SubmittedAt == 0 {
		t.Errorf("sub = %+v, want submitted status and timestamp", sub)
	}
	if sub.StudentName != "Linus" {
		t.Errorf("student name = %q, want Linus", sub.StudentName)
	}
	if sub.Score != nil || sub.GradedAt != nil {
		t.Errorf("fresh submission must be ungraded: score=%v graded_at=%v", sub.Score, sub.GradedAt)
	}

	_, err = store.CreateSubmission(context.Background(), Submission{AssignmentID: "missing", StudentID: "s1"})
	if !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("submission to missing assignment = %v, want ErrNotFound", err)
	}
}

func TestSQLStore_Grade(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1", MaxScore: 100})
	sub, err := store.CreateSubmission(context.Background(), Submission{
		AssignmentID: created.ID, StudentID: "s1", FilePath: "k", FileName: "essay.pdf",
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	graded, err := store.Grade(context.Background(), "t1", sub.ID, 85, "solid work")
	if err != nil {
		t.Fatalf("Grade: %v", err)
	}
	if graded.Status != SubmissionChecked {
		t.Errorf("status = %q, want checked", graded.Status)
	}
	if graded.Score == nil || *graded.Score != 85 {
		t.Errorf("score = %v, want 85", graded.Score)
	}
	if graded.GradedAt == nil || *graded.GradedAt == 0 {
		t.Errorf("graded_at not stamped: %v", graded.GradedAt)
	}
	if graded.TeacherComment != "solid work" {
		t.Errorf("comment = %q", graded.TeacherComment)
	}
	if graded.CourseTeacherID != "t1" {
		t.Errorf("course teacher = %q, want t1", graded.CourseTeacherID)
	}
}

func TestSQLStore_Grade_WrongTeacher(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1"})
	sub, err := store.CreateSubmission(context.Background(), Submission{
		AssignmentID: created.ID, StudentID: "s1", FilePath: "k", FileName: "essay.pdf",
	})
	if err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	if _, err := store.Grade(context.Background(), "t-other", sub.ID, 85, ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("grade by stranger = %v, want ErrNotFound", err)
	}
	// And the row is untouched.
	got, err := store.GetSubmission(context.Background(), sub.ID)
	if err != nil {
		t.Fatalf("GetSubmission: %v", err)
	}
	if got.Status != SubmissionSubmitted || got.Score != nil {
		t.Errorf("submission changed by rejected grade: %+v", got)
	}
}

func TestSQLStore_ListForAssignment(t *testing.T) {
	dbh := openTestDB(t)
	store := NewSQLStore(dbh)
	seed(t, dbh)
	created := mustCreate(t, store, Assignment{CourseID: "c1", Title: "HW 1"})
	if _, err := store.CreateSubmission(context.Background(), Submission{
		AssignmentID: created.ID, StudentID: "s1", FilePath: "k", FileName: "essay.pdf",
	}); err != nil {
		t.Fatalf("CreateSubmission: %v", err)
	}

	got, err := store.ListForAssignment(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("ListForAssignment: %v", err)
	}
	if len(got) != 1 || got[0].StudentName != "Linus" {
		t.Errorf("got %+v, want one submission from Linus", got)
	}

	owns, err := store.OwnsAssignmentCourse(context.Background(), "t1", created.ID)
	if err != nil || !owns {
		t.Errorf("OwnsAssignmentCourse(t1) = %v, %v; want true", owns, err)
	}
	owns, err = store.OwnsAssignmentCourse(context.Background(), "t-other", created.ID)
	if err != nil || owns {
		t.Errorf("OwnsAssignmentCourse(stranger) = %v, %v; want false", owns, err)
	}
}
