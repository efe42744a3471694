package http

import (
	"fmt"
	"io"
	"path/filepath"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/assignment"
	"github.com/eduflow/eduflow-lms/internal/rbac"
	"github.com/eduflow/eduflow-lms/internal/storage"
)

// GET /assignments/{assignmentID}/submissions — teacher must own the course.
func ListSubmissionsHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		assignmentID := chi.URLParam(r, "assignmentID")

		owns, err := store.OwnsAssignmentCourse(r.Context(), sub, assignmentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !owns {
			writeErr(w, apperr.ErrForbidden)
			return
		}
		out, err := store.ListForAssignment(r.Context(), assignmentID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// POST /submissions — multipart: file, assignment_id, comment.
func CreateSubmissionHandler(store *assignment.SQLStore, blobs storage.BlobStore, maxUploadBytes int64) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)

		r.Body = nethttp.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeErr(w, apperr.Validationf("file too large or bad multipart body"))
			return
		}
		assignmentID := r.FormValue("assignment_id")
		if assignmentID == "" {
			writeErr(w, apperr.Validationf("assignment_id required"))
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeErr(w, apperr.Validationf("file required"))
			return
		}
		defer f.Close()

		key := fmt.Sprintf("submissions/%s/%s%s", assignmentID, uuid.NewString(), filepath.Ext(hdr.Filename))
		size, err := blobs.Put(key, f)
		if err != nil {
			writeErr(w, err)
			return
		}

		created, err := store.CreateSubmission(r.Context(), assignment.Submission{
			AssignmentID:   assignmentID,
			StudentID:      sub,
			FilePath:       key,
			FileName:       hdr.Filename,
			FileSize:       size,
			StudentComment: r.FormValue("comment"),
		})
		if err != nil {
			// the file is orphaned otherwise
			_ = blobs.Delete(key)
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, created)
	}
}

type gradeReq struct {
	Score          int    `json:"score" validate:"min=0,max=1000"`
	TeacherComment string `json:"teacher_comment" validate:"max=1000"`
}

// PUT /submissions/{submissionID}/grade
func GradeSubmissionHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req gradeReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		graded, err := store.Grade(r.Context(), sub, chi.URLParam(r, "submissionID"), req.Score, req.TeacherComment)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, graded)
	}
}

// GET /submissions/{submissionID}/download — a student may fetch their own
// file, the owning teacher anyone's.
func DownloadSubmissionHandler(store *assignment.SQLStore, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, role := caller(r)
		s, err := store.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		if role == rbac.RoleStudent && s.StudentID != sub {
			writeErr(w, apperr.ErrForbidden)
			return
		}
		if role == rbac.RoleTeacher && s.CourseTeacherID != sub {
			writeErr(w, apperr.ErrForbidden)
			return
		}

		rc, err := blobs.Get(s.FilePath)
		if err != nil {
			writeErr(w, apperr.NotFoundf("submission file"))
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", s.FileName))
		_, _ = io.Copy(w, rc)
	}
}
