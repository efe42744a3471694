package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/assignment"
)

type assignmentReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	DueDate     string `json:"due_date"`
	MaxScore    int    `json:"max_score" validate:"min=0,max=1000"`
	CourseID    string `json:"course_id" validate:"required"`
	Status      string `json:"status" validate:"omitempty,oneof=draft published"`
	Attachments []struct {
		Name string `json:"name" validate:"required,max=255"`
		URL  string `json:"url" validate:"required"`
	} `json:"attachments" validate:"dive"`
}

// GET /assignments — the caller's own.
func ListAssignmentsHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		out, err := store.ListForTeacher(r.Context(), sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// POST /assignments
func CreateAssignmentHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req assignmentReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		a := assignment.Assignment{
			CourseID:    req.CourseID,
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			MaxScore:    req.MaxScore,
		}
		for _, at := range req.Attachments {
			a.Attachments = append(a.Attachments, assignment.Attachment{Name: at.Name, URL: at.URL})
		}
		created, err := store.Create(r.Context(), sub, a)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, created)
	}
}

// PUT /assignments/{assignmentID}
func UpdateAssignmentHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req assignmentReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		status := req.Status
		if status == "" {
			status = assignment.StatusDraft
		}
		if !assignment.ValidStatus(status) {
			writeErr(w, apperr.Validationf("invalid status %q", status))
			return
		}
		updated, err := store.Update(r.Context(), sub, assignment.Assignment{
			ID:          chi.URLParam(r, "assignmentID"),
			Title:       req.Title,
			Description: req.Description,
			DueDate:     req.DueDate,
			MaxScore:    req.MaxScore,
			Status:      status,
		})
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, updated)
	}
}

// DELETE /assignments/{assignmentID}
func DeleteAssignmentHandler(store *assignment.SQLStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		if err := store.Delete(r.Context(), sub, chi.URLParam(r, "assignmentID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
