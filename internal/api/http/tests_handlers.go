package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/exam"
	"github.com/eduflow/eduflow-lms/internal/rbac"
)

type createTestReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
	CourseID    string `json:"course_id" validate:"required"`
	Questions   []struct {
		Text    string `json:"text" validate:"required,max=500"`
		Options []struct {
			Text      string `json:"text" validate:"required,max=300"`
			IsCorrect bool   `json:"is_correct"`
		} `json:"options" validate:"required,min=2,dive"`
	} `json:"questions" validate:"required,min=1,dive"`
}

// POST /tests
func CreateTestHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req createTestReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}

		t := exam.Test{
			CourseID:    req.CourseID,
			Title:       req.Title,
			Description: req.Description,
		}
		for _, q := range req.Questions {
			question := exam.Question{Text: q.Text}
			for _, o := range q.Options {
				question.Options = append(question.Options, exam.Option{Text: o.Text, IsCorrect: o.IsCorrect})
			}
			t.Questions = append(t.Questions, question)
		}

		created, err := store.CreateTest(r.Context(), sub, t)
		if err != nil {
			writeErr(w, err)
			return
		}
		// creator is a teacher, correctness flags stay visible
		writeJSON(w, nethttp.StatusOK, created)
	}
}

// GET /courses/{courseID}/tests
func ListCourseTestsHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		sub, role := caller(r)

		if role == rbac.RoleTeacher {
			owns, err := store.OwnsCourse(r.Context(), sub, courseID)
			if err != nil {
				writeErr(w, err)
				return
			}
			if !owns {
				writeErr(w, apperr.ErrForbidden)
				return
			}
		}

		tests, err := store.ListTestsForCourse(r.Context(), courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		out := make([]exam.Test, 0, len(tests))
		for _, t := range tests {
			out = append(out, exam.ProjectForRole(t, role))
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

// GET /tests/{testID}
func GetTestHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		_, role := caller(r)
		t, err := store.GetTest(r.Context(), chi.URLParam(r, "testID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, exam.ProjectForRole(t, role))
	}
}

type submitTestReq struct {
	Answers []exam.Answer `json:"answers" validate:"required"`
}

// POST /tests/{testID}/submit
func SubmitTestHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req submitTestReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		summary, err := store.SubmitTest(r.Context(), sub, chi.URLParam(r, "testID"), req.Answers)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, summary)
	}
}

type testWithResults struct {
	Test    exam.Test            `json:"test"`
	Results []exam.ResultSummary `json:"results"`
}

// GET /tests/{testID}/results — owning teacher only.
func GetTestResultsHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		testID := chi.URLParam(r, "testID")

		t, err := store.GetTest(r.Context(), testID)
		if err != nil {
			writeErr(w, err)
			return
		}
		if t.TeacherID != sub {
			writeErr(w, apperr.NotFoundf("test %s owned by caller", testID))
			return
		}
		results, err := store.ListResults(r.Context(), testID)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, testWithResults{Test: t, Results: results})
	}
}

// DELETE /tests/{testID}
func DeleteTestHandler(store exam.Store) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		if err := store.DeleteTest(r.Context(), sub, chi.URLParam(r, "testID")); err != nil {
			writeErr(w, err)
			return
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
