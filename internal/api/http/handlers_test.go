package http

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	authmw "github.com/eduflow/eduflow-lms/internal/auth/middleware"
	"github.com/eduflow/eduflow-lms/internal/db"
	"github.com/eduflow/eduflow-lms/internal/exam"
	"github.com/eduflow/eduflow-lms/internal/rbac"
)

func newTestServer(t *testing.T) nethttp.Handler {
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

	tests := exam.NewSQLStore(dbh)
	authSvc := authmw.NewAuthService("test-secret")

	r := chi.NewRouter()
	r.Post("/auth/register", RegisterHandler(dbh, authSvc))
	r.Post("/auth/login", LoginHandler(dbh, authSvc))
	r.Group(func(pr chi.Router) {
		pr.Use(authmw.JWTMiddleware(authSvc))
		pr.With(rbac.Require("course:create")).Post("/courses", CreateCourseHandler(dbh))
		pr.With(rbac.Require("test:create")).Post("/tests", CreateTestHandler(tests))
		pr.With(rbac.Require("test:view")).Get("/tests/{testID}", GetTestHandler(tests))
		pr.With(rbac.Require("test:submit")).Post("/tests/{testID}/submit", SubmitTestHandler(tests))
		pr.With(rbac.Require("test:results")).Get("/tests/{testID}/results", GetTestResultsHandler(tests))
	})
	return r
}

func doJSON(t *testing.T, h nethttp.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeInto(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func register(t *testing.T, h nethttp.Handler, email, role string) authResp {
	t.Helper()
	rec := doJSON(t, h, nethttp.MethodPost, "/auth/register", "", map[string]string{
		"email":     email,
		"password":  "hunter22",
		"full_name": strings.Split(email, "@")[0],
		"role":      role,
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("register %s: status %d, body %s", email, rec.Code, rec.Body.String())
	}
	var resp authResp
	decodeInto(t, rec, &resp)
	return resp
}

func TestTestTakingFlow(t *testing.T) {
	h := newTestServer(t)

	teacher := register(t, h, "ada@example.com", rbac.RoleTeacher)
	student := register(t, h, "linus@example.com", rbac.RoleStudent)

	// Teacher sets up a course and a one-question test.
	rec := doJSON(t, h, nethttp.MethodPost, "/courses", teacher.AccessToken, map[string]string{
		"title": "Algebra",
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("create course: %d %s", rec.Code, rec.Body.String())
	}
	var course struct {
		ID string `json:"id"`
	}
	decodeInto(t, rec, &course)

	rec = doJSON(t, h, nethttp.MethodPost, "/tests", teacher.AccessToken, map[string]any{
		"title":     "Quiz 1",
		"course_id": course.ID,
		"questions": []map[string]any{
			{
				"text": "2+2?",
				"options": []map[string]any{
					{"text": "3"},
					{"text": "4", "is_correct": true},
				},
			},
		},
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("create test: %d %s", rec.Code, rec.Body.String())
	}
	var created exam.Test
	decodeInto(t, rec, &created)
	if !created.Questions[0].Options[1].IsCorrect {
		t.Fatalf("creator should see correctness flags: %+v", created)
	}

	// Students cannot author tests.
	rec = doJSON(t, h, nethttp.MethodPost, "/tests", student.AccessToken, map[string]any{})
	if rec.Code != nethttp.StatusForbidden {
		t.Errorf("student create test: %d, want 403", rec.Code)
	}

	// Student view hides every correctness flag.
	rec = doJSON(t, h, nethttp.MethodGet, "/tests/"+created.ID, student.AccessToken, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("student get test: %d %s", rec.Code, rec.Body.String())
	}
	var visible exam.Test
	decodeInto(t, rec, &visible)
	for _, q := range visible.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				t.Errorf("option %s leaked is_correct to student", o.ID)
			}
		}
	}

	// Student submits the right answer.
	rec = doJSON(t, h, nethttp.MethodPost, "/tests/"+created.ID+"/submit", student.AccessToken, map[string]any{
		"answers": []map[string]string{
			{"question_id": created.Questions[0].ID, "selected_option_id": created.Questions[0].Options[1].ID},
		},
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("submit: %d %s", rec.Code, rec.Body.String())
	}
	var summary exam.ResultSummary
	decodeInto(t, rec, &summary)
	if summary.Score != 1 || summary.TotalQuestions != 1 || summary.Percentage != 100 {
		t.Errorf("summary = %+v, want 1/1 at 100%%", summary)
	}

	// A second attempt is a conflict.
	rec = doJSON(t, h, nethttp.MethodPost, "/tests/"+created.ID+"/submit", student.AccessToken, map[string]any{
		"answers": []map[string]string{
			{"question_id": created.Questions[0].ID, "selected_option_id": created.Questions[0].Options[0].ID},
		},
	})
	if rec.Code != nethttp.StatusConflict {
		t.Errorf("second submit: %d, want 409", rec.Code)
	}

	// Teacher reads the results page.
	rec = doJSON(t, h, nethttp.MethodGet, "/tests/"+created.ID+"/results", teacher.AccessToken, nil)
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("results: %d %s", rec.Code, rec.Body.String())
	}
	var page testWithResults
	decodeInto(t, rec, &page)
	if len(page.Results) != 1 || page.Results[0].Score != 1 {
		t.Errorf("results page = %+v, want one result with score 1", page.Results)
	}
}

func TestAuthFlow(t *testing.T) {
	h := newTestServer(t)
	register(t, h, "ada@example.com", rbac.RoleTeacher)

	// Duplicate email is rejected.
	rec := doJSON(t, h, nethttp.MethodPost, "/auth/register", "", map[string]string{
		"email":     "ada@example.com",
		"password":  "hunter22",
		"full_name": "Ada Again",
		"role":      rbac.RoleTeacher,
	})
	if rec.Code != nethttp.StatusBadRequest {
		t.Errorf("duplicate register: %d, want 400", rec.Code)
	}

	rec = doJSON(t, h, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ADA@example.com", // case-insensitive
		"password": "hunter22",
	})
	if rec.Code != nethttp.StatusOK {
		t.Fatalf("login: %d %s", rec.Code, rec.Body.String())
	}
	var resp authResp
	decodeInto(t, rec, &resp)
	if resp.AccessToken == "" || resp.Role != rbac.RoleTeacher {
		t.Errorf("login resp = %+v", resp)
	}

	rec = doJSON(t, h, nethttp.MethodPost, "/auth/login", "", map[string]string{
		"email":    "ada@example.com",
		"password": "wrong",
	})
	if rec.Code != nethttp.StatusUnauthorized {
		t.Errorf("bad password login: %d, want 401", rec.Code)
	}

	// Unknown roles never make it past validation.
	rec = doJSON(t, h, nethttp.MethodPost, "/auth/register", "", map[string]string{
		"email":     "eve@example.com",
		"password":  "hunter22",
		"full_name": "Eve",
		"role":      "admin",
	})
	if rec.Code != nethttp.StatusBadRequest {
		t.Errorf("register with bogus role: %d, want 400", rec.Code)
	}

	// Protected routes demand a token.
	rec = doJSON(t, h, nethttp.MethodPost, "/courses", "", map[string]string{"title": "X"})
	if rec.Code != nethttp.StatusUnauthorized {
		t.Errorf("no token: %d, want 401", rec.Code)
	}
}
