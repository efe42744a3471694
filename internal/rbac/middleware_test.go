package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequire(t *testing.T) {
	h := Require("test:create")(okHandler())

	tests := []struct {
		name string
		role string
		want int
	}{
		{"teacher allowed", RoleTeacher, http.StatusOK},
		{"student forbidden", RoleStudent, http.StatusForbidden},
		{"no role forbidden", "", http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/tests", nil)
			if tc.role != "" {
				req = req.WithContext(WithRole(req.Context(), tc.role))
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireAny(t *testing.T) {
	h := RequireAny("submission:grade", "submission:create")(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/submissions", nil)
	req = req.WithContext(WithRole(req.Context(), RoleStudent))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("student should pass via submission:create, got %d", rec.Code)
	}
}
