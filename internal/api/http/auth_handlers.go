package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	nethttp "net/http"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	authmw "github.com/eduflow/eduflow-lms/internal/auth/middleware"
	"github.com/eduflow/eduflow-lms/internal/rbac"
)

type registerReq struct {
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" validate:"required,min=6"`
	FullName string `json:"full_name" validate:"required"`
	Role     string `json:"role" validate:"required,oneof=teacher student"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type authResp struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	ExpiresAt   int64  `json:"expires_at"`
}

// POST /auth/register
func RegisterHandler(db *sql.DB, authSvc *authmw.AuthService) nethttp.HandlerFunc {
	return registerWithRole(db, authSvc, "")
}

// POST /auth/register/teacher — role is fixed server-side.
func RegisterTeacherHandler(db *sql.DB, authSvc *authmw.AuthService) nethttp.HandlerFunc {
	return registerWithRole(db, authSvc, rbac.RoleTeacher)
}

func registerWithRole(db *sql.DB, authSvc *authmw.AuthService, forcedRole string) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req registerReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeErr(w, apperr.Validationf("bad json"))
			return
		}
		if forcedRole != "" {
			req.Role = forcedRole
		}
		if err := validate.Struct(req); err != nil {
			writeErr(w, apperr.Validationf("%s", err.Error()))
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), 12)
		if err != nil {
			writeErr(w, err)
			return
		}

		id := uuid.NewString()
		now := time.Now()
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, email, phone, password_hash, role, full_name, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			id, email, req.Phone, string(hash), req.Role, req.FullName, now.Unix())
		if err != nil {
			if strings.Contains(strings.ToLower(err.Error()), "unique") {
				writeJSON(w, nethttp.StatusBadRequest, errBody("user with this email already exists"))
				return
			}
			writeErr(w, err)
			return
		}

		tok, err := authSvc.IssueJWT(id, req.Role, req.FullName)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, authResp{
			AccessToken: tok,
			UserID:      id,
			FullName:    req.FullName,
			Email:       email,
			Role:        req.Role,
			ExpiresAt:   now.Add(24 * time.Hour).Unix(),
		})
	}
}

// POST /auth/login
func LoginHandler(db *sql.DB, authSvc *authmw.AuthService) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var req loginReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		email := strings.ToLower(strings.TrimSpace(req.Email))

		var id, hash, role, name string
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role, full_name FROM users WHERE email=$1`, email).
			Scan(&id, &hash, &role, &name)
		if errors.Is(err, sql.ErrNoRows) ||
			(err == nil && bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil) {
			writeJSON(w, nethttp.StatusUnauthorized, errBody("invalid email or password"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}

		tok, err := authSvc.IssueJWT(id, role, name)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, authResp{
			AccessToken: tok,
			UserID:      id,
			FullName:    name,
			Email:       email,
			Role:        role,
			ExpiresAt:   time.Now().Add(24 * time.Hour).Unix(),
		})
	}
}
