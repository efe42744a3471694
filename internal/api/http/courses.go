package http

import (
	"database/sql"
	"time"

	nethttp "net/http"

	"github.com/google/uuid"
)

type Course struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	TeacherID   string `json:"teacher_id"`
	CreatedAt   int64  `json:"created_at"`
}

type createCourseReq struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"max=1000"`
}

// POST /courses
func CreateCourseHandler(db *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req createCourseReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		c := Course{
			ID:          uuid.NewString(),
			Title:       req.Title,
			Description: req.Description,
			TeacherID:   sub,
			CreatedAt:   time.Now().Unix(),
		}
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO courses (id, title, description, teacher_id, created_at) VALUES ($1,$2,$3,$4,$5)`,
			c.ID, c.Title, c.Description, c.TeacherID, c.CreatedAt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, c)
	}
}

// GET /courses — the caller's own courses.
func ListCoursesHandler(db *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, title, description, teacher_id, created_at
			   FROM courses WHERE teacher_id=$1 ORDER BY created_at`, sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rows.Close()

		out := []Course{}
		for rows.Next() {
			var c Course
			if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.TeacherID, &c.CreatedAt); err != nil {
				writeErr(w, err)
				return
			}
			out = append(out, c)
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}
