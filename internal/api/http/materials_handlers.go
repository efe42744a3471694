package http

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	nethttp "net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/eduflow/eduflow-lms/internal/apperr"
	"github.com/eduflow/eduflow-lms/internal/storage"
)

type MaterialFile struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	FilePath string `json:"-"`
	Size     int64  `json:"size"`
}

type Material struct {
	ID          string         `json:"id"`
	CourseID    string         `json:"course_id"`
	Title       string         `json:"title"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	URL         string         `json:"url,omitempty"`
	CreatedAt   int64          `json:"created_at"`
	Files       []MaterialFile `json:"files"`
}

type createMaterialReq struct {
	CourseID    string `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required,max=200"`
	Type        string `json:"type" validate:"required,oneof=lecture presentation video scorm"`
	Description string `json:"description" validate:"max=1000"`
	URL         string `json:"url" validate:"omitempty,url"`
}

// GET /courses/{courseID}/materials
func ListMaterialsHandler(db *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		courseID := chi.URLParam(r, "courseID")
		rows, err := db.QueryContext(r.Context(),
			`SELECT id, course_id, title, type, description, url, created_at
			   FROM learning_materials WHERE course_id=$1 ORDER BY created_at`, courseID)
		if err != nil {
			writeErr(w, err)
			return
		}
		defer rows.Close()

		out := []Material{}
		for rows.Next() {
			var m Material
			if err := rows.Scan(&m.ID, &m.CourseID, &m.Title, &m.Type, &m.Description, &m.URL, &m.CreatedAt); err != nil {
				writeErr(w, err)
				return
			}
			out = append(out, m)
		}
		for i := range out {
			if out[i].Files, err = loadMaterialFiles(r, db, out[i].ID); err != nil {
				writeErr(w, err)
				return
			}
		}
		writeJSON(w, nethttp.StatusOK, out)
	}
}

func loadMaterialFiles(r *nethttp.Request, db *sql.DB, materialID string) ([]MaterialFile, error) {
	rows, err := db.QueryContext(r.Context(),
		`SELECT id, name, file_path, size FROM learning_material_files WHERE material_id=$1`, materialID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []MaterialFile{}
	for rows.Next() {
		var f MaterialFile
		if err := rows.Scan(&f.ID, &f.Name, &f.FilePath, &f.Size); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// POST /materials — owning teacher only.
func CreateMaterialHandler(db *sql.DB) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		var req createMaterialReq
		if err := decodeValid(r, &req); err != nil {
			writeErr(w, err)
			return
		}
		var owns bool
		if err := db.QueryRowContext(r.Context(),
			`SELECT EXISTS(SELECT 1 FROM courses WHERE id=$1 AND teacher_id=$2)`,
			req.CourseID, sub).Scan(&owns); err != nil {
			writeErr(w, err)
			return
		}
		if !owns {
			writeErr(w, apperr.ErrForbidden)
			return
		}

		m := Material{
			ID:          uuid.NewString(),
			CourseID:    req.CourseID,
			Title:       req.Title,
			Type:        req.Type,
			Description: req.Description,
			URL:         req.URL,
			CreatedAt:   time.Now().Unix(),
			Files:       []MaterialFile{},
		}
		_, err := db.ExecContext(r.Context(),
			`INSERT INTO learning_materials (id, course_id, title, type, description, url, created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			m.ID, m.CourseID, m.Title, m.Type, m.Description, m.URL, m.CreatedAt)
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, m)
	}
}

// POST /materials/{materialID}/files — multipart upload.
func UploadMaterialFileHandler(db *sql.DB, blobs storage.BlobStore, maxUploadBytes int64) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		materialID := chi.URLParam(r, "materialID")

		var owns bool
		err := db.QueryRowContext(r.Context(),
			`SELECT EXISTS(
			   SELECT 1 FROM learning_materials m JOIN courses c ON c.id = m.course_id
			    WHERE m.id=$1 AND c.teacher_id=$2)`, materialID, sub).Scan(&owns)
		if err != nil {
			writeErr(w, err)
			return
		}
		if !owns {
			writeErr(w, apperr.NotFoundf("material %s owned by caller", materialID))
			return
		}

		r.Body = nethttp.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			writeErr(w, apperr.Validationf("file too large or bad multipart body"))
			return
		}
		f, hdr, err := r.FormFile("file")
		if err != nil {
			writeErr(w, apperr.Validationf("file required"))
			return
		}
		defer f.Close()

		key := fmt.Sprintf("materials/%s/%s%s", materialID, uuid.NewString(), filepath.Ext(hdr.Filename))
		size, err := blobs.Put(key, f)
		if err != nil {
			writeErr(w, err)
			return
		}

		mf := MaterialFile{ID: uuid.NewString(), Name: hdr.Filename, FilePath: key, Size: size}
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO learning_material_files (id, material_id, name, file_path, size) VALUES ($1,$2,$3,$4,$5)`,
			mf.ID, materialID, mf.Name, mf.FilePath, mf.Size)
		if err != nil {
			_ = blobs.Delete(key)
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, mf)
	}
}

// GET /materials/files/{fileID}/download
func DownloadMaterialFileHandler(db *sql.DB, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		var name, path string
		err := db.QueryRowContext(r.Context(),
			`SELECT name, file_path FROM learning_material_files WHERE id=$1`,
			chi.URLParam(r, "fileID")).Scan(&name, &path)
		if errors.Is(err, sql.ErrNoRows) {
			writeErr(w, apperr.NotFoundf("material file"))
			return
		}
		if err != nil {
			writeErr(w, err)
			return
		}
		rc, err := blobs.Get(path)
		if err != nil {
			writeErr(w, apperr.NotFoundf("material file"))
			return
		}
		defer rc.Close()

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		_, _ = io.Copy(w, rc)
	}
}

// DELETE /materials/{materialID}
func DeleteMaterialHandler(db *sql.DB, blobs storage.BlobStore) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		materialID := chi.URLParam(r, "materialID")

		files, err := loadMaterialFiles(r, db, materialID)
		if err != nil {
			writeErr(w, err)
			return
		}
		res, err := db.ExecContext(r.Context(),
			`DELETE FROM learning_materials
			  WHERE id=$1 AND course_id IN (SELECT id FROM courses WHERE teacher_id=$2)`,
			materialID, sub)
		if err != nil {
			writeErr(w, err)
			return
		}
		n, err := res.RowsAffected()
		if err != nil {
			writeErr(w, err)
			return
		}
		if n == 0 {
			writeErr(w, apperr.NotFoundf("material %s owned by caller", materialID))
			return
		}
		for _, f := range files {
			_ = blobs.Delete(f.FilePath)
		}
		w.WriteHeader(nethttp.StatusNoContent)
	}
}
