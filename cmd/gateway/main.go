package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/eduflow/eduflow-lms/internal/analytics"
	api "github.com/eduflow/eduflow-lms/internal/api/http"
	"github.com/eduflow/eduflow-lms/internal/assignment"
	auth "github.com/eduflow/eduflow-lms/internal/auth/middleware"
	"github.com/eduflow/eduflow-lms/internal/config"
	"github.com/eduflow/eduflow-lms/internal/db"
	"github.com/eduflow/eduflow-lms/internal/exam"
	"github.com/eduflow/eduflow-lms/internal/rbac"
	"github.com/eduflow/eduflow-lms/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	tests := exam.NewSQLStore(dbh)
	assignments := assignment.NewSQLStore(dbh)
	stats := analytics.NewService(dbh, tests)

	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	authSvc := auth.NewAuthService(cfg.JWTSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(dbh, authSvc))
	r.Post("/auth/register/teacher", api.RegisterTeacherHandler(dbh, authSvc))
	r.Post("/auth/login", api.LoginHandler(dbh, authSvc))

	// Protected API (JWT → subject/role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(dbh))
		pr.With(rbac.Require("course:list")).
			Get("/courses", api.ListCoursesHandler(dbh))

		// Tests
		pr.With(rbac.Require("test:create")).
			Post("/tests", api.CreateTestHandler(tests))
		pr.With(rbac.Require("test:view")).
			Get("/courses/{courseID}/tests", api.ListCourseTestsHandler(tests))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(tests))
		pr.With(rbac.Require("test:submit")).
			Post("/tests/{testID}/submit", api.SubmitTestHandler(tests))
		pr.With(rbac.Require("test:results")).
			Get("/tests/{testID}/results", api.GetTestResultsHandler(tests))
		pr.With(rbac.Require("test:delete")).
			Delete("/tests/{testID}", api.DeleteTestHandler(tests))

		// Assignments
		pr.With(rbac.Require("assignment:list")).
			Get("/assignments", api.ListAssignmentsHandler(assignments))
		pr.With(rbac.Require("assignment:create")).
			Post("/assignments", api.CreateAssignmentHandler(assignments))
		pr.With(rbac.Require("assignment:update")).
			Put("/assignments/{assignmentID}", api.UpdateAssignmentHandler(assignments))
		pr.With(rbac.Require("assignment:delete")).
			Delete("/assignments/{assignmentID}", api.DeleteAssignmentHandler(assignments))

		// Submissions
		pr.With(rbac.Require("submission:list")).
			Get("/assignments/{assignmentID}/submissions", api.ListSubmissionsHandler(assignments))
		pr.With(rbac.Require("submission:create")).
			Post("/submissions", api.CreateSubmissionHandler(assignments, blobs, cfg.MaxUploadBytes))
		pr.With(rbac.Require("submission:grade")).
			Put("/submissions/{submissionID}/grade", api.GradeSubmissionHandler(assignments))
		pr.With(rbac.Require("submission:download-own")).
			Get("/submissions/{submissionID}/download", api.DownloadSubmissionHandler(assignments, blobs))

		// Learning materials
		pr.With(rbac.Require("material:view")).
			Get("/courses/{courseID}/materials", api.ListMaterialsHandler(dbh))
		pr.With(rbac.Require("material:create")).
			Post("/materials", api.CreateMaterialHandler(dbh))
		pr.With(rbac.Require("material:upload")).
			Post("/materials/{materialID}/files", api.UploadMaterialFileHandler(dbh, blobs, cfg.MaxUploadBytes))
		pr.With(rbac.Require("material:view")).
			Get("/materials/files/{fileID}/download", api.DownloadMaterialFileHandler(dbh, blobs))
		pr.With(rbac.Require("material:delete")).
			Delete("/materials/{materialID}", api.DeleteMaterialHandler(dbh, blobs))

		// Analytics (teacher-only)
		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/courses/{courseID}/dashboard", api.DashboardHandler(stats))
		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/courses/{courseID}/test-results", api.CourseTestResultsHandler(stats))
		pr.With(rbac.Require("analytics:view")).
			Get("/analytics/courses/{courseID}/submission-timeline", api.SubmissionTimelineHandler(stats))
		pr.With(rbac.Require("gradebook:view")).
			Get("/gradebook/courses/{courseID}", api.GradebookHandler(stats))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
