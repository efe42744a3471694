package http

import (
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eduflow/eduflow-lms/internal/analytics"
)

// GET /analytics/courses/{courseID}/dashboard
func DashboardHandler(svc *analytics.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		d, err := svc.Dashboard(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, d)
	}
}

// GET /gradebook/courses/{courseID}
func GradebookHandler(svc *analytics.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		gb, err := svc.Gradebook(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, gb)
	}
}

// GET /analytics/courses/{courseID}/test-results
func CourseTestResultsHandler(svc *analytics.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		results, err := svc.TestResults(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, results)
	}
}

// GET /analytics/courses/{courseID}/submission-timeline
func SubmissionTimelineHandler(svc *analytics.Service) nethttp.HandlerFunc {
	return func(w nethttp.ResponseWriter, r *nethttp.Request) {
		sub, _ := caller(r)
		timeline, err := svc.Timeline(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			writeErr(w, err)
			return
		}
		writeJSON(w, nethttp.StatusOK, timeline)
	}
}
