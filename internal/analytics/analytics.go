// Package analytics derives teacher-facing statistics from persisted
// assignments, submissions and test results. Everything here is read-only;
// nothing is computed and stored back.
package analytics

import (
	"sort"
	"time"

	"github.com/eduflow/eduflow-lms/internal/assignment"
)

type StudentRef struct {
	ID   string
	Name string
}

type CourseStats struct {
	TotalStudents        int     `json:"total_students"`
	TotalAssignments     int     `json:"total_assignments"`
	CompletedSubmissions int     `json:"completed_submissions"`
	GradedSubmissions    int     `json:"graded_submissions"`
	AverageGrade         float64 `json:"average_grade"`
}

type AssignmentProgress struct {
	AssignmentID    string  `json:"assignment_id"`
	AssignmentTitle string  `json:"assignment_title"`
	SubmissionCount int     `json:"submission_count"`
	TotalStudents   int     `json:"total_students"`
	CompletionRate  float64 `json:"completion_rate"`
	AverageScore    float64 `json:"average_score"`
}

type StudentProgress struct {
	StudentID            string  `json:"student_id"`
	StudentName          string  `json:"student_name"`
	CompletedAssignments int     `json:"completed_assignments"`
	TotalAssignments     int     `json:"total_assignments"`
	AverageScore         float64 `json:"average_score"`
	ProgressPercentage   float64 `json:"progress_percentage"`
}

type Dashboard struct {
	CourseID            string               `json:"course_id"`
	CourseTitle         string               `json:"course_title"`
	CourseStats         CourseStats          `json:"course_stats"`
	AssignmentsProgress []AssignmentProgress `json:"assignments_progress"`
	StudentsProgress    []StudentProgress    `json:"students_progress"`
}

type AssignmentScore struct {
	AssignmentID    string `json:"assignment_id"`
	AssignmentTitle string `json:"assignment_title"`
	MaxScore        int    `json:"max_score"`
	Score           *int   `json:"score"`
	Status          string `json:"status"`
}

type StudentGrades struct {
	StudentID            string            `json:"student_id"`
	StudentName          string            `json:"student_name"`
	AssignmentScores     []AssignmentScore `json:"assignment_scores"`
	CompletedAssignments int               `json:"completed_assignments"`
	TotalAssignments     int               `json:"total_assignments"`
	AverageScore         float64           `json:"average_score"`
}

type AssignmentGrades struct {
	AssignmentID     string  `json:"assignment_id"`
	AssignmentTitle  string  `json:"assignment_title"`
	MaxScore         int     `json:"max_score"`
	SubmissionsCount int     `json:"submissions_count"`
	TotalStudents    int     `json:"total_students"`
	AverageScore     float64 `json:"average_score"`
}

type Gradebook struct {
	CourseID    string             `json:"course_id"`
	CourseTitle string             `json:"course_title"`
	Students    []StudentGrades    `json:"students"`
	Assignments []AssignmentGrades `json:"assignments"`
}

type TimelineEntry struct {
	Date             string  `json:"date"` // UTC calendar date, YYYY-MM-DD
	SubmissionsCount int     `json:"submissions_count"`
	AverageScore     float64 `json:"average_score"`
}

// statusCompleted means a submission counts toward completion: it has been
// handed in, graded or not. Returned submissions do not count.
func statusCompleted(s string) bool {
	return s == assignment.SubmissionSubmitted || s == assignment.SubmissionChecked
}

// BuildDashboard aggregates course-wide, per-assignment and per-student
// progress. Students are everyone with at least one submission in the
// course. All ratios guard their zero denominators and report 0.
func BuildDashboard(courseID, courseTitle string, assignments []assignment.Assignment, students []StudentRef, subs []assignment.Submission) Dashboard {
	d := Dashboard{
		CourseID:            courseID,
		CourseTitle:         courseTitle,
		AssignmentsProgress: []AssignmentProgress{},
		StudentsProgress:    []StudentProgress{},
	}

	scoredSum, scoredCount := 0, 0
	for _, s := range subs {
		if statusCompleted(s.Status) {
			d.CourseStats.CompletedSubmissions++
		}
		if s.Status == assignment.SubmissionChecked {
			d.CourseStats.GradedSubmissions++
		}
		if s.Score != nil {
			scoredSum += *s.Score
			scoredCount++
		}
	}
	d.CourseStats.TotalStudents = len(students)
	d.CourseStats.TotalAssignments = len(assignments)
	d.CourseStats.AverageGrade = avg(scoredSum, scoredCount)

	for _, a := range assignments {
		p := AssignmentProgress{
			AssignmentID:    a.ID,
			AssignmentTitle: a.Title,
			TotalStudents:   len(students),
		}
		sum, n := 0, 0
		for _, s := range subs {
			if s.AssignmentID != a.ID {
				continue
			}
			p.SubmissionCount++
			if s.Score != nil {
				sum += *s.Score
				n++
			}
		}
		if len(students) > 0 {
			p.CompletionRate = float64(p.SubmissionCount) / float64(len(students)) * 100
		}
		p.AverageScore = avg(sum, n)
		d.AssignmentsProgress = append(d.AssignmentsProgress, p)
	}

	for _, st := range students {
		p := StudentProgress{
			StudentID:        st.ID,
			StudentName:      st.Name,
			TotalAssignments: len(assignments),
		}
		sum, n, submitted := 0, 0, 0
		for _, s := range subs {
			if s.StudentID != st.ID {
				continue
			}
			submitted++
			if statusCompleted(s.Status) {
				p.CompletedAssignments++
			}
			if s.Score != nil {
				sum += *s.Score
				n++
			}
		}
		p.AverageScore = avg(sum, n)
		if len(assignments) > 0 {
			p.ProgressPercentage = float64(submitted) / float64(len(assignments)) * 100
		}
		d.StudentsProgress = append(d.StudentsProgress, p)
	}
	return d
}

// BuildGradebook produces the per-student-per-assignment score matrix. A
// missing submission shows up as a "not_submitted" cell and counts as 0
// in the student's average, so unsubmitted work drags the average down
// rather than being excluded from it.
func BuildGradebook(courseID, courseTitle string, assignments []assignment.Assignment, students []StudentRef, subs []assignment.Submission) Gradebook {
	gb := Gradebook{
		CourseID:    courseID,
		CourseTitle: courseTitle,
		Students:    []StudentGrades{},
		Assignments: []AssignmentGrades{},
	}

	type cellKey struct{ student, assignment string }
	cells := map[cellKey]assignment.Submission{}
	for _, s := range subs {
		cells[cellKey{s.StudentID, s.AssignmentID}] = s
	}

	for _, st := range students {
		sg := StudentGrades{
			StudentID:        st.ID,
			StudentName:      st.Name,
			AssignmentScores: []AssignmentScore{},
			TotalAssignments: len(assignments),
		}
		total := 0
		for _, a := range assignments {
			cell := AssignmentScore{
				AssignmentID:    a.ID,
				AssignmentTitle: a.Title,
				MaxScore:        a.MaxScore,
				Status:          "not_submitted",
			}
			if s, ok := cells[cellKey{st.ID, a.ID}]; ok {
				cell.Score = s.Score
				cell.Status = s.Status
				if s.Status == assignment.SubmissionChecked {
					sg.CompletedAssignments++
				}
				if s.Score != nil {
					total += *s.Score
				}
			}
			sg.AssignmentScores = append(sg.AssignmentScores, cell)
		}
		sg.AverageScore = avg(total, len(assignments))
		gb.Students = append(gb.Students, sg)
	}

	for _, a := range assignments {
		ag := AssignmentGrades{
			AssignmentID:    a.ID,
			AssignmentTitle: a.Title,
			MaxScore:        a.MaxScore,
			TotalStudents:   len(students),
		}
		sum, n := 0, 0
		for _, s := range subs {
			if s.AssignmentID != a.ID {
				continue
			}
			ag.SubmissionsCount++
			if s.Score != nil {
				sum += *s.Score
				n++
			}
		}
		ag.AverageScore = avg(sum, n)
		gb.Assignments = append(gb.Assignments, ag)
	}
	return gb
}

// BuildTimeline groups submissions by UTC calendar date. Ungraded
// submissions contribute 0 to the day's average.
func BuildTimeline(subs []assignment.Submission) []TimelineEntry {
	type bucket struct{ count, sum int }
	days := map[string]*bucket{}
	for _, s := range subs {
		day := time.Unix(s.SubmittedAt, 0).UTC().Format("2006-01-02")
		b := days[day]
		if b == nil {
			b = &bucket{}
			days[day] = b
		}
		b.count++
		if s.Score != nil {
			b.sum += *s.Score
		}
	}

	out := make([]TimelineEntry, 0, len(days))
	for day, b := range days {
		out = append(out, TimelineEntry{
			Date:             day,
			SubmissionsCount: b.count,
			AverageScore:     avg(b.sum, b.count),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

func avg(sum, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}
