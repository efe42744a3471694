package assignment

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

const (
	SubmissionSubmitted = "submitted"
	SubmissionChecked   = "checked"
	SubmissionReturned  = "returned"
)

func ValidStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished
}

type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Assignment struct {
	ID          string       `json:"id"`
	CourseID    string       `json:"course_id"`
	TeacherID   string       `json:"teacher_id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	DueDate     string       `json:"due_date"`
	Status      string       `json:"status"`
	MaxScore    int          `json:"max_score"`
	CreatedAt   int64        `json:"created_at"`
	Attachments []Attachment `json:"attachments"`
}

type Submission struct {
	ID             string `json:"id"`
	AssignmentID   string `json:"assignment_id"`
	StudentID      string `json:"student_id"`
	StudentName    string `json:"student_name,omitempty"`
	FilePath       string `json:"-"`
	FileName       string `json:"file_name"`
	FileSize       int64  `json:"file_size"`
	StudentComment string `json:"student_comment,omitempty"`
	TeacherComment string `json:"teacher_comment,omitempty"`
	Score          *int   `json:"score,omitempty"`
	Status         string `json:"status"`
	SubmittedAt    int64  `json:"submitted_at"`
	GradedAt       *int64 `json:"graded_at,omitempty"`

	// teacher owning the parent course, for download access checks
	CourseTeacherID string `json:"-"`
}
