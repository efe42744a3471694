package exam

type Option struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Order     int    `json:"order"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Order   int      `json:"order"`
	Options []Option `json:"options"`
}

type Test struct {
	ID          string     `json:"id"`
	CourseID    string     `json:"course_id"`
	TeacherID   string     `json:"teacher_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	CreatedAt   int64      `json:"created_at"`
	Questions   []Question `json:"questions"`
}

type StudentAnswer struct {
	ID               string `json:"id"`
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id"`
	IsCorrect        bool   `json:"is_correct"` // snapshot taken at scoring time
}

type TestResult struct {
	ID             string          `json:"id"`
	TestID         string          `json:"test_id"`
	StudentID      string          `json:"student_id"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"total_questions"`
	CompletedAt    int64           `json:"completed_at"`
	Answers        []StudentAnswer `json:"answers,omitempty"`
}

// Percentage is derived, never stored.
func (r TestResult) Percentage() float64 {
	return percentage(r.Score, r.TotalQuestions)
}

func percentage(score, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(score) * 100 / float64(total)
}

// ResultSummary is the row teachers see on the results page and the
// payload a student gets back right after submitting.
type ResultSummary struct {
	ID             string  `json:"id"`
	StudentName    string  `json:"student_name"`
	TestID         string  `json:"test_id"`
	Score          int     `json:"score"`
	TotalQuestions int     `json:"total_questions"`
	Percentage     float64 `json:"percentage"`
	CompletedAt    int64   `json:"completed_at"`
}
