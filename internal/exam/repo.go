package exam

import "context"

type Answer struct {
	QuestionID       string `json:"question_id"`
	SelectedOptionID string `json:"selected_option_id"`
}

type Store interface {
	// CreateTest persists the whole test aggregate atomically. Identities
	// and order indices are assigned here; the caller supplies only text
	// and correctness flags.
	CreateTest(ctx context.Context, teacherID string, t Test) (Test, error)

	GetTest(ctx context.Context, id string) (Test, error)
	ListTestsForCourse(ctx context.Context, courseID string) ([]Test, error)
	DeleteTest(ctx context.Context, teacherID, testID string) error

	// SubmitTest scores one attempt. At most one result may exist per
	// (test, student); a duplicate reports apperr.ErrAlreadyAttempted.
	SubmitTest(ctx context.Context, studentID, testID string, answers []Answer) (ResultSummary, error)

	ListResults(ctx context.Context, testID string) ([]ResultSummary, error)
	ListCourseResults(ctx context.Context, courseID string) ([]ResultSummary, error)

	OwnsCourse(ctx context.Context, teacherID, courseID string) (bool, error)
}
