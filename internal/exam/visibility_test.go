package exam

import (
	"testing"

	"github.com/eduflow/eduflow-lms/internal/rbac"
)

func TestProjectForRole_StudentNeverSeesAnswers(t *testing.T) {
	orig := twoQuestionTest()

	got := ProjectForRole(orig, rbac.RoleStudent)
	for _, q := range got.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				t.Errorf("option %s leaked is_correct to student", o.ID)
			}
		}
	}

	// The projection must be a copy; the source keeps its flags.
	if !orig.Questions[0].Options[0].IsCorrect {
		t.Errorf("projection mutated the source test")
	}
}

func TestProjectForRole_TeacherSeesEverything(t *testing.T) {
	orig := twoQuestionTest()
	got := ProjectForRole(orig, rbac.RoleTeacher)
	if !got.Questions[0].Options[0].IsCorrect {
		t.Errorf("teacher projection lost is_correct")
	}
}

func TestProjectForRole_UnknownRoleTreatedAsStudent(t *testing.T) {
	got := ProjectForRole(twoQuestionTest(), "")
	for _, q := range got.Questions {
		for _, o := range q.Options {
			if o.IsCorrect {
				t.Errorf("empty role must get the student projection")
			}
		}
	}
}
