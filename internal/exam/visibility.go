package exam

import "github.com/eduflow/eduflow-lms/internal/rbac"

// ProjectForRole returns a role-appropriate copy of the test. Students
// never see which option is correct: the flag is forced to false on a
// deep copy, nothing in storage is touched. Teachers get the test as-is.
func ProjectForRole(t Test, role string) Test {
	if role == rbac.RoleTeacher {
		return t
	}
	out := t
	out.Questions = make([]Question, len(t.Questions))
	for i, q := range t.Questions {
		qc := q
		qc.Options = make([]Option, len(q.Options))
		for j, o := range q.Options {
			o.IsCorrect = false
			qc.Options[j] = o
		}
		out.Questions[i] = qc
	}
	return out
}
