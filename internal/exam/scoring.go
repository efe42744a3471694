package exam

import "github.com/google/uuid"

// scoreAnswers grades one attempt against the test definition.
//
// Answers pointing at a question the test does not have, or an option the
// question does not have, are skipped without error; the remaining valid
// answers still count. An option's correctness flag is copied onto the
// recorded answer so later edits to the test cannot rewrite history.
// Total is always the number of questions defined on the test, so
// unanswered questions count against the score.
func scoreAnswers(t Test, answers []Answer) (score int, recorded []StudentAnswer) {
	questions := make(map[string]Question, len(t.Questions))
	for _, q := range t.Questions {
		questions[q.ID] = q
	}

	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		var opt *Option
		for i := range q.Options {
			if q.Options[i].ID == a.SelectedOptionID {
				opt = &q.Options[i]
				break
			}
		}
		if opt == nil {
			continue
		}
		if opt.IsCorrect {
			score++
		}
		recorded = append(recorded, StudentAnswer{
			ID:               uuid.NewString(),
			QuestionID:       a.QuestionID,
			SelectedOptionID: a.SelectedOptionID,
			IsCorrect:        opt.IsCorrect,
		})
	}
	return score, recorded
}
