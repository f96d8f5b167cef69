package domain

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateQuiz checks a quiz payload before anything is persisted. Structural
// rules (required title, difficulty enum, non-empty question list) run
// through the validator tags; answer-key/option consistency needs the
// per-question loop below. A failure means nothing was written.
func ValidateQuiz(quiz Quiz) error {
	if err := validate.Struct(quiz); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			return Validationf("quiz payload invalid: %s failed %s", fields[0].Namespace(), fields[0].Tag())
		}
		return Validationf("quiz payload invalid")
	}

	for i, q := range quiz.Questions {
		n := i + 1
		if !q.Type.Known() {
			return Validationf("question %d has unknown type %q", n, q.Type)
		}
		if q.Points < 0 {
			return Validationf("question %d has negative points", n)
		}
		if !q.Type.ChoiceStyle() {
			continue
		}
		if len(q.Options) < 2 {
			return Validationf("question %d must have at least 2 options", n)
		}
		if idx, ok := q.Key.Index(); ok {
			if idx < 0 || idx >= len(q.Options) {
				return Validationf("question %d correctAnswer index %d is out of range", n, idx)
			}
			continue
		}
		if set, ok := q.Key.IndexSet(); ok {
			for _, idx := range set {
				if idx < 0 || idx >= len(q.Options) {
					return Validationf("question %d correctAnswer index %d is out of range", n, idx)
				}
			}
			continue
		}
		return Validationf("question %d must have a valid correctAnswer", n)
	}
	return nil
}
