package app

import (
	"context"

	"github.com/shopspring/decimal"

	"quizmaster-service/internal/domain"
)

// Grade scores a submission against a quiz. Submitted answers whose question
// id does not match any question are silently skipped. Correctness is strict
// equality of the native representation via the question's answer key;
// subjective question types never grade correct. TotalQuestions is always the
// quiz's full question count, so skipped questions still count against the
// score. DetailedAnswers keeps submission order, which report rendering
// consumes as-is.
func Grade(quiz domain.Quiz, submitted []domain.SubmittedAnswer) domain.GradingResult {
	total := len(quiz.Questions)
	score := 0
	detailed := make([]domain.DetailedAnswer, 0, len(submitted))

	for _, answer := range submitted {
		question := findQuestion(quiz, answer.QuestionID)
		if question == nil {
			continue
		}
		correct := !question.Type.Subjective() && question.Key.Matches(answer.SelectedAnswer)
		if correct {
			score++
		}
		detailed = append(detailed, domain.DetailedAnswer{
			QuestionID:     answer.QuestionID,
			Prompt:         question.Prompt,
			Options:        question.Options,
			SelectedAnswer: answer.SelectedAnswer,
			CorrectAnswer:  question.Key,
			IsCorrect:      correct,
			Explanation:    question.Explanation,
		})
	}

	pct := Percentage(score, total)
	return domain.GradingResult{
		Score:           score,
		TotalQuestions:  total,
		Percentage:      pct,
		Passed:          pct >= passMark,
		DetailedAnswers: detailed,
	}
}

// Grade loads the quiz and scores the submission without recording anything.
func (s *Service) Grade(ctx context.Context, quizID string, submitted []domain.SubmittedAnswer) (domain.GradingResult, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GradingResult{}, err
	}
	return Grade(quiz, submitted), nil
}

func findQuestion(quiz domain.Quiz, questionID string) *domain.Question {
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == questionID {
			return &quiz.Questions[i]
		}
	}
	return nil
}

// Percentage computes round(score/total*100, 2). A zero total yields 0
// rather than an error: quiz validation prevents empty quizzes upstream, and
// grading must not crash on a degenerate record.
func Percentage(score, total int) float64 {
	if total == 0 {
		return 0
	}
	return decimal.NewFromInt(int64(score)).
		Div(decimal.NewFromInt(int64(total))).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		InexactFloat64()
}

// meanPercentage averages attempt percentages with 2-decimal rounding.
func meanPercentage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(values)))).Round(2).InexactFloat64()
}
