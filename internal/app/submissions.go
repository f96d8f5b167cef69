package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"quizmaster-service/internal/domain"
)

// deletedQuizTitle is the placeholder shown when an attempt references a
// quiz that has since been removed.
const deletedQuizTitle = "Deleted Quiz"

var unsafeNameChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// ListSubmissions returns every stored attempt across all users,
// newest-first, as report listing rows. Titles come from the quiz catalog
// and degrade to a placeholder for deleted quizzes. The store is the only
// source: no filesystem scanning.
func (s *Service) ListSubmissions(ctx context.Context) ([]domain.SubmissionSummary, error) {
	users, err := s.users.UsersWithAttempts(ctx)
	if err != nil {
		return nil, err
	}

	titles := make(map[string]string)
	if quizzes, err := s.quizzes.ListQuizzes(ctx, false); err == nil {
		for _, quiz := range quizzes {
			titles[quiz.ID] = quiz.Title
		}
	}

	summaries := make([]domain.SubmissionSummary, 0)
	for _, user := range users {
		safeName := unsafeNameChars.ReplaceAllString(user.Name, "_")
		if safeName == "" {
			safeName = "User"
		}
		for _, attempt := range user.Attempts {
			title, ok := titles[attempt.QuizID]
			if !ok {
				title = deletedQuizTitle
			}
			summaries = append(summaries, domain.SubmissionSummary{
				Handle:      user.ID + "|" + attempt.ID,
				Filename:    fmt.Sprintf("%s-%d.pdf", safeName, attempt.CompletedAt.UnixMilli()),
				StudentName: user.Name,
				QuizTitle:   title,
				CreatedAt:   attempt.CompletedAt,
			})
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// ParseSubmissionHandle splits the composite "userID|attemptID" key.
func ParseSubmissionHandle(handle string) (userID, attemptID string, err error) {
	parts := strings.SplitN(handle, "|", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", domain.Validationf("invalid report identifier")
	}
	return parts[0], parts[1], nil
}

// BuildSubmissionBundle assembles the read-only view the report renderer
// consumes. Detailed answers are reconstructed from the quiz when it still
// exists; otherwise prompts and keys degrade to placeholders and the bundle's
// Quiz is nil. Missing users or attempts fail with NotFound, a missing quiz
// does not.
func (s *Service) BuildSubmissionBundle(ctx context.Context, userID, attemptID string) (domain.SubmissionBundle, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.SubmissionBundle{}, err
	}

	var attempt *domain.Attempt
	for i := range user.Attempts {
		if user.Attempts[i].ID == attemptID {
			attempt = &user.Attempts[i]
			break
		}
	}
	if attempt == nil {
		return domain.SubmissionBundle{}, domain.ErrAttemptNotFound
	}

	var reportQuiz *domain.ReportQuiz
	var quiz *domain.Quiz
	if attempt.QuizID != "" {
		loaded, err := s.quizzes.GetQuiz(ctx, attempt.QuizID)
		switch {
		case err == nil:
			quiz = &loaded
			reportQuiz = &domain.ReportQuiz{
				Title:      loaded.Title,
				Category:   loaded.Category,
				Difficulty: loaded.Difficulty,
				TimeLimit:  loaded.TimeLimit,
			}
		case errors.Is(err, domain.ErrQuizNotFound):
			// Deleted quiz: render with placeholders.
		default:
			return domain.SubmissionBundle{}, err
		}
	}

	detailed := make([]domain.DetailedAnswer, 0, len(attempt.Answers))
	for _, answer := range attempt.Answers {
		d := domain.DetailedAnswer{
			QuestionID:     answer.QuestionID,
			Prompt:         "Question not found (quiz updated or deleted)",
			SelectedAnswer: answer.SelectedAnswer,
			IsCorrect:      answer.IsCorrect,
		}
		if quiz != nil {
			if question := findQuestion(*quiz, answer.QuestionID); question != nil {
				d.Prompt = question.Prompt
				d.Options = question.Options
				d.CorrectAnswer = question.Key
				d.Explanation = question.Explanation
			}
		}
		detailed = append(detailed, d)
	}

	return domain.SubmissionBundle{
		User: domain.ReportUser{Name: user.Name, Email: user.Email},
		Quiz: reportQuiz,
		Result: domain.GradingResult{
			Score:           attempt.Score,
			TotalQuestions:  attempt.TotalQuestions,
			Percentage:      attempt.Percentage,
			Passed:          attempt.Percentage >= passMark,
			DetailedAnswers: detailed,
		},
		SubmittedAt: attempt.CompletedAt,
	}, nil
}
