package app

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizmaster-service/internal/domain"
)

// RecordAttempt appends a graded attempt to the user's history. Prior
// attempts are never touched and repeat attempts of the same quiz are not
// deduplicated. The quiz is not re-checked: recording must succeed even for
// a quiz deleted between grading and recording.
func (s *Service) RecordAttempt(ctx context.Context, userID, quizID string, result domain.GradingResult, completedAt time.Time) (domain.Attempt, error) {
	answers := make([]domain.AttemptAnswer, len(result.DetailedAnswers))
	for i, d := range result.DetailedAnswers {
		answers[i] = domain.AttemptAnswer{
			QuestionID:     d.QuestionID,
			SelectedAnswer: d.SelectedAnswer,
			IsCorrect:      d.IsCorrect,
		}
	}
	attempt := domain.Attempt{
		ID:             uuid.NewString(),
		QuizID:         quizID,
		Score:          result.Score,
		TotalQuestions: result.TotalQuestions,
		Percentage:     result.Percentage,
		CompletedAt:    completedAt,
		Answers:        answers,
	}
	if err := s.users.AppendAttempt(ctx, userID, attempt); err != nil {
		return domain.Attempt{}, err
	}
	return attempt, nil
}

// Submit grades the quiz, records the attempt, and pushes the refreshed
// per-quiz leaderboard to live subscribers. The leaderboard refresh is
// best-effort: a stale board is acceptable, a failed submission is not.
func (s *Service) Submit(ctx context.Context, userID, quizID string, submitted []domain.SubmittedAnswer) (domain.GradingResult, domain.Attempt, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GradingResult{}, domain.Attempt{}, err
	}
	result := Grade(quiz, submitted)

	attempt, err := s.RecordAttempt(ctx, userID, quizID, result, s.now())
	if err != nil {
		return domain.GradingResult{}, domain.Attempt{}, err
	}

	if board, err := s.RankByQuiz(ctx, quizID); err == nil {
		s.feed.Publish(board)
	}
	return result, attempt, nil
}

// History returns the user's attempts newest-first.
func (s *Service) History(ctx context.Context, userID string) ([]domain.Attempt, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	history := make([]domain.Attempt, len(user.Attempts))
	copy(history, user.Attempts)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CompletedAt.After(history[j].CompletedAt)
	})
	return history, nil
}

// Stats summarizes the user's history for the dashboard.
func (s *Service) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}

	stats := domain.UserStats{TotalQuizzes: len(user.Attempts)}
	percentages := make([]float64, 0, len(user.Attempts))
	for _, attempt := range user.Attempts {
		stats.TotalScore += attempt.Score
		stats.TotalQuestions += attempt.TotalQuestions
		percentages = append(percentages, attempt.Percentage)
	}
	stats.AveragePercentage = meanPercentage(percentages)

	// Last five attempts, most recent first.
	recent := len(user.Attempts)
	for i := recent - 1; i >= 0 && i >= recent-5; i-- {
		stats.RecentAttempts = append(stats.RecentAttempts, user.Attempts[i])
	}
	return stats, nil
}
