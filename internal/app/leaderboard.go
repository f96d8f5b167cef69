package app

import (
	"context"
	"sort"

	"quizmaster-service/internal/domain"
)

// RankByQuiz builds the per-quiz leaderboard: one entry per stored attempt,
// sorted by score descending with ties going to the earlier completion. The
// quiz's existence is checked first, so a quiz nobody took yields an empty
// board, not an error. The board reads a snapshot of store state; it is not
// transactionally consistent with concurrent submissions.
func (s *Service) RankByQuiz(ctx context.Context, quizID string) (domain.QuizLeaderboard, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.QuizLeaderboard{}, err
	}

	users, err := s.users.UsersWithAttempts(ctx)
	if err != nil {
		return domain.QuizLeaderboard{}, err
	}

	entries := make([]domain.QuizLeaderboardEntry, 0)
	for _, user := range users {
		for _, attempt := range user.Attempts {
			if attempt.QuizID != quizID {
				continue
			}
			entries = append(entries, domain.QuizLeaderboardEntry{
				UserID:         user.ID,
				Name:           user.Name,
				Email:          user.Email,
				Score:          attempt.Score,
				TotalQuestions: attempt.TotalQuestions,
				Percentage:     attempt.Percentage,
				CompletedAt:    attempt.CompletedAt,
			})
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CompletedAt.Before(entries[j].CompletedAt)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}

	return domain.QuizLeaderboard{
		QuizID:         quiz.ID,
		QuizTitle:      quiz.Title,
		Category:       quiz.Category,
		TotalQuestions: len(quiz.Questions),
		Entries:        entries,
	}, nil
}

// RankGlobal aggregates every user with at least one attempt, ranked by
// average attempt percentage. Ties break deterministically: more quizzes
// taken first, then user id. Attempts referencing deleted quizzes stay in
// the counts. Zero eligible users yields an empty list, not an error.
func (s *Service) RankGlobal(ctx context.Context) ([]domain.GlobalLeaderboardEntry, error) {
	users, err := s.users.UsersWithAttempts(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.GlobalLeaderboardEntry, 0, len(users))
	for _, user := range users {
		if len(user.Attempts) == 0 {
			continue
		}
		entry := domain.GlobalLeaderboardEntry{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			TotalQuizzes: len(user.Attempts),
		}
		percentages := make([]float64, 0, len(user.Attempts))
		for _, attempt := range user.Attempts {
			entry.TotalScore += attempt.Score
			entry.TotalQuestions += attempt.TotalQuestions
			percentages = append(percentages, attempt.Percentage)
		}
		entry.AveragePercentage = meanPercentage(percentages)
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].AveragePercentage != entries[j].AveragePercentage {
			return entries[i].AveragePercentage > entries[j].AveragePercentage
		}
		if entries[i].TotalQuizzes != entries[j].TotalQuizzes {
			return entries[i].TotalQuizzes > entries[j].TotalQuizzes
		}
		return entries[i].UserID < entries[j].UserID
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// SubscribeLeaderboard returns a channel that receives the per-quiz
// leaderboard after each recorded attempt. The quiz must exist. The caller
// must invoke the returned cancel function to avoid leaks.
func (s *Service) SubscribeLeaderboard(ctx context.Context, quizID string) (<-chan domain.QuizLeaderboard, func(), error) {
	board, err := s.RankByQuiz(ctx, quizID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.feed.Subscribe(quizID, board)
	return ch, cancel, nil
}
