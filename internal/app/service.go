package app

import (
	"context"
	"time"

	"quizmaster-service/internal/domain"
)

// QuizStore is the document-store surface the catalog needs. Implementations
// live in internal/infra (memory, postgres, redis cache).
type QuizStore interface {
	GetQuiz(ctx context.Context, id string) (domain.Quiz, error)
	ListQuizzes(ctx context.Context, activeOnly bool) ([]domain.Quiz, error)
	CreateQuiz(ctx context.Context, quiz domain.Quiz) error
	DeleteQuiz(ctx context.Context, id string) error
}

// UserStore holds users and their append-only attempt history. AppendAttempt
// must be atomic in the store (a single push, not read-modify-write) so
// concurrent submissions by the same user cannot lose updates.
type UserStore interface {
	GetUser(ctx context.Context, id string) (domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UsersWithAttempts(ctx context.Context) ([]domain.User, error)
	CreateUser(ctx context.Context, user domain.User) error
	UpdateUser(ctx context.Context, user domain.User) error
	AppendAttempt(ctx context.Context, userID string, attempt domain.Attempt) error
}

// passMark is the percentage at or above which a submission counts as passed.
const passMark = 60.0

// Service contains the quiz use cases: catalog, grading, history,
// leaderboards, and submission reports.
type Service struct {
	quizzes QuizStore
	users   UserStore
	feed    *LeaderboardFeed
	now     func() time.Time
}

func NewService(quizzes QuizStore, users UserStore) *Service {
	return NewServiceWithClock(quizzes, users, time.Now)
}

// NewServiceWithClock allows deterministic timestamps in tests.
func NewServiceWithClock(quizzes QuizStore, users UserStore, now func() time.Time) *Service {
	return &Service{
		quizzes: quizzes,
		users:   users,
		feed:    NewLeaderboardFeed(),
		now:     now,
	}
}
