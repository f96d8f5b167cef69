package app

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"

	"quizmaster-service/internal/domain"
)

// ListQuizzes returns quizzes newest-created first with the answer key and
// explanation stripped from every question. activeOnly restricts the listing
// to quizzes still open for taking.
func (s *Service) ListQuizzes(ctx context.Context, activeOnly bool) ([]domain.Quiz, error) {
	quizzes, err := s.quizzes.ListQuizzes(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	redacted := make([]domain.Quiz, len(quizzes))
	for i, quiz := range quizzes {
		redacted[i] = quiz.Redacted()
	}
	return redacted, nil
}

// GetQuiz fetches one quiz. Non-admin viewers get each question reduced to
// id, type, prompt, and options only.
func (s *Service) GetQuiz(ctx context.Context, id string, viewer domain.Role) (domain.Quiz, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, id)
	if err != nil {
		return domain.Quiz{}, err
	}
	if viewer != domain.RoleAdmin {
		return quiz.RedactedForStudent(), nil
	}
	return quiz, nil
}

// CreateQuiz validates the payload, applies schema defaults, stamps the
// owner, and persists. Validation failures happen before any write.
func (s *Service) CreateQuiz(ctx context.Context, quiz domain.Quiz, ownerID string) (domain.Quiz, error) {
	quiz.ApplyDefaults()
	if err := domain.ValidateQuiz(quiz); err != nil {
		return domain.Quiz{}, err
	}

	now := s.now()
	quiz.ID = uuid.NewString()
	quiz.CreatedBy = ownerID
	quiz.IsActive = true
	quiz.CreatedAt = now
	quiz.UpdatedAt = now
	for i := range quiz.Questions {
		if quiz.Questions[i].ID == "" {
			quiz.Questions[i].ID = uuid.NewString()
		}
	}

	if err := s.quizzes.CreateQuiz(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

// CreateQuizFromJSON is the upload path: a quiz document in JSON form goes
// through the same validation and creation pipeline as a manual create.
func (s *Service) CreateQuizFromJSON(ctx context.Context, data []byte, ownerID string) (domain.Quiz, error) {
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, domain.Validationf("uploaded file is not a valid quiz document: %v", err)
	}
	return s.CreateQuiz(ctx, quiz, ownerID)
}

// DeleteQuiz hard-removes the quiz. Attempts referencing it are deliberately
// left in place; history readers degrade to placeholder titles.
func (s *Service) DeleteQuiz(ctx context.Context, id string) error {
	return s.quizzes.DeleteQuiz(ctx, id)
}
