package postgres

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizmaster-service/internal/domain"
)

// Store keeps quizzes and users as JSONB documents in Postgres. Quiz
// documents are opaque to SQL apart from the columns needed for filtering;
// user attempt history is a JSONB array appended to in a single statement so
// concurrent submissions never read-modify-write each other away.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) GetQuiz(ctx context.Context, id string) (domain.Quiz, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM quizzes WHERE id=$1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, domain.Upstream(err)
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(raw, &quiz); err != nil {
		return domain.Quiz{}, domain.Upstream(err)
	}
	return quiz, nil
}

func (s *Store) ListQuizzes(ctx context.Context, activeOnly bool) ([]domain.Quiz, error) {
	query := `SELECT data FROM quizzes ORDER BY created_at DESC`
	if activeOnly {
		query = `SELECT data FROM quizzes WHERE is_active ORDER BY created_at DESC`
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Upstream(err)
	}
	defer rows.Close()

	quizzes := make([]domain.Quiz, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, domain.Upstream(err)
		}
		var quiz domain.Quiz
		if err := json.Unmarshal(raw, &quiz); err != nil {
			return nil, domain.Upstream(err)
		}
		quizzes = append(quizzes, quiz)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream(err)
	}
	return quizzes, nil
}

func (s *Store) CreateQuiz(ctx context.Context, quiz domain.Quiz) error {
	raw, err := json.Marshal(quiz)
	if err != nil {
		return domain.Upstream(err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO quizzes (id, is_active, created_at, data) VALUES ($1, $2, $3, $4)`,
		quiz.ID, quiz.IsActive, quiz.CreatedAt, string(raw))
	if err != nil {
		return domain.Upstream(err)
	}
	return nil
}

func (s *Store) DeleteQuiz(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return domain.ErrQuizNotFound
	}
	tag, err := s.pool.Exec(ctx, `DELETE FROM quizzes WHERE id=$1`, id)
	if err != nil {
		return domain.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (domain.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.User{}, domain.ErrUserNotFound
	}
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, name, role, created_at, attempts FROM users WHERE id=$1`, id))
}

func (s *Store) FindUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, email, name, role, created_at, attempts FROM users WHERE email=$1`, email))
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.queryUsers(ctx,
		`SELECT id, email, name, role, created_at, attempts FROM users ORDER BY created_at DESC`)
}

func (s *Store) UsersWithAttempts(ctx context.Context) ([]domain.User, error) {
	return s.queryUsers(ctx,
		`SELECT id, email, name, role, created_at, attempts FROM users WHERE jsonb_array_length(attempts) > 0 ORDER BY id`)
}

func (s *Store) CreateUser(ctx context.Context, user domain.User) error {
	attempts, err := marshalAttempts(user.Attempts)
	if err != nil {
		return domain.Upstream(err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO users (id, email, name, role, created_at, attempts) VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Name, string(user.Role), user.CreatedAt, attempts)
	if err != nil {
		return domain.Upstream(err)
	}
	return nil
}

// UpdateUser replaces profile fields only; the attempt history is untouched.
func (s *Store) UpdateUser(ctx context.Context, user domain.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET email=$2, name=$3, role=$4 WHERE id=$1`,
		user.ID, user.Email, user.Name, string(user.Role))
	if err != nil {
		return domain.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AppendAttempt pushes one attempt onto the user's history in a single
// UPDATE, delegating atomicity to Postgres.
func (s *Store) AppendAttempt(ctx context.Context, userID string, attempt domain.Attempt) error {
	if _, err := uuid.Parse(userID); err != nil {
		return domain.ErrUserNotFound
	}
	raw, err := json.Marshal(attempt)
	if err != nil {
		return domain.Upstream(err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET attempts = attempts || jsonb_build_array($2::jsonb) WHERE id=$1`,
		userID, string(raw))
	if err != nil {
		return domain.Upstream(err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Store) scanUser(row rowScanner) (domain.User, error) {
	var user domain.User
	var role string
	var attempts []byte
	err := row.Scan(&user.ID, &user.Email, &user.Name, &role, &user.CreatedAt, &attempts)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, domain.Upstream(err)
	}
	user.Role = domain.Role(role)
	if err := json.Unmarshal(attempts, &user.Attempts); err != nil {
		return domain.User{}, domain.Upstream(err)
	}
	return user, nil
}

func (s *Store) queryUsers(ctx context.Context, query string) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, domain.Upstream(err)
	}
	defer rows.Close()

	users := make([]domain.User, 0)
	for rows.Next() {
		var user domain.User
		var role string
		var attempts []byte
		if err := rows.Scan(&user.ID, &user.Email, &user.Name, &role, &user.CreatedAt, &attempts); err != nil {
			return nil, domain.Upstream(err)
		}
		user.Role = domain.Role(role)
		if err := json.Unmarshal(attempts, &user.Attempts); err != nil {
			return nil, domain.Upstream(err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Upstream(err)
	}
	return users, nil
}

func marshalAttempts(attempts []domain.Attempt) (string, error) {
	if attempts == nil {
		attempts = []domain.Attempt{}
	}
	raw, err := json.Marshal(attempts)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
