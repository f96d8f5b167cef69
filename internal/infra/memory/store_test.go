package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"quizmaster-service/internal/domain"
)

func TestQuizStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	quiz := domain.Quiz{ID: "quiz-1", Title: "One", IsActive: true, CreatedAt: time.Now()}
	if err := store.CreateQuiz(ctx, quiz); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetQuiz(ctx, "quiz-1")
	if err != nil || got.Title != "One" {
		t.Fatalf("get: %+v %v", got, err)
	}

	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
	if err := store.DeleteQuiz(ctx, "quiz-1"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found on repeat delete, got %v", err)
	}
}

func TestQuizStoreListFiltersAndSorts(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()

	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	_ = store.CreateQuiz(ctx, domain.Quiz{ID: "old", Title: "Old", IsActive: true, CreatedAt: base})
	_ = store.CreateQuiz(ctx, domain.Quiz{ID: "new", Title: "New", IsActive: true, CreatedAt: base.Add(time.Hour)})
	_ = store.CreateQuiz(ctx, domain.Quiz{ID: "off", Title: "Inactive", IsActive: false, CreatedAt: base.Add(2 * time.Hour)})

	active, err := store.ListQuizzes(ctx, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 2 || active[0].ID != "new" {
		t.Fatalf("expected [new old], got %+v", active)
	}

	all, err := store.ListQuizzes(ctx, false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(all))
	}
}

func TestQuizStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewQuizStore()
	_ = store.CreateQuiz(ctx, domain.Quiz{
		ID:        "quiz-1",
		Title:     "One",
		Questions: []domain.Question{{ID: "q1", Prompt: "Pick"}},
	})

	got, _ := store.GetQuiz(ctx, "quiz-1")
	got.Questions[0].Prompt = "mutated"

	again, _ := store.GetQuiz(ctx, "quiz-1")
	if again.Questions[0].Prompt != "Pick" {
		t.Fatalf("store state leaked through the returned slice")
	}
}

func TestUserStoreFindByEmail(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.CreateUser(ctx, domain.User{ID: "u1", Email: "alice@example.com", Name: "Alice"})

	got, err := store.FindUserByEmail(ctx, "ALICE@example.com")
	if err != nil || got.ID != "u1" {
		t.Fatalf("case-insensitive lookup failed: %+v %v", got, err)
	}
	if _, err := store.FindUserByEmail(ctx, "bob@example.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}

func TestUserStoreUpdateKeepsAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.CreateUser(ctx, domain.User{ID: "u1", Email: "alice@example.com", Name: "Alice"})
	_ = store.AppendAttempt(ctx, "u1", domain.Attempt{ID: "a1", QuizID: "quiz-1"})

	if err := store.UpdateUser(ctx, domain.User{ID: "u1", Email: "alice@example.com", Name: "Alice Smith", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := store.GetUser(ctx, "u1")
	if got.Name != "Alice Smith" || got.Role != domain.RoleAdmin {
		t.Fatalf("profile not updated: %+v", got)
	}
	if len(got.Attempts) != 1 {
		t.Fatalf("update must not touch attempts, got %+v", got.Attempts)
	}
}

func TestUserStoreUsersWithAttempts(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.CreateUser(ctx, domain.User{ID: "u2", Email: "b@example.com"})
	_ = store.CreateUser(ctx, domain.User{ID: "u1", Email: "a@example.com"})
	_ = store.AppendAttempt(ctx, "u1", domain.Attempt{ID: "a1"})
	_ = store.AppendAttempt(ctx, "u2", domain.Attempt{ID: "a2"})

	got, err := store.UsersWithAttempts(ctx)
	if err != nil {
		t.Fatalf("users with attempts: %v", err)
	}
	if len(got) != 2 || got[0].ID != "u1" || got[1].ID != "u2" {
		t.Fatalf("expected [u1 u2], got %+v", got)
	}

	_ = store.CreateUser(ctx, domain.User{ID: "u3", Email: "c@example.com"})
	got, _ = store.UsersWithAttempts(ctx)
	if len(got) != 2 {
		t.Fatalf("users without attempts must be excluded, got %+v", got)
	}
}

func TestAppendAttemptConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewUserStore()
	_ = store.CreateUser(ctx, domain.User{ID: "u1", Email: "a@example.com"})

	const n = 50
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			_ = store.AppendAttempt(ctx, "u1", domain.Attempt{ID: fmt.Sprintf("a%d", i)})
		}(i)
	}
	wg.Wait()

	got, _ := store.GetUser(ctx, "u1")
	if len(got.Attempts) != n {
		t.Fatalf("lost updates: expected %d attempts, got %d", n, len(got.Attempts))
	}
}

func TestAppendAttemptUnknownUser(t *testing.T) {
	store := NewUserStore()
	if err := store.AppendAttempt(context.Background(), "ghost", domain.Attempt{ID: "a1"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected user not found, got %v", err)
	}
}
