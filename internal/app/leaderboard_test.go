package app_test

import (
	"context"
	"testing"
	"time"

	"quizmaster-service/internal/domain"
)

func TestRankByQuizOrdersByScoreThenCompletion(t *testing.T) {
	ctx := context.Background()
	service, _, users := newTestService(t)

	seedUser(t, users, "u1", "Alice")
	seedUser(t, users, "u2", "Bob")
	seedUser(t, users, "u3", "Carol")

	base := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	record := func(userID string, score int, at time.Time) {
		t.Helper()
		result := domain.GradingResult{Score: score, TotalQuestions: 2, Percentage: float64(score) * 50}
		if _, err := service.RecordAttempt(ctx, userID, "quiz-1", result, at); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	record("u1", 2, base.Add(2*time.Minute))
	record("u2", 2, base.Add(1*time.Minute)) // same score, finished earlier
	record("u3", 1, base)

	board, err := service.RankByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if board.QuizTitle != "Arithmetic" || board.TotalQuestions != 2 {
		t.Fatalf("unexpected board header: %+v", board)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(board.Entries))
	}
	order := []string{"u2", "u1", "u3"}
	for i, want := range order {
		if board.Entries[i].UserID != want || board.Entries[i].Rank != i+1 {
			t.Fatalf("position %d: want %s, got %+v", i, want, board.Entries[i])
		}
	}
}

func TestRankByQuizUserAppearsOncePerAttempt(t *testing.T) {
	ctx := context.Background()
	service, _, users := newTestService(t)
	seedUser(t, users, "u1", "Alice")

	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		result := domain.GradingResult{Score: i, TotalQuestions: 2, Percentage: float64(i) * 50}
		if _, err := service.RecordAttempt(ctx, "u1", "quiz-1", result, at.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}

	board, err := service.RankByQuiz(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(board.Entries) != 3 {
		t.Fatalf("expected one row per attempt, got %d", len(board.Entries))
	}
}

func TestRankByQuizMissingQuiz(t *testing.T) {
	service, _, _ := newTestService(t)
	_, err := service.RankByQuiz(context.Background(), "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not-found for missing quiz, got %v", err)
	}
}

func TestRankByQuizNoAttemptsYieldsEmptyBoard(t *testing.T) {
	service, _, _ := newTestService(t)
	board, err := service.RankByQuiz(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("rank: %v", err)
	}
	if len(board.Entries) != 0 {
		t.Fatalf("expected empty board, got %+v", board.Entries)
	}
}

func TestRankGlobalAveragesAndBreaksTies(t *testing.T) {
	ctx := context.Background()
	service, _, users := newTestService(t)

	seedUser(t, users, "u1", "Alice")
	seedUser(t, users, "u2", "Bob")
	seedUser(t, users, "u3", "Carol")
	seedUser(t, users, "u4", "Dan") // never takes a quiz

	at := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	record := func(userID string, pct float64) {
		t.Helper()
		result := domain.GradingResult{Score: 1, TotalQuestions: 2, Percentage: pct}
		if _, err := service.RecordAttempt(ctx, userID, "quiz-1", result, at); err != nil {
			t.Fatalf("record attempt: %v", err)
		}
	}
	// Alice averages 75 over two attempts; Bob and Carol both average 50,
	// but Bob took two quizzes to Carol's one.
	record("u1", 100)
	record("u1", 50)
	record("u2", 50)
	record("u2", 50)
	record("u3", 50)

	entries, err := service.RankGlobal(ctx)
	if err != nil {
		t.Fatalf("rank global: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("users without attempts must be excluded, got %d entries", len(entries))
	}
	if entries[0].UserID != "u1" || entries[0].AveragePercentage != 75.00 {
		t.Fatalf("expected Alice leading with 75.00, got %+v", entries[0])
	}
	if entries[1].UserID != "u2" || entries[2].UserID != "u3" {
		t.Fatalf("tie must break on quizzes taken, got %+v", entries[1:])
	}
	if entries[2].Rank != 3 {
		t.Fatalf("ranks must be 1-based and dense, got %+v", entries[2])
	}
}

func TestRankGlobalCountsAttemptsOnDeletedQuizzes(t *testing.T) {
	ctx := context.Background()
	service, _, users := newTestService(t)
	seedUser(t, users, "u1", "Alice")

	result := domain.GradingResult{Score: 2, TotalQuestions: 2, Percentage: 100}
	if _, err := service.RecordAttempt(ctx, "u1", "quiz-1", result, time.Now()); err != nil {
		t.Fatalf("record attempt: %v", err)
	}
	if err := service.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete quiz: %v", err)
	}

	entries, err := service.RankGlobal(ctx)
	if err != nil {
		t.Fatalf("rank global: %v", err)
	}
	if len(entries) != 1 || entries[0].TotalQuizzes != 1 {
		t.Fatalf("deleted-quiz attempts must stay in the aggregate, got %+v", entries)
	}
}

func TestRankGlobalEmptyStore(t *testing.T) {
	service, _, _ := newTestService(t)
	entries, err := service.RankGlobal(context.Background())
	if err != nil {
		t.Fatalf("rank global: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty leaderboard, got %+v", entries)
	}
}

func TestSubscribeLeaderboardDeliversSnapshotAndUpdates(t *testing.T) {
	ctx := context.Background()
	service, _, users := newTestService(t)
	seedUser(t, users, "u1", "Alice")

	ch, cancel, err := service.SubscribeLeaderboard(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if len(initial.Entries) != 0 {
		t.Fatalf("expected empty initial snapshot, got %+v", initial.Entries)
	}

	if _, _, err := service.Submit(ctx, "u1", "quiz-1", []domain.SubmittedAnswer{
		{QuestionID: "q1", SelectedAnswer: domain.IndexValue(1)},
	}); err != nil {
		t.Fatalf("submit: %v", err)
	}

	select {
	case update := <-ch:
		if len(update.Entries) != 1 || update.Entries[0].UserID != "u1" {
			t.Fatalf("expected refreshed board with Alice, got %+v", update.Entries)
		}
	case <-time.After(time.Second):
		t.Fatalf("no leaderboard update received")
	}
}

func TestSubscribeLeaderboardMissingQuiz(t *testing.T) {
	service, _, _ := newTestService(t)
	_, _, err := service.SubscribeLeaderboard(context.Background(), "missing")
	if domain.KindOf(err) != domain.KindNotFound {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestSubscribeCancelIsIdempotent(t *testing.T) {
	service, _, _ := newTestService(t)
	ch, cancel, err := service.SubscribeLeaderboard(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	<-ch
	cancel()
	cancel() // must not panic on double close

	if _, open := <-ch; open {
		t.Fatalf("channel must be closed after cancel")
	}
}
