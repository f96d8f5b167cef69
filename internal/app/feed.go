package app

import (
	"sync"

	"quizmaster-service/internal/domain"
)

// LeaderboardFeed fans per-quiz leaderboard snapshots out to live
// subscribers. Publishing never blocks: a slow subscriber has its stale
// snapshot replaced by the newest one.
type LeaderboardFeed struct {
	mu   sync.Mutex
	subs map[string]map[chan domain.QuizLeaderboard]struct{}
}

func NewLeaderboardFeed() *LeaderboardFeed {
	return &LeaderboardFeed{subs: make(map[string]map[chan domain.QuizLeaderboard]struct{})}
}

// Subscribe registers for updates on one quiz and immediately delivers the
// initial snapshot. The cancel function must be called to avoid leaks; it is
// safe to call more than once.
func (f *LeaderboardFeed) Subscribe(quizID string, initial domain.QuizLeaderboard) (<-chan domain.QuizLeaderboard, func()) {
	ch := make(chan domain.QuizLeaderboard, 8)
	// Seed before registering: once the channel is visible to Publish, the
	// feed must be its only sender, or the drain-and-refill below could
	// block against a concurrent initial send.
	ch <- initial

	f.mu.Lock()
	if f.subs[quizID] == nil {
		f.subs[quizID] = make(map[chan domain.QuizLeaderboard]struct{})
	}
	f.subs[quizID][ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if set, ok := f.subs[quizID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(f.subs, quizID)
			}
		}
	}
	return ch, cancel
}

// Publish delivers a fresh snapshot to every subscriber of the board's quiz.
func (f *LeaderboardFeed) Publish(board domain.QuizLeaderboard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for ch := range f.subs[board.QuizID] {
		select {
		case ch <- board:
		default:
			// Drop the stale snapshot so the newest one always lands.
			select {
			case <-ch:
			default:
			}
			ch <- board
		}
	}
}
