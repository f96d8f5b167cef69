package domain

import "time"

// Role distinguishes students from quiz-authoring admins.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// Difficulty rates a quiz.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is a single quiz question. CorrectAnswer travels over the wire
// polymorphically (index, index list, or string) depending on Type; in Go it
// lives behind the AnswerKey tagged variant.
type Question struct {
	ID          string       `json:"id"`
	Type        QuestionType `json:"type"`
	Prompt      string       `json:"prompt" validate:"required"`
	Options     []string     `json:"options,omitempty"`
	Key         AnswerKey    `json:"-"`
	Explanation string       `json:"explanation,omitempty"`
	Points      int          `json:"points,omitempty"`
}

// Quiz is the authored document stored in the catalog.
type Quiz struct {
	ID          string     `json:"id"`
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Difficulty  Difficulty `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	TimeLimit   int        `json:"timeLimit,omitempty"`
	Questions   []Question `json:"questions" validate:"min=1,dive"`
	CreatedBy   string     `json:"createdBy,omitempty"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// ApplyDefaults fills the fields the original schema defaulted.
func (q *Quiz) ApplyDefaults() {
	if q.Category == "" {
		q.Category = "General"
	}
	if q.Difficulty == "" {
		q.Difficulty = DifficultyMedium
	}
	if q.TimeLimit == 0 {
		q.TimeLimit = 30
	}
	for i := range q.Questions {
		if q.Questions[i].Type == "" {
			q.Questions[i].Type = TypeMCQ
		}
		if q.Questions[i].Points == 0 {
			q.Questions[i].Points = 1
		}
	}
}

// Redacted returns a copy safe for listing: the answer key and explanation
// are stripped from every question, everything else is kept.
func (q Quiz) Redacted() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		question.Key = AnswerKey{}
		question.Explanation = ""
		out.Questions[i] = question
	}
	return out
}

// RedactedForStudent reduces each question to the fields a quiz taker may
// see. Nothing that would leak the answer survives.
func (q Quiz) RedactedForStudent() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = Question{
			ID:      question.ID,
			Type:    question.Type,
			Prompt:  question.Prompt,
			Options: question.Options,
		}
	}
	return out
}

// SubmittedAnswer is one entry of a quiz submission.
type SubmittedAnswer struct {
	QuestionID     string      `json:"questionId"`
	SelectedAnswer AnswerValue `json:"selectedAnswer"`
}

// DetailedAnswer joins a submitted answer with the matched question, in the
// order answers were submitted. Report rendering consumes this order as-is.
type DetailedAnswer struct {
	QuestionID     string      `json:"questionId"`
	Prompt         string      `json:"question"`
	Options        []string    `json:"options,omitempty"`
	SelectedAnswer AnswerValue `json:"selectedAnswer"`
	CorrectAnswer  AnswerKey   `json:"correctAnswer"`
	IsCorrect      bool        `json:"isCorrect"`
	Explanation    string      `json:"explanation,omitempty"`
}

// GradingResult is the outcome of grading one submission against one quiz.
type GradingResult struct {
	Score           int              `json:"score"`
	TotalQuestions  int              `json:"totalQuestions"`
	Percentage      float64          `json:"percentage"`
	Passed          bool             `json:"passed"`
	DetailedAnswers []DetailedAnswer `json:"detailedAnswers"`
}

// AttemptAnswer is the per-question record kept on a stored attempt.
type AttemptAnswer struct {
	QuestionID     string      `json:"questionId"`
	SelectedAnswer AnswerValue `json:"selectedAnswer"`
	IsCorrect      bool        `json:"isCorrect"`
}

// Attempt is one completed quiz run, appended to the owning user. QuizID may
// dangle after the quiz is deleted; readers must degrade to placeholders.
type Attempt struct {
	ID             string          `json:"id"`
	QuizID         string          `json:"quizId"`
	Score          int             `json:"score"`
	TotalQuestions int             `json:"totalQuestions"`
	Percentage     float64         `json:"percentage"`
	CompletedAt    time.Time       `json:"completedAt"`
	Answers        []AttemptAnswer `json:"answers"`
}

// User owns an append-only list of attempts.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	Attempts  []Attempt `json:"attempts"`
}

// QuizLeaderboardEntry is one row of a per-quiz leaderboard. Every attempt
// produces a row; a user appears once per attempt.
type QuizLeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserID         string    `json:"userId"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	Percentage     float64   `json:"percentage"`
	CompletedAt    time.Time `json:"completedAt"`
}

// QuizLeaderboard pairs the board with the quiz it ranks.
type QuizLeaderboard struct {
	QuizID         string                 `json:"quizId"`
	QuizTitle      string                 `json:"quizTitle"`
	Category       string                 `json:"category"`
	TotalQuestions int                    `json:"totalQuestions"`
	Entries        []QuizLeaderboardEntry `json:"entries"`
}

// GlobalLeaderboardEntry aggregates one user's whole attempt history.
type GlobalLeaderboardEntry struct {
	Rank              int     `json:"rank"`
	UserID            string  `json:"userId"`
	Name              string  `json:"name"`
	Email             string  `json:"email"`
	TotalQuizzes      int     `json:"totalQuizzes"`
	TotalScore        int     `json:"totalScore"`
	TotalQuestions    int     `json:"totalQuestions"`
	AveragePercentage float64 `json:"averagePercentage"`
}

// UserStats is the dashboard summary for a single user.
type UserStats struct {
	TotalQuizzes      int       `json:"totalQuizzes"`
	TotalScore        int       `json:"totalScore"`
	TotalQuestions    int       `json:"totalQuestions"`
	AveragePercentage float64   `json:"averagePercentage"`
	RecentAttempts    []Attempt `json:"recentAttempts"`
}

// SubmissionSummary is a listing row for a stored attempt. Handle is the
// composite "userID|attemptID" key used to fetch the report.
type SubmissionSummary struct {
	Handle      string    `json:"handle"`
	Filename    string    `json:"filename"`
	StudentName string    `json:"studentName"`
	QuizTitle   string    `json:"quizTitle"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ReportUser identifies the student on a report.
type ReportUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ReportQuiz carries quiz metadata onto a report. A nil ReportQuiz on the
// bundle means the source quiz was deleted and the renderer must fall back
// to placeholders.
type ReportQuiz struct {
	Title      string     `json:"title"`
	Category   string     `json:"category"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
}

// SubmissionBundle is the read-only view handed to the report renderer.
type SubmissionBundle struct {
	User        ReportUser    `json:"user"`
	Quiz        *ReportQuiz   `json:"quiz"`
	Result      GradingResult `json:"result"`
	SubmittedAt time.Time     `json:"submittedAt"`
}
