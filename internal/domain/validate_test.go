package domain

import "testing"

func validQuiz() Quiz {
	return Quiz{
		Title:      "Go Basics",
		Category:   "Programming",
		Difficulty: DifficultyEasy,
		Questions: []Question{
			{Type: TypeMCQ, Prompt: "Pick one", Options: []string{"a", "b"}, Key: ChoiceKey(1), Points: 1},
		},
	}
}

func TestValidateQuizAccepts(t *testing.T) {
	if err := ValidateQuiz(validQuiz()); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}
}

func TestValidateQuizRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Quiz)
	}{
		{"missing title", func(q *Quiz) { q.Title = "" }},
		{"bad difficulty", func(q *Quiz) { q.Difficulty = "extreme" }},
		{"no questions", func(q *Quiz) { q.Questions = nil }},
		{"missing prompt", func(q *Quiz) { q.Questions[0].Prompt = "" }},
		{"unknown type", func(q *Quiz) { q.Questions[0].Type = "essay" }},
		{"negative points", func(q *Quiz) { q.Questions[0].Points = -1 }},
		{"too few options", func(q *Quiz) { q.Questions[0].Options = []string{"a"} }},
		{"key out of range", func(q *Quiz) { q.Questions[0].Key = ChoiceKey(5) }},
		{"choice question without key", func(q *Quiz) { q.Questions[0].Key = AnswerKey{} }},
		{"set key out of range", func(q *Quiz) {
			q.Questions[0].Type = TypeMultipleSelect
			q.Questions[0].Key = ChoiceSetKey(0, 9)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			quiz := validQuiz()
			tc.mutate(&quiz)
			err := ValidateQuiz(quiz)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation kind, got %v (%v)", KindOf(err), err)
			}
		})
	}
}

func TestValidateQuizAllowsTextAndSubjectiveQuestions(t *testing.T) {
	quiz := validQuiz()
	quiz.Questions = append(quiz.Questions,
		Question{Type: TypeFillBlank, Prompt: "Capital of France?", Key: TextKey("Paris"), Points: 1},
		Question{Type: TypeShortAnswer, Prompt: "Explain interfaces", Points: 2},
	)
	if err := ValidateQuiz(quiz); err != nil {
		t.Fatalf("expected valid quiz, got %v", err)
	}
}

func TestApplyDefaults(t *testing.T) {
	quiz := Quiz{
		Title:     "Bare",
		Questions: []Question{{Prompt: "Pick", Options: []string{"a", "b"}, Key: ChoiceKey(0)}},
	}
	quiz.ApplyDefaults()
	if quiz.Category != "General" || quiz.Difficulty != DifficultyMedium || quiz.TimeLimit != 30 {
		t.Fatalf("quiz defaults not applied: %+v", quiz)
	}
	if quiz.Questions[0].Type != TypeMCQ || quiz.Questions[0].Points != 1 {
		t.Fatalf("question defaults not applied: %+v", quiz.Questions[0])
	}
}
