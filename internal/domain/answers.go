package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// QuestionType enumerates the supported question kinds. The type selects the
// answer-key shape a question carries and whether it is auto-gradable at all.
type QuestionType string

const (
	TypeMCQ            QuestionType = "mcq"
	TypeMultipleSelect QuestionType = "multiple-select"
	TypeTrueFalse      QuestionType = "true-false"
	TypeShortAnswer    QuestionType = "short-answer"
	TypeLongAnswer     QuestionType = "long-answer"
	TypeFillBlank      QuestionType = "fill-blank"
	TypeMatching       QuestionType = "matching"
	TypeOrdering       QuestionType = "ordering"
	TypeCodeOutput     QuestionType = "code-output"
	TypeCodeDebug      QuestionType = "code-debug"
	TypeCodeComplete   QuestionType = "code-complete"
	TypeCodeWrite      QuestionType = "code-write"
	TypeNumerical      QuestionType = "numerical"
	TypeFileUpload     QuestionType = "file-upload"
)

type answerKind int

const (
	answerNone answerKind = iota
	answerIndex
	answerIndexSet
	answerText
)

// keyShape maps a question type onto the shape of its answer key.
func (t QuestionType) keyShape() answerKind {
	switch t {
	case TypeMCQ, TypeTrueFalse:
		return answerIndex
	case TypeMultipleSelect, TypeMatching, TypeOrdering:
		return answerIndexSet
	case TypeFillBlank, TypeCodeOutput, TypeNumerical:
		return answerText
	default:
		return answerNone
	}
}

// Known reports whether t is part of the closed type set.
func (t QuestionType) Known() bool {
	switch t {
	case TypeMCQ, TypeMultipleSelect, TypeTrueFalse, TypeShortAnswer,
		TypeLongAnswer, TypeFillBlank, TypeMatching, TypeOrdering,
		TypeCodeOutput, TypeCodeDebug, TypeCodeComplete, TypeCodeWrite,
		TypeNumerical, TypeFileUpload:
		return true
	}
	return false
}

// Subjective reports whether the type is meant for manual review. Subjective
// questions carry no key and are never auto-scored as correct.
func (t QuestionType) Subjective() bool {
	return t.keyShape() == answerNone
}

// ChoiceStyle reports whether the type answers by indexing into Options.
func (t QuestionType) ChoiceStyle() bool {
	shape := t.keyShape()
	return shape == answerIndex || shape == answerIndexSet
}

// AnswerValue is a submitted answer in its native representation: an option
// index, a list of indexes, or free text. The zero value means "no answer"
// and never matches any key.
type AnswerValue struct {
	kind  answerKind
	index int
	set   []int
	text  string
}

// IndexValue builds an option-index answer.
func IndexValue(i int) AnswerValue { return AnswerValue{kind: answerIndex, index: i} }

// IndexSetValue builds an ordered index-list answer.
func IndexSetValue(indexes ...int) AnswerValue {
	return AnswerValue{kind: answerIndexSet, set: indexes}
}

// TextValue builds a free-text answer.
func TextValue(s string) AnswerValue { return AnswerValue{kind: answerText, text: s} }

// IsZero reports whether no answer was given.
func (v AnswerValue) IsZero() bool { return v.kind == answerNone }

// Index returns the option index when the answer has index shape.
func (v AnswerValue) Index() (int, bool) { return v.index, v.kind == answerIndex }

// IndexSet returns the index list when the answer has index-set shape.
func (v AnswerValue) IndexSet() ([]int, bool) { return v.set, v.kind == answerIndexSet }

// Text returns the text when the answer has text shape.
func (v AnswerValue) Text() (string, bool) { return v.text, v.kind == answerText }

// String renders the native representation for display.
func (v AnswerValue) String() string {
	switch v.kind {
	case answerIndex:
		return strconv.Itoa(v.index)
	case answerIndexSet:
		parts := make([]string, len(v.set))
		for i, n := range v.set {
			parts[i] = strconv.Itoa(n)
		}
		return strings.Join(parts, ", ")
	case answerText:
		return v.text
	default:
		return ""
	}
}

// UnmarshalJSON keeps the native wire representation: integers become index
// answers, integer arrays become index-set answers, strings become text.
// Anything else (null, bool, object, fractional number) decodes to the zero
// value, which never grades correct.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	*v = AnswerValue{}
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" || trimmed == "null" {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextValue(s)
	case '[':
		var nums []json.Number
		if err := json.Unmarshal(data, &nums); err != nil {
			return nil
		}
		set := make([]int, len(nums))
		for i, n := range nums {
			parsed, err := strconv.Atoi(n.String())
			if err != nil {
				return nil
			}
			set[i] = parsed
		}
		*v = IndexSetValue(set...)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil
		}
		parsed, err := strconv.Atoi(n.String())
		if err != nil {
			return nil
		}
		*v = IndexValue(parsed)
	}
	return nil
}

// MarshalJSON emits the native representation; "no answer" becomes null.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case answerIndex:
		return json.Marshal(v.index)
	case answerIndexSet:
		set := v.set
		if set == nil {
			set = []int{}
		}
		return json.Marshal(set)
	case answerText:
		return json.Marshal(v.text)
	default:
		return []byte("null"), nil
	}
}

// AnswerKey is the stored correct answer for a question: a tagged variant
// over the closed set of key shapes. The zero value marks subjective
// questions, which never match.
type AnswerKey struct {
	kind  answerKind
	index int
	set   []int
	text  string
}

// ChoiceKey builds a single-index key (mcq, true-false).
func ChoiceKey(i int) AnswerKey { return AnswerKey{kind: answerIndex, index: i} }

// ChoiceSetKey builds an ordered index-list key (multiple-select, matching,
// ordering).
func ChoiceSetKey(indexes ...int) AnswerKey {
	return AnswerKey{kind: answerIndexSet, set: indexes}
}

// TextKey builds an exact-text key (fill-blank, code-output, numerical).
func TextKey(s string) AnswerKey { return AnswerKey{kind: answerText, text: s} }

// IsZero reports whether the question carries no key.
func (k AnswerKey) IsZero() bool { return k.kind == answerNone }

// Index returns the option index for single-index keys.
func (k AnswerKey) Index() (int, bool) { return k.index, k.kind == answerIndex }

// IndexSet returns the index list for index-set keys.
func (k AnswerKey) IndexSet() ([]int, bool) { return k.set, k.kind == answerIndexSet }

// Text returns the stored text for text keys.
func (k AnswerKey) Text() (string, bool) { return k.text, k.kind == answerText }

// Matches applies strict equality of the native representation: same shape,
// same value. No coercion, no case folding, no trimming, no partial credit.
// Index-set keys require the same indexes in the same order.
func (k AnswerKey) Matches(v AnswerValue) bool {
	if k.kind == answerNone || k.kind != v.kind {
		return false
	}
	switch k.kind {
	case answerIndex:
		return k.index == v.index
	case answerIndexSet:
		if len(k.set) != len(v.set) {
			return false
		}
		for i := range k.set {
			if k.set[i] != v.set[i] {
				return false
			}
		}
		return true
	case answerText:
		return k.text == v.text
	}
	return false
}

// String renders the key for display.
func (k AnswerKey) String() string {
	return AnswerValue{kind: k.kind, index: k.index, set: k.set, text: k.text}.String()
}

// MarshalJSON emits the native representation; subjective keys become null.
func (k AnswerKey) MarshalJSON() ([]byte, error) {
	return AnswerValue{kind: k.kind, index: k.index, set: k.set, text: k.text}.MarshalJSON()
}

// decodeKey parses a raw correctAnswer into the shape the question type
// demands. Subjective types ignore whatever was supplied.
func decodeKey(t QuestionType, raw json.RawMessage) (AnswerKey, error) {
	shape := t.keyShape()
	if shape == answerNone || len(raw) == 0 {
		return AnswerKey{}, nil
	}
	var v AnswerValue
	if err := v.UnmarshalJSON(raw); err != nil {
		return AnswerKey{}, err
	}
	if v.kind != shape {
		if v.kind == answerNone && strings.TrimSpace(string(raw)) == "null" {
			return AnswerKey{}, nil
		}
		return AnswerKey{}, fmt.Errorf("correctAnswer has wrong shape for %q question", t)
	}
	return AnswerKey{kind: v.kind, index: v.index, set: v.set, text: v.text}, nil
}

// questionJSON is the wire form of Question. "question" is accepted as an
// alias for "prompt" so quiz documents authored for the original schema load
// unchanged.
type questionJSON struct {
	ID            string          `json:"id,omitempty"`
	Type          QuestionType    `json:"type,omitempty"`
	Prompt        string          `json:"prompt,omitempty"`
	PromptLegacy  string          `json:"question,omitempty"`
	Options       []string        `json:"options,omitempty"`
	CorrectAnswer json.RawMessage `json:"correctAnswer,omitempty"`
	Explanation   string          `json:"explanation,omitempty"`
	Points        int             `json:"points,omitempty"`
}

// UnmarshalJSON decodes a question, selecting the key shape by the type
// discriminant. An absent type defaults to mcq, matching the original schema.
func (q *Question) UnmarshalJSON(data []byte) error {
	var wire questionJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if wire.Type == "" {
		wire.Type = TypeMCQ
	}
	prompt := wire.Prompt
	if prompt == "" {
		prompt = wire.PromptLegacy
	}
	key, err := decodeKey(wire.Type, wire.CorrectAnswer)
	if err != nil {
		return err
	}
	*q = Question{
		ID:          wire.ID,
		Type:        wire.Type,
		Prompt:      prompt,
		Options:     wire.Options,
		Key:         key,
		Explanation: wire.Explanation,
		Points:      wire.Points,
	}
	return nil
}

// MarshalJSON emits the question with its key in native polymorphic form.
// Questions stripped by redaction marshal without a correctAnswer field.
func (q Question) MarshalJSON() ([]byte, error) {
	wire := questionJSON{
		ID:          q.ID,
		Type:        q.Type,
		Prompt:      q.Prompt,
		Options:     q.Options,
		Explanation: q.Explanation,
		Points:      q.Points,
	}
	if !q.Key.IsZero() {
		raw, err := q.Key.MarshalJSON()
		if err != nil {
			return nil, err
		}
		wire.CorrectAnswer = raw
	}
	return json.Marshal(wire)
}
