// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Question kinds. Questions and answers form matching closed sets; an answer
// is structurally compatible with a question only when their kinds agree.
const (
	KindSingleChoice   = "single_choice"
	KindMultipleChoice = "multiple_choice"
	KindShortAnswer    = "short_answer"
	KindSubjective     = "subjective"
)

// Question is one survey question. The four variants form a closed set.
type Question interface {
	QuestionKind() string
	sealedQuestion()
}

// SingleChoiceQuestion offers options of which exactly one may be chosen.
type SingleChoiceQuestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options"`
}

func (SingleChoiceQuestion) QuestionKind() string { return KindSingleChoice }
func (SingleChoiceQuestion) sealedQuestion()      {}

// MultipleChoiceQuestion offers options of which any subset may be chosen.
type MultipleChoiceQuestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Options     []string `json:"options"`
}

func (MultipleChoiceQuestion) QuestionKind() string { return KindMultipleChoice }
func (MultipleChoiceQuestion) sealedQuestion()      {}

// ShortAnswerQuestion collects a short free-text reply.
type ShortAnswerQuestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (ShortAnswerQuestion) QuestionKind() string { return KindShortAnswer }
func (ShortAnswerQuestion) sealedQuestion()      {}

// SubjectiveQuestion collects a long-form free-text reply.
type SubjectiveQuestion struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

func (SubjectiveQuestion) QuestionKind() string { return KindSubjective }
func (SubjectiveQuestion) sealedQuestion()      {}

// Answer is one respondent answer. Kinds mirror the question variants.
type Answer interface {
	AnswerKind() string
	sealedAnswer()
}

// SingleChoiceAnswer carries a 1-based index into the question's options.
type SingleChoiceAnswer struct {
	Answer int `json:"answer"`
}

func (SingleChoiceAnswer) AnswerKind() string { return KindSingleChoice }
func (SingleChoiceAnswer) sealedAnswer()      {}

// MultipleChoiceAnswer carries 1-based indices into the question's options.
type MultipleChoiceAnswer struct {
	Answer []int `json:"answer"`
}

func (MultipleChoiceAnswer) AnswerKind() string { return KindMultipleChoice }
func (MultipleChoiceAnswer) sealedAnswer()      {}

// ShortAnswerAnswer carries the verbatim short reply.
type ShortAnswerAnswer struct {
	Answer string `json:"answer"`
}

func (ShortAnswerAnswer) AnswerKind() string { return KindShortAnswer }
func (ShortAnswerAnswer) sealedAnswer()      {}

// SubjectiveAnswer carries the verbatim long-form reply.
type SubjectiveAnswer struct {
	Answer string `json:"answer"`
}

func (SubjectiveAnswer) AnswerKind() string { return KindSubjective }
func (SubjectiveAnswer) sealedAnswer()      {}

// ErrLengthMismatch is returned when the answer list length differs from the
// question list length.
var ErrLengthMismatch = errors.New("answer count does not match question count")

// TypeMismatchError reports an answer whose kind disagrees with the question
// at the same position.
type TypeMismatchError struct {
	Position int
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("answer %d does not match the question type", e.Position)
}

// IndexOutOfRangeError reports a choice answer referencing an option index
// outside [1, len(options)].
type IndexOutOfRangeError struct {
	Position int
}

func (e *IndexOutOfRangeError) Error() string {
	return fmt.Sprintf("answer %d selects an option that does not exist", e.Position)
}

// Compatible reports whether the answer's kind matches the question's.
func Compatible(q Question, a Answer) bool {
	return q != nil && a != nil && q.QuestionKind() == a.AnswerKind()
}

// ValidateAnswerSet checks an answer list against a question list. Answers
// are matched positionally: answers[i] must be compatible with questions[i]
// and choice indices must be within the question's option range.
func ValidateAnswerSet(questions []Question, answers []Answer) error {
	if len(answers) != len(questions) {
		return ErrLengthMismatch
	}

	for i, q := range questions {
		a := answers[i]
		if !Compatible(q, a) {
			return &TypeMismatchError{Position: i}
		}

		switch ans := a.(type) {
		case SingleChoiceAnswer:
			n := len(q.(SingleChoiceQuestion).Options)
			if ans.Answer < 1 || ans.Answer > n {
				return &IndexOutOfRangeError{Position: i}
			}
		case MultipleChoiceAnswer:
			n := len(q.(MultipleChoiceQuestion).Options)
			for _, idx := range ans.Answer {
				if idx < 1 || idx > n {
					return &IndexOutOfRangeError{Position: i}
				}
			}
		}
	}
	return nil
}

// Questions is an ordered question list with tagged JSON encoding.
type Questions []Question

func (qs Questions) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(qs))
	for i, q := range qs {
		body, err := json.Marshal(q)
		if err != nil {
			return nil, err
		}
		tagged, err := addKind(body, q.QuestionKind())
		if err != nil {
			return nil, err
		}
		out[i] = tagged
	}
	return json.Marshal(out)
}

func (qs *Questions) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}

	out := make(Questions, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}

		var q Question
		var err error
		switch tag.Type {
		case KindSingleChoice:
			var v SingleChoiceQuestion
			err = json.Unmarshal(raw, &v)
			q = v
		case KindMultipleChoice:
			var v MultipleChoiceQuestion
			err = json.Unmarshal(raw, &v)
			q = v
		case KindShortAnswer:
			var v ShortAnswerQuestion
			err = json.Unmarshal(raw, &v)
			q = v
		case KindSubjective:
			var v SubjectiveQuestion
			err = json.Unmarshal(raw, &v)
			q = v
		default:
			return fmt.Errorf("question %d: unknown type %q", i, tag.Type)
		}
		if err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
		out = append(out, q)
	}

	*qs = out
	return nil
}

// Answers is an ordered answer list with tagged JSON encoding.
type Answers []Answer

func (as Answers) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, len(as))
	for i, a := range as {
		body, err := json.Marshal(a)
		if err != nil {
			return nil, err
		}
		tagged, err := addKind(body, a.AnswerKind())
		if err != nil {
			return nil, err
		}
		out[i] = tagged
	}
	return json.Marshal(out)
}

func (as *Answers) UnmarshalJSON(b []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(b, &raws); err != nil {
		return err
	}

	out := make(Answers, 0, len(raws))
	for i, raw := range raws {
		var tag struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(raw, &tag); err != nil {
			return fmt.Errorf("answer %d: %w", i, err)
		}

		var a Answer
		var err error
		switch tag.Type {
		case KindSingleChoice:
			var v SingleChoiceAnswer
			err = json.Unmarshal(raw, &v)
			a = v
		case KindMultipleChoice:
			var v MultipleChoiceAnswer
			err = json.Unmarshal(raw, &v)
			a = v
		case KindShortAnswer:
			var v ShortAnswerAnswer
			err = json.Unmarshal(raw, &v)
			a = v
		case KindSubjective:
			var v SubjectiveAnswer
			err = json.Unmarshal(raw, &v)
			a = v
		default:
			return fmt.Errorf("answer %d: unknown type %q", i, tag.Type)
		}
		if err != nil {
			return fmt.Errorf("answer %d: %w", i, err)
		}
		out = append(out, a)
	}

	*as = out
	return nil
}

// addKind injects the discriminator field into an encoded object.
func addKind(body []byte, kind string) (json.RawMessage, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, err
	}
	tag, _ := json.Marshal(kind)
	m["type"] = tag
	return json.Marshal(m)
}
