package quiz

import (
	"fmt"
	"strings"
)

// Kind is the question type discriminant.
type Kind string

const (
	KindMCQ       Kind = "mcq"
	KindTrueFalse Kind = "true_false"
	KindInsertion Kind = "insertion"
	KindOpenEnded Kind = "open_ended"
)

func (k Kind) Valid() bool {
	switch k {
	case KindMCQ, KindTrueFalse, KindInsertion, KindOpenEnded:
		return true
	}
	return false
}

// MCQScoring selects how a multiple choice question is scored.
type MCQScoring string

const (
	ScoringDefault  MCQScoring = ""         // grader decides
	ScoringBinary   MCQScoring = "binary"   // all or nothing
	ScoringRational MCQScoring = "rational" // partial credit with penalty
)

type Option struct {
	ID      int64  `json:"id"`
	Text    string `json:"text"`
	Correct bool   `json:"correct,omitempty"`
}

type MCQ struct {
	Scoring MCQScoring `json:"scoring,omitempty"`
	Options []Option   `json:"options"`
}

type TrueFalse struct {
	Answer bool `json:"answer"`
}

type OpenEnded struct {
	Answer string `json:"answer,omitempty"`
}

// Fragment is one text piece of an insertion answer, placed at Position.
type Fragment struct {
	Position int    `json:"position"`
	Answer   string `json:"answer,omitempty"`
}

type Insertion struct {
	Text      string     `json:"insertion_text"`
	Fragments []Fragment `json:"fragments,omitempty"`
}

// Question is a tagged union: exactly one payload is set and it matches Kind.
type Question struct {
	ID     int64  `json:"id"`
	QuizID int64  `json:"quiz_id"`
	Text   string `json:"text"`
	Kind   Kind   `json:"type"`

	MCQ       *MCQ       `json:"mcq,omitempty"`
	TrueFalse *TrueFalse `json:"true_false,omitempty"`
	OpenEnded *OpenEnded `json:"open_ended,omitempty"`
	Insertion *Insertion `json:"insertion,omitempty"`
}

type Quiz struct {
	ID          int64      `json:"id"`
	Name        string     `json:"title"`
	Description string     `json:"description"`
	Topic       string     `json:"topic,omitempty"`
	CreatorID   int64      `json:"creator_id,omitempty"`
	Private     bool       `json:"private"`
	Ready       bool       `json:"ready"`
	CreatedAt   int64      `json:"created_at,omitempty"`
	Questions   []Question `json:"questions"`
}

type QuizSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"title"`
	Description string `json:"description"`
	Ready       bool   `json:"ready"`
}

// Take is one completed attempt; never updated after insert.
type Take struct {
	ID        int64   `json:"id"`
	QuizID    int64   `json:"quiz_id"`
	UserID    int64   `json:"user_id"`
	Points    float64 `json:"points"`
	CreatedAt int64   `json:"created_at"`
}

// Validate checks that the payload matches the kind and is usable for grading.
func (q Question) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("question text required")
	}
	if !q.Kind.Valid() {
		return fmt.Errorf("unknown question type %q", q.Kind)
	}
	set := 0
	for _, p := range []bool{q.MCQ != nil, q.TrueFalse != nil, q.OpenEnded != nil, q.Insertion != nil} {
		if p {
			set++
		}
	}
	if set != 1 {
		return fmt.Errorf("question must carry exactly one type payload, got %d", set)
	}
	switch q.Kind {
	case KindMCQ:
		if q.MCQ == nil {
			return fmt.Errorf("mcq payload missing")
		}
		if len(q.MCQ.Options) < 2 {
			return fmt.Errorf("mcq needs at least two options")
		}
		switch q.MCQ.Scoring {
		case ScoringDefault, ScoringBinary, ScoringRational:
		default:
			return fmt.Errorf("unknown mcq scoring %q", q.MCQ.Scoring)
		}
	case KindTrueFalse:
		if q.TrueFalse == nil {
			return fmt.Errorf("true_false payload missing")
		}
	case KindOpenEnded:
		if q.OpenEnded == nil {
			return fmt.Errorf("open_ended payload missing")
		}
	case KindInsertion:
		if q.Insertion == nil {
			return fmt.Errorf("insertion payload missing")
		}
		seen := make(map[int]struct{}, len(q.Insertion.Fragments))
		for _, f := range q.Insertion.Fragments {
			if f.Position < 0 {
				return fmt.Errorf("insertion position must not be negative")
			}
			if _, dup := seen[f.Position]; dup {
				return fmt.Errorf("duplicate insertion position %d", f.Position)
			}
			seen[f.Position] = struct{}{}
		}
	}
	return nil
}

func (q Quiz) Validate() error {
	if strings.TrimSpace(q.Name) == "" {
		return fmt.Errorf("missing field title")
	}
	if len(q.Questions) == 0 {
		return fmt.Errorf("need at least one question")
	}
	for i, question := range q.Questions {
		if err := question.Validate(); err != nil {
			return fmt.Errorf("question %d: %w", i, err)
		}
	}
	return nil
}

// Public returns a copy without answer keys, safe to serve to quiz takers.
func (q Quiz) Public() Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = question.Public()
	}
	return out
}

func (q Question) Public() Question {
	out := q
	switch {
	case q.MCQ != nil:
		m := MCQ{Options: make([]Option, len(q.MCQ.Options))}
		for i, o := range q.MCQ.Options {
			m.Options[i] = Option{ID: o.ID, Text: o.Text}
		}
		out.MCQ = &m
	case q.TrueFalse != nil:
		out.TrueFalse = nil
	case q.OpenEnded != nil:
		out.OpenEnded = &OpenEnded{}
	case q.Insertion != nil:
		ins := Insertion{Text: q.Insertion.Text}
		out.Insertion = &ins
	}
	return out
}

// OptionIDs returns the ids of all options of an MCQ question.
func (m MCQ) OptionIDs() map[int64]struct{} {
	ids := make(map[int64]struct{}, len(m.Options))
	for _, o := range m.Options {
		ids[o.ID] = struct{}{}
	}
	return ids
}
