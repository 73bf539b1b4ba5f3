package grading

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

// Value is an answer in the shape its question kind expects. The same
// types carry both the answer key and the submitted answer.
type Value interface {
	Kind() quiz.Kind
	// Wire returns the JSON form used in results.
	Wire() any
}

// OptionSet is a sorted, duplicate-free set of option ids.
type OptionSet []int64

// Flag is a true/false answer.
type Flag bool

// Text is an open-ended answer.
type Text string

// Sequence is an ordered list of insertion fragments.
type Sequence []string

func (OptionSet) Kind() quiz.Kind { return quiz.KindMCQ }
func (Flag) Kind() quiz.Kind      { return quiz.KindTrueFalse }
func (Text) Kind() quiz.Kind      { return quiz.KindOpenEnded }
func (Sequence) Kind() quiz.Kind  { return quiz.KindInsertion }

func (s OptionSet) Wire() any {
	out := make([]int64, len(s))
	copy(out, s)
	return out
}
func (f Flag) Wire() any { return bool(f) }
func (t Text) Wire() any { return string(t) }
func (s Sequence) Wire() any {
	out := make([]string, len(s))
	copy(out, s)
	return out
}

// NewOptionSet sorts and de-duplicates ids.
func NewOptionSet(ids ...int64) OptionSet {
	seen := make(map[int64]struct{}, len(ids))
	out := make(OptionSet, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s OptionSet) Contains(id int64) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

func (s OptionSet) Equal(o OptionSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

// Intersect counts the ids present in both sets.
func (s OptionSet) Intersect(o OptionSet) int {
	n := 0
	for _, id := range o {
		if s.Contains(id) {
			n++
		}
	}
	return n
}

// ParseAnswer decodes a submitted answer for the given kind. Anything that is
// not exactly the expected JSON shape is ErrMalformedAnswer.
func ParseAnswer(kind quiz.Kind, raw json.RawMessage) (Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, fmt.Errorf("%w: user_answer is required", quiz.ErrMalformedAnswer)
	}
	switch kind {
	case quiz.KindMCQ:
		var raw []*int64
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("%w: mcq answer must be a list of option ids", quiz.ErrMalformedAnswer)
		}
		ids := make([]int64, len(raw))
		for i, id := range raw {
			if id == nil {
				return nil, fmt.Errorf("%w: option id %d is null", quiz.ErrMalformedAnswer, i)
			}
			ids[i] = *id
		}
		return NewOptionSet(ids...), nil
	case quiz.KindTrueFalse:
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return nil, fmt.Errorf("%w: true/false answer must be a boolean", quiz.ErrMalformedAnswer)
		}
		return Flag(b), nil
	case quiz.KindOpenEnded:
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil, fmt.Errorf("%w: open-ended answer must be a string", quiz.ErrMalformedAnswer)
		}
		return Text(s), nil
	case quiz.KindInsertion:
		var parts []*string
		if err := json.Unmarshal(trimmed, &parts); err != nil {
			return nil, fmt.Errorf("%w: insertion answer must be a list of strings", quiz.ErrMalformedAnswer)
		}
		seq := make(Sequence, len(parts))
		for i, p := range parts {
			if p == nil {
				return nil, fmt.Errorf("%w: insertion fragment %d is null", quiz.ErrMalformedAnswer, i)
			}
			seq[i] = *p
		}
		return seq, nil
	default:
		return nil, fmt.Errorf("%w: unknown question type %q", quiz.ErrInternal, kind)
	}
}

// CorrectAnswer returns the answer key of q.
func CorrectAnswer(q quiz.Question) (Value, error) {
	switch q.Kind {
	case quiz.KindMCQ:
		if q.MCQ == nil {
			break
		}
		ids := make([]int64, 0, len(q.MCQ.Options))
		for _, o := range q.MCQ.Options {
			if o.Correct {
				ids = append(ids, o.ID)
			}
		}
		return NewOptionSet(ids...), nil
	case quiz.KindTrueFalse:
		if q.TrueFalse == nil {
			break
		}
		return Flag(q.TrueFalse.Answer), nil
	case quiz.KindOpenEnded:
		if q.OpenEnded == nil {
			break
		}
		return Text(q.OpenEnded.Answer), nil
	case quiz.KindInsertion:
		if q.Insertion == nil {
			break
		}
		frags := append([]quiz.Fragment(nil), q.Insertion.Fragments...)
		sort.SliceStable(frags, func(i, j int) bool { return frags[i].Position < frags[j].Position })
		seq := make(Sequence, len(frags))
		for i, f := range frags {
			seq[i] = f.Answer
		}
		return seq, nil
	}
	return nil, fmt.Errorf("%w: question %d has no %q payload", quiz.ErrInternal, q.ID, q.Kind)
}
