package grading

import (
	"fmt"
	"math"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

// Evaluator scores a submitted answer against the answer key.
type Evaluator func(correct, submitted Value) (float64, error)

func shapeError(want quiz.Kind, v Value) error {
	got := "nil"
	if v != nil {
		got = string(v.Kind())
	}
	return fmt.Errorf("%w: evaluator for %s got %s value", quiz.ErrInternal, want, got)
}

func optionSets(correct, submitted Value) (OptionSet, OptionSet, error) {
	c, ok := correct.(OptionSet)
	if !ok {
		return nil, nil, shapeError(quiz.KindMCQ, correct)
	}
	s, ok := submitted.(OptionSet)
	if !ok {
		return nil, nil, shapeError(quiz.KindMCQ, submitted)
	}
	return c, s, nil
}

// BinaryMCQ gives full credit only for the exact correct set.
func BinaryMCQ(correct, submitted Value) (float64, error) {
	c, s, err := optionSets(correct, submitted)
	if err != nil {
		return 0, err
	}
	if c.Equal(s) {
		return 1, nil
	}
	return 0, nil
}

// RationalMCQ returns the partial credit evaluator for a question with
// totalOptions options:
//
//	encouragement = |C∩S| / |C|
//	penalty       = (|C| - |C∩S|) / (totalOptions - |C|)
//	score         = max(0, encouragement - penalty)
//
// Both terms are 0 when their denominator is 0.
func RationalMCQ(totalOptions int) Evaluator {
	return func(correct, submitted Value) (float64, error) {
		c, s, err := optionSets(correct, submitted)
		if err != nil {
			return 0, err
		}
		correctNum := c.Intersect(s)
		encouragement := 0.0
		if len(c) != 0 {
			encouragement = float64(correctNum) / float64(len(c))
		}
		penalty := 0.0
		if totalOptions != len(c) {
			penalty = float64(len(c)-correctNum) / float64(totalOptions-len(c))
		}
		return math.Max(0, encouragement-penalty), nil
	}
}

func TrueFalse(correct, submitted Value) (float64, error) {
	c, ok := correct.(Flag)
	if !ok {
		return 0, shapeError(quiz.KindTrueFalse, correct)
	}
	s, ok := submitted.(Flag)
	if !ok {
		return 0, shapeError(quiz.KindTrueFalse, submitted)
	}
	if c == s {
		return 1, nil
	}
	return 0, nil
}

// OpenEnded compares strings byte for byte.
func OpenEnded(correct, submitted Value) (float64, error) {
	return openEnded(false)(correct, submitted)
}

func openEnded(fold bool) Evaluator {
	return func(correct, submitted Value) (float64, error) {
		c, ok := correct.(Text)
		if !ok {
			return 0, shapeError(quiz.KindOpenEnded, correct)
		}
		s, ok := submitted.(Text)
		if !ok {
			return 0, shapeError(quiz.KindOpenEnded, submitted)
		}
		if fold {
			c, s = Text(normalize(string(c))), Text(normalize(string(s)))
		}
		if c == s {
			return 1, nil
		}
		return 0, nil
	}
}

// Insertion is all or nothing: same length and same fragment at every position.
func Insertion(correct, submitted Value) (float64, error) {
	c, ok := correct.(Sequence)
	if !ok {
		return 0, shapeError(quiz.KindInsertion, correct)
	}
	s, ok := submitted.(Sequence)
	if !ok {
		return 0, shapeError(quiz.KindInsertion, submitted)
	}
	if len(c) != len(s) {
		return 0, nil
	}
	for i := range c {
		if c[i] != s[i] {
			return 0, nil
		}
	}
	return 1, nil
}
