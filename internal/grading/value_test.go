package grading

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

func TestParseAnswer_Valid(t *testing.T) {
	cases := []struct {
		kind quiz.Kind
		raw  string
		want Value
	}{
		{quiz.KindMCQ, `[3, 1, 3]`, OptionSet{1, 3}},
		{quiz.KindMCQ, `[]`, OptionSet{}},
		{quiz.KindTrueFalse, `false`, Flag(false)},
		{quiz.KindTrueFalse, ` true `, Flag(true)},
		{quiz.KindOpenEnded, `"Paris "`, Text("Paris ")},
		{quiz.KindOpenEnded, `""`, Text("")},
		{quiz.KindInsertion, `["a","c","b"]`, Sequence{"a", "c", "b"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+" "+tc.raw, func(t *testing.T) {
			got, err := ParseAnswer(tc.kind, json.RawMessage(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.kind, got.Kind())
		})
	}
}

func TestParseAnswer_Malformed(t *testing.T) {
	cases := []struct {
		kind quiz.Kind
		raw  string
	}{
		{quiz.KindMCQ, `"1"`},
		{quiz.KindMCQ, `[1.5]`},
		{quiz.KindMCQ, `[1, null]`},
		{quiz.KindMCQ, `{"id": 1}`},
		{quiz.KindTrueFalse, `"true"`},
		{quiz.KindTrueFalse, `1`},
		{quiz.KindOpenEnded, `42`},
		{quiz.KindOpenEnded, `["Paris"]`},
		{quiz.KindInsertion, `"a b c"`},
		{quiz.KindInsertion, `["a", 2]`},
		{quiz.KindInsertion, `["a", null]`},
		{quiz.KindTrueFalse, `null`},
		{quiz.KindOpenEnded, ``},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind)+" "+tc.raw, func(t *testing.T) {
			_, err := ParseAnswer(tc.kind, json.RawMessage(tc.raw))
			require.Error(t, err)
			assert.ErrorIs(t, err, quiz.ErrMalformedAnswer)
		})
	}
}

func TestCorrectAnswer(t *testing.T) {
	mcq := quiz.Question{ID: 1, Kind: quiz.KindMCQ, MCQ: &quiz.MCQ{Options: []quiz.Option{
		{ID: 13, Correct: true}, {ID: 11}, {ID: 12, Correct: true},
	}}}
	got, err := CorrectAnswer(mcq)
	require.NoError(t, err)
	assert.Equal(t, OptionSet{12, 13}, got)

	ins := quiz.Question{ID: 2, Kind: quiz.KindInsertion, Insertion: &quiz.Insertion{Fragments: []quiz.Fragment{
		{Position: 2, Answer: "c"}, {Position: 0, Answer: "a"}, {Position: 1, Answer: "b"},
	}}}
	got, err = CorrectAnswer(ins)
	require.NoError(t, err)
	assert.Equal(t, Sequence{"a", "b", "c"}, got)

	_, err = CorrectAnswer(quiz.Question{ID: 3, Kind: quiz.KindTrueFalse})
	assert.ErrorIs(t, err, quiz.ErrInternal)
}

func TestWire(t *testing.T) {
	b, err := json.Marshal(map[string]any{
		"set":  OptionSet{}.Wire(),
		"flag": Flag(false).Wire(),
		"seq":  Sequence{"x"}.Wire(),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"set":[],"flag":false,"seq":["x"]}`, string(b))
}
