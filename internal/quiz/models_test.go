package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleQuiz() Quiz {
	return Quiz{
		Name:        "Geography",
		Description: "capitals and rivers",
		Topic:       "geo",
		CreatorID:   42,
		Ready:       true,
		Questions: []Question{
			{Text: "Pick the capitals", Kind: KindMCQ, MCQ: &MCQ{Scoring: ScoringRational, Options: []Option{
				{Text: "Paris", Correct: true}, {Text: "Lyon"}, {Text: "Rome", Correct: true}, {Text: "Milan"},
			}}},
			{Text: "The Nile is in Africa", Kind: KindTrueFalse, TrueFalse: &TrueFalse{Answer: true}},
			{Text: "Capital of Japan", Kind: KindOpenEnded, OpenEnded: &OpenEnded{Answer: "Tokyo"}},
			{Text: "Fill in", Kind: KindInsertion, Insertion: &Insertion{
				Text:      "The ___ flows through ___.",
				Fragments: []Fragment{{Position: 1, Answer: "Cairo"}, {Position: 0, Answer: "Nile"}},
			}},
		},
	}
}

func TestQuestionValidate(t *testing.T) {
	tf := &TrueFalse{Answer: true}
	cases := []struct {
		name string
		q    Question
		ok   bool
	}{
		{"true_false", Question{Text: "x", Kind: KindTrueFalse, TrueFalse: tf}, true},
		{"empty text", Question{Text: "  ", Kind: KindTrueFalse, TrueFalse: tf}, false},
		{"unknown kind", Question{Text: "x", Kind: "essay", TrueFalse: tf}, false},
		{"no payload", Question{Text: "x", Kind: KindTrueFalse}, false},
		{"two payloads", Question{Text: "x", Kind: KindTrueFalse, TrueFalse: tf, OpenEnded: &OpenEnded{}}, false},
		{"payload of other kind", Question{Text: "x", Kind: KindMCQ, TrueFalse: tf}, false},
		{"mcq one option", Question{Text: "x", Kind: KindMCQ, MCQ: &MCQ{Options: []Option{{Text: "a"}}}}, false},
		{"mcq bad scoring", Question{Text: "x", Kind: KindMCQ, MCQ: &MCQ{Scoring: "half", Options: []Option{{}, {}}}}, false},
		{"insertion dup position", Question{Text: "x", Kind: KindInsertion, Insertion: &Insertion{
			Fragments: []Fragment{{Position: 0}, {Position: 0}}}}, false},
		{"insertion negative", Question{Text: "x", Kind: KindInsertion, Insertion: &Insertion{
			Fragments: []Fragment{{Position: -1}}}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestQuizValidate(t *testing.T) {
	require.NoError(t, sampleQuiz().Validate())

	q := sampleQuiz()
	q.Name = ""
	assert.Error(t, q.Validate())

	q = sampleQuiz()
	q.Questions = nil
	assert.Error(t, q.Validate())
}

func TestQuizPublic(t *testing.T) {
	q := sampleQuiz()
	pub := q.Public()

	for _, o := range pub.Questions[0].MCQ.Options {
		assert.False(t, o.Correct)
	}
	assert.Nil(t, pub.Questions[1].TrueFalse)
	assert.Empty(t, pub.Questions[2].OpenEnded.Answer)
	assert.Empty(t, pub.Questions[3].Insertion.Fragments)
	assert.Equal(t, "The ___ flows through ___.", pub.Questions[3].Insertion.Text)

	// the source keeps its keys
	assert.True(t, q.Questions[0].MCQ.Options[0].Correct)
	assert.Equal(t, "Tokyo", q.Questions[2].OpenEnded.Answer)
}
