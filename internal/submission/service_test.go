package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizcraft/internal/grading"
	"github.com/mind-engage/quizcraft/internal/quiz"
)

type fixture struct {
	store quiz.Store
	svc   *Service
	logs  *bytes.Buffer
	quiz  quiz.Quiz
	other quiz.Quiz
}

func newFixture(t *testing.T, opts ...grading.Option) *fixture {
	t.Helper()
	ctx := context.Background()
	store := quiz.NewMemoryStore()

	q, err := store.PutQuiz(ctx, quiz.Quiz{Name: "Mixed", Ready: true, Questions: []quiz.Question{
		{Text: "Pick two", Kind: quiz.KindMCQ, MCQ: &quiz.MCQ{Options: []quiz.Option{
			{Text: "a", Correct: true}, {Text: "b"}, {Text: "c", Correct: true}, {Text: "d"},
		}}},
		{Text: "Sky is blue", Kind: quiz.KindTrueFalse, TrueFalse: &quiz.TrueFalse{Answer: true}},
		{Text: "Capital of France", Kind: quiz.KindOpenEnded, OpenEnded: &quiz.OpenEnded{Answer: "Paris"}},
		{Text: "Order", Kind: quiz.KindInsertion, Insertion: &quiz.Insertion{Text: "_ _ _", Fragments: []quiz.Fragment{
			{Position: 0, Answer: "a"}, {Position: 1, Answer: "b"}, {Position: 2, Answer: "c"},
		}}},
		{Text: "Pick all", Kind: quiz.KindMCQ, MCQ: &quiz.MCQ{Scoring: quiz.ScoringRational, Options: []quiz.Option{
			{Text: "1", Correct: true}, {Text: "2", Correct: true},
			{Text: "3"}, {Text: "4"}, {Text: "5"}, {Text: "6"},
		}}},
	}})
	require.NoError(t, err)
	other, err := store.PutQuiz(ctx, quiz.Quiz{Name: "Other", Questions: []quiz.Question{
		{Text: "Other", Kind: quiz.KindTrueFalse, TrueFalse: &quiz.TrueFalse{Answer: false}},
	}})
	require.NoError(t, err)

	logs := &bytes.Buffer{}
	log := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	svc := NewService(store, grading.NewGrader(opts...), log)
	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	return &fixture{store: store, svc: svc, logs: logs, quiz: q, other: other}
}

func (f *fixture) opt(question, option int) int64 {
	return f.quiz.Questions[question].MCQ.Options[option].ID
}

func answer(id int64, v any) Answer {
	raw, _ := json.Marshal(v)
	return Answer{QuestionID: id, UserAnswer: raw}
}

func (f *fixture) takes(t *testing.T) []quiz.Take {
	t.Helper()
	list, err := f.store.ListTakes(context.Background(), quiz.TakeListOpts{})
	require.NoError(t, err)
	return list
}

func TestSubmit_ScoresAllKinds(t *testing.T) {
	f := newFixture(t)
	qs := f.quiz.Questions

	res, err := f.svc.Submit(context.Background(), f.quiz.ID, 11, []Answer{
		answer(qs[0].ID, []int64{f.opt(0, 2), f.opt(0, 0)}),
		answer(qs[1].ID, false),
		answer(qs[2].ID, "Paris"),
		answer(qs[3].ID, []string{"a", "b", "c"}),
		answer(qs[4].ID, []int64{f.opt(4, 0)}),
	})
	require.NoError(t, err)

	require.Len(t, res.ScoredAnswers, 5)
	scores := []float64{}
	for i, sa := range res.ScoredAnswers {
		assert.Equal(t, qs[i].ID, sa.QuestionID, "input order kept")
		scores = append(scores, sa.Score)
	}
	assert.Equal(t, []float64{1, 0, 1, 1, 0.25}, scores)
	assert.Equal(t, 3.25, res.TotalScore)
	assert.Equal(t, f.quiz.ID, res.QuizID)

	takes := f.takes(t)
	require.Len(t, takes, 1)
	assert.Equal(t, res.TakeID, takes[0].ID)
	assert.Equal(t, 3.25, takes[0].Points)
	assert.Equal(t, int64(11), takes[0].UserID)
	assert.Equal(t, int64(1700000000), takes[0].CreatedAt)
	assert.Contains(t, f.logs.String(), "submission scored")
}

func TestSubmit_RationalPolicyByDefault(t *testing.T) {
	f := newFixture(t, grading.WithDefaultMCQScoring(quiz.ScoringRational))
	res, err := f.svc.Submit(context.Background(), f.quiz.ID, 1, []Answer{
		answer(f.quiz.Questions[0].ID, []int64{f.opt(0, 0), f.opt(0, 1), f.opt(0, 2)}),
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.TotalScore, "binary would give 0")
}

func TestSubmit_EmptyAnswers(t *testing.T) {
	f := newFixture(t)
	res, err := f.svc.Submit(context.Background(), f.quiz.ID, 2, nil)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.TotalScore)
	assert.Empty(t, res.ScoredAnswers)
	assert.Len(t, f.takes(t), 1)
}

func TestSubmit_Rejections(t *testing.T) {
	cases := []struct {
		name    string
		answers func(f *fixture) []Answer
		quizID  func(f *fixture) int64
		want    error
	}{
		{
			name:    "unknown quiz",
			quizID:  func(f *fixture) int64 { return 9999 },
			answers: func(f *fixture) []Answer { return nil },
			want:    quiz.ErrNotFound,
		},
		{
			name:    "unknown question",
			answers: func(f *fixture) []Answer { return []Answer{answer(9999, true)} },
			want:    quiz.ErrNotFound,
		},
		{
			name: "question of another quiz",
			answers: func(f *fixture) []Answer {
				return []Answer{answer(f.quiz.Questions[1].ID, true), answer(f.other.Questions[0].ID, false)}
			},
			want: quiz.ErrInvalidReference,
		},
		{
			name: "option of another question",
			answers: func(f *fixture) []Answer {
				return []Answer{answer(f.quiz.Questions[0].ID, []int64{f.opt(4, 0)})}
			},
			want: quiz.ErrInvalidReference,
		},
		{
			name: "wrong shape after valid answers",
			answers: func(f *fixture) []Answer {
				return []Answer{answer(f.quiz.Questions[1].ID, true), answer(f.quiz.Questions[2].ID, 42)}
			},
			want: quiz.ErrMalformedAnswer,
		},
		{
			name: "string for bool",
			answers: func(f *fixture) []Answer {
				return []Answer{answer(f.quiz.Questions[1].ID, "true")}
			},
			want: quiz.ErrMalformedAnswer,
		},
		{
			name: "duplicate question",
			answers: func(f *fixture) []Answer {
				id := f.quiz.Questions[1].ID
				return []Answer{answer(id, true), answer(id, false)}
			},
			want: quiz.ErrMalformedAnswer,
		},
		{
			name: "missing answer",
			answers: func(f *fixture) []Answer {
				return []Answer{{QuestionID: f.quiz.Questions[1].ID}}
			},
			want: quiz.ErrMalformedAnswer,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			quizID := f.quiz.ID
			if tc.quizID != nil {
				quizID = tc.quizID(f)
			}
			_, err := f.svc.Submit(context.Background(), quizID, 1, tc.answers(f))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.Empty(t, f.takes(t), "no take on failure")
			assert.Contains(t, f.logs.String(), "submission rejected")
		})
	}
}

type brokenStore struct {
	quiz.Store
	question quiz.Question
	creates  int
}

func (b *brokenStore) GetQuestion(context.Context, int64) (quiz.Question, error) {
	return b.question, nil
}

func (b *brokenStore) CreateTake(ctx context.Context, t quiz.Take) (quiz.Take, error) {
	b.creates++
	return b.Store.CreateTake(ctx, t)
}

func TestSubmit_EvaluatorFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	// an mcq question whose payload went missing in storage
	bad := quiz.Question{ID: 500, QuizID: f.quiz.ID, Kind: quiz.KindMCQ}
	store := &brokenStore{Store: f.store, question: bad}
	svc := NewService(store, nil, slog.New(slog.NewTextHandler(f.logs, nil)))

	_, err := svc.Submit(context.Background(), f.quiz.ID, 1, []Answer{answer(500, []int64{1})})
	require.Error(t, err)
	assert.ErrorIs(t, err, quiz.ErrInternal)
	assert.Zero(t, store.creates)
	assert.Contains(t, f.logs.String(), "submission failed")
}

type failingTakes struct{ quiz.Store }

func (failingTakes) CreateTake(context.Context, quiz.Take) (quiz.Take, error) {
	return quiz.Take{}, errors.New("db down")
}

func TestSubmit_StoreFailure(t *testing.T) {
	f := newFixture(t)
	svc := NewService(failingTakes{f.store}, nil, nil)
	_, err := svc.Submit(context.Background(), f.quiz.ID, 1, []Answer{answer(f.quiz.Questions[1].ID, true)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestSubmit_KeepsInputOrder(t *testing.T) {
	f := newFixture(t)
	qs := f.quiz.Questions
	res, err := f.svc.Submit(context.Background(), f.quiz.ID, 3, []Answer{
		answer(qs[3].ID, []string{"a", "c", "b"}),
		answer(qs[1].ID, true),
		answer(qs[0].ID, []int64{f.opt(0, 0)}),
	})
	require.NoError(t, err)
	ids := []int64{}
	sum := 0.0
	for _, sa := range res.ScoredAnswers {
		ids = append(ids, sa.QuestionID)
		sum += sa.Score
	}
	assert.Equal(t, []int64{qs[3].ID, qs[1].ID, qs[0].ID}, ids)
	assert.Equal(t, sum, res.TotalScore)
	assert.Equal(t, 1.0, res.TotalScore)
}
