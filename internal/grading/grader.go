package grading

import (
	"fmt"

	"github.com/mind-engage/quizcraft/internal/quiz"
)

// Outcome is the result of grading one answer.
type Outcome struct {
	Score   float64
	Correct Value
}

// Grader maps a question to its answer key and scoring function.
type Grader struct {
	defaultMCQ    quiz.MCQScoring
	normalizeText bool
	byKind        map[quiz.Kind]func(q quiz.Question) Evaluator
}

// Grader options

type Option func(*config)

type config struct {
	DefaultMCQ    quiz.MCQScoring // used when a question does not choose
	NormalizeText bool            // casefold open-ended answers before comparing
}

func WithDefaultMCQScoring(s quiz.MCQScoring) Option { return func(c *config) { c.DefaultMCQ = s } }
func WithTextNormalization(b bool) Option           { return func(c *config) { c.NormalizeText = b } }

func NewGrader(opts ...Option) *Grader {
	cfg := &config{DefaultMCQ: quiz.ScoringBinary}
	for _, o := range opts {
		o(cfg)
	}
	if cfg.DefaultMCQ == quiz.ScoringDefault {
		cfg.DefaultMCQ = quiz.ScoringBinary
	}
	g := &Grader{defaultMCQ: cfg.DefaultMCQ, normalizeText: cfg.NormalizeText}
	g.byKind = map[quiz.Kind]func(q quiz.Question) Evaluator{
		quiz.KindMCQ:       g.mcq,
		quiz.KindTrueFalse: func(quiz.Question) Evaluator { return TrueFalse },
		quiz.KindOpenEnded: func(quiz.Question) Evaluator { return openEnded(g.normalizeText) },
		quiz.KindInsertion: func(quiz.Question) Evaluator { return Insertion },
	}
	return g
}

func (g *Grader) mcq(q quiz.Question) Evaluator {
	scoring := g.defaultMCQ
	if q.MCQ != nil && q.MCQ.Scoring != quiz.ScoringDefault {
		scoring = q.MCQ.Scoring
	}
	if scoring == quiz.ScoringRational && q.MCQ != nil {
		return RationalMCQ(len(q.MCQ.Options))
	}
	return BinaryMCQ
}

// Evaluator returns the scoring function bound to q's type.
func (g *Grader) Evaluator(q quiz.Question) (Evaluator, error) {
	build, ok := g.byKind[q.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: no evaluator for question type %q", quiz.ErrInternal, q.Kind)
	}
	return build(q), nil
}

// Grade scores submitted against q's answer key.
func (g *Grader) Grade(q quiz.Question, submitted Value) (Outcome, error) {
	correct, err := CorrectAnswer(q)
	if err != nil {
		return Outcome{}, err
	}
	eval, err := g.Evaluator(q)
	if err != nil {
		return Outcome{}, err
	}
	score, err := eval(correct, submitted)
	if err != nil {
		return Outcome{}, fmt.Errorf("question %d: %w", q.ID, err)
	}
	return Outcome{Score: score, Correct: correct}, nil
}
