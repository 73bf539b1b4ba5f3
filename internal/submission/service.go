package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mind-engage/quizcraft/internal/grading"
	"github.com/mind-engage/quizcraft/internal/quiz"
)

// Answer is one entry of a submission, as sent by the client.
type Answer struct {
	QuestionID int64           `json:"question_id"`
	UserAnswer json.RawMessage `json:"user_answer"`
}

// ScoredAnswer is the graded form of one Answer.
type ScoredAnswer struct {
	QuestionID int64
	Kind       quiz.Kind
	Score      float64
	Correct    grading.Value
	Submitted  grading.Value
}

type Result struct {
	QuizID        int64
	TakeID        int64
	TotalScore    float64
	ScoredAnswers []ScoredAnswer
}

type Service struct {
	store  quiz.Store
	grader *grading.Grader
	log    *slog.Logger
	now    func() time.Time
}

func NewService(store quiz.Store, grader *grading.Grader, log *slog.Logger) *Service {
	if grader == nil {
		grader = grading.NewGrader()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{store: store, grader: grader, log: log, now: time.Now}
}

type pending struct {
	question  quiz.Question
	submitted grading.Value
}

// Submit validates every answer, scores them in order and records one Take.
// Nothing is persisted unless all answers validate and score.
func (s *Service) Submit(ctx context.Context, quizID, userID int64, answers []Answer) (Result, error) {
	log := s.log.With("quiz_id", quizID, "user_id", userID)

	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return Result{}, s.reject(ctx, log, err)
	}

	checked := make([]pending, 0, len(answers))
	seen := make(map[int64]struct{}, len(answers))
	for _, a := range answers {
		p, err := s.check(ctx, quizID, a, seen)
		if err != nil {
			return Result{}, s.reject(ctx, log.With("question_id", a.QuestionID), err)
		}
		checked = append(checked, p)
	}

	scored := make([]ScoredAnswer, 0, len(checked))
	total := 0.0
	for _, p := range checked {
		out, err := s.grader.Grade(p.question, p.submitted)
		if err != nil {
			if !errors.Is(err, quiz.ErrInternal) {
				err = fmt.Errorf("%w: %v", quiz.ErrInternal, err)
			}
			return Result{}, s.reject(ctx, log.With("question_id", p.question.ID), err)
		}
		scored = append(scored, ScoredAnswer{
			QuestionID: p.question.ID,
			Kind:       p.question.Kind,
			Score:      out.Score,
			Correct:    out.Correct,
			Submitted:  p.submitted,
		})
		total += out.Score
	}

	take, err := s.store.CreateTake(ctx, quiz.Take{
		QuizID:    quizID,
		UserID:    userID,
		Points:    total,
		CreatedAt: s.now().Unix(),
	})
	if err != nil {
		return Result{}, s.reject(ctx, log, fmt.Errorf("record take: %w", err))
	}

	log.InfoContext(ctx, "submission scored", "take_id", take.ID, "total", total, "answers", len(scored))
	return Result{QuizID: quizID, TakeID: take.ID, TotalScore: total, ScoredAnswers: scored}, nil
}

func (s *Service) check(ctx context.Context, quizID int64, a Answer, seen map[int64]struct{}) (pending, error) {
	q, err := s.store.GetQuestion(ctx, a.QuestionID)
	if err != nil {
		return pending{}, err
	}
	if q.QuizID != quizID {
		return pending{}, fmt.Errorf("%w: question %d does not belong to quiz %d", quiz.ErrInvalidReference, q.ID, quizID)
	}
	if _, dup := seen[q.ID]; dup {
		return pending{}, fmt.Errorf("%w: question %d answered twice", quiz.ErrMalformedAnswer, q.ID)
	}
	seen[q.ID] = struct{}{}

	v, err := grading.ParseAnswer(q.Kind, a.UserAnswer)
	if err != nil {
		return pending{}, fmt.Errorf("question %d: %w", q.ID, err)
	}
	if set, ok := v.(grading.OptionSet); ok && q.MCQ != nil {
		valid := q.MCQ.OptionIDs()
		for _, id := range set {
			if _, ok := valid[id]; !ok {
				return pending{}, fmt.Errorf("%w: option %d is not part of question %d", quiz.ErrInvalidReference, id, q.ID)
			}
		}
	}
	return pending{question: q, submitted: v}, nil
}

func (s *Service) reject(ctx context.Context, log *slog.Logger, err error) error {
	if isClientError(err) {
		log.WarnContext(ctx, "submission rejected", "err", err)
	} else {
		log.ErrorContext(ctx, "submission failed", "err", err)
	}
	return err
}

func isClientError(err error) bool {
	return errors.Is(err, quiz.ErrNotFound) ||
		errors.Is(err, quiz.ErrInvalidReference) ||
		errors.Is(err, quiz.ErrMalformedAnswer)
}
