package submission

import "github.com/mind-engage/quizcraft/internal/quiz"

// Record is the client-facing view of one scored answer.
type Record struct {
	QuestionID    int64   `json:"question_id"`
	Score         float64 `json:"score"`
	UserAnswer    any     `json:"user_answer,omitempty"`
	CorrectAnswer any     `json:"correct_answer,omitempty"`
}

// Payload is the wire form of a Result.
type Payload struct {
	QuizID        int64    `json:"quiz_id"`
	TakeID        int64    `json:"take_id"`
	TotalScore    float64  `json:"total_score"`
	ScoredAnswers []Record `json:"scored_answers"`
}

type projector func(sa ScoredAnswer) Record

func scoreOnly(sa ScoredAnswer) Record {
	return Record{QuestionID: sa.QuestionID, Score: sa.Score}
}

func withAnswers(sa ScoredAnswer) Record {
	r := scoreOnly(sa)
	if sa.Submitted != nil {
		r.UserAnswer = sa.Submitted.Wire()
	}
	if sa.Correct != nil {
		r.CorrectAnswer = sa.Correct.Wire()
	}
	return r
}

// Open-ended and insertion answers are not echoed back.
var projectors = map[quiz.Kind]projector{
	quiz.KindMCQ:       withAnswers,
	quiz.KindTrueFalse: withAnswers,
	quiz.KindOpenEnded: scoreOnly,
	quiz.KindInsertion: scoreOnly,
}

func Project(sa ScoredAnswer) Record {
	if p, ok := projectors[sa.Kind]; ok {
		return p(sa)
	}
	return scoreOnly(sa)
}

func (r Result) Wire() Payload {
	out := Payload{
		QuizID:        r.QuizID,
		TakeID:        r.TakeID,
		TotalScore:    r.TotalScore,
		ScoredAnswers: make([]Record, len(r.ScoredAnswers)),
	}
	for i, sa := range r.ScoredAnswers {
		out.ScoredAnswers[i] = Project(sa)
	}
	return out
}
