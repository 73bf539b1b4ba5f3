package quiz

import "context"

// ListSort orders quiz listings.
type ListSort string

const (
	SortNewest      ListSort = ""            // id desc
	SortPasses      ListSort = "passes"      // most takes first
	SortGenerations ListSort = "generations" // ready only, newest created first
)

func (s ListSort) Valid() bool {
	switch s {
	case SortNewest, SortPasses, SortGenerations:
		return true
	}
	return false
}

type ListOpts struct {
	ViewerID  int64 // private quizzes of this user are included
	CreatorID int64 // optional: only quizzes created by this user
	OnlyReady bool

	// Inclusive unix-second bounds on CreatedAt; 0 leaves a side open.
	// With SortPasses they also bound which takes are counted.
	CreatedFrom int64
	CreatedTo   int64
	Sort        ListSort

	Limit  int
	Offset int
}

func (o ListOpts) inRange(ts int64) bool {
	return (o.CreatedFrom == 0 || ts >= o.CreatedFrom) && (o.CreatedTo == 0 || ts <= o.CreatedTo)
}

type TakeListOpts struct {
	QuizID int64
	UserID int64
	Limit  int
	Offset int
}

// Store is the persistence boundary for quizzes, questions and takes.
// Implementations must be safe for concurrent use.
type Store interface {
	PutQuiz(ctx context.Context, q Quiz) (Quiz, error)
	GetQuiz(ctx context.Context, id int64) (Quiz, error) // full quiz, with answer keys
	ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error)

	GetQuestion(ctx context.Context, id int64) (Question, error)

	CreateTake(ctx context.Context, t Take) (Take, error)
	ListTakes(ctx context.Context, opts TakeListOpts) ([]Take, error)
}

func normLimit(limit, offset int) (int, int) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
