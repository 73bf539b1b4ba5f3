package quiz

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu        sync.RWMutex
	quizzes   map[int64]Quiz
	questions map[int64]Question
	takes     []Take
	seq       int64
}

func NewMemoryStore() Store {
	return &memoryStore{
		quizzes:   map[int64]Quiz{},
		questions: map[int64]Question{},
	}
}

func (m *memoryStore) next() int64 {
	m.seq++
	return m.seq
}

func (m *memoryStore) PutQuiz(_ context.Context, q Quiz) (Quiz, error) {
	if err := q.Validate(); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	q = cloneQuiz(q)
	q.ID = m.next()
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	for i := range q.Questions {
		question := &q.Questions[i]
		question.ID = m.next()
		question.QuizID = q.ID
		if question.MCQ != nil {
			for j := range question.MCQ.Options {
				question.MCQ.Options[j].ID = m.next()
			}
		}
		m.questions[question.ID] = cloneQuestion(*question)
	}
	m.quizzes[q.ID] = q
	return cloneQuiz(q), nil
}

func (m *memoryStore) GetQuiz(_ context.Context, id int64) (Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return Quiz{}, fmt.Errorf("quiz %d: %w", id, ErrNotFound)
	}
	return cloneQuiz(q), nil
}

func (m *memoryStore) ListQuizzes(_ context.Context, opts ListOpts) ([]QuizSummary, error) {
	if !opts.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalid, opts.Sort)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	onlyReady := opts.OnlyReady || opts.Sort == SortGenerations
	matched := make([]Quiz, 0, len(m.quizzes))
	for _, q := range m.quizzes {
		if q.Private && (opts.ViewerID == 0 || q.CreatorID != opts.ViewerID) {
			continue
		}
		if opts.CreatorID != 0 && q.CreatorID != opts.CreatorID {
			continue
		}
		if onlyReady && !q.Ready {
			continue
		}
		if !opts.inRange(q.CreatedAt) {
			continue
		}
		matched = append(matched, q)
	}

	switch opts.Sort {
	case SortPasses:
		passes := map[int64]int{}
		for _, t := range m.takes {
			if opts.inRange(t.CreatedAt) {
				passes[t.QuizID]++
			}
		}
		sort.Slice(matched, func(i, j int) bool {
			if pi, pj := passes[matched[i].ID], passes[matched[j].ID]; pi != pj {
				return pi > pj
			}
			return matched[i].ID > matched[j].ID
		})
	case SortGenerations:
		sort.Slice(matched, func(i, j int) bool {
			if matched[i].CreatedAt != matched[j].CreatedAt {
				return matched[i].CreatedAt > matched[j].CreatedAt
			}
			return matched[i].ID > matched[j].ID
		})
	default:
		sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })
	}

	limit, offset := normLimit(opts.Limit, opts.Offset)
	out := []QuizSummary{}
	for _, q := range matched {
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, QuizSummary{ID: q.ID, Name: q.Name, Description: q.Description, Ready: q.Ready})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memoryStore) GetQuestion(_ context.Context, id int64) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, fmt.Errorf("question %d: %w", id, ErrNotFound)
	}
	return cloneQuestion(q), nil
}

func (m *memoryStore) CreateTake(_ context.Context, t Take) (Take, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.quizzes[t.QuizID]; !ok {
		return Take{}, fmt.Errorf("quiz %d: %w", t.QuizID, ErrNotFound)
	}
	t.ID = m.next()
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	m.takes = append(m.takes, t)
	return t, nil
}

func (m *memoryStore) ListTakes(_ context.Context, opts TakeListOpts) ([]Take, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	limit, offset := normLimit(opts.Limit, opts.Offset)
	out := []Take{}
	for i := len(m.takes) - 1; i >= 0; i-- {
		t := m.takes[i]
		if opts.QuizID != 0 && t.QuizID != opts.QuizID {
			continue
		}
		if opts.UserID != 0 && t.UserID != opts.UserID {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func cloneQuiz(q Quiz) Quiz {
	out := q
	out.Questions = make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		out.Questions[i] = cloneQuestion(question)
	}
	return out
}

func cloneQuestion(q Question) Question {
	out := q
	if q.MCQ != nil {
		m := *q.MCQ
		m.Options = append([]Option(nil), q.MCQ.Options...)
		out.MCQ = &m
	}
	if q.TrueFalse != nil {
		tf := *q.TrueFalse
		out.TrueFalse = &tf
	}
	if q.OpenEnded != nil {
		oe := *q.OpenEnded
		out.OpenEnded = &oe
	}
	if q.Insertion != nil {
		ins := *q.Insertion
		ins.Fragments = append([]Fragment(nil), q.Insertion.Fragments...)
		out.Insertion = &ins
	}
	return out
}
