package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mind-engage/quizcraft/internal/db"
	syncx "github.com/mind-engage/quizcraft/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver db.Driver
	events *syncx.EventRepo
}

func NewSQLStore(dbh *sql.DB, driver db.Driver) *SQLStore {
	return &SQLStore{db: dbh, driver: driver, events: syncx.NewEventRepo("")}
}

// Ping lets readiness probes check the connection.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *SQLStore) PutQuiz(ctx context.Context, q Quiz) (Quiz, error) {
	if err := q.Validate(); err != nil {
		return Quiz{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	q = cloneQuiz(q)
	if q.CreatedAt == 0 {
		q.CreatedAt = time.Now().Unix()
	}
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO quizzes (name,description,topic,creator_id,private,ready,created_at)
			 VALUES ($1,$2,$3,$4,$5,$6,$7) RETURNING id`,
			q.Name, q.Description, q.Topic, q.CreatorID, q.Private, q.Ready, q.CreatedAt).Scan(&q.ID)
		if err != nil {
			return fmt.Errorf("insert quiz: %w", err)
		}
		for i := range q.Questions {
			if err := insertQuestion(ctx, tx, q.ID, i, &q.Questions[i]); err != nil {
				return fmt.Errorf("insert question %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return Quiz{}, err
	}
	return q, nil
}

func insertQuestion(ctx context.Context, tx *sql.Tx, quizID int64, ord int, q *Question) error {
	var (
		scoring   string
		tfAnswer  sql.NullBool
		openAns   sql.NullString
		insertion sql.NullString
	)
	switch q.Kind {
	case KindMCQ:
		scoring = string(q.MCQ.Scoring)
	case KindTrueFalse:
		tfAnswer = sql.NullBool{Bool: q.TrueFalse.Answer, Valid: true}
	case KindOpenEnded:
		openAns = sql.NullString{String: q.OpenEnded.Answer, Valid: true}
	case KindInsertion:
		insertion = sql.NullString{String: q.Insertion.Text, Valid: true}
	}
	q.QuizID = quizID
	err := tx.QueryRowContext(ctx,
		`INSERT INTO questions (quiz_id,ord,text,kind,mcq_scoring,tf_answer,open_answer,insertion_text)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8) RETURNING id`,
		quizID, ord, q.Text, string(q.Kind), scoring, tfAnswer, openAns, insertion).Scan(&q.ID)
	if err != nil {
		return err
	}
	switch q.Kind {
	case KindMCQ:
		for i := range q.MCQ.Options {
			o := &q.MCQ.Options[i]
			if err := tx.QueryRowContext(ctx,
				`INSERT INTO mcq_options (question_id,ord,text,correct) VALUES ($1,$2,$3,$4) RETURNING id`,
				q.ID, i, o.Text, o.Correct).Scan(&o.ID); err != nil {
				return err
			}
		}
	case KindInsertion:
		for _, f := range q.Insertion.Fragments {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO insertion_fragments (question_id,position,answer) VALUES ($1,$2,$3)`,
				q.ID, f.Position, f.Answer); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *SQLStore) GetQuiz(ctx context.Context, id int64) (Quiz, error) {
	var q Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id,name,description,topic,creator_id,private,ready,created_at FROM quizzes WHERE id=$1`, id).
		Scan(&q.ID, &q.Name, &q.Description, &q.Topic, &q.CreatorID, &q.Private, &q.Ready, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quiz{}, fmt.Errorf("quiz %d: %w", id, ErrNotFound)
		}
		return Quiz{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id,quiz_id,text,kind,mcq_scoring,tf_answer,open_answer,insertion_text
		 FROM questions WHERE quiz_id=$1 ORDER BY ord`, id)
	if err != nil {
		return Quiz{}, err
	}
	defer rows.Close()
	q.Questions = []Question{}
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return Quiz{}, err
		}
		q.Questions = append(q.Questions, question)
	}
	if err := rows.Err(); err != nil {
		return Quiz{}, err
	}
	rows.Close()

	for i := range q.Questions {
		if err := loadPayload(ctx, s.db, &q.Questions[i]); err != nil {
			return Quiz{}, err
		}
	}
	return q, nil
}

func (s *SQLStore) GetQuestion(ctx context.Context, id int64) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,quiz_id,text,kind,mcq_scoring,tf_answer,open_answer,insertion_text
		 FROM questions WHERE id=$1`, id)
	q, err := scanQuestion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, fmt.Errorf("question %d: %w", id, ErrNotFound)
		}
		return Question{}, err
	}
	if err := loadPayload(ctx, s.db, &q); err != nil {
		return Question{}, err
	}
	return q, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanQuestion(sc scanner) (Question, error) {
	var (
		q         Question
		kind      string
		scoring   string
		tfAnswer  sql.NullBool
		openAns   sql.NullString
		insertion sql.NullString
	)
	if err := sc.Scan(&q.ID, &q.QuizID, &q.Text, &kind, &scoring, &tfAnswer, &openAns, &insertion); err != nil {
		return Question{}, err
	}
	q.Kind = Kind(kind)
	switch q.Kind {
	case KindMCQ:
		q.MCQ = &MCQ{Scoring: MCQScoring(scoring)}
	case KindTrueFalse:
		q.TrueFalse = &TrueFalse{Answer: tfAnswer.Bool}
	case KindOpenEnded:
		q.OpenEnded = &OpenEnded{Answer: openAns.String}
	case KindInsertion:
		q.Insertion = &Insertion{Text: insertion.String}
	default:
		return Question{}, fmt.Errorf("question %d has unknown type %q: %w", q.ID, kind, ErrInternal)
	}
	return q, nil
}

// loadPayload fills the child rows of MCQ and insertion questions.
func loadPayload(ctx context.Context, qr queryRower, q *Question) error {
	switch q.Kind {
	case KindMCQ:
		rows, err := qr.QueryContext(ctx,
			`SELECT id,text,correct FROM mcq_options WHERE question_id=$1 ORDER BY ord`, q.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		q.MCQ.Options = []Option{}
		for rows.Next() {
			var o Option
			if err := rows.Scan(&o.ID, &o.Text, &o.Correct); err != nil {
				return err
			}
			q.MCQ.Options = append(q.MCQ.Options, o)
		}
		return rows.Err()
	case KindInsertion:
		rows, err := qr.QueryContext(ctx,
			`SELECT position,answer FROM insertion_fragments WHERE question_id=$1 ORDER BY position`, q.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var f Fragment
			if err := rows.Scan(&f.Position, &f.Answer); err != nil {
				return err
			}
			q.Insertion.Fragments = append(q.Insertion.Fragments, f)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		sort.SliceStable(q.Insertion.Fragments, func(i, j int) bool {
			return q.Insertion.Fragments[i].Position < q.Insertion.Fragments[j].Position
		})
	}
	return nil
}

func (s *SQLStore) ListQuizzes(ctx context.Context, opts ListOpts) ([]QuizSummary, error) {
	if !opts.Sort.Valid() {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalid, opts.Sort)
	}
	limit, offset := normLimit(opts.Limit, opts.Offset)
	where := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	inRange := func(col string) []string {
		var conds []string
		if opts.CreatedFrom != 0 {
			conds = append(conds, col+" >= "+arg(opts.CreatedFrom))
		}
		if opts.CreatedTo != 0 {
			conds = append(conds, col+" <= "+arg(opts.CreatedTo))
		}
		return conds
	}

	from := `quizzes q`
	order := `q.id DESC`
	switch opts.Sort {
	case SortPasses:
		// take counts per quiz; the join comes first so its args are numbered first
		takeWhere := ""
		if conds := inRange("created_at"); len(conds) > 0 {
			takeWhere = " WHERE " + strings.Join(conds, " AND ")
		}
		from = `quizzes q LEFT JOIN (SELECT quiz_id, COUNT(*) AS passes FROM takes` + takeWhere +
			` GROUP BY quiz_id) t ON t.quiz_id = q.id`
		order = `COALESCE(t.passes, 0) DESC, q.id DESC`
	case SortGenerations:
		order = `q.created_at DESC, q.id DESC`
	}

	if opts.ViewerID != 0 {
		where = append(where, "(q.private = "+arg(false)+" OR q.creator_id = "+arg(opts.ViewerID)+")")
	} else {
		where = append(where, "q.private = "+arg(false))
	}
	if opts.CreatorID != 0 {
		where = append(where, "q.creator_id = "+arg(opts.CreatorID))
	}
	if opts.OnlyReady || opts.Sort == SortGenerations {
		where = append(where, "q.ready = "+arg(true))
	}
	where = append(where, inRange("q.created_at")...)

	query := `SELECT q.id,q.name,q.description,q.ready FROM ` + from +
		` WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY ` + order + ` LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []QuizSummary{}
	for rows.Next() {
		var qs QuizSummary
		if err := rows.Scan(&qs.ID, &qs.Name, &qs.Description, &qs.Ready); err != nil {
			return nil, err
		}
		out = append(out, qs)
	}
	return out, rows.Err()
}

// CreateTake inserts the take and its take.created event in one transaction.
func (s *SQLStore) CreateTake(ctx context.Context, t Take) (Take, error) {
	if t.CreatedAt == 0 {
		t.CreatedAt = time.Now().Unix()
	}
	err := db.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		var exists int
		if err := tx.QueryRowContext(ctx, `SELECT 1 FROM quizzes WHERE id=$1`, t.QuizID).Scan(&exists); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("quiz %d: %w", t.QuizID, ErrNotFound)
			}
			return err
		}
		if err := tx.QueryRowContext(ctx,
			`INSERT INTO takes (quiz_id,user_id,points,created_at) VALUES ($1,$2,$3,$4) RETURNING id`,
			t.QuizID, t.UserID, t.Points, t.CreatedAt).Scan(&t.ID); err != nil {
			return fmt.Errorf("insert take: %w", err)
		}
		data, err := json.Marshal(t)
		if err != nil {
			return err
		}
		return s.events.Append(ctx, tx, syncx.Event{
			Type:      syncx.EventTakeCreated,
			Key:       strconv.FormatInt(t.ID, 10),
			DataJSON:  string(data),
			CreatedAt: t.CreatedAt,
		})
	})
	if err != nil {
		return Take{}, err
	}
	return t, nil
}

func (s *SQLStore) ListTakes(ctx context.Context, opts TakeListOpts) ([]Take, error) {
	limit, offset := normLimit(opts.Limit, opts.Offset)
	where := []string{"1=1"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if opts.QuizID != 0 {
		where = append(where, "quiz_id = "+arg(opts.QuizID))
	}
	if opts.UserID != 0 {
		where = append(where, "user_id = "+arg(opts.UserID))
	}
	query := `SELECT id,quiz_id,user_id,points,created_at FROM takes WHERE ` + strings.Join(where, " AND ") +
		` ORDER BY id DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Take{}
	for rows.Next() {
		var t Take
		if err := rows.Scan(&t.ID, &t.QuizID, &t.UserID, &t.Points, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
