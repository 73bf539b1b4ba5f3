package syncx

import (
	"context"
	"database/sql"
	"time"
)

const EventTakeCreated = "take.created"

type Event struct {
	Seq       int64
	SiteID    string
	Type      string
	Key       string
	DataJSON  string
	CreatedAt int64
}

// Execer is satisfied by *sql.DB and *sql.Tx.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type EventRepo struct{ siteID string }

func NewEventRepo(siteID string) *EventRepo {
	if siteID == "" {
		siteID = "local"
	}
	return &EventRepo{siteID: siteID}
}

// Append writes e through x, so callers can put it in their own transaction.
func (r *EventRepo) Append(ctx context.Context, x Execer, e Event) error {
	if e.SiteID == "" {
		e.SiteID = r.siteID
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	_, err := x.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		e.SiteID, e.Type, e.Key, e.DataJSON, e.CreatedAt)
	return err
}
