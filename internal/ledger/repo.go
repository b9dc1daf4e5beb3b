package ledger

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema string

type Entry struct {
	EventID             string          `json:"event_id"`
	EventType           string          `json:"event_type"`
	CorrelationID       string          `json:"correlation_id"`
	Producer            string          `json:"producer"`
	OccurredAt          time.Time       `json:"occurred_at"`
	NeedsReconciliation bool            `json:"needs_reconciliation"`
	Reason              string          `json:"reason,omitempty"`
	Payload             json.RawMessage `json:"payload"`
	ResolvedAt          *time.Time      `json:"resolved_at,omitempty"`
}

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.Exec(ctx, schema)
	return err
}

// Record inserts e; an entry with the same event id is left untouched and
// inserted is false.
func (r *Repo) Record(ctx context.Context, e Entry) (inserted bool, err error) {
	ct, err := r.DB.Exec(ctx, `
		INSERT INTO ledger_entries(event_id, event_type, correlation_id, producer, occurred_at,
		                           needs_reconciliation, reason, payload)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (event_id) DO NOTHING`,
		e.EventID, e.EventType, e.CorrelationID, e.Producer, e.OccurredAt,
		e.NeedsReconciliation, e.Reason, []byte(e.Payload),
	)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// ListUnresolved returns the partially applied workflows still waiting for
// manual reconciliation, newest first.
func (r *Repo) ListUnresolved(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.DB.Query(ctx, `
		SELECT event_id, event_type, correlation_id, producer, occurred_at,
		       needs_reconciliation, reason, payload, resolved_at
		FROM ledger_entries
		WHERE needs_reconciliation AND resolved_at IS NULL
		ORDER BY occurred_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var e Entry
		var payload []byte
		if err := rows.Scan(&e.EventID, &e.EventType, &e.CorrelationID, &e.Producer, &e.OccurredAt,
			&e.NeedsReconciliation, &e.Reason, &payload, &e.ResolvedAt); err != nil {
			return nil, err
		}
		e.Payload = payload
		out = append(out, e)
	}
	return out, rows.Err()
}

// Resolve marks an open entry as reconciled. found is false when no open
// entry has that id.
func (r *Repo) Resolve(ctx context.Context, eventID string) (found bool, err error) {
	var id string
	err = r.DB.QueryRow(ctx, `
		UPDATE ledger_entries SET resolved_at = now()
		WHERE event_id = $1 AND needs_reconciliation AND resolved_at IS NULL
		RETURNING event_id`, eventID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
