// Package ledger records every workflow event and keeps track of the
// partially applied ones (an order without its stock change, a cancel
// without its restock) until someone reconciles them by hand.
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/redisx"
)

type Recorder interface {
	Record(ctx context.Context, e Entry) (bool, error)
}

type Service struct {
	Repo        Recorder
	Redis       *redis.Client // optional; dedups redeliveries before they reach Postgres
	ServiceName string
	Log         *zap.Logger
}

// reconciliationFlags is the part every workflow payload shares.
type reconciliationFlags struct {
	NeedsReconciliation bool   `json:"needs_reconciliation"`
	Reason              string `json:"reason"`
}

// HandleMessage is installed as the consumer handler for every workflow
// topic.
func (s *Service) HandleMessage(ctx context.Context, m kafkago.Message) error {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// A poison message would block the partition forever; drop it.
		log.Error("undecodable envelope", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	if env.EventID == "" {
		log.Warn("envelope without event id", zap.String("topic", m.Topic), zap.Int64("offset", m.Offset))
		return nil
	}

	dkey := redisx.DedupKey(s.ServiceName, env.EventID)
	if s.Redis != nil {
		first, err := redisx.MarkOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
		if err != nil {
			log.Warn("dedup unavailable, relying on postgres", zap.Error(err))
		} else if !first {
			return nil
		}
	}

	var flags reconciliationFlags
	if err := json.Unmarshal(env.Payload, &flags); err != nil {
		log.Warn("payload without reconciliation flags", zap.String("event_id", env.EventID), zap.Error(err))
	}

	entry := Entry{
		EventID:             env.EventID,
		EventType:           env.EventType,
		CorrelationID:       env.CorrelationID,
		Producer:            env.Producer,
		OccurredAt:          env.OccurredAt,
		NeedsReconciliation: flags.NeedsReconciliation,
		Reason:              flags.Reason,
		Payload:             env.Payload,
	}
	inserted, err := s.Repo.Record(ctx, entry)
	if err != nil {
		if s.Redis != nil {
			_ = redisx.Unmark(ctx, s.Redis, dkey)
		}
		return fmt.Errorf("record %s %s: %w", env.EventType, env.EventID, err)
	}

	fields := []zap.Field{
		zap.String("event_id", env.EventID),
		zap.String("event", env.EventType),
		zap.String("correlation_id", env.CorrelationID),
		zap.Bool("inserted", inserted),
	}
	if entry.NeedsReconciliation {
		log.Warn("workflow needs reconciliation", append(fields, zap.String("reason", entry.Reason))...)
	} else {
		log.Info("workflow recorded", fields...)
	}
	return nil
}
