// Package queue consumes refresh triggers from NATS JetStream. The message
// payload carries no arguments; receiving one simply invokes the pipeline.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	streamName     = "INGESTION_JOBS"
	subjectRefresh = "ingestion.trending.refresh"
	subjectDLQ     = "ingestion.dlq"
	durableName    = "ingestion_trending"
)

type Worker struct {
	Log     *zap.Logger
	JS      nats.JetStreamContext
	Refresh func(ctx context.Context) (string, error)

	MaxDeliver int
}

func NewWorker(log *zap.Logger, nc *nats.Conn, refresh func(ctx context.Context) (string, error)) (*Worker, error) {
	js, err := nc.JetStream()
	if err != nil {
		return nil, err
	}
	return &Worker{Log: log, JS: js, Refresh: refresh, MaxDeliver: 5}, nil
}

func (w *Worker) EnsureStream(ctx context.Context) error {
	info, err := w.JS.StreamInfo(streamName)
	if err == nil {
		// Ensure subjects cover ingestion.>
		needsUpdate := true
		for _, s := range info.Config.Subjects {
			if s == "ingestion.>" {
				needsUpdate = false
				break
			}
		}
		if needsUpdate {
			cfg := info.Config
			cfg.Subjects = []string{"ingestion.>"}
			_, err := w.JS.UpdateStream(&cfg)
			return err
		}
		return nil
	}
	if !errors.Is(err, nats.ErrStreamNotFound) {
		return err
	}
	_, err = w.JS.AddStream(&nats.StreamConfig{
		Name:     streamName,
		Subjects: []string{"ingestion.>"},
		Storage:  nats.FileStorage,
		MaxAge:   7 * 24 * time.Hour,
	})
	return err
}

func (w *Worker) Run(ctx context.Context) error {
	if err := w.EnsureStream(ctx); err != nil {
		return err
	}

	sub, err := w.JS.PullSubscribe(subjectRefresh, durableName)
	if err != nil {
		return err
	}

	w.Log.Info("consumer started", zap.String("subject", subjectRefresh))
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := sub.Fetch(1, nats.MaxWait(2*time.Second))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) {
				continue
			}
			return err
		}
		for _, m := range msgs {
			_ = w.handleMsg(ctx, m)
		}
	}
}

func (w *Worker) handleMsg(ctx context.Context, m *nats.Msg) error {
	md, _ := m.Metadata()
	numDelivered := uint64(1)
	if md != nil {
		numDelivered = md.NumDelivered
	}

	if w.MaxDeliver > 0 && int(numDelivered) > w.MaxDeliver {
		w.Log.Error("dropping message to DLQ", zap.Uint64("deliveries", numDelivered))
		_ = w.publishDLQ(m.Data, fmt.Sprintf("max deliveries exceeded: %d", numDelivered))
		_ = m.Ack()
		return nil
	}

	status, err := w.Refresh(ctx)
	if err != nil {
		w.Log.Warn("trending refresh failed", zap.Uint64("attempt", numDelivered), zap.Error(err))
		_ = m.NakWithDelay(backoffDelay(numDelivered))
		return err
	}
	w.Log.Info("trending refresh done", zap.String("status", status))
	_ = m.Ack()
	return nil
}

func (w *Worker) publishDLQ(data []byte, reason string) error {
	msg, err := json.Marshal(map[string]any{
		"subject": subjectRefresh,
		"reason":  reason,
		"payload": string(data),
	})
	if err != nil {
		return err
	}
	_, err = w.JS.Publish(subjectDLQ, msg)
	return err
}
