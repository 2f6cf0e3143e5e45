package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/accuritas/voyagemap/internal/core/domain"
	"github.com/accuritas/voyagemap/internal/core/ports"
	"github.com/accuritas/voyagemap/internal/pkg/metrics"
)

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// DecodeRequest parses a request message. The type defaults to the one in
// the subject and a missing id is generated.
func DecodeRequest(subject string, data []byte) (*domain.MapRequest, error) {
	var req domain.MapRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err)
	}
	if req.Type == "" {
		t, err := TypeFromSubject(subject)
		if err != nil {
			return nil, err
		}
		req.Type = t
	} else {
		t, err := domain.ParseMessageType(string(req.Type))
		if err != nil {
			return nil, err
		}
		req.Type = t
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	return &req, nil
}

// SubscribeMapRequests consumes requests from every request subject and
// publishes each handler result on the request's result subject. Messages
// that cannot be decoded are terminated; handler failures are redelivered.
func (s *Subscriber) SubscribeMapRequests(ctx context.Context, handler ports.MapRequestHandler) error {
	sub, err := s.js.Subscribe(requestSubjects, func(msg *nats.Msg) {
		req, err := DecodeRequest(msg.Subject, msg.Data)
		if err != nil {
			slog.Warn("dropping map request", "subject", msg.Subject, "error", err)
			metrics.NATSMessages.WithLabelValues("unknown", "rejected").Inc()
			_ = msg.Term()
			return
		}
		kind := string(req.Type)

		res, err := handler(ctx, req)
		if err != nil {
			slog.Error("map request failed", "id", req.ID, "type", kind, "error", err)
			metrics.NATSMessages.WithLabelValues(kind, "failed").Inc()
			_ = msg.Nak()
			return
		}
		if err := s.publishResult(ctx, res); err != nil {
			slog.Error("publish map result", "id", req.ID, "error", err)
			metrics.NATSMessages.WithLabelValues(kind, "failed").Inc()
			_ = msg.Nak()
			return
		}
		metrics.NATSMessages.WithLabelValues(kind, "processed").Inc()
		_ = msg.Ack()
	},
		nats.Durable("map-request-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// SubscribeMapReady consumes map-ready announcements of every kind.
func (s *Subscriber) SubscribeMapReady(ctx context.Context, handler func(ctx context.Context, doc *domain.MapDocument) error) error {
	sub, err := s.js.Subscribe(readySubjects, func(msg *nats.Msg) {
		var doc domain.MapDocument
		if err := json.Unmarshal(msg.Data, &doc); err != nil {
			_ = msg.Term()
			return
		}
		if err := handler(ctx, &doc); err != nil {
			_ = msg.Nak()
			return
		}
		_ = msg.Ack()
	},
		nats.Durable("map-ready-processor"),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

func (s *Subscriber) publishResult(ctx context.Context, res *domain.MapResult) error {
	if res == nil {
		return nil
	}
	data, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.js.Publish(ResultSubject(res.RequestID), data, nats.Context(ctx))
	return err
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
