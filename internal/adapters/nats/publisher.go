package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/accuritas/voyagemap/internal/core/domain"
)

const (
	requestSubjects = "maps.request.>"
	readySubjects   = "maps.ready.>"
	resultSubjects  = "maps.result.>"
)

// RequestSubject is the subject a request of type t is published on.
func RequestSubject(t domain.MessageType) string {
	return "maps.request." + t.Subject()
}

// ResultSubject is the subject the result of request id is published on.
func ResultSubject(requestID string) string {
	return "maps.result." + requestID
}

// ReadySubject is the subject announcing a finished map of kind.
func ReadySubject(kind domain.MapKind) string {
	return "maps.ready." + string(kind)
}

// TypeFromSubject returns the message type encoded in a request subject.
func TypeFromSubject(subject string) (domain.MessageType, error) {
	i := strings.LastIndexByte(subject, '.')
	return domain.ParseMessageType(subject[i+1:])
}

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and makes sure the map streams exist with
// the given number of replicas.
func NewPublisher(url string, replicas int) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	if replicas < 1 {
		replicas = 1
	}

	streams := []nats.StreamConfig{
		{
			Name:      "MAP_REQUESTS",
			Subjects:  []string{requestSubjects},
			Retention: nats.WorkQueuePolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
			Replicas:  replicas,
		},
		{
			Name:      "MAP_EVENTS",
			Subjects:  []string{readySubjects, resultSubjects},
			Retention: nats.LimitsPolicy,
			MaxAge:    24 * time.Hour,
			Storage:   nats.FileStorage,
			Replicas:  replicas,
		},
	}

	for _, cfg := range streams {
		if _, err := js.AddStream(&cfg); err != nil {
			if _, err := js.UpdateStream(&cfg); err != nil {
				return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
			}
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishMapReady announces a map whose viewport and layers are final.
func (p *Publisher) PublishMapReady(ctx context.Context, doc *domain.MapDocument) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ReadySubject(doc.Kind), data, nats.Context(ctx))
	return err
}

// PublishResult replies to a map request.
func (p *Publisher) PublishResult(ctx context.Context, result *domain.MapResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(ResultSubject(result.RequestID), data, nats.Context(ctx))
	return err
}

// PublishRequest enqueues a map request for the map worker.
func (p *Publisher) PublishRequest(ctx context.Context, req *domain.MapRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(RequestSubject(req.Type), data, nats.Context(ctx), nats.MsgId(req.ID))
	return err
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
