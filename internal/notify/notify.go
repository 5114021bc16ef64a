// Package notify publishes build summaries to NATS so downstream consumers
// (deploy hooks, chat bots) can react to finished builds.
package notify

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/blogbuilder/internal/config"
	"git.home.luguber.info/inful/blogbuilder/internal/logfields"
	"git.home.luguber.info/inful/blogbuilder/internal/site"
)

const defaultSubject = "blogbuilder.builds"

// Publisher sends build summaries to a NATS subject.
type Publisher struct {
	conn    *nats.Conn
	subject string
}

// NewPublisher connects to the configured NATS server.
func NewPublisher(cfg *config.NATSConfig) (*Publisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, fmt.Errorf("nats configuration is required")
	}
	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	subject := cfg.Subject
	if subject == "" {
		subject = defaultSubject
	}
	slog.Info("build notifications enabled",
		logfields.URL(cfg.URL), slog.String("subject", subject))
	return &Publisher{conn: conn, subject: subject}, nil
}

// Publish sends one build summary. Failures are returned, not fatal; callers
// log and continue.
func (p *Publisher) Publish(s site.Summary) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	return nil
}

// Close flushes and closes the connection.
func (p *Publisher) Close() {
	if p.conn != nil {
		_ = p.conn.Flush()
		p.conn.Close()
	}
}
