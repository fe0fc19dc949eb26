package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/logging"
	"github.com/soyeahso/agentdesk/internal/version"
)

// Publisher is the subset of *nats.Conn used for publishing.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// Envelope is the JSON body published for each notification.
type Envelope struct {
	SessionID   string    `json:"sessionId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}

// NATSNotifier publishes notifications to a NATS subject.
type NATSNotifier struct {
	pub     Publisher
	subject string
	conn    *nats.Conn
	log     *logging.Logger
	now     func() time.Time
}

// NewNATSNotifier publishes through an existing publisher.
func NewNATSNotifier(pub Publisher, subject string, log *logging.Logger) *NATSNotifier {
	if subject == "" {
		subject = config.DefaultNATSSubject
	}
	return &NATSNotifier{
		pub:     pub,
		subject: subject,
		log:     log.Sub("notify.nats"),
		now:     time.Now,
	}
}

// DialNATS connects to the server in cfg and returns a notifier that owns
// the connection. Close releases it.
func DialNATS(cfg config.NATSConfig, log *logging.Logger) (*NATSNotifier, error) {
	log = log.Sub("notify.nats")
	opts := []nats.Option{
		nats.Name(version.Name()),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("NATS disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}
	if cfg.Token != "" {
		opts = append(opts, nats.Token(cfg.Token))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS: %w", err)
	}
	n := NewNATSNotifier(nc, cfg.Subject, log)
	n.conn = nc
	n.log = log
	log.Info().Str("url", cfg.URL).Str("subject", n.subject).Msg("connected to NATS")
	return n, nil
}

func (n *NATSNotifier) Notify(_ context.Context, sessionID string, note domain.Notification) {
	data, err := json.Marshal(Envelope{
		SessionID:   sessionID,
		Title:       note.Title,
		Description: note.Description,
		Timestamp:   n.now().UTC(),
	})
	if err != nil {
		n.log.Error().Err(err).Msg("failed to encode notification")
		return
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		n.log.Warn().Err(err).Str("subject", n.subject).Msg("failed to publish notification")
	}
}

// Subject returns the subject notifications are published to.
func (n *NATSNotifier) Subject() string { return n.subject }

// Close drains and closes the connection opened by DialNATS.
func (n *NATSNotifier) Close() error {
	if n.conn == nil {
		return nil
	}
	return n.conn.Drain()
}
