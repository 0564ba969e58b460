package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/yamdb/yamdb-api/internal/core/ports"
	"github.com/yamdb/yamdb-api/internal/metrics"
)

const (
	defaultSMTPPort    = 25
	defaultSMTPTimeout = 10 * time.Second
)

// SMTPConfig addresses the relay. Username empty disables authentication.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	// TLS is "opportunistic" (default), "mandatory" or "none".
	TLS     string
	Timeout time.Duration
}

// SMTPTransport delivers mail through an SMTP relay. Every delivery opens its
// own connection bounded by the caller's context and the configured timeout.
type SMTPTransport struct {
	client *gomail.Client
	send   func(ctx context.Context, msg *gomail.Msg) error
	now    func() time.Time
}

func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	policy, err := tlsPolicy(cfg.TLS)
	if err != nil {
		return nil, err
	}
	port := cfg.Port
	if port == 0 {
		port = defaultSMTPPort
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultSMTPTimeout
	}

	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTimeout(timeout),
		gomail.WithTLSPolicy(policy),
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	t := &SMTPTransport{client: client, now: time.Now}
	t.send = func(ctx context.Context, m *gomail.Msg) error {
		return t.client.DialAndSendWithContext(ctx, m)
	}
	return t, nil
}

func tlsPolicy(name string) (gomail.TLSPolicy, error) {
	switch strings.ToLower(name) {
	case "", "opportunistic":
		return gomail.TLSOpportunistic, nil
	case "mandatory":
		return gomail.TLSMandatory, nil
	case "none":
		return gomail.NoTLS, nil
	}
	return gomail.NoTLS, fmt.Errorf("smtp tls policy %q: want opportunistic, mandatory or none", name)
}

func (t *SMTPTransport) Send(ctx context.Context, msg ports.MailMessage) error {
	if len(msg.To) == 0 {
		return errors.New("smtp: message has no recipients")
	}
	m, err := t.message(msg)
	if err != nil {
		metrics.MailSentTotal.WithLabelValues("smtp", "error").Inc()
		return err
	}

	if err := t.send(ctx, m); err != nil {
		metrics.MailSentTotal.WithLabelValues("smtp", "error").Inc()
		return fmt.Errorf("smtp send to %s: %w", strings.Join(msg.To, ","), err)
	}
	metrics.MailSentTotal.WithLabelValues("smtp", "ok").Inc()
	return nil
}

// message builds a plain-text message. Addresses are parsed, so a value
// carrying extra header lines is rejected rather than sent.
func (t *SMTPTransport) message(msg ports.MailMessage) (*gomail.Msg, error) {
	m := gomail.NewMsg()
	if err := m.From(msg.From); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", msg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return nil, fmt.Errorf("smtp to %v: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetDateWithValue(t.now())
	if msg.ID != "" {
		m.SetMessageIDWithValue(msg.ID + "@yamdb")
	}
	m.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return m, nil
}
