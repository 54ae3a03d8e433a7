// Package notify delivers availability alerts over SMTP.
package notify

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"domainwatch/internal/checker"
)

// Payload carries the available subset of a run's results. It is built at
// most once per run and consumed exactly once.
type Payload struct {
	RunID       string
	GeneratedAt time.Time
	Available   []checker.Result
}

// Config holds the SMTP settings for a Mailer. From defaults to Username
// when empty.
type Config struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}

// Validate reports the settings that must be present before any send,
// named by their environment keys so the diagnostic points straight at
// the operator's configuration.
func (c Config) Validate() error {
	var missing []string
	if c.Server == "" {
		missing = append(missing, "SMTP_SERVER")
	}
	if c.Port == 0 {
		missing = append(missing, "SMTP_PORT")
	}
	if c.Username == "" {
		missing = append(missing, "SMTP_USER")
	}
	if c.Password == "" {
		missing = append(missing, "SMTP_PASSWORD")
	}
	if c.To == "" {
		missing = append(missing, "NOTIFY_EMAIL")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing SMTP settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Mailer sends one alert email per run.
type Mailer struct {
	cfg Config
}

// NewMailer creates a Mailer from explicit settings.
func NewMailer(cfg Config) *Mailer {
	return &Mailer{cfg: cfg}
}

// Notify sends a single email listing the available domains. An empty
// payload is a contract violation: callers skip notification when there is
// nothing to report.
func (m *Mailer) Notify(ctx context.Context, p Payload) error {
	if len(p.Available) == 0 {
		return errors.New("notification payload is empty")
	}
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	msg, err := m.newMessage(buildSubject(p))
	if err != nil {
		return err
	}
	msg.SetBodyString(mail.TypeTextPlain, buildTextBody(p))
	msg.AddAlternativeString(mail.TypeTextHTML, buildHTMLBody(p))

	return m.send(ctx, msg)
}

// SendTest sends a minimal probe message so operators can verify the SMTP
// settings without waiting for an availability hit.
func (m *Mailer) SendTest(ctx context.Context) error {
	if err := m.cfg.Validate(); err != nil {
		return err
	}

	msg, err := m.newMessage("domainwatch SMTP test")
	if err != nil {
		return err
	}
	msg.SetBodyString(mail.TypeTextPlain,
		"This is a test message from domainwatch. Your SMTP settings work.\n")

	return m.send(ctx, msg)
}

func (m *Mailer) newMessage(subject string) (*mail.Msg, error) {
	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("set sender %q: %w", from, err)
	}
	if err := msg.To(m.cfg.To); err != nil {
		return nil, fmt.Errorf("set recipient %q: %w", m.cfg.To, err)
	}
	msg.Subject(subject)
	return msg, nil
}

func (m *Mailer) send(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if m.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(m.cfg.Timeout))
	}
	if m.cfg.Port == 465 {
		// Implicit TLS port; everything else speaks STARTTLS.
		opts = append(opts, mail.WithSSL())
	}

	client, err := mail.NewClient(m.cfg.Server, opts...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send via %s:%d: %w", m.cfg.Server, m.cfg.Port, err)
	}
	return nil
}

func buildSubject(p Payload) string {
	return fmt.Sprintf("🎯 %d domain(s) available - %s",
		len(p.Available), p.GeneratedAt.Format("Jan 2"))
}

func buildTextBody(p Payload) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Found %d available domain(s) as of %s.\n\n",
		len(p.Available), p.GeneratedAt.Format(time.RFC1123))
	for _, r := range p.Available {
		b.WriteString(r.Domain)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nRun %s\n", p.RunID)
	return b.String()
}

func buildHTMLBody(p Payload) string {
	var b strings.Builder
	b.WriteString(`<html><body style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">`)
	b.WriteString(`<h1 style="color: #22c55e;">🎯 Domains available</h1>`)
	fmt.Fprintf(&b, `<p style="color: #666;">Found <strong>%d</strong> available domain(s)</p>`, len(p.Available))
	fmt.Fprintf(&b, `<p style="color: #999; font-size: 12px;">%s</p>`, p.GeneratedAt.Format("January 2, 2006 at 15:04 MST"))
	b.WriteString(`<ul style="list-style: none; padding: 0;">`)
	for _, r := range p.Available {
		fmt.Fprintf(&b, `<li style="background: #f0fdf4; border: 1px solid #22c55e; margin: 4px 0; padding: 4px 8px; border-radius: 4px; font-family: monospace;">%s</li>`,
			html.EscapeString(r.Domain))
	}
	b.WriteString(`</ul>`)
	fmt.Fprintf(&b, `<p style="color: #999; font-size: 12px;">Run %s</p>`, html.EscapeString(p.RunID))
	b.WriteString(`</body></html>`)
	return b.String()
}
