package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/donazulmira/moradores-backend/pkg/config"
	"github.com/wneessen/go-mail"
)

// PasswordReset is the data needed to deliver a recovery link.
type PasswordReset struct {
	To       string
	Name     string
	Token    string
	ValidFor time.Duration
}

// Sender delivers transactional e-mail.
type Sender interface {
	SendPasswordReset(ctx context.Context, msg PasswordReset) error
}

type dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPMailer sends e-mail through an SMTP relay.
type SMTPMailer struct {
	from        string
	frontendURL string
	client      dialer
}

// NewSMTP builds a mailer from the SMTP settings. Credentials are optional;
// without them the relay is used unauthenticated.
func NewSMTP(cfg config.MailConfig) (*SMTPMailer, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from address is required")
	}

	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}
	if cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}
	return newWithDialer(cfg, client), nil
}

func newWithDialer(cfg config.MailConfig, client dialer) *SMTPMailer {
	return &SMTPMailer{
		from:        cfg.From,
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		client:      client,
	}
}

// SendPasswordReset renders and sends the recovery e-mail. The caller bounds
// the send with ctx.
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, msg PasswordReset) error {
	if strings.TrimSpace(msg.To) == "" || msg.Token == "" {
		return errors.New("recipient and token are required")
	}

	html, text, err := renderReset(resetView{
		Name:     msg.Name,
		ResetURL: ResetURL(m.frontendURL, msg.Token),
		ValidFor: humanDuration(msg.ValidFor),
	})
	if err != nil {
		return fmt.Errorf("render reset e-mail: %w", err)
	}

	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("invalid recipient: %w", err)
	}
	out.Subject(resetSubject)
	out.SetBodyString(mail.TypeTextPlain, text)
	out.AddAlternativeString(mail.TypeTextHTML, html)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return fmt.Errorf("send reset e-mail: %w", err)
	}
	return nil
}

// ResetURL builds the frontend link carrying the reset token.
func ResetURL(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

func humanDuration(d time.Duration) string {
	switch {
	case d <= 0 || d == time.Hour:
		return "1 hora"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d horas", int(d/time.Hour))
	default:
		return fmt.Sprintf("%d minutos", int(d/time.Minute))
	}
}
