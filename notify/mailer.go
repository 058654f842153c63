package notify

import (
	"context"
	"errors"

	"github.com/samber/oops"
	"github.com/wneessen/go-mail"
)

// MailerConfig holds SMTP settings
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers messages over SMTP
type Mailer struct {
	from   string
	client *mail.Client
}

var _ Notifier = (*Mailer)(nil)

// NewMailer builds an SMTP mailer. Credentials are optional; when set PLAIN
// auth is used.
func NewMailer(cfg MailerConfig) (*Mailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("notify: smtp host is required")
	}
	if cfg.From == "" {
		return nil, errors.New("notify: sender address is required")
	}

	opts := []mail.Option{mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.Port > 0 {
		opts = append(opts, mail.WithPort(cfg.Port))
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, oops.Code("MAILER_INIT_FAILED").With("host", cfg.Host).Wrap(err)
	}

	return &Mailer{from: cfg.From, client: client}, nil
}

// Send implements Notifier
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return oops.Code("MAIL_BUILD_FAILED").With("field", "from").Wrap(err)
	}
	if err := out.To(msg.To); err != nil {
		return oops.Code("MAIL_BUILD_FAILED").With("field", "to").Wrap(err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		return oops.Code("MAIL_SEND_FAILED").With("subject", msg.Subject).Wrap(err)
	}
	return nil
}
