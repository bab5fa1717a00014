package smtp

import (
	"context"
	"log/slog"

	"github.com/wneessen/go-mail"

	"github.com/dmehra2102/figurine-storefront/internal/notification/domain"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
	// STARTTLS is attempted but not required when false.
	RequireTLS bool
}

type Mailer struct {
	log    *slog.Logger
	cfg    Config
	client *mail.Client
}

func NewMailer(log *slog.Logger, cfg Config) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port), mail.WithTLSPolicy(mail.TLSOpportunistic)}
	if cfg.RequireTLS {
		opts[1] = mail.WithTLSPolicy(mail.TLSMandatory)
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}
	c, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, err
	}
	return &Mailer{log: log, cfg: cfg, client: c}, nil
}

func (m *Mailer) Send(ctx context.Context, msg domain.Message) error {
	mm, err := m.build(msg)
	if err != nil {
		return err
	}
	return m.client.DialAndSendWithContext(ctx, mm)
}

func (m *Mailer) build(msg domain.Message) (*mail.Msg, error) {
	mm := mail.NewMsg()
	if err := mm.FromFormat(m.cfg.FromName, m.cfg.From); err != nil {
		return nil, err
	}
	if err := mm.AddToFormat(msg.ToName, msg.To); err != nil {
		return nil, err
	}
	mm.Subject(msg.Subject)
	mm.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return mm, nil
}
