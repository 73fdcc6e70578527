package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/nestkeep/nestkeep-backend/internal/pkg/logger"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Config defines the SMTP configuration
type Config struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	UseTLS   bool   `mapstructure:"use_tls"`
}

// Validate validates the SMTP configuration
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("smtp host is required")
	}
	if c.From == "" {
		return errors.New("smtp from address is required")
	}
	return nil
}

// Mailer sends transactional email over SMTP
type Mailer struct {
	client *mail.Client
	config *Config
	logger *logger.Logger
}

// New creates a mailer
func New(cfg *Config, log *logger.Logger) (*Mailer, error) {
	if cfg == nil {
		return nil, errors.New("mailer config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid mailer configuration: %w", err)
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
	}
	if cfg.UseTLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create smtp client: %w", err)
	}

	return &Mailer{
		client: client,
		config: cfg,
		logger: log,
	}, nil
}

// SendInvite sends a household invitation email
func (m *Mailer) SendInvite(ctx context.Context, to, householdName, inviterName string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.config.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(fmt.Sprintf("You have been invited to the household %q", householdName))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"%s invited you to join the household %q on NestKeep.\n\n"+
			"Sign in (or register with this email address) to accept the invitation.\n",
		inviterName, householdName,
	))

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("failed to send invite email: %w", err)
	}

	m.logger.WithContext(ctx).Info("invitation email sent", zap.String("to", to))
	return nil
}
