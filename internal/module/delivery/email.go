package delivery

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"github.com/Ar-Aj/desi-prompts-backend2-sub000/internal/shared/metrics"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
)

// EmailSender delivers a rendered message to one recipient.
type EmailSender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPConfig holds email sender configuration.
type SMTPConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	FromAddress string
	FromName    string
	SendTimeout time.Duration
}

// SMTPEmailSender sends emails over SMTP. A circuit breaker sheds send
// attempts while the relay is down so webhook processing never queues
// up behind a dead SMTP connection.
type SMTPEmailSender struct {
	config  *SMTPConfig
	breaker *gobreaker.CircuitBreaker[any]
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSMTPEmailSender creates a new SMTP email sender.
func NewSMTPEmailSender(config *SMTPConfig, m *metrics.Metrics, logger *zap.Logger) *SMTPEmailSender {
	if config.SendTimeout <= 0 {
		config.SendTimeout = 5 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("smtp circuit state changed",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &SMTPEmailSender{
		config:  config,
		breaker: breaker,
		metrics: m,
		logger:  logger,
	}
}

// Send delivers one HTML email. The SMTP exchange runs in a goroutine
// bounded by the send timeout so a hung relay cannot hold the caller.
func (s *SMTPEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.sendWithTimeout(ctx, to, subject, htmlBody)
	})
	if err != nil {
		s.metrics.RecordEmail("smtp", false)
		s.logger.Error("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("send email: %w", err)
	}

	s.metrics.RecordEmail("smtp", true)
	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func (s *SMTPEmailSender) sendWithTimeout(ctx context.Context, to, subject, htmlBody string) error {
	from := s.config.FromAddress
	if s.config.FromName != "" {
		from = fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromAddress)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var auth smtp.Auth
	if s.config.User != "" && s.config.Password != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, s.config.FromAddress, []string{to}, []byte(msg))
	}()

	timer := time.NewTimer(s.config.SendTimeout)
	defer timer.Stop()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("smtp send timed out after %s", s.config.SendTimeout)
	}
}

// NoOpEmailSender logs instead of sending. Used in development.
type NoOpEmailSender struct {
	logger *zap.Logger
}

// NewNoOpEmailSender creates a no-op email sender.
func NewNoOpEmailSender(logger *zap.Logger) *NoOpEmailSender {
	return &NoOpEmailSender{logger: logger}
}

// Send logs but doesn't send.
func (s *NoOpEmailSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	s.logger.Info("email (no-op)",
		zap.String("to", to),
		zap.String("subject", subject))
	return nil
}

func renderTemplate(tmpl string, data interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
