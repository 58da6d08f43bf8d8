package mail

import (
	"context"
	"crypto/tls"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
)

// SMTPConfig holds the relay connection details.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPMailer sends messages through an SMTP relay, upgrading to TLS when
// the server offers STARTTLS.
type SMTPMailer struct {
	config SMTPConfig
}

// NewSMTPMailer creates an SMTPMailer. A zero port means 587.
func NewSMTPMailer(config SMTPConfig) *SMTPMailer {
	if config.Port == 0 {
		config.Port = 587
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	return &SMTPMailer{config: config}
}

// Send implements Mailer.
func (s *SMTPMailer) Send(ctx context.Context, msg *Message) error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return s.fail(err, "failed to connect to mail server")
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, s.config.Host)
	if err != nil {
		conn.Close()
		return s.fail(err, "failed to start SMTP session")
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: s.config.Host, MinVersion: tls.VersionTLS12}); err != nil {
			return s.fail(err, "failed to start TLS")
		}
	}

	if s.config.Username != "" {
		auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)
		if err := client.Auth(auth); err != nil {
			return s.fail(err, "SMTP authentication failed")
		}
	}

	if err := client.Mail(msg.From.Address); err != nil {
		return s.fail(err, "mail server rejected sender")
	}
	if err := client.Rcpt(msg.To.Address); err != nil {
		return s.fail(err, "mail server rejected recipient")
	}

	w, err := client.Data()
	if err != nil {
		return s.fail(err, "failed to send message")
	}
	if _, err := w.Write(msg.Bytes()); err != nil {
		return s.fail(err, "failed to send message")
	}
	if err := w.Close(); err != nil {
		return s.fail(err, "failed to send message")
	}

	return client.Quit()
}

func (s *SMTPMailer) fail(err error, message string) error {
	return errors.Wrap(err, errors.ErrorTypeIO, errors.ErrCodeMailFailed, message).
		WithResource(s.config.Host)
}
