// Package mail composes contact form enquiries and delivers them to the
// coach, either over SMTP or to the log during development.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/mail"
	"strings"
	"time"

	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/logging"
)

// DefaultSubject is used when no subject is configured.
const DefaultSubject = "New website enquiry"

// Submission is a validated contact form entry.
type Submission struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Service string `json:"serviceInterest,omitempty"`
	Message string `json:"message"`
}

// Body renders the plain text enquiry sent to the coach.
func (s Submission) Body() string {
	phone := s.Phone
	if phone == "" {
		phone = "Not provided"
	}
	service := s.Service
	if service == "" {
		service = "Not specified"
	}

	var b strings.Builder
	b.WriteString("New contact form submission\n\n")
	fmt.Fprintf(&b, "Name: %s\n", s.Name)
	fmt.Fprintf(&b, "Email: %s\n", s.Email)
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	fmt.Fprintf(&b, "Service interest: %s\n\n", service)
	fmt.Fprintf(&b, "Message:\n%s\n", s.Message)
	return b.String()
}

// Settings control how enquiries are addressed.
type Settings struct {
	Recipient   string
	FromAddress string
	FromName    string
	Subject     string
}

// Message is an outgoing plain text email.
type Message struct {
	From    mail.Address
	To      mail.Address
	ReplyTo mail.Address
	Subject string
	Body    string
	Date    time.Time
}

// Compose addresses a submission. The sender defaults to the visitor when no
// From address or name is configured; replies always go to the visitor.
func Compose(settings Settings, sub Submission) (*Message, error) {
	if settings.Recipient == "" {
		return nil, errors.NewConfigError(errors.ErrCodeConfigInvalid, "contact recipient is not configured")
	}
	to, err := mail.ParseAddress(settings.Recipient)
	if err != nil {
		return nil, errors.WrapConfig(err, errors.ErrCodeConfigInvalid, "contact recipient is not an email address")
	}
	from := mail.Address{Name: sub.Name, Address: sub.Email}
	if settings.FromAddress != "" {
		from.Address = settings.FromAddress
	}
	if settings.FromName != "" {
		from.Name = settings.FromName
	}
	subject := settings.Subject
	if subject == "" {
		subject = DefaultSubject
	}
	return &Message{
		From:    from,
		To:      *to,
		ReplyTo: mail.Address{Name: sub.Name, Address: sub.Email},
		Subject: subject,
		Body:    sub.Body(),
		Date:    time.Now(),
	}, nil
}

// Bytes renders the message in RFC 5322 form with CRLF line endings.
func (m *Message) Bytes() []byte {
	var buf bytes.Buffer
	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, stripNewlines(v))
	}
	header("From", m.From.String())
	header("To", m.To.String())
	header("Reply-To", m.ReplyTo.String())
	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", m.Date.Format(time.RFC1123Z))
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=UTF-8")
	header("Content-Transfer-Encoding", "8bit")
	buf.WriteString("\r\n")

	body := strings.ReplaceAll(m.Body, "\r\n", "\n")
	buf.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return buf.Bytes()
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", "", "\n", "").Replace(s)
}

// Mailer delivers a message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

// LogMailer writes messages to the log instead of sending them.
type LogMailer struct {
	logger logging.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger logging.Logger) *LogMailer {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &LogMailer{logger: logger.WithComponent("mail")}
}

// Send implements Mailer.
func (l *LogMailer) Send(ctx context.Context, msg *Message) error {
	l.logger.Info(ctx, "Contact enquiry (not sent, no SMTP host configured)",
		"to", msg.To.Address,
		"reply_to", msg.ReplyTo.Address,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
