package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	netmail "net/mail"
	"net/url"
	"strings"

	"github.com/conneroisu/coachsite/internal/mail"
)

// maxContactBody bounds the size of a contact form submission.
const maxContactBody = 64 << 10

// contactFields holds the decoded form values keyed by field name.
type contactFields map[string]string

func (f contactFields) first(keys ...string) string {
	for _, k := range keys {
		if v, ok := f[k]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// parseContactBody accepts a JSON object and falls back to form encoding
// for anything else.
func parseContactBody(body []byte) contactFields {
	fields := make(contactFields)

	var obj map[string]interface{}
	if err := json.Unmarshal(body, &obj); err == nil && obj != nil {
		for k, v := range obj {
			switch v := v.(type) {
			case string:
				fields[k] = v
			case nil:
			case float64, bool:
				fields[k] = fmt.Sprint(v)
			}
		}
		return fields
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return fields
	}
	for k := range values {
		fields[k] = values.Get(k)
	}
	return fields
}

// honeypotFilled reports whether the hidden website field carries a value.
// "0" counts as empty, like an unchecked box.
func honeypotFilled(fields contactFields) bool {
	v := fields["website"]
	return v != "" && v != "0"
}

func validEmail(s string) bool {
	addr, err := netmail.ParseAddress(s)
	return err == nil && addr.Name == "" && addr.Address == s
}

func (s *Server) handleContact(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ctx := r.Context()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxContactBody+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if len(body) > maxContactBody {
		writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}
	fields := parseContactBody(bytes.TrimSpace(body))

	if honeypotFilled(fields) {
		s.logger.Info(ctx, "Contact submission dropped by honeypot")
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	sub := mail.Submission{
		Name:    fields.first("from_name", "name"),
		Email:   fields.first("from_email", "email"),
		Phone:   fields.first("phone"),
		Service: fields.first("service_interest", "serviceInterest"),
		Message: fields.first("message"),
	}
	if sub.Name == "" || sub.Email == "" || sub.Message == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields")
		return
	}
	if !validEmail(sub.Email) {
		writeError(w, http.StatusBadRequest, "Invalid email")
		return
	}

	var id string
	if s.inbox != nil {
		id, err = s.inbox.Record(ctx, sub)
		if err != nil {
			s.logger.Error(ctx, err, "Failed to record enquiry")
		}
	}

	msg, err := mail.Compose(s.mailSettings(r), sub)
	if err == nil {
		err = s.mailer.Send(ctx, msg)
	}
	if err != nil {
		s.logger.Error(ctx, err, "Failed to send enquiry", "enquiry_id", id)
		if id != "" {
			if markErr := s.inbox.MarkFailed(ctx, id, err); markErr != nil {
				s.logger.Warn(ctx, markErr, "Failed to update enquiry", "enquiry_id", id)
			}
		}
		writeSiteError(w, err, "Failed to send message")
		return
	}

	if id != "" {
		if markErr := s.inbox.MarkSent(ctx, id); markErr != nil {
			s.logger.Warn(ctx, markErr, "Failed to update enquiry", "enquiry_id", id)
		}
	}
	s.logger.Info(ctx, "Enquiry sent", "enquiry_id", id, "to", msg.To.Address)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Message sent",
	})
}

// mailSettings addresses enquiries to the configured recipient, or to the
// contact email published in the site configuration.
func (s *Server) mailSettings(r *http.Request) mail.Settings {
	cfg := s.config.Contact
	recipient := cfg.Recipient
	if recipient == "" {
		recipient = s.content.LoadSiteConfig(r.Context()).Contact.Email
	}
	return mail.Settings{
		Recipient:   recipient,
		FromAddress: cfg.FromAddress,
		FromName:    cfg.FromName,
		Subject:     cfg.Subject,
	}
}
