package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/conneroisu/coachsite/internal/config"
	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/conneroisu/coachsite/internal/inbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validEnquiry = `{"name":"Jane Doe","email":"jane@example.com","phone":"+49 30 1234","serviceInterest":"Career coaching","message":"I would like to talk."}`

func openInbox(t *testing.T) *inbox.Store {
	t.Helper()
	store, err := inbox.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestContactRejectsOtherMethods(t *testing.T) {
	srv := newTestServer(t, Options{})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := doRequest(t, srv.Handler(), method, "/contact", "")
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, method)
		resp := decode[errorResponse](t, rec)
		assert.False(t, resp.Success)
		assert.Equal(t, "Method not allowed", resp.Error)
	}
}

func TestContactSendsJSONEnquiry(t *testing.T) {
	mailer := &fakeMailer{}
	store := openInbox(t)
	cfg := testConfig(t, func(c *config.Config) { c.Contact.Recipient = "Andrea <andrea@example.com>" })
	srv := newTestServer(t, Options{Config: cfg, Mailer: mailer, Inbox: store})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry, "Content-Type", "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.JSONEq(t, `{"success":true,"message":"Message sent"}`, rec.Body.String())

	sent := mailer.messages()
	require.Len(t, sent, 1)
	msg := sent[0]
	assert.Equal(t, "andrea@example.com", msg.To.Address)
	assert.Equal(t, "jane@example.com", msg.ReplyTo.Address)
	assert.Equal(t, "New website enquiry", msg.Subject)
	assert.Contains(t, msg.Body, "Name: Jane Doe\n")
	assert.Contains(t, msg.Body, "Phone: +49 30 1234\n")
	assert.Contains(t, msg.Body, "Service interest: Career coaching\n")
	assert.Contains(t, msg.Body, "I would like to talk.")

	entries, err := store.List(context.Background(), inbox.StatusSent)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Jane Doe", entries[0].Submission.Name)
}

func TestContactAcceptsFormEncodedAliases(t *testing.T) {
	mailer := &fakeMailer{}
	srv := newTestServer(t, Options{Mailer: mailer})

	body := "from_name=+Max+Muster+&from_email=max%40example.com&service_interest=Workshop&message=Hello"
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact.php", body, "Content-Type", "application/x-www-form-urlencoded")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Body, "Name: Max Muster\n")
	assert.Contains(t, sent[0].Body, "Phone: Not provided\n")
	assert.Contains(t, sent[0].Body, "Service interest: Workshop\n")
}

func TestContactFallsBackToSiteContactEmail(t *testing.T) {
	mailer := &fakeMailer{}
	srv := newTestServer(t, Options{Mailer: mailer})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry)
	require.Equal(t, http.StatusOK, rec.Code)

	sent := mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "coaching@andreagray.de", sent[0].To.Address)
}

func TestContactHoneypot(t *testing.T) {
	mailer := &fakeMailer{}
	store := openInbox(t)
	srv := newTestServer(t, Options{Mailer: mailer, Inbox: store})

	body := `{"name":"Bot","email":"bot@example.com","message":"spam","website":"http://spam.example.com"}`
	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", body)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Empty(t, mailer.messages())

	entries, err := store.List(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestContactValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", "", "Missing required fields"},
		{"missing name", `{"email":"a@example.com","message":"hi"}`, "Missing required fields"},
		{"blank message", `{"name":"A","email":"a@example.com","message":"   "}`, "Missing required fields"},
		{"missing email", "name=A&message=hi", "Missing required fields"},
		{"malformed email", `{"name":"A","email":"not-an-email","message":"hi"}`, "Invalid email"},
		{"display name email", `{"name":"A","email":"A <a@example.com>","message":"hi"}`, "Invalid email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mailer := &fakeMailer{}
			srv := newTestServer(t, Options{Mailer: mailer})

			rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decode[errorResponse](t, rec).Error)
			assert.Empty(t, mailer.messages())
		})
	}
}

func TestContactSendFailure(t *testing.T) {
	cause := errors.NewIOError(errors.ErrCodeMailFailed, "failed to connect to mail server", nil)
	mailer := &fakeMailer{err: cause}
	store := openInbox(t)
	srv := newTestServer(t, Options{Mailer: mailer, Inbox: store})

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decode[errorResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "failed to connect to mail server", resp.Error)

	entries, err := store.List(context.Background(), inbox.StatusFailed)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Error, "failed to connect to mail server")
}

func TestContactRateLimit(t *testing.T) {
	cfg := testConfig(t, func(c *config.Config) { c.Contact.RateLimit = 2 })
	srv := newTestServer(t, Options{Config: cfg})

	for i := 0; i < 2; i++ {
		rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))

	// Other clients and other routes are unaffected.
	rec = doRequest(t, srv.Handler(), http.MethodPost, "/contact", validEnquiry, "X-Real-IP", "203.0.113.9")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(t, srv.Handler(), http.MethodGet, "/api/site", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParseContactBody(t *testing.T) {
	tests := []struct {
		name string
		body string
		want contactFields
	}{
		{"json", `{"name":"A","website":""}`, contactFields{"name": "A", "website": ""}},
		{"json scalars", `{"website":0,"consent":true,"phone":null}`, contactFields{"website": "0", "consent": "true"}},
		{"form", "name=A+B&message=hi%21", contactFields{"name": "A B", "message": "hi!"}},
		{"json array falls back to form", `["a"]`, contactFields{`["a"]`: ""}},
		{"empty", "", contactFields{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseContactBody([]byte(tt.body)))
		})
	}
}

func TestHoneypotFilled(t *testing.T) {
	assert.False(t, honeypotFilled(contactFields{}))
	assert.False(t, honeypotFilled(contactFields{"website": ""}))
	assert.False(t, honeypotFilled(contactFields{"website": "0"}))
	assert.True(t, honeypotFilled(contactFields{"website": "x"}))
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("jane@example.com"))
	assert.True(t, validEmail("jane.doe+coach@mail.example.de"))
	assert.False(t, validEmail("jane"))
	assert.False(t, validEmail("Jane <jane@example.com>"))
	assert.False(t, validEmail("jane@example.com\r\nBcc: x@example.com"))
}
