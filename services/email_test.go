package services

import (
	"testing"

	"lexcase_api_go/config"

	"github.com/stretchr/testify/assert"
)

func TestMailer_TestMode(t *testing.T) {
	m := NewMailer(&config.Config{EmailFrom: "noreply@test.com", EmailFromName: "LexCase", ResendAPIKey: "key", EmailTestMode: true})
	assert.True(t, m.testMode)
	assert.Equal(t, "LexCase <noreply@test.com>", m.from)

	err := m.Send(t.Context(), &Email{To: []string{"a@test.com"}, Subject: "Hi", TextBody: "Hello"})
	assert.NoError(t, err, "test mode logs instead of sending")

	assert.True(t, NewMailer(&config.Config{}).testMode, "no API key forces test mode")
}

func TestMailer_Validation(t *testing.T) {
	m := NewMailer(&config.Config{})

	assert.Error(t, m.Send(t.Context(), &Email{Subject: "No one", TextBody: "x"}))
	assert.Error(t, m.Send(t.Context(), &Email{To: []string{"a@test.com"}, Subject: "Empty"}))
}

func TestBuildReminderEmail(t *testing.T) {
	email := BuildReminderEmail("a@test.com", "Ana", "Hearing <tomorrow>", "Bring the file", "/cases/1", "https://app.test/")

	assert.Equal(t, []string{"a@test.com"}, email.To)
	assert.Equal(t, "Reminder: Hearing <tomorrow>", email.Subject)
	assert.Contains(t, email.HTMLBody, "Hearing &lt;tomorrow&gt;", "html body is escaped")
	assert.Contains(t, email.HTMLBody, `href="https://app.test/cases/1"`)
	assert.Contains(t, email.TextBody, "Hearing <tomorrow>")
	assert.Contains(t, email.TextBody, "Open in LexCase: https://app.test/cases/1")
}

func TestBuildReminderEmail_NoAction(t *testing.T) {
	email := BuildReminderEmail("a@test.com", "Ana", "Call", "Call the client", "", "https://app.test")
	assert.NotContains(t, email.HTMLBody, "href")
	assert.NotContains(t, email.TextBody, "Open in LexCase")
}

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, "https://app.test/login", absoluteURL("https://app.test/", "/login"))
	assert.Equal(t, "https://other.test/x", absoluteURL("https://app.test", "https://other.test/x"))
	assert.Empty(t, absoluteURL("https://app.test", ""))
}

func TestBuildWelcomeEmail(t *testing.T) {
	email := BuildWelcomeEmail("a@test.com", "Ana", "client", "https://app.test")
	assert.Equal(t, "Welcome to LexCase", email.Subject)
	assert.Contains(t, email.TextBody, "Your client account is ready")
	assert.Contains(t, email.TextBody, "https://app.test/login")
}
