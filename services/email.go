package services

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"

	"lexcase_api_go/config"
	"lexcase_api_go/logger"

	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

// Email represents an email message
type Email struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// Mailer sends email through Resend, or logs it when test mode is on
type Mailer struct {
	client   *resend.Client
	from     string
	testMode bool
}

// NewMailer builds a Mailer from config. Without an API key it stays in test
// mode regardless of EMAIL_TEST_MODE.
func NewMailer(cfg *config.Config) *Mailer {
	m := &Mailer{
		from:     fmt.Sprintf("%s <%s>", cfg.EmailFromName, cfg.EmailFrom),
		testMode: cfg.EmailTestMode || cfg.ResendAPIKey == "",
	}
	if cfg.ResendAPIKey != "" {
		m.client = resend.NewClient(cfg.ResendAPIKey)
	}
	return m
}

// Send delivers one email
func (m *Mailer) Send(ctx context.Context, email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("email has no recipients")
	}
	if email.HTMLBody == "" && email.TextBody == "" {
		return fmt.Errorf("email must have either HTMLBody or TextBody")
	}

	log := logger.Component("email").WithField("to", email.To)
	if m.testMode {
		log.WithFields(logrus.Fields{
			"subject": email.Subject,
			"text":    truncate(email.TextBody, 500),
		}).Info("email logged (test mode, not sent)")
		return nil
	}

	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTMLBody,
		Text:    email.TextBody,
	}
	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	log.WithField("resend_id", sent.Id).Info("email sent")
	return nil
}

// SendAsync sends in a goroutine for request paths that must not block
func (m *Mailer) SendAsync(email *Email) {
	cp := &Email{
		To:       append([]string{}, email.To...),
		Subject:  email.Subject,
		HTMLBody: email.HTMLBody,
		TextBody: email.TextBody,
	}
	go func() {
		if err := m.Send(context.Background(), cp); err != nil {
			bestEffort(logger.Component("email"), "send_async", err)
		}
	}()
}

const (
	reminderHTML = `<p>Hello {{.Name}},</p>
<p><strong>{{.Title}}</strong></p>
<p>{{.Message}}</p>
{{if .ActionURL}}<p><a href="{{.ActionURL}}">Open in LexCase</a></p>{{end}}`

	reminderText = `Hello {{.Name}},

{{.Title}}

{{.Message}}
{{if .ActionURL}}
Open in LexCase: {{.ActionURL}}{{end}}
`

	welcomeHTML = `<p>Welcome to LexCase, {{.Name}}.</p>
<p>Your {{.Role}} account is ready. <a href="{{.ActionURL}}">Sign in</a> to get started.</p>`

	welcomeText = `Welcome to LexCase, {{.Name}}.

Your {{.Role}} account is ready. Sign in at {{.ActionURL}} to get started.
`
)

var (
	reminderHTMLTmpl = htmltemplate.Must(htmltemplate.New("reminder").Parse(reminderHTML))
	reminderTextTmpl = texttemplate.Must(texttemplate.New("reminder").Parse(reminderText))
	welcomeHTMLTmpl  = htmltemplate.Must(htmltemplate.New("welcome").Parse(welcomeHTML))
	welcomeTextTmpl  = texttemplate.Must(texttemplate.New("welcome").Parse(welcomeText))
)

// EmailData is the data every built-in template renders
type EmailData struct {
	Name      string
	Role      string
	Title     string
	Message   string
	ActionURL string
}

func render(html *htmltemplate.Template, text *texttemplate.Template, data EmailData) (string, string) {
	var h, t bytes.Buffer
	if err := html.Execute(&h, data); err != nil {
		logger.Component("email").WithError(err).Error("failed to render html body")
	}
	if err := text.Execute(&t, data); err != nil {
		logger.Component("email").WithError(err).Error("failed to render text body")
	}
	return h.String(), t.String()
}

// absoluteURL joins a relative action path onto the app URL
func absoluteURL(appURL, path string) string {
	if path == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimSuffix(appURL, "/") + "/" + strings.TrimPrefix(path, "/")
}

// BuildReminderEmail renders the email channel of a due reminder
func BuildReminderEmail(to, name, title, message, actionURL, appURL string) *Email {
	data := EmailData{Name: name, Title: title, Message: message, ActionURL: absoluteURL(appURL, actionURL)}
	html, text := render(reminderHTMLTmpl, reminderTextTmpl, data)
	return &Email{To: []string{to}, Subject: "Reminder: " + title, HTMLBody: html, TextBody: text}
}

// BuildWelcomeEmail greets a newly registered user
func BuildWelcomeEmail(to, name, role, appURL string) *Email {
	data := EmailData{Name: name, Role: role, ActionURL: absoluteURL(appURL, "/login")}
	html, text := render(welcomeHTMLTmpl, welcomeTextTmpl, data)
	return &Email{To: []string{to}, Subject: "Welcome to LexCase", HTMLBody: html, TextBody: text}
}
