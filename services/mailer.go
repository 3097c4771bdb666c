package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// InviteEmail is everything the invite email template needs.
type InviteEmail struct {
	To          string
	InviterName string
	TripTitle   string
	AcceptURL   string
}

type Mailer interface {
	SendInvite(ctx context.Context, email InviteEmail) error
}

// SendGridMailer delivers email through SendGrid. Without an API key it
// logs and skips every send.
type SendGridMailer struct {
	client  *sendgrid.Client
	from    *mail.Email
	appName string
}

func NewSendGridMailer(apiKey, fromEmail, appName string) *SendGridMailer {
	m := &SendGridMailer{
		from:    mail.NewEmail(appName, fromEmail),
		appName: appName,
	}
	if apiKey != "" {
		m.client = sendgrid.NewSendClient(apiKey)
	}
	return m
}

func (m *SendGridMailer) SendInvite(ctx context.Context, e InviteEmail) error {
	if m.client == nil {
		slog.Warn("⚠️  SendGrid API key not set, skipping invite email", "to", e.To)
		return nil
	}

	subject := fmt.Sprintf("%s invited you to \"%s\" on %s", e.InviterName, e.TripTitle, m.appName)
	html, err := renderInviteEmail(m.appName, e)
	if err != nil {
		return err
	}
	plain := fmt.Sprintf("%s invited you to plan \"%s\" together. Accept here: %s", e.InviterName, e.TripTitle, e.AcceptURL)

	msg := mail.NewSingleEmail(m.from, subject, mail.NewEmail("", e.To), plain, html)
	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	slog.Info("✅ Invite email sent", "to", e.To)
	return nil
}

var inviteEmailTmpl = template.Must(template.New("invite").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5;">
	<div style="background: white; border-radius: 12px; padding: 32px; box-shadow: 0 2px 8px rgba(0,0,0,0.1);">
		<h2 style="color: #2B6CB0; margin-top: 0;">🧳 You're invited!</h2>
		<p><strong>{{.InviterName}}</strong> invited you to plan <strong>"{{.TripTitle}}"</strong> on {{.AppName}}.</p>
		<p>Vote on polls, shape the itinerary and chat with everyone going.</p>
		<div style="margin: 24px 0;">
			<a href="{{.AcceptURL}}" style="background: #2B6CB0; color: white; padding: 12px 32px; border-radius: 8px; text-decoration: none; font-weight: bold;">Join Trip</a>
		</div>
		<p style="color: #999; font-size: 12px; margin-top: 24px;">{{.AppName}}</p>
	</div>
</body>
</html>`))

func renderInviteEmail(appName string, e InviteEmail) (string, error) {
	var buf bytes.Buffer
	err := inviteEmailTmpl.Execute(&buf, map[string]any{
		"AppName":     appName,
		"InviterName": e.InviterName,
		"TripTitle":   e.TripTitle,
		"AcceptURL":   e.AcceptURL,
	})
	if err != nil {
		return "", fmt.Errorf("render invite email: %w", err)
	}
	return buf.String(), nil
}
