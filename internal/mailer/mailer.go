package mailer

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/resend/resend-go/v2"
)

// Mailer defines the interface for sending notification email. Sends are
// best-effort throughout; no handler fails a request on a mail error.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
}

// ResendMailer sends through the Resend API.
type ResendMailer struct {
	client *resend.Client
	from   string
}

// NewFromEnv returns a ResendMailer when RESEND_API_KEY is set, otherwise a
// LogMailer so development environments work without credentials.
func NewFromEnv() Mailer {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		log.Println("⚠️  RESEND_API_KEY not set, email notifications log to stdout")
		return &LogMailer{}
	}
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   os.Getenv("FROM_EMAIL"),
	}
}

func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}
	sent, err := m.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	log.Printf("📧 Email sent to %s (ID: %s)", to, sent.Id)
	return nil
}

// LogMailer implements Mailer by logging instead of sending.
type LogMailer struct{}

func (m *LogMailer) Send(ctx context.Context, to, subject, html string) error {
	log.Printf("📧 [Dev Mode] To: %s, Subject: %s", to, subject)
	return nil
}

// RoleChangedHTML is the notification body sent when an admin changes a
// user's role.
func RoleChangedHTML(name, role string) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 480px; margin: 0 auto; padding: 24px;">
			<h2 style="color: #333;">Your EduLens account was updated</h2>
			<p>Hi %s, an administrator changed your account role to <strong>%s</strong>.</p>
			<p style="color: #aaa; font-size: 12px;">
				If you weren't expecting this, please contact support.
			</p>
		</div>
	`, name, role)
}
