package utils

import (
	"fmt"
	"html"

	"github.com/keighl/postmark"
)

// EmailService handles sending emails using Postmark
type EmailService struct {
	client *postmark.Client
	sender string
}

// NewEmailService returns nil when no Postmark token is configured, which disables mail.
func NewEmailService(apiToken, sender string) *EmailService {
	if apiToken == "" {
		return nil
	}
	return &EmailService{
		client: postmark.NewClient(apiToken, ""),
		sender: sender,
	}
}

// SendEmail sends a basic email to the specified recipient
func (es *EmailService) SendEmail(toEmail, subject, htmlContent, textContent string) error {
	_, err := es.client.SendEmail(postmark.Email{
		From:     es.sender,
		To:       toEmail,
		Subject:  subject,
		HtmlBody: htmlContent,
		TextBody: textContent,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// SendWelcomeEmail greets a newly registered user
func (es *EmailService) SendWelcomeEmail(toEmail, name, role string) error {
	subject := "Welcome to DevCamper"
	text := fmt.Sprintf("Hi %s,\n\nYour %s account is ready. You can now browse bootcamps and courses.\n", name, role)
	htmlContent := fmt.Sprintf(
		"<p>Hi <strong>%s</strong>,</p><p>Your %s account is ready. You can now browse bootcamps and courses.</p>",
		html.EscapeString(name), html.EscapeString(role),
	)
	return es.SendEmail(toEmail, subject, htmlContent, text)
}
