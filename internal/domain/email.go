package domain

import (
	"context"
	"time"
)

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// RegistrationEmailData holds data for registration notification emails.
type RegistrationEmailData struct {
	Email      string
	FullName   string
	EventTitle string
	EventDate  time.Time
	Venue      string
	Status     RegistrationStatus
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendRegistrationReceived(ctx context.Context, data *RegistrationEmailData) error
	SendRegistrationStatusChanged(ctx context.Context, data *RegistrationEmailData) error
}
