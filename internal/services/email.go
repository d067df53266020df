package services

import (
	"context"
	"fmt"
	"log"

	"campusevents/internal/domain"
)

const (
	templateRegistrationReceived = "registration_received"
	templateRegistrationStatus   = "registration_status"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendRegistrationReceived confirms a new, still pending registration.
func (s *emailService) SendRegistrationReceived(ctx context.Context, data *domain.RegistrationEmailData) error {
	return s.send(ctx, templateRegistrationReceived, data)
}

// SendRegistrationStatusChanged tells the registrant about a moderation decision.
func (s *emailService) SendRegistrationStatusChanged(ctx context.Context, data *domain.RegistrationEmailData) error {
	return s.send(ctx, templateRegistrationStatus, data)
}

func (s *emailService) send(ctx context.Context, templateName string, data *domain.RegistrationEmailData) error {
	if data == nil {
		return fmt.Errorf("%s email data is nil", templateName)
	}
	subject, htmlBody, textBody, err := s.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render %s template: %w", templateName, err)
	}
	if err := s.mailer.Send(ctx, data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send %s email: %w", templateName, err)
	}
	log.Printf("[EMAIL] %s email sent to %s", templateName, data.Email)
	return nil
}
