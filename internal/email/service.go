package email

import (
	"context"
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"github.com/mediassist/patient-api/internal/config"
	"github.com/mediassist/patient-api/internal/model"
)

// Service sends transactional mail. Delivery is best effort; callers log
// failures and move on.
type Service interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendAppointmentUpdate(ctx context.Context, to string, event *model.AppointmentEvent) error
}

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendWelcome(_ context.Context, to, name string) error {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour account has been created. You can now book appointments and start consultations with our medical assistant.\n",
		name)
	return s.send(to, "Welcome to MediAssist", body)
}

func (s *smtpService) SendAppointmentUpdate(_ context.Context, to string, event *model.AppointmentEvent) error {
	subject := fmt.Sprintf("Appointment %s", event.Status)
	body := fmt.Sprintf(
		"Your appointment (ref %s) is now %s.\n\nLog in to see the details.\n",
		event.AppointmentID, event.Status)
	return s.send(to, subject, body)
}

func (s *smtpService) send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// NoopService discards all mail. Used when SMTP is disabled.
type NoopService struct{}

func (NoopService) SendWelcome(context.Context, string, string) error { return nil }
func (NoopService) SendAppointmentUpdate(context.Context, string, *model.AppointmentEvent) error {
	return nil
}
