package email

import (
	"fmt"
	"time"

	"github.com/resendlabs/resend-go"
	"go.uber.org/zap"
)

// EmailService is the outbound notification sink. Sends are best-effort:
// callers log and swallow errors rather than failing the parent operation.
type EmailService struct {
	client      *resend.Client
	from        string
	fromName    string
	frontendURL string
	logger      *zap.Logger
}

func NewEmailService(apiKey, from, fromName, frontendURL string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:      resend.NewClient(apiKey),
		from:        from,
		fromName:    fromName,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// Send delivers one HTML email. All typed helpers funnel through here.
func (s *EmailService) Send(to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.fromName + " <" + s.from + ">",
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	resp, err := s.client.Emails.Send(params)
	if err != nil {
		s.logger.Warn("email send failed",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err))
		return err
	}

	s.logger.Info("email sent",
		zap.String("to", to),
		zap.String("subject", subject),
		zap.String("id", resp.Id))
	return nil
}

func (s *EmailService) SendWelcome(to, firstName string) error {
	html := fmt.Sprintf(`<h2>Welcome to GuildHall!</h2>
<p>Hi <strong>%s</strong>, your account is ready. See you at the table!</p>`, firstName)
	return s.Send(to, "Welcome to GuildHall!", html)
}

func (s *EmailService) SendVerification(to, firstName, token string) error {
	link := s.frontendURL + "/verify-email?token=" + token
	html := fmt.Sprintf(`<h2>Verify your GuildHall account</h2>
<p>Hi <strong>%s</strong>, click the link below to verify your email and unlock event sign-ups:</p>
<p><a href="%s">Verify email</a></p>
<p>If you didn't create this account, ignore this message.</p>`, firstName, link)
	return s.Send(to, "Verify your email - GuildHall", html)
}

func (s *EmailService) SendJoinConfirmation(to, firstName, eventTitle string, startsAt time.Time) error {
	html := fmt.Sprintf(`<h2>You're in!</h2>
<p>Hi <strong>%s</strong>, you are confirmed for:</p>
<p><strong>%s</strong><br>%s</p>
<p>Bring dice and enthusiasm.</p>`, firstName, eventTitle, startsAt.Format("02/01/2006 at 15:04"))
	return s.Send(to, fmt.Sprintf("Registration confirmed: %s", eventTitle), html)
}

func (s *EmailService) SendEventReminder(to, firstName, eventTitle string, startsAt time.Time) error {
	html := fmt.Sprintf(`<h2>Event reminder</h2>
<p>Hi <strong>%s</strong>,<br><strong>%s</strong> is tomorrow, %s!</p>
<p>Don't miss it.</p>`, firstName, eventTitle, startsAt.Format("02/01/2006 at 15:04"))
	return s.Send(to, fmt.Sprintf("Reminder: %s is tomorrow! - GuildHall", eventTitle), html)
}
