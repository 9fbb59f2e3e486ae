package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPSender implements Sender over SMTP via gomail.
type SMTPSender struct {
	config Config
	dialer *gomail.Dialer
}

func NewSMTPSender(config Config) (Sender, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid email config: %w", err)
	}

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.Username, config.Password)

	return &SMTPSender{
		config: config,
		dialer: dialer,
	}, nil
}

func (s *SMTPSender) Send(email *Email) error {
	if len(email.To) == 0 {
		return fmt.Errorf("no recipients specified")
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", s.config.FromEmail, s.config.FromName)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/plain", email.Body)
	if email.HTMLBody != "" {
		msg.AddAlternative("text/html", email.HTMLBody)
	}

	return s.dialer.DialAndSend(msg)
}

func (s *SMTPSender) SendPasswordReset(to, name, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", s.config.FrontendURL, token)

	body := fmt.Sprintf(
		"Hi %s,\n\nA password reset was requested for your account. "+
			"Open the link below to choose a new password:\n\n%s\n\n"+
			"The link expires in one hour. If you did not request this, ignore this email.\n",
		name, resetURL,
	)
	htmlBody := fmt.Sprintf(
		"<p>Hi %s,</p><p>A password reset was requested for your account.</p>"+
			"<p><a href=\"%s\">Reset your password</a></p>"+
			"<p>The link expires in one hour. If you did not request this, ignore this email.</p>",
		name, resetURL,
	)

	return s.Send(&Email{
		To:       []string{to},
		Subject:  "Password Reset",
		Body:     body,
		HTMLBody: htmlBody,
	})
}

func (s *SMTPSender) SendWelcome(to, name string) error {
	body := fmt.Sprintf(
		"Hi %s,\n\nYour account has been created. Sign in at %s to get started.\n",
		name, s.config.FrontendURL,
	)

	return s.Send(&Email{
		To:      []string{to},
		Subject: "Welcome",
		Body:    body,
	})
}
