package email

import "fmt"

// Config holds SMTP settings for outbound mail.
type Config struct {
	SMTPHost    string
	SMTPPort    int
	Username    string
	Password    string
	FromEmail   string
	FromName    string
	FrontendURL string
}

func (c Config) Validate() error {
	if c.SMTPHost == "" {
		return fmt.Errorf("smtp host is required")
	}
	if c.SMTPPort == 0 {
		return fmt.Errorf("smtp port is required")
	}
	if c.FromEmail == "" {
		return fmt.Errorf("from email is required")
	}
	return nil
}

type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// Sender delivers transactional mail. Failures are logged, never surfaced
// to API callers; password reset responds identically whether or not the
// mail went out.
type Sender interface {
	Send(email *Email) error
	SendPasswordReset(to, name, token string) error
	SendWelcome(to, name string) error
}
