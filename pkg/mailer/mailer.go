package mailer

import (
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"github.com/khanaghar/khanaghar-backend/config"
	"github.com/khanaghar/khanaghar-backend/pkg/logger"
)

// Mailer sends transactional email via SMTP.
// Without SMTP credentials it runs in dev mode and only logs the message.
type Mailer struct {
	host     string
	port     string
	email    string
	password string
	fromName string
}

func New(cfg *config.SMTPConfig) *Mailer {
	return &Mailer{
		host:     cfg.Host,
		port:     cfg.Port,
		email:    cfg.Email,
		password: cfg.Password,
		fromName: cfg.FromName,
	}
}

func (m *Mailer) send(to, subject, htmlBody string) error {
	if m.email == "" || m.password == "" {
		logger.Info("[DEV MODE] Email not sent, logging instead", map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return nil
	}

	message := []byte(fmt.Sprintf(
		"From: %s <%s>\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		m.fromName, m.email, to, subject, htmlBody,
	))

	auth := smtp.PlainAuth("", m.email, m.password, m.host)
	if err := smtp.SendMail(m.host+":"+m.port, auth, m.email, []string{to}, message); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"to":      to,
			"subject": subject,
		})
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// SendOtp emails a one-time passcode
func (m *Mailer) SendOtp(to, code string, validFor time.Duration) error {
	subject := "[KhanaGhar] Your verification code"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px; background-color: #f5f5f5;">
	<div style="max-width: 600px; margin: 0 auto; background-color: white; padding: 40px; border-radius: 10px;">
		<h1 style="color: #333;">Verification code</h1>
		<p style="color: #666; line-height: 1.6;">
			Use the code below to continue. It is valid for %d minutes.
		</p>
		<div style="background-color: #f8f9fa; padding: 30px; border-radius: 8px; text-align: center;">
			<h2 style="color: #333; margin: 0; font-size: 36px; letter-spacing: 4px;">%s</h2>
		</div>
		<p style="color: #999; font-size: 14px;">
			If you did not request this code, you can safely ignore this email.
		</p>
	</div>
</body>
</html>
`, int(validFor.Minutes()), code)

	return m.send(to, subject, body)
}

// SendVerificationApproved emails a cook whose document packet was approved
func (m *Mailer) SendVerificationApproved(to, name string) error {
	subject := "[KhanaGhar] Your kitchen is verified"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h1 style="color: #333;">Congratulations, %s!</h1>
	<p style="color: #666; line-height: 1.6;">
		Your documents have been reviewed and approved. Your kitchen is now verified
		and you can start listing meals on KhanaGhar.
	</p>
</body>
</html>
`, name)

	return m.send(to, subject, body)
}

// SendVerificationRejected emails a cook the list of rejected documents with reasons
func (m *Mailer) SendVerificationRejected(to, name string, rejections map[string]string) error {
	var items strings.Builder
	for doc, reason := range rejections {
		items.WriteString(fmt.Sprintf("<li><b>%s</b>: %s</li>", doc, reason))
	}

	subject := "[KhanaGhar] Action needed on your documents"
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h1 style="color: #333;">Hi %s,</h1>
	<p style="color: #666; line-height: 1.6;">
		Some of your documents could not be approved. Please re-submit the following:
	</p>
	<ul style="color: #666; line-height: 1.6;">%s</ul>
</body>
</html>
`, name, items.String())

	return m.send(to, subject, body)
}

// SendAccountStatusChanged emails an account holder about suspension or reactivation
func (m *Mailer) SendAccountStatusChanged(to, name, status, reason string) error {
	subject := fmt.Sprintf("[KhanaGhar] Your account is now %s", status)
	reasonBlock := ""
	if reason != "" {
		reasonBlock = fmt.Sprintf(`<p style="color: #666;">Reason: %s</p>`, reason)
	}
	body := fmt.Sprintf(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h1 style="color: #333;">Hi %s,</h1>
	<p style="color: #666; line-height: 1.6;">Your KhanaGhar account status has changed to <b>%s</b>.</p>
	%s
</body>
</html>
`, name, status, reasonBlock)

	return m.send(to, subject, body)
}
