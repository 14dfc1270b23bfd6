package mailer

import (
	"fmt"
	"mime"
	"net/smtp"
	"strings"

	"audio-transcriber/internal/config"
)

// Mailer delivers transcripts over SMTP as multipart/alternative messages
// (plain text plus the styled HTML rendering).
type Mailer struct {
	host     string
	port     string
	sender   string
	password string
}

func New(cfg *config.Config) *Mailer {
	return &Mailer{
		host:     cfg.SMTP.Host,
		port:     cfg.SMTP.Port,
		sender:   cfg.SMTP.Sender,
		password: cfg.SMTP.Password,
	}
}

func (m *Mailer) Send(to, subject, textBody, htmlBody string) error {
	msg := m.buildMessage(to, subject, textBody, htmlBody)

	auth := smtp.PlainAuth("", m.sender, m.password, m.host)
	addr := m.host + ":" + m.port

	if err := smtp.SendMail(addr, auth, m.sender, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

func (m *Mailer) buildMessage(to, subject, textBody, htmlBody string) []byte {
	const boundary = "transcript-alt-boundary"

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", m.sender)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	b.WriteString(textBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s\r\n", boundary)
	b.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "--%s--\r\n", boundary)
	return []byte(b.String())
}
