// Package mail queues and delivers appointment notification emails. The
// request path only ever enqueues; delivery runs in the mail worker so a
// slow relay can never block a request.
package mail

import (
	"fmt"

	"github.com/go-gomail/gomail"
)

// Message is one queued notification.
type Message struct {
	To         string `json:"to"`
	Subject    string `json:"subject"`
	Body       string `json:"body"`
	Subheading string `json:"subheading,omitempty"`
}

// Sender delivers a single message.
type Sender interface {
	Send(m Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender delivers messages through a plain SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(m Message) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.cfg.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)

	body := m.Body
	if m.Subheading != "" {
		body = m.Subheading + "\n\n" + body
	}
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", m.To, err)
	}

	return nil
}
