// Package mailer delivers outbound account email. The transport sits behind
// a single-method interface so the queue consumer does not care whether mail
// goes to a real SMTP relay or, in development, to the process log.
package mailer

import (
	"fmt"
	"log"
	"net/smtp"
)

// Sender delivers one message.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends through a plain SMTP relay.
type SMTPSender struct {
	Host string
	Port string
	From string
}

// Send composes a minimal RFC 5322 message and hands it to the relay.
func (s SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.From, to, subject, body)
	return smtp.SendMail(s.Host+":"+s.Port, nil, s.From, []string{to}, []byte(msg))
}

// LogSender writes mail to the process log. Used when SMTP_HOST is unset so
// activation links stay reachable during development.
type LogSender struct{}

func (LogSender) Send(to, subject, body string) error {
	log.Printf("mail (no SMTP relay configured) to=%s subject=%q\n%s", to, subject, body)
	return nil
}
