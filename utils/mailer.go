package utils

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/gomail.v2"
)

// Email is one resolved outbound message. MessageID may be set by the
// caller when the id must be known before delivery (open tracking);
// otherwise the mailer assigns one.
type Email struct {
	From      string
	To        string
	Subject   string
	Body      string
	MessageID string
}

// Mailer sends a single resolved email and returns its message ID. The
// dispatcher treats every call as at-most-once; failed sends come back as
// *TransportError and are retried on a later tick.
type Mailer interface {
	Send(email Email) (string, error)
}

// TransportError marks a delivery failure that is safe to retry.
type TransportError struct {
	To  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("delivery to %s failed: %v", e.To, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewMessageID mints a fresh message id for an outbound email.
func NewMessageID() string {
	return uuid.New().String()
}

// SMTPMailer delivers mail through a single SMTP account
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
	}
}

func (m *SMTPMailer) Send(email Email) (string, error) {
	messageID := email.MessageID
	if messageID == "" {
		messageID = uuid.New().String()
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", email.From)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetHeader("Message-ID", fmt.Sprintf("<%s@inviteflow>", messageID))
	msg.SetBody("text/html", email.Body)

	d := gomail.NewDialer(m.Host, m.Port, m.Username, m.Password)
	if err := d.DialAndSend(msg); err != nil {
		return "", &TransportError{To: email.To, Err: err}
	}

	return messageID, nil
}
