// Package mail describes outgoing email and the collaborators that deliver it.
package mail

import (
	"github.com/sirupsen/logrus"
)

// Message is a plain-text email.
type Message struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Sender delivers a message or reports why it could not.
type Sender interface {
	Send(msg Message) error
}

// SenderFunc adapts a function to the Sender interface.
type SenderFunc func(msg Message) error

// Send calls f(msg).
func (f SenderFunc) Send(msg Message) error {
	return f(msg)
}

// LogSender writes messages to the log instead of a mail server.
type LogSender struct {
	Logger logrus.FieldLogger
}

// NewLogSender creates a LogSender on the standard logrus logger.
func NewLogSender() *LogSender {
	return &LogSender{Logger: logrus.StandardLogger()}
}

// Send logs msg.
func (s *LogSender) Send(msg Message) error {
	s.Logger.WithFields(logrus.Fields{
		"from":    msg.From,
		"to":      msg.To,
		"subject": msg.Subject,
	}).Info(msg.Body)
	return nil
}
