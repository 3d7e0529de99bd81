package services

import (
	"context"

	"go.uber.org/zap"
)

// Message is an outgoing email.
type Message struct {
	To      string
	Subject string
	Body    string
	// Link is the action URL carried by the message, if any.
	Link string
}

// Mailer delivers auth emails.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer writes messages to the log instead of delivering them.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("link", msg.Link))
	return nil
}
