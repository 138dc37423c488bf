// Package notify delivers verification codes to a contact.
package notify

import (
	"context"
	"errors"
	"fmt"

	"woodeoo-auth/pkg/utils"

	"go.uber.org/zap"
)

type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Message is one code delivery. Body is plain text.
type Message struct {
	Channel Channel
	To      string
	Subject string
	Body    string
}

type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// ErrNoRoute is returned by Dispatcher when no notifier serves the channel.
var ErrNoRoute = errors.New("notify: no notifier for channel")

// Dispatcher routes a message to the notifier of its channel.
type Dispatcher struct {
	Email Notifier
	SMS   Notifier
}

func (d *Dispatcher) Send(ctx context.Context, msg Message) error {
	var n Notifier
	switch msg.Channel {
	case ChannelEmail:
		n = d.Email
	case ChannelSMS:
		n = d.SMS
	}
	if n == nil {
		return fmt.Errorf("%w %q", ErrNoRoute, msg.Channel)
	}
	return n.Send(ctx, msg)
}

// LogNotifier writes the message to the log instead of delivering it. Used in
// development, where reading the code from the server log is the point.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log.With(zap.String("notifier", "log"))}
}

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	n.log.Info("Verification message",
		zap.String("channel", string(msg.Channel)),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body),
	)
	return nil
}

// NewFromConfig builds the dispatcher used by the server. Channels without a
// configured provider fall back to the log.
func NewFromConfig(email utils.EmailConfig, sms utils.SMSConfig, log *zap.Logger) *Dispatcher {
	fallback := NewLogNotifier(log)
	d := &Dispatcher{Email: fallback, SMS: fallback}

	if email.Host != "" {
		d.Email = NewSMTPNotifier(SMTPConfig{
			Host:     email.Host,
			Port:     email.Port,
			Username: email.User,
			Password: email.Password,
			From:     email.From,
			FromName: email.FromName,
		}, log)
	} else {
		log.Warn("SMTP_HOST not set, email codes are written to the log")
	}

	if sms.Endpoint != "" {
		d.SMS = NewSMSNotifier(sms.Endpoint, sms.APIKey, sms.Sender, log)
	} else {
		log.Warn("SMS_ENDPOINT not set, SMS codes are written to the log")
	}

	return d
}
