package notify

import (
	"bytes"
	"context"
	"fmt"
	"net/smtp"

	"go.uber.org/zap"
)

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	FromName string
}

// SMTPNotifier sends plain-text email. Credentials are optional so a local
// catcher such as Mailhog works without auth.
type SMTPNotifier struct {
	config SMTPConfig
	log    *zap.Logger
	// sendMail is smtp.SendMail outside tests.
	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPNotifier(config SMTPConfig, log *zap.Logger) *SMTPNotifier {
	return &SMTPNotifier{
		config:   config,
		log:      log.With(zap.String("notifier", "smtp")),
		sendMail: smtp.SendMail,
	}
}

func (n *SMTPNotifier) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth smtp.Auth
	if n.config.Username != "" && n.config.Password != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	if err := n.sendMail(addr, auth, n.config.From, []string{msg.To}, n.buildMessage(msg)); err != nil {
		n.log.Error("Failed to send email",
			zap.Error(err),
			zap.String("to", msg.To),
			zap.String("subject", msg.Subject),
		)
		return fmt.Errorf("send email: %w", err)
	}

	n.log.Info("Email sent", zap.String("to", msg.To), zap.String("subject", msg.Subject))
	return nil
}

func (n *SMTPNotifier) buildMessage(msg Message) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s <%s>\r\n", n.config.FromName, n.config.From)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", msg.Subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(msg.Body)
	return buf.Bytes()
}
