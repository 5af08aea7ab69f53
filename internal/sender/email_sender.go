package sender

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"

	"outreach-service/internal/domain"

	"github.com/google/uuid"
	"github.com/jordan-wright/email"
)

// SMTPEmailSender delivers one message per call through an authenticated SMTP
// relay. It satisfies dispatch.Transport.
type SMTPEmailSender struct {
	host string
	port string
	user string
	pass string
	from string
}

func NewSMTPEmailSender(host, port, user, pass, from string) *SMTPEmailSender {
	return &SMTPEmailSender{host: host, port: port, user: user, pass: pass, from: from}
}

// From returns the envelope sender.
func (s *SMTPEmailSender) From() string {
	return s.from
}

// Deliver sends msg and returns the Message-Id it was sent with. The whole SMTP
// conversation runs on the caller's goroutine and its connection is closed as
// soon as ctx is done.
func (s *SMTPEmailSender) Deliver(ctx context.Context, msg domain.Message) (string, error) {
	e := email.NewEmail()
	e.From = s.from
	e.To = []string{msg.Recipient}
	e.Subject = msg.Subject
	e.Text = []byte(msg.Body)

	messageID := newMessageID(s.from)
	e.Headers.Set("Message-Id", messageID)

	raw, err := e.Bytes()
	if err != nil {
		return "", fmt.Errorf("failed to build message: %w", err)
	}
	if err := s.send(ctx, msg.Recipient, raw); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	return messageID, nil
}

func (s *SMTPEmailSender) send(ctx context.Context, to string, raw []byte) error {
	from, err := mail.ParseAddress(s.from)
	if err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(s.host, s.port))
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	// Closing the connection unblocks whichever read or write is in flight.
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	c, err := smtp.NewClient(conn, s.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to greet relay: %w", err)
	}
	defer c.Close()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: s.host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}
	if s.user != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			if err := c.Auth(smtp.PlainAuth("", s.user, s.pass, s.host)); err != nil {
				return fmt.Errorf("auth: %w", err)
			}
		}
	}
	if err := c.Mail(from.Address); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("relay rejected message: %w", err)
	}
	return c.Quit()
}

func newMessageID(from string) string {
	host := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		host = from[at+1:]
	}
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), host)
}

// Factory builds per-campaign senders from caller-supplied credentials against
// a fixed relay.
type Factory struct {
	Host string
	Port string
}

func (f Factory) New(senderEmail, senderPassword string) *SMTPEmailSender {
	return NewSMTPEmailSender(f.Host, f.Port, senderEmail, senderPassword, senderEmail)
}
