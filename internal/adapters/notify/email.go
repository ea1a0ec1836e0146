package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"go.trai.ch/ferry/internal/core/domain"
	"go.trai.ch/ferry/internal/core/ports"
	"go.trai.ch/zerr"
)

// Environment variables configuring the email sink.
const (
	EnvSMTPAddr     = "FERRY_SMTP_ADDR"
	EnvSMTPFrom     = "FERRY_SMTP_FROM"
	EnvSMTPUser     = "FERRY_SMTP_USER"
	EnvSMTPPassword = "FERRY_SMTP_PASSWORD"
)

const defaultFrom = "ferry@localhost"

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailSink sends a plain text summary over SMTP.
type EmailSink struct {
	addr     string
	from     string
	auth     smtp.Auth
	sendMail sendMailFunc
}

var _ ports.NotificationSink = (*EmailSink)(nil)

// NewEmailSink creates an EmailSink relaying through addr. Credentials are
// optional; when set PLAIN authentication is used.
func NewEmailSink(addr, from, user, password string) *EmailSink {
	if from == "" {
		from = defaultFrom
	}
	s := &EmailSink{addr: addr, from: from, sendMail: smtp.SendMail}
	if user != "" {
		host, _, _ := net.SplitHostPort(addr)
		s.auth = smtp.PlainAuth("", user, password, host)
	}
	return s
}

// Name returns "email".
func (s *EmailSink) Name() string {
	return "email"
}

// Send mails the run summary to the channel recipients.
func (s *EmailSink) Send(ctx context.Context, n domain.Notification) error {
	if len(n.Recipients) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return domain.Classify(domain.ErrNotify, err)
	}

	msg := s.message(n)
	if err := s.sendMail(s.addr, s.auth, s.from, n.Recipients, msg); err != nil {
		return domain.Classify(domain.ErrNotify, zerr.With(zerr.Wrap(err, "failed to send email"), "smtp", s.addr))
	}
	return nil
}

func (s *EmailSink) message(n domain.Notification) []byte {
	p := NewPayload(n)

	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(n.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", p.Subject)
	fmt.Fprintf(&b, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")

	fmt.Fprintf(&b, "Run:     %s\r\n", p.RunID)
	if p.Ref != "" {
		fmt.Fprintf(&b, "Ref:     %s\r\n", p.Ref)
	}
	fmt.Fprintf(&b, "Outcome: %s\r\n\r\n", p.Outcome)
	for _, e := range p.Environments {
		fmt.Fprintf(&b, "  %s %s/%s (%s): %s\r\n", e.ID, e.OS, e.Toolchain, e.Target, e.Summary)
		for _, name := range e.Published {
			fmt.Fprintf(&b, "    published %s\r\n", name)
		}
	}
	return []byte(b.String())
}
