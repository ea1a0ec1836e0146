package notify

import "net/smtp"

// SetSendMail replaces the SMTP client of s.
func (s *EmailSink) SetSendMail(fn func(addr string, a smtp.Auth, from string, to []string, msg []byte) error) {
	s.sendMail = fn
}
