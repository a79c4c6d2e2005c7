// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dispatch

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/pdiddy/outreach/pkg/types"
)

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	From string

	// send delivers one message. Tests replace it to capture output.
	send func(*gomail.Message) error
}

// NewSMTPSender returns a sender for cfg, or nil when cfg.Host is empty.
// From defaults to the SMTP user.
func NewSMTPSender(cfg types.MailConfig) *SMTPSender {
	if cfg.Host == "" {
		return nil
	}
	port := cfg.Port
	if port == 0 {
		port = 587
	}
	from := cfg.From
	if from == "" {
		from = cfg.User
	}
	d := gomail.NewDialer(cfg.Host, port, cfg.User, cfg.Password)
	return &SMTPSender{From: from, send: func(m *gomail.Message) error {
		return d.DialAndSend(m)
	}}
}

// Send builds a plain-text message and delivers it. The gomail dialer
// does not accept a context, so ctx is only checked before dialing.
func (s *SMTPSender) Send(ctx context.Context, m Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.To == "" {
		return ErrNoRecipient
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", s.From)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	msg.SetBody("text/plain", m.Body)

	if err := s.send(msg); err != nil {
		return fmt.Errorf("sending email over SMTP: %w", err)
	}
	return nil
}
