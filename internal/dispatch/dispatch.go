// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch hands a drafted email to the user's mail client or
// sends it directly over SMTP.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/outreach/pkg/types"
)

// Channel selects how an email leaves the application.
type Channel string

const (
	// ChannelMailto produces a mailto: link for the default mail client.
	ChannelMailto Channel = "mailto"
	// ChannelGmail produces a Gmail web compose link.
	ChannelGmail Channel = "gmail"
	// ChannelSMTP sends the message through the configured SMTP server.
	ChannelSMTP Channel = "smtp"
)

// DefaultSubject is used when the lead has no subject yet.
const DefaultSubject = "Hello"

var (
	// ErrNoRecipient is returned when the lead has no email address.
	ErrNoRecipient = errors.New("no recipient email address")

	// ErrSMTPDisabled is returned for ChannelSMTP when no SMTP host is configured.
	ErrSMTPDisabled = errors.New("smtp dispatch is not configured")
)

// ParseChannel converts a case-insensitive name to a Channel. Empty means
// mailto.
func ParseChannel(s string) (Channel, error) {
	switch c := Channel(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return ChannelMailto, nil
	case ChannelMailto, ChannelGmail, ChannelSMTP:
		return c, nil
	}
	return "", fmt.Errorf("unknown dispatch channel %q (want mailto, gmail or smtp)", s)
}

// Message is one outgoing email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// MessageFor builds the message for lead. The subject falls back to
// DefaultSubject; the recipient must be present.
func MessageFor(lead types.Lead) (Message, error) {
	to := strings.TrimSpace(lead.Email)
	if to == "" {
		return Message{}, fmt.Errorf("lead %q: %w", lead.Name, ErrNoRecipient)
	}
	subject := lead.EmailSubject
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	return Message{To: to, Subject: subject, Body: lead.EmailDraft}, nil
}

// MailtoURL returns a mailto: link prefilled with subject and body.
func MailtoURL(m Message) string {
	return "mailto:" + url.PathEscape(m.To) +
		"?subject=" + encodeComponent(m.Subject) +
		"&body=" + encodeComponent(m.Body)
}

// GmailURL returns a Gmail compose link prefilled with recipient, subject
// and body.
func GmailURL(m Message) string {
	return "https://mail.google.com/mail/?view=cm&fs=1" +
		"&to=" + encodeComponent(m.To) +
		"&su=" + encodeComponent(m.Subject) +
		"&body=" + encodeComponent(m.Body)
}

// encodeComponent escapes s for a query value with spaces as %20, which
// mail clients render correctly where "+" would show up literally.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// Sender delivers a message directly.
type Sender interface {
	Send(ctx context.Context, m Message) error
}

// Outcome describes a completed dispatch. URL is set for link channels;
// Sent is true when the message was delivered over SMTP.
type Outcome struct {
	Channel Channel `json:"channel"`
	URL     string  `json:"url,omitempty"`
	Sent    bool    `json:"sent"`
}

// Dispatch hands m off through channel c. sender may be nil unless c is
// ChannelSMTP.
func Dispatch(ctx context.Context, c Channel, m Message, sender Sender) (Outcome, error) {
	if strings.TrimSpace(m.To) == "" {
		return Outcome{}, ErrNoRecipient
	}
	switch c {
	case ChannelMailto, "":
		return Outcome{Channel: ChannelMailto, URL: MailtoURL(m)}, nil
	case ChannelGmail:
		return Outcome{Channel: ChannelGmail, URL: GmailURL(m)}, nil
	case ChannelSMTP:
		if sender == nil {
			return Outcome{}, ErrSMTPDisabled
		}
		if err := sender.Send(ctx, m); err != nil {
			return Outcome{}, err
		}
		return Outcome{Channel: ChannelSMTP, Sent: true}, nil
	}
	return Outcome{}, fmt.Errorf("unknown dispatch channel %q", c)
}
