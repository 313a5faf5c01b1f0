// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mail delivers the rendered digest over SMTP.
package mail

import (
	"fmt"
	"math"
	"net/smtp"
	"strings"
	"time"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

const (
	defaultHost = "smtp.gmail.com"
	defaultPort = "587"

	maxAttempts = 3
)

// sendMail is swapped out in tests.
var sendMail = smtp.SendMail

// retryBase controls the backoff between attempts. Tests override this
// to avoid real sleeps.
var retryBase = time.Second

// Sender sends digests through one SMTP account. Gmail requires an app
// password here, not the account password.
type Sender struct {
	cfg types.MailConfig
}

func New(cfg types.MailConfig) (*Sender, error) {
	if cfg.From == "" {
		return nil, fmt.Errorf("mail.from is required")
	}
	if len(cfg.To) == 0 {
		return nil, fmt.Errorf("mail.to is required")
	}
	if cfg.Password == "" {
		return nil, fmt.Errorf("smtp password is required (for Gmail, an app password)")
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	return &Sender{cfg: cfg}, nil
}

// Send delivers one message, retrying transient SMTP failures with
// exponential backoff. The body's content type follows the report
// format: HTML reports go out as text/html, everything else as plain
// text.
func (s *Sender) Send(subject, body, format string) error {
	msg := s.buildMessage(subject, body, format)
	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(math.Pow(2, float64(attempt))) * retryBase)
		}
		if err := sendMail(addr, auth, s.cfg.From, s.cfg.To, msg); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return fmt.Errorf("sending mail after %d attempts: %w", maxAttempts, lastErr)
}

// buildMessage assembles an RFC 5322 message: headers, a blank line,
// then the body.
func (s *Sender) buildMessage(subject, body, format string) []byte {
	contentType := "text/plain; charset=UTF-8"
	if format == "html" {
		contentType = "text/html; charset=UTF-8"
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", strings.Join(s.cfg.To, ", "))
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	fmt.Fprintf(&msg, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: %s\r\n", contentType)
	msg.WriteString("\r\n")
	msg.WriteString(body)
	return []byte(msg.String())
}
