// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package mailbox reads notification-email bodies from a maildir-style
// directory: files dropped into <dir>/new are consumed and, once
// processed, moved to <dir>/cur. How messages land in new/ is up to
// whatever delivers them (an IMAP sync tool, a procmail rule, a cron
// script).
package mailbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

// Message is one consumed email body.
type Message struct {
	// Name is the file name within new/.
	Name string

	// Body is the message text with any header block stripped.
	Body string
}

// Mailbox reads from one maildir root.
type Mailbox struct {
	dir           string
	markProcessed bool
}

func New(cfg types.MailboxConfig) (*Mailbox, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("mailbox dir not configured")
	}
	info, err := os.Stat(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("opening mailbox: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("mailbox %s is not a directory", cfg.Dir)
	}
	return &Mailbox{dir: cfg.Dir, markProcessed: cfg.MarkProcessed}, nil
}

// Read returns pending messages in file-name order, at most max when
// max is positive. A missing new/ directory means an empty mailbox,
// not an error.
func (m *Mailbox) Read(max int) ([]Message, error) {
	newDir := filepath.Join(m.dir, "new")
	entries, err := os.ReadDir(newDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading mailbox: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	if max > 0 && len(names) > max {
		names = names[:max]
	}

	msgs := make([]Message, 0, len(names))
	for _, name := range names {
		raw, err := os.ReadFile(filepath.Join(newDir, name))
		if err != nil {
			return nil, fmt.Errorf("reading message %s: %w", name, err)
		}
		msgs = append(msgs, Message{Name: name, Body: stripHeaders(string(raw))})
	}
	return msgs, nil
}

// MarkProcessed moves consumed messages from new/ to cur/. A no-op
// when mark_processed is off, so dry runs leave the mailbox untouched.
func (m *Mailbox) MarkProcessed(msgs []Message) error {
	if !m.markProcessed {
		return nil
	}
	curDir := filepath.Join(m.dir, "cur")
	if err := os.MkdirAll(curDir, 0o755); err != nil {
		return fmt.Errorf("creating cur dir: %w", err)
	}
	for _, msg := range msgs {
		src := filepath.Join(m.dir, "new", msg.Name)
		if err := os.Rename(src, filepath.Join(curDir, msg.Name)); err != nil {
			return fmt.Errorf("archiving message %s: %w", msg.Name, err)
		}
	}
	return nil
}

// stripHeaders drops an RFC 822 style header block when one is
// present, so both raw .eml dumps and plain text bodies work. A file
// with no blank line and colon-shaped first line is treated as body
// text as-is.
func stripHeaders(raw string) string {
	normalized := strings.ReplaceAll(raw, "\r\n", "\n")
	head, body, found := strings.Cut(normalized, "\n\n")
	if !found {
		return normalized
	}
	for _, line := range strings.Split(head, "\n") {
		if line == "" || line == " " {
			continue
		}
		// Continuation lines start with whitespace.
		if strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t") {
			continue
		}
		if !strings.Contains(line, ":") {
			return normalized
		}
	}
	return body
}
