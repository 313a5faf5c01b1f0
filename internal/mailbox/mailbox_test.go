// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mailbox

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

func writeMessage(t *testing.T, dir, name, content string) {
	t.Helper()
	newDir := filepath.Join(dir, "new")
	require.NoError(t, os.MkdirAll(newDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(newDir, name), []byte(content), 0o644))
}

func TestRead(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "msg-2", "second body")
	writeMessage(t, dir, "msg-1", "first body with https://arxiv.org/abs/2301.00001")
	writeMessage(t, dir, ".hidden", "ignored")

	mb, err := New(types.MailboxConfig{Dir: dir})
	require.NoError(t, err)

	msgs, err := mb.Read(0)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "msg-1", msgs[0].Name, "name order")
	assert.Contains(t, msgs[0].Body, "arxiv.org")
}

func TestRead_MaxCapsBatch(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "a", "1")
	writeMessage(t, dir, "b", "2")
	writeMessage(t, dir, "c", "3")

	mb, err := New(types.MailboxConfig{Dir: dir})
	require.NoError(t, err)

	msgs, err := mb.Read(2)
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestRead_EmptyMailbox(t *testing.T) {
	mb, err := New(types.MailboxConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	msgs, err := mb.Read(0)
	require.NoError(t, err)
	assert.Empty(t, msgs, "missing new/ means nothing pending")
}

func TestNew_Validation(t *testing.T) {
	_, err := New(types.MailboxConfig{})
	require.Error(t, err)

	_, err = New(types.MailboxConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)
}

func TestMarkProcessed(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "msg-1", "body")

	mb, err := New(types.MailboxConfig{Dir: dir, MarkProcessed: true})
	require.NoError(t, err)

	msgs, err := mb.Read(0)
	require.NoError(t, err)
	require.NoError(t, mb.MarkProcessed(msgs))

	assert.NoFileExists(t, filepath.Join(dir, "new", "msg-1"))
	assert.FileExists(t, filepath.Join(dir, "cur", "msg-1"))
}

func TestMarkProcessed_DisabledLeavesMailbox(t *testing.T) {
	dir := t.TempDir()
	writeMessage(t, dir, "msg-1", "body")

	mb, err := New(types.MailboxConfig{Dir: dir, MarkProcessed: false})
	require.NoError(t, err)

	msgs, err := mb.Read(0)
	require.NoError(t, err)
	require.NoError(t, mb.MarkProcessed(msgs))

	assert.FileExists(t, filepath.Join(dir, "new", "msg-1"))
}

func TestStripHeaders(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"eml with headers",
			"From: scholar@google.com\r\nSubject: New citations\r\n\r\nSee https://arxiv.org/abs/2301.00001",
			"See https://arxiv.org/abs/2301.00001",
		},
		{
			"plain body untouched",
			"Just a link: https://arxiv.org/abs/2301.00001",
			"Just a link: https://arxiv.org/abs/2301.00001",
		},
		{
			"blank line but no header shape",
			"First paragraph of text\n\nsecond paragraph",
			"First paragraph of text\n\nsecond paragraph",
		},
		{
			"folded header",
			"Subject: a very\n long subject\n\nbody here",
			"body here",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripHeaders(tt.in))
		})
	}
}
