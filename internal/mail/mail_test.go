// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package mail

import (
	"errors"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zhaoyilunnn/gmail-scholar-summary/pkg/types"
)

func init() {
	retryBase = time.Millisecond
}

func testConfig() types.MailConfig {
	return types.MailConfig{
		From:     "me@example.com",
		To:       []string{"you@example.com", "them@example.com"},
		Password: "app-password",
	}
}

func TestNew_Validation(t *testing.T) {
	_, err := New(types.MailConfig{To: []string{"a@b.c"}, Password: "x"})
	require.Error(t, err, "missing from")

	_, err = New(types.MailConfig{From: "a@b.c", Password: "x"})
	require.Error(t, err, "missing recipients")

	_, err = New(types.MailConfig{From: "a@b.c", To: []string{"d@e.f"}})
	require.Error(t, err, "missing password")

	s, err := New(testConfig())
	require.NoError(t, err)
	assert.Equal(t, defaultHost, s.cfg.Host, "host defaulted")
	assert.Equal(t, defaultPort, s.cfg.Port, "port defaulted")
}

func TestSend(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotMsg []byte
	sendMail = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr = addr
		gotTo = to
		gotMsg = msg
		return nil
	}
	defer func() { sendMail = smtp.SendMail }()

	s, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, s.Send("学术周报 - 2026-08-28", "# 报告内容", "markdown"))

	assert.Equal(t, "smtp.gmail.com:587", gotAddr)
	assert.Equal(t, []string{"you@example.com", "them@example.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: 学术周报 - 2026-08-28\r\n")
	assert.Contains(t, string(gotMsg), "Content-Type: text/plain; charset=UTF-8\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\n# 报告内容")
}

func TestSend_HTMLContentType(t *testing.T) {
	var gotMsg []byte
	sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = msg
		return nil
	}
	defer func() { sendMail = smtp.SendMail }()

	s, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, s.Send("subject", "<html></html>", "html"))

	assert.Contains(t, string(gotMsg), "Content-Type: text/html; charset=UTF-8\r\n")
}

func TestSend_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		calls++
		if calls < 3 {
			return errors.New("451 try again later")
		}
		return nil
	}
	defer func() { sendMail = smtp.SendMail }()

	s, err := New(testConfig())
	require.NoError(t, err)
	require.NoError(t, s.Send("subject", "body", "markdown"))
	assert.Equal(t, 3, calls)
}

func TestSend_ExhaustsAttempts(t *testing.T) {
	calls := 0
	sendMail = func(_ string, _ smtp.Auth, _ string, _ []string, _ []byte) error {
		calls++
		return errors.New("535 authentication failed")
	}
	defer func() { sendMail = smtp.SendMail }()

	s, err := New(testConfig())
	require.NoError(t, err)

	err = s.Send("subject", "body", "markdown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "535")
	assert.Equal(t, maxAttempts, calls)
}
