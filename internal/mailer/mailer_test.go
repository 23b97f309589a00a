package mailer

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type stubSender struct {
	sent []*gomail.Message
	err  error
}

func (s *stubSender) DialAndSend(messages ...*gomail.Message) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, messages...)
	return nil
}

func TestSendNoOpWhenUnconfigured(t *testing.T) {
	m := New(Config{}, zerolog.Nop())

	err := m.Send(context.Background(), "a@x.com", "subject", "<p>hi</p>")
	require.NoError(t, err, "missing configuration must never surface as an error")

	err = m.SendMentionEmail(context.Background(), "a@x.com", "Bob", "team chat", "http://app/chat")
	require.NoError(t, err)
}

func TestSendDeliversThroughDialer(t *testing.T) {
	sender := &stubSender{}
	m := &smtpMailer{
		cfg:       Config{From: "CollabFlow <noreply@collabflow.com>"},
		sender:    sender,
		logger:    zerolog.Nop(),
		templates: parseTemplates(),
	}

	err := m.Send(context.Background(), "a@x.com", "hello", "<p>body</p>")
	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	require.Equal(t, []string{"a@x.com"}, sender.sent[0].GetHeader("To"))
	require.Equal(t, []string{"hello"}, sender.sent[0].GetHeader("Subject"))
}

func TestSendWrapsDialerError(t *testing.T) {
	sender := &stubSender{err: errors.New("connection refused")}
	m := &smtpMailer{
		cfg:       Config{From: "noreply@collabflow.com"},
		sender:    sender,
		logger:    zerolog.Nop(),
		templates: parseTemplates(),
	}

	err := m.Send(context.Background(), "a@x.com", "hello", "<p>body</p>")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to send email")
}

func TestTemplateSendersRenderExpectedBodies(t *testing.T) {
	sender := &stubSender{}
	m := &smtpMailer{
		cfg:       Config{From: "noreply@collabflow.com"},
		sender:    sender,
		logger:    zerolog.Nop(),
		templates: parseTemplates(),
	}

	ctx := context.Background()
	require.NoError(t, m.SendMentionEmail(ctx, "a@x.com", "Bob", "team chat", "http://app/chat"))
	require.NoError(t, m.SendCommentEmail(ctx, "a@x.com", "Bob", "Launch Plan", "looks good to me", "http://app/docs/1"))
	require.NoError(t, m.SendAssignmentEmail(ctx, "a@x.com", "Bob", "Fix login", "http://app/issues/1"))
	require.NoError(t, m.SendInvitationEmail(ctx, "a@x.com", "Bob", "Platform Team", "http://app/join"))
	require.Len(t, sender.sent, 4)
}

func TestRenderUnknownTemplate(t *testing.T) {
	m := &smtpMailer{templates: parseTemplates()}

	_, err := m.render("nope", nil)
	require.ErrorIs(t, err, ErrTemplateNotFound)
}
