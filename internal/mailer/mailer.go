// Package mailer sends transactional notification emails over SMTP. Email is
// a best-effort side channel: the in-app notification row is the durable
// record, so callers log send failures and move on.
package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"

	"github.com/rs/zerolog"
	"gopkg.in/gomail.v2"

	"github.com/collabflow/collabflow-api/internal/observability"
)

// ErrTemplateNotFound indicates an unknown template name was requested.
var ErrTemplateNotFound = errors.New("email template not found")

// Config carries SMTP credentials. An empty Host disables sending entirely:
// every Send becomes a guaranteed no-op success so development and test
// environments stay side-effect free.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer delivers notification emails.
type Mailer interface {
	Send(ctx context.Context, to, subject, html string) error
	SendMentionEmail(ctx context.Context, to, mentionedBy, where, link string) error
	SendCommentEmail(ctx context.Context, to, commenter, where, preview, link string) error
	SendAssignmentEmail(ctx context.Context, to, assignedBy, issueTitle, link string) error
	SendInvitationEmail(ctx context.Context, to, inviter, teamName, link string) error
}

type smtpSender interface {
	DialAndSend(...*gomail.Message) error
}

type smtpMailer struct {
	cfg       Config
	sender    smtpSender
	logger    zerolog.Logger
	templates map[string]*template.Template
}

// New constructs an SMTP-backed mailer. With no host configured the returned
// mailer never opens a connection.
func New(cfg Config, logger zerolog.Logger) Mailer {
	m := &smtpMailer{
		cfg:       cfg,
		logger:    logger.With().Str("component", "mailer").Logger(),
		templates: parseTemplates(),
	}
	if cfg.Host != "" {
		m.sender = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return m
}

func (m *smtpMailer) Send(ctx context.Context, to, subject, html string) error {
	if m.sender == nil {
		m.logger.Debug().Str("to", to).Str("subject", subject).Msg("smtp not configured, skipping email")
		observability.EmailsSentTotal().WithLabelValues("skipped").Inc()
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.cfg.From)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)

	if err := m.sender.DialAndSend(msg); err != nil {
		observability.EmailsSentTotal().WithLabelValues("error").Inc()
		return fmt.Errorf("failed to send email: %w", err)
	}

	observability.EmailsSentTotal().WithLabelValues("sent").Inc()
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("email sent")
	return nil
}

func (m *smtpMailer) SendMentionEmail(ctx context.Context, to, mentionedBy, where, link string) error {
	subject := fmt.Sprintf("%s mentioned you in %s", mentionedBy, where)
	body, err := m.render("mention", map[string]string{
		"MentionedBy": mentionedBy,
		"Context":     where,
		"Link":        link,
	})
	if err != nil {
		return err
	}
	return m.Send(ctx, to, subject, body)
}

func (m *smtpMailer) SendCommentEmail(ctx context.Context, to, commenter, where, preview, link string) error {
	subject := fmt.Sprintf("%s commented on %s", commenter, where)
	body, err := m.render("comment", map[string]string{
		"Commenter": commenter,
		"Context":   where,
		"Preview":   preview,
		"Link":      link,
	})
	if err != nil {
		return err
	}
	return m.Send(ctx, to, subject, body)
}

func (m *smtpMailer) SendAssignmentEmail(ctx context.Context, to, assignedBy, issueTitle, link string) error {
	subject := fmt.Sprintf("You were assigned to %q", issueTitle)
	body, err := m.render("assignment", map[string]string{
		"AssignedBy": assignedBy,
		"IssueTitle": issueTitle,
		"Link":       link,
	})
	if err != nil {
		return err
	}
	return m.Send(ctx, to, subject, body)
}

func (m *smtpMailer) SendInvitationEmail(ctx context.Context, to, inviter, teamName, link string) error {
	subject := fmt.Sprintf("%s invited you to join %s", inviter, teamName)
	body, err := m.render("invitation", map[string]string{
		"Inviter":  inviter,
		"TeamName": teamName,
		"Link":     link,
	})
	if err != nil {
		return err
	}
	return m.Send(ctx, to, subject, body)
}

func (m *smtpMailer) render(name string, data map[string]string) (string, error) {
	tmpl, ok := m.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return body.String(), nil
}

func parseTemplates() map[string]*template.Template {
	parsed := make(map[string]*template.Template, len(emailTemplates))
	for name, raw := range emailTemplates {
		parsed[name] = template.Must(template.New(name).Parse(raw))
	}
	return parsed
}

// Embedded email templates. Each body links back into the application.
var emailTemplates = map[string]string{
	"mention": `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>You were mentioned!</h2>
  <p>{{.MentionedBy}} mentioned you in {{.Context}}.</p>
  <p>
    <a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">
      View {{.Context}}
    </a>
  </p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;" />
  <p style="color: #666; font-size: 12px;">This is an automated notification from CollabFlow.</p>
</div>`,

	"comment": `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New comment</h2>
  <p>{{.Commenter}} commented on {{.Context}}:</p>
  <div style="background-color: #f5f5f5; padding: 15px; border-radius: 5px; margin: 15px 0;">
    <p style="margin: 0;">{{.Preview}}</p>
  </div>
  <p>
    <a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">
      View comment
    </a>
  </p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;" />
  <p style="color: #666; font-size: 12px;">This is an automated notification from CollabFlow.</p>
</div>`,

	"assignment": `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>New assignment</h2>
  <p>{{.AssignedBy}} assigned you to:</p>
  <h3 style="margin: 15px 0;">{{.IssueTitle}}</h3>
  <p>
    <a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">
      View issue
    </a>
  </p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;" />
  <p style="color: #666; font-size: 12px;">This is an automated notification from CollabFlow.</p>
</div>`,

	"invitation": `<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>Team invitation</h2>
  <p>{{.Inviter}} invited you to join {{.TeamName}}.</p>
  <p>
    <a href="{{.Link}}" style="background-color: #007bff; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">
      Join team
    </a>
  </p>
  <hr style="margin: 20px 0; border: none; border-top: 1px solid #eee;" />
  <p style="color: #666; font-size: 12px;">This is an automated notification from CollabFlow.</p>
</div>`,
}
