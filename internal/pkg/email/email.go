package email

import (
	"context"
	"fmt"
	"html"
	"net/mail"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a single outgoing email
type Message struct {
	To      mail.Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers email messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config holds configuration for outgoing mail
type Config struct {
	SendgridAPIKey string
	FromEmail      string
	FromName       string
	SubjectPrefix  string
}

// NewSender returns a SendGrid sender when an API key is configured,
// otherwise a sender that only writes the message to the log.
func NewSender(cfg Config, logger zerolog.Logger) Sender {
	if strings.TrimSpace(cfg.SendgridAPIKey) == "" {
		logger.Warn().Msg("SendGrid API key not configured - emails will be logged, not sent")
		return NewLogSender(logger)
	}
	return NewSendgridSender(cfg, logger)
}

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender
func (s *LogSender) Send(_ context.Context, msg Message) error {
	if msg.To.Address == "" {
		return fmt.Errorf("email has no recipient")
	}
	s.logger.Info().
		Str("to", msg.To.String()).
		Str("subject", msg.Subject).
		Str("body", msg.Text).
		Msg("Email not sent (log sender)")
	return nil
}

// CommentNotification builds the mail sent to a submission owner when a reviewer comments.
func CommentNotification(to mail.Address, submissionTitle, commenterName, comment string) Message {
	text := fmt.Sprintf(
		"Hello %s,\n\n%s left a comment on your submission \"%s\":\n\n%s\n\nSign in to the magazine portal to reply.\n",
		to.Name, commenterName, submissionTitle, comment,
	)
	body := fmt.Sprintf(`<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<p>Hello %s,</p>
<p><strong>%s</strong> left a comment on your submission <em>%s</em>:</p>
<blockquote>%s</blockquote>
<p>Sign in to the magazine portal to reply.</p>
</div></body></html>`,
		html.EscapeString(to.Name), html.EscapeString(commenterName),
		html.EscapeString(submissionTitle), html.EscapeString(comment))

	return Message{
		To:      to,
		Subject: "New comment on your submission",
		Text:    text,
		HTML:    body,
	}
}

// SelectionNotification builds the mail sent when a submission is selected for publication.
func SelectionNotification(to mail.Address, submissionTitle string) Message {
	text := fmt.Sprintf(
		"Hello %s,\n\nCongratulations! Your submission \"%s\" was selected for the University Magazine.\n",
		to.Name, submissionTitle,
	)
	body := fmt.Sprintf(`<html><body><div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
<h2 style="color: #333;">Congratulations!</h2>
<p>Hello %s,</p>
<p>Your submission <em>%s</em> was selected for the University Magazine.</p>
</div></body></html>`,
		html.EscapeString(to.Name), html.EscapeString(submissionTitle))

	return Message{
		To:      to,
		Subject: "Your submission was selected",
		Text:    text,
		HTML:    body,
	}
}
