package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
	"github.com/templui/folio/internal/model"
)

type EmailService struct {
	client      *resend.Client
	fromEmail   string
	notifyEmail string
	isDev       bool
	appURL      string
	appName     string
}

func NewEmailService(apiKey, fromEmail, notifyEmail, appURL, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:      client,
		fromEmail:   fromEmail,
		notifyEmail: notifyEmail,
		isDev:       isDev,
		appURL:      appURL,
		appName:     appName,
	}
}

// NotifyNewMessage tells the site owner about a hire request. Replies go
// straight to the sender.
func (s *EmailService) NotifyNewMessage(ctx context.Context, msg *model.ContactMessage) error {
	if s.notifyEmail == "" {
		slog.Debug("new message notification skipped, NOTIFY_EMAIL not set", "message_id", msg.ID)
		return nil
	}

	inboxURL := fmt.Sprintf("%s/dashboard/messages", s.appURL)
	subject, body := newMessageEmailTemplate(msg, inboxURL, s.appName)

	return s.send(ctx, "new_message", &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{s.notifyEmail},
		ReplyTo: msg.Email,
		Subject: subject,
		Text:    body,
	})
}

func (s *EmailService) SendAccountDeletedEmail(ctx context.Context, email, name string) error {
	subject, body := accountDeletedEmailTemplate(name, s.appName)

	return s.send(ctx, "account_deleted", &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	})
}

func (s *EmailService) send(ctx context.Context, kind string, params *resend.SendEmailRequest) error {
	if s.isDev {
		slog.Info("email sent (dev mode)", "type", kind, "to", params.To, "subject", params.Subject)
		return nil
	}

	if s.client == nil {
		return fmt.Errorf("email service not configured (missing RESEND_API_KEY)")
	}

	_, err := s.client.Emails.SendWithContext(ctx, params)
	if err == nil {
		slog.Info("email sent", "type", kind, "to", params.To)
	}
	return err
}
