package service

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/repository"
	"github.com/templui/folio/internal/validation"
)

const defaultMessagePageSize = 20

var messagePaths = []string{PathDashboardMessages}

// MessagePage is one page of the admin inbox.
type MessagePage struct {
	Messages []*model.ContactMessage `json:"messages"`
	Total    int                     `json:"total"`
	Unread   int                     `json:"unread"`
	Page     int                     `json:"page"`
	PerPage  int                     `json:"perPage"`
}

type MessageService struct {
	messageRepository repository.MessageRepository
	analyticsService  *AnalyticsService
	emailService      *EmailService
	revalidator       *Revalidator
	policy            *bluemonday.Policy
}

func NewMessageService(
	messageRepository repository.MessageRepository,
	analyticsService *AnalyticsService,
	emailService *EmailService,
	revalidator *Revalidator,
) *MessageService {
	return &MessageService{
		messageRepository: messageRepository,
		analyticsService:  analyticsService,
		emailService:      emailService,
		revalidator:       revalidator,
		policy:            bluemonday.StrictPolicy(),
	}
}

// strip removes all markup. The strict policy escapes what it keeps, so the
// result is unescaped again before it is stored as plain text.
func (s *MessageService) strip(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
}

// Send stores a public hire request and counts it in today's analytics.
func (s *MessageService) Send(ctx context.Context, in validation.MessageInput) (*model.ContactMessage, error) {
	in.Name = s.strip(in.Name)
	in.Subject = s.strip(in.Subject)
	in.Message = s.strip(in.Message)

	msg, err := validation.ValidateMessage(in)
	if err != nil {
		return nil, err
	}

	msg.ID = uuid.New().String()
	msg.Source = model.MessageSourcePortfolio
	msg.Read = false
	msg.CreatedAt = time.Now().UTC()

	if err := s.messageRepository.Create(ctx, msg); err != nil {
		return nil, upstream("create message", err)
	}

	slog.Info("message received", "message_id", msg.ID)

	if err := s.analyticsService.TrackContactSubmit(ctx); err != nil {
		slog.Error("failed to count contact submit", "message_id", msg.ID, "error", err)
	}

	if err := s.emailService.NotifyNewMessage(ctx, msg); err != nil {
		slog.Warn("failed to send new message notification", "message_id", msg.ID, "error", err)
	}

	if err := s.revalidator.Revalidate(ctx, messagePaths...); err != nil {
		return nil, err
	}
	return msg, nil
}

// List returns the inbox newest first. page starts at 1.
func (s *MessageService) List(ctx context.Context, caller *model.User, page, perPage int) (*MessagePage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}
	return s.list(ctx, page, perPage)
}

func (s *MessageService) list(ctx context.Context, page, perPage int) (*MessagePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = defaultMessagePageSize
	}

	messages, err := s.messageRepository.List(ctx, perPage, (page-1)*perPage)
	if err != nil {
		return nil, upstream("list messages", err)
	}
	total, err := s.messageRepository.Count(ctx)
	if err != nil {
		return nil, upstream("count messages", err)
	}
	unread, err := s.messageRepository.CountUnread(ctx)
	if err != nil {
		return nil, upstream("count unread messages", err)
	}

	return &MessagePage{
		Messages: messages,
		Total:    total,
		Unread:   unread,
		Page:     page,
		PerPage:  perPage,
	}, nil
}

func (s *MessageService) MarkRead(ctx context.Context, caller *model.User, id string, read bool) (*model.ContactMessage, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, err
	}

	if err := s.messageRepository.SetRead(ctx, id, read); err != nil {
		return nil, messageError("mark message read", err)
	}

	msg, err := s.messageRepository.ByID(ctx, id)
	if err != nil {
		return nil, messageError("get message", err)
	}

	if err := s.revalidator.Revalidate(ctx, messagePaths...); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *MessageService) Delete(ctx context.Context, caller *model.User, id string) error {
	if err := requireAdmin(caller); err != nil {
		return err
	}

	if err := s.messageRepository.Delete(ctx, id); err != nil {
		return messageError("delete message", err)
	}

	slog.Info("message deleted", "message_id", id, "user_id", caller.ID)
	return s.revalidator.Revalidate(ctx, messagePaths...)
}

func messageError(op string, err error) error {
	if errors.Is(err, repository.ErrMessageNotFound) {
		return notFound("message not found", err)
	}
	return upstream(op, err)
}
