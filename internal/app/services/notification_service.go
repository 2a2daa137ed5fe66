package services

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/email"
)

// Notification flags in the notifications settings document
const (
	FlagCommentNotifications   = "comment_notifications"
	FlagSelectionNotifications = "selection_notifications"
)

const notificationTimeout = 15 * time.Second

// NotificationPreferences decides whether a user wants a kind of mail
type NotificationPreferences interface {
	NotificationsEnabled(ctx context.Context, userID int64, flag string) bool
}

// NotificationService emails submission owners about reviews. Delivery is
// asynchronous and failures are only logged.
type NotificationService struct {
	sender email.Sender
	prefs  NotificationPreferences
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(sender email.Sender, prefs NotificationPreferences, logger zerolog.Logger) *NotificationService {
	return &NotificationService{
		sender: sender,
		prefs:  prefs,
		logger: logger,
	}
}

// CommentAdded tells the owner of sub that a reviewer commented on it
func (s *NotificationService) CommentAdded(ctx context.Context, sub *models.Submission, commenter, text string) {
	if sub == nil || sub.AuthorEmail == "" {
		return
	}
	to := mail.Address{Name: sub.AuthorName(), Address: sub.AuthorEmail}
	s.dispatch(ctx, sub.UserID, FlagCommentNotifications, email.CommentNotification(to, sub.Title, commenter, text))
}

// SubmissionSelected tells the owner of sub that it was selected for publication
func (s *NotificationService) SubmissionSelected(ctx context.Context, sub *models.Submission) {
	if sub == nil || sub.AuthorEmail == "" {
		return
	}
	to := mail.Address{Name: sub.AuthorName(), Address: sub.AuthorEmail}
	s.dispatch(ctx, sub.UserID, FlagSelectionNotifications, email.SelectionNotification(to, sub.Title))
}

// Wait blocks until all pending deliveries have finished
func (s *NotificationService) Wait() {
	s.wg.Wait()
}

func (s *NotificationService) dispatch(ctx context.Context, userID int64, flag string, msg email.Message) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notificationTimeout)
		defer cancel()

		if s.prefs != nil && !s.prefs.NotificationsEnabled(ctx, userID, flag) {
			s.logger.Debug().Int64("userID", userID).Str("flag", flag).Msg("Notification disabled by user settings")
			return
		}
		if err := s.sender.Send(ctx, msg); err != nil {
			s.logger.Error().Err(err).Int64("userID", userID).Str("subject", msg.Subject).Msg("Error sending notification email")
			return
		}
		s.logger.Debug().Int64("userID", userID).Str("subject", msg.Subject).Msg("Notification email sent")
	}()
}
