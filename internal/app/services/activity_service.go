package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/yigit/unimag/internal/app/models"
	"github.com/yigit/unimag/internal/pkg/apperrors"
	"github.com/yigit/unimag/internal/pkg/helpers"
	"github.com/yigit/unimag/internal/pkg/websocket"
)

// MessageTypeActivity is the websocket message type of a new activity entry
const MessageTypeActivity = "activity"

// Publisher pushes messages to live feed subscribers
type Publisher interface {
	Publish(msgType string, data interface{}, channels ...string)
}

// ActivityService writes the audit trail and fans entries out to the live feed
type ActivityService struct {
	repo      ActivityStore
	publisher Publisher
	logger    zerolog.Logger
}

// NewActivityService creates a new ActivityService
func NewActivityService(repo ActivityStore, publisher Publisher, logger zerolog.Logger) *ActivityService {
	return &ActivityService{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Record stores an entry and publishes it, returning any storage error
func (s *ActivityService) Record(ctx context.Context, userID *int64, actionType, details string) (*models.ActivityLog, error) {
	actionType = strings.TrimSpace(actionType)
	if actionType == "" {
		return nil, apperrors.NewValidationError("action_type", "Action type is required")
	}

	entry := &models.ActivityLog{
		UserID:  userID,
		Action:  actionType,
		Details: details,
	}
	if err := s.repo.Create(context.WithoutCancel(ctx), entry); err != nil {
		return nil, fmt.Errorf("failed to record activity: %w", err)
	}

	if s.publisher != nil {
		s.publisher.Publish(MessageTypeActivity, entry, websocket.ChannelAdmin, websocket.ChannelManager)
	}
	return entry, nil
}

// Log records an action. Errors are logged and swallowed so auditing never fails a request.
func (s *ActivityService) Log(ctx context.Context, userID *int64, actionType, details string) int64 {
	entry, err := s.Record(ctx, userID, actionType, details)
	if err != nil {
		ev := s.logger.Error().Err(err).Str("action", actionType)
		if userID != nil {
			ev = ev.Int64("userID", *userID)
		}
		ev.Msg("Error logging activity")
		return 0
	}
	return entry.ID
}

// Recent returns the newest entries, capping limit to a sane range
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]*models.ActivityLog, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > helpers.MaxPageSize {
		limit = helpers.MaxPageSize
	}
	logs, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}
	return logs, nil
}
