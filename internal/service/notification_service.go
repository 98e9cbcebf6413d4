package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type notificationRepository interface {
	CreateMany(ctx context.Context, items []models.Notification) error
	ListByUser(ctx context.Context, userID string, unreadOnly bool, req models.PageRequest) ([]models.Notification, int, error)
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id, userID string) (bool, error)
	MarkAllRead(ctx context.Context, userID string) (int, error)
}

// NotificationService owns the per-recipient inbox and implements Notifier
// for the domain services. The unread badge count is cached in Redis and
// invalidated on every write touching an inbox.
type NotificationService struct {
	repo      notificationRepository
	directory recipientDirectory
	cache     *redis.Client
	cacheTTL  time.Duration
	metrics   *MetricsService
	logger    *zap.Logger
}

func NewNotificationService(repo notificationRepository, directory recipientDirectory, cache *redis.Client, cacheTTL time.Duration, metrics *MetricsService, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &NotificationService{repo: repo, directory: directory, cache: cache, cacheTTL: cacheTTL, metrics: metrics, logger: logger}
}

// NotifyMany writes one inbox row per recipient. An empty recipient list is
// a no-op, not an error.
func (s *NotificationService) NotifyMany(ctx context.Context, recipientIDs []string, typ models.NotificationType, title, message string, relatedID *string) error {
	if len(recipientIDs) == 0 {
		return nil
	}
	items := make([]models.Notification, 0, len(recipientIDs))
	for _, userID := range recipientIDs {
		items = append(items, models.Notification{
			UserID:    userID,
			Type:      typ,
			Title:     title,
			Message:   message,
			RelatedID: relatedID,
		})
	}
	if err := s.repo.CreateMany(ctx, items); err != nil {
		return err
	}
	s.metrics.ObserveFanout(string(typ), len(items))
	for _, userID := range recipientIDs {
		s.invalidateUnread(ctx, userID)
	}
	return nil
}

// NotifyAdmins fans out to every active admin account.
func (s *NotificationService) NotifyAdmins(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error {
	admins, err := s.directory.FindActiveByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	return s.NotifyMany(ctx, userIDs(admins), typ, title, message, relatedID)
}

// NotifyAllParents fans out to every active parent account.
func (s *NotificationService) NotifyAllParents(ctx context.Context, typ models.NotificationType, title, message string, relatedID *string) error {
	parents, err := s.directory.FindActiveByRole(ctx, models.RoleParent)
	if err != nil {
		return err
	}
	return s.NotifyMany(ctx, userIDs(parents), typ, title, message, relatedID)
}

// NotifyParentsOfStudent fans out to the parents linked to a student.
func (s *NotificationService) NotifyParentsOfStudent(ctx context.Context, studentID string, typ models.NotificationType, title, message string, relatedID *string) error {
	parents, err := s.directory.FindParentsOfStudent(ctx, studentID)
	if err != nil {
		return err
	}
	return s.NotifyMany(ctx, userIDs(parents), typ, title, message, relatedID)
}

// List pages the caller's own inbox.
func (s *NotificationService) List(ctx context.Context, userID string, unreadOnly bool, req models.PageRequest) ([]models.Notification, models.PageMeta, error) {
	req = req.Normalize()
	items, total, err := s.repo.ListByUser(ctx, userID, unreadOnly, req)
	if err != nil {
		return nil, models.PageMeta{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "list notifications")
	}
	return items, models.NewPageMeta(total, req), nil
}

// UnreadCount returns the caller's badge count, served from Redis when warm.
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int, error) {
	key := unreadKey(userID)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, key).Result(); err == nil {
			if n, convErr := strconv.Atoi(raw); convErr == nil {
				s.metrics.ObserveUnreadLookup(true)
				return n, nil
			}
		}
	}
	s.metrics.ObserveUnreadLookup(false)
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "count unread")
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, strconv.Itoa(n), s.cacheTTL).Err(); err != nil {
			s.logger.Warn("cache unread count", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return n, nil
}

// MarkRead flips one of the caller's notifications. Unknown or foreign ids
// surface as not found.
func (s *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	ok, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark notification read")
	}
	if !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// MarkAllRead flips the caller's whole inbox and returns how many rows
// changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "mark inbox read")
	}
	if n > 0 {
		s.invalidateUnread(ctx, userID)
	}
	return n, nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadKey(userID)).Err(); err != nil {
		s.logger.Warn("invalidate unread count", zap.String("user_id", userID), zap.Error(err))
	}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notif:unread:%s", userID)
}

func userIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}
