package service

import (
	"context"

	"github.com/colegio-app/colegio-api/internal/models"
)

// Notifier fans a domain happening out to recipient inboxes. Delivery is
// best effort: callers log a failure and keep going. The triggering
// operation never rolls back and nothing is retried.
type Notifier interface {
	NotifyMany(ctx context.Context, recipientIDs []string, typ models.NotificationType, title, message string, relatedID *string) error
}

// recipientDirectory resolves recipient groups for fan-out.
type recipientDirectory interface {
	FindActiveByRole(ctx context.Context, role models.UserRole) ([]models.User, error)
	FindParentsOfStudent(ctx context.Context, studentID string) ([]models.User, error)
}
