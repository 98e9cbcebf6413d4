package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/colegio-app/colegio-api/internal/models"
)

// NotificationRepository persists per-recipient inbox rows.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// CreateMany inserts one row per recipient in a single statement. Ids and
// timestamps are assigned here; a nil or empty batch is a no-op.
func (r *NotificationRepository) CreateMany(ctx context.Context, items []models.Notification) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now().UTC()
	values := make([]string, 0, len(items))
	args := []interface{}{}
	for i := range items {
		n := &items[i]
		if n.ID == "" {
			n.ID = uuid.NewString()
		}
		n.IsRead = false
		n.CreatedAt = now
		n.UpdatedAt = now
		base := len(args)
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, FALSE, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, n.ID, n.UserID, n.Type, n.Title, n.Message, n.RelatedID, n.CreatedAt, n.UpdatedAt)
	}
	query := "INSERT INTO notificaciones (id, user_id, type, title, message, is_read, related_id, created_at, updated_at) VALUES " +
		strings.Join(values, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert notifications: %w", err)
	}
	return nil
}

// ListByUser pages one recipient's inbox, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, unreadOnly bool, req models.PageRequest) ([]models.Notification, int, error) {
	req = req.Normalize()
	where := "WHERE user_id = $1"
	if unreadOnly {
		where += " AND is_read = FALSE"
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM notificaciones "+where, userID); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	items := []models.Notification{}
	query := fmt.Sprintf("SELECT * FROM notificaciones %s ORDER BY created_at DESC LIMIT %d OFFSET %d",
		where, req.PerPage, req.Offset())
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, 0, fmt.Errorf("list notifications: %w", err)
	}
	return items, total, nil
}

// CountUnread returns the recipient's unread badge count.
func (r *NotificationRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	var n int
	query := "SELECT COUNT(*) FROM notificaciones WHERE user_id = $1 AND is_read = FALSE"
	if err := r.db.GetContext(ctx, &n, query, userID); err != nil {
		return 0, fmt.Errorf("count unread: %w", err)
	}
	return n, nil
}

// MarkRead flips one notification owned by the recipient; returns false when
// no row matched.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	if !ValidID(id) {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx,
		"UPDATE notificaciones SET is_read = TRUE, updated_at = $1 WHERE id = $2 AND user_id = $3",
		time.Now().UTC(), id, userID)
	if err != nil {
		return false, fmt.Errorf("mark read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark read result: %w", err)
	}
	return affected > 0, nil
}

// MarkAllRead flips every unread row for the recipient and returns how many
// it touched.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notificaciones SET is_read = TRUE, updated_at = $1 WHERE user_id = $2 AND is_read = FALSE",
		time.Now().UTC(), userID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("mark all read result: %w", err)
	}
	return int(affected), nil
}
