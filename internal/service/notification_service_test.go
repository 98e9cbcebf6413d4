package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colegio-app/colegio-api/internal/models"
	appErrors "github.com/colegio-app/colegio-api/pkg/errors"
)

type mockNotifRepo struct {
	batches     [][]models.Notification
	unread      map[string]int
	read        []string
	markAllUser string
	markAllN    int
}

func (m *mockNotifRepo) CreateMany(ctx context.Context, items []models.Notification) error {
	m.batches = append(m.batches, items)
	return nil
}

func (m *mockNotifRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, req models.PageRequest) ([]models.Notification, int, error) {
	return []models.Notification{{ID: "n-1", UserID: userID}}, 1, nil
}

func (m *mockNotifRepo) CountUnread(ctx context.Context, userID string) (int, error) {
	return m.unread[userID], nil
}

func (m *mockNotifRepo) MarkRead(ctx context.Context, id, userID string) (bool, error) {
	for _, r := range m.read {
		if r == id {
			return false, nil
		}
	}
	m.read = append(m.read, id)
	return id != "missing", nil
}

func (m *mockNotifRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	m.markAllUser = userID
	return m.markAllN, nil
}

func newNotifService(repo *mockNotifRepo, directory *fakeDirectory) *NotificationService {
	if directory == nil {
		directory = &fakeDirectory{}
	}
	// No Redis in unit tests; the badge count falls through to storage.
	return NewNotificationService(repo, directory, nil, time.Minute, nil, nil)
}

func TestNotifyManyWritesOneRowPerRecipient(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := newNotifService(repo, nil)

	related := "lic-1"
	err := svc.NotifyMany(context.Background(), []string{"u1", "u2"}, models.NotifLicenseRequest, "t", "m", &related)
	require.NoError(t, err)
	require.Len(t, repo.batches, 1)
	require.Len(t, repo.batches[0], 2)
	assert.Equal(t, "u1", repo.batches[0][0].UserID)
	assert.Equal(t, models.NotifLicenseRequest, repo.batches[0][0].Type)
	assert.Equal(t, &related, repo.batches[0][1].RelatedID)
}

func TestNotifyManyEmptyRecipients(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := newNotifService(repo, nil)

	require.NoError(t, svc.NotifyMany(context.Background(), nil, models.NotifGeneral, "t", "m", nil))
	assert.Empty(t, repo.batches)
}

func TestNotifyAdminsResolvesDirectory(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := newNotifService(repo, &fakeDirectory{byRole: map[models.UserRole][]models.User{
		models.RoleAdmin: {{ID: "admin-1"}, {ID: "admin-2"}},
	}})

	require.NoError(t, svc.NotifyAdmins(context.Background(), models.NotifPaymentSubmitted, "t", "m", nil))
	require.Len(t, repo.batches, 1)
	assert.Len(t, repo.batches[0], 2)
}

func TestNotifyAllParents(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := newNotifService(repo, &fakeDirectory{byRole: map[models.UserRole][]models.User{
		models.RoleParent: {{ID: "padre-1"}},
	}})

	require.NoError(t, svc.NotifyAllParents(context.Background(), models.NotifEventCreated, "t", "m", nil))
	require.Len(t, repo.batches, 1)
	assert.Equal(t, "padre-1", repo.batches[0][0].UserID)
}

func TestUnreadCountFallsThroughWithoutCache(t *testing.T) {
	repo := &mockNotifRepo{unread: map[string]int{"u1": 4}}
	svc := newNotifService(repo, nil)

	n, err := svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestMarkReadUnknownIsNotFound(t *testing.T) {
	repo := &mockNotifRepo{}
	svc := newNotifService(repo, nil)

	err := svc.MarkRead(context.Background(), "u1", "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.MarkRead(context.Background(), "u1", "n-1"))
}

func TestMarkAllRead(t *testing.T) {
	repo := &mockNotifRepo{markAllN: 5}
	svc := newNotifService(repo, nil)

	n, err := svc.MarkAllRead(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "u1", repo.markAllUser)
}

func TestListInbox(t *testing.T) {
	svc := newNotifService(&mockNotifRepo{}, nil)

	items, meta, err := svc.List(context.Background(), "u1", false, models.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, 1, meta.Total)
	assert.Equal(t, 10, meta.PerPage)
}
