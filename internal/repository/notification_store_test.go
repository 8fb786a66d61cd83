package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
)

func seededNotifications() []models.Notification {
	now := time.Date(2024, 9, 10, 12, 0, 0, 0, time.UTC)
	return []models.Notification{
		{ID: "n1", Title: "a", IssuedAt: now, Read: false},
		{ID: "n2", Title: "b", IssuedAt: now.Add(-time.Hour), Read: true},
		{ID: "n3", Title: "c", IssuedAt: now.Add(-2 * time.Hour), Read: false},
	}
}

func TestNotificationStoreCountsUnreadOnCreate(t *testing.T) {
	store := NewNotificationStore(seededNotifications())
	assert.Equal(t, 2, store.UnreadCount())
}

func TestNotificationStoreAddPrepends(t *testing.T) {
	store := NewNotificationStore(seededNotifications())

	store.Add(&models.Notification{Title: "new"})
	store.Add(&models.Notification{Title: "already read", Read: true})

	all := store.All()
	require.Len(t, all, 5)
	assert.Equal(t, "already read", all[0].Title)
	assert.Equal(t, "new", all[1].Title)
	assert.NotEmpty(t, all[1].ID)
	assert.Equal(t, 3, store.UnreadCount())
}

func TestNotificationStoreMarkAsReadIsIdempotent(t *testing.T) {
	store := NewNotificationStore(seededNotifications())

	changed, err := store.MarkAsRead("n1")
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, 1, store.UnreadCount())

	changed, err = store.MarkAsRead("n1")
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, 1, store.UnreadCount())

	_, err = store.MarkAsRead("missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, store.UnreadCount())
}

func TestNotificationStoreMarkAll(t *testing.T) {
	store := NewNotificationStore(seededNotifications())

	assert.Equal(t, 2, store.MarkAllAsRead())
	assert.Equal(t, 0, store.UnreadCount())
	for _, n := range store.All() {
		assert.True(t, n.Read)
	}
	assert.Equal(t, 0, store.MarkAllAsRead())
}

func TestNotificationStoreDelete(t *testing.T) {
	store := NewNotificationStore(seededNotifications())

	require.NoError(t, store.Delete("n2"))
	assert.Equal(t, 2, store.UnreadCount(), "deleting a read item keeps the counter")

	require.NoError(t, store.Delete("n1"))
	assert.Equal(t, 1, store.UnreadCount())

	assert.ErrorIs(t, store.Delete("n1"), ErrNotFound)
	assert.Len(t, store.All(), 1)
}

func TestNotificationStoreStateRecountsUnread(t *testing.T) {
	store := NewNotificationStore(seededNotifications())
	raw := []byte(`{"notifications":[{"id":"x","read":false},{"id":"y","read":false}],"unread_count":17}`)

	require.NoError(t, store.UnmarshalState(raw))
	assert.Equal(t, 2, store.UnreadCount())

	blob, err := store.MarshalState()
	require.NoError(t, err)
	restored := NewNotificationStore(nil)
	require.NoError(t, restored.UnmarshalState(blob))
	assert.Equal(t, store.All(), restored.All())
}

func TestNotificationStoreReturnsCopies(t *testing.T) {
	store := NewNotificationStore([]models.Notification{{ID: "n1", TargetGroups: []string{"g1"}}})

	all := store.All()
	all[0].TargetGroups[0] = "mutated"
	all[0].Read = true

	got, err := store.Get("n1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.TargetGroups[0])
	assert.False(t, got.Read)
}
