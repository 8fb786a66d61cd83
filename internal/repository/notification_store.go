package repository

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/noah-isme/unischedule-api/internal/models"
)

// NotificationStore keeps notifications newest first together with an aggregate
// unread counter. The counter always equals the number of unread items.
type NotificationStore struct {
	mu            sync.RWMutex
	notifications []models.Notification
	unread        int
}

// NewNotificationStore creates a store from the given notifications and counts the unread ones.
func NewNotificationStore(items []models.Notification) *NotificationStore {
	s := &NotificationStore{notifications: cloneNotifications(items)}
	s.unread = countUnread(s.notifications)
	return s
}

// All returns every notification, newest first.
func (s *NotificationStore) All() []models.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneNotifications(s.notifications)
}

// UnreadCount returns the aggregate counter.
func (s *NotificationStore) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unread
}

// Get returns a copy of the notification with the given id.
func (s *NotificationStore) Get(id string) (*models.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return nil, ErrNotFound
	}
	item := cloneNotification(s.notifications[idx])
	return &item, nil
}

// Add prepends the notification and bumps the counter when it is unread.
func (s *NotificationStore) Add(n *models.Notification) {
	if n.ID == "" {
		n.ID = "notification_" + uuid.NewString()
	}
	item := cloneNotification(*n)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append([]models.Notification{item}, s.notifications...)
	if !item.Read {
		s.unread++
	}
}

// MarkAsRead flags one notification. Marking an already read item changes nothing.
func (s *NotificationStore) MarkAsRead(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return false, ErrNotFound
	}
	if s.notifications[idx].Read {
		return false, nil
	}
	s.notifications[idx].Read = true
	if s.unread > 0 {
		s.unread--
	}
	return true, nil
}

// MarkAllAsRead flags every notification and returns how many changed.
func (s *NotificationStore) MarkAllAsRead() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := 0
	for i := range s.notifications {
		if !s.notifications[i].Read {
			s.notifications[i].Read = true
			changed++
		}
	}
	s.unread = 0
	return changed
}

// Delete removes a notification, decrementing the counter only if it was unread.
func (s *NotificationStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.indexOf(id)
	if idx < 0 {
		return ErrNotFound
	}
	wasUnread := !s.notifications[idx].Read
	s.notifications = append(s.notifications[:idx], s.notifications[idx+1:]...)
	if wasUnread && s.unread > 0 {
		s.unread--
	}
	return nil
}

// MarshalState serialises the store for persistence.
func (s *NotificationStore) MarshalState() ([]byte, error) {
	s.mu.RLock()
	state := models.NotificationState{
		Notifications: cloneNotifications(s.notifications),
		UnreadCount:   s.unread,
	}
	s.mu.RUnlock()
	return json.Marshal(state)
}

// UnmarshalState replaces the collection. The persisted counter is ignored and recomputed.
func (s *NotificationStore) UnmarshalState(raw []byte) error {
	var state models.NotificationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return fmt.Errorf("decode notification state: %w", err)
	}
	s.mu.Lock()
	s.notifications = state.Notifications
	s.unread = countUnread(state.Notifications)
	s.mu.Unlock()
	return nil
}

func (s *NotificationStore) indexOf(id string) int {
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			return i
		}
	}
	return -1
}

func countUnread(items []models.Notification) int {
	n := 0
	for i := range items {
		if !items[i].Read {
			n++
		}
	}
	return n
}

func cloneNotification(n models.Notification) models.Notification {
	n.TargetRoles = append([]models.UserRole(nil), n.TargetRoles...)
	n.TargetFaculties = append([]string(nil), n.TargetFaculties...)
	n.TargetGroups = append([]string(nil), n.TargetGroups...)
	return n
}

func cloneNotifications(items []models.Notification) []models.Notification {
	out := make([]models.Notification, len(items))
	for i := range items {
		out[i] = cloneNotification(items[i])
	}
	return out
}
