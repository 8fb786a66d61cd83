package service

import (
	"sync"

	"github.com/noah-isme/unischedule-api/internal/models"
)

type recordingObserver struct {
	mu      sync.Mutex
	touched []models.StoreName
}

func (r *recordingObserver) Touch(store models.StoreName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touched = append(r.touched, store)
}

func (r *recordingObserver) stores() []models.StoreName {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.StoreName(nil), r.touched...)
}
