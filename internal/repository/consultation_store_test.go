package repository

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/unischedule-api/internal/models"
)

func TestConsultationStoreRegisterUnderContention(t *testing.T) {
	store := NewConsultationStore([]models.Consultation{{ID: "c1", MaxStudents: 5}})

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := store.Register("c1", fmt.Sprintf("S%02d", i)); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	c, err := store.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, 5, succeeded)
	assert.Len(t, c.RegisteredStudents, 5)
	assert.True(t, c.IsFull())
}

func TestConsultationStoreRegisterErrors(t *testing.T) {
	store := NewConsultationStore([]models.Consultation{{ID: "c1", MaxStudents: 1}})

	_, err := store.Register("c1", "S1")
	require.NoError(t, err)

	_, err = store.Register("c1", "S1")
	assert.ErrorIs(t, err, models.ErrAlreadyRegistered)

	_, err = store.Register("c1", "S2")
	assert.ErrorIs(t, err, models.ErrConsultationFull)

	_, err = store.Register("missing", "S1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConsultationStoreUnregisterAbsentIsNoop(t *testing.T) {
	store := NewConsultationStore([]models.Consultation{{ID: "c1", MaxStudents: 2, RegisteredStudents: []string{"S1"}}})

	c, removed, err := store.Unregister("c1", "S9")
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, []string{"S1"}, c.RegisteredStudents)

	c, removed, err = store.Unregister("c1", "S1")
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, c.RegisteredStudents)
}

func TestConsultationStoreListFilters(t *testing.T) {
	store := NewConsultationStore([]models.Consultation{
		{ID: "c1", Faculty: "fcs", Groups: []string{"ПГС-101", "ПГС-102"}, MaxStudents: 1},
		{ID: "c2", Faculty: "fad", Groups: []string{"АРХ-101"}, MaxStudents: 1},
	})

	assert.Len(t, store.List(models.ConsultationFilter{}), 2)
	assert.Len(t, store.List(models.ConsultationFilter{Faculty: "fcs"}), 1)
	got := store.List(models.ConsultationFilter{Group: "АРХ-101"})
	require.Len(t, got, 1)
	assert.Equal(t, "c2", got[0].ID)
}

func TestConsultationStoreUpdateRollsBackOnError(t *testing.T) {
	store := NewConsultationStore([]models.Consultation{{ID: "c1", Subject: "Math", MaxStudents: 1}})

	_, err := store.Update("c1", func(c *models.Consultation) error {
		c.Subject = "Physics"
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	c, err := store.Get("c1")
	require.NoError(t, err)
	assert.Equal(t, "Math", c.Subject)
}

func TestConsultationStoreStateRoundTrip(t *testing.T) {
	store := NewConsultationStore(nil)
	store.Create(&models.Consultation{Subject: "Math", MaxStudents: 3, Groups: []string{"g"}})
	blob, err := store.MarshalState()
	require.NoError(t, err)

	restored := NewConsultationStore(nil)
	require.NoError(t, restored.UnmarshalState(blob))
	assert.Equal(t, store.List(models.ConsultationFilter{}), restored.List(models.ConsultationFilter{}))

	require.NoError(t, restored.UnmarshalState([]byte(`{"consultations":[{"id":"x","max_students":2,"extra":true}]}`)))
	c, err := restored.Get("x")
	require.NoError(t, err)
	assert.NotNil(t, c.RegisteredStudents)
}
