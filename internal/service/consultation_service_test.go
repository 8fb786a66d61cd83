package service

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

func newTestConsultationService(items ...models.Consultation) (*ConsultationService, *recordingObserver, *MetricsService) {
	obs := &recordingObserver{}
	metrics := NewMetricsService()
	return NewConsultationService(repository.NewConsultationStore(items), obs, metrics, nil, zap.NewNop()), obs, metrics
}

func TestConsultationServiceSingleSeat(t *testing.T) {
	svc, obs, metrics := newTestConsultationService(models.Consultation{ID: "c1", Subject: "Гидравлика", MaxStudents: 1, Faculty: "fem", Groups: []string{"ТГВ-101"}})
	ctx := context.Background()

	view, err := svc.Register(ctx, "c1", "S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, view.RegisteredStudents)
	assert.True(t, view.IsFull)
	assert.True(t, view.IsRegistered)

	_, err = svc.Register(ctx, "c1", "S2")
	assert.True(t, errors.Is(err, appErrors.ErrConsultationFull))

	_, err = svc.Register(ctx, "c1", "S1")
	assert.True(t, errors.Is(err, appErrors.ErrAlreadyRegistered))

	got, err := svc.Get(ctx, "c1", "S2")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, got.RegisteredStudents)
	assert.False(t, got.IsRegistered)
	assert.Equal(t, 0, got.SeatsRemaining)

	assert.Equal(t, []models.StoreName{models.StoreConsultations}, obs.stores())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.registrations.WithLabelValues(RegistrationFull)))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.registrations.WithLabelValues(RegistrationDuplicate)))
}

func TestConsultationServiceUnregister(t *testing.T) {
	svc, obs, _ := newTestConsultationService(models.Consultation{ID: "c1", MaxStudents: 2, RegisteredStudents: []string{"S1"}, Groups: []string{"ЭК-101"}})
	ctx := context.Background()

	view, err := svc.Unregister(ctx, "c1", "S9")
	require.NoError(t, err)
	assert.Equal(t, []string{"S1"}, view.RegisteredStudents)
	assert.Empty(t, obs.stores())

	view, err = svc.Unregister(ctx, "c1", "S1")
	require.NoError(t, err)
	assert.Empty(t, view.RegisteredStudents)
	assert.Equal(t, 2, view.SeatsRemaining)

	_, err = svc.Unregister(ctx, "missing", "S1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	_, err = svc.Register(ctx, "missing", "S1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestConsultationServiceCreateAndList(t *testing.T) {
	svc, _, _ := newTestConsultationService()
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateConsultationRequest{Subject: "Маркетинг", Teacher: "Попов О.О.", Date: "2024-10-20", Time: "14:00-15:30", MaxStudents: 5, Faculty: "fep"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "groups are required")

	_, err = svc.Create(ctx, CreateConsultationRequest{Subject: "Маркетинг", Teacher: "Попов О.О.", Date: "20.10.2024", Time: "14:00-15:30", MaxStudents: 5, Faculty: "fep", Groups: []string{"МЕН-101"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "date must be ISO")

	created, err := svc.Create(ctx, CreateConsultationRequest{Subject: "Маркетинг", Teacher: "Попов О.О.", Date: "2024-10-20", Time: "14:00-15:30", MaxStudents: 5, Faculty: "fep", Groups: []string{"МЕН-101", "ЭК-101"}})
	require.NoError(t, err)
	assert.NotNil(t, created.RegisteredStudents)

	assert.Len(t, svc.List(ctx, models.ConsultationFilter{Faculty: "fep", Group: "ЭК-101"}, ""), 1)
	assert.Empty(t, svc.List(ctx, models.ConsultationFilter{Faculty: "fep", Group: "ЮР-101"}, ""))
}

func TestConsultationServiceUpdateKeepsCapacityAboveRegistrations(t *testing.T) {
	svc, _, _ := newTestConsultationService(models.Consultation{ID: "c1", MaxStudents: 3, RegisteredStudents: []string{"S1", "S2"}, Groups: []string{"ЭК-101"}})
	one := 1
	two := 2

	_, err := svc.Update(context.Background(), "c1", UpdateConsultationRequest{MaxStudents: &one})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	updated, err := svc.Update(context.Background(), "c1", UpdateConsultationRequest{MaxStudents: &two})
	require.NoError(t, err)
	assert.Equal(t, 2, updated.MaxStudents)
	assert.Equal(t, []string{"S1", "S2"}, updated.RegisteredStudents)
}

func TestConsultationServiceRejectsBlankText(t *testing.T) {
	svc, obs, _ := newTestConsultationService(models.Consultation{ID: "c1", Subject: "Маркетинг", MaxStudents: 3, Groups: []string{"ЭК-101"}})
	ctx := context.Background()
	valid := CreateConsultationRequest{Subject: "Маркетинг", Teacher: "Попов О.О.", Date: "2024-10-20", Time: "14:00-15:30", MaxStudents: 5, Faculty: "fep", Groups: []string{"ЭК-101"}}

	cases := map[string]func(r *CreateConsultationRequest){
		"blank subject": func(r *CreateConsultationRequest) { r.Subject = "   " },
		"blank teacher": func(r *CreateConsultationRequest) { r.Teacher = " " },
		"blank group":   func(r *CreateConsultationRequest) { r.Groups = []string{"ЭК-101", "  "} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := valid
			mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.True(t, errors.Is(err, appErrors.ErrValidation))
		})
	}

	blank := "  "
	_, err := svc.Update(ctx, "c1", UpdateConsultationRequest{Subject: &blank})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, obs.stores())
}
