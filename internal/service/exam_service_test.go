package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/unischedule-api/internal/models"
	"github.com/noah-isme/unischedule-api/internal/repository"
	appErrors "github.com/noah-isme/unischedule-api/pkg/errors"
)

func TestExamServiceListOrdersByDateAndTime(t *testing.T) {
	store := repository.NewExamStore([]models.Exam{
		{ID: "late", Date: "2024-12-20", Time: "9:00-12:00", Faculty: "fcs", Groups: []string{"ПГС-101"}},
		{ID: "afternoon", Date: "2024-12-18", Time: "14:00-17:00", Faculty: "fcs", Groups: []string{"ПГС-101"}},
		{ID: "morning", Date: "2024-12-18", Time: "9:00-11:00", Faculty: "fcs", Groups: []string{"ПГС-101", "СТР-101"}},
		{ID: "other", Date: "2024-12-01", Time: "9:00-11:00", Faculty: "fad", Groups: []string{"АРХ-101"}},
	})
	svc := NewExamService(store, nil, nil, zap.NewNop())

	got := svc.List(context.Background(), models.ExamFilter{Faculty: "fcs"})
	require.Len(t, got, 3)
	assert.Equal(t, "morning", got[0].ID)
	assert.Equal(t, "afternoon", got[1].ID)
	assert.Equal(t, "late", got[2].ID)

	assert.Len(t, svc.List(context.Background(), models.ExamFilter{Group: "СТР-101"}), 1)
}

func TestExamServiceDurationDefaults(t *testing.T) {
	obs := &recordingObserver{}
	svc := NewExamService(repository.NewExamStore(nil), obs, nil, zap.NewNop())
	ctx := context.Background()
	base := CreateExamRequest{Subject: "Гидравлика", Teacher: "Волков В.В.", Date: "2024-12-18", Time: "9:00-12:00", Faculty: "fem", Groups: []string{"ТГВ-101"}}

	exam, err := svc.Create(ctx, base)
	require.NoError(t, err)
	assert.Equal(t, models.ExamKindExam, exam.Kind)
	assert.Equal(t, 180, exam.DurationMinutes)

	credit := base
	credit.Kind = models.ExamKindCredit
	created, err := svc.Create(ctx, credit)
	require.NoError(t, err)
	assert.Equal(t, 120, created.DurationMinutes)

	kind := models.ExamKindExam
	updated, err := svc.Update(ctx, created.ID, UpdateExamRequest{Kind: &kind})
	require.NoError(t, err)
	assert.Equal(t, 180, updated.DurationMinutes)

	custom := 90
	updated, err = svc.Update(ctx, created.ID, UpdateExamRequest{DurationMinutes: &custom})
	require.NoError(t, err)
	assert.Equal(t, 90, updated.DurationMinutes)
	assert.Len(t, obs.stores(), 4)
}

func TestExamServiceValidationAndMissing(t *testing.T) {
	svc := NewExamService(repository.NewExamStore(nil), nil, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateExamRequest{Subject: "Гидравлика", Teacher: "Волков В.В.", Date: "2024-12-18", Time: "9:00-12:00", Faculty: "fem"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	_, err = svc.Create(ctx, CreateExamRequest{Subject: "Гидравлика", Teacher: "Волков В.В.", Date: "2024-12-18", Time: "9:00-12:00", Faculty: "fem", Groups: []string{"ТГВ-101"}, Kind: "oral"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, CreateExamRequest{Subject: "   ", Teacher: "Волков В.В.", Date: "2024-12-18", Time: "9:00-12:00", Faculty: "fem", Groups: []string{"ТГВ-101"}})
	assert.True(t, errors.Is(err, appErrors.ErrValidation), "blank subject")

	_, err = svc.Get(ctx, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete(ctx, "missing"), appErrors.ErrNotFound))
}
