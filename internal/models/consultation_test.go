package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsultationRegisterSingleSeat(t *testing.T) {
	c := &Consultation{ID: "c-1", MaxStudents: 1}

	require.NoError(t, c.Register("S1"))
	assert.Equal(t, []string{"S1"}, c.RegisteredStudents)

	assert.ErrorIs(t, c.Register("S2"), ErrConsultationFull)
	assert.Equal(t, []string{"S1"}, c.RegisteredStudents)
	assert.True(t, c.IsFull())
}

func TestConsultationRegisterDuplicate(t *testing.T) {
	c := &Consultation{MaxStudents: 5, RegisteredStudents: []string{"S1"}}

	assert.ErrorIs(t, c.Register("S1"), ErrAlreadyRegistered)
	assert.Len(t, c.RegisteredStudents, 1)
}

func TestConsultationDuplicateCheckedBeforeCapacity(t *testing.T) {
	c := &Consultation{MaxStudents: 1, RegisteredStudents: []string{"S1"}}

	assert.ErrorIs(t, c.Register("S1"), ErrAlreadyRegistered)
}

func TestConsultationUnregister(t *testing.T) {
	c := &Consultation{MaxStudents: 3, RegisteredStudents: []string{"S1", "S2", "S3"}}
	shared := c.RegisteredStudents

	assert.True(t, c.Unregister("S2"))
	assert.Equal(t, []string{"S1", "S3"}, c.RegisteredStudents)
	assert.Equal(t, []string{"S1", "S2", "S3"}, shared, "unregister must not write through a shared backing array")
	assert.False(t, c.Unregister("S9"))
	assert.False(t, c.IsRegistered("S2"))
}

func TestConsultationCloneDoesNotAlias(t *testing.T) {
	c := Consultation{RegisteredStudents: []string{"S1"}, Groups: []string{"g"}}
	cp := c.Clone()
	cp.RegisteredStudents[0] = "X"
	cp.Groups[0] = "Y"

	assert.Equal(t, "S1", c.RegisteredStudents[0])
	assert.Equal(t, "g", c.Groups[0])
}
