package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionAppointment(t *testing.T) {
	assert.True(t, CanTransitionAppointment(AppointmentScheduled, AppointmentConfirmed))
	assert.True(t, CanTransitionAppointment(AppointmentScheduled, AppointmentCancelled))
	assert.True(t, CanTransitionAppointment(AppointmentConfirmed, AppointmentCompleted))
	assert.True(t, CanTransitionAppointment(AppointmentConfirmed, AppointmentCancelled))

	assert.False(t, CanTransitionAppointment(AppointmentScheduled, AppointmentCompleted))
	assert.False(t, CanTransitionAppointment(AppointmentCompleted, AppointmentConfirmed))
	assert.False(t, CanTransitionAppointment(AppointmentCancelled, AppointmentScheduled))
}
