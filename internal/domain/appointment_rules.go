package domain

import "errors"

var ErrInvalidAppointmentTransition = errors.New("invalid appointment status transition")

// CanTransitionAppointment encodes the allowed status flow:
// scheduled -> confirmed -> completed, with cancellation possible while the
// appointment is still active. Completed and cancelled are terminal.
func CanTransitionAppointment(from, to AppointmentStatus) bool {
	switch from {
	case AppointmentScheduled:
		return to == AppointmentConfirmed || to == AppointmentCancelled
	case AppointmentConfirmed:
		return to == AppointmentCompleted || to == AppointmentCancelled
	default:
		return false
	}
}
