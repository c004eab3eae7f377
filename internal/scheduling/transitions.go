package scheduling

import (
	"clinic-management-server/internal/models"
)

// transitionTable maps each status to the statuses it may move to.
// completed, cancelled and no_show are terminal. rescheduled is only
// entered through the reschedule operation, never by a direct status
// update, which is why it appears as a source but not a target here.
var transitionTable = map[models.AppointmentStatus][]models.AppointmentStatus{
	models.StatusScheduled: {
		models.StatusConfirmed,
		models.StatusCancelled,
		models.StatusNoShow,
	},
	models.StatusPending: {
		models.StatusConfirmed,
		models.StatusCancelled,
		models.StatusNoShow,
	},
	models.StatusRescheduled: {
		models.StatusConfirmed,
		models.StatusCancelled,
		models.StatusNoShow,
	},
	models.StatusConfirmed: {
		models.StatusInProgress,
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
	},
	models.StatusInProgress: {
		models.StatusCompleted,
		models.StatusCancelled,
	},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
	models.StatusNoShow:    {},
}

// ValidStatus reports whether the value is a known appointment status.
func ValidStatus(s models.AppointmentStatus) bool {
	_, ok := transitionTable[s]
	return ok
}

// CanTransition reports whether an appointment may move from one status
// to another via a direct status update.
func CanTransition(from, to models.AppointmentStatus) bool {
	allowed, ok := transitionTable[from]
	if !ok {
		return false
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CanReschedule reports whether an appointment in the given status may
// be moved to a new slot.
func CanReschedule(from models.AppointmentStatus) bool {
	return from != models.StatusCompleted && from != models.StatusCancelled && from != models.StatusNoShow
}

// CanCancel reports whether an appointment in the given status may be
// cancelled. Cancelling twice is an invalid transition, not a no-op.
func CanCancel(from models.AppointmentStatus) bool {
	return from != models.StatusCompleted && from != models.StatusCancelled && from != models.StatusNoShow
}
