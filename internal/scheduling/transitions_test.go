package scheduling

import (
	"testing"

	"clinic-management-server/internal/models"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from models.AppointmentStatus
		to   models.AppointmentStatus
		want bool
	}{
		{models.StatusScheduled, models.StatusConfirmed, true},
		{models.StatusScheduled, models.StatusCancelled, true},
		{models.StatusScheduled, models.StatusNoShow, true},
		{models.StatusScheduled, models.StatusCompleted, false},
		{models.StatusScheduled, models.StatusInProgress, false},
		{models.StatusPending, models.StatusConfirmed, true},
		{models.StatusConfirmed, models.StatusInProgress, true},
		{models.StatusConfirmed, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusCompleted, true},
		{models.StatusInProgress, models.StatusNoShow, false},
		{models.StatusRescheduled, models.StatusConfirmed, true},
		{models.StatusCompleted, models.StatusCancelled, false},
		{models.StatusCancelled, models.StatusScheduled, false},
		{models.StatusNoShow, models.StatusConfirmed, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRescheduledIsNeverADirectTarget(t *testing.T) {
	for from := range transitionTable {
		if CanTransition(from, models.StatusRescheduled) {
			t.Errorf("rescheduled must not be reachable by a status update (from %s)", from)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	terminals := []models.AppointmentStatus{
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
	}
	for _, from := range terminals {
		for to := range transitionTable {
			if CanTransition(from, to) {
				t.Errorf("terminal status %s allows transition to %s", from, to)
			}
		}
	}
}

func TestValidStatus(t *testing.T) {
	for s := range transitionTable {
		if !ValidStatus(s) {
			t.Errorf("ValidStatus(%s) = false", s)
		}
	}
	if ValidStatus("booked") {
		t.Error("ValidStatus accepted an unknown status")
	}
}

func TestCanReschedule(t *testing.T) {
	allowed := []models.AppointmentStatus{
		models.StatusScheduled,
		models.StatusPending,
		models.StatusConfirmed,
		models.StatusInProgress,
		models.StatusRescheduled,
	}
	for _, s := range allowed {
		if !CanReschedule(s) {
			t.Errorf("CanReschedule(%s) = false, want true", s)
		}
	}

	denied := []models.AppointmentStatus{
		models.StatusCompleted,
		models.StatusCancelled,
		models.StatusNoShow,
	}
	for _, s := range denied {
		if CanReschedule(s) {
			t.Errorf("CanReschedule(%s) = true, want false", s)
		}
		if CanCancel(s) {
			t.Errorf("CanCancel(%s) = true, want false", s)
		}
	}
}

func TestSlotOccupyingStatuses(t *testing.T) {
	want := map[models.AppointmentStatus]bool{
		models.StatusScheduled: true,
		models.StatusPending:   true,
		models.StatusConfirmed: true,
	}
	if len(SlotOccupyingStatuses) != len(want) {
		t.Fatalf("SlotOccupyingStatuses has %d entries, want %d", len(SlotOccupyingStatuses), len(want))
	}
	for _, s := range SlotOccupyingStatuses {
		if !want[s] {
			t.Errorf("unexpected slot-occupying status %s", s)
		}
	}
}
