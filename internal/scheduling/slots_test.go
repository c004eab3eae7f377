package scheduling

import (
	"reflect"
	"testing"
	"time"

	"clinic-management-server/internal/models"
)

func TestDefaultWindowSlots(t *testing.T) {
	slots, err := DefaultWindow.Slots()
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("expected 16 slots for 09:00-17:00 at 30 minutes, got %d", len(slots))
	}
	if slots[0] != "09:00" {
		t.Errorf("first slot = %q, want 09:00", slots[0])
	}
	if slots[len(slots)-1] != "16:30" {
		t.Errorf("last slot = %q, want 16:30", slots[len(slots)-1])
	}
}

func TestWindowSlotsExcludesEnd(t *testing.T) {
	w := Window{Start: "09:00", End: "10:00", Duration: 30}
	slots, err := w.Slots()
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}
	want := []string{"09:00", "09:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("slots = %v, want %v", slots, want)
	}
}

func TestWindowSlotsUnevenDuration(t *testing.T) {
	// 45-minute slots in a 2-hour window: the last slot starts before
	// the end even though it overruns it.
	w := Window{Start: "10:00", End: "12:00", Duration: 45}
	slots, err := w.Slots()
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}
	want := []string{"10:00", "10:45", "11:30"}
	if !reflect.DeepEqual(slots, want) {
		t.Errorf("slots = %v, want %v", slots, want)
	}
}

func TestWindowSlotsInvalid(t *testing.T) {
	cases := []Window{
		{Start: "9am", End: "17:00", Duration: 30},
		{Start: "09:00", End: "late", Duration: 30},
		{Start: "09:00", End: "17:00", Duration: 0},
	}
	for _, w := range cases {
		if _, err := w.Slots(); err == nil {
			t.Errorf("Slots() for %+v: expected error, got nil", w)
		}
	}
}

func TestWindowForDoctor(t *testing.T) {
	doctor := &models.Doctor{
		StartTime:            "08:00",
		EndTime:              "12:00",
		ConsultationDuration: 20,
	}
	w := WindowForDoctor(doctor)
	if w.Start != "08:00" || w.End != "12:00" || w.Duration != 20 {
		t.Errorf("window = %+v, want 08:00-12:00/20", w)
	}

	slots, err := w.Slots()
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}
	if len(slots) != 12 {
		t.Errorf("expected 12 slots for 08:00-12:00 at 20 minutes, got %d", len(slots))
	}
}

func TestWindowForDoctorDefaults(t *testing.T) {
	w := WindowForDoctor(&models.Doctor{})
	if w != DefaultWindow {
		t.Errorf("window for empty profile = %+v, want %+v", w, DefaultWindow)
	}
}

func TestAvailableSlots(t *testing.T) {
	all, err := DefaultWindow.Slots()
	if err != nil {
		t.Fatalf("Slots() error: %v", err)
	}

	available := AvailableSlots(all, []string{"09:30", "14:00"})
	if len(available) != len(all)-2 {
		t.Fatalf("available = %d, want %d", len(available), len(all)-2)
	}
	for _, s := range available {
		if s == "09:30" || s == "14:00" {
			t.Errorf("booked slot %q still listed as available", s)
		}
	}
}

func TestAvailableSlotsIgnoresOffGridBookings(t *testing.T) {
	all := []string{"09:00", "09:30"}
	available := AvailableSlots(all, []string{"09:15"})
	if !reflect.DeepEqual(available, all) {
		t.Errorf("available = %v, want %v", available, all)
	}
}

func TestAvailableSlotsAllBooked(t *testing.T) {
	all := []string{"09:00", "09:30"}
	available := AvailableSlots(all, all)
	if len(available) != 0 {
		t.Errorf("available = %v, want empty", available)
	}
}

func TestParseDate(t *testing.T) {
	if _, err := ParseDate("2026-03-15"); err != nil {
		t.Errorf("ParseDate valid: %v", err)
	}
	for _, bad := range []string{"15-03-2026", "2026/03/15", "tomorrow", ""} {
		if _, err := ParseDate(bad); err == nil {
			t.Errorf("ParseDate(%q): expected error", bad)
		}
	}
}

func TestParseTime(t *testing.T) {
	if _, err := ParseTime("09:30"); err != nil {
		t.Errorf("ParseTime valid: %v", err)
	}
	for _, bad := range []string{"9:3", "25:00", "noon", ""} {
		if _, err := ParseTime(bad); err == nil {
			t.Errorf("ParseTime(%q): expected error", bad)
		}
	}
}

func TestIsPastDate(t *testing.T) {
	now := time.Date(2026, 3, 15, 13, 45, 0, 0, time.Local)

	yesterday := time.Date(2026, 3, 14, 0, 0, 0, 0, time.Local)
	if !IsPastDate(yesterday, now) {
		t.Error("yesterday should be past")
	}

	// Same calendar day is not past, regardless of time of day.
	today := time.Date(2026, 3, 15, 0, 0, 0, 0, time.Local)
	if IsPastDate(today, now) {
		t.Error("today should not be past")
	}

	tomorrow := time.Date(2026, 3, 16, 0, 0, 0, 0, time.Local)
	if IsPastDate(tomorrow, now) {
		t.Error("tomorrow should not be past")
	}
}
