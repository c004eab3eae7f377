// Package scheduling holds the appointment scheduler's business rules:
// slot enumeration, the canonical set of slot-occupying statuses, and the
// status transition table. Everything here is pure; persistence stays in
// the handlers.
package scheduling

import (
	"fmt"
	"time"

	"clinic-management-server/internal/models"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// SlotOccupyingStatuses is the canonical set of statuses that hold a
// (doctor, date, time) slot. Applied uniformly to create, reschedule and
// slot listing.
var SlotOccupyingStatuses = []models.AppointmentStatus{
	models.StatusScheduled,
	models.StatusPending,
	models.StatusConfirmed,
}

// ParseDate validates a YYYY-MM-DD value.
func ParseDate(value string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return d, nil
}

// ParseTime validates an HH:MM value.
func ParseTime(value string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return t, nil
}

// IsPastDate reports whether the date is strictly before today.
func IsPastDate(date time.Time, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return date.Before(today)
}

// Window describes a doctor's bookable day: start and end times of day
// and the width of each slot in minutes.
type Window struct {
	Start    string
	End      string
	Duration int
}

// DefaultWindow matches an unconfigured doctor profile: 09:00-17:00 in
// 30-minute steps, 16 slots per day.
var DefaultWindow = Window{Start: "09:00", End: "17:00", Duration: 30}

// WindowForDoctor reads the doctor's configured hours, falling back to
// the defaults for any missing field.
func WindowForDoctor(d *models.Doctor) Window {
	w := DefaultWindow
	if d.StartTime != "" {
		w.Start = d.StartTime
	}
	if d.EndTime != "" {
		w.End = d.EndTime
	}
	if d.ConsultationDuration > 0 {
		w.Duration = d.ConsultationDuration
	}
	return w
}

// Slots enumerates every candidate slot in the window, ascending. Slots
// start at w.Start and step by w.Duration; the last slot begins strictly
// before w.End.
func (w Window) Slots() ([]string, error) {
	start, err := ParseTime(w.Start)
	if err != nil {
		return nil, err
	}
	end, err := ParseTime(w.End)
	if err != nil {
		return nil, err
	}
	if w.Duration <= 0 {
		return nil, fmt.Errorf("invalid slot duration %d", w.Duration)
	}

	var slots []string
	step := time.Duration(w.Duration) * time.Minute
	for t := start; t.Before(end); t = t.Add(step) {
		slots = append(slots, t.Format(TimeLayout))
	}
	return slots, nil
}

// AvailableSlots removes booked times from the candidate slots, keeping
// order. Booked times not on the candidate grid are ignored.
func AvailableSlots(all []string, booked []string) []string {
	taken := make(map[string]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	available := make([]string, 0, len(all))
	for _, slot := range all {
		if _, ok := taken[slot]; !ok {
			available = append(available, slot)
		}
	}
	return available
}
