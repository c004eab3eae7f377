package models

import (
	"time"
)

// ReminderType is the delivery channel for a reminder.
type ReminderType string

const (
	ReminderEmail ReminderType = "email"
	ReminderSMS   ReminderType = "sms"
	ReminderPush  ReminderType = "push"
)

// AppointmentReminder is a scheduled notification for an appointment.
// Delivery itself is out of scope; rows are created by staff or doctors
// and flipped to sent by whatever dispatches them.
type AppointmentReminder struct {
	BaseModel
	AppointmentID string       `gorm:"size:36;index;not null" json:"appointmentId"`
	ReminderType  ReminderType `gorm:"size:10;not null" json:"reminderType"`
	RemindAt      time.Time    `gorm:"not null" json:"remindAt"`
	Message       string       `gorm:"type:text" json:"message"`
	IsSent        bool         `gorm:"default:false" json:"isSent"`
	SentAt        *time.Time   `json:"sentAt,omitempty"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
