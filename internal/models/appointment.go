package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled   AppointmentStatus = "scheduled"
	StatusPending     AppointmentStatus = "pending"
	StatusConfirmed   AppointmentStatus = "confirmed"
	StatusInProgress  AppointmentStatus = "in_progress"
	StatusCompleted   AppointmentStatus = "completed"
	StatusCancelled   AppointmentStatus = "cancelled"
	StatusNoShow      AppointmentStatus = "no_show"
	StatusRescheduled AppointmentStatus = "rescheduled"
)

// AppointmentType classifies the visit.
type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeFollowUp     AppointmentType = "follow_up"
	TypeCheckUp      AppointmentType = "check_up"
	TypeEmergency    AppointmentType = "emergency"
	TypeProcedure    AppointmentType = "procedure"
	TypeSurgery      AppointmentType = "surgery"
	TypeTherapy      AppointmentType = "therapy"
)

// AppointmentPriority ranks urgency.
type AppointmentPriority string

const (
	PriorityLow    AppointmentPriority = "low"
	PriorityNormal AppointmentPriority = "normal"
	PriorityHigh   AppointmentPriority = "high"
	PriorityUrgent AppointmentPriority = "urgent"
)

// Appointment represents a scheduled clinic visit. Dates are stored as
// YYYY-MM-DD and times as HH:MM so slot comparisons are exact string
// matches. The composite unique index on (doctor, date, time) is the
// authoritative double-booking guard; handler pre-checks only exist for
// friendlier error messages.
type Appointment struct {
	BaseModel
	AppointmentCode string `gorm:"size:20;uniqueIndex" json:"appointmentCode"`
	PatientID       string `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string `gorm:"size:36;not null;uniqueIndex:idx_doctor_slot" json:"doctorId"`

	// Slot
	AppointmentDate string `gorm:"size:10;not null;uniqueIndex:idx_doctor_slot" json:"appointmentDate"`
	AppointmentTime string `gorm:"size:5;not null;uniqueIndex:idx_doctor_slot" json:"appointmentTime"`
	Duration        int    `gorm:"default:30" json:"duration"`

	Type     AppointmentType     `gorm:"size:20;default:'consultation'" json:"type"`
	Priority AppointmentPriority `gorm:"size:10;default:'normal'" json:"priority"`
	Status   AppointmentStatus   `gorm:"size:20;default:'scheduled'" json:"status"`

	// Details
	ChiefComplaint string `gorm:"type:text;not null" json:"chiefComplaint"`
	Symptoms       string `gorm:"type:text" json:"symptoms,omitempty"`
	Notes          string `gorm:"type:text" json:"notes,omitempty"`
	DoctorNotes    string `gorm:"type:text" json:"doctorNotes,omitempty"`

	// Billing
	ConsultationFee *float64 `json:"consultationFee,omitempty"`
	IsPaid          bool     `gorm:"default:false" json:"isPaid"`
	PaymentMethod   string   `gorm:"size:50" json:"paymentMethod,omitempty"`

	// Follow-up
	FollowUpRequired     bool   `gorm:"default:false" json:"followUpRequired"`
	FollowUpDate         string `gorm:"size:10" json:"followUpDate,omitempty"`
	FollowUpInstructions string `gorm:"type:text" json:"followUpInstructions,omitempty"`

	// Metadata
	CreatedByID        string     `gorm:"size:36" json:"createdById"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`
	CancelledByID      *string    `gorm:"size:36" json:"cancelledById,omitempty"`
	CancellationReason string     `gorm:"type:text" json:"cancellationReason,omitempty"`

	// Relations
	Patient   Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor    Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"-"`
}

// BeforeCreate assigns the display code on first insert.
func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if err := a.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if a.AppointmentCode == "" {
		a.AppointmentCode = GenerateCode("A", 8)
	}
	return nil
}

// IsTerminal reports whether the appointment can no longer change.
func (a *Appointment) IsTerminal() bool {
	switch a.Status {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// History action kinds.
const (
	HistoryActionCreated     = "created"
	HistoryActionConfirmed   = "confirmed"
	HistoryActionRescheduled = "rescheduled"
	HistoryActionCancelled   = "cancelled"
	HistoryActionCompleted   = "completed"
	HistoryActionNoShow      = "no_show"
)

// AppointmentHistory is an append-only audit trail for reschedule and
// lifecycle actions. Rows are never mutated or deleted.
type AppointmentHistory struct {
	BaseModel
	AppointmentID string `gorm:"size:36;index;not null" json:"appointmentId"`
	Action        string `gorm:"size:20;not null" json:"action"`
	OldDate       string `gorm:"size:10" json:"oldDate,omitempty"`
	OldTime       string `gorm:"size:5" json:"oldTime,omitempty"`
	NewDate       string `gorm:"size:10" json:"newDate,omitempty"`
	NewTime       string `gorm:"size:5" json:"newTime,omitempty"`
	Notes         string `gorm:"type:text" json:"notes,omitempty"`
	ActionByID    string `gorm:"size:36" json:"actionById"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
	ActionBy    User        `gorm:"foreignKey:ActionByID" json:"-"`
}

// AppointmentRating stores patient feedback, at most one per appointment.
// The unique index on AppointmentID is what makes rating submission
// idempotent; Doctor.ApplyRating is only called after a first insert.
type AppointmentRating struct {
	BaseModel
	AppointmentID  string `gorm:"size:36;uniqueIndex;not null" json:"appointmentId"`
	Rating         int    `gorm:"not null" json:"rating"`
	Review         string `gorm:"type:text" json:"review,omitempty"`
	WouldRecommend bool   `gorm:"default:true" json:"wouldRecommend"`

	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"-"`
}
