package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"
)

// ReminderHandler handles appointment reminder scheduling.
type ReminderHandler struct {
	DB *gorm.DB
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(db *gorm.DB) *ReminderHandler {
	return &ReminderHandler{DB: db}
}

// CreateReminderRequest represents the request body for scheduling a
// reminder.
type CreateReminderRequest struct {
	AppointmentID string    `json:"appointmentId" binding:"required"`
	ReminderType  string    `json:"reminderType" binding:"required,oneof=email sms push"`
	RemindAt      time.Time `json:"remindAt" binding:"required"`
	Message       string    `json:"message"`
}

// CreateReminder schedules a reminder for an appointment (staff,
// admin or the appointment's doctor).
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req CreateReminderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", req.AppointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleDoctor {
		userID, _ := middleware.GetUserIDFromContext(c)
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil || doctor.ID != appointment.DoctorID {
			utils.Forbidden(c, "You can only schedule reminders for your own appointments")
			return
		}
	}

	if appointment.IsTerminal() {
		utils.BadRequest(c, "Cannot schedule a reminder for a concluded appointment")
		return
	}
	if !req.RemindAt.After(time.Now()) {
		utils.BadRequest(c, "Reminder time must be in the future")
		return
	}

	reminder := models.AppointmentReminder{
		AppointmentID: appointment.ID,
		ReminderType:  models.ReminderType(req.ReminderType),
		RemindAt:      req.RemindAt,
		Message:       req.Message,
	}

	if err := h.DB.Create(&reminder).Error; err != nil {
		utils.InternalServerError(c, "Failed to create reminder: "+err.Error())
		return
	}

	utils.Created(c, "Reminder scheduled successfully", reminder)
}

// GetRemindersForAppointment lists reminders for an appointment. The
// caller must be involved in the appointment, or be staff/admin.
func (h *ReminderHandler) GetRemindersForAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	switch userRole {
	case models.RoleAdmin, models.RoleStaff:
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil || doctor.ID != appointment.DoctorID {
			utils.Forbidden(c, "You are not authorized to view these reminders")
			return
		}
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil || patient.ID != appointment.PatientID {
			utils.Forbidden(c, "You are not authorized to view these reminders")
			return
		}
	default:
		utils.Forbidden(c, "You are not authorized to view these reminders")
		return
	}

	var reminders []models.AppointmentReminder
	if err := h.DB.Where("appointment_id = ?", appointmentID).
		Order("remind_at asc").Find(&reminders).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch reminders: "+err.Error())
		return
	}

	utils.Success(c, "Reminders fetched successfully", reminders)
}

// GetPendingReminders lists unsent reminders that are due (staff/admin).
// A dispatcher polls this and calls MarkReminderSent after delivery.
func (h *ReminderHandler) GetPendingReminders(c *gin.Context) {
	var reminders []models.AppointmentReminder
	if err := h.DB.Preload("Appointment").
		Where("is_sent = ? AND remind_at <= ?", false, time.Now()).
		Order("remind_at asc").Find(&reminders).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch pending reminders: "+err.Error())
		return
	}

	utils.Success(c, "Pending reminders fetched successfully", reminders)
}

// MarkReminderSent flips a reminder to sent (staff/admin).
func (h *ReminderHandler) MarkReminderSent(c *gin.Context) {
	var reminder models.AppointmentReminder
	if err := h.DB.First(&reminder, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Reminder not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if reminder.IsSent {
		utils.BadRequest(c, "Reminder has already been sent")
		return
	}

	now := time.Now()
	reminder.IsSent = true
	reminder.SentAt = &now
	if err := h.DB.Save(&reminder).Error; err != nil {
		utils.InternalServerError(c, "Failed to update reminder: "+err.Error())
		return
	}

	utils.Success(c, "Reminder marked as sent", reminder)
}

// DeleteReminder removes a scheduled reminder (staff/admin).
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	var reminder models.AppointmentReminder
	if err := h.DB.First(&reminder, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Reminder not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if reminder.IsSent {
		utils.BadRequest(c, "Sent reminders cannot be deleted")
		return
	}

	if err := h.DB.Delete(&reminder).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete reminder: "+err.Error())
		return
	}

	utils.Success(c, "Reminder deleted successfully", nil)
}
