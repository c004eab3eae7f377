package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clinic-management-server/internal/logger"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"
)

// AppointmentHandler handles appointment scheduling requests.
type AppointmentHandler struct {
	DB *gorm.DB
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB) *AppointmentHandler {
	return &AppointmentHandler{DB: db}
}

// slotTaken reports whether a slot-occupying appointment already exists
// for (doctor, date, time), excluding excludeID when non-empty. This is
// the friendly pre-check; the unique index on the same columns is the
// authoritative guard.
func (h *AppointmentHandler) slotTaken(doctorID, date, timeOfDay, excludeID string) (bool, error) {
	query := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ? AND status IN ?",
			doctorID, date, timeOfDay, scheduling.SlotOccupyingStatuses)
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateAppointmentRequest represents the request body for booking an appointment.
type CreateAppointmentRequest struct {
	PatientID      string `json:"patientId"` // Ignored for patient callers; required for staff/admin
	DoctorID       string `json:"doctorId" binding:"required"`
	Date           string `json:"date" binding:"required"`
	Time           string `json:"time" binding:"required"`
	Duration       int    `json:"duration"`
	Type           string `json:"type" binding:"omitempty,oneof=consultation follow_up check_up emergency procedure surgery therapy"`
	Priority       string `json:"priority" binding:"omitempty,oneof=low normal high urgent"`
	ChiefComplaint string `json:"chiefComplaint" binding:"required"`
	Symptoms       string `json:"symptoms"`
	Notes          string `json:"notes"`
}

// CreateAppointment books a new appointment. Patients book for
// themselves; staff and admin book on behalf of any patient and may
// bypass the past-date rule.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if _, err := scheduling.ParseTime(req.Time); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	// Resolve the patient being booked for.
	var patient models.Patient
	switch userRole {
	case models.RolePatient:
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Patient profile not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
	case models.RoleAdmin, models.RoleStaff:
		if req.PatientID == "" {
			utils.BadRequest(c, "patientId is required when booking on behalf of a patient")
			return
		}
		if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				utils.NotFound(c, "Patient not found")
			} else {
				utils.InternalServerError(c, "Database error: "+err.Error())
			}
			return
		}
	default:
		utils.Forbidden(c, "Only patients and staff can create appointments")
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", req.DoctorID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if userRole == models.RolePatient {
		if scheduling.IsPastDate(date, time.Now()) {
			utils.BadRequest(c, "Cannot book appointments for past dates")
			return
		}
		if !doctor.IsAvailableForAppointments {
			utils.BadRequest(c, "Doctor is not currently accepting appointments")
			return
		}
	}

	taken, err := h.slotTaken(doctor.ID, req.Date, req.Time, "")
	if err != nil {
		utils.InternalServerError(c, "Database error checking slot: "+err.Error())
		return
	}
	if taken {
		utils.Conflict(c, "The selected time slot is already booked for this doctor")
		return
	}

	appointment := models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: req.Date,
		AppointmentTime: req.Time,
		Duration:        req.Duration,
		Type:            models.AppointmentType(req.Type),
		Priority:        models.AppointmentPriority(req.Priority),
		Status:          models.StatusScheduled,
		ChiefComplaint:  req.ChiefComplaint,
		Symptoms:        req.Symptoms,
		Notes:           req.Notes,
		CreatedByID:     userID,
	}
	if appointment.Duration == 0 {
		appointment.Duration = doctor.ConsultationDuration
	}
	if appointment.Type == "" {
		appointment.Type = models.TypeConsultation
	}
	if appointment.Priority == "" {
		appointment.Priority = models.PriorityNormal
	}
	// Copy the doctor's fee onto the appointment when none was supplied.
	if appointment.ConsultationFee == nil && doctor.ConsultationFee != nil {
		fee := *doctor.ConsultationFee
		appointment.ConsultationFee = &fee
	}

	if err := h.DB.Create(&appointment).Error; err != nil {
		// Two requests can pass the pre-check together; the unique index
		// decides the winner and the loser lands here.
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "The selected time slot is already booked for this doctor")
		} else {
			utils.InternalServerError(c, "Failed to create appointment: "+err.Error())
		}
		return
	}

	history := models.AppointmentHistory{
		AppointmentID: appointment.ID,
		Action:        models.HistoryActionCreated,
		NewDate:       appointment.AppointmentDate,
		NewTime:       appointment.AppointmentTime,
		ActionByID:    userID,
	}
	if err := h.DB.Create(&history).Error; err != nil {
		logger.WithField("appointment_id", appointment.ID).WithError(err).Error("failed to write appointment history")
	}

	logger.WithFields(logrus.Fields{
		"appointment_code": appointment.AppointmentCode,
		"doctor_id":        appointment.DoctorID,
		"date":             appointment.AppointmentDate,
		"time":             appointment.AppointmentTime,
	}).Info("appointment created")
	utils.Created(c, "Appointment created successfully", appointment)
}

// GetAppointments fetches appointments for the caller, role-scoped.
// Patients and doctors see their own; admin and staff see all; any
// other role gets an empty list rather than an error.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient.User").Preload("Doctor.User").
		Order("appointment_date asc, appointment_time asc")

	switch userRole {
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
			utils.Success(c, "Appointments fetched successfully", []models.Appointment{})
			return
		}
		query = query.Where("patient_id = ?", patient.ID)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			utils.Success(c, "Appointments fetched successfully", []models.Appointment{})
			return
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	case models.RoleAdmin, models.RoleStaff:
		// Unrestricted
	default:
		utils.Success(c, "Appointments fetched successfully", []models.Appointment{})
		return
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("date_from"); from != "" {
		query = query.Where("appointment_date >= ?", from)
	}
	if to := c.Query("date_to"); to != "" {
		query = query.Where("appointment_date <= ?", to)
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// loadAppointmentForUser fetches an appointment and verifies the caller
// may act on it. Returns nil after writing the error response when not.
func (h *AppointmentHandler) loadAppointmentForUser(c *gin.Context) *models.Appointment {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var appointment models.Appointment
	if err := h.DB.Preload("Patient").Preload("Doctor").First(&appointment, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil
	}

	switch userRole {
	case models.RoleAdmin, models.RoleStaff:
		return &appointment
	case models.RoleDoctor:
		if appointment.Doctor.UserID == userID {
			return &appointment
		}
	case models.RolePatient:
		if appointment.Patient.UserID == userID {
			return &appointment
		}
	}

	utils.Forbidden(c, "You are not authorized to access this appointment")
	return nil
}

// GetAppointmentByID fetches a single appointment. Accessible by the
// involved patient or doctor, or admin/staff.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for a status change.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=scheduled pending confirmed in_progress completed cancelled no_show"`
	Notes  string                   `json:"notes"`
}

// UpdateAppointmentStatus moves an appointment through its lifecycle.
// Every change is validated against the transition table; patients may
// only cancel.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if userRole == models.RolePatient && req.Status != models.StatusCancelled {
		utils.Forbidden(c, "Patients can only cancel appointments")
		return
	}

	if !scheduling.CanTransition(appointment.Status, req.Status) {
		utils.BadRequest(c, "Invalid status transition from "+string(appointment.Status)+" to "+string(req.Status))
		return
	}

	previous := appointment.Status
	appointment.Status = req.Status
	if req.Status == models.StatusCancelled {
		now := time.Now()
		appointment.CancelledAt = &now
		appointment.CancelledByID = &userID
		appointment.CancellationReason = req.Notes
	} else if req.Notes != "" {
		appointment.DoctorNotes = req.Notes
	}

	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+err.Error())
		return
	}

	if action := historyActionForStatus(req.Status); action != "" {
		history := models.AppointmentHistory{
			AppointmentID: appointment.ID,
			Action:        action,
			Notes:         req.Notes,
			ActionByID:    userID,
		}
		if err := h.DB.Create(&history).Error; err != nil {
			logger.WithField("appointment_id", appointment.ID).WithError(err).Error("failed to write appointment history")
		}
	}

	logger.WithFields(logrus.Fields{
		"appointment_code": appointment.AppointmentCode,
		"from":             previous,
		"to":               appointment.Status,
	}).Info("appointment status updated")
	utils.Success(c, "Appointment status updated successfully", appointment)
}

func historyActionForStatus(status models.AppointmentStatus) string {
	switch status {
	case models.StatusConfirmed:
		return models.HistoryActionConfirmed
	case models.StatusCompleted:
		return models.HistoryActionCompleted
	case models.StatusCancelled:
		return models.HistoryActionCancelled
	case models.StatusNoShow:
		return models.HistoryActionNoShow
	}
	return ""
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	NewDate string `json:"newDate" binding:"required"`
	NewTime string `json:"newTime" binding:"required"`
	Reason  string `json:"reason"`
}

// RescheduleAppointment moves an appointment to a new slot. The history
// row capturing the old slot is written before the appointment mutates.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	newDate, err := scheduling.ParseDate(req.NewDate)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if _, err := scheduling.ParseTime(req.NewTime); err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	if !scheduling.CanReschedule(appointment.Status) {
		utils.BadRequest(c, "Cannot reschedule a "+string(appointment.Status)+" appointment")
		return
	}

	if userRole == models.RolePatient && scheduling.IsPastDate(newDate, time.Now()) {
		utils.BadRequest(c, "Cannot reschedule to a past date")
		return
	}

	if appointment.AppointmentDate == req.NewDate && appointment.AppointmentTime == req.NewTime {
		utils.BadRequest(c, "New date and time are identical to the current appointment slot")
		return
	}

	taken, err := h.slotTaken(appointment.DoctorID, req.NewDate, req.NewTime, appointment.ID)
	if err != nil {
		utils.InternalServerError(c, "Database error checking slot: "+err.Error())
		return
	}
	if taken {
		utils.Conflict(c, "The new time slot is already booked for this doctor")
		return
	}

	// Capture the old slot before mutating. History and slot change
	// commit together; when the save loses the duplicate-key race the
	// audit row rolls back with it.
	history := models.AppointmentHistory{
		AppointmentID: appointment.ID,
		Action:        models.HistoryActionRescheduled,
		OldDate:       appointment.AppointmentDate,
		OldTime:       appointment.AppointmentTime,
		NewDate:       req.NewDate,
		NewTime:       req.NewTime,
		Notes:         req.Reason,
		ActionByID:    userID,
	}
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&history).Error; err != nil {
			return err
		}
		appointment.AppointmentDate = req.NewDate
		appointment.AppointmentTime = req.NewTime
		appointment.Status = models.StatusRescheduled
		return tx.Save(appointment).Error
	})
	if txErr != nil {
		if txErr == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "The new time slot is already booked for this doctor")
		} else {
			utils.InternalServerError(c, "Failed to reschedule appointment: "+txErr.Error())
		}
		return
	}

	logger.WithFields(logrus.Fields{
		"appointment_code": appointment.AppointmentCode,
		"new_date":         req.NewDate,
		"new_time":         req.NewTime,
	}).Info("appointment rescheduled")
	utils.Success(c, "Appointment rescheduled successfully", appointment)
}

// CancelAppointmentRequest represents the request body for cancellation.
type CancelAppointmentRequest struct {
	Reason string `json:"reason"`
}

// CancelAppointment cancels an appointment. Cancellation is a status
// change, never a row deletion; cancelling twice is rejected.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	var req CancelAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}

	if !scheduling.CanCancel(appointment.Status) {
		utils.BadRequest(c, "Cannot cancel a "+string(appointment.Status)+" appointment")
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	now := time.Now()
	appointment.Status = models.StatusCancelled
	appointment.CancelledAt = &now
	appointment.CancelledByID = &userID
	appointment.CancellationReason = req.Reason

	if err := h.DB.Save(appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to cancel appointment: "+err.Error())
		return
	}

	history := models.AppointmentHistory{
		AppointmentID: appointment.ID,
		Action:        models.HistoryActionCancelled,
		Notes:         req.Reason,
		ActionByID:    userID,
	}
	if err := h.DB.Create(&history).Error; err != nil {
		logger.WithField("appointment_id", appointment.ID).WithError(err).Error("failed to write appointment history")
	}

	utils.Success(c, "Appointment cancelled successfully", appointment)
}

// GetAppointmentHistory lists the audit trail for an appointment.
func (h *AppointmentHandler) GetAppointmentHistory(c *gin.Context) {
	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}

	var history []models.AppointmentHistory
	if err := h.DB.Where("appointment_id = ?", appointment.ID).
		Order("created_at desc").Find(&history).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointment history: "+err.Error())
		return
	}

	utils.Success(c, "Appointment history fetched successfully", history)
}

// UpcomingAppointments returns the caller's next five slot-occupying
// appointments from today onward.
func (h *AppointmentHandler) UpcomingAppointments(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)

	today := time.Now().Format(scheduling.DateLayout)
	query := h.DB.Preload("Patient.User").Preload("Doctor.User").
		Where("appointment_date >= ? AND status IN ?", today, scheduling.SlotOccupyingStatuses).
		Order("appointment_date asc, appointment_time asc").
		Limit(5)

	switch userRole {
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
			utils.Success(c, "Upcoming appointments fetched successfully", []models.Appointment{})
			return
		}
		query = query.Where("patient_id = ?", patient.ID)
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			utils.Success(c, "Upcoming appointments fetched successfully", []models.Appointment{})
			return
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	default:
		utils.Success(c, "Upcoming appointments fetched successfully", []models.Appointment{})
		return
	}

	var appointments []models.Appointment
	if err := query.Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch upcoming appointments: "+err.Error())
		return
	}

	utils.Success(c, "Upcoming appointments fetched successfully", appointments)
}

// AppointmentStatistics summarises appointment counts for admin/staff.
func (h *AppointmentHandler) AppointmentStatistics(c *gin.Context) {
	today := time.Now().Format(scheduling.DateLayout)

	counts := map[string]int64{}
	type countQuery struct {
		key   string
		where []interface{}
	}
	queries := []countQuery{
		{"total_appointments", nil},
		{"today_appointments", []interface{}{"appointment_date = ?", today}},
		{"scheduled_appointments", []interface{}{"status = ?", models.StatusScheduled}},
		{"confirmed_appointments", []interface{}{"status = ?", models.StatusConfirmed}},
		{"completed_appointments", []interface{}{"status = ?", models.StatusCompleted}},
		{"cancelled_appointments", []interface{}{"status = ?", models.StatusCancelled}},
		{"no_show_appointments", []interface{}{"status = ?", models.StatusNoShow}},
	}

	for _, q := range queries {
		var count int64
		query := h.DB.Model(&models.Appointment{})
		if q.where != nil {
			query = query.Where(q.where[0], q.where[1:]...)
		}
		if err := query.Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Failed to compute statistics: "+err.Error())
			return
		}
		counts[q.key] = count
	}

	utils.Success(c, "Appointment statistics fetched successfully", counts)
}

// RateAppointmentRequest represents the request body for rating a
// completed appointment.
type RateAppointmentRequest struct {
	Rating         int    `json:"rating" binding:"required,min=1,max=5"`
	Review         string `json:"review"`
	WouldRecommend *bool  `json:"wouldRecommend"`
}

// RateAppointment records patient feedback for a completed appointment
// and folds the stars into the doctor's running average. The unique
// index on the rating's appointment id makes double submission fail
// before the average is touched.
func (h *AppointmentHandler) RateAppointment(c *gin.Context) {
	var req RateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole != models.RolePatient {
		utils.Forbidden(c, "Only patients can rate appointments")
		return
	}

	appointment := h.loadAppointmentForUser(c)
	if appointment == nil {
		return
	}

	if appointment.Status != models.StatusCompleted {
		utils.BadRequest(c, "Only completed appointments can be rated")
		return
	}

	rating := models.AppointmentRating{
		AppointmentID:  appointment.ID,
		Rating:         req.Rating,
		Review:         req.Review,
		WouldRecommend: true,
	}
	if req.WouldRecommend != nil {
		rating.WouldRecommend = *req.WouldRecommend
	}

	if err := h.DB.Create(&rating).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.Conflict(c, "This appointment has already been rated")
		} else {
			utils.InternalServerError(c, "Failed to record rating: "+err.Error())
		}
		return
	}

	// First insert succeeded, so the average is applied exactly once.
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", appointment.DoctorID).Error; err != nil {
		utils.InternalServerError(c, "Failed to load doctor for rating update: "+err.Error())
		return
	}
	doctor.ApplyRating(req.Rating)
	if err := h.DB.Model(&doctor).Select("rating", "total_ratings").Updates(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor rating: "+err.Error())
		return
	}

	utils.Created(c, "Appointment rated successfully", rating)
}
