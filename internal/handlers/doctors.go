package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-management-server/internal/logger"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/scheduling"
	"clinic-management-server/internal/utils"
)

// DoctorHandler handles doctor directory requests.
type DoctorHandler struct {
	DB *gorm.DB
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB) *DoctorHandler {
	return &DoctorHandler{DB: db}
}

// GetDoctors lists doctor profiles. Supports ?specialization=Name and
// ?available=true filters.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Preload("User").Preload("Specializations")

	if spec := c.Query("specialization"); spec != "" {
		query = query.Joins("JOIN doctor_specializations ds ON ds.doctor_id = doctors.id").
			Joins("JOIN specializations s ON s.id = ds.specialization_id").
			Where("s.name = ?", spec)
	}
	if c.Query("available") == "true" {
		query = query.Where("is_available_for_appointments = ?", true)
	}

	var doctors []models.Doctor
	if err := query.Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", doctors)
}

// GetDoctorByID fetches a single doctor profile.
func (h *DoctorHandler) GetDoctorByID(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("User").Preload("Specializations").
		First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor)
}

// GetMyDoctorProfile returns the caller's doctor profile, creating a
// blank one on first access. Idempotent under concurrent calls: the
// insert races on the user_id unique index and the loser re-fetches.
func (h *DoctorHandler) GetMyDoctorProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var doctor models.Doctor
	err := h.DB.Preload("Specializations").Where("user_id = ?", userID).First(&doctor).Error
	if err == nil {
		utils.Success(c, "Doctor profile fetched successfully", doctor)
		return
	}
	if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	doctor = models.Doctor{
		UserID: userID,
		// License numbers are unique; a placeholder keyed on the user
		// keeps first-access creation from colliding.
		MedicalLicenseNumber: "PENDING-" + userID,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
				utils.InternalServerError(c, "Database error: "+err.Error())
				return
			}
			utils.Success(c, "Doctor profile fetched successfully", doctor)
			return
		}
		utils.InternalServerError(c, "Failed to create doctor profile: "+err.Error())
		return
	}

	logger.WithField("user_id", userID).Info("doctor profile auto-created")
	utils.Created(c, "Doctor profile created", doctor)
}

// UpdateDoctorProfileRequest represents the request body for updating a
// doctor profile.
type UpdateDoctorProfileRequest struct {
	MedicalLicenseNumber string   `json:"medicalLicenseNumber"`
	Qualification        string   `json:"qualification"`
	YearsOfExperience    *int     `json:"yearsOfExperience" binding:"omitempty,min=0,max=60"`
	HospitalAffiliation  string   `json:"hospitalAffiliation"`
	ClinicAddress        string   `json:"clinicAddress"`
	ConsultationFee      *float64 `json:"consultationFee"`
	Bio                  string   `json:"bio"`
	AvailableDays        string   `json:"availableDays"`
	StartTime            string   `json:"startTime"`
	EndTime              string   `json:"endTime"`
	ConsultationDuration *int     `json:"consultationDuration" binding:"omitempty,min=5,max=240"`
	IsAvailable          *bool    `json:"isAvailableForAppointments"`
	SpecializationIDs    []string `json:"specializationIds"`
}

// UpdateMyDoctorProfile updates the caller's own doctor profile.
func (h *DoctorHandler) UpdateMyDoctorProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req UpdateDoctorProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if req.StartTime != "" {
		if _, err := scheduling.ParseTime(req.StartTime); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}
	if req.EndTime != "" {
		if _, err := scheduling.ParseTime(req.EndTime); err != nil {
			utils.BadRequest(c, err.Error())
			return
		}
	}

	var doctor models.Doctor
	if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// The resulting window must be ordered or the day yields no slots.
	// Zero-padded HH:MM compares correctly as a string.
	start, end := doctor.StartTime, doctor.EndTime
	if req.StartTime != "" {
		start = req.StartTime
	}
	if req.EndTime != "" {
		end = req.EndTime
	}
	if start != "" && end != "" && start >= end {
		utils.BadRequest(c, "Start time must be before end time")
		return
	}

	if req.MedicalLicenseNumber != "" {
		doctor.MedicalLicenseNumber = req.MedicalLicenseNumber
	}
	if req.Qualification != "" {
		doctor.Qualification = req.Qualification
	}
	if req.YearsOfExperience != nil {
		doctor.YearsOfExperience = *req.YearsOfExperience
	}
	if req.HospitalAffiliation != "" {
		doctor.HospitalAffiliation = req.HospitalAffiliation
	}
	if req.ClinicAddress != "" {
		doctor.ClinicAddress = req.ClinicAddress
	}
	if req.ConsultationFee != nil {
		doctor.ConsultationFee = req.ConsultationFee
	}
	if req.Bio != "" {
		doctor.Bio = req.Bio
	}
	if req.AvailableDays != "" {
		doctor.AvailableDays = req.AvailableDays
	}
	if req.StartTime != "" {
		doctor.StartTime = req.StartTime
	}
	if req.EndTime != "" {
		doctor.EndTime = req.EndTime
	}
	if req.ConsultationDuration != nil {
		doctor.ConsultationDuration = *req.ConsultationDuration
	}
	if req.IsAvailable != nil {
		doctor.IsAvailableForAppointments = *req.IsAvailable
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.BadRequest(c, "Another doctor already uses this license number")
		} else {
			utils.InternalServerError(c, "Failed to update doctor profile: "+err.Error())
		}
		return
	}

	if req.SpecializationIDs != nil {
		var specs []models.Specialization
		if err := h.DB.Where("id IN ?", req.SpecializationIDs).Find(&specs).Error; err != nil {
			utils.InternalServerError(c, "Failed to load specializations: "+err.Error())
			return
		}
		if err := h.DB.Model(&doctor).Association("Specializations").Replace(specs); err != nil {
			utils.InternalServerError(c, "Failed to update specializations: "+err.Error())
			return
		}
	}

	utils.Success(c, "Doctor profile updated successfully", doctor)
}

// VerifyDoctor marks a doctor profile as verified (admin).
func (h *DoctorHandler) VerifyDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	doctor.IsVerified = true
	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to verify doctor: "+err.Error())
		return
	}

	utils.Success(c, "Doctor verified successfully", doctor)
}

// AvailableSlotsResponse is the payload for the slot availability query.
type AvailableSlotsResponse struct {
	Date           string   `json:"date"`
	AvailableSlots []string `json:"availableSlots"`
	TotalSlots     int      `json:"totalSlots"`
	AvailableCount int      `json:"availableCount"`
}

// GetAvailableSlots lists open time slots for a doctor on a date. The
// window comes from the doctor's configured hours and consultation
// duration; slots held by slot-occupying appointments are removed.
func (h *DoctorHandler) GetAvailableSlots(c *gin.Context) {
	dateStr := c.Query("date")
	if dateStr == "" {
		utils.BadRequest(c, "date query parameter is required")
		return
	}

	date, err := scheduling.ParseDate(dateStr)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}
	if scheduling.IsPastDate(date, time.Now()) {
		utils.BadRequest(c, "Cannot book appointments for past dates")
		return
	}

	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	allSlots, err := scheduling.WindowForDoctor(&doctor).Slots()
	if err != nil {
		utils.InternalServerError(c, "Invalid doctor schedule configuration: "+err.Error())
		return
	}

	var booked []string
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND status IN ?",
			doctor.ID, dateStr, scheduling.SlotOccupyingStatuses).
		Pluck("appointment_time", &booked).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch booked slots: "+err.Error())
		return
	}

	available := scheduling.AvailableSlots(allSlots, booked)
	utils.Success(c, "Available slots fetched successfully", AvailableSlotsResponse{
		Date:           dateStr,
		AvailableSlots: available,
		TotalSlots:     len(allSlots),
		AvailableCount: len(available),
	})
}

// GetSpecializations lists active specializations.
func (h *DoctorHandler) GetSpecializations(c *gin.Context) {
	var specs []models.Specialization
	if err := h.DB.Where("is_active = ?", true).Order("name asc").Find(&specs).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch specializations: "+err.Error())
		return
	}
	utils.Success(c, "Specializations fetched successfully", specs)
}

// CreateSpecializationRequest represents the request body for adding a
// specialization (admin).
type CreateSpecializationRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateSpecialization adds a specialization to the catalogue (admin).
func (h *DoctorHandler) CreateSpecialization(c *gin.Context) {
	var req CreateSpecializationRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	spec := models.Specialization{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    true,
	}
	if err := h.DB.Create(&spec).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			utils.BadRequest(c, "Specialization already exists")
		} else {
			utils.InternalServerError(c, "Failed to create specialization: "+err.Error())
		}
		return
	}

	utils.Created(c, "Specialization created successfully", spec)
}
