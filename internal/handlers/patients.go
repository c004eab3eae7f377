package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-management-server/internal/logger"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"
)

// PatientHandler handles patient registry requests.
type PatientHandler struct {
	DB *gorm.DB
}

// NewPatientHandler creates a new PatientHandler.
func NewPatientHandler(db *gorm.DB) *PatientHandler {
	return &PatientHandler{DB: db}
}

// GetPatients lists patient profiles (admin/staff).
func (h *PatientHandler) GetPatients(c *gin.Context) {
	query := h.DB.Preload("User")
	if c.Query("active") == "true" {
		query = query.Where("is_active = ?", true)
	}

	var patients []models.Patient
	if err := query.Find(&patients).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// GetPatientByID fetches a single patient profile. Admin and staff may
// read any; a doctor may read patients they have appointments with.
func (h *PatientHandler) GetPatientByID(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	var patient models.Patient
	if err := h.DB.Preload("User").First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	switch userRole {
	case models.RoleAdmin, models.RoleStaff:
		// Unrestricted
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			utils.Forbidden(c, "You are not authorized to view this patient")
			return
		}
		var count int64
		if err := h.DB.Model(&models.Appointment{}).
			Where("doctor_id = ? AND patient_id = ?", doctor.ID, patient.ID).
			Count(&count).Error; err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
		if count == 0 {
			utils.Forbidden(c, "You are not authorized to view this patient")
			return
		}
	case models.RolePatient:
		if patient.UserID != userID {
			utils.Forbidden(c, "You are not authorized to view this patient")
			return
		}
	default:
		utils.Forbidden(c, "You are not authorized to view this patient")
		return
	}

	utils.Success(c, "Patient fetched successfully", patient)
}

// GetMyPatientProfile returns the caller's patient profile, creating a
// blank one on first access. Idempotent under concurrent calls: the
// insert races on the user_id unique index and the loser re-fetches.
func (h *PatientHandler) GetMyPatientProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var patient models.Patient
	err := h.DB.Where("user_id = ?", userID).First(&patient).Error
	if err == nil {
		utils.Success(c, "Patient profile fetched successfully", patient)
		return
	}
	if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	patient = models.Patient{
		UserID:     userID,
		BloodGroup: "Unknown",
		IsActive:   true,
	}
	if err := h.DB.Create(&patient).Error; err != nil {
		if err == gorm.ErrDuplicatedKey {
			if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
				utils.InternalServerError(c, "Database error: "+err.Error())
				return
			}
			utils.Success(c, "Patient profile fetched successfully", patient)
			return
		}
		utils.InternalServerError(c, "Failed to create patient profile: "+err.Error())
		return
	}

	logger.WithField("user_id", userID).Info("patient profile auto-created")
	utils.Created(c, "Patient profile created", patient)
}

// UpdatePatientProfileRequest represents the request body for updating a
// patient profile.
type UpdatePatientProfileRequest struct {
	Gender                string   `json:"gender" binding:"omitempty,oneof=M F O N"`
	BloodGroup            string   `json:"bloodGroup"`
	HeightCm              *float64 `json:"heightCm"`
	WeightKg              *float64 `json:"weightKg"`
	MaritalStatus         string   `json:"maritalStatus"`
	Occupation            string   `json:"occupation"`
	InsuranceProvider     string   `json:"insuranceProvider"`
	InsurancePolicyNumber string   `json:"insurancePolicyNumber"`
	KnownAllergies        string   `json:"knownAllergies"`
	ChronicConditions     string   `json:"chronicConditions"`
	CurrentMedications    string   `json:"currentMedications"`
	FamilyMedicalHistory  string   `json:"familyMedicalHistory"`
}

// UpdateMyPatientProfile updates the caller's own patient profile.
func (h *PatientHandler) UpdateMyPatientProfile(c *gin.Context) {
	userID, _ := middleware.GetUserIDFromContext(c)

	var req UpdatePatientProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient profile not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	applyPatientUpdate(&patient, &req)

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient profile: "+err.Error())
		return
	}

	utils.Success(c, "Patient profile updated successfully", patient)
}

// UpdatePatient updates any patient profile (admin/staff).
func (h *PatientHandler) UpdatePatient(c *gin.Context) {
	var req UpdatePatientProfileRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	applyPatientUpdate(&patient, &req)

	if err := h.DB.Save(&patient).Error; err != nil {
		utils.InternalServerError(c, "Failed to update patient: "+err.Error())
		return
	}

	utils.Success(c, "Patient updated successfully", patient)
}

func applyPatientUpdate(patient *models.Patient, req *UpdatePatientProfileRequest) {
	if req.Gender != "" {
		patient.Gender = req.Gender
	}
	if req.BloodGroup != "" {
		patient.BloodGroup = req.BloodGroup
	}
	if req.HeightCm != nil {
		patient.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		patient.WeightKg = req.WeightKg
	}
	if req.MaritalStatus != "" {
		patient.MaritalStatus = req.MaritalStatus
	}
	if req.Occupation != "" {
		patient.Occupation = req.Occupation
	}
	if req.InsuranceProvider != "" {
		patient.InsuranceProvider = req.InsuranceProvider
	}
	if req.InsurancePolicyNumber != "" {
		patient.InsurancePolicyNumber = req.InsurancePolicyNumber
	}
	if req.KnownAllergies != "" {
		patient.KnownAllergies = req.KnownAllergies
	}
	if req.ChronicConditions != "" {
		patient.ChronicConditions = req.ChronicConditions
	}
	if req.CurrentMedications != "" {
		patient.CurrentMedications = req.CurrentMedications
	}
	if req.FamilyMedicalHistory != "" {
		patient.FamilyMedicalHistory = req.FamilyMedicalHistory
	}
}
