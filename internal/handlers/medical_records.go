package handlers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"clinic-management-server/internal/logger"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
	"clinic-management-server/internal/utils"
)

// MedicalRecordHandler handles the medical-records ledger: visit
// records, prescriptions, lab tests, vital signs and allergies.
type MedicalRecordHandler struct {
	DB *gorm.DB
}

// NewMedicalRecordHandler creates a new MedicalRecordHandler.
func NewMedicalRecordHandler(db *gorm.DB) *MedicalRecordHandler {
	return &MedicalRecordHandler{DB: db}
}

// doctorProfile resolves the caller's doctor profile, or writes a 403
// and returns nil.
func (h *MedicalRecordHandler) doctorProfile(c *gin.Context) *models.Doctor {
	userID, _ := middleware.GetUserIDFromContext(c)
	var doctor models.Doctor
	if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
		utils.Forbidden(c, "Doctor profile required for this operation")
		return nil
	}
	return &doctor
}

// canReadPatient reports whether the caller may read ledger entries of
// the given patient. Patients read their own, doctors read patients
// they have appointments with, admin and staff read all.
func (h *MedicalRecordHandler) canReadPatient(c *gin.Context, patientID string) bool {
	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)

	switch userRole {
	case models.RoleAdmin, models.RoleStaff:
		return true
	case models.RolePatient:
		var patient models.Patient
		if err := h.DB.Where("user_id = ?", userID).First(&patient).Error; err != nil {
			return false
		}
		return patient.ID == patientID
	case models.RoleDoctor:
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err != nil {
			return false
		}
		var count int64
		h.DB.Model(&models.Appointment{}).
			Where("doctor_id = ? AND patient_id = ?", doctor.ID, patientID).
			Count(&count)
		return count > 0
	}
	return false
}

// CreateMedicalRecordRequest represents the request body for a new
// visit record.
type CreateMedicalRecordRequest struct {
	PatientID               string                 `json:"patientId" binding:"required"`
	AppointmentID           *string                `json:"appointmentId"`
	RecordType              string                 `json:"recordType" binding:"omitempty,oneof=consultation diagnosis treatment surgery lab_test imaging vaccination emergency"`
	VisitDate               time.Time              `json:"visitDate" binding:"required"`
	ChiefComplaint          string                 `json:"chiefComplaint" binding:"required"`
	HistoryOfPresentIllness string                 `json:"historyOfPresentIllness"`
	VitalSigns              map[string]interface{} `json:"vitalSigns"`
	PhysicalExamination     string                 `json:"physicalExamination"`
	Assessment              string                 `json:"assessment"`
	Diagnosis               string                 `json:"diagnosis"`
	TreatmentPlan           string                 `json:"treatmentPlan"`
	FollowUpInstructions    string                 `json:"followUpInstructions"`
	NextVisitDate           string                 `json:"nextVisitDate"`
	IsPrivate               bool                   `json:"isPrivate"`
}

// CreateMedicalRecord creates a visit record (doctor only).
func (h *MedicalRecordHandler) CreateMedicalRecord(c *gin.Context) {
	var req CreateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := h.doctorProfile(c)
	if doctor == nil {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	var patient models.Patient
	if err := h.DB.First(&patient, "id = ?", req.PatientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Patient not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	record := models.MedicalRecord{
		PatientID:               patient.ID,
		DoctorID:                doctor.ID,
		AppointmentID:           req.AppointmentID,
		RecordType:              models.MedicalRecordType(req.RecordType),
		VisitDate:               req.VisitDate,
		ChiefComplaint:          req.ChiefComplaint,
		HistoryOfPresentIllness: req.HistoryOfPresentIllness,
		PhysicalExamination:     req.PhysicalExamination,
		Assessment:              req.Assessment,
		Diagnosis:               req.Diagnosis,
		TreatmentPlan:           req.TreatmentPlan,
		FollowUpInstructions:    req.FollowUpInstructions,
		NextVisitDate:           req.NextVisitDate,
		IsPrivate:               req.IsPrivate,
		CreatedByID:             userID,
	}
	if record.RecordType == "" {
		record.RecordType = models.RecordTypeConsultation
	}
	if req.VitalSigns != nil {
		data, err := json.Marshal(req.VitalSigns)
		if err != nil {
			utils.BadRequest(c, "Invalid vital signs payload: "+err.Error())
			return
		}
		record.VitalSignsData = datatypes.JSON(data)
	}

	if err := h.DB.Create(&record).Error; err != nil {
		utils.InternalServerError(c, "Failed to create medical record: "+err.Error())
		return
	}

	logger.WithField("record_code", record.RecordCode).Info("medical record created")
	utils.Created(c, "Medical record created successfully", record)
}

// GetMedicalRecordsForPatient lists visit records for a patient. Private
// records are hidden from the patient themselves.
func (h *MedicalRecordHandler) GetMedicalRecordsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if !h.canReadPatient(c, patientID) {
		utils.Forbidden(c, "You are not authorized to view these records")
		return
	}

	userRole, _ := middleware.GetUserRoleFromContext(c)
	query := h.DB.Preload("Prescriptions").Preload("LabTests").
		Where("patient_id = ?", patientID).Order("visit_date desc")
	if userRole == models.RolePatient {
		query = query.Where("is_private = ?", false)
	}

	var records []models.MedicalRecord
	if err := query.Find(&records).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch medical records: "+err.Error())
		return
	}

	utils.Success(c, "Medical records fetched successfully", records)
}

// GetMedicalRecordByID fetches a single visit record.
func (h *MedicalRecordHandler) GetMedicalRecordByID(c *gin.Context) {
	var record models.MedicalRecord
	if err := h.DB.Preload("Prescriptions").Preload("LabTests").
		First(&record, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canReadPatient(c, record.PatientID) {
		utils.Forbidden(c, "You are not authorized to view this record")
		return
	}
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RolePatient && record.IsPrivate {
		utils.Forbidden(c, "You are not authorized to view this record")
		return
	}

	utils.Success(c, "Medical record fetched successfully", record)
}

// UpdateMedicalRecordRequest represents the request body for updating a
// visit record.
type UpdateMedicalRecordRequest struct {
	Assessment           string `json:"assessment"`
	Diagnosis            string `json:"diagnosis"`
	TreatmentPlan        string `json:"treatmentPlan"`
	FollowUpInstructions string `json:"followUpInstructions"`
	NextVisitDate        string `json:"nextVisitDate"`
	IsPrivate            *bool  `json:"isPrivate"`
}

// UpdateMedicalRecord updates a visit record. Doctors update their own;
// admin updates any.
func (h *MedicalRecordHandler) UpdateMedicalRecord(c *gin.Context) {
	var req UpdateMedicalRecordRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	record, ok := h.loadOwnedRecord(c)
	if !ok {
		return
	}

	if req.Assessment != "" {
		record.Assessment = req.Assessment
	}
	if req.Diagnosis != "" {
		record.Diagnosis = req.Diagnosis
	}
	if req.TreatmentPlan != "" {
		record.TreatmentPlan = req.TreatmentPlan
	}
	if req.FollowUpInstructions != "" {
		record.FollowUpInstructions = req.FollowUpInstructions
	}
	if req.NextVisitDate != "" {
		record.NextVisitDate = req.NextVisitDate
	}
	if req.IsPrivate != nil {
		record.IsPrivate = *req.IsPrivate
	}

	if err := h.DB.Save(record).Error; err != nil {
		utils.InternalServerError(c, "Failed to update medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record updated successfully", record)
}

// DeleteMedicalRecord removes a visit record. Doctors delete their own;
// admin deletes any.
func (h *MedicalRecordHandler) DeleteMedicalRecord(c *gin.Context) {
	record, ok := h.loadOwnedRecord(c)
	if !ok {
		return
	}

	if err := h.DB.Delete(record).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete medical record: "+err.Error())
		return
	}

	utils.Success(c, "Medical record deleted successfully", nil)
}

// loadOwnedRecord fetches the record and verifies write access: the
// authoring doctor or an admin.
func (h *MedicalRecordHandler) loadOwnedRecord(c *gin.Context) (*models.MedicalRecord, bool) {
	var record models.MedicalRecord
	if err := h.DB.First(&record, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Medical record not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	userRole, _ := middleware.GetUserRoleFromContext(c)
	if userRole == models.RoleAdmin {
		return &record, true
	}
	if userRole == models.RoleDoctor {
		var doctor models.Doctor
		if err := h.DB.Where("user_id = ?", userID).First(&doctor).Error; err == nil && doctor.ID == record.DoctorID {
			return &record, true
		}
	}

	utils.Forbidden(c, "You are not authorized to modify this record")
	return nil, false
}

// CreatePrescriptionRequest represents the request body for a new
// prescription.
type CreatePrescriptionRequest struct {
	PatientID        string  `json:"patientId" binding:"required"`
	MedicalRecordID  *string `json:"medicalRecordId"`
	MedicationName   string  `json:"medicationName" binding:"required"`
	Dosage           string  `json:"dosage"`
	Frequency        string  `json:"frequency"`
	Duration         string  `json:"duration"`
	RefillsRemaining int     `json:"refillsRemaining" binding:"omitempty,min=0"`
	Notes            string  `json:"notes"`
}

// CreatePrescription records a prescription (doctor only).
func (h *MedicalRecordHandler) CreatePrescription(c *gin.Context) {
	var req CreatePrescriptionRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := h.doctorProfile(c)
	if doctor == nil {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	prescription := models.Prescription{
		PatientID:        req.PatientID,
		MedicalRecordID:  req.MedicalRecordID,
		DoctorID:         doctor.ID,
		PrescribedByID:   userID,
		MedicationName:   req.MedicationName,
		Dosage:           req.Dosage,
		Frequency:        req.Frequency,
		DurationText:     req.Duration,
		RefillsRemaining: req.RefillsRemaining,
		Status:           models.PrescriptionActive,
		Notes:            req.Notes,
	}

	if err := h.DB.Create(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to create prescription: "+err.Error())
		return
	}

	utils.Created(c, "Prescription created successfully", prescription)
}

// GetPrescriptionsForPatient lists prescriptions for a patient.
func (h *MedicalRecordHandler) GetPrescriptionsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if !h.canReadPatient(c, patientID) {
		utils.Forbidden(c, "You are not authorized to view these prescriptions")
		return
	}

	query := h.DB.Where("patient_id = ?", patientID).Order("created_at desc")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var prescriptions []models.Prescription
	if err := query.Find(&prescriptions).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch prescriptions: "+err.Error())
		return
	}

	utils.Success(c, "Prescriptions fetched successfully", prescriptions)
}

// RequestPrescriptionRefill flags a prescription for refill (patient).
func (h *MedicalRecordHandler) RequestPrescriptionRefill(c *gin.Context) {
	var prescription models.Prescription
	if err := h.DB.First(&prescription, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Prescription not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if !h.canReadPatient(c, prescription.PatientID) {
		utils.Forbidden(c, "You are not authorized to modify this prescription")
		return
	}

	if prescription.Status != models.PrescriptionActive {
		utils.BadRequest(c, "Only active prescriptions can be refilled")
		return
	}
	if prescription.RefillsRemaining == 0 {
		utils.BadRequest(c, "No refills remaining on this prescription")
		return
	}

	prescription.RefillRequested = true
	if err := h.DB.Save(&prescription).Error; err != nil {
		utils.InternalServerError(c, "Failed to request refill: "+err.Error())
		return
	}

	utils.Success(c, "Refill requested successfully", prescription)
}

// CreateLabTestRequest represents the request body for a lab order.
type CreateLabTestRequest struct {
	PatientID       string  `json:"patientId" binding:"required"`
	MedicalRecordID *string `json:"medicalRecordId"`
	TestName        string  `json:"testName" binding:"required"`
	TestCategory    string  `json:"testCategory"`
	Priority        string  `json:"priority" binding:"omitempty,oneof=routine urgent stat"`
}

// CreateLabTest orders a lab test (doctor only).
func (h *MedicalRecordHandler) CreateLabTest(c *gin.Context) {
	var req CreateLabTestRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor := h.doctorProfile(c)
	if doctor == nil {
		return
	}
	userID, _ := middleware.GetUserIDFromContext(c)

	labTest := models.LabTest{
		PatientID:       req.PatientID,
		MedicalRecordID: req.MedicalRecordID,
		DoctorID:        doctor.ID,
		OrderedByID:     userID,
		TestName:        req.TestName,
		TestCategory:    req.TestCategory,
		Priority:        models.LabTestPriority(req.Priority),
		Status:          models.LabTestOrdered,
	}
	if labTest.Priority == "" {
		labTest.Priority = models.LabPriorityRoutine
	}

	if err := h.DB.Create(&labTest).Error; err != nil {
		utils.InternalServerError(c, "Failed to create lab test: "+err.Error())
		return
	}

	utils.Created(c, "Lab test ordered successfully", labTest)
}

// GetLabTestsForPatient lists lab tests for a patient.
func (h *MedicalRecordHandler) GetLabTestsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if !h.canReadPatient(c, patientID) {
		utils.Forbidden(c, "You are not authorized to view these lab tests")
		return
	}

	var labTests []models.LabTest
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("created_at desc").Find(&labTests).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch lab tests: "+err.Error())
		return
	}

	utils.Success(c, "Lab tests fetched successfully", labTests)
}

// UpdateLabTestResultRequest represents the request body for recording
// a lab result.
type UpdateLabTestResultRequest struct {
	Status         string `json:"status" binding:"required,oneof=ordered in_progress completed cancelled"`
	ResultValue    string `json:"resultValue"`
	ReferenceRange string `json:"referenceRange"`
	ResultNotes    string `json:"resultNotes"`
	IsAbnormal     *bool  `json:"isAbnormal"`
}

// UpdateLabTestResult records the result of a lab test (doctor only).
func (h *MedicalRecordHandler) UpdateLabTestResult(c *gin.Context) {
	var req UpdateLabTestResultRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	if h.doctorProfile(c) == nil {
		return
	}

	var labTest models.LabTest
	if err := h.DB.First(&labTest, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Lab test not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	labTest.Status = models.LabTestStatus(req.Status)
	if req.ResultValue != "" {
		labTest.ResultValue = req.ResultValue
	}
	if req.ReferenceRange != "" {
		labTest.ReferenceRange = req.ReferenceRange
	}
	if req.ResultNotes != "" {
		labTest.ResultNotes = req.ResultNotes
	}
	if req.IsAbnormal != nil {
		labTest.IsAbnormal = *req.IsAbnormal
	}
	if labTest.Status == models.LabTestCompleted && labTest.ResultAt == nil {
		now := time.Now()
		labTest.ResultAt = &now
	}

	if err := h.DB.Save(&labTest).Error; err != nil {
		utils.InternalServerError(c, "Failed to update lab test: "+err.Error())
		return
	}

	utils.Success(c, "Lab test updated successfully", labTest)
}

// CreateVitalSignsRequest represents the request body for recording
// vital signs.
type CreateVitalSignsRequest struct {
	PatientID              string    `json:"patientId" binding:"required"`
	MedicalRecordID        *string   `json:"medicalRecordId"`
	TemperatureC           *float64  `json:"temperatureC"`
	BloodPressureSystolic  *int      `json:"bloodPressureSystolic"`
	BloodPressureDiastolic *int      `json:"bloodPressureDiastolic"`
	HeartRate              *int      `json:"heartRate"`
	RespiratoryRate        *int      `json:"respiratoryRate"`
	OxygenSaturation       *int      `json:"oxygenSaturation" binding:"omitempty,min=0,max=100"`
	WeightKg               *float64  `json:"weightKg"`
	HeightCm               *float64  `json:"heightCm"`
	PainScale              *int      `json:"painScale" binding:"omitempty,min=0,max=10"`
	MeasuredAt             time.Time `json:"measuredAt" binding:"required"`
	Notes                  string    `json:"notes"`
}

// CreateVitalSigns records a vitals measurement (doctor/staff).
func (h *MedicalRecordHandler) CreateVitalSigns(c *gin.Context) {
	var req CreateVitalSignsRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	vitals := models.VitalSigns{
		PatientID:              req.PatientID,
		MedicalRecordID:        req.MedicalRecordID,
		MeasuredByID:           userID,
		TemperatureC:           req.TemperatureC,
		BloodPressureSystolic:  req.BloodPressureSystolic,
		BloodPressureDiastolic: req.BloodPressureDiastolic,
		HeartRate:              req.HeartRate,
		RespiratoryRate:        req.RespiratoryRate,
		OxygenSaturation:       req.OxygenSaturation,
		WeightKg:               req.WeightKg,
		HeightCm:               req.HeightCm,
		PainScale:              req.PainScale,
		MeasuredAt:             req.MeasuredAt,
		Notes:                  req.Notes,
	}

	if err := h.DB.Create(&vitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to record vital signs: "+err.Error())
		return
	}

	utils.Created(c, "Vital signs recorded successfully", vitals)
}

// GetVitalSignsForPatient lists vitals history for a patient.
func (h *MedicalRecordHandler) GetVitalSignsForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if !h.canReadPatient(c, patientID) {
		utils.Forbidden(c, "You are not authorized to view these measurements")
		return
	}

	var vitals []models.VitalSigns
	if err := h.DB.Where("patient_id = ?", patientID).
		Order("measured_at desc").Find(&vitals).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch vital signs: "+err.Error())
		return
	}

	utils.Success(c, "Vital signs fetched successfully", vitals)
}

// CreateAllergyRequest represents the request body for recording an
// allergy.
type CreateAllergyRequest struct {
	PatientID   string `json:"patientId" binding:"required"`
	Allergen    string `json:"allergen" binding:"required"`
	AllergyType string `json:"allergyType" binding:"omitempty,oneof=drug food environmental contact other"`
	Severity    string `json:"severity" binding:"omitempty,oneof=mild moderate severe life_threatening"`
	Reaction    string `json:"reaction" binding:"required"`
	OnsetDate   string `json:"onsetDate"`
	Notes       string `json:"notes"`
}

// CreateAllergy records a patient allergy (doctor/staff).
func (h *MedicalRecordHandler) CreateAllergy(c *gin.Context) {
	var req CreateAllergyRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)

	allergy := models.Allergy{
		PatientID:    req.PatientID,
		Allergen:     req.Allergen,
		AllergyType:  models.AllergyType(req.AllergyType),
		Severity:     models.AllergySeverity(req.Severity),
		Reaction:     req.Reaction,
		OnsetDate:    req.OnsetDate,
		Notes:        req.Notes,
		IsActive:     true,
		RecordedByID: userID,
	}
	if allergy.AllergyType == "" {
		allergy.AllergyType = models.AllergyOther
	}
	if allergy.Severity == "" {
		allergy.Severity = models.SeverityMild
	}

	if err := h.DB.Create(&allergy).Error; err != nil {
		utils.InternalServerError(c, "Failed to record allergy: "+err.Error())
		return
	}

	utils.Created(c, "Allergy recorded successfully", allergy)
}

// GetAllergiesForPatient lists active allergies for a patient.
func (h *MedicalRecordHandler) GetAllergiesForPatient(c *gin.Context) {
	patientID := c.Param("patientId")
	if !h.canReadPatient(c, patientID) {
		utils.Forbidden(c, "You are not authorized to view these allergies")
		return
	}

	var allergies []models.Allergy
	if err := h.DB.Where("patient_id = ? AND is_active = ?", patientID, true).
		Order("severity desc, allergen asc").Find(&allergies).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch allergies: "+err.Error())
		return
	}

	utils.Success(c, "Allergies fetched successfully", allergies)
}

// DeactivateAllergy marks an allergy as no longer active (doctor/staff).
func (h *MedicalRecordHandler) DeactivateAllergy(c *gin.Context) {
	var allergy models.Allergy
	if err := h.DB.First(&allergy, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Allergy not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	allergy.IsActive = false
	if err := h.DB.Save(&allergy).Error; err != nil {
		utils.InternalServerError(c, "Failed to update allergy: "+err.Error())
		return
	}

	utils.Success(c, "Allergy deactivated successfully", allergy)
}
