package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// MedicalRecordType represents the type of medical record
type MedicalRecordType string

const (
	RecordTypeConsultation MedicalRecordType = "consultation"
	RecordTypeDiagnosis    MedicalRecordType = "diagnosis"
	RecordTypeTreatment    MedicalRecordType = "treatment"
	RecordTypeSurgery      MedicalRecordType = "surgery"
	RecordTypeLabTest      MedicalRecordType = "lab_test"
	RecordTypeImaging      MedicalRecordType = "imaging"
	RecordTypeVaccination  MedicalRecordType = "vaccination"
	RecordTypeEmergency    MedicalRecordType = "emergency"
)

// MedicalRecord is the main record for a patient visit.
type MedicalRecord struct {
	BaseModel
	RecordCode    string  `gorm:"size:20;uniqueIndex" json:"recordCode"`
	PatientID     string  `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID      string  `gorm:"size:36;index;not null" json:"doctorId"`
	AppointmentID *string `gorm:"size:36" json:"appointmentId,omitempty"`

	// Record details
	RecordType              MedicalRecordType `gorm:"size:20;default:'consultation'" json:"recordType"`
	VisitDate               time.Time         `gorm:"not null" json:"visitDate"`
	ChiefComplaint          string            `gorm:"type:text;not null" json:"chiefComplaint"`
	HistoryOfPresentIllness string            `gorm:"type:text" json:"historyOfPresentIllness,omitempty"`

	// Physical examination; vitals captured at the visit are stored as JSON
	VitalSignsData      datatypes.JSON `json:"vitalSignsData,omitempty"`
	PhysicalExamination string         `gorm:"type:text" json:"physicalExamination,omitempty"`

	// Assessment and plan
	Assessment    string `gorm:"type:text" json:"assessment,omitempty"`
	Diagnosis     string `gorm:"type:text" json:"diagnosis,omitempty"`
	TreatmentPlan string `gorm:"type:text" json:"treatmentPlan,omitempty"`

	// Follow-up
	FollowUpInstructions string `gorm:"type:text" json:"followUpInstructions,omitempty"`
	NextVisitDate        string `gorm:"size:10" json:"nextVisitDate,omitempty"`

	// Metadata
	CreatedByID string `gorm:"size:36" json:"createdById"`
	IsPrivate   bool   `gorm:"default:false" json:"isPrivate"`

	// Relations
	Patient       Patient       `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Doctor        Doctor        `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Prescriptions []Prescription `gorm:"foreignKey:MedicalRecordID" json:"prescriptions,omitempty"`
	LabTests      []LabTest      `gorm:"foreignKey:MedicalRecordID" json:"labTests,omitempty"`
}

// BeforeCreate assigns the display code on first insert.
func (m *MedicalRecord) BeforeCreate(tx *gorm.DB) error {
	if err := m.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if m.RecordCode == "" {
		m.RecordCode = GenerateCode("MR", 8)
	}
	return nil
}

// PrescriptionStatus is the lifecycle state of a prescription.
type PrescriptionStatus string

const (
	PrescriptionActive       PrescriptionStatus = "active"
	PrescriptionExpired      PrescriptionStatus = "expired"
	PrescriptionCompleted    PrescriptionStatus = "completed"
	PrescriptionDiscontinued PrescriptionStatus = "discontinued"
	PrescriptionCancelled    PrescriptionStatus = "cancelled"
)

// Prescription is a medication order for a patient.
type Prescription struct {
	BaseModel
	PrescriptionCode string  `gorm:"size:20;uniqueIndex" json:"prescriptionCode"`
	MedicalRecordID  *string `gorm:"size:36" json:"medicalRecordId,omitempty"`
	PatientID        string  `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID         string  `gorm:"size:36;index;not null" json:"doctorId"`
	PrescribedByID   string  `gorm:"size:36" json:"prescribedById"`

	MedicationName   string             `gorm:"size:200;not null" json:"medicationName"`
	Dosage           string             `gorm:"size:100;default:'As prescribed'" json:"dosage"`
	Frequency        string             `gorm:"size:50;default:'As prescribed'" json:"frequency"`
	DurationText     string             `gorm:"size:100;default:'As prescribed'" json:"duration"`
	RefillsRemaining int                `gorm:"default:0" json:"refillsRemaining"`
	RefillRequested  bool               `gorm:"default:false" json:"refillRequested"`
	Status           PrescriptionStatus `gorm:"size:20;default:'active'" json:"status"`
	Notes            string             `gorm:"type:text" json:"notes,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

// BeforeCreate assigns the display code on first insert.
func (p *Prescription) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.PrescriptionCode == "" {
		p.PrescriptionCode = GenerateCode("RX", 8)
	}
	return nil
}

// LabTestStatus is the lifecycle state of a lab order.
type LabTestStatus string

const (
	LabTestOrdered    LabTestStatus = "ordered"
	LabTestInProgress LabTestStatus = "in_progress"
	LabTestCompleted  LabTestStatus = "completed"
	LabTestCancelled  LabTestStatus = "cancelled"
)

// LabTestPriority ranks lab order urgency.
type LabTestPriority string

const (
	LabPriorityRoutine LabTestPriority = "routine"
	LabPriorityUrgent  LabTestPriority = "urgent"
	LabPriorityStat    LabTestPriority = "stat"
)

// LabTest is a laboratory test order and its result.
type LabTest struct {
	BaseModel
	TestCode        string  `gorm:"size:20;uniqueIndex" json:"testCode"`
	PatientID       string  `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID        string  `gorm:"size:36;index" json:"doctorId"`
	OrderedByID     string  `gorm:"size:36" json:"orderedById"`
	MedicalRecordID *string `gorm:"size:36" json:"medicalRecordId,omitempty"`

	TestName     string          `gorm:"size:200;not null" json:"testName"`
	TestCategory string          `gorm:"size:100" json:"testCategory,omitempty"`
	Priority     LabTestPriority `gorm:"size:10;default:'routine'" json:"priority"`
	Status       LabTestStatus   `gorm:"size:20;default:'ordered'" json:"status"`

	SampleCollectedAt *time.Time `json:"sampleCollectedAt,omitempty"`
	ResultAt          *time.Time `json:"resultAt,omitempty"`

	ResultValue    string `gorm:"type:text" json:"resultValue,omitempty"`
	ReferenceRange string `gorm:"size:200" json:"referenceRange,omitempty"`
	ResultNotes    string `gorm:"type:text" json:"resultNotes,omitempty"`
	IsAbnormal     bool   `gorm:"default:false" json:"isAbnormal"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"-"`
}

// BeforeCreate assigns the display code on first insert.
func (l *LabTest) BeforeCreate(tx *gorm.DB) error {
	if err := l.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if l.TestCode == "" {
		l.TestCode = GenerateCode("LAB", 8)
	}
	return nil
}

// VitalSigns is a point-in-time set of vital measurements for a patient.
type VitalSigns struct {
	BaseModel
	PatientID       string  `gorm:"size:36;index;not null" json:"patientId"`
	MedicalRecordID *string `gorm:"size:36" json:"medicalRecordId,omitempty"`
	MeasuredByID    string  `gorm:"size:36" json:"measuredById"`

	TemperatureC           *float64 `json:"temperatureC,omitempty"`
	BloodPressureSystolic  *int     `json:"bloodPressureSystolic,omitempty"`
	BloodPressureDiastolic *int     `json:"bloodPressureDiastolic,omitempty"`
	HeartRate              *int     `json:"heartRate,omitempty"`
	RespiratoryRate        *int     `json:"respiratoryRate,omitempty"`
	OxygenSaturation       *int     `json:"oxygenSaturation,omitempty"`
	WeightKg               *float64 `json:"weightKg,omitempty"`
	HeightCm               *float64 `json:"heightCm,omitempty"`
	PainScale              *int     `json:"painScale,omitempty"`

	MeasuredAt time.Time `gorm:"not null" json:"measuredAt"`
	Notes      string    `gorm:"type:text" json:"notes,omitempty"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}

// AllergySeverity ranks how dangerous a reaction is.
type AllergySeverity string

const (
	SeverityMild            AllergySeverity = "mild"
	SeverityModerate        AllergySeverity = "moderate"
	SeveritySevere          AllergySeverity = "severe"
	SeverityLifeThreatening AllergySeverity = "life_threatening"
)

// AllergyType classifies the allergen.
type AllergyType string

const (
	AllergyDrug          AllergyType = "drug"
	AllergyFood          AllergyType = "food"
	AllergyEnvironmental AllergyType = "environmental"
	AllergyContact       AllergyType = "contact"
	AllergyOther         AllergyType = "other"
)

// Allergy is a recorded patient allergy.
type Allergy struct {
	BaseModel
	PatientID    string          `gorm:"size:36;index;not null" json:"patientId"`
	Allergen     string          `gorm:"size:200;not null" json:"allergen"`
	AllergyType  AllergyType     `gorm:"size:20;default:'other'" json:"allergyType"`
	Severity     AllergySeverity `gorm:"size:20;default:'mild'" json:"severity"`
	Reaction     string          `gorm:"type:text;not null" json:"reaction"`
	OnsetDate    string          `gorm:"size:10" json:"onsetDate,omitempty"`
	Notes        string          `gorm:"type:text" json:"notes,omitempty"`
	IsActive     bool            `gorm:"default:true" json:"isActive"`
	RecordedByID string          `gorm:"size:36" json:"recordedById"`

	Patient Patient `gorm:"foreignKey:PatientID" json:"-"`
}
