package models

import (
	"gorm.io/gorm"
)

// Gender choices for patient profiles.
const (
	GenderMale        = "M"
	GenderFemale      = "F"
	GenderOther       = "O"
	GenderUndisclosed = "N"
)

// Patient represents a patient profile linked 1:1 to a user account.
type Patient struct {
	BaseModel
	UserID        string   `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	PatientCode   string   `gorm:"size:20;uniqueIndex" json:"patientCode"`
	Gender        string   `gorm:"size:1" json:"gender,omitempty"`
	BloodGroup    string   `gorm:"size:10;default:'Unknown'" json:"bloodGroup"`
	HeightCm      *float64 `json:"heightCm,omitempty"`
	WeightKg      *float64 `json:"weightKg,omitempty"`
	MaritalStatus string   `gorm:"size:20" json:"maritalStatus,omitempty"`
	Occupation    string   `gorm:"size:100" json:"occupation,omitempty"`

	// Insurance
	InsuranceProvider     string `gorm:"size:100" json:"insuranceProvider,omitempty"`
	InsurancePolicyNumber string `gorm:"size:50" json:"insurancePolicyNumber,omitempty"`

	// Medical summary (free text, maintained by clinic staff)
	KnownAllergies       string `gorm:"type:text" json:"knownAllergies,omitempty"`
	ChronicConditions    string `gorm:"type:text" json:"chronicConditions,omitempty"`
	CurrentMedications   string `gorm:"type:text" json:"currentMedications,omitempty"`
	FamilyMedicalHistory string `gorm:"type:text" json:"familyMedicalHistory,omitempty"`

	IsActive bool `gorm:"default:true" json:"isActive"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns the display code on first insert.
func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if err := p.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if p.PatientCode == "" {
		p.PatientCode = GenerateCode("P", 6)
	}
	return nil
}

// BMI computes body-mass index from the stored height and weight, or 0
// when either is missing.
func (p *Patient) BMI() float64 {
	if p.HeightCm == nil || p.WeightKg == nil || *p.HeightCm == 0 {
		return 0
	}
	heightM := *p.HeightCm / 100
	return *p.WeightKg / (heightM * heightM)
}
