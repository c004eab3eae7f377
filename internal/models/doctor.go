package models

import (
	"strings"

	"gorm.io/gorm"
)

// Qualification levels recognised for doctor profiles.
const (
	QualificationMBBS = "MBBS"
	QualificationMD   = "MD"
	QualificationMS   = "MS"
	QualificationDM   = "DM"
	QualificationDNB  = "DNB"
)

// Specialization is a medical specialization doctors can be tagged with.
type Specialization struct {
	BaseModel
	Name        string `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	IsActive    bool   `gorm:"default:true" json:"isActive"`
}

// Doctor represents a doctor profile linked 1:1 to a user account.
type Doctor struct {
	BaseModel
	UserID               string           `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	DoctorCode           string           `gorm:"size:20;uniqueIndex" json:"doctorCode"`
	MedicalLicenseNumber string           `gorm:"size:50;uniqueIndex;not null" json:"medicalLicenseNumber"`
	Specializations      []Specialization `gorm:"many2many:doctor_specializations" json:"specializations,omitempty"`
	Qualification        string           `gorm:"size:20;default:'MBBS'" json:"qualification"`
	YearsOfExperience    int              `json:"yearsOfExperience"`

	// Professional details
	HospitalAffiliation string   `gorm:"size:200" json:"hospitalAffiliation,omitempty"`
	ClinicAddress       string   `gorm:"type:text" json:"clinicAddress,omitempty"`
	ConsultationFee     *float64 `json:"consultationFee,omitempty"`
	Bio                 string   `gorm:"type:text" json:"bio,omitempty"`

	// Schedule and availability. Times are HH:MM, days a comma-separated list.
	AvailableDays        string `gorm:"size:100;default:'Monday,Tuesday,Wednesday,Thursday,Friday'" json:"availableDays"`
	StartTime            string `gorm:"size:5;default:'09:00'" json:"startTime"`
	EndTime              string `gorm:"size:5;default:'17:00'" json:"endTime"`
	ConsultationDuration int    `gorm:"default:30" json:"consultationDuration"`

	// Status and verification
	IsVerified                 bool    `gorm:"default:false" json:"isVerified"`
	IsAvailableForAppointments bool    `gorm:"default:true" json:"isAvailableForAppointments"`
	Rating                     float64 `gorm:"default:0" json:"rating"`
	TotalRatings               int     `gorm:"default:0" json:"totalRatings"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// BeforeCreate assigns the display code on first insert.
func (d *Doctor) BeforeCreate(tx *gorm.DB) error {
	if err := d.BaseModel.BeforeCreate(tx); err != nil {
		return err
	}
	if d.DoctorCode == "" {
		d.DoctorCode = GenerateCode("D", 6)
	}
	return nil
}

// AvailableDaysList splits the stored day list.
func (d *Doctor) AvailableDaysList() []string {
	var days []string
	for _, day := range strings.Split(d.AvailableDays, ",") {
		if day = strings.TrimSpace(day); day != "" {
			days = append(days, day)
		}
	}
	return days
}

// ApplyRating folds a new 1-5 star rating into the running average.
// Pure mutation; the caller persists, and must only invoke this when the
// rating row was inserted for the first time.
func (d *Doctor) ApplyRating(stars int) {
	total := d.Rating * float64(d.TotalRatings)
	d.TotalRatings++
	d.Rating = (total + float64(stars)) / float64(d.TotalRatings)
}
