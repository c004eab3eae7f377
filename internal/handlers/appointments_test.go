package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"
)

// openTestDB opens an in-memory database with the same error
// translation as production, so unique-index violations surface as
// gorm.ErrDuplicatedKey here too.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Specialization{},
		&models.Doctor{},
		&models.Patient{},
		&models.Appointment{},
		&models.AppointmentHistory{},
		&models.AppointmentRating{},
	); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// seedSchedule creates a doctor, a patient and an admin user.
func seedSchedule(t *testing.T, db *gorm.DB) (models.Doctor, models.Patient, models.User) {
	t.Helper()

	doctorUser := models.User{Email: "doc@clinic.test", Role: models.RoleDoctor}
	patientUser := models.User{Email: "pat@clinic.test", Role: models.RolePatient}
	adminUser := models.User{Email: "admin@clinic.test", Role: models.RoleAdmin}
	for _, u := range []*models.User{&doctorUser, &patientUser, &adminUser} {
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}

	doctor := models.Doctor{UserID: doctorUser.ID, MedicalLicenseNumber: "LIC-" + doctorUser.ID}
	if err := db.Create(&doctor).Error; err != nil {
		t.Fatalf("seed doctor: %v", err)
	}
	patient := models.Patient{UserID: patientUser.ID}
	if err := db.Create(&patient).Error; err != nil {
		t.Fatalf("seed patient: %v", err)
	}
	return doctor, patient, adminUser
}

// appointmentRouter wires the handler behind a stub auth layer acting
// as the given user.
func appointmentRouter(db *gorm.DB, userID string, role models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAppointmentHandler(db)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, role)
	})
	router.POST("/appointments", h.CreateAppointment)
	router.PATCH("/appointments/:id/reschedule", h.RescheduleAppointment)
	router.PATCH("/appointments/:id/cancel", h.CancelAppointment)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)
	return w
}

func seedAppointment(t *testing.T, db *gorm.DB, doctor models.Doctor, patient models.Patient, date, timeOfDay string) models.Appointment {
	t.Helper()
	appointment := models.Appointment{
		PatientID:       patient.ID,
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		AppointmentTime: timeOfDay,
		Status:          models.StatusScheduled,
		ChiefComplaint:  "headache",
	}
	if err := db.Create(&appointment).Error; err != nil {
		t.Fatalf("seed appointment: %v", err)
	}
	return appointment
}

func TestCreateAppointmentSlotConflict(t *testing.T) {
	db := openTestDB(t)
	doctor, patient, admin := seedSchedule(t, db)
	router := appointmentRouter(db, admin.ID, models.RoleAdmin)

	body := `{"patientId":"` + patient.ID + `","doctorId":"` + doctor.ID + `","date":"2030-05-20","time":"09:00","chiefComplaint":"headache"}`

	if w := doJSON(t, router, http.MethodPost, "/appointments", body); w.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d, want %d (body %s)", w.Code, http.StatusCreated, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodPost, "/appointments", body); w.Code != http.StatusConflict {
		t.Fatalf("second booking: status = %d, want %d (body %s)", w.Code, http.StatusConflict, w.Body.String())
	}

	var count int64
	db.Model(&models.Appointment{}).
		Where("doctor_id = ? AND appointment_date = ? AND appointment_time = ?", doctor.ID, "2030-05-20", "09:00").
		Count(&count)
	if count != 1 {
		t.Errorf("appointments in slot = %d, want 1", count)
	}
}

func TestRescheduleWritesSingleHistoryRow(t *testing.T) {
	db := openTestDB(t)
	doctor, patient, admin := seedSchedule(t, db)
	appointment := seedAppointment(t, db, doctor, patient, "2030-05-20", "09:00")
	router := appointmentRouter(db, admin.ID, models.RoleAdmin)

	w := doJSON(t, router, http.MethodPatch, "/appointments/"+appointment.ID+"/reschedule",
		`{"newDate":"2030-05-20","newTime":"10:00","reason":"doctor request"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}

	var updated models.Appointment
	if err := db.First(&updated, "id = ?", appointment.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if updated.AppointmentTime != "10:00" || updated.Status != models.StatusRescheduled {
		t.Errorf("appointment = (%s, %s), want (10:00, rescheduled)", updated.AppointmentTime, updated.Status)
	}

	var history []models.AppointmentHistory
	db.Where("appointment_id = ? AND action = ?", appointment.ID, models.HistoryActionRescheduled).Find(&history)
	if len(history) != 1 {
		t.Fatalf("reschedule history rows = %d, want 1", len(history))
	}
	h := history[0]
	if h.OldDate != "2030-05-20" || h.OldTime != "09:00" || h.NewDate != "2030-05-20" || h.NewTime != "10:00" {
		t.Errorf("history = old(%s %s) new(%s %s), want old(2030-05-20 09:00) new(2030-05-20 10:00)",
			h.OldDate, h.OldTime, h.NewDate, h.NewTime)
	}
}

func TestRescheduleConflictLeavesNoHistory(t *testing.T) {
	db := openTestDB(t)
	doctor, patient, admin := seedSchedule(t, db)
	appointment := seedAppointment(t, db, doctor, patient, "2030-05-20", "09:00")
	blocker := seedAppointment(t, db, doctor, patient, "2030-05-20", "09:30")

	// A cancelled row is invisible to the pre-check but still held by
	// the unique index, which forces the save onto the duplicate-key
	// path the same way a concurrent booking would.
	if err := db.Model(&models.Appointment{}).Where("id = ?", blocker.ID).
		Update("status", models.StatusCancelled).Error; err != nil {
		t.Fatalf("cancel blocker: %v", err)
	}

	router := appointmentRouter(db, admin.ID, models.RoleAdmin)
	w := doJSON(t, router, http.MethodPatch, "/appointments/"+appointment.ID+"/reschedule",
		`{"newDate":"2030-05-20","newTime":"09:30"}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d (body %s)", w.Code, http.StatusConflict, w.Body.String())
	}

	// The losing reschedule must leave neither a slot change nor an
	// audit row claiming one.
	var updated models.Appointment
	if err := db.First(&updated, "id = ?", appointment.ID).Error; err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if updated.AppointmentTime != "09:00" || updated.Status != models.StatusScheduled {
		t.Errorf("appointment = (%s, %s), want (09:00, scheduled)", updated.AppointmentTime, updated.Status)
	}

	var count int64
	db.Model(&models.AppointmentHistory{}).
		Where("appointment_id = ? AND action = ?", appointment.ID, models.HistoryActionRescheduled).
		Count(&count)
	if count != 0 {
		t.Errorf("reschedule history rows = %d, want 0", count)
	}
}

func TestRescheduleToIdenticalSlotRejected(t *testing.T) {
	db := openTestDB(t)
	doctor, patient, admin := seedSchedule(t, db)
	appointment := seedAppointment(t, db, doctor, patient, "2030-05-20", "09:00")
	router := appointmentRouter(db, admin.ID, models.RoleAdmin)

	w := doJSON(t, router, http.MethodPatch, "/appointments/"+appointment.ID+"/reschedule",
		`{"newDate":"2030-05-20","newTime":"09:00"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d (body %s)", w.Code, http.StatusBadRequest, w.Body.String())
	}
}

func TestCancelTwiceRejected(t *testing.T) {
	db := openTestDB(t)
	doctor, patient, admin := seedSchedule(t, db)
	appointment := seedAppointment(t, db, doctor, patient, "2030-05-20", "09:00")
	router := appointmentRouter(db, admin.ID, models.RoleAdmin)

	if w := doJSON(t, router, http.MethodPatch, "/appointments/"+appointment.ID+"/cancel",
		`{"reason":"patient request"}`); w.Code != http.StatusOK {
		t.Fatalf("first cancel: status = %d, want %d (body %s)", w.Code, http.StatusOK, w.Body.String())
	}
	if w := doJSON(t, router, http.MethodPatch, "/appointments/"+appointment.ID+"/cancel",
		`{"reason":"again"}`); w.Code != http.StatusBadRequest {
		t.Errorf("second cancel: status = %d, want %d (body %s)", w.Code, http.StatusBadRequest, w.Body.String())
	}
}
