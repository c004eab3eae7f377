package routes

import (
	"clinic-management-server/internal/config"
	"clinic-management-server/internal/handlers"
	"clinic-management-server/internal/middleware"
	"clinic-management-server/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	doctorHandler := handlers.NewDoctorHandler(db)
	patientHandler := handlers.NewPatientHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	medicalRecordHandler := handlers.NewMedicalRecordHandler(db)
	reminderHandler := handlers.NewReminderHandler(db)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(middleware.RateLimitMiddleware(rate.Limit(cfg.RateLimitPerSecond), cfg.RateLimitBurst))
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management (admin-only)
		userRoutes := private.Group("/users")
		userRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			userRoutes.POST("", userHandler.CreateUser)
			userRoutes.GET("", userHandler.GetUsers)
			userRoutes.GET("/:id", userHandler.GetUserByID)
			userRoutes.PUT("/:id", userHandler.UpdateUser)
			userRoutes.DELETE("/:id", userHandler.DeleteUser)
		}

		// Doctor directory
		doctorRoutes := private.Group("/doctors")
		{
			doctorRoutes.GET("", doctorHandler.GetDoctors)
			doctorRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.GetMyDoctorProfile)
			doctorRoutes.PUT("/me", middleware.RoleAuthMiddleware(models.RoleDoctor), doctorHandler.UpdateMyDoctorProfile)
			doctorRoutes.GET("/:id", doctorHandler.GetDoctorByID)
			doctorRoutes.GET("/:id/available-slots", doctorHandler.GetAvailableSlots)
			doctorRoutes.PATCH("/:id/verify", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.VerifyDoctor)
		}

		specializationRoutes := private.Group("/specializations")
		{
			specializationRoutes.GET("", doctorHandler.GetSpecializations)
			specializationRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), doctorHandler.CreateSpecialization)
		}

		// Patient registry
		patientRoutes := private.Group("/patients")
		{
			patientRoutes.GET("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), patientHandler.GetPatients)
			patientRoutes.GET("/me", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.GetMyPatientProfile)
			patientRoutes.PUT("/me", middleware.RoleAuthMiddleware(models.RolePatient), patientHandler.UpdateMyPatientProfile)
			patientRoutes.GET("/:id", patientHandler.GetPatientByID) // authorization inside handler
			patientRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), patientHandler.UpdatePatient)
		}

		// Appointment scheduling
		appointmentRoutes := private.Group("/appointments")
		{
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment) // role logic inside handler
			appointmentRoutes.GET("", appointmentHandler.GetAppointments)
			appointmentRoutes.GET("/upcoming", appointmentHandler.UpcomingAppointments)
			appointmentRoutes.GET("/statistics", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), appointmentHandler.AppointmentStatistics)
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus)
			appointmentRoutes.PATCH("/:id/reschedule", appointmentHandler.RescheduleAppointment)
			appointmentRoutes.PATCH("/:id/cancel", appointmentHandler.CancelAppointment)
			appointmentRoutes.GET("/:id/history", appointmentHandler.GetAppointmentHistory)
			appointmentRoutes.POST("/:id/rating", middleware.RoleAuthMiddleware(models.RolePatient), appointmentHandler.RateAppointment)
			appointmentRoutes.GET("/:id/reminders", reminderHandler.GetRemindersForAppointment)
		}

		// Reminder scheduling
		reminderRoutes := private.Group("/reminders")
		{
			reminderRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff, models.RoleDoctor), reminderHandler.CreateReminder)
			reminderRoutes.GET("/pending", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), reminderHandler.GetPendingReminders)
			reminderRoutes.PATCH("/:id/sent", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), reminderHandler.MarkReminderSent)
			reminderRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleStaff), reminderHandler.DeleteReminder)
		}

		// Medical records ledger
		medicalRecordRoutes := private.Group("/medical-records")
		{
			medicalRecordRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreateMedicalRecord)
			medicalRecordRoutes.GET("/patient/:patientId", medicalRecordHandler.GetMedicalRecordsForPatient) // auth in handler
			medicalRecordRoutes.GET("/:id", medicalRecordHandler.GetMedicalRecordByID)
			medicalRecordRoutes.PUT("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.UpdateMedicalRecord)
			medicalRecordRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), medicalRecordHandler.DeleteMedicalRecord)
		}

		prescriptionRoutes := private.Group("/prescriptions")
		{
			prescriptionRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreatePrescription)
			prescriptionRoutes.GET("/patient/:patientId", medicalRecordHandler.GetPrescriptionsForPatient)
			prescriptionRoutes.POST("/:id/refill-request", middleware.RoleAuthMiddleware(models.RolePatient), medicalRecordHandler.RequestPrescriptionRefill)
		}

		labTestRoutes := private.Group("/lab-tests")
		{
			labTestRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.CreateLabTest)
			labTestRoutes.GET("/patient/:patientId", medicalRecordHandler.GetLabTestsForPatient)
			labTestRoutes.PATCH("/:id/result", middleware.RoleAuthMiddleware(models.RoleDoctor), medicalRecordHandler.UpdateLabTestResult)
		}

		vitalSignsRoutes := private.Group("/vital-signs")
		{
			vitalSignsRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleStaff), medicalRecordHandler.CreateVitalSigns)
			vitalSignsRoutes.GET("/patient/:patientId", medicalRecordHandler.GetVitalSignsForPatient)
		}

		allergyRoutes := private.Group("/allergies")
		{
			allergyRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleStaff), medicalRecordHandler.CreateAllergy)
			allergyRoutes.GET("/patient/:patientId", medicalRecordHandler.GetAllergiesForPatient)
			allergyRoutes.PATCH("/:id/deactivate", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleStaff), medicalRecordHandler.DeactivateAllergy)
		}
	}
}
