// Package routes wires controllers onto the HTTP surface. Role guards run at
// the route level; department and ownership scoping runs inside services.
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/lsa-mis/student-visit-api/internal/app/controllers"
	"github.com/lsa-mis/student-visit-api/internal/app/models"
	"github.com/lsa-mis/student-visit-api/internal/middleware"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	appointmentController *controllers.AppointmentController,
	departmentController *controllers.DepartmentController,
	programController *controllers.ProgramController,
	vipController *controllers.VIPController,
	questionnaireController *controllers.QuestionnaireController,
	eventController *controllers.EventController,
	reportController *controllers.ReportController,
	authMiddleware *middleware.AuthMiddleware,
) {
	v1 := router.Group("/api/v1")

	// Public auth routes
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	authenticated.POST("/auth/logout", authController.Logout)

	adminOnly := authMiddleware.RequireRoles(models.RoleDepartmentAdmin, models.RoleSuperAdmin)
	superAdminOnly := authMiddleware.RequireRoles(models.RoleSuperAdmin)
	studentOnly := authMiddleware.RequireRoles(models.RoleStudent)

	// Departments: reads for admins, writes for super admins
	departments := authenticated.Group("/departments")
	{
		departments.GET("", superAdminOnly, departmentController.List)
		departments.POST("", superAdminOnly, departmentController.Create)
		departments.GET("/:id", adminOnly, departmentController.Get)
		departments.PUT("/:id", superAdminOnly, departmentController.Update)
		departments.DELETE("/:id", superAdminOnly, departmentController.Delete)
		departments.GET("/:id/programs", adminOnly, programController.ListForDepartment)
	}

	// Programs
	programs := authenticated.Group("/programs")
	{
		programs.POST("", adminOnly, programController.Create)
		programs.GET("/mine", studentOnly, programController.ListMine)
		programs.GET("/:id", programController.Get)
		programs.PUT("/:id", adminOnly, programController.Update)
		programs.DELETE("/:id", adminOnly, programController.Delete)

		programs.GET("/:id/enrollments", adminOnly, programController.ListEnrollments)
		programs.POST("/:id/enrollments", adminOnly, programController.Enroll)
		programs.DELETE("/:id/enrollments/:userId", adminOnly, programController.Unenroll)

		programs.GET("/:id/vips", vipController.ListForProgram)
		programs.GET("/:id/events", eventController.ListForProgram)
		programs.GET("/:id/questionnaires", questionnaireController.ListForProgram)

		programs.GET("/:id/appointments/available", studentOnly, appointmentController.ListAvailable)
		programs.GET("/:id/appointments/mine", studentOnly, appointmentController.ListMine)
	}

	// Appointment booking
	appointments := authenticated.Group("/appointments")
	{
		appointments.POST("/:id/select", studentOnly, appointmentController.Select)
		appointments.DELETE("/:id", studentOnly, appointmentController.Cancel)
	}

	// VIP management
	vips := authenticated.Group("/vips")
	vips.Use(adminOnly)
	{
		vips.POST("", vipController.Create)
		vips.PUT("/:id", vipController.Update)
		vips.DELETE("/:id", vipController.Delete)
		vips.GET("/:id/slots", vipController.ListSlots)
		vips.POST("/:id/slots", vipController.CreateSlots)
	}
	authenticated.DELETE("/slots/:id", adminOnly, vipController.DeleteSlot)

	// Questionnaires
	questionnaires := authenticated.Group("/questionnaires")
	{
		questionnaires.POST("", adminOnly, questionnaireController.Create)
		questionnaires.GET("/:id", questionnaireController.Get)
		questionnaires.PUT("/:id", adminOnly, questionnaireController.Update)
		questionnaires.DELETE("/:id", adminOnly, questionnaireController.Delete)
		questionnaires.PUT("/:id/answers", studentOnly, questionnaireController.SubmitAnswers)
	}

	// Calendar events
	events := authenticated.Group("/events")
	events.Use(adminOnly)
	{
		events.POST("", eventController.Create)
		events.PUT("/:id", eventController.Update)
		events.DELETE("/:id", eventController.Delete)
	}

	// Reports
	reports := authenticated.Group("/reports")
	reports.Use(adminOnly)
	{
		reports.GET("/programs/:programId/appointments.csv", reportController.ScheduleCSV)
		reports.GET("/programs/:programId/students.csv", reportController.RosterCSV)
	}
}
