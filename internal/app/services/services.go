// Package services contains the application's business logic. Services
// authorize the acting principal, orchestrate repositories, and translate
// storage outcomes into domain errors the HTTP boundary can map to status
// codes.
package services

import (
	"time"

	"github.com/lsa-mis/student-visit-api/internal/app/repositories"
	"github.com/lsa-mis/student-visit-api/internal/pkg/auth"
)

// Services holds all the service instances
type Services struct {
	AuthService          *AuthService
	BookingService       *BookingService
	DepartmentService    *DepartmentService
	ProgramService       *ProgramService
	VIPService           *VIPService
	EventService         *EventService
	QuestionnaireService *QuestionnaireService
	ReportService        *ReportService
}

// NewServices initializes all services
func NewServices(repos *repositories.Repositories, jwtService *auth.JWTService, refreshExp time.Duration) *Services {
	return &Services{
		AuthService: NewAuthService(
			repos.UserRepository,
			repos.TokenRepository,
			jwtService,
			refreshExp,
		),
		BookingService: NewBookingService(
			repos.AppointmentRepository,
			repos.EnrollmentRepository,
			repos.UserRepository,
		),
		DepartmentService: NewDepartmentService(repos.DepartmentRepository),
		ProgramService: NewProgramService(
			repos.ProgramRepository,
			repos.EnrollmentRepository,
			repos.UserRepository,
		),
		VIPService: NewVIPService(
			repos.VIPRepository,
			repos.ProgramRepository,
			repos.AppointmentRepository,
			repos.EnrollmentRepository,
		),
		EventService: NewEventService(
			repos.EventRepository,
			repos.ProgramRepository,
			repos.EnrollmentRepository,
		),
		QuestionnaireService: NewQuestionnaireService(
			repos.QuestionnaireRepository,
			repos.ProgramRepository,
			repos.EnrollmentRepository,
		),
		ReportService: NewReportService(
			repos.AppointmentRepository,
			repos.ProgramRepository,
			repos.EnrollmentRepository,
		),
	}
}
