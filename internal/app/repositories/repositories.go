package repositories

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository          *UserRepository
	TokenRepository         *TokenRepository
	DepartmentRepository    *DepartmentRepository
	ProgramRepository       *ProgramRepository
	VIPRepository           *VIPRepository
	AppointmentRepository   *AppointmentRepository
	EnrollmentRepository    *EnrollmentRepository
	QuestionnaireRepository *QuestionnaireRepository
	EventRepository         *EventRepository
	OutboxRepository        *OutboxRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	outbox := NewOutboxRepository(db)
	return &Repositories{
		UserRepository:          NewUserRepository(db),
		TokenRepository:         NewTokenRepository(db),
		DepartmentRepository:    NewDepartmentRepository(db),
		ProgramRepository:       NewProgramRepository(db),
		VIPRepository:           NewVIPRepository(db),
		AppointmentRepository:   NewAppointmentRepository(db, outbox),
		EnrollmentRepository:    NewEnrollmentRepository(db),
		QuestionnaireRepository: NewQuestionnaireRepository(db),
		EventRepository:         NewEventRepository(db),
		OutboxRepository:        outbox,
	}
}
