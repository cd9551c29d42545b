package appointment

import (
	"context"
	"errors"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
)

// Repository contains all DB interactions needed by the service. It is
// the sole writer of appointment rows; an absent row on the list calls is
// an empty slice, not an error.
type Repository interface {
	GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]Appointment, error)
	// ListAppointmentsByDoctor joins each row with the patient's public
	// profile.
	ListAppointmentsByDoctor(ctx context.Context, doctorID int64) ([]DoctorAppointment, error)

	InsertAppointment(ctx context.Context, a Appointment) (*Appointment, error)
	UpdateAppointment(ctx context.Context, id int64, patch Patch) (*Appointment, error)
	DeleteAppointment(ctx context.Context, id int64) error

	// Related lookups
	GetUserByID(ctx context.Context, id int64) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error)
	GetPatientByUserID(ctx context.Context, userID int64) (*Patient, error)
}
