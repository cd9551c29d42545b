package appointment

import "time"

// WireTimeLayout is the fixed wire format for appointment times: ISO-8601
// with fractional seconds and a literal UTC Z suffix.
const WireTimeLayout = "2006-01-02T15:04:05.000Z"

type Status string

// Known status values. The column itself is free text: callers push other
// values through updates, and notification wording treats everything
// except completed as a rejection.
const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

type Role string

const (
	RolePatient Role = "patient"
	RoleDoctor  Role = "doctor"
	RoleAdmin   Role = "admin"
)

type Appointment struct {
	ID        int64
	Time      time.Time
	Status    Status
	DoctorID  int64
	PatientID int64
}

// PatientProfile is the public slice of a patient's user row attached to
// doctor-facing listings.
type PatientProfile struct {
	Name        string
	Email       string
	Phone       *string
	DateOfBirth *time.Time
	Gender      *string
}

// DoctorAppointment is an appointment enriched with the patient's profile.
type DoctorAppointment struct {
	Appointment
	Patient PatientProfile
}

type User struct {
	ID           int64
	Name         string
	Email        string
	Phone        *string
	DateOfBirth  *time.Time
	Gender       *string
	Role         Role
	PasswordHash string
}

// Doctor is the role extension row for a doctor user.
type Doctor struct {
	UserID                     int64
	Speciality                 *string
	Experience                 *int
	MaxAppointmentsInDay       *int
	AppointmentDurationMinutes *int
}

// Patient is the role extension row for a patient user.
type Patient struct {
	UserID int64
}

// Principal is the authenticated caller, resolved by the HTTP layer and
// checked again by the service.
type Principal struct {
	UserID int64
	Role   Role
}

// Patch is a partial appointment update; nil fields are left untouched.
type Patch struct {
	Time   *time.Time
	Status *Status
}
