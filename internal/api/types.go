package api

import (
	"github.com/healseek/appointment-service/internal/appointment"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type CreateAppointmentRequest struct {
	AppointmentTime string `json:"appointment_time"`
	Status          string `json:"status"`
	DoctorID        int64  `json:"doctor_id"`
	PatientID       int64  `json:"patient_id"`
}

type UpdateAppointmentRequest struct {
	AppointmentTime *string `json:"appointment_time"`
	Status          *string `json:"status"`
}

type AppointmentResponse struct {
	ID        int64  `json:"appointment_id"`
	Time      string `json:"appointment_time"`
	Status    string `json:"status"`
	DoctorID  int64  `json:"doctor_id"`
	PatientID int64  `json:"patient_id"`
}

type PatientProfileResponse struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       *string `json:"phone"`
	DateOfBirth *string `json:"date_of_birth"`
	Gender      *string `json:"gender"`
}

type DoctorAppointmentResponse struct {
	AppointmentResponse
	Patient PatientProfileResponse `json:"patient"`
}

type DeleteResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		Time:      a.Time.UTC().Format(appointment.WireTimeLayout),
		Status:    string(a.Status),
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
	}
}

func toDoctorAppointmentResponse(a appointment.DoctorAppointment) DoctorAppointmentResponse {
	resp := DoctorAppointmentResponse{
		AppointmentResponse: toAppointmentResponse(a.Appointment),
		Patient: PatientProfileResponse{
			Name:   a.Patient.Name,
			Email:  a.Patient.Email,
			Phone:  a.Patient.Phone,
			Gender: a.Patient.Gender,
		},
	}
	if a.Patient.DateOfBirth != nil {
		dob := a.Patient.DateOfBirth.Format("2006-01-02")
		resp.Patient.DateOfBirth = &dob
	}
	return resp
}
