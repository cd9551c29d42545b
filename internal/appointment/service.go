package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/healseek/appointment-service/internal/apperr"
)

// Notifier delivers appointment emails. Implementations are
// fire-and-forget: delivery problems are their own concern and never
// surface into the request path.
type Notifier interface {
	Notify(ctx context.Context, to, subject, body, subheading string)
}

// Notification wording. Any status other than completed reads as a
// rejection; the status space is wider than the wording on purpose.
const (
	requestSubject    = "Appointment Request"
	requestBody       = "You have a new appointment request, check your appointments to accept or reject it"
	requestSubheading = "Appointment Request"

	acceptedSubject = "Appointment Accepted"
	acceptedBody    = "Your appointment has been accepted"
	rejectedSubject = "Appointment Rejected"
	rejectedBody    = "Your appointment has been rejected"
)

type Service struct {
	repo     Repository
	notifier Notifier
	log      zerolog.Logger
	now      func() time.Time
}

func NewService(repo Repository, notifier Notifier, log zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		now:      time.Now,
	}
}

// ListAll returns every appointment. Admin only; an empty table is
// reported as not found, not as an empty success.
func (s *Service) ListAll(ctx context.Context, p Principal) ([]Appointment, error) {
	if p.Role != RoleAdmin {
		return nil, apperr.New(apperr.Authorization, "admin access required")
	}

	appts, err := s.repo.ListAppointments(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error while fetching appointments", err)
	}
	if len(appts) == 0 {
		return nil, apperr.New(apperr.NotFound, "no appointments found")
	}
	return appts, nil
}

// GetByID returns one appointment. The caller must be an admin, the
// assigned doctor, or the assigned patient.
func (s *Service) GetByID(ctx context.Context, p Principal, id int64) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.New(apperr.NotFound, "no appointment found")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while fetching appointment", err)
	}

	if p.Role != RoleAdmin && p.UserID != appt.DoctorID && p.UserID != appt.PatientID {
		return nil, apperr.New(apperr.Authorization, "you are not allowed to see this appointment")
	}

	return appt, nil
}

// ListByPatient returns the caller's own appointments.
func (s *Service) ListByPatient(ctx context.Context, p Principal) ([]Appointment, error) {
	if p.Role != RolePatient {
		return nil, apperr.New(apperr.Authorization, "patient access required")
	}

	appts, err := s.repo.ListAppointmentsByPatient(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error while fetching appointments", err)
	}
	if len(appts) == 0 {
		return nil, apperr.New(apperr.NotFound, "no appointments found")
	}
	return appts, nil
}

// ListByDoctor returns the caller's own appointments, each enriched with
// the patient's public profile.
func (s *Service) ListByDoctor(ctx context.Context, p Principal) ([]DoctorAppointment, error) {
	if p.Role != RoleDoctor {
		return nil, apperr.New(apperr.Authorization, "doctor access required")
	}

	appts, err := s.repo.ListAppointmentsByDoctor(ctx, p.UserID)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error while fetching appointments", err)
	}
	if len(appts) == 0 {
		return nil, apperr.New(apperr.NotFound, "no appointments found")
	}
	return appts, nil
}

type CreateInput struct {
	AppointmentTime string // wire format, WireTimeLayout
	Status          Status
	DoctorID        int64
	PatientID       int64
}

// Create validates the referenced doctor and patient, checks the time is
// strictly in the future, inserts the row, and queues an
// appointment-request email to the doctor.
func (s *Service) Create(ctx context.Context, p Principal, in CreateInput) (*Appointment, error) {
	if p.Role != RoleDoctor && p.Role != RolePatient {
		return nil, apperr.New(apperr.Authorization, "doctor or patient access required")
	}

	if _, err := s.repo.GetDoctorByUserID(ctx, in.DoctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, apperr.New(apperr.NotFound, "doctor id is wrong")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while checking doctor or patient id", err)
	}
	if _, err := s.repo.GetPatientByUserID(ctx, in.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, apperr.New(apperr.NotFound, "patient id is wrong")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while checking doctor or patient id", err)
	}

	t, err := time.Parse(WireTimeLayout, in.AppointmentTime)
	if err != nil {
		return nil, apperr.Newf(apperr.Validation,
			"appointment_time must match %s", WireTimeLayout)
	}
	if !t.After(s.now().UTC()) {
		return nil, apperr.New(apperr.Validation, "appointment time should be in future")
	}

	status := in.Status
	if status == "" {
		status = StatusPending
	}

	created, err := s.repo.InsertAppointment(ctx, Appointment{
		Time:      t,
		Status:    status,
		DoctorID:  in.DoctorID,
		PatientID: in.PatientID,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "error while creating appointment", err)
	}

	s.notifyUser(ctx, in.DoctorID, requestSubject, requestBody, requestSubheading)

	return created, nil
}

type UpdateInput struct {
	AppointmentTime *string // wire format, WireTimeLayout
	Status          *Status
}

// Update applies a partial field set to an existing appointment. When the
// set includes a status, the patient is notified: accepted wording iff
// the new status is completed, rejected wording otherwise.
func (s *Service) Update(ctx context.Context, p Principal, id int64, in UpdateInput) (*Appointment, error) {
	if p.Role != RoleDoctor {
		return nil, apperr.New(apperr.Authorization, "doctor access required")
	}
	if in.AppointmentTime == nil && in.Status == nil {
		return nil, apperr.New(apperr.Validation, "no fields to update")
	}

	existing, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.New(apperr.NotFound, "no appointment found")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while fetching appointment", err)
	}

	var patch Patch
	if in.AppointmentTime != nil {
		t, err := time.Parse(WireTimeLayout, *in.AppointmentTime)
		if err != nil {
			return nil, apperr.Newf(apperr.Validation,
				"appointment_time must match %s", WireTimeLayout)
		}
		patch.Time = &t
	}
	patch.Status = in.Status

	updated, err := s.repo.UpdateAppointment(ctx, id, patch)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, apperr.New(apperr.NotFound, "no appointment found")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while updating appointment", err)
	}

	if in.Status != nil {
		subject, body := rejectedSubject, rejectedBody
		if *in.Status == StatusCompleted {
			subject, body = acceptedSubject, acceptedBody
		}
		s.notifyUser(ctx, existing.PatientID, subject, body, "")
	}

	return updated, nil
}

// Delete removes an appointment. Only the assigned doctor may delete.
func (s *Service) Delete(ctx context.Context, p Principal, id int64) error {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return apperr.New(apperr.NotFound, "no appointment found")
		}
		return apperr.Wrap(apperr.Internal, "error while fetching appointment", err)
	}

	if p.UserID != appt.DoctorID {
		return apperr.New(apperr.Authorization, "you are not allowed to delete this appointment")
	}

	if err := s.repo.DeleteAppointment(ctx, id); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return apperr.New(apperr.NotFound, "no appointment found")
		}
		return apperr.Wrap(apperr.Internal, "error while deleting appointment", err)
	}

	return nil
}

// UserByEmail resolves a login identity. The HTTP layer owns credential
// verification; this only fetches the row.
func (s *Service) UserByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperr.New(apperr.NotFound, "no user found")
		}
		return nil, apperr.Wrap(apperr.Internal, "error while fetching user", err)
	}
	return user, nil
}

// notifyUser looks up the recipient's email and hands the message to the
// notifier. Failures are logged, never surfaced: mail is a side effect,
// not part of the operation's contract.
func (s *Service) notifyUser(ctx context.Context, userID int64, subject, body, subheading string) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		s.log.Error().Err(err).Int64("user_id", userID).
			Str("subject", subject).Msg("recipient lookup failed, notification dropped")
		return
	}
	s.notifier.Notify(ctx, user.Email, subject, body, subheading)
}
