package appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/healseek/appointment-service/internal/db"
	"github.com/healseek/appointment-service/internal/querybuilder"
)

const (
	appointmentsTable = "appointments"
	usersTable        = "users"
	doctorsTable      = "doctors"
	patientsTable     = "patients"
)

var appointmentColumns = []string{
	"appointment_id", "appointment_time", "status", "doctor_id", "patient_id",
}

type PgRepository struct {
	h *db.Handle
}

func NewPgRepository(h *db.Handle) *PgRepository {
	return &PgRepository{h: h}
}

// Helpers

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.Time,
		&a.Status,
		&a.DoctorID,
		&a.PatientID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var u User

	err := row.Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Phone,
		&u.DateOfBirth,
		&u.Gender,
		&u.Role,
		&u.PasswordHash,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return &u, nil
}

func collectAppointments(rows pgx.Rows) ([]Appointment, error) {
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Interface methods

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id int64) (*Appointment, error) {
	sql, args, err := querybuilder.Select(appointmentsTable, appointmentColumns,
		querybuilder.Filter{"appointment_id": id})
	if err != nil {
		return nil, err
	}
	return scanAppointment(r.h.QueryRow(ctx, sql, args...))
}

func (r *PgRepository) ListAppointments(ctx context.Context) ([]Appointment, error) {
	rows, err := r.h.Query(ctx, `
		SELECT appointment_id, appointment_time, status, doctor_id, patient_id
		FROM appointments
		ORDER BY appointment_time
	`)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID int64) ([]Appointment, error) {
	sql, args, err := querybuilder.Select(appointmentsTable, appointmentColumns,
		querybuilder.Filter{"patient_id": patientID})
	if err != nil {
		return nil, err
	}
	rows, err := r.h.Query(ctx, sql+" ORDER BY appointment_time", args...)
	if err != nil {
		return nil, err
	}
	return collectAppointments(rows)
}

// ListAppointmentsByDoctor enriches each row with the patient's public
// profile in a single join instead of a per-row lookup.
func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID int64) ([]DoctorAppointment, error) {
	rows, err := r.h.Query(ctx, `
		SELECT a.appointment_id, a.appointment_time, a.status, a.doctor_id, a.patient_id,
		       u.name, u.email, u.phone_number, u.date_of_birth, u.gender
		FROM appointments a
		JOIN users u ON u.user_id = a.patient_id
		WHERE a.doctor_id = $1
		ORDER BY a.appointment_time
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []DoctorAppointment
	for rows.Next() {
		var da DoctorAppointment
		err := rows.Scan(
			&da.ID,
			&da.Time,
			&da.Status,
			&da.DoctorID,
			&da.PatientID,
			&da.Patient.Name,
			&da.Patient.Email,
			&da.Patient.Phone,
			&da.Patient.DateOfBirth,
			&da.Patient.Gender,
		)
		if err != nil {
			return nil, err
		}
		result = append(result, da)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a Appointment) (*Appointment, error) {
	sql, args, err := querybuilder.InsertReturning(appointmentsTable,
		querybuilder.Fields{
			"appointment_time": a.Time,
			"status":           a.Status,
			"doctor_id":        a.DoctorID,
			"patient_id":       a.PatientID,
		},
		appointmentColumns,
	)
	if err != nil {
		return nil, err
	}

	inserted, err := scanAppointment(r.h.QueryRow(ctx, sql, args...))
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return inserted, nil
}

func (r *PgRepository) UpdateAppointment(ctx context.Context, id int64, patch Patch) (*Appointment, error) {
	set := querybuilder.Fields{}
	if patch.Time != nil {
		set["appointment_time"] = *patch.Time
	}
	if patch.Status != nil {
		set["status"] = *patch.Status
	}

	sql, args, err := querybuilder.UpdateReturning(appointmentsTable, set,
		querybuilder.Filter{"appointment_id": id}, appointmentColumns)
	if err != nil {
		return nil, err
	}

	// RETURNING yields no row when the id does not exist
	return scanAppointment(r.h.QueryRow(ctx, sql, args...))
}

func (r *PgRepository) DeleteAppointment(ctx context.Context, id int64) error {
	sql, args, err := querybuilder.Delete(appointmentsTable,
		querybuilder.Filter{"appointment_id": id})
	if err != nil {
		return err
	}

	tag, err := r.h.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) GetUserByID(ctx context.Context, id int64) (*User, error) {
	sql, args, err := querybuilder.Select(usersTable,
		[]string{"user_id", "name", "email", "phone_number", "date_of_birth", "gender", "role", "password"},
		querybuilder.Filter{"user_id": id})
	if err != nil {
		return nil, err
	}
	return scanUser(r.h.QueryRow(ctx, sql, args...))
}

func (r *PgRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	sql, args, err := querybuilder.Select(usersTable,
		[]string{"user_id", "name", "email", "phone_number", "date_of_birth", "gender", "role", "password"},
		querybuilder.Filter{"email": email})
	if err != nil {
		return nil, err
	}
	return scanUser(r.h.QueryRow(ctx, sql, args...))
}

func (r *PgRepository) GetDoctorByUserID(ctx context.Context, userID int64) (*Doctor, error) {
	sql, args, err := querybuilder.Select(doctorsTable,
		[]string{"user_id", "speciality", "experience", "max_appointments_in_day", "appointment_duration_minutes"},
		querybuilder.Filter{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var d Doctor
	err = r.h.QueryRow(ctx, sql, args...).Scan(
		&d.UserID,
		&d.Speciality,
		&d.Experience,
		&d.MaxAppointmentsInDay,
		&d.AppointmentDurationMinutes,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	return &d, nil
}

func (r *PgRepository) GetPatientByUserID(ctx context.Context, userID int64) (*Patient, error) {
	sql, args, err := querybuilder.Select(patientsTable, []string{"user_id"},
		querybuilder.Filter{"user_id": userID})
	if err != nil {
		return nil, err
	}

	var p Patient
	if err := r.h.QueryRow(ctx, sql, args...).Scan(&p.UserID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	return &p, nil
}
