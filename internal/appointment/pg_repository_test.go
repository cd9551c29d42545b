package appointment

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/healseek/appointment-service/internal/db"
)

// setupRepo connects to the database named by DATABASE_URL and applies
// the schema. Tests are skipped when the variable is unset.
func setupRepo(t *testing.T) *PgRepository {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set, skipping repository integration tests")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	handle, err := db.Connect(ctx, dsn, zerolog.Nop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(handle.Close)

	schema, err := os.ReadFile("../../schema.sql")
	if err != nil {
		t.Fatalf("read schema: %v", err)
	}
	if _, err := handle.Exec(ctx, string(schema)); err != nil {
		t.Fatalf("apply schema: %v", err)
	}

	return NewPgRepository(handle)
}

// seedPair stores a doctor and a patient and returns their user ids. Rows
// are removed when the test finishes.
func seedPair(t *testing.T, repo *PgRepository) (doctorID, patientID int64) {
	t.Helper()
	ctx := context.Background()

	suffix := time.Now().UnixNano()
	insert := func(role string) int64 {
		var id int64
		err := repo.h.QueryRow(ctx, `
			INSERT INTO users (name, email, role, password)
			VALUES ($1, $2, $3, 'x')
			RETURNING user_id`,
			fmt.Sprintf("test %s", role),
			fmt.Sprintf("%s-%d@repo.test", role, suffix),
			role,
		).Scan(&id)
		if err != nil {
			t.Fatalf("insert %s user: %v", role, err)
		}
		return id
	}

	doctorID = insert("doctor")
	if _, err := repo.h.Exec(ctx, `INSERT INTO doctors (user_id) VALUES ($1)`, doctorID); err != nil {
		t.Fatalf("insert doctor row: %v", err)
	}
	patientID = insert("patient")
	if _, err := repo.h.Exec(ctx, `INSERT INTO patients (user_id) VALUES ($1)`, patientID); err != nil {
		t.Fatalf("insert patient row: %v", err)
	}

	t.Cleanup(func() {
		repo.h.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, doctorID)
		repo.h.Exec(ctx, `DELETE FROM doctors WHERE user_id = $1`, doctorID)
		repo.h.Exec(ctx, `DELETE FROM patients WHERE user_id = $1`, patientID)
		repo.h.Exec(ctx, `DELETE FROM users WHERE user_id IN ($1, $2)`, doctorID, patientID)
	})

	return doctorID, patientID
}

func TestPgRepositoryAppointmentLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	doctorID, patientID := seedPair(t, repo)

	when := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Millisecond)
	created, err := repo.InsertAppointment(ctx, Appointment{
		Time:      when,
		Status:    StatusPending,
		DoctorID:  doctorID,
		PatientID: patientID,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("no server-generated id returned")
	}
	if !created.Time.Equal(when) {
		t.Errorf("stored time %s, want %s", created.Time, when)
	}

	fetched, err := repo.GetAppointmentByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.DoctorID != doctorID || fetched.PatientID != patientID {
		t.Errorf("references mismatch: %+v", fetched)
	}

	status := StatusCompleted
	updated, err := repo.UpdateAppointment(ctx, created.ID, Patch{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != StatusCompleted {
		t.Errorf("status after update: %q", updated.Status)
	}

	byDoctor, err := repo.ListAppointmentsByDoctor(ctx, doctorID)
	if err != nil {
		t.Fatalf("list by doctor: %v", err)
	}
	if len(byDoctor) != 1 || byDoctor[0].Patient.Email == "" {
		t.Errorf("doctor listing not enriched: %+v", byDoctor)
	}

	if err := repo.DeleteAppointment(ctx, created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetAppointmentByID(ctx, created.ID); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("after delete: got %v, want ErrAppointmentNotFound", err)
	}
}

func TestPgRepositoryMissingRows(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	if _, err := repo.GetAppointmentByID(ctx, -1); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("get missing: got %v", err)
	}
	status := StatusCompleted
	if _, err := repo.UpdateAppointment(ctx, -1, Patch{Status: &status}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("update missing: got %v", err)
	}
	if err := repo.DeleteAppointment(ctx, -1); !errors.Is(err, ErrAppointmentNotFound) {
		t.Errorf("delete missing: got %v", err)
	}
	if _, err := repo.GetDoctorByUserID(ctx, -1); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("missing doctor: got %v", err)
	}
	if _, err := repo.GetPatientByUserID(ctx, -1); !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("missing patient: got %v", err)
	}
	if _, err := repo.GetUserByEmail(ctx, "nobody@repo.test"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user: got %v", err)
	}
}
