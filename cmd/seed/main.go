package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/healseek/appointment-service/internal/auth"
	"github.com/healseek/appointment-service/internal/config"
	"github.com/healseek/appointment-service/internal/db"
)

// seed applies the schema and fills the database with fake users,
// doctors, patients and appointments for local development. Every
// seeded account logs in with the same password.
const seedPassword = "password123"

func main() {
	doctors := flag.Int("doctors", 10, "number of doctors to create")
	patients := flag.Int("patients", 50, "number of patients to create")
	appointments := flag.Int("appointments", 200, "number of appointments to create")
	schemaPath := flag.String("schema", "schema.sql", "path to the schema file")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	handle, err := db.Connect(ctx, cfg.PostgresDSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer handle.Close()

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatal().Err(err).Msg("schema read failed")
	}
	if _, err := handle.Exec(ctx, string(schema)); err != nil {
		log.Fatal().Err(err).Msg("schema apply failed")
	}
	log.Info().Msg("schema applied")

	hash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatal().Err(err).Msg("password hash failed")
	}

	tx, err := handle.Pool().Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("begin tx failed")
	}
	defer tx.Rollback(ctx)

	adminID, err := insertUser(ctx, tx, "admin", "admin@healseek.test", hash)
	if err != nil {
		log.Fatal().Err(err).Msg("seed admin failed")
	}
	if _, err := tx.Exec(ctx, `INSERT INTO admins (user_id) VALUES ($1)`, adminID); err != nil {
		log.Fatal().Err(err).Msg("seed admin failed")
	}

	doctorIDs := make([]int64, 0, *doctors)
	for i := 0; i < *doctors; i++ {
		id, err := insertUser(ctx, tx, "doctor", fmt.Sprintf("doctor%d@healseek.test", i+1), hash)
		if err != nil {
			log.Fatal().Err(err).Msg("seed doctor failed")
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO doctors (user_id, speciality, experience, max_appointments_in_day, appointment_duration_minutes)
			VALUES ($1, $2, $3, $4, $5)`,
			id, gofakeit.JobTitle(), gofakeit.Number(1, 30), gofakeit.Number(5, 20), 30)
		if err != nil {
			log.Fatal().Err(err).Msg("seed doctor failed")
		}
		doctorIDs = append(doctorIDs, id)
	}

	patientIDs := make([]int64, 0, *patients)
	for i := 0; i < *patients; i++ {
		id, err := insertUser(ctx, tx, "patient", fmt.Sprintf("patient%d@healseek.test", i+1), hash)
		if err != nil {
			log.Fatal().Err(err).Msg("seed patient failed")
		}
		if _, err := tx.Exec(ctx, `INSERT INTO patients (user_id) VALUES ($1)`, id); err != nil {
			log.Fatal().Err(err).Msg("seed patient failed")
		}
		patientIDs = append(patientIDs, id)
	}

	seeded, err := seedAppointments(ctx, tx, *appointments, doctorIDs, patientIDs)
	if err != nil {
		log.Fatal().Err(err).Msg("seed appointment failed")
	}
	if seeded < *appointments {
		log.Warn().Msg("appointments skipped, need at least one doctor and one patient")
	}

	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit failed")
	}

	log.Info().
		Int("doctors", *doctors).
		Int("patients", *patients).
		Int("appointments", seeded).
		Str("password", seedPassword).
		Msg("seed complete")
}

// seedAppointments inserts n rows spread over the given participants.
// Nothing is inserted when either id list is empty.
func seedAppointments(ctx context.Context, tx pgx.Tx, n int, doctorIDs, patientIDs []int64) (int, error) {
	if n <= 0 || len(doctorIDs) == 0 || len(patientIDs) == 0 {
		return 0, nil
	}

	statuses := []string{"pending", "completed", "rejected", "cancelled"}
	for i := 0; i < n; i++ {
		when := time.Now().UTC().Add(time.Duration(gofakeit.Number(1, 24*30)) * time.Hour)
		_, err := tx.Exec(ctx, `
			INSERT INTO appointments (appointment_time, status, doctor_id, patient_id)
			VALUES ($1, $2, $3, $4)`,
			when,
			statuses[gofakeit.Number(0, len(statuses)-1)],
			doctorIDs[gofakeit.Number(0, len(doctorIDs)-1)],
			patientIDs[gofakeit.Number(0, len(patientIDs)-1)],
		)
		if err != nil {
			return i, err
		}
	}
	return n, nil
}

func insertUser(ctx context.Context, tx pgx.Tx, role, email, hash string) (int64, error) {
	var id int64
	err := tx.QueryRow(ctx, `
		INSERT INTO users (name, email, phone_number, date_of_birth, gender, role, password)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING user_id`,
		gofakeit.Name(),
		email,
		gofakeit.Phone(),
		gofakeit.DateRange(
			time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2005, 12, 31, 0, 0, 0, 0, time.UTC),
		),
		gofakeit.RandomString([]string{"male", "female", "other"}),
		role,
		hash,
	).Scan(&id)
	return id, err
}
