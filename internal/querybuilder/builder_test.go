package querybuilder

import (
	"errors"
	"reflect"
	"testing"
)

func TestInsertReturning(t *testing.T) {
	sql, args, err := InsertReturning("appointments",
		Fields{
			"status":           "pending",
			"appointment_time": "2099-01-01T10:00:00Z",
			"doctor_id":        5,
			"patient_id":       9,
		},
		[]string{"appointment_id", "appointment_time", "status", "doctor_id", "patient_id"},
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "INSERT INTO appointments (appointment_time, doctor_id, patient_id, status) " +
		"VALUES ($1, $2, $3, $4) " +
		"RETURNING appointment_id, appointment_time, status, doctor_id, patient_id"
	if sql != want {
		t.Errorf("sql mismatch:\n got  %s\n want %s", sql, want)
	}

	// args follow sorted column order
	wantArgs := []any{"2099-01-01T10:00:00Z", 5, 9, "pending"}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Errorf("args mismatch: got %v, want %v", args, wantArgs)
	}
}

func TestSelect(t *testing.T) {
	sql, args, err := Select("users", nil, Filter{"user_id": 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "SELECT * FROM users WHERE user_id = $1"; sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{9}) {
		t.Errorf("args: got %v", args)
	}
}

func TestSelectMultipleConditions(t *testing.T) {
	sql, args, err := Select("appointments",
		[]string{"appointment_id", "status"},
		Filter{"patient_id": 9, "doctor_id": 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "SELECT appointment_id, status FROM appointments WHERE doctor_id = $1 AND patient_id = $2"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{5, 9}) {
		t.Errorf("args: got %v", args)
	}
}

func TestUpdateFilterIsExplicit(t *testing.T) {
	sql, args, err := UpdateReturning("appointments",
		Fields{"status": "completed"},
		Filter{"appointment_id": 3}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "UPDATE appointments SET status = $1 WHERE appointment_id = $2"
	if sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{"completed", 3}) {
		t.Errorf("args: got %v", args)
	}
}

func TestUpdateRequiresFilter(t *testing.T) {
	_, _, err := UpdateReturning("appointments", Fields{"status": "completed"}, nil, nil)
	if !errors.Is(err, ErrNoFilter) {
		t.Errorf("got %v, want ErrNoFilter", err)
	}
}

func TestDelete(t *testing.T) {
	sql, args, err := Delete("appointments", Filter{"appointment_id": 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "DELETE FROM appointments WHERE appointment_id = $1"; sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{3}) {
		t.Errorf("args: got %v", args)
	}
}

func TestRejectsHostileIdentifiers(t *testing.T) {
	hostile := []string{
		"status; DROP TABLE appointments--",
		`status" = '' OR "1`,
		"Status",
		"",
	}
	for _, name := range hostile {
		if _, _, err := Select("appointments", nil, Filter{name: 1}); err == nil {
			t.Errorf("identifier %q accepted", name)
		}
	}

	if _, _, err := InsertReturning("appointments; --", Fields{"status": "x"}, nil); err == nil {
		t.Error("hostile table name accepted")
	}
}

func TestValuesNeverAppearInSQL(t *testing.T) {
	sql, _, err := InsertReturning("users", Fields{"name": "Robert'); DROP TABLE users;--"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "INSERT INTO users (name) VALUES ($1)"; sql != want {
		t.Errorf("got %q, want %q", sql, want)
	}
}
