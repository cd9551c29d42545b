package main

import (
	"context"
	"testing"
)

func TestSeedAppointmentsRequiresParticipants(t *testing.T) {
	// a nil tx proves the guard returns before touching the database
	cases := []struct {
		name     string
		doctors  []int64
		patients []int64
	}{
		{"no doctors", nil, []int64{9}},
		{"no patients", []int64{5}, nil},
		{"neither", nil, nil},
	}

	for _, tc := range cases {
		n, err := seedAppointments(context.Background(), nil, 10, tc.doctors, tc.patients)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if n != 0 {
			t.Errorf("%s: seeded %d appointments, want 0", tc.name, n)
		}
	}
}

func TestSeedAppointmentsZeroCount(t *testing.T) {
	n, err := seedAppointments(context.Background(), nil, 0, []int64{5}, []int64{9})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("seeded %d appointments, want 0", n)
	}
}
