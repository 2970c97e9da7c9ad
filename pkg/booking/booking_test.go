package booking

import (
	"strings"
	"testing"
	"time"

	"github.com/reservodojo/trainer/pkg/property"
)

func testModel() *property.Model {
	m := property.DefaultModel()
	m.Guests = []property.Guest{
		{FullName: "Anna Keller", Adult: true},
		{FullName: "Peter Okafor", Adult: true},
		{FullName: "Jonas Keller", Adult: false},
	}
	m.RoomCategories = []property.RoomCategory{
		{ID: "single", Name: "Single Room", MinGuests: 1, MaxGuests: 1},
		{ID: "double", Name: "Double Room", MinGuests: 1, MaxGuests: 2, Extras: []string{"balcony"}},
	}
	m.ExtraServices = []property.ExtraService{
		{ID: "parking", Label: "parking"},
	}
	m.BreakfastTypes = []string{"Continental", "Vegan"}
	m.BreakfastPolicy.Enabled = true
	m.BookingWindow = property.BookingWindow{
		EarliestArrival: property.NewDate(2024, time.January, 1),
		LatestArrival:   property.NewDate(2024, time.January, 31),
	}
	return m
}

func validBooking(m *property.Model) Booking {
	return Booking{
		Guests:        []property.Guest{m.Guests[0], m.Guests[2]},
		Category:      m.RoomCategories[1],
		CheckIn:       property.NewDate(2024, time.January, 10),
		CheckOut:      property.NewDate(2024, time.January, 12),
		ExtraServices: []string{"parking"},
	}
}

func TestBooking_Validate(t *testing.T) {
	m := testModel()

	tests := []struct {
		name    string
		mutate  func(*Booking)
		wantErr string
	}{
		{
			name:   "valid booking",
			mutate: func(b *Booking) {},
		},
		{
			name: "party exceeds category maximum",
			mutate: func(b *Booking) {
				b.Guests = append(b.Guests, m.Guests[1])
			},
			wantErr: "outside category",
		},
		{
			name: "party below category minimum",
			mutate: func(b *Booking) {
				b.Guests = nil
			},
			wantErr: "outside category",
		},
		{
			name: "no adult in party",
			mutate: func(b *Booking) {
				b.Guests = []property.Guest{m.Guests[2]}
			},
			wantErr: "no adult",
		},
		{
			name: "check-in equals check-out",
			mutate: func(b *Booking) {
				b.CheckOut = b.CheckIn
			},
			wantErr: "not before check-out",
		},
		{
			name: "stay escapes the window",
			mutate: func(b *Booking) {
				b.CheckOut = property.NewDate(2024, time.February, 2)
			},
			wantErr: "outside booking window",
		},
		{
			name: "unknown extra service",
			mutate: func(b *Booking) {
				b.ExtraServices = []string{"helicopter transfer"}
			},
			wantErr: "not offered",
		},
		{
			name: "breakfast covers more guests than the party",
			mutate: func(b *Booking) {
				b.Breakfast = &Breakfast{Counts: map[string]int{"Continental": 3}}
			},
			wantErr: "breakfast covers 3 guests",
		},
		{
			name: "unconfigured breakfast type",
			mutate: func(b *Booking) {
				b.Breakfast = &Breakfast{Counts: map[string]int{"Full English": 1}}
			},
			wantErr: "not configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := validBooking(m)
			tt.mutate(&b)
			err := b.Validate(m)

			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("expected valid booking, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestBooking_Validate_BreakfastDisabled(t *testing.T) {
	m := testModel()
	m.BreakfastPolicy.Enabled = false

	b := validBooking(m)
	b.Breakfast = &Breakfast{Counts: map[string]int{"Continental": 1}}

	err := b.Validate(m)
	if err == nil || !strings.Contains(err.Error(), "policy is disabled") {
		t.Errorf("expected breakfast-disabled violation, got %v", err)
	}
}

func TestBreakfast_String(t *testing.T) {
	bf := &Breakfast{Counts: map[string]int{"Vegan": 1, "Continental": 2}}
	if got := bf.String(); got != "2x Continental, 1x Vegan" {
		t.Errorf("unexpected aggregation: %q", got)
	}
	if bf.Total() != 3 {
		t.Errorf("Total = %d, want 3", bf.Total())
	}
}

func TestScenario_Validate(t *testing.T) {
	m := testModel()
	b := validBooking(m)

	s := &Scenario{Kind: NewBooking, Booking: b}
	if err := s.Validate(m); err != nil {
		t.Fatalf("valid new booking rejected: %v", err)
	}

	s.Delta = &Delta{Kind: RemoveService, Service: "parking"}
	if err := s.Validate(m); err == nil {
		t.Error("new booking with change data should be rejected")
	}

	change := &Scenario{Kind: ChangeBooking, Booking: b}
	if err := change.Validate(m); err == nil {
		t.Error("booking change without prior/delta should be rejected")
	}
}
