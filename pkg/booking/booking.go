package booking

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/reservodojo/trainer/pkg/property"
)

// Kind distinguishes the two task shapes a trainee can be given.
type Kind string

const (
	NewBooking    Kind = "new_booking"
	ChangeBooking Kind = "change_booking"
)

// Booking is a single internally-consistent reservation.
type Booking struct {
	Guests        []property.Guest      `json:"guests"`
	Category      property.RoomCategory `json:"category"`
	CheckIn       property.Date         `json:"check_in"`
	CheckOut      property.Date         `json:"check_out"`
	ExtraServices []string              `json:"extra_services,omitempty"`
	Breakfast     *Breakfast            `json:"breakfast,omitempty"`
}

func (b Booking) PartySize() int {
	return len(b.Guests)
}

func (b Booking) Nights() int {
	return b.CheckIn.DaysUntil(b.CheckOut)
}

// GuestNames returns the party's names in booking order.
func (b Booking) GuestNames() []string {
	names := make([]string, len(b.Guests))
	for i, g := range b.Guests {
		names[i] = g.FullName
	}
	return names
}

func (b Booking) HasService(label string) bool {
	for _, s := range b.ExtraServices {
		if s == label {
			return true
		}
	}
	return false
}

func (b Booking) hasAdult() bool {
	for _, g := range b.Guests {
		if g.Adult {
			return true
		}
	}
	return false
}

// Validate checks the booking against the model's structural invariants.
// Every emitted booking, including the post-change state of a booking
// change, must pass.
func (b Booking) Validate(m *property.Model) error {
	var problems []string

	if !b.Category.Holds(b.PartySize()) {
		problems = append(problems, fmt.Sprintf("party of %d outside category %q range [%d,%d]",
			b.PartySize(), b.Category.ID, b.Category.MinGuests, b.Category.MaxGuests))
	}
	if b.PartySize() > 0 && !b.hasAdult() {
		problems = append(problems, "party has no adult guest")
	}
	if !b.CheckIn.Before(b.CheckOut) {
		problems = append(problems, fmt.Sprintf("check-in %s is not before check-out %s", b.CheckIn, b.CheckOut))
	}
	w := m.BookingWindow
	if b.CheckIn.Before(w.EarliestArrival) || b.CheckOut.After(w.LatestArrival) {
		problems = append(problems, fmt.Sprintf("stay %s..%s outside booking window %s..%s",
			b.CheckIn, b.CheckOut, w.EarliestArrival, w.LatestArrival))
	}
	if !m.BreakfastPolicy.Enabled && b.Breakfast != nil {
		problems = append(problems, "breakfast selected while breakfast policy is disabled")
	}
	if b.Breakfast != nil {
		if b.Breakfast.Total() < 1 || b.Breakfast.Total() > b.PartySize() {
			problems = append(problems, fmt.Sprintf("breakfast covers %d guests, party is %d",
				b.Breakfast.Total(), b.PartySize()))
		}
		configured := make(map[string]bool, len(m.BreakfastTypes))
		for _, t := range m.BreakfastTypes {
			configured[t] = true
		}
		for t := range b.Breakfast.Counts {
			if !configured[t] {
				problems = append(problems, fmt.Sprintf("breakfast type %q is not configured", t))
			}
		}
	}
	pool := make(map[string]bool)
	for _, s := range m.ServicePool(b.Category) {
		pool[s.Label] = true
	}
	for _, s := range b.ExtraServices {
		if !pool[s] {
			problems = append(problems, fmt.Sprintf("extra service %q is not offered with category %q", s, b.Category.ID))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid booking: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Breakfast records how many guests take each breakfast type. Types may be
// mixed within one booking.
type Breakfast struct {
	Counts map[string]int `json:"counts"`
}

func (bf *Breakfast) Total() int {
	n := 0
	for _, c := range bf.Counts {
		n += c
	}
	return n
}

// String aggregates the selection as "2x Continental, 1x Vegan", sorted by
// type name for stable output.
func (bf *Breakfast) String() string {
	types := make([]string, 0, len(bf.Counts))
	for t := range bf.Counts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%dx %s", bf.Counts[t], t)
	}
	return strings.Join(parts, ", ")
}

// Scenario is one generated training task. For ChangeBooking, Booking holds
// the state the trainee must reach, while Prior and Delta describe the
// starting booking and the edit to perform.
type Scenario struct {
	ID       uuid.UUID              `json:"id"`
	Seq      int                    `json:"seq"`
	Kind     Kind                   `json:"kind"`
	Booking  Booking                `json:"booking"`
	Prior    *Booking               `json:"prior,omitempty"`
	Delta    *Delta                 `json:"delta,omitempty"`
	FollowUp *property.FollowUpTask `json:"follow_up,omitempty"`
}

// Validate checks the scenario's invariants, including the prior state of a
// booking change.
func (s *Scenario) Validate(m *property.Model) error {
	if err := s.Booking.Validate(m); err != nil {
		return err
	}
	switch s.Kind {
	case NewBooking:
		if s.Prior != nil || s.Delta != nil {
			return fmt.Errorf("new booking carries change data")
		}
	case ChangeBooking:
		if s.Prior == nil || s.Delta == nil {
			return fmt.Errorf("booking change is missing prior state or delta")
		}
		if err := s.Prior.Validate(m); err != nil {
			return fmt.Errorf("prior state: %w", err)
		}
	default:
		return fmt.Errorf("unknown scenario kind %q", s.Kind)
	}
	return nil
}
