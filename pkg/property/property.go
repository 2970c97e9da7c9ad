package property

import (
	"fmt"
	"math/rand"
	"sort"
)

// Breakfast policy modes.
const (
	BreakfastMandatory  = "mandatory"   // every booking covers the whole party
	BreakfastPerBooking = "per_booking" // one draw gates breakfast for the booking
	BreakfastPerGuest   = "per_guest"   // each guest is gated independently
)

// Follow-up trigger kinds.
const (
	TriggerProbability = "probability"
	TriggerCondition   = "condition"
)

// Follow-up condition types.
const (
	CondMinGuests    = "min_guests"
	CondMinNights    = "min_nights"
	CondHasBreakfast = "has_breakfast"
	CondHasExtras    = "has_extras"
)

// Guest is one entry in the configured guest pool.
type Guest struct {
	FullName string `json:"full_name"`
	Comment  string `json:"comment,omitempty"`
	Adult    bool   `json:"adult"`
}

// RoomCategory is a class of room with an occupancy range. Extras is an
// additional pool of services only offered with this category.
type RoomCategory struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MinGuests int      `json:"min_guests"`
	MaxGuests int      `json:"max_guests"`
	Extras    []string `json:"category_extras,omitempty"`
}

// Holds reports whether a party of the given size fits this category.
func (c RoomCategory) Holds(partySize int) bool {
	return partySize >= c.MinGuests && partySize <= c.MaxGuests
}

// ExtraService is an optional add-on. Probability overrides the model's
// default inclusion probability when set.
type ExtraService struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Probability *float64 `json:"probability,omitempty"`
}

type BreakfastPolicy struct {
	Enabled bool   `json:"enabled"`
	Mode    string `json:"mode,omitempty"`
	// ProbabilityAnyBreakfast gates breakfast in per_booking mode.
	ProbabilityAnyBreakfast float64 `json:"probability_any_breakfast,omitempty"`
	// ProbabilityFullGroup is the chance a gated breakfast covers the
	// whole party rather than a partial count.
	ProbabilityFullGroup float64 `json:"probability_full_group_if_any,omitempty"`
}

// FollowUpCondition matches a generated booking against a structural
// property.
type FollowUpCondition struct {
	Type  string `json:"type"`
	Value int    `json:"value,omitempty"`
}

// FollowUpTrigger decides whether a follow-up task attaches to a booking.
// Exactly one of Probability or Condition is meaningful, selected by Kind.
type FollowUpTrigger struct {
	Kind        string             `json:"kind"`
	Probability float64            `json:"probability,omitempty"`
	Condition   *FollowUpCondition `json:"condition,omitempty"`
}

// FollowUpTask is a required post-booking change the trainee must perform.
// A nil Trigger falls back to the model's follow_up_probability.
type FollowUpTask struct {
	ID          string           `json:"id"`
	Description string           `json:"description"`
	Trigger     *FollowUpTrigger `json:"trigger,omitempty"`
}

// BookingWindow bounds both check-in and check-out of every generated stay.
type BookingWindow struct {
	EarliestArrival Date `json:"earliest_arrival"`
	LatestArrival   Date `json:"latest_arrival"`
}

// Days returns the window span in whole days, inclusive of both ends.
func (w BookingWindow) Days() int {
	return w.EarliestArrival.DaysUntil(w.LatestArrival) + 1
}

type StayLength struct {
	MinNights int `json:"min"`
	MaxNights int `json:"max"`
}

// Model is the validated property configuration. It is loaded once per
// session and read-only afterwards.
type Model struct {
	Guests          []Guest         `json:"guests"`
	RoomCategories  []RoomCategory  `json:"room_categories"`
	ExtraServices   []ExtraService  `json:"extra_services,omitempty"`
	FollowUpTasks   []FollowUpTask  `json:"follow_up_tasks,omitempty"`
	BreakfastTypes  []string        `json:"breakfast_types,omitempty"`
	BreakfastPolicy BreakfastPolicy `json:"breakfast_policy,omitempty"`
	BookingWindow   BookingWindow   `json:"booking_window"`
	StayLength      StayLength      `json:"stay_length_nights,omitempty"`

	// MaxServices caps the number of extra services per booking.
	MaxServices int `json:"max_services,omitempty"`
	// DefaultServiceProbability applies to services without their own.
	DefaultServiceProbability float64 `json:"default_service_probability,omitempty"`
	// FollowUpProbability applies to follow-up tasks without a trigger.
	FollowUpProbability float64 `json:"follow_up_probability,omitempty"`
	// ChangeProbability is the chance a task is a booking change rather
	// than a new booking, once a prior booking exists.
	ChangeProbability float64 `json:"change_probability,omitempty"`
}

// Defaults matching the established trainer behavior.
const (
	DefaultMaxServices          = 3
	DefaultServiceProbability   = 0.35
	DefaultFollowUpProbability  = 1.0 / 3.0
	DefaultChangeProbability    = 0.25
	DefaultBreakfastProbability = 0.7
	DefaultMinNights            = 1
	DefaultMaxNights            = 5
)

// DefaultModel returns a model carrying the documented defaults. The loader
// decodes the config document over it, so a key that is absent keeps its
// default while an explicit zero (e.g. change_probability: 0 to disable
// change tasks) is honored.
func DefaultModel() *Model {
	return &Model{
		StayLength:                StayLength{MinNights: DefaultMinNights, MaxNights: DefaultMaxNights},
		MaxServices:               DefaultMaxServices,
		DefaultServiceProbability: DefaultServiceProbability,
		FollowUpProbability:       DefaultFollowUpProbability,
		ChangeProbability:         DefaultChangeProbability,
		BreakfastPolicy: BreakfastPolicy{
			Mode:                    BreakfastPerBooking,
			ProbabilityAnyBreakfast: DefaultBreakfastProbability,
			ProbabilityFullGroup:    DefaultBreakfastProbability,
		},
	}
}

// CategoriesFor returns all categories whose occupancy range contains
// partySize.
func (m *Model) CategoriesFor(partySize int) []RoomCategory {
	var out []RoomCategory
	for _, c := range m.RoomCategories {
		if c.Holds(partySize) {
			out = append(out, c)
		}
	}
	return out
}

// PartySizes returns the sorted set of party sizes that are supported by at
// least one category and can be staffed from the guest pool.
func (m *Model) PartySizes() []int {
	seen := make(map[int]bool)
	for _, c := range m.RoomCategories {
		for s := c.MinGuests; s <= c.MaxGuests; s++ {
			if s >= 1 && s <= len(m.Guests) {
				seen[s] = true
			}
		}
	}
	sizes := make([]int, 0, len(seen))
	for s := range seen {
		sizes = append(sizes, s)
	}
	sort.Ints(sizes)
	return sizes
}

// RandomDateRange draws a stay within the booking window. Check-in falls on
// [earliest, latest-1]; nights are drawn from the configured stay length,
// clamped so check-out never leaves the window.
func (m *Model) RandomDateRange(rng *rand.Rand) (checkIn, checkOut Date, err error) {
	w := m.BookingWindow
	if w.Days() < 2 {
		return Date{}, Date{}, &ConfigError{Problems: []string{
			fmt.Sprintf("booking_window: must span at least 2 days to fit a stay (got %s..%s)",
				w.EarliestArrival, w.LatestArrival),
		}}
	}

	checkIn = w.EarliestArrival.AddDays(rng.Intn(w.Days() - 1))
	maxNights := checkIn.DaysUntil(w.LatestArrival)
	if maxNights > m.StayLength.MaxNights {
		maxNights = m.StayLength.MaxNights
	}
	minNights := m.StayLength.MinNights
	if minNights > maxNights {
		minNights = maxNights
	}
	nights := minNights + rng.Intn(maxNights-minNights+1)
	return checkIn, checkIn.AddDays(nights), nil
}

// ServicePool returns the global extras merged with the category's own,
// de-duplicated by label, preserving configured order.
func (m *Model) ServicePool(c RoomCategory) []ExtraService {
	pool := make([]ExtraService, 0, len(m.ExtraServices)+len(c.Extras))
	seen := make(map[string]bool)
	for _, s := range m.ExtraServices {
		if s.Label == "" || seen[s.Label] {
			continue
		}
		seen[s.Label] = true
		pool = append(pool, s)
	}
	for _, label := range c.Extras {
		if label == "" || seen[label] {
			continue
		}
		seen[label] = true
		pool = append(pool, ExtraService{ID: c.ID + ":" + label, Label: label})
	}
	return pool
}

// ServiceProbability resolves the inclusion probability for a service.
func (m *Model) ServiceProbability(s ExtraService) float64 {
	if s.Probability != nil {
		return *s.Probability
	}
	return m.DefaultServiceProbability
}

// AdultCount returns the number of adults in the guest pool.
func (m *Model) AdultCount() int {
	n := 0
	for _, g := range m.Guests {
		if g.Adult {
			n++
		}
	}
	return n
}
