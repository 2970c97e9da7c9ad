package generator

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reservodojo/trainer/pkg/booking"
	"github.com/reservodojo/trainer/pkg/property"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// fullModel exercises every sampling branch: mixed adults and children,
// overlapping categories, category extras, all follow-up trigger kinds.
func fullModel(t *testing.T) *property.Model {
	t.Helper()
	m := property.DefaultModel()
	m.Guests = []property.Guest{
		{FullName: "Anna Keller", Adult: true},
		{FullName: "Peter Okafor", Adult: true},
		{FullName: "Marta Lindqvist", Adult: true, Comment: "returning guest"},
		{FullName: "Sofia Brandt", Adult: true},
		{FullName: "Jonas Keller", Adult: false},
		{FullName: "Luis Brandt", Adult: false},
	}
	m.RoomCategories = []property.RoomCategory{
		{ID: "single", Name: "Single Room", MinGuests: 1, MaxGuests: 1},
		{ID: "double", Name: "Double Room", MinGuests: 1, MaxGuests: 2, Extras: []string{"balcony"}},
		{ID: "family", Name: "Family Suite", MinGuests: 2, MaxGuests: 4, Extras: []string{"baby bed"}},
	}
	m.ExtraServices = []property.ExtraService{
		{ID: "parking", Label: "parking"},
		{ID: "late_checkin", Label: "late check-in"},
	}
	m.FollowUpTasks = []property.FollowUpTask{
		{ID: "extend", Description: "Extend the booking by one night.",
			Trigger: &property.FollowUpTrigger{Kind: property.TriggerProbability, Probability: 0.2}},
		{ID: "garage", Description: "Assign a garage spot.",
			Trigger: &property.FollowUpTrigger{Kind: property.TriggerCondition,
				Condition: &property.FollowUpCondition{Type: property.CondHasExtras}}},
	}
	m.BreakfastTypes = []string{"Continental", "Vegan"}
	m.BreakfastPolicy.Enabled = true
	m.BookingWindow = property.BookingWindow{
		EarliestArrival: property.NewDate(2027, time.January, 1),
		LatestArrival:   property.NewDate(2027, time.March, 1),
	}
	require.NoError(t, m.Validate())
	return m
}

func generateSequence(t *testing.T, g *Generator, n int) []booking.Scenario {
	t.Helper()
	var history []booking.Scenario
	for i := 0; i < n; i++ {
		s, err := g.Generate(history)
		require.NoError(t, err)
		history = append(history, *s)
	}
	return history
}

func TestGenerate_Invariants(t *testing.T) {
	m := fullModel(t)

	for seed := int64(1); seed <= 5; seed++ {
		g := New(m, seed, testLogger())
		history := generateSequence(t, g, 100)

		for i, s := range history {
			require.NoError(t, s.Validate(m), "scenario %d (seed %d)", i, seed)

			b := s.Booking
			assert.True(t, b.Category.Holds(b.PartySize()),
				"party %d outside category %s", b.PartySize(), b.Category.ID)
			assert.True(t, b.CheckIn.Before(b.CheckOut))
			assert.False(t, b.CheckIn.Before(m.BookingWindow.EarliestArrival))
			assert.False(t, b.CheckOut.After(m.BookingWindow.LatestArrival))
			assert.LessOrEqual(t, len(b.ExtraServices), m.MaxServices)
			assert.Equal(t, i+1, s.Seq)

			if s.FollowUp != nil {
				assert.Contains(t, []string{"extend", "garage"}, s.FollowUp.ID)
			}
		}
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	m := fullModel(t)

	first := generateSequence(t, New(m, 42, testLogger()), 50)
	second := generateSequence(t, New(m, 42, testLogger()), 50)
	require.Equal(t, first, second, "fixed seed must reproduce the scenario sequence")

	third := generateSequence(t, New(m, 43, testLogger()), 50)
	assert.NotEqual(t, first, third, "different seeds should diverge")
}

func TestGenerate_FirstTaskIsAlwaysNewBooking(t *testing.T) {
	m := fullModel(t)
	m.ChangeProbability = 1.0

	for seed := int64(1); seed <= 20; seed++ {
		g := New(m, seed, testLogger())
		s, err := g.Generate(nil)
		require.NoError(t, err)
		assert.Equal(t, booking.NewBooking, s.Kind,
			"with no prior booking the kind is forced to new_booking")
	}
}

func TestGenerate_ChangePostStateValid(t *testing.T) {
	m := fullModel(t)
	m.ChangeProbability = 0.8

	g := New(m, 11, testLogger())
	history := generateSequence(t, g, 150)

	changes := 0
	for _, s := range history {
		if s.Kind != booking.ChangeBooking {
			continue
		}
		changes++
		require.NotNil(t, s.Prior)
		require.NotNil(t, s.Delta)
		assert.NoError(t, s.Prior.Validate(m), "prior state must be consistent")
		assert.NoError(t, s.Booking.Validate(m), "post-change state must be consistent")

		post := s.Delta.Apply(*s.Prior)
		assert.Equal(t, s.Booking, post, "stored post state must match applying the delta")
	}
	require.Greater(t, changes, 10, "expected a healthy share of change tasks")
}

func TestGenerate_BreakfastDisabled(t *testing.T) {
	m := fullModel(t)
	m.BreakfastPolicy = property.BreakfastPolicy{Enabled: false}
	m.BreakfastTypes = nil
	require.NoError(t, m.Validate())

	g := New(m, 3, testLogger())
	for _, s := range generateSequence(t, g, 80) {
		assert.Nil(t, s.Booking.Breakfast, "no breakfast may appear while the policy is disabled")
	}
}

func TestGenerate_MandatoryBreakfastCoversParty(t *testing.T) {
	m := fullModel(t)
	m.BreakfastPolicy.Mode = property.BreakfastMandatory

	g := New(m, 9, testLogger())
	for _, s := range generateSequence(t, g, 60) {
		if s.Kind != booking.NewBooking {
			continue
		}
		require.NotNil(t, s.Booking.Breakfast)
		assert.Equal(t, s.Booking.PartySize(), s.Booking.Breakfast.Total())
	}
}

func TestGenerate_ZeroValuedSettings(t *testing.T) {
	// change_probability 0 and max_services 0 are deliberate settings that
	// switch the feature off; they must not be mistaken for absent keys.
	m := fullModel(t)
	m.ChangeProbability = 0
	m.MaxServices = 0
	require.NoError(t, m.Validate())

	g := New(m, 7, testLogger())
	for _, s := range generateSequence(t, g, 200) {
		assert.Equal(t, booking.NewBooking, s.Kind, "change tasks are disabled")
		assert.Empty(t, s.Booking.ExtraServices, "extras are disabled")
	}
}

func TestGenerate_RetryExhausted(t *testing.T) {
	// A config where no booking change can ever be constructed: one guest,
	// one single-occupancy category, a 2-day window with exactly one
	// possible stay, no extras, no breakfast.
	m := property.DefaultModel()
	m.Guests = []property.Guest{{FullName: "Anna Keller", Adult: true}}
	m.RoomCategories = []property.RoomCategory{
		{ID: "single", Name: "Single Room", MinGuests: 1, MaxGuests: 1},
	}
	m.BookingWindow = property.BookingWindow{
		EarliestArrival: property.NewDate(2027, time.January, 1),
		LatestArrival:   property.NewDate(2027, time.January, 2),
	}
	m.StayLength = property.StayLength{MinNights: 1, MaxNights: 1}
	m.ChangeProbability = 1.0
	require.NoError(t, m.Validate())

	g := New(m, 1, testLogger())
	first, err := g.Generate(nil)
	require.NoError(t, err)
	require.Equal(t, booking.NewBooking, first.Kind)

	_, err = g.Generate([]booking.Scenario{*first})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRetryExhausted), "expected retry exhaustion, got %v", err)
}

func TestSampleParty_AlwaysContainsAdult(t *testing.T) {
	m := fullModel(t)
	// Leave one adult among the children to make the constraint bite.
	m.Guests = []property.Guest{
		{FullName: "Anna Keller", Adult: true},
		{FullName: "Jonas Keller", Adult: false},
		{FullName: "Luis Brandt", Adult: false},
		{FullName: "Mia Brandt", Adult: false},
	}
	require.NoError(t, m.Validate())

	g := New(m, 5, testLogger())
	for i := 0; i < 100; i++ {
		size := 1 + g.rng.Intn(3)
		party, err := g.sampleParty(size, nil)
		require.NoError(t, err)
		require.Len(t, party, size)

		hasAdult := false
		seen := make(map[string]bool)
		for _, guest := range party {
			assert.False(t, seen[guest.FullName], "guest %s drawn twice", guest.FullName)
			seen[guest.FullName] = true
			hasAdult = hasAdult || guest.Adult
		}
		assert.True(t, hasAdult, "party %v has no adult", party)
	}
}

func TestSampleParty_VarietyPreference(t *testing.T) {
	m := fullModel(t)
	g := New(m, 21, testLogger())

	// A history in which Anna appeared in every recent scenario should
	// make her a less likely (but still possible) first pick.
	repeat := booking.Booking{Guests: []property.Guest{{FullName: "Anna Keller", Adult: true}}}
	var history []booking.Scenario
	for i := 0; i < varietyWindow; i++ {
		history = append(history, booking.Scenario{Kind: booking.NewBooking, Booking: repeat})
	}

	anna := 0
	const draws = 400
	for i := 0; i < draws; i++ {
		party, err := g.sampleParty(1, history)
		require.NoError(t, err)
		if party[0].FullName == "Anna Keller" {
			anna++
		}
	}
	// Four adults; an unweighted draw would pick Anna ~25% of the time.
	// With her weight at 1/(1+varietyWindow) she should land well below.
	assert.Less(t, anna, draws/5, "variety weighting had no effect: %d/%d", anna, draws)
	assert.Greater(t, anna, 0, "soft preference must not become exclusion")
}

func TestPickFollowUp_ConditionTrigger(t *testing.T) {
	m := fullModel(t)
	// Only the condition-based task remains; its trigger consumes no rng
	// draws, so attachment is purely a function of the booking.
	m.FollowUpTasks = m.FollowUpTasks[1:]
	g := New(m, 2, testLogger())

	b := booking.Booking{
		Guests:        []property.Guest{m.Guests[0]},
		Category:      m.RoomCategories[0],
		CheckIn:       property.NewDate(2027, time.January, 5),
		CheckOut:      property.NewDate(2027, time.January, 7),
		ExtraServices: []string{"parking"},
	}
	task := g.pickFollowUp(b)
	require.NotNil(t, task)
	assert.Equal(t, "garage", task.ID)

	b.ExtraServices = nil
	assert.Nil(t, g.pickFollowUp(b))
}
