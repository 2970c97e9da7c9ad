package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/google/uuid"

	"github.com/reservodojo/trainer/pkg/booking"
	"github.com/reservodojo/trainer/pkg/property"
)

// maxAttempts bounds every sample-until-valid loop. Exhaustion means the
// configuration has no legal solution for the requested shape, so it is
// surfaced as a config problem instead of looping forever.
const maxAttempts = 50

// varietyWindow is how many recent scenarios count against a guest when
// weighting the party draw.
const varietyWindow = 5

// ErrRetryExhausted signals that a generation attempt could not find a valid
// combination within the retry budget. Callers treat it as fatal for the
// session, like a ConfigError.
var ErrRetryExhausted = errors.New("sampling retry budget exhausted")

// Generator produces one structurally-valid scenario per Generate call.
// It owns the session's random stream; a fixed seed yields an identical
// scenario sequence for a fixed model.
type Generator struct {
	model  *property.Model
	rng    *rand.Rand
	logger *slog.Logger
}

func New(model *property.Model, seed int64, logger *slog.Logger) *Generator {
	return &Generator{
		model:  model,
		rng:    rand.New(rand.NewSource(seed)),
		logger: logger,
	}
}

// Generate samples the next training task. history is the session's ordered
// sequence of previously emitted scenarios; it feeds the variety preference
// and the prior selection for booking changes.
func (g *Generator) Generate(history []booking.Scenario) (*booking.Scenario, error) {
	priors := newBookingPriors(history)

	kind := booking.NewBooking
	// The draw happens unconditionally so the stream stays aligned
	// whether or not a prior exists yet.
	if g.rng.Float64() < g.model.ChangeProbability && len(priors) > 0 {
		kind = booking.ChangeBooking
	}

	s := &booking.Scenario{
		Seq:  len(history) + 1,
		Kind: kind,
	}

	switch kind {
	case booking.NewBooking:
		b, err := g.sampleBooking(history)
		if err != nil {
			return nil, err
		}
		s.Booking = b
	case booking.ChangeBooking:
		prior := priors[g.rng.Intn(len(priors))]
		delta, post, err := g.sampleDelta(prior)
		if err != nil {
			return nil, err
		}
		s.Prior = &prior
		s.Delta = delta
		s.Booking = post
	}

	s.FollowUp = g.pickFollowUp(s.Booking)

	id, err := uuid.NewRandomFromReader(g.rng)
	if err != nil {
		return nil, fmt.Errorf("failed to derive task id: %w", err)
	}
	s.ID = id

	if err := s.Validate(g.model); err != nil {
		return nil, fmt.Errorf("generator produced an inconsistent scenario: %w", err)
	}

	g.logger.Debug("generated scenario",
		"seq", s.Seq,
		"kind", s.Kind,
		"party", s.Booking.PartySize(),
		"category", s.Booking.Category.ID)
	return s, nil
}

// newBookingPriors collects the bookings a change task may start from.
func newBookingPriors(history []booking.Scenario) []booking.Booking {
	var priors []booking.Booking
	for _, s := range history {
		if s.Kind == booking.NewBooking {
			priors = append(priors, s.Booking)
		}
	}
	return priors
}

func (g *Generator) sampleBooking(history []booking.Scenario) (booking.Booking, error) {
	sizes := g.model.PartySizes()
	if len(sizes) == 0 {
		return booking.Booking{}, &property.ConfigError{Problems: []string{
			"room_categories: no category can hold any party the guest pool can staff",
		}}
	}
	size := sizes[g.rng.Intn(len(sizes))]

	guests, err := g.sampleParty(size, history)
	if err != nil {
		return booking.Booking{}, err
	}

	cats := g.model.CategoriesFor(size)
	cat := cats[g.rng.Intn(len(cats))]

	checkIn, checkOut, err := g.model.RandomDateRange(g.rng)
	if err != nil {
		return booking.Booking{}, err
	}

	return booking.Booking{
		Guests:        guests,
		Category:      cat,
		CheckIn:       checkIn,
		CheckOut:      checkOut,
		ExtraServices: g.sampleExtras(cat),
		Breakfast:     g.sampleBreakfast(size),
	}, nil
}

// sampleParty draws `size` guests without replacement. The first draw is
// restricted to adults so every party has a primary adult guest. Guests seen
// in recent scenarios are down-weighted (soft variety, not a hard rule).
func (g *Generator) sampleParty(size int, history []booking.Scenario) ([]property.Guest, error) {
	pool := g.model.Guests
	recent := recentGuestCounts(history)

	weight := func(i int) float64 {
		return 1.0 / float64(1+recent[pool[i].FullName])
	}

	var adults []int
	for i, guest := range pool {
		if guest.Adult {
			adults = append(adults, i)
		}
	}
	if len(adults) == 0 {
		return nil, &property.ConfigError{Problems: []string{
			"guests: pool has no adults; every booking needs a primary adult guest",
		}}
	}

	chosen := make(map[int]bool, size)
	party := make([]property.Guest, 0, size)

	first := g.pickWeighted(adults, weight)
	chosen[first] = true
	party = append(party, pool[first])

	for len(party) < size {
		var candidates []int
		for i := range pool {
			if !chosen[i] {
				candidates = append(candidates, i)
			}
		}
		next := g.pickWeighted(candidates, weight)
		chosen[next] = true
		party = append(party, pool[next])
	}
	return party, nil
}

// recentGuestCounts tallies appearances over the last varietyWindow
// scenarios.
func recentGuestCounts(history []booking.Scenario) map[string]int {
	counts := make(map[string]int)
	start := len(history) - varietyWindow
	if start < 0 {
		start = 0
	}
	for _, s := range history[start:] {
		for _, guest := range s.Booking.Guests {
			counts[guest.FullName]++
		}
	}
	return counts
}

// pickWeighted draws one index from candidates proportionally to weight.
// candidates must be non-empty.
func (g *Generator) pickWeighted(candidates []int, weight func(int) float64) int {
	total := 0.0
	for _, i := range candidates {
		total += weight(i)
	}
	target := g.rng.Float64() * total
	for _, i := range candidates {
		target -= weight(i)
		if target < 0 {
			return i
		}
	}
	return candidates[len(candidates)-1]
}

// sampleExtras includes each service of the category's pool independently,
// capped at the configured maximum per booking.
func (g *Generator) sampleExtras(cat property.RoomCategory) []string {
	var extras []string
	for _, s := range g.model.ServicePool(cat) {
		if len(extras) >= g.model.MaxServices {
			break
		}
		if g.rng.Float64() < g.model.ServiceProbability(s) {
			extras = append(extras, s.Label)
		}
	}
	return extras
}

// sampleBreakfast applies the configured policy mode. The covered guests
// each draw a type, so types may be mixed within one booking.
func (g *Generator) sampleBreakfast(partySize int) *booking.Breakfast {
	policy := g.model.BreakfastPolicy
	if !policy.Enabled || len(g.model.BreakfastTypes) == 0 || partySize < 1 {
		return nil
	}

	var covered int
	switch policy.Mode {
	case property.BreakfastMandatory:
		covered = partySize
	case property.BreakfastPerBooking:
		if g.rng.Float64() > policy.ProbabilityAnyBreakfast {
			return nil
		}
		if partySize == 1 || g.rng.Float64() <= policy.ProbabilityFullGroup {
			covered = partySize
		} else {
			covered = 1 + g.rng.Intn(partySize-1)
		}
	case property.BreakfastPerGuest:
		for i := 0; i < partySize; i++ {
			if g.rng.Float64() < policy.ProbabilityAnyBreakfast {
				covered++
			}
		}
		if covered == 0 {
			return nil
		}
	default:
		return nil
	}

	counts := make(map[string]int)
	for i := 0; i < covered; i++ {
		t := g.model.BreakfastTypes[g.rng.Intn(len(g.model.BreakfastTypes))]
		counts[t]++
	}
	return &booking.Breakfast{Counts: counts}
}
