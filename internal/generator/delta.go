package generator

import (
	"fmt"

	"github.com/reservodojo/trainer/pkg/booking"
	"github.com/reservodojo/trainer/pkg/property"
)

var deltaKinds = []booking.DeltaKind{
	booking.ChangeDates,
	booking.ChangeCategory,
	booking.AddGuest,
	booking.RemoveGuest,
	booking.AddService,
	booking.RemoveService,
	booking.ToggleBreakfast,
}

// sampleDelta synthesizes a change to the prior booking whose result still
// satisfies every booking invariant. Kinds that cannot apply to this prior
// (e.g. removing a guest at the category minimum) are re-sampled within the
// retry budget.
func (g *Generator) sampleDelta(prior booking.Booking) (*booking.Delta, booking.Booking, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		kind := deltaKinds[g.rng.Intn(len(deltaKinds))]
		d, ok := g.buildDelta(kind, prior)
		if !ok {
			continue
		}
		post := d.Apply(prior)
		if err := post.Validate(g.model); err != nil {
			g.logger.Debug("rejected booking change", "kind", kind, "reason", err)
			continue
		}
		return d, post, nil
	}
	return nil, booking.Booking{}, fmt.Errorf(
		"no valid change to the prior booking found in %d attempts: %w", maxAttempts, ErrRetryExhausted)
}

func (g *Generator) buildDelta(kind booking.DeltaKind, prior booking.Booking) (*booking.Delta, bool) {
	switch kind {
	case booking.ChangeDates:
		checkIn, checkOut, err := g.model.RandomDateRange(g.rng)
		if err != nil || (checkIn.Equal(prior.CheckIn) && checkOut.Equal(prior.CheckOut)) {
			return nil, false
		}
		return &booking.Delta{Kind: kind, CheckIn: checkIn, CheckOut: checkOut}, true

	case booking.ChangeCategory:
		var others []property.RoomCategory
		for _, c := range g.model.CategoriesFor(prior.PartySize()) {
			if c.ID != prior.Category.ID {
				others = append(others, c)
			}
		}
		if len(others) == 0 {
			return nil, false
		}
		c := others[g.rng.Intn(len(others))]
		return &booking.Delta{Kind: kind, Category: &c}, true

	case booking.AddGuest:
		if !prior.Category.Holds(prior.PartySize() + 1) {
			return nil, false
		}
		inParty := make(map[string]bool, prior.PartySize())
		for _, guest := range prior.Guests {
			inParty[guest.FullName] = true
		}
		var candidates []property.Guest
		for _, guest := range g.model.Guests {
			if !inParty[guest.FullName] {
				candidates = append(candidates, guest)
			}
		}
		if len(candidates) == 0 {
			return nil, false
		}
		guest := candidates[g.rng.Intn(len(candidates))]
		return &booking.Delta{Kind: kind, Guest: &guest}, true

	case booking.RemoveGuest:
		if prior.PartySize() <= 1 || !prior.Category.Holds(prior.PartySize()-1) {
			return nil, false
		}
		// Removal must leave at least one adult on the booking.
		adults := 0
		for _, guest := range prior.Guests {
			if guest.Adult {
				adults++
			}
		}
		var candidates []property.Guest
		for _, guest := range prior.Guests {
			if !guest.Adult || adults > 1 {
				candidates = append(candidates, guest)
			}
		}
		if len(candidates) == 0 {
			return nil, false
		}
		guest := candidates[g.rng.Intn(len(candidates))]
		return &booking.Delta{Kind: kind, Guest: &guest}, true

	case booking.AddService:
		if len(prior.ExtraServices) >= g.model.MaxServices {
			return nil, false
		}
		var candidates []string
		for _, s := range g.model.ServicePool(prior.Category) {
			if !prior.HasService(s.Label) {
				candidates = append(candidates, s.Label)
			}
		}
		if len(candidates) == 0 {
			return nil, false
		}
		return &booking.Delta{Kind: kind, Service: candidates[g.rng.Intn(len(candidates))]}, true

	case booking.RemoveService:
		if len(prior.ExtraServices) == 0 {
			return nil, false
		}
		return &booking.Delta{Kind: kind, Service: prior.ExtraServices[g.rng.Intn(len(prior.ExtraServices))]}, true

	case booking.ToggleBreakfast:
		policy := g.model.BreakfastPolicy
		if !policy.Enabled || policy.Mode == property.BreakfastMandatory {
			return nil, false
		}
		if prior.Breakfast != nil {
			return &booking.Delta{Kind: kind}, true
		}
		if len(g.model.BreakfastTypes) == 0 {
			return nil, false
		}
		t := g.model.BreakfastTypes[g.rng.Intn(len(g.model.BreakfastTypes))]
		return &booking.Delta{
			Kind:      kind,
			Breakfast: &booking.Breakfast{Counts: map[string]int{t: prior.PartySize()}},
		}, true
	}
	return nil, false
}
