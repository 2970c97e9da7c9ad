package property

import (
	"fmt"
	"strings"
)

// ConfigError reports a structurally unusable configuration. It is fatal:
// a session must not start on a half-valid model.
type ConfigError struct {
	Problems []string
}

func (e *ConfigError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid property config: " + e.Problems[0]
	}
	return "invalid property config:\n  - " + strings.Join(e.Problems, "\n  - ")
}

// Validate checks the model for structural problems. All problems are
// collected so the operator can fix the config in one pass.
func (m *Model) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(m.Guests) == 0 {
		addf("guests: pool is empty")
	}
	adults := 0
	for i, g := range m.Guests {
		if strings.TrimSpace(g.FullName) == "" {
			addf("guests[%d]: full_name is empty", i)
		}
		if g.Adult {
			adults++
		}
	}
	if len(m.Guests) > 0 && adults == 0 {
		addf("guests: pool has no adults; every booking needs a primary adult guest")
	}

	if len(m.RoomCategories) == 0 {
		addf("room_categories: none configured")
	}
	for i, c := range m.RoomCategories {
		key := c.ID
		if key == "" {
			key = fmt.Sprintf("room_categories[%d]", i)
		}
		if strings.TrimSpace(c.Name) == "" {
			addf("%s: name is empty", key)
		}
		if c.MinGuests < 1 {
			addf("%s: min_guests must be >= 1 (got %d)", key, c.MinGuests)
		}
		if c.MaxGuests < c.MinGuests {
			addf("%s: max_guests %d < min_guests %d", key, c.MaxGuests, c.MinGuests)
		}
	}

	if len(m.Guests) > 0 && len(m.RoomCategories) > 0 && len(m.PartySizes()) == 0 {
		addf("room_categories: no category can hold any party the guest pool can staff (pool size %d)", len(m.Guests))
	}

	w := m.BookingWindow
	switch {
	case w.EarliestArrival.IsZero() || w.LatestArrival.IsZero():
		addf("booking_window: earliest_arrival and latest_arrival are required")
	case w.LatestArrival.Before(w.EarliestArrival):
		addf("booking_window: latest_arrival %s is before earliest_arrival %s", w.LatestArrival, w.EarliestArrival)
	case w.Days() < 2:
		addf("booking_window: must span at least 2 days so check-out can follow check-in (got %s..%s)", w.EarliestArrival, w.LatestArrival)
	}

	if m.StayLength.MinNights < 1 {
		addf("stay_length_nights.min: must be >= 1 (got %d)", m.StayLength.MinNights)
	}
	if m.StayLength.MaxNights < m.StayLength.MinNights {
		addf("stay_length_nights: max %d < min %d", m.StayLength.MaxNights, m.StayLength.MinNights)
	}
	if !w.EarliestArrival.IsZero() && !w.LatestArrival.IsZero() && w.Days() >= 2 &&
		m.StayLength.MinNights >= 1 && m.StayLength.MinNights > w.Days()-1 {
		addf("stay_length_nights.min: %d nights cannot fit inside the booking window (%d days)", m.StayLength.MinNights, w.Days())
	}

	if m.MaxServices < 0 {
		addf("max_services: must be >= 0 (got %d)", m.MaxServices)
	}
	problems = append(problems, validateProbability("default_service_probability", m.DefaultServiceProbability)...)
	problems = append(problems, validateProbability("follow_up_probability", m.FollowUpProbability)...)
	problems = append(problems, validateProbability("change_probability", m.ChangeProbability)...)
	for i, s := range m.ExtraServices {
		if strings.TrimSpace(s.Label) == "" {
			addf("extra_services[%d]: label is empty", i)
		}
		if s.Probability != nil {
			problems = append(problems, validateProbability(fmt.Sprintf("extra_services[%d].probability", i), *s.Probability)...)
		}
	}

	if m.BreakfastPolicy.Enabled {
		switch m.BreakfastPolicy.Mode {
		case BreakfastMandatory, BreakfastPerBooking, BreakfastPerGuest:
		default:
			addf("breakfast_policy.mode: unknown mode %q", m.BreakfastPolicy.Mode)
		}
		if len(m.BreakfastTypes) == 0 {
			addf("breakfast_types: required when breakfast_policy.enabled is true")
		}
		problems = append(problems, validateProbability("breakfast_policy.probability_any_breakfast", m.BreakfastPolicy.ProbabilityAnyBreakfast)...)
		problems = append(problems, validateProbability("breakfast_policy.probability_full_group_if_any", m.BreakfastPolicy.ProbabilityFullGroup)...)
	}

	for i, t := range m.FollowUpTasks {
		key := t.ID
		if key == "" {
			key = fmt.Sprintf("follow_up_tasks[%d]", i)
		}
		if strings.TrimSpace(t.Description) == "" {
			addf("%s: description is empty", key)
		}
		if t.Trigger == nil {
			continue
		}
		switch t.Trigger.Kind {
		case TriggerProbability:
			problems = append(problems, validateProbability(key+".trigger.probability", t.Trigger.Probability)...)
		case TriggerCondition:
			if t.Trigger.Condition == nil {
				addf("%s.trigger: condition kind requires a condition", key)
				continue
			}
			switch t.Trigger.Condition.Type {
			case CondMinGuests, CondMinNights:
				if t.Trigger.Condition.Value < 1 {
					addf("%s.trigger.condition.value: must be >= 1 for %s", key, t.Trigger.Condition.Type)
				}
			case CondHasBreakfast, CondHasExtras:
			default:
				addf("%s.trigger.condition.type: unknown type %q", key, t.Trigger.Condition.Type)
			}
		default:
			addf("%s.trigger.kind: unknown kind %q", key, t.Trigger.Kind)
		}
	}

	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}

func validateProbability(key string, p float64) []string {
	if p < 0 || p > 1 {
		return []string{fmt.Sprintf("%s: must be between 0 and 1 (got %g)", key, p)}
	}
	return nil
}
