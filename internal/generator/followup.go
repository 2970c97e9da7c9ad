package generator

import (
	"github.com/reservodojo/trainer/pkg/booking"
	"github.com/reservodojo/trainer/pkg/property"
)

// pickFollowUp evaluates the configured follow-up tasks in order and
// attaches the first whose trigger fires. At most one follow-up per
// scenario. Probability triggers always consume exactly one rng draw when
// evaluated, so a fixed seed yields the same attachment sequence.
func (g *Generator) pickFollowUp(b booking.Booking) *property.FollowUpTask {
	for i := range g.model.FollowUpTasks {
		task := g.model.FollowUpTasks[i]
		if g.triggerFires(task.Trigger, b) {
			return &task
		}
	}
	return nil
}

func (g *Generator) triggerFires(trigger *property.FollowUpTrigger, b booking.Booking) bool {
	if trigger == nil {
		return g.rng.Float64() < g.model.FollowUpProbability
	}
	switch trigger.Kind {
	case property.TriggerProbability:
		return g.rng.Float64() < trigger.Probability
	case property.TriggerCondition:
		return conditionHolds(trigger.Condition, b)
	}
	return false
}

func conditionHolds(cond *property.FollowUpCondition, b booking.Booking) bool {
	if cond == nil {
		return false
	}
	switch cond.Type {
	case property.CondMinGuests:
		return b.PartySize() >= cond.Value
	case property.CondMinNights:
		return b.Nights() >= cond.Value
	case property.CondHasBreakfast:
		return b.Breakfast != nil
	case property.CondHasExtras:
		return len(b.ExtraServices) > 0
	}
	return false
}
