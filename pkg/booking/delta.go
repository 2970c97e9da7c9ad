package booking

import (
	"fmt"

	"github.com/reservodojo/trainer/pkg/property"
)

// DeltaKind enumerates the edits a booking-change task can require.
type DeltaKind string

const (
	ChangeDates     DeltaKind = "change_dates"
	ChangeCategory  DeltaKind = "change_category"
	AddGuest        DeltaKind = "add_guest"
	RemoveGuest     DeltaKind = "remove_guest"
	AddService      DeltaKind = "add_service"
	RemoveService   DeltaKind = "remove_service"
	ToggleBreakfast DeltaKind = "toggle_breakfast"
)

// Delta is a compact description of one change to an existing booking.
// Only the fields for its Kind are set.
type Delta struct {
	Kind DeltaKind `json:"kind"`

	CheckIn  property.Date `json:"check_in,omitempty"`
	CheckOut property.Date `json:"check_out,omitempty"`

	Category *property.RoomCategory `json:"category,omitempty"`

	Guest *property.Guest `json:"guest,omitempty"`

	Service string `json:"service,omitempty"`

	Breakfast *Breakfast `json:"breakfast,omitempty"` // nil on toggle-off
}

// Apply returns the booking after the change. The receiver booking is not
// modified; slices are copied before editing.
func (d *Delta) Apply(b Booking) Booking {
	out := b
	out.Guests = append([]property.Guest(nil), b.Guests...)
	out.ExtraServices = append([]string(nil), b.ExtraServices...)

	switch d.Kind {
	case ChangeDates:
		out.CheckIn = d.CheckIn
		out.CheckOut = d.CheckOut
	case ChangeCategory:
		out.Category = *d.Category
	case AddGuest:
		out.Guests = append(out.Guests, *d.Guest)
	case RemoveGuest:
		for i, g := range out.Guests {
			if g.FullName == d.Guest.FullName {
				out.Guests = append(out.Guests[:i], out.Guests[i+1:]...)
				break
			}
		}
	case AddService:
		out.ExtraServices = append(out.ExtraServices, d.Service)
	case RemoveService:
		for i, s := range out.ExtraServices {
			if s == d.Service {
				out.ExtraServices = append(out.ExtraServices[:i], out.ExtraServices[i+1:]...)
				break
			}
		}
	case ToggleBreakfast:
		out.Breakfast = d.Breakfast
	}
	return out
}

// Describe renders the delta as a trainee instruction.
func (d *Delta) Describe() string {
	switch d.Kind {
	case ChangeDates:
		return fmt.Sprintf("Move the stay to %s – %s.", d.CheckIn, d.CheckOut)
	case ChangeCategory:
		return fmt.Sprintf("Move the booking to category %q.", d.Category.Name)
	case AddGuest:
		return fmt.Sprintf("Add %s to the booking.", d.Guest.FullName)
	case RemoveGuest:
		return fmt.Sprintf("Remove %s from the booking.", d.Guest.FullName)
	case AddService:
		return fmt.Sprintf("Add the extra service %q.", d.Service)
	case RemoveService:
		return fmt.Sprintf("Remove the extra service %q.", d.Service)
	case ToggleBreakfast:
		if d.Breakfast == nil {
			return "Cancel the breakfast on this booking."
		}
		return fmt.Sprintf("Add breakfast: %s.", d.Breakfast)
	}
	return string(d.Kind)
}
