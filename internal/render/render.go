package render

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/reservodojo/trainer/pkg/booking"
)

var titleCaser = cases.Title(language.English)

// TaskText renders a scenario as trainee instructions, wrapped to width.
// For a booking change the existing booking and the required edit are
// described separately.
func TaskText(s *booking.Scenario, width int) string {
	var sb strings.Builder

	switch s.Kind {
	case booking.ChangeBooking:
		sb.WriteString("BOOKING CHANGE\n\n")
		sb.WriteString("The following booking already exists in the system:\n\n")
		writeBooking(&sb, *s.Prior)
		sb.WriteString("\nRequired change:\n")
		sb.WriteString("  " + s.Delta.Describe() + "\n")
	default:
		sb.WriteString("NEW BOOKING\n\n")
		sb.WriteString("Enter the following reservation:\n\n")
		writeBooking(&sb, s.Booking)
	}

	if s.FollowUp != nil {
		sb.WriteString("\nFollow-up task: " + s.FollowUp.Description + "\n")
	}

	if width > 0 {
		return wordwrap.String(sb.String(), width)
	}
	return sb.String()
}

func writeBooking(sb *strings.Builder, b booking.Booking) {
	for i, g := range b.Guests {
		label := "Guest:          "
		if i > 0 {
			label = "                "
		}
		line := label + g.FullName
		if g.Comment != "" {
			line += " (" + g.Comment + ")"
		}
		sb.WriteString(line + "\n")
	}
	fmt.Fprintf(sb, "Room category:  %s\n", b.Category.Name)
	fmt.Fprintf(sb, "Guests:         %d\n", b.PartySize())
	fmt.Fprintf(sb, "Arrival:        %s\n", b.CheckIn)
	fmt.Fprintf(sb, "Departure:      %s\n", b.CheckOut)
	fmt.Fprintf(sb, "Nights:         %d\n", b.Nights())
	fmt.Fprintf(sb, "Extra services: %s\n", ServiceList(b.ExtraServices))
	if b.Breakfast != nil {
		fmt.Fprintf(sb, "Breakfast:      %s\n", b.Breakfast)
	}
}

// ServiceList joins service labels for display, title-cased, or "(none)".
func ServiceList(services []string) string {
	if len(services) == 0 {
		return "(none)"
	}
	labels := make([]string, len(services))
	for i, s := range services {
		labels[i] = titleCaser.String(s)
	}
	return strings.Join(labels, ", ")
}

// ArtifactText is the body of the per-task file written when the trainee
// marks a task finished.
func ArtifactText(s *booking.Scenario, bookingNumber string, finishedAt time.Time) string {
	var sb strings.Builder
	sb.WriteString("FRONT DESK TRAINING TASK\n")
	sb.WriteString("========================\n\n")
	fmt.Fprintf(&sb, "Task ID:        %s\n", s.ID)
	fmt.Fprintf(&sb, "Booking number: %s\n", bookingNumber)
	fmt.Fprintf(&sb, "Finished at:    %s\n\n", finishedAt.Format("2006-01-02 15:04:05"))
	sb.WriteString("SCENARIO\n")
	sb.WriteString("--------\n")
	sb.WriteString(TaskText(s, 0))
	return sb.String()
}
