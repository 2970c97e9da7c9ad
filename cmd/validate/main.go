package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/reservodojo/trainer/internal/config"
	"github.com/reservodojo/trainer/pkg/property"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <config.json>\n", os.Args[0])
		os.Exit(1)
	}

	filename := os.Args[1]
	fmt.Printf("Validating %s...\n", filename)

	model, err := config.LoadModel(filename)
	if err != nil {
		var cfgErr *property.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(os.Stderr, "Validation failed:")
			for _, p := range cfgErr.Problems {
				fmt.Fprintf(os.Stderr, "  - %s\n", p)
			}
		} else {
			fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("Property config is valid: %d guests, %d room categories, booking window %s..%s\n",
		len(model.Guests), len(model.RoomCategories),
		model.BookingWindow.EarliestArrival, model.BookingWindow.LatestArrival)
}
