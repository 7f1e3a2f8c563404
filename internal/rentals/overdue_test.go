package rentals

import (
	"testing"
	"time"

	"github.com/angelmondragon/rentflow-backend/pkg/db/models"
	"github.com/angelmondragon/rentflow-backend/pkg/enums"
)

func TestIsOverdue(t *testing.T) {
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)
	returned := past

	cases := []struct {
		name   string
		rental models.Rental
		want   bool
	}{
		{"ongoing past due", models.Rental{Status: enums.RentalStatusOngoing, ExpectedReturnDate: past}, true},
		{"already flipped", models.Rental{Status: enums.RentalStatusOverdue, ExpectedReturnDate: past}, true},
		{"ongoing not yet due", models.Rental{Status: enums.RentalStatusOngoing, ExpectedReturnDate: future}, false},
		{"due exactly now", models.Rental{Status: enums.RentalStatusOngoing, ExpectedReturnDate: now}, false},
		{"booked past due", models.Rental{Status: enums.RentalStatusBooked, ExpectedReturnDate: past}, false},
		{"completed", models.Rental{Status: enums.RentalStatusCompleted, ExpectedReturnDate: past, ActualReturnDate: &returned}, false},
		{"returned but status stale", models.Rental{Status: enums.RentalStatusOngoing, ExpectedReturnDate: past, ActualReturnDate: &returned}, false},
		{"cancelled", models.Rental{Status: enums.RentalStatusCancelled, ExpectedReturnDate: past}, false},
	}
	for _, tc := range cases {
		if got := IsOverdue(tc.rental, now); got != tc.want {
			t.Fatalf("%s: IsOverdue = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDerivedStatus(t *testing.T) {
	now := time.Date(2026, time.October, 14, 12, 0, 0, 0, time.UTC)
	late := models.Rental{Status: enums.RentalStatusOngoing, ExpectedReturnDate: now.AddDate(0, 0, -1)}
	if got := DerivedStatus(late, now); got != enums.RentalStatusOverdue {
		t.Fatalf("expected overdue, got %s", got)
	}
	booked := models.Rental{Status: enums.RentalStatusBooked, ExpectedReturnDate: now.AddDate(0, 0, 3)}
	if got := DerivedStatus(booked, now); got != enums.RentalStatusBooked {
		t.Fatalf("expected stored status, got %s", got)
	}
}
