package sequence

import (
	"testing"
	"time"
)

func TestNextNotBooked_Thresholds(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		position  int
		afterDays int
		email     string
	}{
		{1, 2, EmailCostComparison},
		{2, 5, EmailCaseStudy},
		{3, 9, EmailThreeMistakes},
		{4, 14, EmailLastChance},
	}

	for _, tc := range cases {
		justBefore := created.Add(time.Duration(tc.afterDays)*24*time.Hour - time.Minute)
		if _, due := NextNotBooked(tc.position, created, justBefore); due {
			t.Fatalf("position %d: not due %v before threshold", tc.position, time.Minute)
		}

		atThreshold := created.Add(time.Duration(tc.afterDays) * 24 * time.Hour)
		email, due := NextNotBooked(tc.position, created, atThreshold)
		if !due || email != tc.email {
			t.Fatalf("position %d at threshold: got (%q, %v), expected (%q, true)", tc.position, email, due, tc.email)
		}
	}
}

func TestNextNotBooked_FinalPositionHasNoStep(t *testing.T) {
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if _, due := NextNotBooked(5, created, created.Add(100*24*time.Hour)); due {
		t.Fatalf("a finished lead must never be due")
	}
}

func TestNextNotBooked_LongOverdueLeadStillSingleStep(t *testing.T) {
	// A lead stuck at position 1 for 20 days is due the position-1 email,
	// not a later one.
	created := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	email, due := NextNotBooked(1, created, created.Add(20*24*time.Hour))
	if !due || email != EmailCostComparison {
		t.Fatalf("got (%q, %v), expected the position-1 email", email, due)
	}
}

func TestNextBooked_ReminderWindow(t *testing.T) {
	appt := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)

	if _, due := NextBooked(1, appt, appt.Add(-29*time.Hour)); due {
		t.Fatalf("reminder must not be due more than 28h before the appointment")
	}
	if email, due := NextBooked(1, appt, appt.Add(-27*time.Hour)); !due || email != EmailReminder {
		t.Fatalf("reminder expected 27h before the appointment")
	}
	if email, due := NextBooked(1, appt, appt); !due || email != EmailReminder {
		t.Fatalf("reminder still eligible at the appointment instant")
	}
	if _, due := NextBooked(1, appt, appt.Add(time.Hour)); due {
		t.Fatalf("reminder must not fire after the appointment")
	}
}

func TestNextBooked_FollowupWindow(t *testing.T) {
	appt := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)

	if _, due := NextBooked(2, appt, appt.Add(-time.Hour)); due {
		t.Fatalf("follow-up must not fire before the appointment")
	}
	if email, due := NextBooked(2, appt, appt.Add(5*time.Hour)); !due || email != EmailFollowup {
		t.Fatalf("follow-up expected 5h after the appointment")
	}
	if _, due := NextBooked(2, appt, appt.Add(29*time.Hour)); due {
		t.Fatalf("follow-up window closes 28h after the appointment")
	}
}

func TestNextBooked_KeyedOnExactPosition(t *testing.T) {
	appt := time.Date(2026, 3, 9, 11, 0, 0, 0, time.UTC)

	// A lead still at position 1 after the appointment missed its reminder;
	// it does not receive the follow-up in its place.
	if _, due := NextBooked(1, appt, appt.Add(5*time.Hour)); due {
		t.Fatalf("position 1 after the appointment must not be due")
	}
}

func TestFinished(t *testing.T) {
	if Finished(KindNotBooked, 4) || !Finished(KindNotBooked, 5) {
		t.Fatalf("not_booked finishes at position 5")
	}
	if Finished(KindBooked, 2) || !Finished(KindBooked, 3) {
		t.Fatalf("booked finishes at position 3")
	}
}
