// Package sequence holds the fixed nurture sequence tables. A lead's position
// counts emails already sent, so position 1 means the welcome (not_booked) or
// the booking confirmation (booked) went out.
package sequence

import "time"

// Kind identifies which sequence a lead follows.
type Kind string

const (
	KindNotBooked Kind = "not_booked"
	KindBooked    Kind = "booked"
)

// Email keys map to sender methods; the tables below decide which one is due.
const (
	EmailCostComparison = "cost_comparison"
	EmailCaseStudy      = "case_study"
	EmailThreeMistakes  = "three_mistakes"
	EmailLastChance     = "last_chance"
	EmailReminder       = "reminder"
	EmailFollowup       = "followup"
)

// notBookedStep advances a not_booked lead from FromPosition once AfterDays
// have elapsed since the lead was created.
type notBookedStep struct {
	FromPosition int
	AfterDays    int
	Email        string
}

var notBookedSteps = []notBookedStep{
	{FromPosition: 1, AfterDays: 2, Email: EmailCostComparison},
	{FromPosition: 2, AfterDays: 5, Email: EmailCaseStudy},
	{FromPosition: 3, AfterDays: 9, Email: EmailThreeMistakes},
	{FromPosition: 4, AfterDays: 14, Email: EmailLastChance},
}

// bookedWindow is how far on either side of the appointment the reminder and
// follow-up remain eligible.
const bookedWindow = 28 * time.Hour

// Length returns the total number of emails in a sequence, the first one
// included.
func Length(kind Kind) int {
	if kind == KindBooked {
		return 3
	}
	return 5
}

// Finished reports whether a lead at the given position has received every
// email of its sequence.
func Finished(kind Kind, position int) bool {
	return position >= Length(kind)
}

// NextNotBooked returns the email due for a not_booked lead, keyed on the
// exact current position. A lead that sat through an outage advances one step
// per pass, never several.
func NextNotBooked(position int, createdAt, now time.Time) (string, bool) {
	elapsed := now.Sub(createdAt)
	for _, step := range notBookedSteps {
		if step.FromPosition != position {
			continue
		}
		if elapsed >= time.Duration(step.AfterDays)*24*time.Hour {
			return step.Email, true
		}
		return "", false
	}
	return "", false
}

// NextBooked returns the email due for a booked lead. The reminder is
// eligible in the window up to 28 hours before the appointment, the follow-up
// in the window up to 28 hours after it. Outside its window a step is skipped
// for good; the hourly cadence makes the windows generous enough in practice.
func NextBooked(position int, appointmentAt, now time.Time) (string, bool) {
	switch position {
	case 1:
		until := appointmentAt.Sub(now)
		if until >= 0 && until <= bookedWindow {
			return EmailReminder, true
		}
	case 2:
		since := now.Sub(appointmentAt)
		if since >= 0 && since <= bookedWindow {
			return EmailFollowup, true
		}
	}
	return "", false
}
