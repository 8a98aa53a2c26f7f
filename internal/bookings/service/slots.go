package service

import (
	"context"
	"fmt"
	"time"

	"vitrine_backend/internal/calendar"
	"vitrine_backend/platform/apperr"
)

// AvailableSlots computes the bookable start times for a date inside the
// business window. A date outside the bookable weekdays yields an empty list.
// A calendar failure propagates: guessing "all free" would overbook the day.
func (s *Service) AvailableSlots(ctx context.Context, rawDate string) ([]string, error) {
	loc, err := time.LoadLocation(s.cfg.GetBookingTimezone())
	if err != nil {
		return nil, fmt.Errorf("load booking timezone: %w", err)
	}

	day, err := time.ParseInLocation("2006-01-02", rawDate, loc)
	if err != nil {
		return nil, apperr.Validation("invalid date, expected YYYY-MM-DD")
	}

	slots := []string{}
	if !s.weekdayAllowed(day.Weekday()) {
		return slots, nil
	}

	windowStart := time.Date(day.Year(), day.Month(), day.Day(), s.cfg.GetBookingOpenHour(), 0, 0, 0, loc)
	windowEnd := time.Date(day.Year(), day.Month(), day.Day(), s.cfg.GetBookingCloseHour(), 0, 0, 0, loc)

	busy, err := s.calendar.BusyIntervals(ctx, windowStart, windowEnd)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnavailable, "calendar unavailable", err)
	}

	now := s.now()
	slotLen := time.Duration(s.cfg.GetBookingSlotMinutes()) * time.Minute

	for start := windowStart; !start.Add(slotLen).After(windowEnd); start = start.Add(slotLen) {
		end := start.Add(slotLen)
		if !start.After(now) {
			continue
		}
		if overlapsAny(start, end, busy) {
			continue
		}
		slots = append(slots, start.Format("15:04"))
	}

	return slots, nil
}

func (s *Service) weekdayAllowed(day time.Weekday) bool {
	for _, allowed := range s.cfg.GetBookingWeekdays() {
		if day == allowed {
			return true
		}
	}
	return false
}

// overlapsAny applies the half-open interval test: a slot is taken when
// slotStart < busyEnd && slotEnd > busyStart. Back-to-back bookings touching
// at a boundary do not conflict.
func overlapsAny(slotStart, slotEnd time.Time, busy []calendar.Interval) bool {
	for _, b := range busy {
		if slotStart.Before(b.End) && slotEnd.After(b.Start) {
			return true
		}
	}
	return false
}
