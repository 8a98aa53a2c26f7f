// Package scheduler runs the background work: the hourly nurture pass and
// the sweep that closes out elapsed bookings.
package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskNurturePass = "funnel.nurture"

const TaskBookingsSweep = "bookings.sweep"

// NurturePassPayload carries the instant a nurture pass was scheduled for.
type NurturePassPayload struct {
	ScheduledFor time.Time `json:"scheduledFor"`
}

// BookingsSweepPayload carries the instant a bookings sweep was scheduled for.
type BookingsSweepPayload struct {
	ScheduledFor time.Time `json:"scheduledFor"`
}

func NewNurturePassTask(payload NurturePassPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskNurturePass, data), nil
}

func ParseNurturePassPayload(task *asynq.Task) (NurturePassPayload, error) {
	var payload NurturePassPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return NurturePassPayload{}, err
	}
	return payload, nil
}

func NewBookingsSweepTask(payload BookingsSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBookingsSweep, data), nil
}

func ParseBookingsSweepPayload(task *asynq.Task) (BookingsSweepPayload, error) {
	var payload BookingsSweepPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return BookingsSweepPayload{}, err
	}
	return payload, nil
}
