package campus

import (
	"fmt"
	"math"
)

// Timing holds the day layout of a run. Schedule times are simulation steps
// counted from the start of the day.
type Timing struct {
	StartOfDay    float64 // hour of day at step 0
	EndOfDay      float64
	ActivityHours float64
	PauseHours    float64
	RunSteps      float64 // total steps of the run
}

func DefaultTiming() Timing {
	return Timing{
		StartOfDay:    DefaultStartOfDay,
		EndOfDay:      DefaultEndOfDay,
		ActivityHours: DefaultActivityHours,
		PauseHours:    DefaultPauseHours,
	}
}

// StepsPerHour is floor(RunSteps / day length). A degenerate day yields 0.
func (t Timing) StepsPerHour() float64 {
	span := t.EndOfDay - t.StartOfDay
	if span <= 0 || t.RunSteps <= 0 {
		return 0
	}
	return math.Floor(t.RunSteps / span)
}

func (t Timing) ActivitySteps() float64 { return t.ActivityHours * t.StepsPerHour() }
func (t Timing) PauseSteps() float64    { return t.PauseHours * t.StepsPerHour() }

// HourOfDay converts a step offset back to a wall-clock hour.
func (t Timing) HourOfDay(step float64) float64 {
	sph := t.StepsPerHour()
	if sph <= 0 {
		return t.StartOfDay
	}
	return t.StartOfDay + step/sph
}

func (t Timing) Validate() error {
	if t.EndOfDay <= t.StartOfDay {
		return fmt.Errorf("end of day %.2f must be after start of day %.2f", t.EndOfDay, t.StartOfDay)
	}
	if t.ActivityHours < 0 || t.PauseHours < 0 {
		return fmt.Errorf("negative activity duration %.2f or pause %.2f", t.ActivityHours, t.PauseHours)
	}
	if t.StepsPerHour() < 1 {
		return fmt.Errorf("run of %.0f steps is shorter than one step per hour", t.RunSteps)
	}
	return nil
}

// LastActivityStart is the start step of the final activity of a day
// with the given number of activities.
func (t Timing) LastActivityStart(activities int) float64 {
	if activities <= 0 {
		return 0
	}
	return t.StepsPerHour() + float64(activities-1)*(t.ActivitySteps()+t.PauseSteps())
}

// ValidatePlan rejects days whose last activity would begin after the
// return home at EndOfDay * stepsPerHour.
func (t Timing) ValidatePlan(activities int) error {
	last, end := t.LastActivityStart(activities), t.EndOfDay*t.StepsPerHour()
	if last > end {
		return fmt.Errorf("%d activities start as late as step %.0f, after the return home at step %.0f",
			activities, last, end)
	}
	return nil
}

// Status is the position of a schedule entry relative to the clock.
type Status int

const (
	Future Status = iota + 1
	Active
	Past
)

func (s Status) String() string {
	switch s {
	case Future:
		return "future"
	case Active:
		return "active"
	case Past:
		return "past"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Evaluate places entry against now. The end is recomputed from t on every
// call. Both bounds of Active are strict, so now == entry.Start is Past.
func (t Timing) Evaluate(entry ScheduleEntry, now float64) Status {
	end := entry.Start + t.ActivitySteps()
	if now < entry.Start {
		return Future
	}
	if entry.Start < now && now < end {
		return Active
	}
	return Past
}
