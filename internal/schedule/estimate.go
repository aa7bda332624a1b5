package schedule

import (
	"time"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
)

// Estimate is the projected wall-clock duration to exhaust a campaign's
// recipients, expressed the way the dashboard displays it.
type Estimate struct {
	Days         int `json:"days"`
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Cycles       int `json:"cycles"`
	TotalMinutes int `json:"total_minutes"`
}

// CalendarEstimate is the calendar-aware projection: the day count only
// consumes configured send days. Unbounded means the recipient set can
// never drain (no send day configured).
type CalendarEstimate struct {
	Estimate
	CalendarDays int        `json:"calendar_days"`
	CompletesAt  *time.Time `json:"completes_at,omitempty"`
	Unbounded    bool       `json:"unbounded"`
}

// hasSendDay reports whether any configured day can ever match the
// gate. AllowsDay only produces values 1..7, so a set like {0} would
// make the calendar walk below loop without terminating.
func (s Schedule) hasSendDay() bool {
	for _, d := range s.SendDays {
		if d >= 1 && d <= 7 {
			return true
		}
	}
	return false
}

func (s Schedule) sendMinutesPerCycle() int {
	if s.SendMinutesPerCycle > 0 {
		return s.SendMinutesPerCycle
	}
	return 1
}

// EstimateDuration projects total send time assuming every calendar day
// offers the daily window. Reproduces the historical dashboard
// arithmetic, which ignores SendDays; whether a send actually happens
// is decided by the gate, never by the estimate.
func (s Schedule) EstimateDuration(totalRecipients int) (Estimate, error) {
	if err := s.Validate(); err != nil {
		return Estimate{}, err
	}

	cycles := CyclesNeeded(totalRecipients, s.EmailsPerCycle)
	if cycles == 0 {
		return Estimate{}, nil
	}

	totalMinutes := cycles*s.CycleIntervalMinutes + cycles*s.sendMinutesPerCycle()
	window := s.DailyWindowMinutes()

	remaining := totalMinutes % window
	return Estimate{
		Days:         totalMinutes / window,
		Hours:        remaining / 60,
		Minutes:      remaining % 60,
		Cycles:       cycles,
		TotalMinutes: totalMinutes,
	}, nil
}

// EstimateCalendar maps the duration onto real calendar days starting
// at from, skipping weekdays outside SendDays. An empty day set yields
// an unbounded result instead of a finite duration.
func (s Schedule) EstimateCalendar(totalRecipients int, from time.Time) (CalendarEstimate, error) {
	if !s.hasSendDay() {
		return CalendarEstimate{Unbounded: true}, nil
	}

	base, err := s.EstimateDuration(totalRecipients)
	if err != nil {
		return CalendarEstimate{}, err
	}
	if base.Cycles == 0 {
		return CalendarEstimate{Estimate: base}, nil
	}

	window := s.DailyWindowMinutes()
	startMin, _ := minutesOfDay(s.SendTimeStart)

	remaining := base.TotalMinutes
	day := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, from.Location())
	calendarDays := 0
	// Bounded: at least one weekday is a send day, so each 7-day stride
	// consumes at least one window.
	for remaining > 0 {
		if s.AllowsDay(day.Weekday()) {
			calendarDays++
			if remaining <= window {
				completes := day.Add(time.Duration(startMin+remaining) * time.Minute)
				return CalendarEstimate{
					Estimate:     base,
					CalendarDays: calendarDays,
					CompletesAt:  &completes,
				}, nil
			}
			remaining -= window
		}
		day = day.AddDate(0, 0, 1)
	}
	return CalendarEstimate{Estimate: base}, nil
}

// EstimateFor validates totalRecipients and dispatches on the requested
// mode ("calendar" or default faithful).
func (s Schedule) EstimateFor(totalRecipients int, mode string, now time.Time) (interface{}, error) {
	if totalRecipients < 0 {
		return nil, apperrors.NewInvalidSchedule("total recipients cannot be negative")
	}
	if mode == "calendar" {
		return s.EstimateCalendar(totalRecipients, now)
	}
	return s.EstimateDuration(totalRecipients)
}
