package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/leadsynch/leadsynch-backend/internal/apperrors"
)

// Defaults applied when a campaign is created without explicit pacing.
const (
	DefaultEmailsPerCycle       = 50
	DefaultCycleIntervalMinutes = 10
	DefaultSendTimeStart        = "08:00"
	DefaultSendTimeEnd          = "18:00"
)

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// Schedule is the pacing configuration of one campaign: batch size,
// inter-batch pause and the daily window in which sending is allowed.
type Schedule struct {
	EmailsPerCycle       int
	CycleIntervalMinutes int
	SendDays             []int  // 1=Monday .. 7=Sunday
	SendTimeStart        string // "HH:MM"
	SendTimeEnd          string // "HH:MM", same day, strictly after start
	// SendMinutesPerCycle models the transmission time of one batch.
	// Zero means the historical one-minute approximation.
	SendMinutesPerCycle int
}

// Validate rejects malformed schedules before any estimation or send
// decision. All failures are apperrors.ErrInvalidSchedule.
func (s Schedule) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.EmailsPerCycle, validation.Required, validation.Min(1)),
		validation.Field(&s.CycleIntervalMinutes, validation.Min(0)),
		validation.Field(&s.SendDays, validation.Required, validation.Each(validation.By(validDay))),
		validation.Field(&s.SendTimeStart, validation.Required, validation.Match(timeOfDayRe)),
		validation.Field(&s.SendTimeEnd, validation.Required, validation.Match(timeOfDayRe)),
	)
	if err != nil {
		return apperrors.NewInvalidSchedule(err.Error())
	}

	start, _ := minutesOfDay(s.SendTimeStart)
	end, _ := minutesOfDay(s.SendTimeEnd)
	if end-start <= 0 {
		return apperrors.NewInvalidSchedule(
			fmt.Sprintf("send window %s-%s is empty or inverted", s.SendTimeStart, s.SendTimeEnd))
	}
	return nil
}

// validDay bounds one send day. Threshold rules cannot be used here:
// ozzo treats the int zero value as empty and skips them, letting day 0
// through even though the gate can never match it.
func validDay(value interface{}) error {
	d, _ := value.(int)
	if d < 1 || d > 7 {
		return errors.New("must be between 1 (Monday) and 7 (Sunday)")
	}
	return nil
}

// DailyWindowMinutes is the length of the allowed daily window. Zero or
// negative values only occur on schedules Validate would reject.
func (s Schedule) DailyWindowMinutes() int {
	start, err := minutesOfDay(s.SendTimeStart)
	if err != nil {
		return 0
	}
	end, err := minutesOfDay(s.SendTimeEnd)
	if err != nil {
		return 0
	}
	return end - start
}

// AllowsDay reports whether the weekday is a configured send day.
// time.Weekday counts Sunday as 0; the schedule counts it as 7.
func (s Schedule) AllowsDay(day time.Weekday) bool {
	d := int(day)
	if d == 0 {
		d = 7
	}
	for _, sd := range s.SendDays {
		if sd == d {
			return true
		}
	}
	return false
}

// IsSendAllowed is the time-window gate: true iff now falls on a send
// day and inside the half-open interval [start, end). Pure; assumes the
// schedule already passed Validate.
func (s Schedule) IsSendAllowed(now time.Time) bool {
	if !s.AllowsDay(now.Weekday()) {
		return false
	}
	start, err := minutesOfDay(s.SendTimeStart)
	if err != nil {
		return false
	}
	end, err := minutesOfDay(s.SendTimeEnd)
	if err != nil {
		return false
	}
	cur := now.Hour()*60 + now.Minute()
	return cur >= start && cur < end
}

// CyclesNeeded splits totalRecipients into batches of emailsPerCycle.
func CyclesNeeded(totalRecipients, emailsPerCycle int) int {
	if totalRecipients <= 0 || emailsPerCycle < 1 {
		return 0
	}
	return (totalRecipients + emailsPerCycle - 1) / emailsPerCycle
}

func minutesOfDay(hhmm string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(hhmm, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("malformed time of day %q: %w", hhmm, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("time of day %q out of range", hhmm)
	}
	return h*60 + m, nil
}
