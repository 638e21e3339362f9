// Package event computes the recurring weekly event window: when the queue
// opens, when the night formally starts, and when it ends.
package event

import (
	"fmt"
	"time"
	// Embed tzdata for environments without zoneinfo.
	_ "time/tzdata"

	"github.com/alexey-nikolaev/bhqueue/internal/core/domain"
)

// The weekly schedule in club-local time: queue opens Saturday evening, the
// night formally starts just before midnight and runs through Monday morning.
const (
	queueOpensHour   = 21
	queueOpensMinute = 0
	startHour        = 23
	startMinute      = 59
	endHour          = 8
	endMinute        = 0
	// endDayOffset is how many days after the opening Saturday the event ends.
	endDayOffset = 2

	daysPerWeek = 7
)

// DefaultTimezone is the club's local time zone.
const DefaultTimezone = "Europe/Berlin"

// Calculator derives event windows for a configured local time zone. All
// returned instants are UTC.
type Calculator struct {
	loc *time.Location
}

// NewCalculator resolves the club time zone. An empty name uses
// DefaultTimezone.
func NewCalculator(timezone string) (*Calculator, error) {
	if timezone == "" {
		timezone = DefaultTimezone
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid club timezone: %w", err)
	}

	return &Calculator{loc: loc}, nil
}

// CurrentOrNext returns the active window for now, or the next upcoming one.
// The phase is queue_open before the formal start, party_running until the
// end, and closed when no window is active (in which case the returned
// window is the next Saturday's).
func (c *Calculator) CurrentOrNext(now time.Time) (domain.EventWindow, bool, string) {
	local := now.In(c.loc)

	recent := recentSaturday(local)
	window := c.windowFor(recent)

	if window.Contains(now) {
		phase := domain.PhasePartyRunning
		if now.Before(window.StartsAt) {
			phase = domain.PhaseQueueOpen
		}

		return window, true, phase
	}

	next := nextSaturday(local)

	return c.windowFor(next), false, domain.PhaseClosed
}

// windowFor builds the window anchored on the given local Saturday date.
func (c *Calculator) windowFor(saturday time.Time) domain.EventWindow {
	y, m, d := saturday.Date()

	opens := time.Date(y, m, d, queueOpensHour, queueOpensMinute, 0, 0, c.loc)
	starts := time.Date(y, m, d, startHour, startMinute, 0, 0, c.loc)

	end := saturday.AddDate(0, 0, endDayOffset)
	ey, em, ed := end.Date()
	ends := time.Date(ey, em, ed, endHour, endMinute, 0, 0, c.loc)

	return domain.EventWindow{
		QueueOpensAt: opens.UTC(),
		StartsAt:     starts.UTC(),
		EndsAt:       ends.UTC(),
	}
}

// recentSaturday returns the most recent Saturday's date relative to the
// local time, counting the current day when it is Saturday and yesterday
// when it is Sunday (the night is still the same event).
func recentSaturday(local time.Time) time.Time {
	day := dateOnly(local)

	switch local.Weekday() {
	case time.Saturday:
		return day
	case time.Sunday:
		return day.AddDate(0, 0, -1)
	default:
		// Monday..Friday: step back to the Saturday before.
		back := int(local.Weekday()) + 1
		return day.AddDate(0, 0, -back)
	}
}

func nextSaturday(local time.Time) time.Time {
	day := dateOnly(local)

	ahead := (int(time.Saturday) - int(local.Weekday()) + daysPerWeek) % daysPerWeek
	if ahead == 0 {
		ahead = daysPerWeek
	}

	return day.AddDate(0, 0, ahead)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
