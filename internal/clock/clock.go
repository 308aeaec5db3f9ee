package clock

import (
	"time"

	"github.com/fekuna/omnipos-replenishment-service/internal/model"
)

// Clock allows injecting time into use cases.
type Clock interface {
	Now() time.Time
}

type systemClock struct {
	loc *time.Location
}

// NewSystem returns a clock backed by time.Now in loc (UTC when nil).
func NewSystem(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return systemClock{loc: loc}
}

func (c systemClock) Now() time.Time {
	return time.Now().In(c.loc)
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// Today is the calendar date of c.Now() in the clock's location.
func Today(c Clock) model.Date {
	return model.DateOf(c.Now())
}
