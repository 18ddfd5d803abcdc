// Package clock renders wall-clock time in a fixed location.
package clock

import (
	"fmt"
	"time"
	_ "time/tzdata" // zone data for scratch images without /usr/share/zoneinfo
)

// Layout renders as "YYYY-MM-DD HH:MM:SS <zone abbreviation>".
const Layout = "2006-01-02 15:04:05 MST"

type Clock struct {
	loc  *time.Location
	city string
	now  func() time.Time
}

// New loads tz once. Callers treat an error as fatal at startup.
func New(tz, city string) (*Clock, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return &Clock{loc: loc, city: city, now: time.Now}, nil
}

// WithNow returns a copy of c reading time from now.
func (c *Clock) WithNow(now func() time.Time) *Clock {
	cp := *c
	cp.now = now
	return &cp
}

func (c *Clock) Now() time.Time {
	return c.now().In(c.loc)
}

func (c *Clock) Format() string {
	return c.Now().Format(Layout)
}

func (c *Clock) City() string {
	return c.city
}

func (c *Clock) Location() *time.Location {
	return c.loc
}
