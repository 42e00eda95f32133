package tz

import (
	"time"

	"github.com/JakeFAU/tzverify/internal/clock/system"
)

// Clock returns the current time.
type Clock interface {
	Now() time.Time
}

// Env carries the configuration every construction depends on. A zero Env
// uses the system clock and the process-wide ambient zone.
type Env struct {
	Clock    Clock
	Fallback ZoneSource
}

// NewEnv returns an Env with an explicit clock and fallback zone source.
func NewEnv(clock Clock, fallback ZoneSource) Env {
	return Env{Clock: clock, Fallback: fallback}
}

func (e Env) clock() Clock {
	if e.Clock == nil {
		return system.New()
	}
	return e.Clock
}

// FallbackZone returns the zone used when a construction has none.
func (e Env) FallbackZone() Zone {
	if e.Fallback == nil {
		return process.DefaultZone()
	}
	return e.Fallback.DefaultZone()
}

// Now returns the current instant in the fallback zone.
func (e Env) Now() Timestamp {
	return At(InstantOf(e.clock().Now()), e.FallbackZone())
}

// NowIn returns the current instant in z.
func (e Env) NowIn(z Zone) Timestamp {
	return At(InstantOf(e.clock().Now()), z)
}

// Parse constructs a Timestamp from text using the fallback zone for plain text.
func (e Env) Parse(text string) (Timestamp, error) {
	return e.parse(text, Zone{})
}

// ParseIn constructs a Timestamp from text with an explicit zone. The zone is
// ignored when text carries its own offset, its own region, or is an epoch marker.
func (e Env) ParseIn(text string, z Zone) (Timestamp, error) {
	return e.parse(text, z)
}

// ParseInName is ParseIn with a zone identifier.
func (e Env) ParseInName(text, zoneName string) (Timestamp, error) {
	z, err := LoadZone(zoneName)
	if err != nil {
		return Timestamp{}, err
	}
	return e.parse(text, z)
}

// FormatInstant renders i in the fallback zone. The output depends on whichever
// zone is in effect, so it cannot be mapped back to i without that zone.
func (e Env) FormatInstant(i Instant, layout string) string {
	return At(i, e.FallbackZone()).Format(layout)
}

func (e Env) parse(text string, explicit Zone) (Timestamp, error) {
	tok, err := scan(text)
	if err != nil {
		return Timestamp{}, err
	}
	zone := Resolve(tok.shape, tok.zone, explicit, e.FallbackZone())
	switch tok.shape {
	case ShapeNow:
		return At(InstantOf(e.clock().Now()), zone), nil
	case ShapeEpoch:
		return At(Unix(tok.epoch), zone), nil
	default:
		return At(localToInstant(tok.wall, zone), zone), nil
	}
}

// Now returns the current instant in the process-wide ambient zone.
func Now() Timestamp {
	return Env{}.Now()
}

// Parse constructs a Timestamp using the process-wide ambient zone for plain text.
func Parse(text string) (Timestamp, error) {
	return Env{}.Parse(text)
}

// ParseIn constructs a Timestamp with an explicit zone.
func ParseIn(text string, z Zone) (Timestamp, error) {
	return Env{}.ParseIn(text, z)
}
