package tz

import (
	"os"
	"sync/atomic"
)

// ZoneSource supplies the fallback zone for constructions without an explicit zone.
type ZoneSource interface {
	DefaultZone() Zone
}

// Ambient is a mutable fallback zone. Changing it affects only constructions
// that happen afterwards; existing Timestamps keep their zone.
//
// Reads and writes are atomic, but nothing orders a Set in one goroutine
// against a Parse in another: identical text can yield different instants
// depending on which happens first.
type Ambient struct {
	zone atomic.Pointer[Zone]
}

// NewAmbient returns an Ambient initialised to z.
func NewAmbient(z Zone) *Ambient {
	a := &Ambient{}
	a.Set(z)
	return a
}

// DefaultZone implements ZoneSource.
func (a *Ambient) DefaultZone() Zone {
	if z := a.zone.Load(); z != nil {
		return *z
	}
	return UTC()
}

// Set replaces the fallback zone.
func (a *Ambient) Set(z Zone) {
	a.zone.Store(&z)
}

// SetName resolves name and replaces the fallback zone.
func (a *Ambient) SetName(name string) error {
	z, err := LoadZone(name)
	if err != nil {
		return err
	}
	a.Set(z)
	return nil
}

type pinned struct {
	zone Zone
}

func (p pinned) DefaultZone() Zone {
	return p.zone
}

// Pinned returns a ZoneSource that always yields z.
func Pinned(z Zone) ZoneSource {
	return pinned{zone: z}
}

var process = NewAmbient(zoneFromEnv())

// zoneFromEnv mirrors the runtime's own rule: TZ unset or empty means UTC.
func zoneFromEnv() Zone {
	name, found := os.LookupEnv("TZ")
	if !found || name == "" {
		return UTC()
	}
	z, err := LoadZone(name)
	if err != nil {
		return UTC()
	}
	return z
}

// Process returns the process-wide ambient default zone.
func Process() *Ambient {
	return process
}

// SetDefaultTimezone changes the process-wide ambient default zone.
func SetDefaultTimezone(name string) error {
	return process.SetName(name)
}

// DefaultTimezone returns the process-wide ambient default zone.
func DefaultTimezone() Zone {
	return process.DefaultZone()
}
