package tz

import (
	"strconv"
	"time"
)

// Instant is an absolute point in time: whole seconds since the Unix epoch.
// It carries no zone, so two Instants are equal iff their epoch counts are.
type Instant struct {
	sec int64
}

// Unix returns the Instant sec seconds after the epoch.
func Unix(sec int64) Instant {
	return Instant{sec: sec}
}

// InstantOf truncates t to whole seconds and drops its location.
func InstantOf(t time.Time) Instant {
	return Instant{sec: t.Unix()}
}

// Epoch returns the elapsed seconds since 1970-01-01T00:00:00Z.
func (i Instant) Epoch() int64 {
	return i.sec
}

// Equal compares epoch values only.
func (i Instant) Equal(other Instant) bool {
	return i.sec == other.sec
}

// Before reports whether i is earlier than other.
func (i Instant) Before(other Instant) bool {
	return i.sec < other.sec
}

// Add shifts the instant by d, truncated to seconds.
func (i Instant) Add(d time.Duration) Instant {
	return Instant{sec: i.sec + int64(d/time.Second)}
}

// Sub returns i - other.
func (i Instant) Sub(other Instant) time.Duration {
	return time.Duration(i.sec-other.sec) * time.Second
}

// Time returns the instant as a UTC time.Time.
func (i Instant) Time() time.Time {
	return time.Unix(i.sec, 0).UTC()
}

// In pairs the instant with z for display.
func (i Instant) In(z Zone) Timestamp {
	return At(i, z)
}

// String renders the epoch-marker form, e.g. "@1388577600".
func (i Instant) String() string {
	return EpochMarker + strconv.FormatInt(i.sec, 10)
}
