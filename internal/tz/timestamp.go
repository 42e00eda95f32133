package tz

import "time"

const (
	// SimpleLayout carries no offset; text written with it cannot be mapped back to an instant
	// without knowing the zone that was in effect.
	SimpleLayout = "2006-01-02 15:04:05"
	// OffsetLayout is ISO-8601 with a numeric offset and round-trips through Parse.
	OffsetLayout = "2006-01-02T15:04:05-0700"
	// EpochMarker prefixes epoch-seconds text ("@1388577600").
	EpochMarker = "@"
	// NowMarker is the text form of the current instant.
	NowMarker = "now"
)

// Timestamp pairs an Instant with the Zone used to display it.
type Timestamp struct {
	instant Instant
	zone    Zone
}

// At builds a Timestamp. A zero zone renders as UTC but keeps reporting no name.
func At(i Instant, z Zone) Timestamp {
	return Timestamp{instant: i, zone: z}
}

// Instant returns the absolute point in time.
func (t Timestamp) Instant() Instant {
	return t.instant
}

// Zone returns the attached zone.
func (t Timestamp) Zone() Zone {
	return t.zone
}

// Epoch is shorthand for t.Instant().Epoch().
func (t Timestamp) Epoch() int64 {
	return t.instant.sec
}

// Equal reports whether both the instant and the attached zone match.
// Use t.Instant().Equal to compare points in time only.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.instant.Equal(other.instant) && t.zone.Equal(other.zone)
}

// In re-expresses the same instant in z.
func (t Timestamp) In(z Zone) Timestamp {
	return Timestamp{instant: t.instant, zone: z}
}

// Time returns a time.Time in the attached zone's location.
func (t Timestamp) Time() time.Time {
	return time.Unix(t.instant.sec, 0).In(t.zone.Location())
}

// Offset returns the UTC offset (seconds) the attached zone applies at this instant.
func (t Timestamp) Offset() int {
	return t.zone.OffsetAt(t.instant)
}

// Format renders t with a Go reference layout in the attached zone.
func (t Timestamp) Format(layout string) string {
	return t.Time().Format(layout)
}

// String renders the offset form followed by the zone name.
func (t Timestamp) String() string {
	return t.Format(OffsetLayout) + " " + t.zone.String()
}
