package tz

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
)

// Zone is a named offset rule: either a fixed offset such as "+00:00" or an
// IANA region such as "Europe/Paris" whose offset follows DST rules.
type Zone struct {
	name  string
	loc   *time.Location
	fixed bool
}

var utcFixed = FixedZone(0)

// UTC returns the fixed "+00:00" zone attached to epoch and Z-suffixed input.
func UTC() Zone {
	return utcFixed
}

// FixedZone builds a zone with a constant offset (seconds east of UTC).
func FixedZone(offsetSeconds int) Zone {
	name := formatOffset(offsetSeconds)
	return Zone{name: name, loc: time.FixedZone(name, offsetSeconds), fixed: true}
}

// LoadZone resolves an offset ("+02:00", "-0800", "Z") or an IANA name.
func LoadZone(name string) (Zone, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || strings.EqualFold(trimmed, "local") {
		return Zone{}, &UnknownTimezoneError{Name: name}
	}
	if offset, ok := parseOffset(trimmed); ok {
		return FixedZone(offset), nil
	}
	return zones.Load().lookup(trimmed)
}

// MustLoadZone is LoadZone for identifiers known at compile time.
func MustLoadZone(name string) Zone {
	z, err := LoadZone(name)
	if err != nil {
		panic(err)
	}
	return z
}

// Name returns the canonical identifier, e.g. "Europe/Paris" or "+00:00".
func (z Zone) Name() string {
	return z.name
}

// String implements fmt.Stringer.
func (z Zone) String() string {
	if z.IsZero() {
		return "<none>"
	}
	return z.name
}

// IsFixed reports whether the zone is a constant offset.
func (z Zone) IsFixed() bool {
	return z.fixed
}

// IsZero reports whether z is the unset zone.
func (z Zone) IsZero() bool {
	return z.loc == nil
}

// Equal compares canonical identifiers.
func (z Zone) Equal(other Zone) bool {
	return z.name == other.name
}

// Location returns the backing *time.Location (UTC for the zero zone).
func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// OffsetAt returns the UTC offset in seconds in effect at i.
func (z Zone) OffsetAt(i Instant) int {
	return offsetAt(z.Location(), i.sec)
}

func offsetAt(loc *time.Location, sec int64) int {
	_, offset := time.Unix(sec, 0).In(loc).Zone()
	return offset
}

func formatOffset(offsetSeconds int) string {
	sign := '+'
	if offsetSeconds < 0 {
		sign = '-'
		offsetSeconds = -offsetSeconds
	}
	return fmt.Sprintf("%c%02d:%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60)
}

// parseOffset accepts Z, ±HH, ±HHMM and ±HH:MM.
func parseOffset(s string) (int, bool) {
	if s == "Z" || s == "z" {
		return 0, true
	}
	if len(s) < 3 || (s[0] != '+' && s[0] != '-') {
		return 0, false
	}
	digits := strings.Replace(s[1:], ":", "", 1)
	if len(digits) != 2 && len(digits) != 4 {
		return 0, false
	}
	if strings.Contains(s[1:], ":") && len(s) != 6 {
		return 0, false
	}
	hours, err := strconv.Atoi(digits[:2])
	if err != nil || hours > 23 {
		return 0, false
	}
	minutes := 0
	if len(digits) == 4 {
		minutes, err = strconv.Atoi(digits[2:])
		if err != nil || minutes > 59 {
			return 0, false
		}
	}
	offset := hours*3600 + minutes*60
	if s[0] == '-' {
		offset = -offset
	}
	return offset, true
}

// zoneCache memoizes IANA lookups; time.LoadLocation reads the tz database on every call.
type zoneCache struct {
	entries *cache.Cache
}

var zones = newZoneStore()

func newZoneStore() *atomic.Pointer[zoneCache] {
	p := &atomic.Pointer[zoneCache]{}
	p.Store(newZoneCache(cache.NoExpiration))
	return p
}

func newZoneCache(ttl time.Duration) *zoneCache {
	cleanup := 10 * time.Minute
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cleanup = 0
	}
	return &zoneCache{entries: cache.New(ttl, cleanup)}
}

// ConfigureZoneCache replaces the zone lookup cache. A ttl <= 0 keeps entries forever.
func ConfigureZoneCache(ttl time.Duration) {
	zones.Store(newZoneCache(ttl))
}

// CachedZones returns how many IANA zones are currently memoized.
func CachedZones() int {
	return zones.Load().entries.ItemCount()
}

func (c *zoneCache) lookup(name string) (Zone, error) {
	if v, ok := c.entries.Get(name); ok {
		if z, ok := v.(Zone); ok {
			return z, nil
		}
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, &UnknownTimezoneError{Name: name, Err: err}
	}
	z := Zone{name: loc.String(), loc: loc}
	c.entries.SetDefault(name, z)
	return z, nil
}
