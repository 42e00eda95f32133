package tz

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Shape classifies input text; it decides which zone governs instant computation.
type Shape int

const (
	// ShapePlain is local wall time with no zone information ("2014-01-01 12:00:00").
	ShapePlain Shape = iota
	// ShapeOffset carries a numeric offset ("2014-01-01 12:00:00 +0000").
	ShapeOffset
	// ShapeRegion carries an IANA zone name ("2014-01-01 12:00:00 Europe/Paris").
	ShapeRegion
	// ShapeEpoch is the epoch marker form ("@1388577600").
	ShapeEpoch
	// ShapeNow is the current-time marker ("now").
	ShapeNow
)

var shapeNames = map[Shape]string{
	ShapePlain:  "plain",
	ShapeOffset: "offset",
	ShapeRegion: "region",
	ShapeEpoch:  "epoch",
	ShapeNow:    "now",
}

func (s Shape) String() string {
	if name, ok := shapeNames[s]; ok {
		return name
	}
	return "unknown"
}

// precedence is the decision table: given the zone found in the text, the
// caller's explicit zone and the fallback, it returns the zone to compute with.
// The attached zone is always the same as the computing zone.
var precedence = map[Shape]func(text, explicit, fallback Zone) Zone{
	ShapePlain:  explicitOrFallback,
	ShapeNow:    explicitOrFallback,
	ShapeOffset: textZone,
	ShapeRegion: textZone,
	ShapeEpoch:  func(_, _, _ Zone) Zone { return UTC() },
}

func explicitOrFallback(_, explicit, fallback Zone) Zone {
	if !explicit.IsZero() {
		return explicit
	}
	return fallback
}

func textZone(text, _, _ Zone) Zone {
	return text
}

// Resolve applies the precedence table for shape.
func Resolve(shape Shape, text, explicit, fallback Zone) Zone {
	rule, ok := precedence[shape]
	if !ok {
		return fallback
	}
	return rule(text, explicit, fallback)
}

// IgnoresExplicitZone reports whether an explicit zone argument has no effect on
// the instant computed for text of this shape.
func (s Shape) IgnoresExplicitZone() bool {
	explicit := FixedZone(3600)
	return !Resolve(s, UTC(), explicit, UTC()).Equal(explicit)
}

var (
	dateTimePattern = regexp.MustCompile(
		`^(\d{4})-(\d{2})-(\d{2})(?:[T ](\d{2}):(\d{2})(?::(\d{2}))?)?(?:(\s*)(\S+))?$`)
	attachedOffsetPattern = regexp.MustCompile(`^(?:[Zz]|[+-]\d{2}(?::?\d{2})?)$`)
	regionPattern         = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_+\-]*(?:/[A-Za-z0-9_+\-]+)*$`)
)

type wallClock struct {
	year                int
	month               time.Month
	day, hour, min, sec int
}

type token struct {
	shape Shape
	wall  wallClock
	epoch int64
	zone  Zone
}

// Classify reports the shape of text, or an error if text is not recognized.
func Classify(text string) (Shape, error) {
	tok, err := scan(text)
	if err != nil {
		return ShapePlain, err
	}
	return tok.shape, nil
}

func scan(text string) (token, error) {
	s := strings.TrimSpace(text)
	switch {
	case s == "":
		return token{}, formatErr(text, "empty input")
	case strings.EqualFold(s, NowMarker):
		return token{shape: ShapeNow}, nil
	case strings.HasPrefix(s, EpochMarker):
		sec, err := strconv.ParseInt(s[len(EpochMarker):], 10, 64)
		if err != nil {
			return token{}, formatErr(text, "epoch marker must be followed by an integer")
		}
		return token{shape: ShapeEpoch, epoch: sec}, nil
	}

	m := dateTimePattern.FindStringSubmatch(s)
	if m == nil {
		return token{}, formatErr(text, "expected YYYY-MM-DD[ HH:MM[:SS]][ zone]")
	}
	wall, err := wallFromMatch(text, m)
	if err != nil {
		return token{}, err
	}
	tok := token{shape: ShapePlain, wall: wall}
	separated, suffix := m[7] != "", m[8]
	if suffix == "" {
		return tok, nil
	}
	if !separated && !attachedOffsetPattern.MatchString(suffix) {
		return token{}, formatErr(text, "unexpected trailing text "+strconv.Quote(suffix))
	}
	if offset, ok := parseOffset(suffix); ok {
		tok.shape = ShapeOffset
		tok.zone = FixedZone(offset)
		return tok, nil
	}
	if !regionPattern.MatchString(suffix) {
		return token{}, formatErr(text, "unrecognized zone suffix "+strconv.Quote(suffix))
	}
	z, err := LoadZone(suffix)
	if err != nil {
		// Bare words such as "noon" are malformed text; only Area/Location names
		// are reported as unknown zones.
		if !strings.Contains(suffix, "/") {
			return token{}, formatErr(text, "unrecognized zone suffix "+strconv.Quote(suffix))
		}
		return token{}, err
	}
	if z.IsFixed() {
		tok.shape = ShapeOffset
	} else {
		tok.shape = ShapeRegion
	}
	tok.zone = z
	return tok, nil
}

func wallFromMatch(text string, m []string) (wallClock, error) {
	atoi := func(s string) int {
		if s == "" {
			return 0
		}
		n, _ := strconv.Atoi(s)
		return n
	}
	w := wallClock{
		year:  atoi(m[1]),
		month: time.Month(atoi(m[2])),
		day:   atoi(m[3]),
		hour:  atoi(m[4]),
		min:   atoi(m[5]),
		sec:   atoi(m[6]),
	}
	if w.month < time.January || w.month > time.December {
		return wallClock{}, formatErr(text, "month out of range")
	}
	if w.day < 1 || w.day > daysIn(w.year, w.month) {
		return wallClock{}, formatErr(text, "day out of range")
	}
	if w.hour > 23 || w.min > 59 || w.sec > 59 {
		return wallClock{}, formatErr(text, "time of day out of range")
	}
	return w, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// localToInstant maps a wall clock reading in z to an instant. Readings that
// occur twice (DST fall-back) resolve to the earlier instant; readings that
// never occur (spring-forward gap) use the offset in effect before the
// transition, which pushes the wall clock forward by the gap.
func localToInstant(w wallClock, z Zone) Instant {
	loc := z.Location()
	naive := time.Date(w.year, w.month, w.day, w.hour, w.min, w.sec, 0, time.UTC).Unix()

	var best int64
	found := false
	for _, probe := range []int64{naive - 86400, naive, naive + 86400} {
		offset := offsetAt(loc, probe)
		candidate := naive - int64(offset)
		if offsetAt(loc, candidate) != offset {
			continue
		}
		if !found || candidate < best {
			best, found = candidate, true
		}
	}
	if !found {
		best = naive - int64(offsetAt(loc, naive-86400))
	}
	return Unix(best)
}
