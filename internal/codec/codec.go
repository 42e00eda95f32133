// Package codec serializes timestamps to text and back.
//
// Only EncodingOffset and EncodingEpoch preserve the instant on their own.
// EncodingSimple drops the zone, so decoding it depends on whichever zone the
// reader supplies or has in effect at reload time.
package codec

import (
	"fmt"
	"strconv"

	"github.com/JakeFAU/tzverify/internal/tz"
)

// Encoding names a text representation of a timestamp.
type Encoding string

const (
	// EncodingSimple writes tz.SimpleLayout (no offset).
	EncodingSimple Encoding = "simple"
	// EncodingOffset writes tz.OffsetLayout (ISO-8601 with numeric offset).
	EncodingOffset Encoding = "offset"
	// EncodingEpoch writes the epoch marker form ("@1388577600").
	EncodingEpoch Encoding = "epoch"
)

// Encodings lists every supported encoding.
var Encodings = []Encoding{EncodingSimple, EncodingOffset, EncodingEpoch}

// ParseEncoding validates an encoding name.
func ParseEncoding(name string) (Encoding, error) {
	for _, enc := range Encodings {
		if string(enc) == name {
			return enc, nil
		}
	}
	return "", fmt.Errorf("unknown encoding %q", name)
}

// Lossless reports whether text in this encoding identifies the instant by itself.
func (e Encoding) Lossless() bool {
	return e == EncodingOffset || e == EncodingEpoch
}

// Encode renders ts in enc.
func Encode(ts tz.Timestamp, enc Encoding) (string, error) {
	switch enc {
	case EncodingSimple:
		return ts.Format(tz.SimpleLayout), nil
	case EncodingOffset:
		return ts.Format(tz.OffsetLayout), nil
	case EncodingEpoch:
		return tz.EpochMarker + strconv.FormatInt(ts.Epoch(), 10), nil
	default:
		return "", fmt.Errorf("unknown encoding %q", enc)
	}
}

// Decode parses text written by Encode. A non-zero zone is passed to the
// parser explicitly; otherwise env's fallback zone applies to simple text.
func Decode(env tz.Env, text string, zone tz.Zone) (tz.Timestamp, error) {
	var (
		ts  tz.Timestamp
		err error
	)
	if zone.IsZero() {
		ts, err = env.Parse(text)
	} else {
		ts, err = env.ParseIn(text, zone)
	}
	if err != nil {
		return tz.Timestamp{}, fmt.Errorf("decode %q: %w", text, err)
	}
	return ts, nil
}
