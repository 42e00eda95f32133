// Package display renders instants for end users with CLDR/ICU-style patterns
// such as "yyyy-MM-dd HH:mm:ss". The target zone is always explicit: callers
// pair the stored instant with the reader's zone, then format.
package display

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vjeantet/jodaTime"

	"github.com/JakeFAU/tzverify/internal/tz"
)

// Pattern is a compiled display pattern.
type Pattern struct {
	source string
	fields []field
}

type field struct {
	letter  byte
	width   int
	literal string
}

// Compile parses an ICU-style pattern. Letters are pattern fields, text inside
// single quotes is literal ('' is a quote), and any other character is copied.
func Compile(pattern string) (*Pattern, error) {
	p := &Pattern{source: pattern}
	for i := 0; i < len(pattern); {
		c := pattern[i]
		switch {
		case c == '\'':
			lit, next, err := quoted(pattern, i)
			if err != nil {
				return nil, err
			}
			p.fields = append(p.fields, field{literal: lit})
			i = next
		case isLetter(c):
			j := i
			for j < len(pattern) && pattern[j] == c {
				j++
			}
			f := field{letter: c, width: j - i}
			if !supported(f) {
				return nil, &tz.FormatError{
					Input:  pattern,
					Reason: fmt.Sprintf("unsupported field %q", pattern[i:j]),
				}
			}
			p.fields = append(p.fields, f)
			i = j
		default:
			p.fields = append(p.fields, field{literal: string(c)})
			i++
		}
	}
	return p, nil
}

// MustCompile is Compile for patterns known at compile time.
func MustCompile(pattern string) *Pattern {
	p, err := Compile(pattern)
	if err != nil {
		panic(err)
	}
	return p
}

// String returns the source pattern.
func (p *Pattern) String() string {
	return p.source
}

// Format renders ts in its attached zone.
func (p *Pattern) Format(ts tz.Timestamp) string {
	t := ts.Time()
	var b strings.Builder
	for _, f := range p.fields {
		if f.letter == 0 {
			b.WriteString(f.literal)
			continue
		}
		b.WriteString(render(f, t, ts.Zone()))
	}
	return b.String()
}

// Render pairs i with target and formats it with pattern.
func Render(i tz.Instant, target tz.Zone, pattern string) (string, error) {
	p, err := Compile(pattern)
	if err != nil {
		return "", err
	}
	return p.Format(i.In(target)), nil
}

// RenderName is Render with a zone identifier.
func RenderName(i tz.Instant, targetZone, pattern string) (string, error) {
	z, err := tz.LoadZone(targetZone)
	if err != nil {
		return "", err
	}
	return Render(i, z, pattern)
}

func quoted(pattern string, start int) (string, int, error) {
	if start+1 < len(pattern) && pattern[start+1] == '\'' {
		return "'", start + 2, nil
	}
	var b strings.Builder
	for i := start + 1; i < len(pattern); i++ {
		if pattern[i] != '\'' {
			b.WriteByte(pattern[i])
			continue
		}
		if i+1 < len(pattern) && pattern[i+1] == '\'' {
			b.WriteByte('\'')
			i++
			continue
		}
		return b.String(), i + 1, nil
	}
	return "", 0, &tz.FormatError{Input: pattern, Reason: "unterminated quote"}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func supported(f field) bool {
	switch f.letter {
	case 'y', 'M', 'L':
		return f.width <= 4
	case 'd', 'H', 'h', 'm', 's', 'k', 'K':
		return f.width <= 2
	case 'a':
		return f.width == 1
	case 'E':
		return f.width <= 4
	case 'D':
		return f.width <= 3
	case 'S':
		return f.width <= 9
	case 'Z':
		return f.width <= 5
	case 'X', 'x':
		return f.width <= 3
	case 'z':
		return f.width <= 4
	case 'V':
		return f.width == 2
	default:
		return false
	}
}

func pad(n, width int) string {
	s := strconv.Itoa(n)
	for len(s) < width {
		s = "0" + s
	}
	return s
}

// jodaLetters are fields whose Joda meaning matches ICU; jodaTime renders them.
// Zone and offset fields differ between the two and are rendered here.
var jodaLetters = map[byte]byte{
	'y': 'y', 'M': 'M', 'L': 'M', 'd': 'd', 'D': 'D',
	'H': 'H', 'h': 'h', 'k': 'k', 'K': 'K', 'm': 'm', 's': 's', 'S': 'S',
	'a': 'a', 'E': 'E',
}

func render(f field, t time.Time, zone tz.Zone) string {
	if letter, ok := jodaLetters[f.letter]; ok {
		return jodaTime.Format(strings.Repeat(string(letter), f.width), t)
	}
	_, offset := t.Zone()
	switch f.letter {
	case 'Z':
		if f.width == 4 {
			return "GMT" + isoOffset(offset, true, false)
		}
		if f.width == 5 {
			return isoOffset(offset, true, true)
		}
		return isoOffset(offset, false, false)
	case 'X', 'x':
		if f.letter == 'X' && offset == 0 {
			return "Z"
		}
		switch f.width {
		case 1:
			if offset%3600 == 0 {
				return isoOffset(offset, false, false)[:3]
			}
			return isoOffset(offset, false, false)
		case 2:
			return isoOffset(offset, false, false)
		default:
			return isoOffset(offset, true, false)
		}
	case 'z':
		if f.width == 4 {
			return zone.Name()
		}
		abbr, _ := t.Zone()
		return abbr
	case 'V':
		return zone.Name()
	}
	return ""
}

// isoOffset renders ±HHMM, or ±HH:MM when colon is set; zulu renders zero as "Z".
func isoOffset(offset int, colon, zulu bool) string {
	if zulu && offset == 0 {
		return "Z"
	}
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	sep := ""
	if colon {
		sep = ":"
	}
	return sign + pad(offset/3600, 2) + sep + pad((offset%3600)/60, 2)
}
