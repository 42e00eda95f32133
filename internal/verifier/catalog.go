package verifier

import (
	"context"
	"fmt"
	"time"

	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/display"
	"github.com/JakeFAU/tzverify/internal/tz"
)

const (
	paris      = "Europe/Paris"
	losAngeles = "America/Los_Angeles"

	newYearNoon    = "2014-01-01 12:00:00"
	newYearNoonUTC = int64(1388577600)
	// 2014-01-01 12:00 in Paris.
	newYearNoonParis = int64(1388574000)
	// Los Angeles is nine hours behind Paris in January.
	parisToLA = int64(9 * 3600)
	// 2014-08-01 12:00 UTC.
	augustNoonUTC = int64(1406894400)
)

// Catalog returns every scenario in evaluation order.
func Catalog() []Scenario {
	return []Scenario{
		{
			Name:        "now-marker",
			Rule:        RuleConstruction,
			Description: `Parsing "now" yields the same timestamp as Now().`,
			Check:       checkNowMarker,
		},
		{
			Name:        "explicit-matches-ambient",
			Rule:        RuleAmbient,
			Description: "An explicit Paris zone and a Paris ambient zone construct identical timestamps.",
			Check:       checkExplicitMatchesAmbient,
		},
		{
			Name:        "ambient-divergence",
			Rule:        RuleAmbient,
			Description: "The same text under two ambient zones prints identically but names different instants.",
			Check:       checkAmbientDivergence,
		},
		{
			Name:        "explicit-divergence",
			Rule:        RuleAmbient,
			Description: "The same text with two explicit zones names different instants.",
			Check:       checkExplicitDivergence,
		},
		{
			Name:        "ambient-change-keeps-existing",
			Rule:        RuleAmbient,
			Description: "Changing the ambient zone leaves already constructed timestamps untouched.",
			Check:       checkAmbientChangeKeepsExisting,
		},
		{
			Name:        "offset-overrides-explicit",
			Rule:        RulePrecedence,
			Description: "Text with a numeric offset ignores the explicit zone and attaches +00:00.",
			Check:       checkOffsetOverridesExplicit,
		},
		{
			Name:        "epoch-overrides-explicit",
			Rule:        RulePrecedence,
			Description: "An epoch marker ignores the explicit zone and attaches +00:00.",
			Check:       checkEpochOverridesExplicit,
		},
		{
			Name:        "region-overrides-explicit",
			Rule:        RulePrecedence,
			Description: "Text naming its own region ignores the explicit zone.",
			Check:       checkRegionOverridesExplicit,
		},
		{
			Name:        "simple-dump-drifts",
			Rule:        RuleSerialization,
			Description: "A simple-pattern dump reloaded under another ambient zone names a different instant.",
			Check:       checkSimpleDumpDrifts,
		},
		{
			Name:        "simple-dump-with-original-zone",
			Rule:        RuleSerialization,
			Description: "A simple-pattern dump reloaded with the original zone supplied explicitly round-trips.",
			Check:       checkSimpleDumpWithOriginalZone,
		},
		{
			Name:        "offset-dump-round-trips",
			Rule:        RuleSerialization,
			Description: "An offset-pattern dump round-trips under any ambient zone.",
			Check:       lossless(codec.EncodingOffset),
		},
		{
			Name:        "epoch-dump-round-trips",
			Rule:        RuleSerialization,
			Description: "An epoch dump round-trips under any ambient zone.",
			Check:       lossless(codec.EncodingEpoch),
		},
		{
			Name:        "offset-layout-property",
			Rule:        RuleSerialization,
			Description: "Formatting with the offset layout and parsing back recovers the instant for every zone pairing.",
			Check:       checkOffsetLayoutProperty,
		},
		{
			Name:        "display-in-target-zone",
			Rule:        RuleDisplay,
			Description: "An instant paired with the reader's zone displays the reader's wall time.",
			Check:       checkDisplayInTargetZone,
		},
		{
			Name:        "equality-requires-zone",
			Rule:        RuleEquality,
			Description: "One instant in two zones is not equal as a timestamp but is equal as an instant.",
			Check:       checkEqualityRequiresZone,
		},
		{
			Name:        "with-zone-keeps-instant",
			Rule:        RuleEquality,
			Description: "Re-expressing a timestamp in another zone keeps its instant.",
			Check:       checkWithZoneKeepsInstant,
		},
		{
			Name:        "unknown-timezone",
			Rule:        RuleErrors,
			Description: "An unknown zone identifier fails with UnknownTimezoneError.",
			Check:       checkUnknownTimezone,
		},
		{
			Name:        "malformed-text",
			Rule:        RuleErrors,
			Description: "Unrecognized text fails with FormatError.",
			Check:       checkMalformedText,
		},
		{
			Name:        "dst-overlap-earlier",
			Rule:        RuleDST,
			Description: "A wall time that occurs twice resolves to the earlier instant.",
			Check:       checkDSTOverlap,
		},
		{
			Name:        "dst-gap-forward",
			Rule:        RuleDST,
			Description: "A wall time that never occurs shifts forward by the gap.",
			Check:       checkDSTGap,
		},
	}
}

func checkNowMarker(_ context.Context, h *Harness) error {
	if err := h.SetAmbient(paris); err != nil {
		return err
	}
	env := h.Env()
	marker, err := env.Parse(tz.NowMarker)
	if err != nil {
		return err
	}
	now := env.Now()
	return all(
		expectTrue("now marker equals Now()", marker.Equal(now)),
		expectEqual("now marker zone", paris, marker.Zone().Name()),
	)
}

func checkExplicitMatchesAmbient(_ context.Context, h *Harness) error {
	if err := h.SetAmbient(paris); err != nil {
		return err
	}
	env := h.Env()
	ambient, err := env.Parse(newYearNoon)
	if err != nil {
		return err
	}
	explicit, err := env.ParseInName(newYearNoon, paris)
	if err != nil {
		return err
	}
	return all(
		expectEqual("ambient epoch", newYearNoonParis, ambient.Epoch()),
		expectEqual("explicit epoch", newYearNoonParis, explicit.Epoch()),
		expectEqual("formatted text", ambient.Format(tz.SimpleLayout), explicit.Format(tz.SimpleLayout)),
		expectEqual("zone name", ambient.Zone().Name(), explicit.Zone().Name()),
		expectTrue("timestamps equal", ambient.Equal(explicit)),
	)
}

func checkAmbientDivergence(_ context.Context, h *Harness) error {
	if err := h.SetAmbient(paris); err != nil {
		return err
	}
	inParis, err := h.Env().Parse(newYearNoon)
	if err != nil {
		return err
	}
	if err := h.SetAmbient(losAngeles); err != nil {
		return err
	}
	inLA, err := h.Env().Parse(newYearNoon)
	if err != nil {
		return err
	}
	return all(
		expectEqual("formatted text", inParis.Format(tz.SimpleLayout), inLA.Format(tz.SimpleLayout)),
		expectEqual("epoch difference", parisToLA, inLA.Epoch()-inParis.Epoch()),
		expectNotEqual("zone name", inParis.Zone().Name(), inLA.Zone().Name()),
	)
}

func checkExplicitDivergence(_ context.Context, h *Harness) error {
	env := h.Env()
	inParis, err := env.ParseInName(newYearNoon, paris)
	if err != nil {
		return err
	}
	inLA, err := env.ParseInName(newYearNoon, losAngeles)
	if err != nil {
		return err
	}
	return all(
		expectEqual("formatted text", inParis.Format(tz.SimpleLayout), inLA.Format(tz.SimpleLayout)),
		expectEqual("epoch difference", parisToLA, inLA.Epoch()-inParis.Epoch()),
		expectTrue("timestamps differ", !inParis.Equal(inLA)),
	)
}

func checkAmbientChangeKeepsExisting(_ context.Context, h *Harness) error {
	if err := h.SetAmbient(paris); err != nil {
		return err
	}
	before, err := h.Env().Parse(newYearNoon)
	if err != nil {
		return err
	}
	snapshot := before
	if err := h.SetAmbient(losAngeles); err != nil {
		return err
	}
	return all(
		expectTrue("existing timestamp unchanged", before.Equal(snapshot)),
		expectEqual("existing zone", paris, before.Zone().Name()),
		expectEqual("existing text", newYearNoon, before.Format(tz.SimpleLayout)),
	)
}

// overridesExplicit parses text with Paris and Los Angeles as explicit zones
// and expects both to land on newYearNoonUTC in +00:00.
func overridesExplicit(h *Harness, text string) error {
	env := h.Env()
	inParis, err := env.ParseInName(text, paris)
	if err != nil {
		return err
	}
	inLA, err := env.ParseInName(text, losAngeles)
	if err != nil {
		return err
	}
	return all(
		expectEqual("epoch with Paris", newYearNoonUTC, inParis.Epoch()),
		expectEqual("epoch with Los Angeles", newYearNoonUTC, inLA.Epoch()),
		expectEqual("attached zone", "+00:00", inParis.Zone().Name()),
		expectTrue("timestamps equal", inParis.Equal(inLA)),
	)
}

func checkOffsetOverridesExplicit(_ context.Context, h *Harness) error {
	for _, text := range []string{"2014-01-01 12:00:00 +0000", "2014-01-01T12:00:00+0000"} {
		if err := overridesExplicit(h, text); err != nil {
			return err
		}
	}
	return nil
}

func checkEpochOverridesExplicit(_ context.Context, h *Harness) error {
	return overridesExplicit(h, fmt.Sprintf("%s%d", tz.EpochMarker, newYearNoonUTC))
}

func checkRegionOverridesExplicit(_ context.Context, h *Harness) error {
	ts, err := h.Env().ParseInName(newYearNoon+" "+paris, losAngeles)
	if err != nil {
		return err
	}
	return all(
		expectEqual("epoch", newYearNoonParis, ts.Epoch()),
		expectEqual("attached zone", paris, ts.Zone().Name()),
	)
}

// dumpUnderParis constructs the reference timestamp under a Paris ambient zone
// and writes it in enc, then switches the ambient zone to Los Angeles.
func dumpUnderParis(ctx context.Context, h *Harness, name string, enc codec.Encoding) (tz.Timestamp, []codec.Record, error) {
	if err := h.SetAmbient(paris); err != nil {
		return tz.Timestamp{}, nil, err
	}
	original, err := h.Env().Parse(newYearNoon)
	if err != nil {
		return tz.Timestamp{}, nil, err
	}
	rec, err := codec.EncodeRecord(name, original, enc)
	if err != nil {
		return tz.Timestamp{}, nil, err
	}
	dumpPath := h.DumpPath(name)
	if _, err := codec.Dump(ctx, h.Store, dumpPath, []codec.Record{rec}); err != nil {
		return tz.Timestamp{}, nil, err
	}
	if err := h.SetAmbient(losAngeles); err != nil {
		return tz.Timestamp{}, nil, err
	}
	records, err := codec.Reload(ctx, h.Store, dumpPath)
	if err != nil {
		return tz.Timestamp{}, nil, err
	}
	if len(records) != 1 {
		return tz.Timestamp{}, nil, fmt.Errorf("reload %s: expected 1 record, got %d", dumpPath, len(records))
	}
	return original, records, nil
}

func checkSimpleDumpDrifts(ctx context.Context, h *Harness) error {
	original, records, err := dumpUnderParis(ctx, h, "simple-drift", codec.EncodingSimple)
	if err != nil {
		return err
	}
	reloaded, err := codec.DecodeRecord(h.Env(), records[0], tz.Zone{})
	if err != nil {
		return err
	}
	return all(
		expectNotEqual("reloaded epoch", original.Epoch(), reloaded.Epoch()),
		expectEqual("epoch drift", parisToLA, reloaded.Epoch()-original.Epoch()),
		expectEqual("reloaded text", original.Format(tz.SimpleLayout), reloaded.Format(tz.SimpleLayout)),
	)
}

func checkSimpleDumpWithOriginalZone(ctx context.Context, h *Harness) error {
	original, records, err := dumpUnderParis(ctx, h, "simple-original-zone", codec.EncodingSimple)
	if err != nil {
		return err
	}
	reloaded, err := codec.DecodeRecord(h.Env(), records[0], original.Zone())
	if err != nil {
		return err
	}
	return all(
		expectEqual("reloaded epoch", original.Epoch(), reloaded.Epoch()),
		expectTrue("timestamps equal", original.Equal(reloaded)),
	)
}

func lossless(enc codec.Encoding) func(context.Context, *Harness) error {
	return func(ctx context.Context, h *Harness) error {
		original, records, err := dumpUnderParis(ctx, h, string(enc)+"-round-trip", enc)
		if err != nil {
			return err
		}
		reloaded, err := codec.DecodeRecord(h.Env(), records[0], tz.Zone{})
		if err != nil {
			return err
		}
		return all(
			expectTrue("encoding is lossless", enc.Lossless()),
			expectTrue("instants equal", original.Instant().Equal(reloaded.Instant())),
		)
	}
}

func checkOffsetLayoutProperty(_ context.Context, h *Harness) error {
	zones := []string{"UTC", paris, losAngeles, "Asia/Kolkata", "Australia/Lord_Howe", "+05:45", "-03:30"}
	instants := []int64{0, newYearNoonUTC, augustNoonUTC, -86400*365 + 17, 1711846800}
	for _, writer := range zones {
		zw, err := tz.LoadZone(writer)
		if err != nil {
			return err
		}
		for _, reader := range zones {
			if err := h.SetAmbient(reader); err != nil {
				return err
			}
			for _, sec := range instants {
				text := tz.Unix(sec).In(zw).Format(tz.OffsetLayout)
				back, err := h.Env().Parse(text)
				if err != nil {
					return err
				}
				what := fmt.Sprintf("%s written in %s read under %s", text, writer, reader)
				if err := expectEqual(what, sec, back.Epoch()); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func checkDisplayInTargetZone(_ context.Context, h *Harness) error {
	instant := tz.Unix(augustNoonUTC)
	shown, err := display.RenderName(instant, paris, "yyyy-MM-dd HH:mm:ss")
	if err != nil {
		return err
	}
	// Without pairing, the ambient zone (UTC here) decides what is shown.
	stored := h.Env().FormatInstant(instant, tz.SimpleLayout)
	return all(
		expectEqual("display in Paris", "2014-08-01 14:00:00", shown),
		expectEqual("display in stored zone", "2014-08-01 12:00:00", stored),
	)
}

func checkEqualityRequiresZone(_ context.Context, _ *Harness) error {
	instant := tz.Unix(newYearNoonUTC)
	zp, err := tz.LoadZone(paris)
	if err != nil {
		return err
	}
	zl, err := tz.LoadZone(losAngeles)
	if err != nil {
		return err
	}
	a, b := instant.In(zp), instant.In(zl)
	return all(
		expectTrue("timestamps differ", !a.Equal(b)),
		expectTrue("instants equal", a.Instant().Equal(b.Instant())),
	)
}

func checkWithZoneKeepsInstant(_ context.Context, h *Harness) error {
	ts, err := h.Env().Parse(tz.EpochMarker + fmt.Sprint(augustNoonUTC))
	if err != nil {
		return err
	}
	zp, err := tz.LoadZone(paris)
	if err != nil {
		return err
	}
	moved := ts.In(zp)
	return all(
		expectEqual("epoch", ts.Epoch(), moved.Epoch()),
		expectEqual("zone", paris, moved.Zone().Name()),
		expectEqual("wall time", "2014-08-01 14:00:00", moved.Format(tz.SimpleLayout)),
		expectEqual("original zone", "+00:00", ts.Zone().Name()),
	)
}

func checkUnknownTimezone(_ context.Context, h *Harness) error {
	_, err := h.Env().ParseInName(newYearNoon, "Mars/Olympus_Mons")
	if err := expectErrorIs("explicit zone lookup", err, tz.ErrUnknownTimezone); err != nil {
		return err
	}
	_, err = h.Env().Parse(newYearNoon + " Mars/Olympus_Mons")
	return expectErrorIs("zone named in text", err, tz.ErrUnknownTimezone)
}

func checkMalformedText(_ context.Context, h *Harness) error {
	for _, text := range []string{
		"yesterday",
		"2014-13-01 12:00:00",
		"2014-01-01 25:00:00",
		"@noon",
		"2014-01-01T12",
		"2014-01-01 noon",
	} {
		_, err := h.Env().Parse(text)
		if err := expectErrorIs(fmt.Sprintf("parse %q", text), err, tz.ErrFormat); err != nil {
			return err
		}
	}
	return nil
}

func checkDSTOverlap(_ context.Context, h *Harness) error {
	// Paris falls back from 03:00 CEST to 02:00 CET on 2014-10-26.
	ts, err := h.Env().ParseInName("2014-10-26 02:30:00", paris)
	if err != nil {
		return err
	}
	return all(
		expectEqual("offset", 2*3600, ts.Offset()),
		expectEqual("epoch", time.Date(2014, 10, 26, 0, 30, 0, 0, time.UTC).Unix(), ts.Epoch()),
	)
}

func checkDSTGap(_ context.Context, h *Harness) error {
	// Paris springs forward from 02:00 CET to 03:00 CEST on 2014-03-30.
	ts, err := h.Env().ParseInName("2014-03-30 02:30:00", paris)
	if err != nil {
		return err
	}
	return all(
		expectEqual("wall time", "2014-03-30 03:30:00", ts.Format(tz.SimpleLayout)),
		expectEqual("epoch", time.Date(2014, 3, 30, 1, 30, 0, 0, time.UTC).Unix(), ts.Epoch()),
	)
}
