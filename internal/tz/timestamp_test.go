package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTimestampEqualityComparesZone(t *testing.T) {
	t.Parallel()

	i := Unix(1388577600)
	paris := i.In(MustLoadZone("Europe/Paris"))
	la := i.In(MustLoadZone("America/Los_Angeles"))

	require.False(t, paris.Equal(la))
	require.True(t, paris.Instant().Equal(la.Instant()))
	require.NotEqual(t, paris.Format(SimpleLayout), la.Format(SimpleLayout))
	require.True(t, paris.Equal(la.In(MustLoadZone("Europe/Paris"))))
}

func TestWithZoneKeepsInstant(t *testing.T) {
	t.Parallel()

	ts := At(Unix(1406894400), UTC())
	require.Equal(t, "2014-08-01 12:00:00", ts.Format(SimpleLayout))

	inParis := ts.In(MustLoadZone("Europe/Paris"))
	require.Equal(t, ts.Epoch(), inParis.Epoch())
	require.Equal(t, "2014-08-01 14:00:00", inParis.Format(SimpleLayout))
	require.Equal(t, "2014-08-01T14:00:00+0200", inParis.Format(OffsetLayout))
	require.Equal(t, "+00:00", ts.Zone().Name(), "receiver is unchanged")
}

func TestInstantHelpers(t *testing.T) {
	t.Parallel()

	i := InstantOf(time.Date(2014, 1, 1, 12, 0, 0, 999, time.FixedZone("x", 3600)))
	require.Equal(t, int64(1388574000), i.Epoch())
	require.Equal(t, "@1388574000", i.String())
	require.Equal(t, time.UTC, i.Time().Location())
	require.True(t, i.Before(i.Add(time.Second)))
	require.Equal(t, time.Hour, i.Add(time.Hour).Sub(i))
}

func TestTimestampString(t *testing.T) {
	t.Parallel()

	ts := At(Unix(1388577600), MustLoadZone("Europe/Paris"))
	require.Equal(t, "2014-01-01T13:00:00+0100 Europe/Paris", ts.String())
	require.Equal(t, 3600, ts.Offset())
}

func TestFormatInstantDependsOnFallback(t *testing.T) {
	t.Parallel()

	i := Unix(1388577600)
	paris := NewEnv(nil, Pinned(MustLoadZone("Europe/Paris"))).FormatInstant(i, SimpleLayout)
	la := NewEnv(nil, Pinned(MustLoadZone("America/Los_Angeles"))).FormatInstant(i, SimpleLayout)
	require.Equal(t, "2014-01-01 13:00:00", paris)
	require.Equal(t, "2014-01-01 04:00:00", la)
}

func TestAmbientSetOnlyAffectsLaterConstructions(t *testing.T) {
	t.Parallel()

	ambient := NewAmbient(MustLoadZone("Europe/Paris"))
	env := NewEnv(nil, ambient)
	before, err := env.Parse(newYearNoon)
	require.NoError(t, err)

	require.NoError(t, ambient.SetName("America/Los_Angeles"))
	after, err := env.Parse(newYearNoon)
	require.NoError(t, err)

	require.Equal(t, "Europe/Paris", before.Zone().Name())
	require.Equal(t, "America/Los_Angeles", after.Zone().Name())
	require.ErrorIs(t, ambient.SetName("bogus/zone"), ErrUnknownTimezone)
	require.Equal(t, "America/Los_Angeles", ambient.DefaultZone().Name())
}
