package postgres

import (
	"context"
	"errors"
	"io/fs"
	"testing"
	_ "time/tzdata"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/tz"
)

var sampleColumns = []string{"simple_text", "offset_text", "epoch_seconds", "zone_name"}

func TestSaveUpsertsEveryEncoding(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTimestampStoreWithPool(mock, "tz_samples")
	require.NoError(t, err)

	ts := tz.At(tz.Unix(1388574000), tz.MustLoadZone("Europe/Paris"))
	mock.ExpectExec("INSERT INTO tz_samples").
		WithArgs("new-year", "2014-01-01 12:00:00", "2014-01-01T12:00:00+0100", int64(1388574000), "Europe/Paris").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, store.Save(context.Background(), "new-year", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveWrapsExecErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTimestampStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO tz_samples").WillReturnError(errors.New("boom"))
	err = store.Save(context.Background(), "k", tz.At(tz.Unix(0), tz.UTC()))
	require.ErrorContains(t, err, "boom")
	require.Error(t, store.Save(context.Background(), "", tz.At(tz.Unix(0), tz.UTC())))
}

func TestLoadSimpleTextDependsOnReaderZone(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTimestampStoreWithPool(mock, "tz_samples")
	require.NoError(t, err)

	row := func() {
		mock.ExpectQuery("SELECT simple_text, offset_text, epoch_seconds, zone_name FROM tz_samples").
			WithArgs("new-year").
			WillReturnRows(pgxmock.NewRows(sampleColumns).
				AddRow("2014-01-01 12:00:00", "2014-01-01T12:00:00+0100", int64(1388574000), "Europe/Paris"))
	}
	la := tz.NewEnv(nil, tz.Pinned(tz.MustLoadZone("America/Los_Angeles")))
	ctx := context.Background()

	row()
	simple, err := store.Load(ctx, la, "new-year", codec.EncodingSimple, tz.Zone{})
	require.NoError(t, err)
	require.NotEqual(t, int64(1388574000), simple.Epoch())
	require.Equal(t, int64(1388574000+32400), simple.Epoch())

	row()
	offset, err := store.Load(ctx, la, "new-year", codec.EncodingOffset, tz.Zone{})
	require.NoError(t, err)
	require.Equal(t, int64(1388574000), offset.Epoch())

	row()
	epoch, err := store.Load(ctx, la, "new-year", codec.EncodingEpoch, tz.Zone{})
	require.NoError(t, err)
	require.Equal(t, int64(1388574000), epoch.Epoch())

	row()
	withZone, err := store.Load(ctx, la, "new-year", codec.EncodingSimple, tz.MustLoadZone("Europe/Paris"))
	require.NoError(t, err)
	require.Equal(t, int64(1388574000), withZone.Epoch())

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadMissingRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTimestampStoreWithPool(mock, "tz_samples")
	require.NoError(t, err)

	mock.ExpectQuery("SELECT simple_text").WithArgs("absent").WillReturnError(pgx.ErrNoRows)
	_, err = store.Load(context.Background(), tz.Env{}, "absent", codec.EncodingOffset, tz.Zone{})
	require.ErrorIs(t, err, fs.ErrNotExist)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewTimestampStoreWithPool(mock, "tz_samples")
	require.NoError(t, err)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS tz_samples").WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	require.NoError(t, store.EnsureSchema(context.Background()))

	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNewTimestampStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewTimestampStoreWithPool(nil, "tz_samples")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewTimestampStoreWithPool(mock, "bad-name;")
	require.Error(t, err)

	_, err = NewTimestampStore(context.Background(), TimestampStoreConfig{})
	require.Error(t, err)
}
