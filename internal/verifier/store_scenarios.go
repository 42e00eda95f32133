package verifier

import (
	"context"

	"github.com/JakeFAU/tzverify/internal/codec"
	"github.com/JakeFAU/tzverify/internal/tz"
)

// TimestampStore keeps timestamps in a database that stores each encoding in
// its own column.
type TimestampStore interface {
	Save(ctx context.Context, key string, ts tz.Timestamp) error
	Load(ctx context.Context, env tz.Env, key string, enc codec.Encoding, zone tz.Zone) (tz.Timestamp, error)
}

// StoreScenarios repeats the serialization rule across a database boundary.
func StoreScenarios(store TimestampStore) []Scenario {
	return []Scenario{
		{
			Name:        "db-simple-column-drifts",
			Rule:        RuleSerialization,
			Description: "A zone-less text column reloaded under another ambient zone names a different instant.",
			Check: func(ctx context.Context, h *Harness) error {
				original, reload, err := saveUnderParis(ctx, h, store, "db-simple-column-drifts")
				if err != nil {
					return err
				}
				drifted, err := reload(codec.EncodingSimple, tz.Zone{})
				if err != nil {
					return err
				}
				kept, err := reload(codec.EncodingSimple, original.Zone())
				if err != nil {
					return err
				}
				return all(
					expectEqual("epoch drift", parisToLA, drifted.Epoch()-original.Epoch()),
					expectTrue("reload with original zone", kept.Equal(original)),
				)
			},
		},
		{
			Name:        "db-lossless-columns-round-trip",
			Rule:        RuleSerialization,
			Description: "Offset and epoch columns reload to the original instant under any ambient zone.",
			Check: func(ctx context.Context, h *Harness) error {
				original, reload, err := saveUnderParis(ctx, h, store, "db-lossless-columns-round-trip")
				if err != nil {
					return err
				}
				for _, enc := range []codec.Encoding{codec.EncodingOffset, codec.EncodingEpoch} {
					back, err := reload(enc, tz.Zone{})
					if err != nil {
						return err
					}
					if err := expectEqual(string(enc)+" column epoch", original.Epoch(), back.Epoch()); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}

type reloadFunc func(enc codec.Encoding, zone tz.Zone) (tz.Timestamp, error)

func saveUnderParis(ctx context.Context, h *Harness, store TimestampStore, key string) (tz.Timestamp, reloadFunc, error) {
	if err := h.SetAmbient(paris); err != nil {
		return tz.Timestamp{}, nil, err
	}
	original, err := h.Env().Parse(newYearNoon)
	if err != nil {
		return tz.Timestamp{}, nil, err
	}
	if err := store.Save(ctx, key, original); err != nil {
		return tz.Timestamp{}, nil, err
	}
	if err := h.SetAmbient(losAngeles); err != nil {
		return tz.Timestamp{}, nil, err
	}
	reload := func(enc codec.Encoding, zone tz.Zone) (tz.Timestamp, error) {
		return store.Load(ctx, h.Env(), key, enc, zone)
	}
	return original, reload, nil
}
