package verifier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/JakeFAU/tzverify/internal/clock/frozen"
	pubmemory "github.com/JakeFAU/tzverify/internal/publisher/memory"
	"github.com/JakeFAU/tzverify/internal/storage"
	"github.com/JakeFAU/tzverify/internal/storage/memory"
)

type fixedIDs struct{ id string }

func (f fixedIDs) NewID() (string, error) { return f.id, nil }

type failingIDs struct{}

func (failingIDs) NewID() (string, error) { return "", errors.New("entropy exhausted") }

var runStart = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newTestRunner(t *testing.T, opts Options) (*Runner, *memory.BlobStore) {
	t.Helper()
	store := memory.NewBlobStore()
	if opts.Store == nil {
		opts.Store = store
	}
	if opts.IDs == nil {
		opts.IDs = fixedIDs{id: "run-1"}
	}
	if opts.Clock == nil {
		opts.Clock = frozen.New(runStart)
	}
	opts.Logger = zaptest.NewLogger(t)
	r, err := NewRunner(opts)
	require.NoError(t, err)
	return r, store
}

func TestCatalogPasses(t *testing.T) {
	t.Parallel()

	r, store := newTestRunner(t, Options{})
	report, err := r.Run(context.Background(), Catalog())
	require.NoError(t, err)

	for _, res := range report.Results {
		require.Equal(t, OutcomePass, res.Outcome, "%s: %s", res.Name, res.Detail)
	}
	require.True(t, report.OK())
	require.Equal(t, len(Catalog()), report.Passed)
	require.Equal(t, "memory://reports/run-1.json", report.URI)

	var dumps int
	for _, p := range store.Paths() {
		if strings.HasPrefix(p, "reports/run-1/dumps/") {
			dumps++
		}
	}
	require.Equal(t, 4, dumps, "each serialization scenario writes one dump")
}

func TestCatalogNamesAreUnique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, sc := range Catalog() {
		require.False(t, seen[sc.Name], sc.Name)
		seen[sc.Name] = true
		require.NotEmpty(t, sc.Description)
		require.NotNil(t, sc.Check)
	}
}

func TestRunRecordsFailuresAndErrors(t *testing.T) {
	t.Parallel()

	scenarios := []Scenario{
		{Name: "holds", Rule: RuleEquality, Check: func(context.Context, *Harness) error { return nil }},
		{Name: "broken", Rule: RuleEquality, Check: func(context.Context, *Harness) error {
			return expectEqual("epoch", int64(1), int64(2))
		}},
		{Name: "wrapped", Rule: RuleEquality, Check: func(context.Context, *Harness) error {
			return fmt.Errorf("context: %w", expectTrue("flag", false))
		}},
		{Name: "infra", Rule: RuleSerialization, Check: func(context.Context, *Harness) error {
			return errors.New("disk full")
		}},
		{Name: "panics", Rule: RuleDisplay, Check: func(context.Context, *Harness) error {
			panic("boom")
		}},
		{Name: "empty", Rule: RuleDisplay},
	}

	r, _ := newTestRunner(t, Options{})
	report, err := r.Run(context.Background(), scenarios)
	require.NoError(t, err)
	require.False(t, report.OK())
	require.Equal(t, "failed", report.Status())
	require.Equal(t, 1, report.Passed)
	require.Equal(t, 2, report.Failed)
	require.Equal(t, 3, report.Errored)
	require.Equal(t, "epoch: want 1, got 2", report.Results[1].Detail)
	require.Equal(t, "panic: boom", report.Results[4].Detail)
}

func TestRunArchivesYAMLAndPublishesSummary(t *testing.T) {
	t.Parallel()

	pub := pubmemory.New()
	r, store := newTestRunner(t, Options{Publisher: pub, Topic: "tz-runs", Format: FormatYAML, Prefix: "archive"})
	report, err := r.Run(context.Background(), Catalog()[:3])
	require.NoError(t, err)
	require.Equal(t, "memory://archive/run-1.yaml", report.URI)
	require.Equal(t, "application/yaml", store.ContentType("archive/run-1.yaml"))

	loaded, err := LoadReport(context.Background(), store, "archive", "run-1", FormatYAML)
	require.NoError(t, err)
	require.Equal(t, report.RunID, loaded.RunID)
	require.Equal(t, report.Passed, loaded.Passed)
	require.Len(t, loaded.Results, 3)
	require.True(t, loaded.StartedAt.Equal(runStart))

	msgs := pub.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, "tz-runs", msgs[0].Topic)
	summary, ok := msgs[0].Payload.(Summary)
	require.True(t, ok)
	require.Equal(t, "passed", summary.Status)
	require.Equal(t, report.URI, summary.URI)
}

func TestRunLevelErrors(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(Options{})
	require.Error(t, err)
	_, err = NewRunner(Options{Store: memory.NewBlobStore(), Format: "xml"})
	require.Error(t, err)

	r, _ := newTestRunner(t, Options{IDs: failingIDs{}})
	_, err = r.Run(context.Background(), Catalog())
	require.ErrorContains(t, err, "generate run id")

	store := &storage.MockBlobStore{}
	store.On("PutObject", mock.Anything, "reports/run-1.json", "application/json", mock.Anything).
		Return("", errors.New("bucket gone"))
	r, _ = newTestRunner(t, Options{Store: store})
	_, err = r.Run(context.Background(), Catalog()[:1])
	require.ErrorContains(t, err, "archive report")
	store.AssertExpectations(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r, _ = newTestRunner(t, Options{})
	_, err = r.Run(ctx, Catalog())
	require.ErrorIs(t, err, context.Canceled)
}

func TestSelect(t *testing.T) {
	t.Parallel()

	all, err := Select(Catalog())
	require.NoError(t, err)
	require.Len(t, all, len(Catalog()))

	dst, err := Select(Catalog(), string(RuleDST), "now-marker")
	require.NoError(t, err)
	require.Len(t, dst, 3)
	require.Equal(t, "now-marker", dst[0].Name)

	_, err = Select(Catalog(), "no-such-rule")
	require.ErrorContains(t, err, "no-such-rule")
}

func TestReportEncodingRoundTrip(t *testing.T) {
	t.Parallel()

	report := Report{RunID: "r", StartedAt: runStart, FinishedAt: runStart.Add(time.Second), Failed: 1,
		Results: []Result{{Name: "x", Rule: RuleDST, Outcome: OutcomeFail, Detail: "d", Duration: time.Millisecond}}}
	for _, format := range []string{FormatJSON, FormatYAML} {
		data, _, err := EncodeReport(report, format)
		require.NoError(t, err)
		back, err := DecodeReport(data, format)
		require.NoError(t, err)
		require.Equal(t, report.Results, back.Results, format)
		require.False(t, back.OK())
	}
	_, err := DecodeReport([]byte("{}"), "toml")
	require.Error(t, err)
}
