// Package verifier encodes the timezone rule set as executable scenarios and
// runs them, producing a report of which rules hold.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/JakeFAU/tzverify/internal/clock/frozen"
	"github.com/JakeFAU/tzverify/internal/tz"
)

// Rule groups scenarios by the behavior they pin down.
type Rule string

// Rules covered by the catalog.
const (
	RuleConstruction  Rule = "construction"
	RuleAmbient       Rule = "default-timezone"
	RulePrecedence    Rule = "offset-precedence"
	RuleSerialization Rule = "serialization"
	RuleDisplay       Rule = "display"
	RuleEquality      Rule = "equality"
	RuleErrors        Rule = "errors"
	RuleDST           Rule = "dst"
)

// Scenario is one executable check. Check returns nil when the rule holds, a
// *MismatchError when it observably does not, and any other error when the
// scenario could not be evaluated.
type Scenario struct {
	Name        string
	Rule        Rule
	Description string
	Check       func(ctx context.Context, h *Harness) error
}

// Harness is the isolated environment a single scenario runs in: its own
// ambient zone (initially UTC), a clock frozen at the run's start, and a
// private area of the blob store for dumps.
type Harness struct {
	Ambient *tz.Ambient
	Clock   *frozen.Clock
	Store   BlobStore

	dumpDir string
}

// NewHarness builds a Harness around store. Dumps are written under dumpDir.
func NewHarness(store BlobStore, now time.Time, dumpDir string) *Harness {
	return &Harness{
		Ambient: tz.NewAmbient(tz.UTC()),
		Clock:   frozen.New(now),
		Store:   store,
		dumpDir: dumpDir,
	}
}

// Env returns an Env bound to the harness clock and ambient zone.
func (h *Harness) Env() tz.Env {
	return tz.NewEnv(h.Clock, h.Ambient)
}

// SetAmbient changes the harness ambient zone.
func (h *Harness) SetAmbient(name string) error {
	if err := h.Ambient.SetName(name); err != nil {
		return fmt.Errorf("set ambient: %w", err)
	}
	return nil
}

// DumpPath returns the object path for a named dump.
func (h *Harness) DumpPath(name string) string {
	return path.Join(h.dumpDir, name+".ndjson")
}

// ErrMismatch matches every *MismatchError via errors.Is.
var ErrMismatch = errors.New("verifier: expectation not met")

// MismatchError reports an observed value that differs from the expected one.
type MismatchError struct {
	What string
	Want any
	Got  any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("%s: want %v, got %v", e.What, e.Want, e.Got)
}

// Is lets errors.Is(err, ErrMismatch) succeed.
func (e *MismatchError) Is(target error) bool {
	return target == ErrMismatch
}

func expectEqual[T comparable](what string, want, got T) error {
	if want != got {
		return &MismatchError{What: what, Want: want, Got: got}
	}
	return nil
}

func expectNotEqual[T comparable](what string, a, b T) error {
	if a == b {
		return &MismatchError{What: what, Want: fmt.Sprintf("anything but %v", a), Got: b}
	}
	return nil
}

func expectTrue(what string, ok bool) error {
	if !ok {
		return &MismatchError{What: what, Want: true, Got: false}
	}
	return nil
}

func expectErrorIs(what string, err, target error) error {
	if !errors.Is(err, target) {
		return &MismatchError{What: what, Want: target, Got: err}
	}
	return nil
}

// all returns the first non-nil error.
func all(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
