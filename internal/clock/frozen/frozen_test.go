package frozen

import (
	"testing"
	"time"
)

func TestClockStaysFrozen(t *testing.T) {
	t.Parallel()

	start := time.Date(2014, 1, 1, 12, 0, 0, 0, time.UTC)
	clk := New(start)
	if got := clk.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}
	if got := clk.Now(); !got.Equal(start) {
		t.Fatalf("second Now() = %v, want %v", got, start)
	}
}

func TestClockAdvanceAndSet(t *testing.T) {
	t.Parallel()

	start := time.Unix(1388577600, 0).UTC()
	clk := New(start)
	clk.Advance(90 * time.Second)
	if got := clk.Now().Unix(); got != 1388577690 {
		t.Fatalf("after Advance Now().Unix() = %d, want 1388577690", got)
	}
	clk.Set(start)
	if got := clk.Now(); !got.Equal(start) {
		t.Fatalf("after Set Now() = %v, want %v", got, start)
	}
}
