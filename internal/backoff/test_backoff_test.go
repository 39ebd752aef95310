package backoff

import (
	"testing"
	"time"
)

func TestDelayMonotoneAndCapped(t *testing.T) {
	p := New(100*time.Millisecond, 2*time.Second)
	prev := time.Duration(-1)
	for attempt := 0; attempt < 12; attempt++ {
		d := p.Delay(attempt)
		if d < prev {
			t.Fatalf("delay decreased at attempt %d: %v < %v", attempt, d, prev)
		}
		if d > 2*time.Second {
			t.Fatalf("delay exceeds cap at attempt %d: %v", attempt, d)
		}
		prev = d
	}
	if p.Delay(64) != 2*time.Second {
		t.Fatalf("huge attempt should sit at the cap, got %v", p.Delay(64))
	}
}

func TestDelaySchedule(t *testing.T) {
	p := New(100*time.Millisecond, 10*time.Second)
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
	}
	for attempt, expected := range want {
		if got := p.Delay(attempt); got != expected {
			t.Fatalf("Delay(%d) = %v, want %v", attempt, got, expected)
		}
	}
}

func TestDelayNegativeAttempt(t *testing.T) {
	p := New(100*time.Millisecond, time.Second)
	if p.Delay(-3) != p.Delay(0) {
		t.Fatal("negative attempt should behave like attempt 0")
	}
}

func TestJitterDeterministicWithFixedSource(t *testing.T) {
	p := New(200*time.Millisecond, time.Second)
	p.Jitter = func() float64 { return 0.5 }
	if got := p.Delay(0); got != 100*time.Millisecond {
		t.Fatalf("jittered Delay(0) = %v, want 100ms", got)
	}
	if got := p.Delay(1); got != 200*time.Millisecond {
		t.Fatalf("jittered Delay(1) = %v, want 200ms", got)
	}
}

func TestZeroValueFieldsFallBackToDefaults(t *testing.T) {
	var p Policy
	d := p.Delay(0)
	if d <= 0 {
		t.Fatalf("zero-value policy produced non-positive delay %v", d)
	}
	if p.Delay(100) > 10*time.Second {
		t.Fatalf("default cap exceeded: %v", p.Delay(100))
	}
}
