package backoff

import (
	"testing"
	"time"
)

func TestDelayBounds(t *testing.T) {
	const ceiling = 64

	// The jitter makes Delay non-deterministic, so sample each retry
	// count repeatedly and check the bounds hold every time.
	for retry := 0; retry <= 20; retry++ {
		for i := 0; i < 50; i++ {
			d := Delay(retry, ceiling)
			if d < 0 {
				t.Fatalf("Delay(%d, %d) = %v, want >= 0", retry, ceiling, d)
			}
			if max := time.Duration(ceiling) * time.Second; d > max {
				t.Fatalf("Delay(%d, %d) = %v, want <= %v", retry, ceiling, d, max)
			}
		}
	}
}

func TestDelayGrowsUntilCeiling(t *testing.T) {
	// Upper bound of the delay doubles per retry until clamped. With up
	// to 1s of jitter, Delay(n) must still exceed 2^(n-1) seconds for
	// n >= 1 below the ceiling.
	for retry := 2; retry <= 5; retry++ {
		d := Delay(retry, 64)
		floor := time.Duration(1<<(retry-1)) * time.Second
		if d < floor {
			t.Errorf("Delay(%d, 64) = %v, want >= %v", retry, d, floor)
		}
	}
}

func TestDelayClampedAtCeiling(t *testing.T) {
	// Far past the ceiling the exponent would overflow an int; the
	// clamp must still apply.
	for i := 0; i < 20; i++ {
		d := Delay(200, 8)
		if d > 8*time.Second {
			t.Errorf("Delay(200, 8) = %v, want <= 8s", d)
		}
		if d < 7*time.Second {
			t.Errorf("Delay(200, 8) = %v, want >= 7s (jitter is at most 1s)", d)
		}
	}
}

func TestDelayMillisecondPrecision(t *testing.T) {
	for i := 0; i < 20; i++ {
		d := Delay(3, 64)
		if d != d.Truncate(time.Millisecond) {
			t.Errorf("Delay(3, 64) = %v, want millisecond precision", d)
		}
	}
}
