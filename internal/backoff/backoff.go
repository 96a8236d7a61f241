// Package backoff computes jittered exponential reconnect delays.
package backoff

import (
	"math"
	"math/rand"
	"time"
)

// Delay returns the reconnect delay for the given retry attempt:
// min(ceiling, 2^retryCount) seconds minus up to one second of random
// jitter, at millisecond precision, never negative. The jitter keeps a
// fleet of clients from reconnecting in lockstep after an outage.
func Delay(retryCount int, ceiling int) time.Duration {
	d := math.Min(float64(ceiling), math.Pow(2, float64(retryCount)))
	d -= rand.Float64()
	if d < 0 {
		d = 0
	}
	return time.Duration(math.Round(d*1000)) * time.Millisecond
}
