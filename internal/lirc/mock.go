package lirc

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/crowbarz/lirc2hass/internal/logging"
)

// MockSource emits synthetic key frames at random intervals without a
// lircd present. Used by the -mock flag for end-to-end testing against
// a real Home Assistant instance.
type MockSource struct {
	maxInterval time.Duration

	mu   sync.Mutex
	done chan struct{}
}

func NewMockSource(maxInterval time.Duration) *MockSource {
	return &MockSource{maxInterval: maxInterval}
}

func (m *MockSource) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	logging.Debugf("mocking LIRC socket connect")
	if m.done == nil {
		m.done = make(chan struct{})
	}
	return nil
}

func (m *MockSource) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	logging.Debugf("mocking LIRC socket disconnect")
	if m.done != nil {
		close(m.done)
		m.done = nil
	}
}

// NextEvent sleeps a random interval and emits a TEST_KEYn frame.
// Disconnect unblocks the sleep with ErrDisconnected.
func (m *MockSource) NextEvent() (Frame, error) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		return Frame{}, fmt.Errorf("%w: not connected", ErrDisconnected)
	}

	delay := time.Duration(1+rand.Int63n(int64(m.maxInterval)/int64(time.Millisecond))) * time.Millisecond
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-done:
		return Frame{}, ErrDisconnected
	case <-timer.C:
	}
	return Frame{
		Code:  "0",
		Key:   fmt.Sprintf("TEST_KEY%d", 1+rand.Intn(9)),
		Alias: "mock",
	}, nil
}
