package timers

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryArmFires(t *testing.T) {
	r := NewRegistry()
	key := uuid.New()
	fired := make(chan struct{})

	r.Arm(key, 5*time.Millisecond, func() { close(fired) })
	assert.Equal(t, 1, r.Len())

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}

	require.Eventually(t, func() bool { return r.Len() == 0 }, time.Second, 5*time.Millisecond)
}

func TestRegistryArmReplaces(t *testing.T) {
	r := NewRegistry()
	key := uuid.New()
	var first, second atomic.Int32

	r.Arm(key, 50*time.Millisecond, func() { first.Add(1) })
	fired := make(chan struct{})
	r.Arm(key, 5*time.Millisecond, func() { second.Add(1); close(fired) })
	assert.Equal(t, 1, r.Len())

	<-fired
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestRegistryCancel(t *testing.T) {
	r := NewRegistry()
	key := uuid.New()
	var fired atomic.Int32

	r.Arm(key, 10*time.Millisecond, func() { fired.Add(1) })
	r.Cancel(key)
	assert.Equal(t, 0, r.Len())

	// Cancelling again is harmless, as is cancelling an unknown key.
	r.Cancel(key)
	r.Cancel(uuid.New())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())
}
