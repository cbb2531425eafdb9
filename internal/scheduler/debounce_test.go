package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebouncer_CoalescesPerKey(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)

	var empresa, fiscal atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger("empresa", func() { empresa.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	d.Trigger("fiscal", func() { fiscal.Add(1) })

	require.Eventually(t, func() bool {
		return empresa.Load() == 1 && fiscal.Load() == 1
	}, time.Second, 10*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), empresa.Load())
	assert.Equal(t, 0, d.Pending())
}

func TestDebouncer_LastCallWins(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)

	var got atomic.Value
	d.Trigger("empresa", func() { got.Store("primeira") })
	d.Trigger("empresa", func() { got.Store("segunda") })

	require.Eventually(t, func() bool { return got.Load() != nil }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "segunda", got.Load())
}

func TestDebouncer_Flush(t *testing.T) {
	d := NewDebouncer(time.Hour)

	var calls atomic.Int32
	d.Trigger("a", func() { calls.Add(1) })
	d.Trigger("b", func() { calls.Add(1) })
	assert.Equal(t, 2, d.Pending())

	d.Flush()

	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, d.Pending())
}
