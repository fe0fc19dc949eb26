package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestManualScheduler_Advance(t *testing.T) {
	s := NewManualScheduler()
	var order []string
	s.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	s.AfterFunc(time.Second, func() { order = append(order, "a") })
	s.AfterFunc(time.Second, func() { order = append(order, "b") })

	assert.Equal(t, 3, s.Pending())
	assert.Equal(t, 0, s.Advance(500*time.Millisecond))
	assert.Equal(t, 2, s.Advance(500*time.Millisecond))
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, s.Pending())

	assert.Equal(t, 1, s.Advance(time.Hour))
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Zero(t, s.Pending())
}

func TestManualScheduler_Stop(t *testing.T) {
	s := NewManualScheduler()
	var ran bool
	timer := s.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop())
	assert.Zero(t, s.FireAll())
	assert.False(t, ran)
}

func TestManualScheduler_StopAfterFire(t *testing.T) {
	s := NewManualScheduler()
	timer := s.AfterFunc(0, func() {})
	assert.Equal(t, 1, s.FireAll())
	assert.False(t, timer.Stop())
}

func TestManualScheduler_ScheduleFromCallback(t *testing.T) {
	s := NewManualScheduler()
	var fired int
	s.AfterFunc(time.Second, func() {
		fired++
		s.AfterFunc(time.Second, func() { fired++ })
	})

	s.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 1, s.Pending())
	s.Advance(time.Second)
	assert.Equal(t, 2, fired)
}

func TestRealScheduler_Stop(t *testing.T) {
	fired := make(chan struct{}, 1)
	timer := RealScheduler.AfterFunc(time.Hour, func() { fired <- struct{}{} })
	assert.True(t, timer.Stop())

	select {
	case <-fired:
		t.Fatal("stopped timer fired")
	default:
	}
}
