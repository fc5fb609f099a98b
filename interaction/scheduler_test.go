package interaction_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/TFMV/graphpad/interaction"
)

func TestManualSchedulerOrdering(t *testing.T) {
	s := interaction.NewManualScheduler(time.Unix(100, 0))
	var got []string

	s.AfterFunc(3*time.Millisecond, func() { got = append(got, "late") })
	s.AfterFunc(time.Millisecond, func() { got = append(got, "early") })
	s.AfterFunc(time.Millisecond, func() { got = append(got, "early-second") })
	stopped := s.AfterFunc(2*time.Millisecond, func() { got = append(got, "stopped") })

	assert.True(t, stopped.Stop())
	assert.False(t, stopped.Stop(), "second Stop reports nothing to stop")
	assert.Equal(t, 3, s.Pending())

	s.Advance(2 * time.Millisecond)
	assert.Equal(t, []string{"early", "early-second"}, got)
	assert.Equal(t, time.Unix(100, 0).Add(2*time.Millisecond), s.Now())

	s.Advance(time.Hour)
	assert.Equal(t, []string{"early", "early-second", "late"}, got)
	assert.Equal(t, 0, s.Pending())
}

func TestManualSchedulerStopAfterFire(t *testing.T) {
	s := interaction.NewManualScheduler(time.Time{})
	fired := false
	tm := s.AfterFunc(0, func() { fired = true })

	s.Advance(0)
	assert.True(t, fired)
	assert.False(t, tm.Stop())
}

func TestSystemScheduler(t *testing.T) {
	var s interaction.Scheduler = interaction.SystemScheduler{}
	done := make(chan struct{})
	s.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("system scheduler callback never ran")
	}

	tm := s.AfterFunc(time.Hour, func() {})
	assert.True(t, tm.Stop())
}
