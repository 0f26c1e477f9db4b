package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScheduleFiresOnceInOrder(t *testing.T) {
	var s schedule
	order := make([]string, 0)
	s.after(t0, 2*time.Second, "late", func(time.Time) { order = append(order, "late") })
	s.after(t0, time.Second, "early", func(time.Time) { order = append(order, "early") })

	assert.Empty(t, s.run(t0))
	assert.Equal(t, []string{"early", "late"}, s.run(t0.Add(5*time.Second)))
	assert.Empty(t, s.run(t0.Add(10*time.Second)))
	assert.Equal(t, []string{"early", "late"}, order)
	assert.Zero(t, s.pending())
}

func TestScheduleCancel(t *testing.T) {
	var s schedule
	fired := false
	tk := s.after(t0, time.Second, "x", func(time.Time) { fired = true })
	assert.Equal(t, 1, s.pending())
	tk.cancel()
	assert.Zero(t, s.pending())

	s.run(t0.Add(time.Minute))
	assert.False(t, fired)

	var missing *task
	missing.cancel()
}

func TestScheduleTaskCanScheduleMore(t *testing.T) {
	var s schedule
	second := false
	s.after(t0, time.Second, "first", func(now time.Time) {
		s.after(now, time.Second, "second", func(time.Time) { second = true })
	})

	s.run(t0.Add(time.Second))
	assert.False(t, second)
	assert.Equal(t, 1, s.pending())
	s.run(t0.Add(2 * time.Second))
	assert.True(t, second)
}
