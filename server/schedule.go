package server

import (
	"sort"
	"time"
)

// task is a one-shot callback owned by a room. It fires at most once.
type task struct {
	name     string
	at       time.Time
	fn       func(now time.Time)
	finished bool
}

func (t *task) cancel() {
	if t != nil {
		t.finished = true
	}
}

// schedule holds a room's pending timed transitions. It is only touched
// from the room's own loop, so it needs no lock.
type schedule struct {
	tasks []*task
}

func (s *schedule) after(now time.Time, d time.Duration, name string, fn func(now time.Time)) *task {
	t := &task{name: name, at: now.Add(d), fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// run fires every task due at now, earliest first. Tasks scheduled by a
// firing task wait for the next run.
func (s *schedule) run(now time.Time) []string {
	due := make([]*task, 0)
	pending := s.tasks[:0]
	for _, t := range s.tasks {
		switch {
		case t.finished:
		case !t.at.After(now):
			due = append(due, t)
		default:
			pending = append(pending, t)
		}
	}
	s.tasks = pending

	sort.SliceStable(due, func(i, j int) bool {
		return due[i].at.Before(due[j].at)
	})
	fired := make([]string, 0, len(due))
	for _, t := range due {
		if t.finished {
			continue
		}
		t.finished = true
		t.fn(now)
		fired = append(fired, t.name)
	}
	return fired
}

func (s *schedule) pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.finished {
			n++
		}
	}
	return n
}
