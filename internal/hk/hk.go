// Package hk provides a mechanism for registering named, independently
// rescheduled periodic jobs, the housekeeper that the event loop's
// reconnect-monitor timer ("Auto-reconnect loop") registers itself
// with instead of owning a raw time.Timer. The roam-scan gate does not
// use it; it compares each iface's last roam time on incoming stats.
//
// Adapted from AIStore's hk package (observed through its ginkgo
// test contract: Reg/TestInit/DefaultHK.Run/WaitStarted) and
// generalized so a job's own callback returns its next interval,
// which is exactly the variable-backoff behavior the reconnect
// monitor needs (1s, doubling to a 10s cap, reset to 1s on success).
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package hk

import (
	"container/heap"
	"sync"
	"time"

	"github.com/NVIDIA/wlancore/internal/nlog"
)

// Func runs one tick of a registered job and returns the delay until
// its next tick. Returning <= 0 unregisters the job.
type Func func() time.Duration

type job struct {
	name string
	fn   Func
	due  time.Time
	idx  int
}

type jobHeap []*job

func (h jobHeap) Len() int            { return len(h) }
func (h jobHeap) Less(i, j int) bool  { return h[i].due.Before(h[j].due) }
func (h jobHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].idx, h[j].idx = i, j }
func (h *jobHeap) Push(x any)         { j := x.(*job); j.idx = len(*h); *h = append(*h, j) }
func (h *jobHeap) Pop() any {
	old := *h
	n := len(old)
	j := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return j
}

// HK is a minimal housekeeper: a priority queue of named jobs driven
// by a single timer, safe for concurrent Reg/Unreg while Run is active.
type HK struct {
	mu      sync.Mutex
	jobs    jobHeap
	byName  map[string]*job
	wake    chan struct{}
	stop    chan struct{}
	started chan struct{}
	once    sync.Once
}

func New() *HK {
	return &HK{
		byName:  make(map[string]*job),
		wake:    make(chan struct{}, 1),
		stop:    make(chan struct{}),
		started: make(chan struct{}),
	}
}

var DefaultHK = New()

// TestInit resets the package-level default housekeeper; test-only.
func TestInit() { DefaultHK = New() }

func Reg(name string, fn Func, interval time.Duration) { DefaultHK.Reg(name, fn, interval) }
func Unreg(name string)                                { DefaultHK.Unreg(name) }
func WaitStarted()                                      { <-DefaultHK.started }

func (h *HK) Reg(name string, fn Func, interval time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.byName[name]; ok {
		old.fn = fn
		old.due = time.Now().Add(interval)
		heap.Fix(&h.jobs, old.idx)
	} else {
		j := &job{name: name, fn: fn, due: time.Now().Add(interval)}
		h.byName[name] = j
		heap.Push(&h.jobs, j)
	}
	h.poke()
}

func (h *HK) Unreg(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	j, ok := h.byName[name]
	if !ok {
		return
	}
	heap.Remove(&h.jobs, j.idx)
	delete(h.byName, name)
}

func (h *HK) poke() {
	select {
	case h.wake <- struct{}{}:
	default:
	}
}

// Run drives registered jobs until Stop is called. Intended to run on
// its own goroutine, as the event loop's "reconnect monitor timer"
// select-arm source.
func (h *HK) Run() {
	h.once.Do(func() { close(h.started) })
	for {
		timer := time.NewTimer(h.next())
		select {
		case <-h.stop:
			timer.Stop()
			return
		case <-h.wake:
			timer.Stop()
			continue
		case <-timer.C:
			h.fire()
		}
	}
}

func (h *HK) next() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.jobs) == 0 {
		return time.Hour
	}
	d := time.Until(h.jobs[0].due)
	if d < 0 {
		return 0
	}
	return d
}

func (h *HK) fire() {
	now := time.Now()
	for {
		h.mu.Lock()
		if len(h.jobs) == 0 || h.jobs[0].due.After(now) {
			h.mu.Unlock()
			return
		}
		j := heap.Pop(&h.jobs).(*job)
		delete(h.byName, j.name)
		h.mu.Unlock()

		next := j.fn()
		if next > 0 {
			h.mu.Lock()
			j.due = now.Add(next)
			h.byName[j.name] = j
			heap.Push(&h.jobs, j)
			h.mu.Unlock()
		} else {
			nlog.Infof("hk: job %q unregistered itself", j.name)
		}
	}
}

func (h *HK) Stop() { close(h.stop) }
