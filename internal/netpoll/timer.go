//go:build darwin || linux

package netpoll

import (
	"container/heap"
	"time"
)

type timer struct {
	l     *Loop
	when  time.Time
	f     func()
	index int // position in l.timers, -1 once fired or stopped
}

func (t *timer) Stop() bool {
	if t.index < 0 {
		return false
	}
	heap.Remove(&t.l.timers, t.index)
	return true
}

type timerHeap []*timer

func (h timerHeap) Len() int           { return len(h) }
func (h timerHeap) Less(i, j int) bool { return h[i].when.Before(h[j].when) }
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index, h[j].index = i, j
}

func (h *timerHeap) Push(x any) {
	t := x.(*timer)
	t.index = len(*h)
	*h = append(*h, t)
}

func (h *timerHeap) Pop() any {
	old := *h
	t := old[len(old)-1]
	old[len(old)-1] = nil
	t.index = -1
	*h = old[:len(old)-1]
	return t
}

// fire runs every timer due at now and returns the delay until the next
// one, or -1 when none is armed.
func (h *timerHeap) fire(now time.Time) time.Duration {
	for h.Len() > 0 {
		t := (*h)[0]
		if d := t.when.Sub(now); d > 0 {
			return d
		}
		heap.Pop(h)
		t.f()
	}
	return -1
}
