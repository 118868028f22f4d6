package slicer

import (
	"fmt"
	"sync"
	"time"

	"github.com/arl/slaslice/progress"
)

// Phase identifies one stage of the slicing pipeline, for timing and for
// the progress anchors in the coordinator's phase breakdown.
type Phase int

const (
	PhaseLoad Phase = iota
	PhaseConvert
	PhaseBVH
	PhaseColumns
	PhaseLayers
	numPhases
)

// Context accumulates per-phase timings and log messages for one slicing
// run, and relays progress to sink: a place to park timers and a message
// log without forcing every caller to thread a logger through every
// function signature.
type Context struct {
	sink *progress.Sink

	mu       sync.Mutex
	messages []string
	started  [numPhases]time.Time
	elapsed  [numPhases]time.Duration
}

// NewContext returns a Context relaying progress to sink. sink may be nil.
func NewContext(sink *progress.Sink) *Context {
	return &Context{sink: sink}
}

// Logf appends a formatted message to the run's log.
func (c *Context) Logf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, fmt.Sprintf(format, args...))
}

// Warnf appends a formatted message to the run's log, marked as a warning.
func (c *Context) Warnf(format string, args ...interface{}) {
	c.Logf("WARN "+format, args...)
}

// Messages returns a copy of the accumulated log.
func (c *Context) Messages() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.messages))
	copy(out, c.messages)
	return out
}

// Progress logs status and forwards (fraction, status) to the sink.
func (c *Context) Progress(fraction float32, status string) {
	c.Logf("PROG %3.0f%% %s", fraction*100, status)
	c.sink.Send(fraction, status)
}

// StartTimer marks the start of phase p.
func (c *Context) StartTimer(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started[p] = time.Now()
}

// StopTimer accumulates the elapsed time since the last StartTimer(p).
func (c *Context) StopTimer(p Phase) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.elapsed[p] += time.Since(c.started[p])
}

// Elapsed returns the accumulated duration of phase p.
func (c *Context) Elapsed(p Phase) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.elapsed[p]
}

func (p Phase) String() string {
	switch p {
	case PhaseLoad:
		return "load"
	case PhaseConvert:
		return "convert"
	case PhaseBVH:
		return "bvh"
	case PhaseColumns:
		return "columns"
	case PhaseLayers:
		return "layers"
	default:
		return "unknown"
	}
}
