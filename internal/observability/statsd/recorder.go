package statsd

import (
	"sync"
	"time"
)

// Recorder keeps emitted metrics in memory as StatsD lines. Tests and the
// admin CLI's verbose mode use it in place of a UDP client.
type Recorder struct {
	Prefix string

	mu    sync.Mutex
	lines []string
}

var _ Sink = (*Recorder)(nil)

// Count records a counter line.
func (r *Recorder) Count(name string, value int64, tags map[string]string) {
	r.add(r.enc().count(name, value, tags))
}

// Gauge records a gauge line.
func (r *Recorder) Gauge(name string, value float64, tags map[string]string) {
	r.add(r.enc().gauge(name, value, tags))
}

// Timing records a timing line in whole milliseconds.
func (r *Recorder) Timing(name string, value time.Duration, tags map[string]string) {
	r.add(r.enc().timing(name, value, tags))
}

// Lines returns a copy of everything recorded so far.
func (r *Recorder) Lines() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.lines))
	copy(out, r.lines)
	return out
}

// Reset drops recorded lines.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.lines = nil
	r.mu.Unlock()
}

func (r *Recorder) enc() encoder { return newEncoder(r.Prefix, nil) }

func (r *Recorder) add(line string) {
	if line == "" {
		return
	}
	r.mu.Lock()
	r.lines = append(r.lines, line)
	r.mu.Unlock()
}
