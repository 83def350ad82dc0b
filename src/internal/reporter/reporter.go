// FILE: relog/src/internal/reporter/reporter.go
package reporter

import (
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"relog/src/internal/core"
	"relog/src/internal/correlate"
	"relog/src/internal/format"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/term"
)

const defaultQueueSize = 1024

// Config holds the reporter's owned configuration, fixed at
// construction time.
type Config struct {
	// Output is the diagnostic stream. Defaults to stderr.
	Output io.Writer

	// Colorize forces color on or off. When nil, the output is probed
	// once for terminal support.
	Colorize *bool

	// QueueSize caps the pending write queue. Defaults to 1024.
	QueueSize int
}

// pendingWrite is one scheduled flush: an immutable snapshot of exactly
// one rendered line, plus an optional completion signal.
type pendingWrite struct {
	line []byte
	done func()
}

// Reporter turns accepted log calls into formatted lines and writes
// them asynchronously. It owns one reusable buffer; formatting and the
// snapshot-and-clear execute under the mutex so concurrent calls can
// never interleave their text, while the actual write happens on a
// single background goroutine and never blocks the call site.
type Reporter struct {
	mu      sync.Mutex
	buf     *bytebufferpool.ByteBuffer
	stopped bool

	queue    chan pendingWrite
	out      io.Writer
	colorize bool

	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Statistics
	totalWritten atomic.Uint64
	totalDropped atomic.Uint64
	writeErrors  atomic.Uint64
	lastWrite    atomic.Value // time.Time
}

// Stats is a point-in-time snapshot of reporter counters.
type Stats struct {
	TotalWritten uint64
	TotalDropped uint64
	WriteErrors  uint64
	LastWrite    time.Time
}

// New creates a reporter and starts its writer goroutine. The color
// probe runs here, not per call, so it reflects the real runtime
// environment at first use.
func New(cfg Config) *Reporter {
	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	colorize := false
	if cfg.Colorize != nil {
		colorize = *cfg.Colorize
	} else if f, ok := out.(*os.File); ok {
		colorize = term.IsTerminal(int(f.Fd()))
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}

	r := &Reporter{
		buf:      bytebufferpool.Get(),
		queue:    make(chan pendingWrite, queueSize),
		out:      out,
		colorize: colorize,
		done:     make(chan struct{}),
	}
	r.lastWrite.Store(time.Time{})

	r.wg.Add(1)
	go r.processLoop()

	return r
}

// Report accepts one log call. It stamps the entry, renders it into the
// owned buffer, snapshots and clears the buffer, and schedules the
// snapshot for writing. The caller is done once scheduling succeeds;
// done (optional) fires when the write completes or is dropped.
func (r *Reporter) Report(e core.Entry, done func()) {
	if e.RequestID == "" {
		// Fallback for call sites that bypass the source wrapper.
		e.RequestID, _ = correlate.CurrentID()
	}
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	r.mu.Lock()
	if r.stopped {
		// Post-shutdown calls log into the void; the buffer is back in
		// the pool and must not be touched.
		r.mu.Unlock()
		if done != nil {
			done()
		}
		return
	}
	format.AppendEntry(r.buf, e, r.colorize)
	line := append([]byte(nil), r.buf.B...)
	r.buf.Reset()

	// Enqueueing under the mutex keeps scheduling ordered before Stop's
	// stopped flag; the send never blocks.
	dropped := false
	select {
	case r.queue <- pendingWrite{line: line, done: done}:
	default:
		// Queue full: drop-newest. A diagnostic sink must never block
		// or fail the request being logged.
		r.totalDropped.Add(1)
		dropped = true
	}
	r.mu.Unlock()

	if dropped && done != nil {
		done()
	}
}

// Sync blocks until every write scheduled before it has completed.
func (r *Reporter) Sync() {
	ch := make(chan struct{})

	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	// The writer is guaranteed alive while the mutex is held, so a
	// blocking send on a full queue always resolves.
	r.queue <- pendingWrite{done: func() { close(ch) }}
	r.mu.Unlock()

	<-ch
}

// Colorized reports whether the output stream renders ANSI colors.
func (r *Reporter) Colorized() bool {
	return r.colorize
}

// GetStats returns current reporter statistics.
func (r *Reporter) GetStats() Stats {
	lastWrite, _ := r.lastWrite.Load().(time.Time)
	return Stats{
		TotalWritten: r.totalWritten.Load(),
		TotalDropped: r.totalDropped.Load(),
		WriteErrors:  r.writeErrors.Load(),
		LastWrite:    lastWrite,
	}
}

// Stop drains already-scheduled writes and stops the writer goroutine.
// Reports issued after Stop are silently discarded.
func (r *Reporter) Stop() {
	r.stopOnce.Do(func() {
		r.mu.Lock()
		r.stopped = true
		r.mu.Unlock()

		close(r.done)
		r.wg.Wait()

		r.mu.Lock()
		bytebufferpool.Put(r.buf)
		r.buf = nil
		r.mu.Unlock()
	})
}

func (r *Reporter) processLoop() {
	defer r.wg.Done()
	for {
		select {
		case p := <-r.queue:
			r.write(p)
		case <-r.done:
			// Drain whatever was scheduled before shutdown.
			for {
				select {
				case p := <-r.queue:
					r.write(p)
				default:
					return
				}
			}
		}
	}
}

func (r *Reporter) write(p pendingWrite) {
	if len(p.line) > 0 {
		if _, err := r.out.Write(p.line); err != nil {
			// Best-effort delivery: not retried, not surfaced.
			r.writeErrors.Add(1)
		} else {
			r.totalWritten.Add(1)
			r.lastWrite.Store(time.Now())
		}
	}
	if p.done != nil {
		p.done()
	}
}
