package playback

import "sync"

// Executor runs closures in posting order on the goroutine that owns the
// playback state. Post reports false once the executor no longer runs work.
type Executor interface {
	Post(fn func()) bool
}

// Loop is the host event loop: a single goroutine draining an unbounded queue,
// so posting never blocks the caller.
type Loop struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []func()
	closed bool
	done   chan struct{}
}

// NewLoop starts a loop goroutine.
func NewLoop() *Loop {
	l := &Loop{done: make(chan struct{})}
	l.cond = sync.NewCond(&l.mu)
	go l.run()
	return l
}

func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}

	l.queue = append(l.queue, fn)
	l.cond.Signal()
	return true
}

// Close stops accepting work. Already queued closures still run.
func (l *Loop) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.closed = true
	l.cond.Broadcast()
}

// Done is closed after the loop has drained its queue and exited.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) run() {
	defer close(l.done)

	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.closed {
			l.cond.Wait()
		}
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}

		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		fn()
	}
}

// Inline runs every closure immediately on the calling goroutine.
// Callers must serialize their own calls.
type Inline struct{}

func (Inline) Post(fn func()) bool {
	fn()
	return true
}
