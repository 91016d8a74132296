package daemon

import (
	"sync"

	"github.com/eapache/queue"
)

// runLoop is the daemon's single dispatch goroutine. Every mutation of
// the sensor tree and every listener callback executes here, which is
// what lets the whole registry stay lock-free: providers, transport
// goroutines and async completions all marshal their work onto the loop
// instead of touching shared state.
//
// Posted closures are buffered in an unbounded FIFO so Post never
// blocks the caller.
type runLoop struct {
	mu      sync.Mutex
	pending *queue.Queue
	wake    chan struct{}
	quit    chan struct{}
	wg      sync.WaitGroup
}

func newRunLoop() *runLoop {
	return &runLoop{
		pending: queue.New(),
		wake:    make(chan struct{}, 1),
		quit:    make(chan struct{}),
	}
}

func (l *runLoop) start() {
	l.wg.Add(1)
	go l.run()
}

func (l *runLoop) run() {
	defer l.wg.Done()
	for {
		select {
		case <-l.quit:
			return
		case <-l.wake:
			l.drain()
		}
	}
}

func (l *runLoop) drain() {
	for {
		l.mu.Lock()
		if l.pending.Length() == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.pending.Remove().(func())
		l.mu.Unlock()
		fn()
	}
}

// Post enqueues fn for execution on the loop goroutine. Never blocks;
// safe to call from any goroutine.
func (l *runLoop) Post(fn func()) {
	l.mu.Lock()
	l.pending.Add(fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
// Must not be called from the loop goroutine itself.
func (l *runLoop) Call(fn func()) {
	done := make(chan struct{})
	l.Post(func() {
		fn()
		close(done)
	})
	<-done
}

// stop terminates the loop. Closures still queued are discarded.
func (l *runLoop) stop() {
	close(l.quit)
	l.wg.Wait()
}
