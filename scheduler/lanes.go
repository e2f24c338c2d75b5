// Package scheduler runs tasks in order per key and in parallel across keys.
package scheduler

import (
	"sync"

	"github.com/tliron/commonlog"
)

// Lanes keeps one FIFO queue per key. A queue is drained by a goroutine that
// lives only while the queue has work.
type Lanes struct {
	mu    sync.Mutex
	idle  *sync.Cond
	lanes map[string]*lane
	log   commonlog.Logger
}

type lane struct {
	queue []func()
}

func New(log commonlog.Logger) *Lanes {
	if log == nil {
		log = commonlog.GetLogger("tjs-postfix.scheduler")
	}

	l := &Lanes{
		lanes: make(map[string]*lane),
		log:   log,
	}

	l.idle = sync.NewCond(&l.mu)

	return l
}

// Go queues task behind every task queued before on key.
func (l *Lanes) Go(key string, task func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.push(key, task)
}

// Barrier returns a channel closed once every task queued on key before the
// call has finished.
func (l *Lanes) Barrier(key string) <-chan struct{} {
	done := make(chan struct{})

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.lanes[key]; !busy {
		close(done)
		return done
	}

	l.push(key, func() {
		close(done)
	})

	return done
}

// Busy reports whether key has queued or running tasks.
func (l *Lanes) Busy(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, busy := l.lanes[key]

	return busy
}

// Wait blocks until all lanes are empty. Tasks may still be queued while it
// waits; they are waited for too.
func (l *Lanes) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for len(l.lanes) > 0 {
		l.idle.Wait()
	}
}

// push must be called with l.mu held.
func (l *Lanes) push(key string, task func()) {
	ln, ok := l.lanes[key]

	if !ok {
		ln = &lane{}
		l.lanes[key] = ln

		go l.run(key, ln)
	}

	ln.queue = append(ln.queue, task)
}

func (l *Lanes) run(key string, ln *lane) {
	for {
		l.mu.Lock()

		if len(ln.queue) == 0 {
			delete(l.lanes, key)

			if len(l.lanes) == 0 {
				l.idle.Broadcast()
			}

			l.mu.Unlock()
			return
		}

		task := ln.queue[0]
		ln.queue[0] = nil
		ln.queue = ln.queue[1:]

		l.mu.Unlock()

		l.exec(key, task)
	}
}

func (l *Lanes) exec(key string, task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			l.log.Errorf("%s: task panicked: %v", key, rec)
		}
	}()

	task()
}
