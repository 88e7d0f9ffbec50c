package bind

import "sync"

// Executor runs view-assignment tasks on the application's designated main
// execution context.
type Executor interface {
	Post(task func())
}

// Inline runs tasks synchronously on the calling goroutine. It is the
// default when an Env has no Main executor and matches the simulated path.
type Inline struct{}

func (Inline) Post(task func()) { task() }

// Serial executes posted tasks one at a time on a single goroutine. It
// stands in for a UI main thread: the application calls Run once, posts
// from anywhere, and Stop drains the goroutine.
type Serial struct {
	tasks chan func()
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewSerial creates a Serial executor with a buffered task queue.
func NewSerial() *Serial {
	return &Serial{
		tasks: make(chan func(), 64),
		stop:  make(chan struct{}),
	}
}

// Run starts the task loop.
func (s *Serial) Run() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.stop:
				return
			case task := <-s.tasks:
				task()
			}
		}
	}()
}

// Stop terminates the task loop. Tasks still queued are dropped.
func (s *Serial) Stop() {
	close(s.stop)
	s.wg.Wait()
}

// Post enqueues a task. Posting after Stop is a no-op.
func (s *Serial) Post(task func()) {
	select {
	case s.tasks <- task:
	case <-s.stop:
	}
}
