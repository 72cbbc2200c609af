package grid

import (
	"sync"
	"time"
)

// Task is a handle to scheduled work. Stop is safe to call more than once.
type Task interface {
	Stop()
}

// Scheduler starts the editor's two background tasks.
type Scheduler interface {
	After(d time.Duration, f func()) Task
	Every(d time.Duration, f func()) Task
}

// RealScheduler runs tasks on wall-clock timers.
type RealScheduler struct{}

func (RealScheduler) After(d time.Duration, f func()) Task {
	return timerTask{time.AfterFunc(d, f)}
}

func (RealScheduler) Every(d time.Duration, f func()) Task {
	t := &tickerTask{ticker: time.NewTicker(d), done: make(chan struct{})}
	go t.run(f)
	return t
}

type timerTask struct{ t *time.Timer }

func (t timerTask) Stop() { t.t.Stop() }

type tickerTask struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTask) run(f func()) {
	for {
		select {
		case <-t.ticker.C:
			f()
		case <-t.done:
			return
		}
	}
}

func (t *tickerTask) Stop() {
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
	})
}
