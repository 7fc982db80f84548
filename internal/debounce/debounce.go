package debounce

import (
	"time"
)

// Stopper is a pending delayed call that can be cancelled
type Stopper interface {
	Stop() bool
}

// Scheduler runs f after d on some goroutine
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Stopper
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}

// RealScheduler is backed by time.AfterFunc
var RealScheduler Scheduler = realScheduler{}

// Debouncer delays an action until a quiet period has elapsed since the
// last Arm. Arm, Cancel and the fired action all run on the owner's loop:
// the timer goroutine only posts back through post.
type Debouncer struct {
	delay     time.Duration
	scheduler Scheduler
	post      func(func())

	seq   uint64
	timer Stopper
}

// New creates a debouncer. A nil scheduler means RealScheduler.
func New(delay time.Duration, scheduler Scheduler, post func(func())) *Debouncer {
	if scheduler == nil {
		scheduler = RealScheduler
	}
	if delay < 0 {
		delay = 0
	}
	return &Debouncer{
		delay:     delay,
		scheduler: scheduler,
		post:      post,
	}
}

// Arm (re)starts the delay. Only the action from the latest Arm can fire.
func (d *Debouncer) Arm(action func()) {
	d.stop()
	d.seq++
	seq := d.seq
	d.timer = d.scheduler.AfterFunc(d.delay, func() {
		d.post(func() {
			// a later Arm or Cancel bumped seq
			if seq != d.seq {
				return
			}
			d.timer = nil
			action()
		})
	})
}

// Cancel drops the pending action, if any
func (d *Debouncer) Cancel() {
	d.stop()
	d.seq++
}

// Pending reports whether an armed action has not fired yet
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

// Delay returns the configured quiet period
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
