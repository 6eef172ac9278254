package framework

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultInterval is the iteration period of a Loop without Interval.
const DefaultInterval = 100 * time.Millisecond

// Loop runs Controllers periodically, or immediately when triggered,
// handing them the messages posted in between.
type Loop struct {
	Interval time.Duration

	controllers []Controller
	runners     []Runnable

	messages []Message
	lock     sync.Mutex
	wakeUpCh chan struct{}
}

type loopIteration struct {
	*Loop
	ctx      context.Context
	time     time.Time
	messages []Message
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// AddController registers controllers to the loop. Controllers run in
// registration order. A controller which is also a Runnable is started
// with the loop.
func (l *Loop) AddController(ctls ...Controller) *Loop {
	l.controllers = append(l.controllers, ctls...)
	for _, ctl := range ctls {
		if runner, ok := ctl.(Runnable); ok {
			l.runners = append(l.runners, runner)
		}
	}
	return l
}

// AddRunnable adds Runnable implementions.
func (l *Loop) AddRunnable(runnables ...Runnable) *Loop {
	l.runners = append(l.runners, runnables...)
	return l
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	runner := NewRunnerWith(ctx)
	runner.Go(l.runners...)
	defer runner.Wait()

	interval := l.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			l.runIteration(ctx)
		case <-l.wakeUpCh:
			l.runIteration(ctx)
		}
	}
}

// PostMessage implements LoopControl.
func (l *Loop) PostMessage(msg Message) {
	l.lock.Lock()
	l.messages = append(l.messages, msg)
	l.lock.Unlock()
}

// TriggerNext implements LoopControl.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

func (l *Loop) runIteration(ctx context.Context) {
	iter := &loopIteration{Loop: l, ctx: ctx, time: time.Now()}
	l.lock.Lock()
	iter.messages, l.messages = l.messages, nil
	l.lock.Unlock()
	for _, ctl := range l.controllers {
		if err := ctl.Control(iter); err != nil {
			glog.Errorf("controller error: %v", err)
		}
	}
}

func (t *loopIteration) Context() context.Context {
	return t.ctx
}

func (t *loopIteration) Time() time.Time {
	return t.time
}

func (t *loopIteration) Messages() []Message {
	return t.messages
}
