package ui

import (
	"context"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/kobzarvs/qguru/internal/logger"
)

// EventLoop runs blocking work in goroutines and posts its completions to
// the screen's event queue, where Run executes them.
type EventLoop struct {
	ctx    context.Context
	screen tcell.Screen
}

func NewEventLoop(ctx context.Context, s tcell.Screen) *EventLoop {
	return &EventLoop{ctx: ctx, screen: s}
}

func (l *EventLoop) Async(work func(ctx context.Context) func()) {
	go func() {
		done := work(l.ctx)
		if done == nil {
			return
		}
		l.post(tcell.NewEventInterrupt(done))
	}()
}

// post retries while the event queue is full, until the loop's context
// ends.
func (l *EventLoop) post(ev tcell.Event) {
	for {
		err := l.screen.PostEvent(ev)
		if err == nil {
			return
		}
		select {
		case <-l.ctx.Done():
			logger.Debug("dropping event after shutdown", "error", err)
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

// Wake schedules a redraw after d.
func (l *EventLoop) Wake(d time.Duration) {
	time.AfterFunc(d, func() {
		l.post(tcell.NewEventInterrupt(nil))
	})
}

// Run draws b and dispatches screen events to it until a quit key is
// pressed or ctx ends.
func Run(ctx context.Context, s tcell.Screen, b *Browser, loop *EventLoop) error {
	b.after = loop.Wake
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.PostEvent(tcell.NewEventInterrupt(ctx))
		case <-stop:
		}
	}()

	b.Render(s)
	for {
		ev := s.PollEvent()
		if ev == nil {
			return nil
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			if b.HandleKey(ev) {
				return nil
			}
		case *tcell.EventMouse:
			b.HandleMouse(ev)
		case *tcell.EventResize:
			s.Sync()
		case *tcell.EventInterrupt:
			switch data := ev.Data().(type) {
			case func():
				data()
			case context.Context:
				return data.Err()
			}
		}
		b.Render(s)
	}
}
